// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
	"github.com/NVIDIA/blobpush/pkg/logging"
)

const (
	name           = "blobpush"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK        = 0
	exitFailure   = 1
	exitCancelled = 2
)

// Execute runs the root command with os.Args and exits non-zero on failure.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := newRootCmd(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return exitCancelled
	default:
		return exitFailure
	}
}

func newRootCmd(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Package a local container image and publish it to S3-compatible object storage",
		Version:               version,
		EnableShellCompletion: true,
		Writer:                w,
		Description: fmt.Sprintf(`blobpush exports a local image with skopeo, stages every blob and manifest
under its content digest, and uploads the tree as

  v2/<image>/blobs/<digest>
  v2/<image>/manifests/<digest>

to an S3-compatible bucket (Cloudflare R2 by default).

Version: %s
Commit:  %s
Built:   %s`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars(logging.LevelEnvVar),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (json, text)",
				Value: string(logging.FormatText),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a YAML file with object store settings",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a dotenv file (default: .env when present)",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write run metrics in Prometheus text format to this path",
			},
		},
		Before: initLogger,
		Commands: []*cli.Command{
			pushCmd(),
			publishStagedCmd(),
			versionCmd(),
		},
	}
}

// initLogger configures slog after flags are parsed so --log-level takes
// effect before any command executes.
func initLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logging.SetDefaultLogger(logging.ParseFormat(cmd.String("log-format")), name, version, cmd.String("log-level"))
	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date)
	return ctx, nil
}

// imageArg returns the single positional argument or an INVALID_REQUEST error.
func imageArg(cmd *cli.Command) (string, error) {
	if cmd.NArg() != 1 {
		return "", apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s expects exactly one image argument", cmd.Name),
			map[string]any{"args": cmd.NArg()})
	}
	return cmd.Args().First(), nil
}
