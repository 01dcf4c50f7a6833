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
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/blobpush/pkg/config"
	"github.com/NVIDIA/blobpush/pkg/defaults"
	"github.com/NVIDIA/blobpush/pkg/digest"
	"github.com/NVIDIA/blobpush/pkg/metrics"
	"github.com/NVIDIA/blobpush/pkg/pipeline"
	"github.com/NVIDIA/blobpush/pkg/publish"
	"github.com/NVIDIA/blobpush/pkg/report"
	"github.com/NVIDIA/blobpush/pkg/store"
)

// storeFlags are shared by every command that uploads.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "account-id",
			Usage:   "Cloudflare account identifier used to derive the R2 endpoint",
			Sources: cli.EnvVars(config.EnvAccountID),
		},
		&cli.StringFlag{
			Name:    "bucket",
			Usage:   "Destination bucket",
			Sources: cli.EnvVars(config.EnvBucket),
		},
		&cli.StringFlag{
			Name:    "access-key-id",
			Usage:   "Object store access key ID",
			Sources: cli.EnvVars(config.EnvAccessKeyID),
		},
		&cli.StringFlag{
			Name:    "secret-access-key",
			Usage:   "Object store secret access key",
			Sources: cli.EnvVars(config.EnvSecretAccessKey),
		},
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "Override the object store endpoint (default: https://<account-id>.r2.cloudflarestorage.com)",
			Sources: cli.EnvVars(config.EnvEndpoint),
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   fmt.Sprintf("Signing region (default: %s)", defaults.DefaultRegion),
			Sources: cli.EnvVars(config.EnvRegion),
		},
		&cli.BoolFlag{
			Name:    "path-style",
			Usage:   "Use path-style bucket addressing",
			Sources: cli.EnvVars(config.EnvUsePathStyle),
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: fmt.Sprintf("Concurrent uploads per phase (1-%d)", defaults.MaxUploadConcurrency),
			Value: defaults.UploadConcurrency,
		},
		&cli.FloatFlag{
			Name:  "upload-rate",
			Usage: "Maximum uploads started per second (0 = unlimited)",
		},
		&cli.DurationFlag{
			Name:  "upload-timeout",
			Usage: "Timeout for a single object upload",
			Value: defaults.UploadTimeout,
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Run everything against an in-memory store; nothing leaves the machine",
		},
	}
}

// loadConfig merges the config file, dotenv file, environment and flags, in
// increasing precedence.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"), cmd.String("env-file"))
	if err != nil {
		return nil, err
	}

	override := func(dst *string, flag string) {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}
	override(&cfg.AccountID, "account-id")
	override(&cfg.Bucket, "bucket")
	override(&cfg.AccessKeyID, "access-key-id")
	override(&cfg.SecretAccessKey, "secret-access-key")
	override(&cfg.Endpoint, "endpoint")
	override(&cfg.Region, "region")
	if cmd.IsSet("path-style") {
		cfg.UsePathStyle = cmd.Bool("path-style")
	}
	if cmd.IsSet("digest-algorithm") {
		cfg.DigestAlgorithm = cmd.String("digest-algorithm")
	}

	return cfg, nil
}

// newStore returns the S3 client for cfg, or an in-memory store on --dry-run.
// Configuration is validated here, before any filesystem or network work.
func newStore(cmd *cli.Command, cfg *config.Config) (store.ObjectStore, error) {
	if cmd.Bool("dry-run") {
		slog.Info("dry run: uploads go to an in-memory store")
		return store.NewMemory(), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s3, err := store.NewS3(cfg)
	if err != nil {
		return nil, err
	}
	slog.Debug("object store configured", "config", cfg.String())
	return s3, nil
}

func newPublisher(cmd *cli.Command, s store.ObjectStore, rec *metrics.Recorder) *publish.Publisher {
	return publish.New(s,
		publish.WithConcurrency(cmd.Int("concurrency")),
		publish.WithRateLimit(cmd.Float("upload-rate")),
		publish.WithUploadTimeout(cmd.Duration("upload-timeout")),
		publish.WithMetrics(rec),
	)
}

func hasherFor(cfg *config.Config) (*digest.Hasher, error) {
	alg, err := digest.ParseAlgorithm(cfg.DigestAlgorithm)
	if err != nil {
		return nil, err
	}
	return digest.NewHasher(alg), nil
}

// writeMetrics writes rec to --metrics-file when set. Failures are logged
// only; they never change the command result.
func writeMetrics(cmd *cli.Command, rec *metrics.Recorder) {
	path := cmd.String("metrics-file")
	if path == "" {
		return
	}
	if err := rec.WriteTextfile(path); err != nil {
		slog.Warn("failed to write metrics file", "path", path, "error", err)
	}
}

func reportFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "report",
		Usage: "Write a run report to this path (\"-\" for stdout)",
	}
}

func reportFormatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "report-format",
		Usage: fmt.Sprintf("Report format (%s); inferred from the --report extension when unset", strings.Join(report.SupportedFormats(), ", ")),
	}
}

// writeReport writes the run report to --report when set, for failed runs as
// well as successful ones. Write failures are logged only.
func writeReport(ctx context.Context, cmd *cli.Command, r *pipeline.Report, runErr error) {
	path := cmd.String("report")
	if path == "" || r == nil {
		return
	}

	w, err := report.NewFileWriter(report.Format(cmd.String("report-format")), path)
	if err != nil {
		slog.Warn("failed to write run report", "path", path, "error", err)
		return
	}
	defer func() { _ = w.Close() }()

	if err := w.Serialize(ctx, report.FromPipeline(r, runErr, cmd.Bool("dry-run"))); err != nil {
		slog.Warn("failed to write run report", "path", path, "error", err)
	}
}
