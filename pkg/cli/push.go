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
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/blobpush/pkg/converter"
	"github.com/NVIDIA/blobpush/pkg/defaults"
	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
	"github.com/NVIDIA/blobpush/pkg/metrics"
	"github.com/NVIDIA/blobpush/pkg/oci"
	"github.com/NVIDIA/blobpush/pkg/pipeline"
	"github.com/NVIDIA/blobpush/pkg/staging"
	"github.com/NVIDIA/blobpush/pkg/store"
)

// pushCmdOptions holds parsed options for the push command.
type pushCmdOptions struct {
	ref         oci.ImageReference
	baseDir     string
	skopeo      string
	transport   string
	keepStaging bool
	verifyImage bool
	timeout     time.Duration
}

// parsePushCmdOptions parses and validates command options.
func parsePushCmdOptions(cmd *cli.Command) (*pushCmdOptions, error) {
	arg, err := imageArg(cmd)
	if err != nil {
		return nil, err
	}
	ref, err := oci.ParseImageReference(arg)
	if err != nil {
		return nil, err
	}

	baseDir, err := filepath.Abs(cmd.String("base-dir"))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid --base-dir", err)
	}

	if cmd.Duration("timeout") < 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "--timeout must not be negative")
	}

	return &pushCmdOptions{
		ref:         ref,
		baseDir:     baseDir,
		skopeo:      cmd.String("skopeo"),
		transport:   cmd.String("transport"),
		keepStaging: cmd.Bool("keep-staging"),
		verifyImage: cmd.Bool("verify-image"),
		timeout:     cmd.Duration("timeout"),
	}, nil
}

func baseDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "base-dir",
		Aliases: []string{"d"},
		Usage:   "Directory holding the workspace and the v2/<image> staging tree",
		Value:   ".",
	}
}

func keepStagingFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "keep-staging",
		Usage: "Keep the v2/<image> staging tree after the run for inspection or publish-staged",
	}
}

func digestAlgorithmFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "digest-algorithm",
		Usage: "Content digest used for staged names and object keys (blake3, sha256)",
	}
}

func pushCmd() *cli.Command {
	flags := []cli.Flag{
		baseDirFlag(),
		&cli.StringFlag{
			Name:  "skopeo",
			Usage: "skopeo executable name or path",
			Value: defaults.SkopeoBinary,
		},
		&cli.StringFlag{
			Name:  "transport",
			Usage: "skopeo source transport (docker-daemon, containers-storage, ...)",
			Value: defaults.SkopeoTransport,
		},
		digestAlgorithmFlag(),
		keepStagingFlag(),
		reportFlag(),
		reportFormatFlag(),
		&cli.BoolFlag{
			Name:  "verify-image",
			Usage: "Check the image exists in the local Docker daemon before converting",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Overall timeout for the run (0 = none)",
			Value: defaults.RunTimeout,
		},
	}

	return &cli.Command{
		Name:      "push",
		Usage:     "Convert a local image and publish it to object storage",
		ArgsUsage: "<image[:tag]>",
		Description: `Exports the image with skopeo into a temporary workspace, stages every file
under its content digest and uploads blobs, then manifests. The workspace and
staging tree are removed afterwards, on success and on failure.

# Examples

Publish myapp:latest to R2 using credentials from .env:
  blobpush push myapp:latest

Rehearse without touching the bucket:
  blobpush push --dry-run myapp:v1.2.0

Keep the staged tree so a failed upload can be retried:
  blobpush push --keep-staging myapp:latest
  blobpush publish-staged myapp`,
		Flags: append(flags, storeFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parsePushCmdOptions(cmd)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			hasher, err := hasherFor(cfg)
			if err != nil {
				return err
			}
			objects, err := newStore(cmd, cfg)
			if err != nil {
				return err
			}

			var conv converter.Converter = converter.NewSkopeo(
				converter.WithBinary(opts.skopeo),
				converter.WithTransport(opts.transport),
			)
			if opts.verifyImage {
				probe, probeErr := converter.NewDockerProbe()
				if probeErr != nil {
					return probeErr
				}
				defer func() { _ = probe.Close() }()
				conv = converter.WithImageCheck(conv, probe)
			}

			if opts.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.timeout)
				defer cancel()
			}

			rec := metrics.NewRecorder()
			defer writeMetrics(cmd, rec)

			ctrl := pipeline.New(opts.baseDir, conv, newPublisher(cmd, objects, rec),
				pipeline.WithStager(staging.NewStager(hasher)),
				pipeline.WithKeepStaging(opts.keepStaging),
				pipeline.WithMetrics(rec),
			)

			slog.Info("pushing image",
				"image", opts.ref.String(),
				"base_dir", opts.baseDir,
				"dry_run", cmd.Bool("dry-run"))

			report, err := ctrl.Run(ctx, opts.ref)
			writeReport(ctx, cmd, report, err)
			if err != nil {
				return err
			}

			printReport(cmd.Root().Writer, report, objects)
			return nil
		},
	}
}

func publishStagedCmd() *cli.Command {
	flags := []cli.Flag{baseDirFlag(), keepStagingFlag(), reportFlag(), reportFormatFlag()}

	return &cli.Command{
		Name:      "publish-staged",
		Usage:     "Upload an existing v2/<image> staging tree without converting",
		ArgsUsage: "<image>",
		Description: `Re-runs the publish phase against a tree kept with push --keep-staging,
typically after a transient upload failure. Re-uploading unchanged objects is
safe: every key is derived from the object's own digest.`,
		Flags: append(flags, storeFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			image, err := imageArg(cmd)
			if err != nil {
				return err
			}
			if err := oci.ValidateImageName(image); err != nil {
				return err
			}
			baseDir, err := filepath.Abs(cmd.String("base-dir"))
			if err != nil {
				return apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid --base-dir", err)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			objects, err := newStore(cmd, cfg)
			if err != nil {
				return err
			}

			rec := metrics.NewRecorder()
			defer writeMetrics(cmd, rec)

			ctrl := pipeline.New(baseDir, nil, newPublisher(cmd, objects, rec),
				pipeline.WithKeepStaging(cmd.Bool("keep-staging")),
				pipeline.WithMetrics(rec),
			)

			report, err := ctrl.Republish(ctx, image)
			writeReport(ctx, cmd, report, err)
			if err != nil {
				return err
			}

			printReport(cmd.Root().Writer, report, objects)
			return nil
		},
	}
}

// printReport writes a human readable run summary. In dry-run mode the keys
// that would have been written are listed.
func printReport(w io.Writer, report *pipeline.Report, objects store.ObjectStore) {
	fmt.Fprintf(w, "\nPublished %s (run %s)\n", report.Image, report.RunID)
	if report.Blobs != nil {
		fmt.Fprintf(w, "  blobs:     %d (%d bytes)\n", len(report.Blobs.Keys), report.Blobs.Bytes)
	}
	if report.Manifests != nil {
		fmt.Fprintf(w, "  manifests: %d (%d bytes)\n", len(report.Manifests.Keys), report.Manifests.Bytes)
	}
	fmt.Fprintf(w, "  duration:  %s\n", report.Duration.Round(time.Millisecond))

	if mem, ok := objects.(*store.Memory); ok {
		fmt.Fprintf(w, "\nDry run, objects not uploaded:\n")
		for _, key := range mem.Keys() {
			obj, _ := mem.Get(key)
			fmt.Fprintf(w, "  %s  %s\n", key, obj.ContentType)
		}
	}
}
