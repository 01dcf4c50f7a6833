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

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/NVIDIA/blobpush/pkg/converter"
	"github.com/NVIDIA/blobpush/pkg/defaults"
	"github.com/NVIDIA/blobpush/pkg/digest"
	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
	"github.com/NVIDIA/blobpush/pkg/metrics"
	"github.com/NVIDIA/blobpush/pkg/oci"
	"github.com/NVIDIA/blobpush/pkg/publish"
	"github.com/NVIDIA/blobpush/pkg/staging"
)

// Controller drives one image through convert, stage, classify, publish and
// cleanup. A Controller holds no per-run state and may be reused.
type Controller struct {
	baseDir      string
	keepStaging  bool
	converter    converter.Converter
	stager       *staging.Stager
	publisher    *publish.Publisher
	metrics      *metrics.Recorder
	logger       *slog.Logger
	onTransition func(runID string, t Transition)
}

// Option configures a Controller.
type Option func(*Controller)

// WithStager overrides the default BLAKE3 stager.
func WithStager(s *staging.Stager) Option {
	return func(c *Controller) {
		if s != nil {
			c.stager = s
		}
	}
}

// WithKeepStaging leaves the v2/<image> tree in place after the run so it can
// be inspected or re-published. The converter workspace is always removed.
func WithKeepStaging(keep bool) Option {
	return func(c *Controller) {
		c.keepStaging = keep
	}
}

// WithMetrics records staging and run metrics.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Controller) {
		c.metrics = r
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnTransition registers a hook called synchronously on every state change.
func WithOnTransition(fn func(runID string, t Transition)) Option {
	return func(c *Controller) {
		c.onTransition = fn
	}
}

// New returns a controller that stages under baseDir.
func New(baseDir string, conv converter.Converter, pub *publish.Publisher, opts ...Option) *Controller {
	c := &Controller{
		baseDir:   baseDir,
		converter: conv,
		publisher: pub,
		stager:    staging.NewStager(digest.NewHasher(digest.BLAKE3)),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Report summarizes a run.
type Report struct {
	RunID       string
	Image       string
	Artifacts   []staging.Artifact
	Blobs       *publish.Result
	Manifests   *publish.Result
	Duration    time.Duration
	FinalState  State
	Transitions []Transition

	// CleanupErr is set when removing the workspace or staging tree failed.
	// It never replaces the run's own error.
	CleanupErr error
}

// run carries per-invocation state.
type run struct {
	c      *Controller
	report *Report
	state  State
	log    *slog.Logger
	start  time.Time
}

func (c *Controller) newRun(image string) *run {
	id := uuid.NewString()
	return &run{
		c:      c,
		report: &Report{RunID: id, Image: image},
		state:  StateInit,
		log:    c.logger.With("run_id", id, "image", image),
		start:  time.Now(),
	}
}

func (r *run) transition(to State) {
	t := Transition{From: r.state, To: to, At: time.Now()}
	r.report.Transitions = append(r.report.Transitions, t)
	r.state = to
	r.log.Debug("state transition", "from", t.From.String(), "to", t.To.String())
	if r.c.onTransition != nil {
		r.c.onTransition(r.report.RunID, t)
	}
}

// finish moves to the terminal state and stamps the report. err is returned
// unchanged.
func (r *run) finish(err error) (*Report, error) {
	final := StateDone
	if err != nil {
		final = StateFailed
	}
	r.transition(final)
	r.report.FinalState = final
	r.report.Duration = time.Since(r.start)
	r.c.metrics.ObserveRun(r.report.Duration, err)

	if err != nil {
		r.log.Error("run failed", "error", err, "duration", r.report.Duration)
		return r.report, err
	}
	r.log.Info("run complete",
		"artifacts", len(r.report.Artifacts),
		"duration", r.report.Duration)
	return r.report, nil
}

// Run converts ref, stages the output under baseDir/v2/<name> and publishes
// it. The converter is invoked exactly once. On failure cleanup still runs
// and the returned error is the one that stopped the run.
func (c *Controller) Run(ctx context.Context, ref oci.ImageReference) (*Report, error) {
	r := c.newRun(ref.Name)
	r.log.Info("starting run", "tag", ref.Tag, "base_dir", c.baseDir)

	if err := c.converter.Check(ctx); err != nil {
		return r.finish(err)
	}

	if err := os.MkdirAll(c.baseDir, defaults.StagingDirMode); err != nil {
		return r.finish(apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to create base directory", err,
			map[string]any{"path": c.baseDir}))
	}

	// The workspace sits inside baseDir so the stager's renames stay on one
	// filesystem.
	workspace, err := os.MkdirTemp(c.baseDir, defaults.WorkspacePattern)
	if err != nil {
		return r.finish(apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to create workspace", err,
			map[string]any{"base_dir": c.baseDir}))
	}

	var tree *staging.Tree
	runErr := r.execute(ctx, ref, workspace, &tree)

	r.transition(StateCleaningUp)
	r.report.CleanupErr = c.cleanup(r.log, workspace, tree)

	return r.finish(runErr)
}

func (r *run) execute(ctx context.Context, ref oci.ImageReference, workspace string, tree **staging.Tree) error {
	c := r.c

	r.transition(StateConverting)
	r.log.Info("converting image", "workspace", workspace)
	if err := c.converter.Convert(ctx, ref, workspace); err != nil {
		return err
	}

	r.transition(StateStaging)
	t, err := staging.Prepare(c.baseDir, ref.Name)
	if err != nil {
		return err
	}
	*tree = t

	r.transition(StateClassifying)
	artifacts, err := c.stager.Stage(ctx, workspace, t)
	r.report.Artifacts = artifacts
	for _, a := range artifacts {
		c.metrics.ObserveStaged(a.Class.String())
	}
	if err != nil {
		return err
	}
	r.log.Info("staged artifacts", "count", len(artifacts), "tree", t.ImageDir)

	return r.publish(ctx, t)
}

func (r *run) publish(ctx context.Context, tree *staging.Tree) error {
	r.transition(StatePublishing)
	blobs, manifests, err := r.c.publisher.PublishTree(ctx, r.report.Image, tree)
	r.report.Blobs = blobs
	r.report.Manifests = manifests
	if err != nil {
		return err
	}
	r.log.Info("published image",
		"blobs", len(blobs.Keys),
		"manifests", len(manifests.Keys),
		"bytes", blobs.Bytes+manifests.Bytes)
	return nil
}

// cleanup removes the workspace and, unless kept, the staging tree. Every
// step is attempted; failures are aggregated and logged.
func (c *Controller) cleanup(log *slog.Logger, workspace string, tree *staging.Tree) error {
	var result *multierror.Error

	if workspace != "" {
		if err := os.RemoveAll(workspace); err != nil {
			result = multierror.Append(result, apperrors.WrapWithContext(apperrors.ErrCodeIO,
				"failed to remove workspace", err, map[string]any{"path": workspace}))
		}
	}

	if tree != nil {
		if c.keepStaging {
			log.Info("keeping staging tree", "path", tree.ImageDir)
		} else if err := tree.Remove(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		log.Warn("cleanup incomplete", "error", err)
		return err
	}
	return nil
}

// Republish uploads an existing staged tree for image without converting
// again. It is the recovery path after a transient upload failure on a run
// that kept its staging tree. The tree is removed on success unless the
// controller keeps staging; on failure it is left for the next attempt.
func (c *Controller) Republish(ctx context.Context, image string) (*Report, error) {
	r := c.newRun(image)
	r.log.Info("republishing staged tree", "base_dir", c.baseDir)

	tree, err := staging.Open(c.baseDir, image)
	if err != nil {
		return r.finish(err)
	}

	artifacts, err := staging.Scan(tree)
	if err != nil {
		return r.finish(err)
	}
	r.report.Artifacts = artifacts
	if len(artifacts) == 0 {
		return r.finish(apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"staging tree is empty", map[string]any{"path": tree.ImageDir}))
	}

	if err := r.publish(ctx, tree); err != nil {
		return r.finish(err)
	}

	r.transition(StateCleaningUp)
	if !c.keepStaging {
		if err := tree.Remove(); err != nil {
			r.log.Warn("cleanup incomplete", "error", err)
			r.report.CleanupErr = err
		}
	}
	return r.finish(nil)
}

// IsCancelled reports whether err stems from context cancellation or deadline.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
