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

package publish

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/blobpush/pkg/defaults"
	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
	"github.com/NVIDIA/blobpush/pkg/metrics"
	"github.com/NVIDIA/blobpush/pkg/oci"
	"github.com/NVIDIA/blobpush/pkg/staging"
	"github.com/NVIDIA/blobpush/pkg/store"
)

// Publisher uploads staged artifacts to an object store.
//
// Uploads within a phase run on a bounded worker pool. The first failure
// cancels the phase: in-flight uploads see a cancelled context and queued
// ones never start. Nothing is retried or rolled back here; objects uploaded
// before the failure stay in the store.
type Publisher struct {
	store         store.ObjectStore
	concurrency   int
	limiter       *rate.Limiter
	metrics       *metrics.Recorder
	uploadTimeout time.Duration
}

// Option defines a functional option for configuring Publisher.
type Option func(*Publisher)

// WithConcurrency sets the number of concurrent uploads per phase. Values
// below 1 select sequential uploads.
func WithConcurrency(n int) Option {
	return func(p *Publisher) {
		switch {
		case n < 1:
			n = 1
		case n > defaults.MaxUploadConcurrency:
			n = defaults.MaxUploadConcurrency
		}
		p.concurrency = n
	}
}

// WithRateLimit limits uploads to perSecond objects per second. Zero disables
// limiting.
func WithRateLimit(perSecond float64) Option {
	return func(p *Publisher) {
		if perSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithMetrics records upload metrics on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(p *Publisher) {
		p.metrics = r
	}
}

// WithUploadTimeout bounds each PutObject call. Zero disables the bound.
func WithUploadTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.uploadTimeout = d
	}
}

// New returns a Publisher writing to s.
func New(s store.ObjectStore, opts ...Option) *Publisher {
	p := &Publisher{
		store:         s,
		concurrency:   defaults.UploadConcurrency,
		uploadTimeout: defaults.UploadTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes one publish phase.
type Result struct {
	Class staging.Class
	// Keys lists uploaded object keys in sorted order.
	Keys []string
	// Bytes is the total uploaded payload size.
	Bytes int64
}

// PublishBlobs uploads every file in blobsDir as v2/<image>/blobs/<name>
// with content type application/octet-stream.
func (p *Publisher) PublishBlobs(ctx context.Context, image, blobsDir string) (*Result, error) {
	return p.publishDir(ctx, image, blobsDir, staging.ClassBlob)
}

// PublishManifests uploads every file in manifestsDir as
// v2/<image>/manifests/<name> with the content type taken from the
// document's mediaType.
func (p *Publisher) PublishManifests(ctx context.Context, image, manifestsDir string) (*Result, error) {
	return p.publishDir(ctx, image, manifestsDir, staging.ClassManifest)
}

// PublishTree uploads blobs, then manifests, so a manifest is never visible
// before the blobs it references.
func (p *Publisher) PublishTree(ctx context.Context, image string, tree *staging.Tree) (blobs, manifests *Result, err error) {
	blobs, err = p.PublishBlobs(ctx, image, tree.BlobsDir)
	if err != nil {
		return blobs, nil, err
	}
	manifests, err = p.PublishManifests(ctx, image, tree.ManifestsDir)
	return blobs, manifests, err
}

func (p *Publisher) publishDir(ctx context.Context, image, dir string, class staging.Class) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to read staging directory", err,
			map[string]any{"path": dir})
	}

	var (
		mu  sync.Mutex
		res = &Result{Class: class}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Stop scheduling once the phase has failed or been cancelled.
		if gctx.Err() != nil {
			break
		}

		name := entry.Name()
		g.Go(func() error {
			// Queued behind a failed upload.
			if err := gctx.Err(); err != nil {
				return err
			}
			n, key, err := p.upload(gctx, image, filepath.Join(dir, name), name, class)
			if err != nil {
				return err
			}
			mu.Lock()
			res.Keys = append(res.Keys, key)
			res.Bytes += int64(n)
			mu.Unlock()
			return nil
		})
	}

	err = g.Wait()
	sort.Strings(res.Keys)
	if err == nil {
		// The caller's context may have been cancelled between items.
		err = ctx.Err()
	}
	return res, err
}

func (p *Publisher) upload(ctx context.Context, image, filePath, name string, class staging.Class) (int, string, error) {
	key := ObjectKey(image, class, name)

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return 0, key, err
		}
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, key, apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to read staged artifact", err,
			map[string]any{"artifact": name, "path": filePath})
	}

	contentType := oci.BlobContentType
	if class == staging.ClassManifest {
		mt, err := ManifestMediaType(data)
		if err != nil {
			return 0, key, apperrors.WrapWithContext(apperrors.ErrCodeMalformedManifest, "refusing to publish manifest", err,
				map[string]any{"artifact": name, "path": filePath})
		}
		if !oci.IsKnownManifestMediaType(mt) {
			slog.Warn("manifest has unrecognized media type", "artifact", name, "media_type", mt)
		}
		contentType = mt
	}

	putCtx := ctx
	if p.uploadTimeout > 0 {
		var cancel context.CancelFunc
		putCtx, cancel = context.WithTimeout(ctx, p.uploadTimeout)
		defer cancel()
	}

	start := time.Now()
	err = p.store.PutObject(putCtx, key, data, contentType)
	p.metrics.ObserveUpload(class.String(), len(data), time.Since(start), err)
	if err != nil {
		return 0, key, apperrors.WrapWithContext(apperrors.ErrCodeUpload, "failed to upload "+classNoun(class), err,
			map[string]any{"artifact": name, "key": key})
	}

	slog.Info("uploaded object",
		"key", key,
		"content_type", contentType,
		"bytes", len(data))

	return len(data), key, nil
}

func classNoun(c staging.Class) string {
	if c == staging.ClassManifest {
		return "manifest"
	}
	return "blob"
}
