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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/blobpush/pkg/converter"
	"github.com/NVIDIA/blobpush/pkg/digest"
	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
	"github.com/NVIDIA/blobpush/pkg/metrics"
	"github.com/NVIDIA/blobpush/pkg/oci"
	"github.com/NVIDIA/blobpush/pkg/publish"
	"github.com/NVIDIA/blobpush/pkg/staging"
	"github.com/NVIDIA/blobpush/pkg/store"
)

const (
	manifestBody = `{"mediaType":"application/vnd.oci.image.manifest.v1+json"}`
	layerBody    = "layer.tar.gz-content"
)

// exportFunc returns a fake converter that writes the given files and counts
// its invocations.
func exportFunc(files map[string]string, calls *int) converter.Func {
	return func(_ context.Context, _ oci.ImageReference, dest string) error {
		*calls++
		for name, body := range files {
			if err := os.WriteFile(filepath.Join(dest, name), []byte(body), 0o600); err != nil {
				return err
			}
		}
		return nil
	}
}

func defaultExport() map[string]string {
	return map[string]string{
		"version":                 "Directory Transport Version: 1.1\n",
		"sha-layer.manifest.json": manifestBody,
		"layer.tar.gz":            layerBody,
	}
}

func mustRef(t *testing.T, s string) oci.ImageReference {
	t.Helper()
	ref, err := oci.ParseImageReference(s)
	require.NoError(t, err)
	return ref
}

// assertClean verifies nothing but the base dir itself is left behind.
func assertClean(t *testing.T, base string) {
	t.Helper()
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Empty(t, names, "workspace and staging tree must be removed")
}

func TestRun_EndToEnd(t *testing.T) {
	base := t.TempDir()
	mem := store.NewMemory()
	calls := 0

	var seen []State
	c := New(base, exportFunc(defaultExport(), &calls), publish.New(mem),
		WithOnTransition(func(_ string, tr Transition) { seen = append(seen, tr.To) }))

	report, err := c.Run(context.Background(), mustRef(t, "myapp:latest"))
	require.NoError(t, err)

	h := digest.NewHasher(digest.BLAKE3)
	manifestKey := "v2/myapp/manifests/" + h.SumBytes([]byte(manifestBody))
	blobKey := "v2/myapp/blobs/" + h.SumBytes([]byte(layerBody))

	assert.ElementsMatch(t, []string{manifestKey, blobKey}, mem.Keys())

	m, ok := mem.Get(manifestKey)
	require.True(t, ok)
	assert.Equal(t, "application/vnd.oci.image.manifest.v1+json", m.ContentType)
	assert.Equal(t, manifestBody, string(m.Body))

	b, ok := mem.Get(blobKey)
	require.True(t, ok)
	assert.Equal(t, "application/octet-stream", b.ContentType)
	assert.Equal(t, layerBody, string(b.Body))

	assert.Equal(t, 1, calls, "converter runs exactly once")
	assertClean(t, base)

	assert.Equal(t, StateDone, report.FinalState)
	assert.Equal(t, "myapp", report.Image)
	assert.NotEmpty(t, report.RunID)
	assert.Len(t, report.Artifacts, 2)
	assert.NoError(t, report.CleanupErr)
	assert.Equal(t, []State{
		StateConverting, StateStaging, StateClassifying, StatePublishing, StateCleaningUp, StateDone,
	}, seen)
	assert.Len(t, report.Transitions, len(seen))
}

func TestRun_KeepStaging(t *testing.T) {
	base := t.TempDir()
	calls := 0
	c := New(base, exportFunc(defaultExport(), &calls), publish.New(store.NewMemory()), WithKeepStaging(true))

	_, err := c.Run(context.Background(), mustRef(t, "myapp:latest"))
	require.NoError(t, err)

	tree, err := staging.Open(base, "myapp")
	require.NoError(t, err)
	artifacts, err := staging.Scan(tree)
	require.NoError(t, err)
	assert.Len(t, artifacts, 2)

	matches, err := filepath.Glob(filepath.Join(base, ".blobpush-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "workspace is always removed")
}

func TestRun_ConverterFailure(t *testing.T) {
	base := t.TempDir()
	mem := store.NewMemory()
	convErr := apperrors.New(apperrors.ErrCodeConversion, "skopeo exited 1")

	c := New(base, converter.Func(func(context.Context, oci.ImageReference, string) error {
		return convErr
	}), publish.New(mem))

	report, err := c.Run(context.Background(), mustRef(t, "myapp:latest"))
	require.Error(t, err)
	assert.Same(t, convErr, err, "the original error is returned unmodified")
	assert.Equal(t, StateFailed, report.FinalState)
	assert.Empty(t, mem.Keys())
	assertClean(t, base)
}

type failingCheck struct{ converter.Func }

func (failingCheck) Check(context.Context) error {
	return apperrors.New(apperrors.ErrCodeToolMissing, "skopeo not found")
}

func TestRun_ToolMissing(t *testing.T) {
	base := filepath.Join(t.TempDir(), "never-created")
	calls := 0
	c := New(base, failingCheck{exportFunc(defaultExport(), &calls)}, publish.New(store.NewMemory()))

	report, err := c.Run(context.Background(), mustRef(t, "myapp:latest"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeToolMissing))
	assert.Equal(t, 0, calls)
	assert.NoDirExists(t, base, "pre-flight failures touch no filesystem")
	assert.Equal(t, StateFailed, report.FinalState)
}

func TestRun_MalformedManifest(t *testing.T) {
	base := t.TempDir()
	mem := store.NewMemory()
	calls := 0
	files := map[string]string{
		"version":           "x",
		"bad.manifest.json": `{"schemaVersion":2}`,
	}

	c := New(base, exportFunc(files, &calls), publish.New(mem))
	_, err := c.Run(context.Background(), mustRef(t, "myapp:latest"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeMalformedManifest))
	assert.Empty(t, mem.Keys())
	assertClean(t, base)
}

func TestRun_UploadFailure(t *testing.T) {
	base := t.TempDir()
	mem := store.NewMemory()
	transport := errors.New("connection reset by peer")
	mem.FailAt(2, transport)

	files := map[string]string{
		"version": "x",
		"b1":      "one",
		"b2":      "two",
		"b3":      "three",
	}
	calls := 0
	c := New(base, exportFunc(files, &calls), publish.New(mem, publish.WithConcurrency(1)))

	report, err := c.Run(context.Background(), mustRef(t, "myapp:latest"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeUpload))
	assert.ErrorIs(t, err, transport)
	assert.Len(t, mem.Keys(), 1, "the upload before the failure stays in the store")
	assert.Equal(t, StateFailed, report.FinalState)
	assertClean(t, base)
}

func TestRun_DirectoryInWorkspace(t *testing.T) {
	base := t.TempDir()
	c := New(base, converter.Func(func(_ context.Context, _ oci.ImageReference, dest string) error {
		return os.Mkdir(filepath.Join(dest, "nested"), 0o755)
	}), publish.New(store.NewMemory()))

	_, err := c.Run(context.Background(), mustRef(t, "myapp:latest"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeIO))
	assertClean(t, base)
}

func TestRun_Cancelled(t *testing.T) {
	base := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	c := New(base, converter.Func(func(_ context.Context, _ oci.ImageReference, dest string) error {
		cancel()
		return os.WriteFile(filepath.Join(dest, "blob"), []byte("x"), 0o600)
	}), publish.New(store.NewMemory()))

	_, err := c.Run(ctx, mustRef(t, "myapp:latest"))
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	assertClean(t, base)
}

func TestRun_Metrics(t *testing.T) {
	rec := metrics.NewRecorder()
	calls := 0
	c := New(t.TempDir(), exportFunc(defaultExport(), &calls), publish.New(store.NewMemory(), publish.WithMetrics(rec)),
		WithMetrics(rec))

	_, err := c.Run(context.Background(), mustRef(t, "myapp:latest"))
	require.NoError(t, err)

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["blobpush_artifacts_staged_total"])
	assert.True(t, names["blobpush_run_duration_seconds"])
}

func TestRepublish(t *testing.T) {
	base := t.TempDir()
	flaky := store.NewMemory()
	flaky.FailOn("v2/myapp/blobs/"+digest.NewHasher(digest.BLAKE3).SumBytes([]byte(layerBody)), errors.New("503"))

	calls := 0
	first := New(base, exportFunc(defaultExport(), &calls), publish.New(flaky), WithKeepStaging(true))
	_, err := first.Run(context.Background(), mustRef(t, "myapp:latest"))
	require.Error(t, err)

	tree, err := staging.Open(base, "myapp")
	require.NoError(t, err, "kept staging tree survives the failed run")

	healthy := store.NewMemory()
	second := New(base, nil, publish.New(healthy))
	report, err := second.Republish(context.Background(), "myapp")
	require.NoError(t, err)

	assert.Len(t, healthy.Keys(), 2)
	assert.Equal(t, StateDone, report.FinalState)
	assert.Equal(t, 1, calls, "republish never converts")
	assert.NoDirExists(t, tree.ImageDir)
}

func TestRepublish_Missing(t *testing.T) {
	c := New(t.TempDir(), nil, publish.New(store.NewMemory()))
	_, err := c.Republish(context.Background(), "myapp")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeIO))
}

func TestRepublish_Empty(t *testing.T) {
	base := t.TempDir()
	_, err := staging.Prepare(base, "myapp")
	require.NoError(t, err)

	c := New(base, nil, publish.New(store.NewMemory()))
	_, err = c.Republish(context.Background(), "myapp")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidRequest))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "init", StateInit.String())
	assert.Equal(t, "cleaning-up", StateCleaningUp.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(99).String())
	assert.True(t, StateDone.Terminal())
	assert.False(t, StatePublishing.Terminal())
}
