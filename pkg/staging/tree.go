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

package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/NVIDIA/blobpush/pkg/defaults"
	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
)

// Directory names of the staging layout, mirroring the remote key namespace.
const (
	RootDirName      = "v2"
	ManifestsDirName = "manifests"
	BlobsDirName     = "blobs"
)

// Tree is the local staging layout for one image:
//
//	<base>/v2/<image>/manifests/<digest>
//	<base>/v2/<image>/blobs/<digest>
type Tree struct {
	// Root is <base>/v2.
	Root string
	// ImageDir is <base>/v2/<image>.
	ImageDir string
	// ManifestsDir is <base>/v2/<image>/manifests.
	ManifestsDir string
	// BlobsDir is <base>/v2/<image>/blobs.
	BlobsDir string
}

// Layout returns the tree paths for image under baseDir without touching disk.
func Layout(baseDir, image string) *Tree {
	root := filepath.Join(baseDir, RootDirName)
	imageDir := filepath.Join(root, filepath.FromSlash(image))
	return &Tree{
		Root:         root,
		ImageDir:     imageDir,
		ManifestsDir: filepath.Join(imageDir, ManifestsDirName),
		BlobsDir:     filepath.Join(imageDir, BlobsDirName),
	}
}

// Prepare ensures the manifests and blobs directories exist for image under
// baseDir, creating missing parents. Safe to call on an existing tree.
func Prepare(baseDir, image string) (*Tree, error) {
	if image == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "image name is required")
	}
	t := Layout(baseDir, image)
	for _, dir := range []string{t.ManifestsDir, t.BlobsDir} {
		if err := os.MkdirAll(dir, defaults.StagingDirMode); err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to create staging directory", err,
				map[string]any{"path": dir})
		}
	}
	return t, nil
}

// Open returns the tree for an existing staged image, failing when either
// directory is missing.
func Open(baseDir, image string) (*Tree, error) {
	t := Layout(baseDir, image)
	for _, dir := range []string{t.ManifestsDir, t.BlobsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeIO, "staging directory not found", err,
				map[string]any{"path": dir})
		}
		if !info.IsDir() {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeIO, "staging path is not a directory",
				map[string]any{"path": dir})
		}
	}
	return t, nil
}

// Remove deletes the per-image staging directory, then the v2 root and any
// empty namespace parents left behind.
func (t *Tree) Remove() error {
	if err := os.RemoveAll(t.ImageDir); err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to remove staging tree", err,
			map[string]any{"path": t.ImageDir})
	}
	// Prune empty parents up to and including Root. os.Remove fails on
	// non-empty directories, which is where we stop.
	for dir := filepath.Dir(t.ImageDir); ; dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			break
		}
		if dir == t.Root {
			break
		}
	}
	return nil
}

// String implements fmt.Stringer.
func (t *Tree) String() string {
	return fmt.Sprintf("staging tree %s", t.ImageDir)
}
