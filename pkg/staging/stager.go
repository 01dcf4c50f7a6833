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
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/blobpush/pkg/digest"
	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
	"github.com/NVIDIA/blobpush/pkg/oci"
)

// Class is the artifact class, which selects the staging directory, the
// object key segment and the content type rule.
type Class int

const (
	// ClassBlob is an opaque layer or config object.
	ClassBlob Class = iota
	// ClassManifest is a JSON manifest or index carrying a mediaType.
	ClassManifest
)

// String returns the key segment for the class.
func (c Class) String() string {
	if c == ClassManifest {
		return ManifestsDirName
	}
	return BlobsDirName
}

// Classify returns the class for a workspace entry name. The second result is
// false for converter bookkeeping that must be discarded.
func Classify(name string) (Class, bool) {
	switch {
	case name == oci.VersionFile:
		return ClassBlob, false
	case strings.HasSuffix(name, oci.ManifestSuffix):
		return ClassManifest, true
	default:
		return ClassBlob, true
	}
}

// Artifact is one workspace file after hashing and relocation.
type Artifact struct {
	// SourcePath is the original workspace path.
	SourcePath string
	// Digest is the lowercase hex content digest and the staged filename.
	Digest string
	// Class selects manifests/ or blobs/.
	Class Class
	// StagedPath is the destination inside the staging tree.
	StagedPath string
	// Size is the file size in bytes.
	Size int64
}

// Stager hashes workspace files and moves them into a staging tree.
type Stager struct {
	Hasher *digest.Hasher
}

// NewStager returns a Stager using h.
func NewStager(h *digest.Hasher) *Stager {
	return &Stager{Hasher: h}
}

// Stage empties workspace into tree. The version file is deleted; every other
// entry is hashed and renamed to <tree>/<class>/<digest>. Renames never cross
// filesystems, so the workspace must live on the same device as the tree.
//
// When two entries share a digest the later rename replaces the earlier file
// at the same path. The existing file is re-hashed first and a mismatch is
// reported as an IO error, since it means the staged copy was altered.
//
// Cancellation is honored between entries only.
func (s *Stager) Stage(ctx context.Context, workspace string, tree *Tree) ([]Artifact, error) {
	entries, err := os.ReadDir(workspace)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to read workspace", err,
			map[string]any{"path": workspace})
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}

		name := entry.Name()
		src := filepath.Join(workspace, name)

		class, keep := Classify(name)
		if !keep {
			if err := os.Remove(src); err != nil {
				return artifacts, apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to remove converter metadata", err,
					map[string]any{"path": src})
			}
			slog.Debug("discarded converter metadata", "path", src)
			continue
		}

		if entry.IsDir() {
			return artifacts, apperrors.NewWithContext(apperrors.ErrCodeIO, "unexpected directory in workspace",
				map[string]any{"path": src})
		}

		a, err := s.stageFile(src, class, tree)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, a)

		slog.Debug("staged artifact",
			"source", name,
			"class", a.Class.String(),
			"digest", a.Digest,
			"bytes", a.Size)
	}

	return artifacts, nil
}

func (s *Stager) stageFile(src string, class Class, tree *Tree) (Artifact, error) {
	info, err := os.Stat(src)
	if err != nil {
		return Artifact{}, apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to stat workspace file", err,
			map[string]any{"path": src})
	}

	sum, err := s.Hasher.SumFile(src)
	if err != nil {
		return Artifact{}, err
	}

	dstDir := tree.BlobsDir
	if class == ClassManifest {
		dstDir = tree.ManifestsDir
	}
	dst := filepath.Join(dstDir, sum)

	if err := s.verifyExisting(dst, sum); err != nil {
		return Artifact{}, err
	}

	if err := os.Rename(src, dst); err != nil {
		return Artifact{}, apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to move artifact into staging tree", err,
			map[string]any{"artifact": filepath.Base(src), "path": dst})
	}

	return Artifact{
		SourcePath: src,
		Digest:     sum,
		Class:      class,
		StagedPath: dst,
		Size:       info.Size(),
	}, nil
}

// verifyExisting checks that a file already staged under digest still hashes
// to it. A missing destination is the normal case.
func (s *Stager) verifyExisting(dst, sum string) error {
	if _, err := os.Stat(dst); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to stat staged artifact", err,
			map[string]any{"path": dst})
	}

	existing, err := s.Hasher.SumFile(dst)
	if err != nil {
		return err
	}
	if existing != sum {
		return apperrors.NewWithContext(apperrors.ErrCodeIO, "staged artifact does not match its digest",
			map[string]any{"path": dst, "digest": sum, "actual": existing})
	}
	slog.Debug("duplicate content deduplicated", "digest", sum)
	return nil
}

// Scan lists the artifacts already present in tree without modifying it.
func Scan(tree *Tree) ([]Artifact, error) {
	var out []Artifact
	for _, d := range []struct {
		dir   string
		class Class
	}{
		{tree.BlobsDir, ClassBlob},
		{tree.ManifestsDir, ClassManifest},
	} {
		entries, err := os.ReadDir(d.dir)
		if err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to read staging directory", err,
				map[string]any{"path": d.dir})
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				return nil, apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to stat staged artifact", err,
					map[string]any{"path": filepath.Join(d.dir, e.Name())})
			}
			out = append(out, Artifact{
				Digest:     e.Name(),
				Class:      d.class,
				StagedPath: filepath.Join(d.dir, e.Name()),
				Size:       info.Size(),
			})
		}
	}
	return out, nil
}
