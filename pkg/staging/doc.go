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

// Package staging builds the local content-addressed staging tree.
//
// Prepare creates <base>/v2/<image>/manifests and <base>/v2/<image>/blobs.
// A Stager then walks the converter workspace, drops the "version" file,
// classifies each remaining file by its ".manifest.json" suffix, hashes it,
// and renames it into the tree under its digest with no extension:
//
//	tree, err := staging.Prepare(baseDir, "myapp")
//	stager := staging.NewStager(digest.NewHasher(digest.BLAKE3))
//	artifacts, err := stager.Stage(ctx, workspace, tree)
//
// Identical content always lands on the identical path, so duplicate files in
// the workspace collapse into one staged artifact.
package staging
