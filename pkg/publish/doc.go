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

// Package publish uploads a staged tree to the object store.
//
// Keys are a pure function of image name, artifact class and digest:
//
//	v2/<image>/blobs/<digest>      application/octet-stream
//	v2/<image>/manifests/<digest>  the manifest's own mediaType
//
// A manifest whose JSON lacks a string mediaType is rejected before any
// upload is attempted for it. Each phase (blobs, manifests) runs on a bounded
// errgroup; the first failure cancels the rest of the phase and is returned
// as an UPLOAD error naming the artifact and key.
//
// Re-publishing an unchanged tree is safe: every key maps to the same bytes,
// so a repeated upload is a pure overwrite.
//
//	p := publish.New(s3store, publish.WithConcurrency(8))
//	blobs, manifests, err := p.PublishTree(ctx, "myapp", tree)
package publish
