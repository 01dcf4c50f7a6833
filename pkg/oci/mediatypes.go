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

package oci

import (
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Workspace naming produced by `skopeo copy ... dir:<path>`.
const (
	// ManifestSuffix marks manifest files in the converter workspace.
	ManifestSuffix = ".manifest.json"
	// VersionFile is converter bookkeeping and is discarded.
	VersionFile = "version"
)

// BlobContentType is the content type of every uploaded blob.
const BlobContentType = "application/octet-stream"

// Docker distribution media types not covered by image-spec.
const (
	MediaTypeDockerManifest     = "application/vnd.docker.distribution.manifest.v2+json"
	MediaTypeDockerManifestList = "application/vnd.docker.distribution.manifest.list.v2+json"
)

var knownManifestMediaTypes = map[string]struct{}{
	ocispec.MediaTypeImageManifest: {},
	ocispec.MediaTypeImageIndex:    {},
	MediaTypeDockerManifest:        {},
	MediaTypeDockerManifestList:    {},
}

// IsKnownManifestMediaType reports whether mt is a registry manifest or index
// media type. Unknown types are still published as-is.
func IsKnownManifestMediaType(mt string) bool {
	_, ok := knownManifestMediaTypes[mt]
	return ok
}
