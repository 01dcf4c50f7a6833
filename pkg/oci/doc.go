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

// Package oci holds the image reference and media type vocabulary shared by
// the staging and publish steps.
//
// # Image References
//
// ParseImageReference accepts "name[:tag]" in the same forms docker accepts
// and returns the familiar repository name plus a tag (default "latest"):
//
//	ref, err := oci.ParseImageReference("myapp:latest")
//	// ref.Name == "myapp", ref.Tag == "latest"
//
// The name becomes the key namespace: v2/<name>/blobs/<digest> and
// v2/<name>/manifests/<digest>.
//
// # Workspace Conventions
//
// The converter writes a "version" file (discarded), manifests ending in
// ".manifest.json", and opaque blob files. Blobs are always published as
// application/octet-stream; manifests keep the mediaType they declare.
package oci
