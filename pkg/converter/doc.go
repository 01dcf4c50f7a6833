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

// Package converter wraps the external tool that exports a local container
// image into loose content-addressed files.
//
// The default implementation shells out to skopeo:
//
//	skopeo copy --all docker-daemon:<name>:<tag> dir:<workspace>
//
// Check is a pre-flight used before any filesystem work: it resolves the
// binary on PATH and verifies `skopeo --version` reports at least 1.0. A
// missing or unusable tool is a TOOL_MISSING error; a failed copy is a
// CONVERSION error carrying the tail of skopeo's stderr.
//
// DockerProbe optionally confirms the image exists in the local daemon
// through the Docker Engine API so a typo fails fast with a clear message
// rather than a skopeo transport error.
package converter
