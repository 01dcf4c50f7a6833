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

package defaults

import "time"

// Converter timeouts for the external image conversion step.
const (
	// ConverterTimeout bounds a single skopeo copy. Large multi-arch images
	// exported from the local daemon can take several minutes.
	ConverterTimeout = 30 * time.Minute

	// ToolProbeTimeout is the timeout for `<tool> --version` pre-flight checks.
	ToolProbeTimeout = 10 * time.Second

	// DockerProbeTimeout is the timeout for the local image presence check.
	DockerProbeTimeout = 10 * time.Second

	// RunTimeout bounds a whole push. Zero means no limit beyond the
	// per-step timeouts.
	RunTimeout time.Duration = 0
)

// Converter tool defaults.
const (
	// SkopeoBinary is the converter executable looked up on PATH.
	SkopeoBinary = "skopeo"

	// SkopeoTransport is the source transport for images in the local daemon.
	SkopeoTransport = "docker-daemon"

	// SkopeoMinVersion is the oldest skopeo release accepted by the pre-flight check.
	SkopeoMinVersion = "1.0"

	// MaxCapturedStderr bounds how much converter stderr is kept for error context.
	MaxCapturedStderr = 8 * 1024
)

// Upload timeouts and limits for the publish phase.
const (
	// UploadTimeout is the per-object timeout for a single PutObject call.
	UploadTimeout = 5 * time.Minute

	// UploadConcurrency is the default number of concurrent uploads per phase.
	UploadConcurrency = 4

	// MaxUploadConcurrency caps user supplied concurrency.
	MaxUploadConcurrency = 64
)

// Hashing and filesystem defaults.
const (
	// HashBufferSize is the fixed read buffer used when streaming files through
	// the digest accumulator.
	HashBufferSize = 32 * 1024

	// StagingDirMode is the permission mode for created staging directories.
	StagingDirMode = 0o755

	// WorkspacePattern is the os.MkdirTemp pattern for the converter workspace.
	WorkspacePattern = ".blobpush-*"
)

// Object store defaults.
const (
	// DefaultRegion is the signing region for Cloudflare R2.
	DefaultRegion = "auto"

	// R2EndpointFormat derives the R2 endpoint from the account identifier.
	R2EndpointFormat = "https://%s.r2.cloudflarestorage.com"
)
