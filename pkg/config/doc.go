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

// Package config loads the object store settings for blobpush.
//
// Settings come from an optional YAML file, an optional dotenv file and the
// process environment, in increasing precedence. CLI flags are applied on
// top by pkg/cli.
//
//	CLOUDFLARE_ACCOUNT_ID   account identifier (endpoint derivation)
//	R2_BUCKET               destination bucket
//	R2_ACCESS_KEY_ID        access key id
//	R2_SECRET_ACCESS_KEY    secret access key
//	R2_ENDPOINT             optional endpoint override (any S3-compatible store)
//	R2_REGION               optional signing region (default "auto")
//	R2_USE_PATH_STYLE       optional path-style addressing
//
// The first four are required. Validate reports all missing values at once
// and runs before any filesystem or network work.
//
// Example YAML:
//
//	accountId: 0123456789abcdef
//	bucket: images
//	accessKeyId: AKIA...
//	secretAccessKey: ...
//	digestAlgorithm: blake3
package config
