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

// Package cli implements the blobpush command line.
//
// # Commands
//
// push - Convert a local image and publish it:
//
//	blobpush push myapp:latest
//
// Exports the image with skopeo into a workspace under --base-dir, stages each
// file as v2/<image>/{blobs,manifests}/<digest>, uploads blobs then manifests,
// and removes the workspace and staging tree.
//
// publish-staged - Re-upload a tree kept with --keep-staging:
//
//	blobpush publish-staged myapp
//
// version - Print build information.
//
// # Global Flags
//
//	--log-level     debug, info, warn, error (default: info, env LOG_LEVEL)
//	--log-format    text or json (default: text)
//	--config        YAML file with object store settings
//	--env-file      dotenv file (default: .env when present)
//	--metrics-file  write Prometheus text metrics after the run
//
// # Environment Variables
//
//	CLOUDFLARE_ACCOUNT_ID  R2 account; the endpoint is derived from it
//	R2_BUCKET              destination bucket
//	R2_ACCESS_KEY_ID       access key
//	R2_SECRET_ACCESS_KEY   secret key
//	R2_ENDPOINT            endpoint override for other S3-compatible stores
//	R2_REGION              signing region (default: auto)
//
// Precedence, lowest first: --config file, dotenv file, environment, flags.
//
// # Exit Codes
//
//	0  Success
//	1  Failure (configuration, tool, conversion, IO, manifest or upload error)
//	2  Context canceled or timeout
package cli
