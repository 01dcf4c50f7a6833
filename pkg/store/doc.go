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

// Package store provides the object store capability used by the publisher.
//
// ObjectStore is a single-method interface: put bytes under a key with a
// content type. Two implementations are provided:
//
//   - S3: aws-sdk-go-v2 client for Cloudflare R2 or any S3-compatible store
//   - Memory: in-memory map used by --dry-run and tests, with fault injection
//
// Example:
//
//	s, err := store.NewS3(cfg)
//	err = s.PutObject(ctx, "v2/myapp/blobs/af13...", data, "application/octet-stream")
package store
