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

// Package digest computes content digests for staged artifacts.
//
// A digest is the lowercase hex encoding of a 256-bit cryptographic hash of a
// file's bytes. It is the artifact's permanent identity: its staged filename
// and the last segment of its object key. Files are streamed through a fixed
// buffer so memory use does not grow with file size.
//
// Two algorithms are supported:
//
//   - blake3 (default), via github.com/zeebo/blake3
//   - sha256, via github.com/opencontainers/go-digest
//
// A deployment must pick one and keep it; switching changes every key.
//
// Example:
//
//	h := digest.NewHasher(digest.BLAKE3)
//	sum, err := h.SumFile("/tmp/ws/layer.tar.gz")
package digest
