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

package converter

import (
	"context"

	"github.com/NVIDIA/blobpush/pkg/oci"
)

// Converter exports an image into a directory of loose, content-addressed
// files (blobs, manifests and a format marker). Implementations must leave
// dest flat: no subdirectories.
type Converter interface {
	// Check verifies the converter can run at all. It is called before any
	// filesystem work and fails with TOOL_MISSING.
	Check(ctx context.Context) error

	// Convert writes the image to dest and fails with CONVERSION.
	Convert(ctx context.Context, ref oci.ImageReference, dest string) error
}

// Func adapts a plain function to a Converter whose Check always succeeds.
type Func func(ctx context.Context, ref oci.ImageReference, dest string) error

func (f Func) Check(context.Context) error { return nil }

func (f Func) Convert(ctx context.Context, ref oci.ImageReference, dest string) error {
	return f(ctx, ref, dest)
}
