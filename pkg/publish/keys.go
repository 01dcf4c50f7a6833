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

package publish

import (
	"encoding/json"
	"path"
	"strings"

	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
	"github.com/NVIDIA/blobpush/pkg/staging"
)

// KeyPrefix is the root of the registry-like key namespace.
const KeyPrefix = "v2"

// ObjectKey returns v2/<image>/<class>/<digest>. Keys always use forward
// slashes regardless of the host OS.
func ObjectKey(image string, class staging.Class, digest string) string {
	return path.Join(KeyPrefix, image, class.String(), digest)
}

// BlobKey returns v2/<image>/blobs/<digest>.
func BlobKey(image, digest string) string {
	return ObjectKey(image, staging.ClassBlob, digest)
}

// ManifestKey returns v2/<image>/manifests/<digest>.
func ManifestKey(image, digest string) string {
	return ObjectKey(image, staging.ClassManifest, digest)
}

// ManifestMediaType returns the top-level mediaType of a manifest document.
// Invalid JSON, a non-object document, or a missing, empty or non-string
// mediaType is a MALFORMED_MANIFEST error.
func ManifestMediaType(data []byte) (string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeMalformedManifest, "manifest is not a valid JSON object", err)
	}

	raw, ok := doc["mediaType"]
	if !ok {
		return "", apperrors.New(apperrors.ErrCodeMalformedManifest, "manifest has no mediaType field")
	}

	var mt string
	if err := json.Unmarshal(raw, &mt); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeMalformedManifest, "manifest mediaType is not a string", err)
	}
	if strings.TrimSpace(mt) == "" {
		return "", apperrors.New(apperrors.ErrCodeMalformedManifest, "manifest mediaType is empty")
	}
	return mt, nil
}
