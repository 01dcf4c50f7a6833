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
	"fmt"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
)

// DefaultTag is applied when a reference carries no tag.
const DefaultTag = "latest"

// ImageReference identifies the local image to export. Name is the familiar
// repository name ("myapp", "ghcr.io/org/app") and doubles as the key
// namespace under v2/.
type ImageReference struct {
	Name string
	Tag  string
}

// ParseImageReference parses "name[:tag]". Digest references are rejected
// because the converter exports by tag.
func ParseImageReference(s string) (ImageReference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ImageReference{}, apperrors.New(apperrors.ErrCodeInvalidRequest, "image reference is required")
	}

	named, err := reference.ParseNormalizedNamed(s)
	if err != nil {
		return ImageReference{}, apperrors.Wrap(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid image reference %q", s), err)
	}
	if _, ok := named.(reference.Digested); ok {
		return ImageReference{}, apperrors.New(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("digest references are not supported: %q", s))
	}

	tag := DefaultTag
	if tagged, ok := named.(reference.Tagged); ok {
		tag = tagged.Tag()
	}

	return ImageReference{
		Name: reference.FamiliarName(named),
		Tag:  tag,
	}, nil
}

// NewImageReference validates a name and tag supplied separately.
func NewImageReference(name, tag string) (ImageReference, error) {
	if tag == "" {
		tag = DefaultTag
	}
	if strings.ContainsAny(name, ":@") {
		return ImageReference{}, apperrors.New(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("image name must not contain a tag or digest: %q", name))
	}
	return ParseImageReference(name + ":" + tag)
}

// String returns "name:tag".
func (r ImageReference) String() string {
	return r.Name + ":" + r.Tag
}

// ValidateImageName checks that name is a valid repository name with no tag
// or digest. Used when operating on an already staged tree.
func ValidateImageName(name string) error {
	ref, err := NewImageReference(name, DefaultTag)
	if err != nil {
		return err
	}
	if ref.Name != name {
		return apperrors.New(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("image name %q is not in familiar form (expected %q)", name, ref.Name))
	}
	return nil
}
