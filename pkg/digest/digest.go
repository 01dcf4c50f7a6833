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

package digest

import (
	// Registers SHA-256 for go-digest.
	_ "crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	godigest "github.com/opencontainers/go-digest"
	"github.com/zeebo/blake3"

	"github.com/NVIDIA/blobpush/pkg/defaults"
	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
)

// Algorithm names a content digest algorithm. Changing the algorithm of a
// deployment changes every derived object key.
type Algorithm string

const (
	// BLAKE3 is the default algorithm (256-bit output).
	BLAKE3 Algorithm = "blake3"
	// SHA256 matches the digests used by OCI registries.
	SHA256 Algorithm = "sha256"
)

// Default is the algorithm used when none is configured.
const Default = BLAKE3

// encodedLen is the hex length of a 256-bit digest.
const encodedLen = 64

// ParseAlgorithm returns the Algorithm for s. Empty input selects Default.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return Default, nil
	case BLAKE3:
		return BLAKE3, nil
	case SHA256:
		return SHA256, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported digest algorithm %q (must be %q or %q)", s, BLAKE3, SHA256))
	}
}

func (a Algorithm) String() string {
	return string(a)
}

func (a Algorithm) newHash() hash.Hash {
	if a == SHA256 {
		return godigest.SHA256.Hash()
	}
	return blake3.New()
}

// Validate checks that encoded is a well-formed lowercase hex digest for a.
func (a Algorithm) Validate(encoded string) error {
	if a == SHA256 {
		if err := godigest.SHA256.Validate(encoded); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid sha256 digest", err)
		}
		return nil
	}
	if len(encoded) != encodedLen {
		return apperrors.New(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid %s digest length %d", a, len(encoded)))
	}
	for _, c := range encoded {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return apperrors.New(apperrors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid %s digest %q: not lowercase hex", a, encoded))
		}
	}
	return nil
}

// Hasher computes content digests by streaming input through a fixed-size buffer.
// The zero value hashes with Default and defaults.HashBufferSize.
type Hasher struct {
	Algorithm  Algorithm
	BufferSize int
}

// NewHasher returns a Hasher for the given algorithm.
func NewHasher(alg Algorithm) *Hasher {
	return &Hasher{Algorithm: alg, BufferSize: defaults.HashBufferSize}
}

func (h *Hasher) algorithm() Algorithm {
	if h == nil || h.Algorithm == "" {
		return Default
	}
	return h.Algorithm
}

func (h *Hasher) bufferSize() int {
	if h == nil || h.BufferSize <= 0 {
		return defaults.HashBufferSize
	}
	return h.BufferSize
}

// Sum returns the lowercase hex digest of everything read from r.
// Memory use is bounded by the buffer size regardless of input length.
func (h *Hasher) Sum(r io.Reader) (string, error) {
	acc := h.algorithm().newHash()
	buf := make([]byte, h.bufferSize())
	// Hide any WriterTo/ReaderFrom so io.CopyBuffer uses buf.
	if _, err := io.CopyBuffer(struct{ io.Writer }{acc}, struct{ io.Reader }{r}, buf); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeIO, "failed to read content for digest", err)
	}
	return hex.EncodeToString(acc.Sum(nil)), nil
}

// SumFile returns the digest of the file at path.
func (h *Hasher) SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to open file for digest", err,
			map[string]any{"path": path})
	}
	defer f.Close()

	sum, err := h.Sum(f)
	if err != nil {
		return "", apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to hash file", err,
			map[string]any{"path": path})
	}
	return sum, nil
}

// SumBytes returns the digest of b.
func (h *Hasher) SumBytes(b []byte) string {
	acc := h.algorithm().newHash()
	acc.Write(b)
	return hex.EncodeToString(acc.Sum(nil))
}
