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

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConfig, "R2_BUCKET is not set")

	if err.Code != ErrCodeConfig {
		t.Errorf("expected code %s, got %s", ErrCodeConfig, err.Code)
	}
	if err.Message != "R2_BUCKET is not set" {
		t.Errorf("expected message 'R2_BUCKET is not set', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(ErrCodeIO, "failed to create staging directory", cause)

	if err.Code != ErrCodeIO {
		t.Errorf("expected code %s, got %s", ErrCodeIO, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("503 slow down")
	ctx := map[string]any{
		"artifact": "abc123",
		"key":      "v2/myapp/blobs/abc123",
	}

	err := WrapWithContext(ErrCodeUpload, "failed to upload blob", cause, ctx)

	if err.Code != ErrCodeUpload {
		t.Errorf("expected code %s, got %s", ErrCodeUpload, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["artifact"] != "abc123" {
		t.Errorf("expected artifact to be abc123")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeToolMissing, "skopeo is not installed"),
			expected: "[TOOL_MISSING] skopeo is not installed",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeConversion, "skopeo copy failed", errors.New("exit status 1")),
			expected: "[CONVERSION] skopeo copy failed: exit status 1",
		},
		{
			name: "error with sorted context",
			err: WrapWithContext(ErrCodeUpload, "failed to upload blob", errors.New("timeout"),
				map[string]any{"key": "v2/a/blobs/b", "artifact": "b"}),
			expected: "[UPLOAD] failed to upload blob (artifact=b, key=v2/a/blobs/b): timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}

	if !errors.Is(err, cause) {
		t.Errorf("expected errors.Is to find the cause")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("x"), want: ""},
		{name: "structured", err: New(ErrCodeIO, "x"), want: ErrCodeIO},
		{name: "fmt wrapped", err: fmt.Errorf("stage: %w", New(ErrCodeMalformedManifest, "x")), want: ErrCodeMalformedManifest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	inner := New(ErrCodeIO, "read failed")
	outer := Wrap(ErrCodeUpload, "upload failed", inner)

	if !Is(outer, ErrCodeUpload) {
		t.Error("expected outer code to match")
	}
	if !Is(outer, ErrCodeIO) {
		t.Error("expected inner code to match")
	}
	if Is(outer, ErrCodeConfig) {
		t.Error("unexpected match for CONFIG")
	}
	if Is(nil, ErrCodeIO) {
		t.Error("nil error must not match")
	}
}
