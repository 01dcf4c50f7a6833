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
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/NVIDIA/blobpush/pkg/defaults"
	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
	"github.com/NVIDIA/blobpush/pkg/oci"
	"github.com/NVIDIA/blobpush/pkg/version"
)

// Skopeo converts images with `skopeo copy --all`, producing skopeo's "dir:"
// layout in the destination.
type Skopeo struct {
	// Binary is the executable name or path. Defaults to "skopeo".
	Binary string
	// Transport is the source transport, "docker-daemon" unless overridden.
	Transport string
	// ExtraArgs are appended after "copy" and before the source reference.
	ExtraArgs []string
	// MinVersion is the oldest release Check accepts.
	MinVersion version.Version
	// Timeout bounds a single Convert. Zero disables it.
	Timeout time.Duration
}

// SkopeoOption configures a Skopeo converter.
type SkopeoOption func(*Skopeo)

// WithBinary sets the skopeo executable.
func WithBinary(bin string) SkopeoOption {
	return func(s *Skopeo) {
		if bin != "" {
			s.Binary = bin
		}
	}
}

// WithTransport sets the source transport, e.g. "docker-daemon" or "containers-storage".
func WithTransport(transport string) SkopeoOption {
	return func(s *Skopeo) {
		if transport != "" {
			s.Transport = transport
		}
	}
}

// WithExtraArgs passes additional flags to `skopeo copy`.
func WithExtraArgs(args ...string) SkopeoOption {
	return func(s *Skopeo) {
		s.ExtraArgs = append(s.ExtraArgs, args...)
	}
}

// WithTimeout bounds a single conversion.
func WithTimeout(d time.Duration) SkopeoOption {
	return func(s *Skopeo) {
		s.Timeout = d
	}
}

// NewSkopeo returns a skopeo converter with defaults applied.
func NewSkopeo(opts ...SkopeoOption) *Skopeo {
	s := &Skopeo{
		Binary:     defaults.SkopeoBinary,
		Transport:  defaults.SkopeoTransport,
		MinVersion: version.MustParse(defaults.SkopeoMinVersion),
		Timeout:    defaults.ConverterTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the skopeo source reference for ref.
func (s *Skopeo) Source(ref oci.ImageReference) string {
	return fmt.Sprintf("%s:%s:%s", s.Transport, ref.Name, ref.Tag)
}

// Args returns the full argument list for converting ref into dest.
func (s *Skopeo) Args(ref oci.ImageReference, dest string) []string {
	args := []string{"copy", "--all"}
	args = append(args, s.ExtraArgs...)
	return append(args, s.Source(ref), "dir:"+dest)
}

// Check resolves the binary and verifies its reported version.
func (s *Skopeo) Check(ctx context.Context) error {
	path, err := exec.LookPath(s.Binary)
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeToolMissing,
			"skopeo is not installed or not on PATH", err,
			map[string]any{"binary": s.Binary})
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.ToolProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeToolMissing,
			"skopeo --version failed", err,
			map[string]any{"binary": path})
	}

	v, err := version.FromToolOutput(string(out))
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeToolMissing,
			"cannot determine skopeo version", err,
			map[string]any{"binary": path})
	}
	if !v.EqualsOrNewer(s.MinVersion) {
		return apperrors.NewWithContext(apperrors.ErrCodeToolMissing,
			"skopeo is too old",
			map[string]any{"binary": path, "version": v.String(), "minimum": s.MinVersion.String()})
	}

	slog.Debug("converter available", "binary", path, "version", v.String())
	return nil
}

// Convert runs skopeo copy. Stdout is discarded; the tail of stderr is kept
// in the error context on failure.
func (s *Skopeo) Convert(ctx context.Context, ref oci.ImageReference, dest string) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	args := s.Args(ref, dest)
	stderr := &tailBuffer{limit: defaults.MaxCapturedStderr}

	cmd := exec.CommandContext(ctx, s.Binary, args...)
	cmd.Stderr = stderr

	slog.Debug("running converter", "binary", s.Binary, "args", strings.Join(args, " "))

	start := time.Now()
	if err := cmd.Run(); err != nil {
		errCtx := map[string]any{
			"image":  ref.String(),
			"source": s.Source(ref),
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			errCtx["stderr"] = msg
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			errCtx["exit_code"] = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(ctxErr, err)
		}
		return apperrors.WrapWithContext(apperrors.ErrCodeConversion, "image conversion failed", err, errCtx)
	}

	slog.Debug("converter finished", "image", ref.String(), "duration", time.Since(start))
	return nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= t.limit {
		t.buf.Reset()
		t.buf.Write(p[n-t.limit:])
		return n, nil
	}
	if over := t.buf.Len() + n - t.limit; over > 0 {
		t.buf.Next(over)
	}
	t.buf.Write(p)
	return n, nil
}

func (t *tailBuffer) String() string {
	return t.buf.String()
}
