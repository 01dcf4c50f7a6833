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

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/NVIDIA/blobpush/pkg/errors"
)

// Format is the encoding used for a written report.
type Format string

const (
	// FormatJSON writes indented JSON.
	FormatJSON Format = "json"
	// FormatYAML writes YAML with two-space indentation.
	FormatYAML Format = "yaml"
)

// StdoutPath selects standard output as the report destination.
const StdoutPath = "-"

func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML:
		return false
	default:
		return true
	}
}

// SupportedFormats returns the accepted --report-format values.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML)}
}

// FormatFromPath picks the format from the file extension: .yaml and .yml
// select YAML, everything else JSON.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// Writer encodes values to a destination in a fixed format.
// Close must be called for writers returned by NewFileWriter.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// NewWriter returns a Writer for output. Unknown formats fall back to JSON.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	if format.IsUnknown() {
		slog.Warn("unknown report format, defaulting to JSON", "format", format)
		format = FormatJSON
	}
	return &Writer{format: format, output: output}
}

// NewFileWriter creates (or truncates) path. StdoutPath writes to stdout.
// An empty format is inferred from the path.
func NewFileWriter(format Format, path string) (*Writer, error) {
	path = strings.TrimSpace(path)
	if format == "" {
		format = FormatFromPath(path)
	}
	if path == StdoutPath {
		return NewWriter(format, os.Stdout), nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeIO, "failed to create report file", err,
			map[string]any{"path": path})
	}

	w := NewWriter(format, file)
	w.closer = file
	return w, nil
}

// Close releases the underlying file, if any. Safe to call more than once.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	err := w.closer.Close()
	w.closer = nil
	return err
}

// Serialize writes v in the configured format. ctx is accepted for symmetry
// with other writers; file and stdout writes do not block on it.
func (w *Writer) Serialize(_ context.Context, v any) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.output)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeIO, "failed to write JSON report", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w.output)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeIO, "failed to write YAML report", err)
		}
		return enc.Close()
	default:
		return apperrors.New(apperrors.ErrCodeInternal, fmt.Sprintf("unsupported report format: %s", w.format))
	}
}
