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

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// LevelEnvVar is the environment variable consulted when no explicit level is given.
const LevelEnvVar = "LOG_LEVEL"

// Format selects the handler used for log output.
type Format string

const (
	// FormatJSON writes one JSON object per record (default, machine friendly).
	FormatJSON Format = "json"
	// FormatText writes colorized key/value records for terminals.
	FormatText Format = "text"
)

// ParseFormat returns the Format for s, defaulting to JSON for unknown values.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatText)) {
		return FormatText
	}
	return FormatJSON
}

// ParseLogLevel converts a level name to slog.Level. Unknown or empty values
// fall back to INFO.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// levelFromEnvOr returns level when set, otherwise the LOG_LEVEL value.
func levelFromEnvOr(level string) slog.Level {
	if level == "" {
		level = os.Getenv(LevelEnvVar)
	}
	return ParseLogLevel(level)
}

// NewLogger returns a logger for the given format writing to w.
func NewLogger(w io.Writer, format Format, module, version, level string) *slog.Logger {
	return newLogger(w, format, module, version, levelFromEnvOr(level))
}

func newLogger(w io.Writer, format Format, module, version string, lvl slog.Level) *slog.Logger {
	var h slog.Handler
	switch format {
	case FormatText:
		h = charmlog.NewWithOptions(w, charmlog.Options{
			Level:           toCharmLevel(lvl),
			ReportTimestamp: true,
			ReportCaller:    lvl <= slog.LevelDebug,
			Prefix:          module,
		})
	default:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     lvl,
			AddSource: lvl <= slog.LevelDebug,
		})
	}
	return slog.New(h).With("module", module, "version", version)
}

func toCharmLevel(lvl slog.Level) charmlog.Level {
	switch {
	case lvl <= slog.LevelDebug:
		return charmlog.DebugLevel
	case lvl <= slog.LevelInfo:
		return charmlog.InfoLevel
	case lvl <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}

// SetDefaultLogger installs a logger of the given format as the slog default.
func SetDefaultLogger(format Format, module, version, level string) {
	slog.SetDefault(NewLogger(os.Stderr, format, module, version, level))
}
