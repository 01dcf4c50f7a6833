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

package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrNoVersionFound    = errors.New("no version found in tool output")
)

// Version is a dotted release number as reported by an external tool.
// Precision records how many components were present in the source string
// and bounds how far EqualsOrNewer compares.
type Version struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Patch int `json:"patch" yaml:"patch"`

	Precision int `json:"precision,omitempty" yaml:"precision,omitempty"`

	// Extras holds any pre-release or build suffix, e.g. "-dev" or "+1a2b".
	Extras string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// New returns a fully specified version.
func New(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch, Precision: 3}
}

func (v Version) String() string {
	switch v.Precision {
	case 1:
		return strconv.Itoa(v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// Parse accepts "1", "1.2", "1.2.3" with an optional "v" prefix and an
// optional "-suffix" or "+suffix" which is kept in Extras.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}
	s = strings.TrimPrefix(s, "v")

	var v Version
	main := s
	if i := strings.IndexAny(s, "-+"); i > 0 {
		main, v.Extras = s[:i], s[i:]
	}

	parts := strings.Split(main, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}

	for i, part := range parts {
		if part == "" || strings.TrimFunc(part, unicode.IsDigit) != "" {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		switch i {
		case 0:
			v.Major = n
		case 1:
			v.Minor = n
		case 2:
			v.Patch = n
		}
	}

	v.Precision = len(parts)
	return v, nil
}

// MustParse is Parse for literals; it panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("version.MustParse(%q): %v", s, err))
	}
	return v
}

// FromToolOutput extracts the first version-looking token from the output
// of a "<tool> --version" invocation, e.g.
//
//	skopeo version 1.13.3 commit: 1234abcd
//	Docker version 28.0.1, build 068a01e
func FromToolOutput(out string) (Version, error) {
	for _, field := range strings.Fields(out) {
		field = strings.TrimRight(field, ",;")
		candidate := strings.TrimPrefix(field, "v")
		if candidate == "" || candidate[0] < '0' || candidate[0] > '9' {
			continue
		}
		if v, err := Parse(candidate); err == nil {
			return v, nil
		}
	}
	return Version{}, fmt.Errorf("%w: %q", ErrNoVersionFound, strings.TrimSpace(out))
}

// EqualsOrNewer reports whether v is at least minimum. Components beyond its
// precision are ignored, so a minimum of "1" accepts any 1.x.y.
func (v Version) EqualsOrNewer(minimum Version) bool {
	return v.Compare(minimum) >= 0
}

// Compare returns -1, 0 or 1. Only the components present in both versions
// take part in the comparison.
func (v Version) Compare(other Version) int {
	precision := min(precisionOf(v), precisionOf(other))

	pairs := [3][2]int{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}}
	for i := 0; i < precision; i++ {
		switch {
		case pairs[i][0] < pairs[i][1]:
			return -1
		case pairs[i][0] > pairs[i][1]:
			return 1
		}
	}
	return 0
}

func precisionOf(v Version) int {
	if v.Precision < 1 || v.Precision > 3 {
		return 3
	}
	return v.Precision
}
