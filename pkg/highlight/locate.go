// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package highlight

import (
	"fmt"
	"regexp"
	"strings"
)

// LineMatch is one line that contained at least one match. Span offsets
// are relative to Text, not to the original field value.
type LineMatch struct {
	Text  string
	Spans []Span
}

// Locator finds non-overlapping match spans for a compiled pattern.
// The pattern is compiled once at construction; a malformed pattern is
// reported before any text is scanned.
type Locator struct {
	re   *regexp.Regexp
	mode Mode
}

// NewLocator compiles pattern for the given mode. In All and Context
// modes the pattern matches across embedded newlines ("." spans lines);
// in Line mode each line is matched independently. Case-insensitivity
// applies to the whole locator.
func NewLocator(pattern string, ignoreCase bool, mode Mode) (*Locator, error) {
	flags := ""
	if mode.Kind != ModeLine {
		flags += "s"
	}
	if ignoreCase {
		flags += "i"
	}
	expr := pattern
	if flags != "" {
		expr = "(?" + flags + ")" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
	}
	return &Locator{re: re, mode: mode}, nil
}

// Mode returns the display mode the locator was compiled for.
func (l *Locator) Mode() Mode { return l.mode }

// Pattern exposes the compiled expression, used by the SQL filter so the
// database and the highlighter agree on what matches.
func (l *Locator) Pattern() string { return l.re.String() }

// Spans locates every match against the whole text in one pass. An empty
// result is valid and means the caller should render nothing.
func (l *Locator) Spans(text string) []Span {
	idx := l.re.FindAllStringIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}
	spans := make([]Span, len(idx))
	for i, m := range idx {
		spans[i] = Span{Start: m[0], End: m[1]}
	}
	return spans
}

// Lines splits the text on newline boundaries and locates matches within
// each line independently. Only lines with at least one match are
// returned; span offsets are line-relative.
func (l *Locator) Lines(text string) []LineMatch {
	var out []LineMatch
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		spans := l.Spans(line)
		if len(spans) == 0 {
			continue
		}
		out = append(out, LineMatch{Text: line, Spans: spans})
	}
	return out
}
