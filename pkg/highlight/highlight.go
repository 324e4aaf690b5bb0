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

// Package highlight locates regex matches in text and renders them with
// visual markers. It is a dependency-free package split into two stages:
// a Locator producing span data and a Renderer consuming it, so each can
// be tested independently.
//
// Three display modes are supported:
//   - All: the entire value, every match marked
//   - Line: only lines containing at least one match
//   - Context(width): up to width characters of untouched text on each
//     side of every match, with overlapping windows merged
package highlight

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidPattern reports a regular expression that failed to compile.
	ErrInvalidPattern = errors.New("invalid search pattern")

	// ErrInvalidMode reports a show-values argument that is neither "a",
	// "l", nor a non-negative integer.
	ErrInvalidMode = errors.New(`show-values mode must be "a", "l", or a non-negative integer`)
)

// Span marks a matched region of text as byte offsets.
// Invariant: 0 <= Start <= End <= len(text). Locators emit spans in
// left-to-right order and spans never overlap.
type Span struct {
	Start int
	End   int
}

// ModeKind discriminates the display mode variants.
type ModeKind int

const (
	// ModeAll renders the entire field with all matches marked.
	ModeAll ModeKind = iota
	// ModeLine renders only lines containing at least one match.
	ModeLine
	// ModeContext renders Width characters of context around each match.
	ModeContext
)

// Mode is a parsed show-values setting. Width is meaningful only when
// Kind is ModeContext.
type Mode struct {
	Kind  ModeKind
	Width int
}

// All returns the whole-field display mode.
func All() Mode { return Mode{Kind: ModeAll} }

// Line returns the matching-lines display mode. This is the default.
func Line() Mode { return Mode{Kind: ModeLine} }

// Context returns the surrounding-context display mode with the given
// width in characters on each side of a match.
func Context(width int) Mode { return Mode{Kind: ModeContext, Width: width} }

// ParseMode interprets a raw show-values argument. The literal "a" selects
// All, the literal "l" selects Line, and a non-negative integer selects
// Context with that width. Anything else fails with ErrInvalidMode.
func ParseMode(raw string) (Mode, error) {
	switch raw {
	case "a":
		return All(), nil
	case "l":
		return Line(), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return Mode{}, fmt.Errorf("%q: %w", raw, ErrInvalidMode)
	}
	return Context(n), nil
}

// String returns the raw flag form of the mode.
func (m Mode) String() string {
	switch m.Kind {
	case ModeAll:
		return "a"
	case ModeLine:
		return "l"
	default:
		return strconv.Itoa(m.Width)
	}
}
