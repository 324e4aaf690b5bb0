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
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Mode
		wantErr bool
	}{
		{name: "all", raw: "a", want: All()},
		{name: "line", raw: "l", want: Line()},
		{name: "context width", raw: "5", want: Context(5)},
		{name: "zero width context", raw: "0", want: Context(0)},
		{name: "large width", raw: "120", want: Context(120)},
		{name: "unknown letter", raw: "x", wantErr: true},
		{name: "negative width", raw: "-1", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "trailing garbage", raw: "5x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMode(%q) succeeded, want error", tt.raw)
				}
				if !errors.Is(err, ErrInvalidMode) {
					t.Errorf("ParseMode(%q) error = %v, want ErrInvalidMode", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewLocatorInvalidPattern(t *testing.T) {
	_, err := NewLocator("[unclosed", false, Line())
	if err == nil {
		t.Fatal("NewLocator accepted a malformed pattern")
	}
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("error = %v, want ErrInvalidPattern", err)
	}
}

func TestLocatorSpans(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		text       string
		ignoreCase bool
		mode       Mode
		want       []Span
	}{
		{
			name:    "no matches is empty not error",
			pattern: "zzz",
			text:    "nothing here",
			mode:    All(),
			want:    nil,
		},
		{
			name:    "ordered non-overlapping",
			pattern: "ab",
			text:    "ababab",
			mode:    All(),
			want:    []Span{{0, 2}, {2, 4}, {4, 6}},
		},
		{
			name:    "match spans embedded newline in all mode",
			pattern: "a.b",
			text:    "xa\nbx",
			mode:    All(),
			want:    []Span{{1, 4}},
		},
		{
			name:    "match spans embedded newline in context mode",
			pattern: "a.b",
			text:    "a\nb",
			mode:    Context(2),
			want:    []Span{{0, 3}},
		},
		{
			name:       "case insensitive",
			pattern:    "foo",
			text:       "FOO foo Foo",
			ignoreCase: true,
			mode:       All(),
			want:       []Span{{0, 3}, {4, 7}, {8, 11}},
		},
		{
			name:    "case sensitive by default",
			pattern: "foo",
			text:    "FOO foo Foo",
			mode:    All(),
			want:    []Span{{4, 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := NewLocator(tt.pattern, tt.ignoreCase, tt.mode)
			if err != nil {
				t.Fatalf("NewLocator: %v", err)
			}
			got := loc.Spans(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Spans = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("span %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLocatorLines(t *testing.T) {
	loc, err := NewLocator("foo", false, Line())
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}

	lines := loc.Lines("foo bar\nbaz\nqux foo\n")
	if len(lines) != 2 {
		t.Fatalf("Lines returned %d matches, want 2: %+v", len(lines), lines)
	}
	if lines[0].Text != "foo bar" || lines[1].Text != "qux foo" {
		t.Errorf("wrong lines retained: %+v", lines)
	}
	// Offsets must be relative to the line, not the whole text.
	if lines[1].Spans[0] != (Span{4, 7}) {
		t.Errorf("line-relative span = %v, want {4 7}", lines[1].Spans[0])
	}
}

func TestLocatorLinesNoDotall(t *testing.T) {
	// Line mode matches within individual lines only; "." must not cross
	// the line boundary even though All mode allows it.
	loc, err := NewLocator("a.b", false, Line())
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}
	if got := loc.Lines("a\nb"); len(got) != 0 {
		t.Errorf("Lines matched across a newline: %+v", got)
	}
}
