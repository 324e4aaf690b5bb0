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
	"strings"
	"testing"
)

// bracket is the test marker: visible in failure output and trivially
// strippable for round-trip checks.
func bracket(s string) string { return "[" + s + "]" }

func stripBrackets(s string) string {
	s = strings.ReplaceAll(s, "[", "")
	return strings.ReplaceAll(s, "]", "")
}

func TestRenderAll(t *testing.T) {
	r := Renderer{Mark: bracket}

	tests := []struct {
		name  string
		text  string
		spans []Span
		want  string
	}{
		{
			name:  "empty spans returns text unchanged plus separator",
			text:  "hello world",
			spans: nil,
			want:  "hello world\n\n",
		},
		{
			name:  "single match",
			text:  "hello world",
			spans: []Span{{6, 11}},
			want:  "hello [world]\n\n",
		},
		{
			name:  "multiple matches with gaps",
			text:  "one two one",
			spans: []Span{{0, 3}, {8, 11}},
			want:  "[one] two [one]\n\n",
		},
		{
			name:  "adjacent matches",
			text:  "abab",
			spans: []Span{{0, 2}, {2, 4}},
			want:  "[ab][ab]\n\n",
		},
		{
			name:  "match at end",
			text:  "tail x",
			spans: []Span{{5, 6}},
			want:  "tail [x]\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.All(tt.text, tt.spans)
			if got != tt.want {
				t.Errorf("All() = %q, want %q", got, tt.want)
			}
			// Every character outside markers must survive verbatim.
			if stripped := stripBrackets(got); stripped != tt.text+"\n\n" {
				t.Errorf("round-trip lost characters: %q", stripped)
			}
		})
	}
}

func TestRenderLines(t *testing.T) {
	loc, err := NewLocator("foo", false, Line())
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}
	r := Renderer{Mark: bracket}

	got := r.Lines(loc.Lines("foo bar\nbaz\nqux foo"))
	want := "[foo] bar\n\nqux [foo]\n\n"
	if got != want {
		t.Errorf("Lines() = %q, want %q", got, want)
	}
	if strings.Contains(got, "baz") {
		t.Error("line without a match leaked into output")
	}
}

func TestRenderContext(t *testing.T) {
	r := Renderer{Mark: bracket}

	tests := []struct {
		name  string
		text  string
		spans []Span
		width int
		want  string
	}{
		{
			name:  "width surrounds match",
			text:  "abcXYZdef",
			spans: []Span{{3, 6}},
			width: 3,
			want:  "abc[XYZ]def\n\n",
		},
		{
			name:  "zero width marks exactly the match",
			text:  "aXbXc",
			spans: []Span{{1, 2}, {3, 4}},
			width: 0,
			want:  "[X]\n[X]\n\n",
		},
		{
			name:  "context clipped at text boundaries",
			text:  "Xab",
			spans: []Span{{0, 1}},
			width: 5,
			want:  "[X]ab\n\n",
		},
		{
			name: "windows merge without duplication",
			// Trailing context of the first match would cover "cdX";
			// the duplicated "X" is truncated before the second span.
			text:  "abXcdXef",
			spans: []Span{{2, 3}, {5, 6}},
			width: 3,
			want:  "ab[X]cd[X]ef\n\n",
		},
		{
			name: "overlap into leading context deduplicated",
			// Second match starts after the first trailing window ends
			// inside its would-be leading context: the gap is emitted
			// once, with no newline block break.
			text:  "abXcdefXgh",
			spans: []Span{{2, 3}, {7, 8}},
			width: 3,
			want:  "ab[X]cdef[X]gh\n\n",
		},
		{
			name: "distant matches form separate blocks",
			text: "aXbbbbbbbbXc",
			spans: []Span{
				{1, 2},
				{10, 11},
			},
			width: 2,
			want:  "a[X]bb\nbb[X]c\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Context(tt.text, tt.spans, tt.width)
			if got != tt.want {
				t.Errorf("Context() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderContextNoDuplicatedCharacters(t *testing.T) {
	// Two matches closer together than 2*width: the merged output must
	// contain the between-matches text exactly once.
	r := Renderer{Mark: bracket}
	text := "aaaXbbXccc"
	got := r.Context(text, []Span{{3, 4}, {6, 7}}, 4)
	if strings.Count(stripBrackets(got), "bb") != 1 {
		t.Errorf("characters between merged windows duplicated: %q", got)
	}
}

func TestHighlighterRender(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		mode    Mode
		text    string
		want    string
		wantOK  bool
	}{
		{
			name:    "no match renders nothing",
			pattern: "zzz",
			mode:    All(),
			text:    "plain text",
			wantOK:  false,
		},
		{
			name:    "all mode",
			pattern: "world",
			mode:    All(),
			text:    "hello world",
			want:    "hello [world]\n\n",
			wantOK:  true,
		},
		{
			name:    "line mode default",
			pattern: "two",
			mode:    Line(),
			text:    "one\ntwo\nthree",
			want:    "[two]\n\n",
			wantOK:  true,
		},
		{
			name:    "context mode",
			pattern: "XYZ",
			mode:    Context(3),
			text:    "abcXYZdef",
			want:    "abc[XYZ]def\n\n",
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(tt.pattern, false, tt.mode, bracket)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got, ok := h.Render(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("Render ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Render = %q, want %q", got, tt.want)
			}
		})
	}
}
