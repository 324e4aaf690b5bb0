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

import "strings"

// MarkFunc wraps a matched substring in a visual marker, typically a
// terminal color. Only the exact matched substring is ever passed to it.
type MarkFunc func(string) string

// Renderer formats text with located spans marked. A nil Mark leaves
// matches unwrapped, which is useful in tests and piped output.
type Renderer struct {
	Mark MarkFunc
}

func (r Renderer) mark(s string) string {
	if r.Mark == nil {
		return s
	}
	return r.Mark(s)
}

// All renders the entire text with every span marked: the gap before each
// span is copied verbatim, the matched substring is marked, and trailing
// text after the last span is appended. The output ends with a blank-line
// separator.
func (r Renderer) All(text string, spans []Span) string {
	var b strings.Builder
	prev := 0
	for _, sp := range spans {
		b.WriteString(text[prev:sp.Start])
		b.WriteString(r.mark(text[sp.Start:sp.End]))
		prev = sp.End
	}
	b.WriteString(text[prev:])
	b.WriteString("\n\n")
	return b.String()
}

// Lines renders each matching line with the same per-span walk as All,
// each followed by a blank-line separator. Lines without matches were
// already dropped by the locator and never appear in the output.
func (r Renderer) Lines(lines []LineMatch) string {
	var b strings.Builder
	for _, ln := range lines {
		prev := 0
		for _, sp := range ln.Spans {
			b.WriteString(ln.Text[prev:sp.Start])
			b.WriteString(r.mark(ln.Text[sp.Start:sp.End]))
			prev = sp.End
		}
		b.WriteString(ln.Text[prev:])
		b.WriteString("\n\n")
	}
	return b.String()
}

// Context renders each span surrounded by up to width characters of
// untouched text on each side. A newline starts each new context block.
// When the trailing context of one match reaches into the next match's
// leading context the overlap is emitted once; when it reaches into the
// next span itself, the already-emitted tail is truncated so the span is
// not rendered twice.
func (r Renderer) Context(text string, spans []Span, width int) string {
	buf := make([]byte, 0, len(text))
	endOfPrev := 0
	lastTail := 0
	for _, sp := range spans {
		switch {
		case endOfPrev > 0 && endOfPrev > sp.Start:
			over := endOfPrev - sp.Start
			if over > lastTail {
				over = lastTail
			}
			buf = buf[:len(buf)-over]
		case endOfPrev > 0 && endOfPrev > sp.Start-width:
			buf = append(buf, text[endOfPrev:sp.Start]...)
		default:
			from := sp.Start - width
			if from < 0 {
				from = 0
			}
			buf = append(buf, '\n')
			buf = append(buf, text[from:sp.Start]...)
		}
		buf = append(buf, r.mark(text[sp.Start:sp.End])...)
		to := sp.End + width
		if to > len(text) {
			to = len(text)
		}
		buf = append(buf, text[sp.End:to]...)
		lastTail = to - sp.End
		endOfPrev = sp.End + width
	}
	return strings.TrimSpace(string(buf)) + "\n\n"
}

// Highlighter combines a locator and a renderer for one search request.
// It is constructed once per field and reused across every row of that
// field's results.
type Highlighter struct {
	loc      *Locator
	renderer Renderer
}

// New compiles pattern for the given mode and returns a Highlighter that
// wraps matches with mark. A malformed pattern fails here, before any
// text is scanned.
func New(pattern string, ignoreCase bool, mode Mode, mark MarkFunc) (*Highlighter, error) {
	loc, err := NewLocator(pattern, ignoreCase, mode)
	if err != nil {
		return nil, err
	}
	return &Highlighter{loc: loc, renderer: Renderer{Mark: mark}}, nil
}

// Locator returns the underlying locator.
func (h *Highlighter) Locator() *Locator { return h.loc }

// Render formats one field value according to the highlighter's mode.
// The second return is false when the value contains no match, in which
// case nothing should be rendered for this field.
func (h *Highlighter) Render(text string) (string, bool) {
	switch h.loc.mode.Kind {
	case ModeLine:
		lines := h.loc.Lines(text)
		if len(lines) == 0 {
			return "", false
		}
		return h.renderer.Lines(lines), true
	case ModeAll:
		spans := h.loc.Spans(text)
		if len(spans) == 0 {
			return "", false
		}
		return h.renderer.All(text, spans), true
	default:
		spans := h.loc.Spans(text)
		if len(spans) == 0 {
			return "", false
		}
		return h.renderer.Context(text, spans, h.loc.mode.Width), true
	}
}
