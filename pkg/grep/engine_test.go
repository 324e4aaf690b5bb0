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

package grep

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/grepdb/pkg/highlight"
	"github.com/kraklabs/grepdb/pkg/store"
)

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE posts (
			id INTEGER PRIMARY KEY,
			title VARCHAR(80) NOT NULL,
			body TEXT,
			views INTEGER NOT NULL DEFAULT 0
		);
		INSERT INTO posts (id, title, body) VALUES
			(1, 'Hello Go', 'Go makes concurrency simple.'),
			(2, 'Unrelated', 'Nothing to see here.'),
			(3, 'Generics', 'Go generics arrived in 1.18.');
		CREATE TABLE comments (
			id INTEGER PRIMARY KEY,
			post_id INTEGER NOT NULL,
			message TEXT
		);
		INSERT INTO comments (id, post_id, message) VALUES
			(1, 1, 'Go routines are neat'),
			(2, 2, 'meh');
	`)
	require.NoError(t, err)
	return path
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	path := seedDB(t)
	e := NewEngine(func(source string) (*store.Store, error) {
		if source != "app" {
			return nil, assert.AnError
		}
		return store.Open(path)
	})
	t.Cleanup(func() { e.Close() })
	return e
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		raw     string
		want    Identifier
		wantErr bool
	}{
		{raw: "app.posts", want: Identifier{Source: "app", Table: "posts"}},
		{raw: "app.posts.body", want: Identifier{Source: "app", Table: "posts", Columns: []string{"body"}}},
		{raw: "app.posts.title.body", want: Identifier{Source: "app", Table: "posts", Columns: []string{"title", "body"}}},
		{raw: "posts", wantErr: true},
		{raw: "app..body", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseIdentifier(tt.raw)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidIdentifier, "raw %q", tt.raw)
			continue
		}
		require.NoError(t, err, "raw %q", tt.raw)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.raw, got.String())
	}
}

func TestPlanDiscoversTextColumns(t *testing.T) {
	e := newTestEngine(t)
	ids := []Identifier{{Source: "app", Table: "posts"}, {Source: "app", Table: "comments"}}

	queries, err := e.Plan(context.Background(), ids, nil)
	require.NoError(t, err)
	assert.Equal(t, []FieldQuery{
		{Source: "app", Table: "posts", Column: "body"},
		{Source: "app", Table: "comments", Column: "message"},
	}, queries)
}

func TestPlanCharColumns(t *testing.T) {
	e := newTestEngine(t)
	ids := []Identifier{{Source: "app", Table: "posts"}}

	queries, err := e.Plan(context.Background(), ids, ColumnTypes{"char"})
	require.NoError(t, err)
	assert.Equal(t, []FieldQuery{{Source: "app", Table: "posts", Column: "title"}}, queries)

	queries, err = e.Plan(context.Background(), ids, ColumnTypes{"text", "char"})
	require.NoError(t, err)
	assert.Len(t, queries, 2)
}

func TestPlanDeclaredTypePrefix(t *testing.T) {
	e := newTestEngine(t)
	ids := []Identifier{{Source: "app", Table: "posts"}}

	queries, err := e.Plan(context.Background(), ids, ColumnTypes{"varchar"})
	require.NoError(t, err)
	assert.Equal(t, []FieldQuery{{Source: "app", Table: "posts", Column: "title"}}, queries)
}

func TestPlanNamedColumns(t *testing.T) {
	e := newTestEngine(t)
	ids := []Identifier{{Source: "app", Table: "posts", Columns: []string{"title", "body"}}}

	queries, err := e.Plan(context.Background(), ids, nil)
	require.NoError(t, err)
	assert.Equal(t, []FieldQuery{
		{Source: "app", Table: "posts", Column: "title"},
		{Source: "app", Table: "posts", Column: "body"},
	}, queries)
}

func TestPlanUnknownColumn(t *testing.T) {
	e := newTestEngine(t)
	ids := []Identifier{{Source: "app", Table: "posts", Columns: []string{"nope"}}}

	_, err := e.Plan(context.Background(), ids, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestPlanUnknownTable(t *testing.T) {
	e := newTestEngine(t)
	ids := []Identifier{{Source: "app", Table: "missing"}}

	_, err := e.Plan(context.Background(), ids, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestPlanUnknownSource(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Plan(context.Background(), []Identifier{{Source: "other", Table: "posts"}}, nil)
	require.Error(t, err)
}

func TestRunRendersMatches(t *testing.T) {
	e := newTestEngine(t)
	req := &Request{
		Pattern:    "Go",
		Mode:       highlight.Line(),
		ShowValues: true,
		Mark:       func(s string) string { return "[" + s + "]" },
	}
	h, err := req.Compile()
	require.NoError(t, err)

	res, err := e.Run(context.Background(), FieldQuery{Source: "app", Table: "posts", Column: "body"}, req, h)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, int64(1), res.Rows[0].PK)
	assert.Equal(t, "[Go] makes concurrency simple.\n\n", res.Rows[0].Rendered)
	assert.Equal(t, int64(3), res.Rows[1].PK)
	assert.Equal(t, "[Go] generics arrived in 1.18.\n\n", res.Rows[1].Rendered)
}

func TestRunIgnoreCase(t *testing.T) {
	e := newTestEngine(t)
	req := &Request{
		Pattern:    "go",
		IgnoreCase: true,
		Mode:       highlight.Line(),
		ShowValues: true,
		Mark:       func(s string) string { return s },
	}
	h, err := req.Compile()
	require.NoError(t, err)

	res, err := e.Run(context.Background(), FieldQuery{Source: "app", Table: "comments", Column: "message"}, req, h)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(1), res.Rows[0].PK)
}

func TestRunSuppressedValues(t *testing.T) {
	e := newTestEngine(t)
	req := &Request{Pattern: "Go", Mode: highlight.Line()}
	h, err := req.Compile()
	require.NoError(t, err)

	res, err := e.Run(context.Background(), FieldQuery{Source: "app", Table: "posts", Column: "body"}, req, h)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Empty(t, res.Rows[0].Rendered)
}

func TestRunNoMatches(t *testing.T) {
	e := newTestEngine(t)
	req := &Request{Pattern: "zzz", Mode: highlight.Line(), ShowValues: true, Mark: func(s string) string { return s }}
	h, err := req.Compile()
	require.NoError(t, err)

	res, err := e.Run(context.Background(), FieldQuery{Source: "app", Table: "posts", Column: "body"}, req, h)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestRunBadPatternFailsAtCompile(t *testing.T) {
	req := &Request{Pattern: "[unclosed", Mode: highlight.Line()}
	_, err := req.Compile()
	require.ErrorIs(t, err, highlight.ErrInvalidPattern)
}

func TestResolveSite(t *testing.T) {
	sites := Sites{"prod": "https://example.com"}

	base, err := ResolveSite("https://example.org", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", base)

	base, err = ResolveSite("localhost:9000", nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", base)

	base, err = ResolveSite("prod", sites)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", base)

	base, err = ResolveSite("default", sites)
	require.NoError(t, err)
	assert.Equal(t, DefaultSiteURL, base)

	_, err = ResolveSite("staging", sites)
	require.Error(t, err)
}

func TestAdminLinks(t *testing.T) {
	links := AdminLinks([]string{"https://example.com/", "http://localhost:8000"}, "posts", 7)
	assert.Equal(t, []string{
		"https://example.com/admin/posts/7/change/",
		"http://localhost:8000/admin/posts/7/change/",
	}, links)
}
