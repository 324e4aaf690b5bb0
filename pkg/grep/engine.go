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

// Package grep plans and runs pattern searches over database columns.
// An Engine resolves identifiers against source schemas, fans a search
// out into one query per (table, column) pair, and renders the matching
// rows with highlighted values.
package grep

import (
	"context"
	"fmt"

	"github.com/kraklabs/grepdb/pkg/highlight"
	"github.com/kraklabs/grepdb/pkg/store"
)

// OpenFunc resolves a configured source name to an open store. The
// engine owns stores it opens and closes them on Close.
type OpenFunc func(source string) (*store.Store, error)

// Request carries everything about a search except where to look.
type Request struct {
	Pattern     string
	IgnoreCase  bool
	Mode        highlight.Mode
	ShowValues  bool
	Mark        highlight.MarkFunc
	ColumnTypes ColumnTypes
	Limit       int
}

// Compile validates the pattern and builds the highlighter shared by
// every field query of this request. Call it before planning so a bad
// pattern fails before any database is touched.
func (r *Request) Compile() (*highlight.Highlighter, error) {
	return highlight.New(r.Pattern, r.IgnoreCase, r.Mode, r.Mark)
}

// FieldQuery is one unit of search work: a single column of a single
// table in a single source.
type FieldQuery struct {
	Source string
	Table  string
	Column string
}

func (q FieldQuery) String() string {
	return q.Source + "." + q.Table + "." + q.Column
}

// RowResult is one matching row. Rendered is empty when the request
// suppressed values.
type RowResult struct {
	PK       int64
	Rendered string
}

// FieldResult holds the matching rows of one field query.
type FieldResult struct {
	Query FieldQuery
	Rows  []RowResult
}

// Engine executes searches against lazily opened sources.
type Engine struct {
	open   OpenFunc
	stores map[string]*store.Store
}

func NewEngine(open OpenFunc) *Engine {
	return &Engine{open: open, stores: make(map[string]*store.Store)}
}

// Close releases every store the engine opened. The first error wins.
func (e *Engine) Close() error {
	var first error
	for name, s := range e.stores {
		if err := s.Close(); err != nil && first == nil {
			first = fmt.Errorf("closing source %s: %w", name, err)
		}
		delete(e.stores, name)
	}
	return first
}

func (e *Engine) source(name string) (*store.Store, error) {
	if s, ok := e.stores[name]; ok {
		return s, nil
	}
	s, err := e.open(name)
	if err != nil {
		return nil, err
	}
	e.stores[name] = s
	return s, nil
}

// Plan expands identifiers into field queries. Identifiers that name
// columns are validated against the schema; identifiers without columns
// discover them by the request's column types. A table with no
// searchable columns yields no queries and no error.
func (e *Engine) Plan(ctx context.Context, idents []Identifier, types ColumnTypes) ([]FieldQuery, error) {
	if len(types) == 0 {
		types = DefaultColumnTypes()
	}
	var queries []FieldQuery
	for _, id := range idents {
		s, err := e.source(id.Source)
		if err != nil {
			return nil, err
		}
		ok, err := s.HasTable(ctx, id.Table)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("table %q not found in source %q", id.Table, id.Source)
		}
		cols, err := s.Columns(ctx, id.Table)
		if err != nil {
			return nil, err
		}
		if len(id.Columns) > 0 {
			byName := make(map[string]bool, len(cols))
			for _, c := range cols {
				byName[c.Name] = true
			}
			for _, name := range id.Columns {
				if !byName[name] {
					return nil, fmt.Errorf("column %q not found in table %s.%s", name, id.Source, id.Table)
				}
				queries = append(queries, FieldQuery{Source: id.Source, Table: id.Table, Column: name})
			}
			continue
		}
		for _, c := range cols {
			if types.matches(c) {
				queries = append(queries, FieldQuery{Source: id.Source, Table: id.Table, Column: c.Name})
			}
		}
	}
	return queries, nil
}

// Run executes one field query. The SQL filter and the highlighter use
// the same compiled pattern, so every returned row renders unless the
// request suppressed values.
func (e *Engine) Run(ctx context.Context, q FieldQuery, req *Request, h *highlight.Highlighter) (*FieldResult, error) {
	s, err := e.source(q.Source)
	if err != nil {
		return nil, err
	}
	rows, err := s.SearchColumn(ctx, q.Table, q.Column, h.Locator().Pattern(), req.Limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", q, err)
	}
	res := &FieldResult{Query: q}
	for _, row := range rows {
		rr := RowResult{PK: row.PK}
		if req.ShowValues {
			rendered, ok := h.Render(row.Value)
			if !ok {
				continue
			}
			rr.Rendered = rendered
		}
		res.Rows = append(res.Rows, rr)
	}
	return res, nil
}
