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

// Package store provides read-only SQLite access for grepdb: opening
// source databases, introspecting their schema, and running regex-filtered
// column searches.
//
// A deterministic scalar function regexp(pattern, text) is registered with
// the driver once per process, which gives SQL the REGEXP operator so
// "column REGEXP ?" filters rows inside the database. Patterns use Go
// regexp syntax, so the SQL filter and the highlight locator agree on
// what matches.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"modernc.org/sqlite"
)

func init() {
	sqlite.MustRegisterDeterministicScalarFunction("regexp", 2, regexpFunc)
}

// reCache caches compiled patterns across rows of a query. The REGEXP
// function is called once per row, so compiling on every call would
// dominate search time.
var reCache sync.Map // pattern string -> *regexp.Regexp

func regexpFunc(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	pattern, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("regexp: pattern must be text, got %T", args[0])
	}

	var text string
	switch v := args[1].(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	case nil:
		// NULL never matches, mirroring SQL comparison semantics.
		return int64(0), nil
	default:
		text = fmt.Sprint(v)
	}

	re, err := compileCached(pattern)
	if err != nil {
		return nil, err
	}
	if re.MatchString(text) {
		return int64(1), nil
	}
	return int64(0), nil
}

func compileCached(pattern string) (*regexp.Regexp, error) {
	if cached, ok := reCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("regexp: %w", err)
	}
	reCache.Store(pattern, re)
	return re, nil
}

// Store is a read-only handle to one SQLite source database.
type Store struct {
	db     *sql.DB
	path   string
	mu     sync.RWMutex
	closed bool
}

// Open opens the SQLite database at path. The connection is configured
// read-only (query_only pragma) with a busy timeout, and is pinged so a
// missing or corrupt file fails here rather than on first query.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database file: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=query_only(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection: the registered regexp cache and pragmas apply
	// uniformly, and grepdb issues queries strictly one at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the filesystem path the store was opened with.
func (s *Store) Path() string { return s.path }

// Close closes the database connection. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Row is one matched row of a column search.
type Row struct {
	PK    int64
	Value string
}

// SearchColumn returns the rows of table whose column matches the regex
// pattern, in rowid order. The pattern is evaluated inside SQLite via the
// registered REGEXP function. limit <= 0 means no limit.
func (s *Store) SearchColumn(ctx context.Context, table, column, pattern string, limit int) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	q := fmt.Sprintf(`SELECT rowid, %s FROM %s WHERE %s REGEXP ? ORDER BY rowid`,
		quoteIdent(column), quoteIdent(table), quoteIdent(column))
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, q, pattern)
	if err != nil {
		return nil, fmt.Errorf("search %s.%s: %w", table, column, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Row
	for rows.Next() {
		var r Row
		var value sql.NullString
		if err := rows.Scan(&r.PK, &value); err != nil {
			return nil, fmt.Errorf("scan %s.%s: %w", table, column, err)
		}
		r.Value = value.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search %s.%s: %w", table, column, err)
	}
	return out, nil
}

// quoteIdent double-quotes an SQL identifier. Identifiers come from user
// identifiers and schema introspection, never from query results, but
// embedded quotes still need escaping.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
