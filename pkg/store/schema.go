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

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Column describes one column of a table, as reported by PRAGMA
// table_info. DeclType is the declared type from the CREATE TABLE
// statement and may be empty.
type Column struct {
	Name       string
	DeclType   string
	NotNull    bool
	PrimaryKey bool
}

// IsText reports whether the column has TEXT affinity: a declared type
// containing TEXT or CLOB, or no declared type at all. These are the
// columns searched by default.
func (c Column) IsText() bool {
	if c.DeclType == "" {
		return true
	}
	t := strings.ToUpper(c.DeclType)
	return strings.Contains(t, "TEXT") || strings.Contains(t, "CLOB")
}

// IsChar reports whether the column was declared as a character type
// (CHAR, VARCHAR, NCHAR, ...).
func (c Column) IsChar() bool {
	return strings.Contains(strings.ToUpper(c.DeclType), "CHAR")
}

// MatchesType reports whether the declared type starts with t,
// case-insensitively. "varchar" matches "VARCHAR(80)".
func (c Column) MatchesType(t string) bool {
	return strings.HasPrefix(strings.ToUpper(c.DeclType), strings.ToUpper(t))
}

// Tables lists user tables in name order, excluding SQLite internals.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// HasTable reports whether the named table exists.
func (s *Store) HasTable(ctx context.Context, table string) (bool, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range tables {
		if t == table {
			return true, nil
		}
	}
	return false, nil
}

// Columns describes the columns of table via PRAGMA table_info.
// An unknown table yields an empty result, not an error; callers that
// need existence checks use HasTable.
func (s *Store) Columns(ctx context.Context, table string) ([]Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	// PRAGMA arguments cannot be bound, so the identifier is quoted in.
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []Column
	for rows.Next() {
		var (
			cid      int
			name     string
			declType sql.NullString
			notNull  int
			dflt     sql.NullString
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("table info %s: %w", table, err)
		}
		cols = append(cols, Column{
			Name:       name,
			DeclType:   declType.String,
			NotNull:    notNull != 0,
			PrimaryKey: pk != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	return cols, nil
}

// CountRows returns the number of rows in table.
func (s *Store) CountRows(ctx context.Context, table string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("store is closed")
	}

	var n int64
	q := fmt.Sprintf(`SELECT count(*) FROM %s`, quoteIdent(table))
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
