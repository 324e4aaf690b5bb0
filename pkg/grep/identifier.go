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
	"errors"
	"fmt"
	"strings"

	"github.com/kraklabs/grepdb/pkg/store"
)

// ErrInvalidIdentifier reports a malformed search identifier.
var ErrInvalidIdentifier = errors.New("identifier must be source.table or source.table.column")

// Identifier names what to search: a configured source, a table in it,
// and optionally specific columns. With no columns named, searchable
// columns are discovered from the schema by column type.
type Identifier struct {
	Source  string
	Table   string
	Columns []string
}

// ParseIdentifier splits a dotted identifier. At least source and table
// are required; any further segments name columns.
func ParseIdentifier(raw string) (Identifier, error) {
	parts := strings.Split(raw, ".")
	if len(parts) < 2 {
		return Identifier{}, fmt.Errorf("%q: %w", raw, ErrInvalidIdentifier)
	}
	for _, p := range parts {
		if p == "" {
			return Identifier{}, fmt.Errorf("%q: %w", raw, ErrInvalidIdentifier)
		}
	}
	return Identifier{Source: parts[0], Table: parts[1], Columns: parts[2:]}, nil
}

func (id Identifier) String() string {
	s := id.Source + "." + id.Table
	if len(id.Columns) > 0 {
		s += "." + strings.Join(id.Columns, ".")
	}
	return s
}

// ColumnTypes selects which columns are searched when an identifier
// names none. The values "text" and "char" select by affinity; anything
// else is a declared-type prefix such as "varchar" or "json".
type ColumnTypes []string

// DefaultColumnTypes searches TEXT-affinity columns, the equivalent of
// the long-form body fields a grep over records usually wants.
func DefaultColumnTypes() ColumnTypes { return ColumnTypes{"text"} }

func (ct ColumnTypes) matches(c store.Column) bool {
	for _, t := range ct {
		switch t {
		case "text":
			if c.IsText() {
				return true
			}
		case "char":
			if c.IsChar() {
				return true
			}
		default:
			if c.MatchesType(t) {
				return true
			}
		}
	}
	return false
}
