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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/grepdb/internal/errors"
	"github.com/kraklabs/grepdb/internal/ui"
	"github.com/kraklabs/grepdb/pkg/store"
)

// runSchema executes the 'schema' CLI command, listing tables of a
// source or columns of a table.
//
// Examples:
//
//	grepdb schema app
//	grepdb schema app posts
//	grepdb --json schema app posts
func runSchema(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	timeout := fs.Duration("timeout", 10*time.Second, "Schema query timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: grepdb schema [options] <source> [table]

Description:
  With only a source, list its tables with row counts. With a table,
  list the table's columns with declared types, marking the ones a
  default search would cover.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		errors.FatalError(errors.NewInputError(
			"Source argument required",
			"No source name provided",
			"Example: grepdb schema app",
		), globals.JSON)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	source := fs.Arg(0)
	path, err := cfg.SourcePath(source)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	s, err := store.Open(path)
	if err != nil {
		errors.FatalError(errors.NewDatabaseError(
			fmt.Sprintf("Cannot open source '%s'", source),
			fmt.Sprintf("Failed to open %s: %v", path, err),
			"Check that the path in .grepdb/config.yaml points at a SQLite database",
			err,
		), globals.JSON)
	}
	defer func() { _ = s.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if fs.NArg() >= 2 {
		printColumns(ctx, s, source, fs.Arg(1), globals)
		return
	}
	printTables(ctx, s, source, globals)
}

func printTables(ctx context.Context, s *store.Store, source string, globals GlobalFlags) {
	tables, err := s.Tables(ctx)
	if err != nil {
		errors.FatalError(errors.NewDatabaseError(
			"Cannot list tables",
			err.Error(),
			"The database file may be corrupted",
			err,
		), globals.JSON)
	}

	type tableInfo struct {
		Name string `json:"name"`
		Rows int64  `json:"rows"`
	}
	infos := make([]tableInfo, 0, len(tables))
	for _, table := range tables {
		n, err := s.CountRows(ctx, table)
		if err != nil {
			n = -1
		}
		infos = append(infos, tableInfo{Name: table, Rows: n})
	}

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"source": source, "tables": infos})
		return
	}

	ui.Header(source)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TABLE\tROWS")
	for _, info := range infos {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", info.Name, info.Rows)
	}
	_ = w.Flush()
	fmt.Printf("\n(%d tables)\n", len(infos))
}

func printColumns(ctx context.Context, s *store.Store, source, table string, globals GlobalFlags) {
	ok, err := s.HasTable(ctx, table)
	if err == nil && !ok {
		errors.FatalError(errors.NewInputError(
			fmt.Sprintf("Table '%s' not found", table),
			fmt.Sprintf("Source '%s' has no such table", source),
			"Run 'grepdb schema "+source+"' to list tables",
		), globals.JSON)
	}

	cols, err := s.Columns(ctx, table)
	if err != nil {
		errors.FatalError(errors.NewDatabaseError(
			"Cannot list columns",
			err.Error(),
			"The database file may be corrupted",
			err,
		), globals.JSON)
	}

	if globals.JSON {
		type columnInfo struct {
			Name     string `json:"name"`
			DeclType string `json:"decl_type"`
			Text     bool   `json:"text"`
			Char     bool   `json:"char"`
			PK       bool   `json:"pk"`
		}
		infos := make([]columnInfo, 0, len(cols))
		for _, c := range cols {
			infos = append(infos, columnInfo{
				Name: c.Name, DeclType: c.DeclType,
				Text: c.IsText(), Char: c.IsChar(), PK: c.PrimaryKey,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"source": source, "table": table, "columns": infos})
		return
	}

	ui.Header(source + "." + table)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COLUMN\tTYPE\tSEARCHED")
	for _, c := range cols {
		var marks []string
		if c.IsText() {
			marks = append(marks, "text")
		}
		if c.IsChar() {
			marks = append(marks, "char")
		}
		decl := c.DeclType
		if decl == "" {
			decl = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, decl, strings.Join(marks, ","))
	}
	_ = w.Flush()
	fmt.Printf("\n(%d columns)\n", len(cols))
}
