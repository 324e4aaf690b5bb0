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
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/grepdb/internal/errors"
	"github.com/kraklabs/grepdb/internal/ui"
	"github.com/kraklabs/grepdb/pkg/grep"
	"github.com/kraklabs/grepdb/pkg/highlight"
	"github.com/kraklabs/grepdb/pkg/store"
)

// searchOutput is the JSON shape of one field's results.
type searchOutput struct {
	Source  string          `json:"source"`
	Table   string          `json:"table"`
	Column  string          `json:"column"`
	Matches int             `json:"matches"`
	Rows    []searchRowJSON `json:"rows"`
}

type searchRowJSON struct {
	PK    int64    `json:"pk"`
	Value string   `json:"value,omitempty"`
	Links []string `json:"links,omitempty"`
}

// runSearch executes the 'search' CLI command, grepping database columns
// for a regular expression.
//
// Command-specific flags:
//   - -i, --ignore-case: Case-insensitive matching
//   - -s, --show-values: Display mode: 'a' (all), 'l' (lines, default),
//     a context width, or 'none' (-s with no value) to suppress values
//   - -t, --find-text-columns: Search TEXT-affinity columns (default when
//     no column selector is given)
//   - --find-char-columns: Search CHAR-affinity columns
//   - -f, --find-columns: Search columns whose declared type has a prefix
//   - -p, --preset: Apply a named preset from the configuration
//   - -l, --admin-links: Print admin change URLs for the given sites
//   - --limit: Row limit per column (0 = no limit)
//   - --timeout: Total search timeout
//
// Examples:
//
//	grepdb search 'connection refused' app.logs
//	grepdb search -i -s 20 'timeout' app.posts.body
//	grepdb search -l prod 'refund' app.orders
func runSearch(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	ignoreCase := fs.BoolP("ignore-case", "i", false, "Case-insensitive matching")
	showValues := fs.StringP("show-values", "s", "l", "Display mode: a, l, or a context width")
	findText := fs.BoolP("find-text-columns", "t", false, "Search TEXT-affinity columns")
	findChar := fs.Bool("find-char-columns", false, "Search CHAR-affinity columns")
	findColumns := fs.StringSliceP("find-columns", "f", nil, "Search columns by declared-type prefix")
	presetName := fs.StringP("preset", "p", "", "Apply a named preset from the configuration")
	adminLinks := fs.StringSliceP("admin-links", "l", nil, "Print admin change URLs for these sites")
	limit := fs.Int("limit", 0, "Row limit per column (0 = no limit)")
	timeout := fs.Duration("timeout", 30*time.Second, "Total search timeout")

	// Bare -s means "list matching rows, skip the values".
	fs.Lookup("show-values").NoOptDefVal = "none"
	// Bare -l links against the default site.
	fs.Lookup("admin-links").NoOptDefVal = "default"

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: grepdb search [options] <pattern> <identifier>...

Description:
  Search the text columns of configured SQLite sources with a regular
  expression and print matching rows with the matches highlighted.

  An identifier names where to look: 'source.table' searches the
  table's discovered text columns, 'source.table.column' searches one
  column, and further dotted segments name more columns.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Display modes (-s):
  a          Show the whole value, all matches highlighted
  l          Show only the lines that match (default)
  <width>    Show <width> characters of context around each match
  (bare -s)  List matching rows without their values

Examples:
  # Search discovered text columns of a table
  grepdb search 'connection refused' app.logs

  # Case-insensitive, 20 characters of context
  grepdb search -i -s 20 'timeout' app.posts.body

  # Search VARCHAR columns too
  grepdb search -t --find-char-columns 'budget' app.posts

  # Admin links for the prod site, values suppressed
  grepdb search -s -l prod 'refund' app.orders

  # JSON output for scripting
  grepdb --json search 'error' app.logs | jq '.[].rows[].pk'

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 2 {
		fs.Usage()
		errors.FatalError(errors.NewInputError(
			"Pattern and identifier required",
			"Provide a regular expression and at least one source.table identifier",
			"Example: grepdb search 'connection refused' app.logs",
		), globals.JSON)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	// Presets fill in flags the user left at their defaults.
	if *presetName != "" {
		preset, err := cfg.Preset(*presetName)
		if err != nil {
			errors.FatalError(err, globals.JSON)
		}
		if !fs.Changed("ignore-case") {
			*ignoreCase = preset.IgnoreCase
		}
		if !fs.Changed("show-values") && preset.ShowValues != "" {
			*showValues = preset.ShowValues
		}
		if !fs.Changed("find-text-columns") {
			*findText = preset.FindTextColumns
		}
		if !fs.Changed("find-char-columns") {
			*findChar = preset.FindCharColumns
		}
		if !fs.Changed("find-columns") {
			*findColumns = preset.FindColumns
		}
		if !fs.Changed("admin-links") {
			*adminLinks = preset.AdminLinks
		}
		if !fs.Changed("limit") && preset.Limit > 0 {
			*limit = preset.Limit
		}
	}

	pattern := fs.Arg(0)

	idents := make([]grep.Identifier, 0, fs.NArg()-1)
	for _, raw := range fs.Args()[1:] {
		id, err := grep.ParseIdentifier(raw)
		if err != nil {
			errors.FatalError(errors.NewInputError(
				"Invalid identifier",
				err.Error(),
				"Identifiers look like 'source.table' or 'source.table.column'",
			), globals.JSON)
		}
		idents = append(idents, id)
	}

	show := true
	var mode highlight.Mode
	if *showValues == "none" {
		mode = highlight.Line()
		show = false
	} else {
		mode, err = highlight.ParseMode(*showValues)
		if err != nil {
			errors.FatalError(errors.NewInputError(
				"Invalid display mode",
				err.Error(),
				"Use 'a' for all, 'l' for lines, or a non-negative context width",
			), globals.JSON)
		}
	}

	var types grep.ColumnTypes
	if *findText {
		types = append(types, "text")
	}
	if *findChar {
		types = append(types, "char")
	}
	types = append(types, *findColumns...)
	if len(types) == 0 {
		types = grep.DefaultColumnTypes()
	}

	// Resolve site references before touching any database.
	linkBases, err := grep.ResolveSites(*adminLinks, grep.Sites(cfg.Sites))
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot resolve admin site",
			err.Error(),
			"Add the site under 'sites:' in .grepdb/config.yaml or pass a full URL",
			nil,
		), globals.JSON)
	}

	mark := ui.Highlight
	if globals.JSON {
		// Keep ANSI escapes out of JSON strings.
		mark = func(s string) string { return s }
	}

	req := &grep.Request{
		Pattern:     pattern,
		IgnoreCase:  *ignoreCase,
		Mode:        mode,
		ShowValues:  show,
		Mark:        mark,
		ColumnTypes: types,
		Limit:       *limit,
	}
	h, err := req.Compile()
	if err != nil {
		errors.FatalError(errors.NewInputError(
			"Invalid regular expression",
			err.Error(),
			"Check the pattern syntax; see https://pkg.go.dev/regexp/syntax",
		), globals.JSON)
	}

	engine := grep.NewEngine(func(source string) (*store.Store, error) {
		path, err := cfg.SourcePath(source)
		if err != nil {
			return nil, err
		}
		s, err := store.Open(path)
		if err != nil {
			return nil, errors.NewDatabaseError(
				fmt.Sprintf("Cannot open source '%s'", source),
				fmt.Sprintf("Failed to open %s: %v", path, err),
				"Check that the path in .grepdb/config.yaml points at a SQLite database",
				err,
			)
		}
		return s, nil
	})
	defer func() { _ = engine.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	queries, err := engine.Plan(ctx, idents, types)
	if err != nil {
		errors.FatalError(errors.NewInputError(
			"Cannot plan search",
			err.Error(),
			"Run 'grepdb schema <source>' to list tables and columns",
		), globals.JSON)
	}

	if len(queries) == 0 && !globals.JSON {
		ui.Warning("No searchable columns matched the identifiers")
		return
	}

	progressCfg := NewProgressConfig(globals)
	var bar = NewProgressBar(progressCfg, int64(len(queries)), "Searching")

	var outputs []searchOutput
	matched := false
	for _, q := range queries {
		res, err := engine.Run(ctx, q, req, h)
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			if ctx.Err() != nil {
				errors.FatalError(errors.NewDatabaseError(
					"Search timed out",
					fmt.Sprintf("The search exceeded %s", *timeout),
					"Narrow the identifiers, add --limit, or raise --timeout",
					err,
				), globals.JSON)
			}
			errors.FatalError(errors.NewDatabaseError(
				fmt.Sprintf("Search failed on %s", q),
				err.Error(),
				"Check the column exists and holds text",
				err,
			), globals.JSON)
		}
		if len(res.Rows) == 0 {
			continue
		}
		matched = true
		if globals.JSON {
			outputs = append(outputs, fieldJSON(res, linkBases))
			continue
		}
		printFieldResult(res, linkBases, show)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if globals.JSON {
		if outputs == nil {
			outputs = []searchOutput{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(outputs)
		return
	}

	if !matched && !globals.Quiet {
		fmt.Fprintln(os.Stderr, "No matches")
	}
}

// printFieldResult prints one field's matching rows in grep style: a
// header naming the field, then one block per row.
func printFieldResult(res *grep.FieldResult, linkBases []string, show bool) {
	ui.Header(fmt.Sprintf("%s.%s %s", res.Query.Source, res.Query.Table, res.Query.Column))
	for _, row := range res.Rows {
		_, _ = ui.Green.Printf("%s pk=%d\n", res.Query.Table, row.PK)
		for _, link := range grep.AdminLinks(linkBases, res.Query.Table, row.PK) {
			fmt.Println(ui.DimText(link))
		}
		if show {
			fmt.Print(row.Rendered)
		}
	}
	if !show {
		fmt.Println()
	}
}

func fieldJSON(res *grep.FieldResult, linkBases []string) searchOutput {
	out := searchOutput{
		Source:  res.Query.Source,
		Table:   res.Query.Table,
		Column:  res.Query.Column,
		Matches: len(res.Rows),
		Rows:    make([]searchRowJSON, 0, len(res.Rows)),
	}
	for _, row := range res.Rows {
		out.Rows = append(out.Rows, searchRowJSON{
			PK:    row.PK,
			Value: row.Rendered,
			Links: grep.AdminLinks(linkBases, res.Query.Table, row.PK),
		})
	}
	return out
}
