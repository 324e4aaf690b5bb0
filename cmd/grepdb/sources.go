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
	"sort"
	"text/tabwriter"
	"time"

	"github.com/kraklabs/grepdb/internal/errors"
	"github.com/kraklabs/grepdb/internal/ui"
	"github.com/kraklabs/grepdb/pkg/store"
)

// runSources executes the 'sources' CLI command, listing the configured
// sources and whether their database files exist.
func runSources(args []string, configPath string, globals GlobalFlags) {
	_ = args

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	names := make([]string, 0, len(cfg.Sources))
	for name := range cfg.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	type sourceInfo struct {
		Name   string `json:"name"`
		Path   string `json:"path"`
		Exists bool   `json:"exists"`
		Tables int    `json:"tables"`
	}
	infos := make([]sourceInfo, 0, len(names))
	for _, name := range names {
		path := cfg.Sources[name]
		info := sourceInfo{Name: name, Path: path, Tables: -1}
		if _, err := os.Stat(path); err == nil {
			info.Exists = true
			info.Tables = countTables(path)
		}
		infos = append(infos, info)
	}

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(infos)
		return
	}

	if len(infos) == 0 {
		ui.Warning("No sources configured. Run 'grepdb init' to add one.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tPATH\tTABLES\tSTATUS")
	for _, info := range infos {
		status := "ok"
		tables := fmt.Sprintf("%d", info.Tables)
		if !info.Exists {
			status = "missing"
			tables = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.Path, tables, status)
	}
	_ = w.Flush()
}

// countTables opens the source briefly to count its tables. Returns -1
// when the database cannot be read; the listing still shows the source.
func countTables(path string) int {
	s, err := store.Open(path)
	if err != nil {
		return -1
	}
	defer func() { _ = s.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tables, err := s.Tables(ctx)
	if err != nil {
		return -1
	}
	return len(tables)
}
