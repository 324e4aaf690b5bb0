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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/grepdb/internal/errors"
	"github.com/kraklabs/grepdb/internal/ui"
)

// runInit executes the 'init' CLI command, creating .grepdb/config.yaml
// in the current directory.
//
// Command-specific flags:
//   - --source: Source as name=path (repeatable)
//   - --force: Overwrite an existing configuration
//
// Examples:
//
//	grepdb init --source app=./db.sqlite3
//	grepdb init --source app=./db.sqlite3 --source logs=/var/data/logs.db
func runInit(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	sources := fs.StringSlice("source", nil, "Source as name=path (repeatable)")
	force := fs.Bool("force", false, "Overwrite an existing configuration")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: grepdb init [options] [name=path]...

Description:
  Create .grepdb/config.yaml in the current directory. Sources map a
  short name to a SQLite database path; the name is the first segment
  of search identifiers ('app' in 'app.posts.body').

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  grepdb init --source app=./db.sqlite3
  grepdb init app=./db.sqlite3 logs=/var/data/logs.db

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	// Positional name=path pairs are accepted too.
	specs := append(*sources, fs.Args()...)
	if len(specs) == 0 {
		fs.Usage()
		errors.FatalError(errors.NewInputError(
			"At least one source required",
			"No source was given",
			"Example: grepdb init --source app=./db.sqlite3",
		), globals.JSON)
	}

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"Check system permissions and try again",
			err,
		), globals.JSON)
	}

	configPath := ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !*force {
		errors.FatalError(errors.NewConfigError(
			"Configuration already exists",
			fmt.Sprintf("%s is already present", configPath),
			"Use --force to overwrite, or edit the file directly",
			nil,
		), globals.JSON)
	}

	cfg := &Config{
		Version: configVersion,
		Sources: make(map[string]string, len(specs)),
		Sites:   map[string]string{"default": "http://localhost:8000"},
		Serve:   ServeConfig{Port: "8080"},
	}

	for _, spec := range specs {
		name, path, ok := strings.Cut(spec, "=")
		if !ok || name == "" || path == "" {
			errors.FatalError(errors.NewInputError(
				"Invalid source",
				fmt.Sprintf("'%s' is not of the form name=path", spec),
				"Example: --source app=./db.sqlite3",
			), globals.JSON)
		}
		if _, err := os.Stat(path); err != nil {
			ui.Warningf("Warning: database %s does not exist yet", path)
		}
		cfg.Sources[name] = filepath.ToSlash(path)
	}

	if err := SaveConfig(cfg, configPath); err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if !globals.Quiet {
		ui.Successf("Created %s", configPath)
		ui.Info("Next: grepdb search <pattern> <source>.<table>")
	}
}
