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

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/grepdb/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// GlobalFlags holds the global CLI flags that apply to all commands.
type GlobalFlags struct {
	JSON    bool // Output in JSON format (for applicable commands)
	NoColor bool // Disable color output
	Verbose int  // Verbosity level: 0=normal, 1=-v (info), 2=-vv (debug)
	Quiet   bool // Suppress non-essential output (progress, info messages)
}

// main parses global flags and dispatches to command handlers.
//
// Global flags:
//   - --version: Display version information and exit
//   - --config: Path to .grepdb/config.yaml configuration file
//
// Commands:
//   - init: Create .grepdb/config.yaml configuration
//   - search: Grep database columns for a regular expression
//   - schema: List tables or columns of a source
//   - sources: List configured sources
//   - config: Show current configuration
//   - serve: Start local HTTP search API
func main() {
	// Global flags with short forms
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		configPath  = flag.StringP("config", "c", "", "Path to .grepdb/config.yaml (default: auto-discover)")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format (for applicable commands)")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output (progress, info messages)")
	)

	// Stop parsing at the first non-flag argument (the command name) so
	// subcommand-specific flags like "search -i" reach the subcommand
	// parser instead of being rejected here.
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `grepdb - grep for database-backed text

grepdb searches the text columns of SQLite databases with regular
expressions and prints matching rows with the matches highlighted,
the way grep highlights matches in files. Columns to search are
discovered from the schema, or named explicitly.

Usage:
  grepdb <command> [options]

Commands:
  init          Create .grepdb/config.yaml configuration
  search        Search columns for a regular expression
  schema        List tables or columns of a source
  sources       List configured sources
  config        Show current configuration
  serve         Start local HTTP search API

Global Options:
  --json            Output in JSON format (for applicable commands)
  --no-color        Disable color output (respects NO_COLOR env var)
  -v, --verbose     Increase verbosity (-v for info, -vv for debug)
  -q, --quiet       Suppress non-essential output (progress, info messages)
  -c, --config      Path to .grepdb/config.yaml
  -V, --version     Show version and exit

Examples:
  grepdb init --source app=./db.sqlite3
  grepdb search 'connection refused' app.logs
  grepdb search -i 'timeout' app.posts.body app.comments
  grepdb search -s 3 'deadline' app.posts         Show 3 chars of context
  grepdb search -t --find-char-columns 'x' app.posts
  grepdb search -l staging 'budget' app.posts     Print admin links
  grepdb schema app                               List tables
  grepdb schema app posts                         List columns
  grepdb serve --port 9090

Identifiers:
  source.table              Search discovered text columns of a table
  source.table.column       Search one column
  source.table.col1.col2    Search several named columns

Configuration:
  Configuration lives in .grepdb/config.yaml, found by searching the
  current directory and its parents. GREPDB_CONFIG_PATH overrides the
  search.

For detailed command help: grepdb <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("grepdb version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	// Check NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}

	if *quiet && *verbose > 0 {
		fmt.Fprintf(os.Stderr, "Error: cannot use --quiet and --verbose together\n")
		os.Exit(1)
	}

	// JSON mode auto-enables quiet to prevent progress bars corrupting JSON output
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		NoColor: *noColor,
		Verbose: *verbose,
		Quiet:   *quiet,
	}

	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs, globals)
	case "search":
		runSearch(cmdArgs, *configPath, globals)
	case "schema":
		runSchema(cmdArgs, *configPath, globals)
	case "sources":
		runSources(cmdArgs, *configPath, globals)
	case "config":
		runConfigCmd(cmdArgs, *configPath, globals)
	case "serve":
		cfg, err := LoadConfig(*configPath)
		if err != nil {
			cfg = &Config{}
		}
		os.Exit(runServe(cmdArgs, cfg))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
