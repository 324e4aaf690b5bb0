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
	"sort"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/grepdb/internal/errors"
	"github.com/kraklabs/grepdb/internal/output"
	"github.com/kraklabs/grepdb/internal/ui"
)

// ConfigOutput mirrors Config for JSON output, with the resolved config
// path included.
type ConfigOutput struct {
	ConfigPath string            `json:"config_path"`
	Version    string            `json:"version"`
	Sources    map[string]string `json:"sources"`
	Sites      map[string]string `json:"sites,omitempty"`
	Presets    []string          `json:"presets,omitempty"`
	Serve      ServeConfig       `json:"serve,omitempty"`
}

// runConfigCmd executes the 'config' CLI command, displaying the
// current configuration with environment overrides applied.
//
// Examples:
//
//	grepdb config
//	grepdb config --json | jq '.sources'
func runConfigCmd(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: grepdb config [options]

Description:
  Display the current grepdb configuration: sources, sites, presets,
  and serve settings. Environment variable overrides are applied.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  grepdb config
  grepdb config --json | jq '.sources'

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	var cfgPath string
	var err error
	if configPath != "" {
		cfgPath = configPath
	} else if envPath := os.Getenv("GREPDB_CONFIG_PATH"); envPath != "" {
		cfgPath = envPath
	} else {
		cfgPath, err = findConfigFile()
		if err != nil {
			errors.FatalError(err, globals.JSON)
		}
	}
	if !filepath.IsAbs(cfgPath) {
		if abs, absErr := filepath.Abs(cfgPath); absErr == nil {
			cfgPath = abs
		}
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	presets := make([]string, 0, len(cfg.Presets))
	for name := range cfg.Presets {
		presets = append(presets, name)
	}
	sort.Strings(presets)

	result := &ConfigOutput{
		ConfigPath: cfgPath,
		Version:    cfg.Version,
		Sources:    cfg.Sources,
		Sites:      cfg.Sites,
		Presets:    presets,
		Serve:      cfg.Serve,
	}

	if globals.JSON {
		if err := output.JSON(result); err != nil {
			errors.FatalError(errors.NewInternalError(
				"Cannot encode configuration as JSON",
				"JSON encoding failed unexpectedly",
				"This is a bug. Please report it",
				err,
			), globals.JSON)
		}
		return
	}

	printConfigHuman(result)
}

// printConfigHuman prints the configuration in a readable layout.
func printConfigHuman(cfg *ConfigOutput) {
	ui.Header("grepdb configuration")
	fmt.Printf("%s %s\n", ui.Label("Config:"), ui.DimText(cfg.ConfigPath))
	fmt.Printf("%s %s\n\n", ui.Label("Version:"), cfg.Version)

	ui.SubHeader("Sources")
	names := make([]string, 0, len(cfg.Sources))
	for name := range cfg.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s -> %s\n", name, cfg.Sources[name])
	}

	if len(cfg.Sites) > 0 {
		fmt.Println()
		ui.SubHeader("Sites")
		refs := make([]string, 0, len(cfg.Sites))
		for ref := range cfg.Sites {
			refs = append(refs, ref)
		}
		sort.Strings(refs)
		for _, ref := range refs {
			fmt.Printf("  %s -> %s\n", ref, cfg.Sites[ref])
		}
	}

	if len(cfg.Presets) > 0 {
		fmt.Println()
		ui.SubHeader("Presets")
		for _, name := range cfg.Presets {
			fmt.Printf("  %s\n", name)
		}
	}

	if cfg.Serve.Port != "" {
		fmt.Println()
		fmt.Printf("%s %s\n", ui.Label("Serve port:"), cfg.Serve.Port)
	}
}
