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

// Package main implements the grepdb CLI.
//
// grepdb is grep for database-backed text: it searches the text columns
// of SQLite databases with regular expressions and prints matching rows
// with the matches highlighted.
//
// # Quick Start
//
// Point grepdb at a database:
//
//	grepdb init --source app=./db.sqlite3
//
// Search the text columns of a table:
//
//	grepdb search 'connection refused' app.logs
//
// Search one column with context around each match:
//
//	grepdb search -s 20 'timeout' app.posts.body
//
// Inspect what would be searched:
//
//	grepdb schema app posts
//
// # Commands
//
// The CLI provides these main commands:
//
//	init      Create .grepdb/config.yaml configuration
//	search    Search columns for a regular expression
//	schema    List tables or columns of a source
//	sources   List configured sources
//	config    Show current configuration
//	serve     Start local HTTP search API
//
// # Display modes
//
// The -s flag controls how matching values are shown: 'a' prints the
// whole value, 'l' (the default) prints only the lines that match, and
// a number prints that many characters of context around each match.
// A bare -s lists matching rows without printing values at all.
package main
