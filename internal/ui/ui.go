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

// Package ui provides terminal color helpers for CLI output.
// Colors are disabled automatically when stdout is not a TTY, and can be
// forced off with InitColors (driven by --no-color / NO_COLOR).
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Shared color styles. Exported so commands can use them directly for
// one-off formatting (e.g. ui.Green.Println).
var (
	Cyan   = color.New(color.FgCyan, color.Bold)
	Green  = color.New(color.FgGreen, color.Bold)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed, color.Bold)
	Dim    = color.New(color.Faint)

	// matchStyle renders a matched substring the way grep output
	// traditionally does: black text on a yellow block.
	matchStyle = color.New(color.FgBlack, color.BgYellow)
)

// InitColors performs the one-time process-wide color setup. It must be
// called before any rendering. Passing true disables colors entirely;
// otherwise colors are enabled only when stdout is a terminal.
func InitColors(noColor bool) {
	if noColor {
		color.NoColor = true
		return
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// Highlight wraps the exact matched substring in the match marker color.
// It satisfies highlight.MarkFunc.
func Highlight(s string) string {
	return matchStyle.Sprint(s)
}

// Header prints a bold section header followed by a blank line.
func Header(s string) {
	_, _ = Cyan.Println(s)
	fmt.Println()
}

// SubHeader prints a bold sub-section header.
func SubHeader(s string) {
	_, _ = Cyan.Println(s)
}

// Label returns a bolded field label for aligned key/value output.
func Label(s string) string {
	return color.New(color.Bold).Sprint(s)
}

// DimText returns s in faint styling, used for paths and secondary detail.
func DimText(s string) string {
	return Dim.Sprint(s)
}

// CountText formats a count in green, the convention for entity tallies.
func CountText(n int) string {
	return Green.Sprint(n)
}

// Info prints an informational message.
func Info(msg string) {
	fmt.Println(msg)
}

// Infof prints a formatted informational message.
func Infof(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// Success prints a green success message.
func Success(msg string) {
	_, _ = Green.Println(msg)
}

// Successf prints a formatted green success message.
func Successf(format string, args ...any) {
	_, _ = Green.Printf(format+"\n", args...)
}

// Warning prints a yellow warning message to stderr.
func Warning(msg string) {
	_, _ = Yellow.Fprintln(os.Stderr, msg)
}

// Warningf prints a formatted yellow warning message to stderr.
func Warningf(format string, args ...any) {
	_, _ = Yellow.Fprintf(os.Stderr, format+"\n", args...)
}
