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

// Package errors provides structured user-facing errors for the CLI.
// Every fatal error carries a short message, a detail line explaining what
// happened, and a suggestion for how to fix it. Library packages under
// pkg/ return plain wrapped errors; commands convert them to UserErrors
// at the boundary.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Kind classifies a UserError for JSON output and exit reporting.
type Kind string

const (
	KindConfig     Kind = "config"
	KindInput      Kind = "input"
	KindDatabase   Kind = "database"
	KindNetwork    Kind = "network"
	KindPermission Kind = "permission"
	KindInternal   Kind = "internal"
)

// UserError is an error with enough context to be shown to a human:
// what went wrong, why, and what to do about it.
type UserError struct {
	Kind       Kind
	Message    string
	Detail     string
	Suggestion string
	Err        error
}

func (e *UserError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewConfigError reports a problem with the configuration file.
func NewConfigError(message, detail, suggestion string, err error) *UserError {
	return &UserError{Kind: KindConfig, Message: message, Detail: detail, Suggestion: suggestion, Err: err}
}

// NewInputError reports invalid command-line input. There is no underlying
// cause: the input itself is the problem.
func NewInputError(message, detail, suggestion string) *UserError {
	return &UserError{Kind: KindInput, Message: message, Detail: detail, Suggestion: suggestion}
}

// NewDatabaseError reports a failure opening or querying a database.
func NewDatabaseError(message, detail, suggestion string, err error) *UserError {
	return &UserError{Kind: KindDatabase, Message: message, Detail: detail, Suggestion: suggestion, Err: err}
}

// NewNetworkError reports a failure reaching a remote server.
func NewNetworkError(message, detail, suggestion string, err error) *UserError {
	return &UserError{Kind: KindNetwork, Message: message, Detail: detail, Suggestion: suggestion, Err: err}
}

// NewPermissionError reports a filesystem permission failure.
func NewPermissionError(message, detail, suggestion string, err error) *UserError {
	return &UserError{Kind: KindPermission, Message: message, Detail: detail, Suggestion: suggestion, Err: err}
}

// NewInternalError reports an unexpected failure that is likely a bug.
func NewInternalError(message, detail, suggestion string, err error) *UserError {
	return &UserError{Kind: KindInternal, Message: message, Detail: detail, Suggestion: suggestion, Err: err}
}

// FatalError prints err and exits with status 1. When jsonOutput is true
// the error is emitted as a JSON object on stdout so callers piping
// --json output never have to parse human formatting.
func FatalError(err error, jsonOutput bool) {
	var ue *UserError
	if !errors.As(err, &ue) {
		ue = &UserError{Kind: KindInternal, Message: "Unexpected error", Detail: err.Error()}
	}

	if jsonOutput {
		out := map[string]string{
			"error": ue.Message,
			"kind":  string(ue.Kind),
		}
		if ue.Detail != "" {
			out["detail"] = ue.Detail
		}
		if ue.Suggestion != "" {
			out["suggestion"] = ue.Suggestion
		}
		if ue.Err != nil {
			out["cause"] = ue.Err.Error()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		os.Exit(1)
	}

	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprintf(os.Stderr, "Error: %s\n", ue.Message)
	if ue.Detail != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", ue.Detail)
	}
	if ue.Err != nil {
		fmt.Fprintf(os.Stderr, "  Cause: %v\n", ue.Err)
	}
	if ue.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", ue.Suggestion)
	}
	os.Exit(1)
}
