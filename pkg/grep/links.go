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
	"fmt"
	"strconv"
	"strings"
)

// DefaultSiteURL is the base used for the "default" site reference when
// the configuration does not override it.
const DefaultSiteURL = "http://localhost:8000"

// Sites maps site references to admin base URLs.
type Sites map[string]string

// ResolveSite turns a site reference into a base URL. A reference that
// already looks like a URL or hostname is used as given; otherwise it
// is looked up in the configured sites, with "default" falling back to
// DefaultSiteURL.
func ResolveSite(ref string, sites Sites) (string, error) {
	if strings.Contains(ref, "http") || strings.Contains(ref, "localhost") {
		return ref, nil
	}
	if base, ok := sites[ref]; ok {
		return base, nil
	}
	if ref == "default" {
		return DefaultSiteURL, nil
	}
	return "", fmt.Errorf("site reference %q is not a hostname and is not configured", ref)
}

// ResolveSites resolves every reference up front so a bad reference
// fails before any search runs.
func ResolveSites(refs []string, sites Sites) ([]string, error) {
	bases := make([]string, 0, len(refs))
	for _, ref := range refs {
		base, err := ResolveSite(ref, sites)
		if err != nil {
			return nil, err
		}
		bases = append(bases, base)
	}
	return bases, nil
}

// AdminLink builds the admin change URL for one row.
func AdminLink(base, table string, pk int64) string {
	return strings.TrimRight(base, "/") + "/admin/" + table + "/" + strconv.FormatInt(pk, 10) + "/change/"
}

// AdminLinks builds one change URL per resolved base.
func AdminLinks(bases []string, table string, pk int64) []string {
	links := make([]string, 0, len(bases))
	for _, base := range bases {
		links = append(links, AdminLink(base, table, pk))
	}
	return links
}
