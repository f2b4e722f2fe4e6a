// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.


package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchVulnerability_Normalize(t *testing.T) {
	v := SearchVulnerability{
		ID: "vuln-1",
		AdvisoryIDs: []string{
			"https://example.com/advisory/2",
			"https://github.com/advisories/GHSA-9999",
			"CVE-2014-0111",
			"https://github.com/advisories/GHSA-9998",
			"https://example.com/advisory/1",
			"CVE-2014-0101",
		},
		Components:    map[string][]string{"lodash": {"4.17.21", "4.17.0"}},
		SourcePlugins: []string{"trivy", "snyk"},
	}
	v.Normalize()

	assert.Equal(t, []string{
		"CVE-2014-0101",
		"CVE-2014-0111",
		"https://github.com/advisories/GHSA-9998",
		"https://github.com/advisories/GHSA-9999",
		"https://example.com/advisory/1",
		"https://example.com/advisory/2",
	}, v.AdvisoryIDs)
	assert.Equal(t, []string{"4.17.0", "4.17.21"}, v.Components["lodash"])
	assert.Equal(t, []string{"snyk", "trivy"}, v.SourcePlugins)

	empty := SearchVulnerability{ID: "vuln-2"}
	empty.Normalize()
	assert.Equal(t, []string{}, empty.AdvisoryIDs)
	assert.Equal(t, []string{}, empty.SourcePlugins)
}
