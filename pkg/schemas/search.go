// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.


package schemas

import (
	"sort"
	"strings"
)

const (
	advisoryPrefixCVE  = "CVE-"
	advisoryPrefixGHSA = "https://github.com/advisories/GHSA-"
)

type ComponentLicense struct {
	ID   string `json:"id"   yaml:"id"   validate:"required"`
	Name string `json:"name" yaml:"name"`
}

// SearchComponent is a software component found by SBOM scans.
type SearchComponent struct {
	Name     string             `json:"name"     yaml:"name"     validate:"required"`
	Version  string             `json:"version"  yaml:"version"  validate:"required"`
	Licenses []ComponentLicense `json:"licenses" yaml:"licenses" validate:"required,dive"`
}

type SearchComponentsResponse = PagedResponse[SearchComponent]

// SearchComponentRepo is a repository that uses a component.
type SearchComponentRepo struct {
	Service string `json:"service" yaml:"service" validate:"required"`
	Repo    string `json:"repo"    yaml:"repo"    validate:"required"`
	Risk    *Risk  `json:"risk"    yaml:"risk"    validate:"omitnil,oneof=priority critical high moderate low"`
}

type SearchComponentReposResponse = PagedResponse[SearchComponentRepo]

// SearchVulnerability is a vulnerability found across scanned repositories.
// Components maps a component name to its affected versions.
type SearchVulnerability struct {
	ID            string              `json:"id"             yaml:"id"             validate:"required"`
	AdvisoryIDs   []string            `json:"advisory_ids"   yaml:"advisory_ids"`
	Description   string              `json:"description"    yaml:"description"`
	Severity      Severity            `json:"severity"       yaml:"severity"       validate:"omitempty,oneof=critical high medium low negligible"`
	Remediation   string              `json:"remediation"    yaml:"remediation"`
	Components    map[string][]string `json:"components"     yaml:"components"`
	SourcePlugins []string            `json:"source_plugins" yaml:"source_plugins"`
}

type SearchVulnsResponse = PagedResponse[SearchVulnerability]

// Normalize sorts the component versions and source plugins of v, and
// orders its advisory ids with CVE ids first and GHSA links second.
func (v *SearchVulnerability) Normalize() {
	for _, versions := range v.Components {
		sort.Strings(versions)
	}
	if v.AdvisoryIDs == nil {
		v.AdvisoryIDs = []string{}
	}
	sort.SliceStable(v.AdvisoryIDs, func(i, j int) bool {
		a, b := advisoryRank(v.AdvisoryIDs[i]), advisoryRank(v.AdvisoryIDs[j])
		if a != b {
			return a < b
		}
		return v.AdvisoryIDs[i] < v.AdvisoryIDs[j]
	})
	if v.SourcePlugins == nil {
		v.SourcePlugins = []string{}
	}
	sort.Strings(v.SourcePlugins)
}

func advisoryRank(id string) int {
	switch {
	case strings.HasPrefix(id, advisoryPrefixCVE):
		return 0
	case strings.HasPrefix(id, advisoryPrefixGHSA):
		return 1
	default:
		return 2
	}
}
