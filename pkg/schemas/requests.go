// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package schemas provides types that will be used in the API
// and marshalled or unmarshalled from user data
package schemas

import "strings"

// Category is a scan category. Disabled categories are sent prefixed with "-".
type Category string

const (
	CategoryInventory      Category = "inventory"
	CategorySecret         Category = "secret"
	CategoryStaticAnalysis Category = "static_analysis"
	CategoryVulnerability  Category = "vulnerability"
	CategorySBOM           Category = "sbom"
)

// Disabled returns the negated form of the category, e.g. "-secret".
func (c Category) Disabled() Category {
	return "-" + Category(strings.TrimPrefix(string(c), "-"))
}

// Toggle returns c when enabled is true and its negated form otherwise.
func (c Category) Toggle(enabled bool) Category {
	if enabled {
		return c
	}
	return c.Disabled()
}

// ScanRequest identifies the repository whose scans are requested.
type ScanRequest struct {
	// VcsOrg is "<service>/<org>", e.g. "github/crashappsec".
	VcsOrg string `json:"vcsOrg" yaml:"vcsOrg"`
	Repo   string `json:"repo"   yaml:"repo"`
}

// ScanOptionsForm holds the user-facing scan options. It is converted to
// [ScanOptions] before being posted to the API.
type ScanOptionsForm struct {
	VcsOrg string `json:"vcsOrg" yaml:"vcsOrg"`
	Repo   string `json:"repo"   yaml:"repo"`
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`

	Secrets        bool `json:"secrets"        yaml:"secrets"`
	StaticAnalysis bool `json:"staticAnalysis" yaml:"staticAnalysis"`
	Inventory      bool `json:"inventory"      yaml:"inventory"`
	Vulnerability  bool `json:"vulnerability"  yaml:"vulnerability"`
	SBOM           bool `json:"sbom"           yaml:"sbom"`

	Depth      int  `json:"depth,omitempty"      yaml:"depth,omitempty"`
	IncludeDev bool `json:"includeDev,omitempty" yaml:"includeDev,omitempty"`

	// IncludePaths and ExcludePaths are newline or comma separated lists.
	IncludePaths string `json:"includePaths,omitempty" yaml:"includePaths,omitempty"`
	ExcludePaths string `json:"excludePaths,omitempty" yaml:"excludePaths,omitempty"`

	// Plugins selected per category. For an enabled category these are the
	// plugins left checked. For a disabled category they are plugins to run anyway.
	SecretPlugins []string `json:"secretPlugins,omitempty" yaml:"secretPlugins,omitempty"`
	StaticPlugins []string `json:"staticPlugins,omitempty" yaml:"staticPlugins,omitempty"`
	TechPlugins   []string `json:"techPlugins,omitempty"   yaml:"techPlugins,omitempty"`
	VulnPlugins   []string `json:"vulnPlugins,omitempty"   yaml:"vulnPlugins,omitempty"`
	SBOMPlugins   []string `json:"sbomPlugins,omitempty"   yaml:"sbomPlugins,omitempty"`
}

type ScanQueueFailed struct {
	Repo  string `json:"repo"  yaml:"repo"`
	Error string `json:"error" yaml:"error"`
}

// ScanQueue is the response to queueing scans.
type ScanQueue struct {
	Queued []string          `json:"queued" yaml:"queued" validate:"required"`
	Failed []ScanQueueFailed `json:"failed" yaml:"failed" validate:"required"`
}
