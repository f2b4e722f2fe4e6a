// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package client

import (
	"regexp"
	"slices"
	"strings"

	"github.com/crashappsec/artemis/pkg/schemas"
	"k8s.io/utils/ptr"
)

var pathSeparators = regexp.MustCompile(`[,\n]`)

// splitPaths splits a comma or newline separated list, dropping empty entries.
func splitPaths(value string) []string {
	if value == "" {
		return nil
	}
	paths := []string{}
	for _, p := range pathSeparators.Split(value, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// removedPlugins returns "-name" for every known plugin that is not checked.
func removedPlugins(known, checked []string) []string {
	var removed []string
	for _, name := range known {
		if !slices.Contains(checked, name) {
			removed = append(removed, "-"+name)
		}
	}
	return removed
}

type categorySelection struct {
	category schemas.Category
	enabled  bool
	plugins  []string
}

// BuildScanOptions converts the user-facing form to the options posted to
// the API. Categories are always sent, negated when disabled. For an enabled
// category, the known plugins that are not selected are negated. For a
// disabled category, the selected plugins are requested explicitly.
func BuildScanOptions(form schemas.ScanOptionsForm) schemas.ScanOptions {
	opts := schemas.ScanOptions{
		Branch:       form.Branch,
		IncludePaths: splitPaths(form.IncludePaths),
		ExcludePaths: splitPaths(form.ExcludePaths),
	}
	if form.Depth > 0 {
		opts.Depth = ptr.To(form.Depth)
	}
	if form.IncludeDev {
		opts.IncludeDev = ptr.To(true)
	}

	selections := []categorySelection{
		{category: schemas.CategoryInventory, enabled: form.Inventory, plugins: form.TechPlugins},
		{category: schemas.CategorySecret, enabled: form.Secrets, plugins: form.SecretPlugins},
		{category: schemas.CategoryStaticAnalysis, enabled: form.StaticAnalysis, plugins: form.StaticPlugins},
		{category: schemas.CategoryVulnerability, enabled: form.Vulnerability, plugins: form.VulnPlugins},
		{category: schemas.CategorySBOM, enabled: form.SBOM, plugins: form.SBOMPlugins},
	}

	opts.Categories = make([]schemas.Category, 0, len(selections))
	opts.Plugins = []string{}
	for _, s := range selections {
		opts.Categories = append(opts.Categories, s.category.Toggle(s.enabled))
		if s.enabled {
			opts.Plugins = append(opts.Plugins, removedPlugins(schemas.KnownPlugins(s.category), s.plugins)...)
		} else {
			opts.Plugins = append(opts.Plugins, s.plugins...)
		}
	}
	return opts
}
