// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.


package cmd

import (
	"github.com/crashappsec/artemis/pkg/api/client"
	"github.com/spf13/cobra"
)

// searchFilters maps filter names to the flag values given. Empty values
// are skipped.
type searchFilters map[string]client.Filter

func (f searchFilters) add(name string, match client.Match, value string) {
	if value != "" {
		f[name] = client.FilterValue(match, value)
	}
}

func newSearchCommand(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search components and vulnerabilities",
	}
	cmd.AddCommand(
		newSearchComponentsCommand(get),
		newSearchComponentReposCommand(get),
		newSearchVulnsCommand(get),
		newSearchVulnReposCommand(get),
	)
	return cmd
}

func newSearchComponentsCommand(get func() *app) *cobra.Command {
	var (
		page, perPage int
		name, version string
	)

	cmd := &cobra.Command{
		Use:   "components",
		Short: "Search components found by SBOM scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			meta, err := historyMeta(page, perPage, "")
			if err != nil {
				return err
			}
			filters := searchFilters{}
			filters.add("name", client.MatchIContains, name)
			filters.add("version", client.MatchIContains, version)
			meta.Filters = filters

			components, err := a.client.GetComponents(cmd.Context(), meta)
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), components)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to load, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "components per page, defaults to scans.itemsPerPage")
	cmd.Flags().StringVar(&name, "name", "", "only list components with a matching name")
	cmd.Flags().StringVar(&version, "version", "", "only list components with a matching version")
	return cmd
}

func newSearchComponentReposCommand(get func() *app) *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "component-repos <name> <version>",
		Short: "List the repositories using a component",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			meta, err := historyMeta(page, perPage, "")
			if err != nil {
				return err
			}
			repos, err := a.client.GetComponentRepos(cmd.Context(), args[0], args[1], meta)
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), repos)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to load, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "repositories per page, defaults to scans.itemsPerPage")
	return cmd
}

func newSearchVulnsCommand(get func() *app) *cobra.Command {
	var (
		page, perPage               int
		vulnID, severity, component string
	)

	cmd := &cobra.Command{
		Use:     "vulns",
		Aliases: []string{"vulnerabilities"},
		Short:   "Search vulnerabilities found across repositories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			meta, err := historyMeta(page, perPage, "")
			if err != nil {
				return err
			}
			filters := searchFilters{}
			filters.add("vuln_id", client.MatchIContains, vulnID)
			filters.add("severity", client.MatchExact, severity)
			filters.add("component", client.MatchIContains, component)
			meta.Filters = filters

			vulns, err := a.client.GetVulnerabilities(cmd.Context(), meta)
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), vulns)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to load, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "vulnerabilities per page, defaults to scans.itemsPerPage")
	cmd.Flags().StringVar(&vulnID, "vuln-id", "", "only list vulnerabilities with a matching advisory id")
	cmd.Flags().StringVar(&severity, "severity", "", "only list vulnerabilities of this severity")
	cmd.Flags().StringVar(&component, "component", "", "only list vulnerabilities of a matching component")
	return cmd
}

func newSearchVulnReposCommand(get func() *app) *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "vuln-repos <id>",
		Short: "List the repositories affected by a vulnerability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			meta, err := historyMeta(page, perPage, "")
			if err != nil {
				return err
			}
			repos, err := a.client.GetVulnerabilityRepos(cmd.Context(), args[0], meta)
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), repos)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to load, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "repositories per page, defaults to scans.itemsPerPage")
	return cmd
}
