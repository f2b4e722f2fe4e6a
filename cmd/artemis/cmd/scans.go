// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package cmd

import (
	"fmt"

	"github.com/crashappsec/artemis/internal/config"
	"github.com/crashappsec/artemis/pkg/api/client"
	"github.com/crashappsec/artemis/pkg/scans"
	"github.com/crashappsec/artemis/pkg/schemas"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func scanRequest(args []string) schemas.ScanRequest {
	return schemas.ScanRequest{VcsOrg: args[0], Repo: args[1]}
}

func historyMeta(page, perPage int, initiatedBy string) (*client.RequestMeta, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be at least 1, got %d", page)
	}
	if perPage == 0 {
		perPage = config.State.Scans.ItemsPerPage
	}
	if perPage < 1 || perPage > config.State.Scans.MaxItemsPerPage {
		return nil, fmt.Errorf("per-page must be between 1 and %d, got %d",
			config.State.Scans.MaxItemsPerPage, perPage)
	}

	meta := &client.RequestMeta{CurrentPage: page - 1, ItemsPerPage: perPage}
	if initiatedBy != "" {
		meta.Filters = map[string]client.Filter{
			"initiated_by": client.FilterValue(client.MatchIContains, initiatedBy),
		}
	}
	return meta, nil
}

func newHistoryCommand(get func() *app) *cobra.Command {
	var (
		page        int
		perPage     int
		initiatedBy string
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "history <vcs/org> <repo>",
		Short: "List the scan history of a repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			meta, err := historyMeta(page, perPage, initiatedBy)
			if err != nil {
				return err
			}
			req := scanRequest(args)

			if watch {
				w := scans.NewWatcher(a.orchestrator, meta)
				w.Interval = config.State.Scans.ReloadInterval
				w.StopWhenDone = true
				w.OnReload = func(s scans.Snapshot) {
					zap.L().Info("scan history loaded",
						zap.String("status", string(s.Status)),
						zap.Int("totalRecords", s.TotalRecords),
						zap.Int("scans", len(s.Scans)))
				}
				err = w.Watch(cmd.Context(), req)
			} else {
				err = a.orchestrator.GetScanHistory(cmd.Context(), req, meta)
				a.orchestrator.Wait()
			}
			if err != nil {
				return err
			}
			return a.printer(cmd.OutOrStdout(), schemas.ScanHistoryResponse{
				Count:   a.orchestrator.Store().Total(),
				Results: a.orchestrator.Store().All(),
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page to load, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "scans per page, defaults to scans.itemsPerPage")
	cmd.Flags().StringVar(&initiatedBy, "initiated-by", "", "only list scans initiated by a matching user")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the page until every scan is finished")
	return cmd
}

// pluginFlag returns the plugins selected for a category. An enabled
// category runs every known plugin unless the flag was set.
func pluginFlag(cmd *cobra.Command, name string, category schemas.Category, enabled bool) ([]string, error) {
	plugins, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed(name) && enabled {
		return schemas.KnownPlugins(category), nil
	}
	return plugins, nil
}

func scanForm(cmd *cobra.Command, args []string, form schemas.ScanOptionsForm) (schemas.ScanOptionsForm, error) {
	form.VcsOrg, form.Repo = args[0], args[1]

	var err error
	for _, p := range []struct {
		flag     string
		category schemas.Category
		enabled  bool
		into     *[]string
	}{
		{"secret-plugins", schemas.CategorySecret, form.Secrets, &form.SecretPlugins},
		{"static-plugins", schemas.CategoryStaticAnalysis, form.StaticAnalysis, &form.StaticPlugins},
		{"tech-plugins", schemas.CategoryInventory, form.Inventory, &form.TechPlugins},
		{"vuln-plugins", schemas.CategoryVulnerability, form.Vulnerability, &form.VulnPlugins},
		{"sbom-plugins", schemas.CategorySBOM, form.SBOM, &form.SBOMPlugins},
	} {
		if *p.into, err = pluginFlag(cmd, p.flag, p.category, p.enabled); err != nil {
			return form, err
		}
	}
	return form, nil
}

func newScanCommand(get func() *app) *cobra.Command {
	var form schemas.ScanOptionsForm

	cmd := &cobra.Command{
		Use:   "scan <vcs/org> <repo>",
		Short: "Queue a scan of a repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			f, err := scanForm(cmd, args, form)
			if err != nil {
				return err
			}
			scan, err := a.orchestrator.AddScan(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.printer(cmd.OutOrStdout(), scan)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&form.Branch, "branch", "", "branch to scan, defaults to the repository default branch")
	flags.BoolVar(&form.Secrets, "secrets", true, "run secret detection")
	flags.BoolVar(&form.StaticAnalysis, "static-analysis", true, "run static analysis")
	flags.BoolVar(&form.Inventory, "inventory", true, "run technology inventory")
	flags.BoolVar(&form.Vulnerability, "vulnerability", true, "run vulnerability detection")
	flags.BoolVar(&form.SBOM, "sbom", false, "generate a software bill of materials")
	flags.IntVar(&form.Depth, "depth", 0, "commit history depth to scan")
	flags.BoolVar(&form.IncludeDev, "include-dev", false, "include development dependencies")
	flags.StringVar(&form.IncludePaths, "include-paths", "", "comma or newline separated paths to include")
	flags.StringVar(&form.ExcludePaths, "exclude-paths", "", "comma or newline separated paths to exclude")
	flags.StringSlice("secret-plugins", nil, "secret plugins to run, defaults to all")
	flags.StringSlice("static-plugins", nil, "static analysis plugins to run, defaults to all")
	flags.StringSlice("tech-plugins", nil, "inventory plugins to run, defaults to all")
	flags.StringSlice("vuln-plugins", nil, "vulnerability plugins to run, defaults to all")
	flags.StringSlice("sbom-plugins", nil, "sbom plugins to run")
	return cmd
}

func newCurrentCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the last scan queued from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			scan, err := a.orchestrator.GetCurrentScan(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer(cmd.OutOrStdout(), scan)
		},
	}
}

func newGetCommand(get func() *app) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "get <service> <repo> <scan-id>",
		Short: "Show a single scan",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			id := schemas.ScanID{Service: args[0], Repo: args[1], ScanID: args[2]}
			meta := scans.SummaryMeta()
			if full {
				meta = nil
			}
			scan, err := a.orchestrator.GetScanByID(cmd.Context(), id, meta)
			if err != nil {
				return err
			}
			return a.printer(cmd.OutOrStdout(), scan)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include the full scan results")
	return cmd
}
