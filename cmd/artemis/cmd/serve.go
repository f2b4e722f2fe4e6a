// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package cmd

import (
	"github.com/crashappsec/artemis/internal/config"
	"github.com/crashappsec/artemis/pkg/api"
	"github.com/crashappsec/artemis/pkg/scans"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCommand(get func() *app) *cobra.Command {
	var (
		page, perPage int
		initiatedBy   string
		port          int
	)

	cmd := &cobra.Command{
		Use:   "serve <vcs/org> <repo>",
		Short: "Watch the scan history of a repository and serve it on localhost",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			meta, err := historyMeta(page, perPage, initiatedBy)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = config.State.Server.Port
			}

			engine := api.InitializeEngine(a.orchestrator.Store(), a.handler, config.State.Server.Token)
			w := scans.NewWatcher(a.orchestrator, meta)
			w.Interval = config.State.Scans.ReloadInterval

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return api.RunEngine(ctx, engine, port)
			})
			g.Go(func() error {
				err := w.Watch(ctx, scanRequest(args))
				if err != nil {
					zap.L().Warn("scan history watcher stopped with errors", zap.Error(err))
				}
				// load failures must not stop the server
				return nil
			})
			return g.Wait()
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page to watch, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "scans per page, defaults to scans.itemsPerPage")
	cmd.Flags().StringVar(&initiatedBy, "initiated-by", "", "only watch scans initiated by a matching user")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "status server port, defaults to server.port")
	return cmd
}
