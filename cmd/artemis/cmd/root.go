// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package cmd contains the commands of the artemis CLI.
package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/crashappsec/artemis/internal/config"
	"github.com/crashappsec/artemis/pkg/api/client"
	"github.com/crashappsec/artemis/pkg/notifications"
	"github.com/crashappsec/artemis/pkg/scans"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what the commands share once the configuration is loaded.
type app struct {
	client       *client.Client
	handler      *notifications.Handler
	orchestrator *scans.Orchestrator
	printer      printer
}

func currentScanFile() string {
	if config.State.Scans.CurrentScanFile != "" {
		return config.State.Scans.CurrentScanFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".artemis", "current_scan")
}

func clientOpts() []client.Opt {
	cfg := config.State.API
	opts := []client.Opt{
		client.UserAgentOpt("artemis-cli/" + config.Version),
		client.RetryOpt(cfg.RetryMaxElapsed),
	}
	switch {
	case cfg.KeyFile != "":
		opts = append(opts, client.APIKeyFileOpt(cfg.KeyFile, cfg.KeyRefresh))
	case cfg.Key != "":
		opts = append(opts, client.APIKeyOpt(cfg.Key))
	default:
		zap.L().Warn("no api key configured, requests will be unauthenticated")
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, client.RateLimitOpt(cfg.RateLimit, cfg.RateBurst))
	}
	if file := currentScanFile(); file != "" {
		opts = append(opts, client.CurrentScanStoreOpt(client.NewFileCurrentScanStore(file)))
	}
	return opts
}

func newApp(output string) (*app, error) {
	p, err := newPrinter(output)
	if err != nil {
		return nil, err
	}

	c, err := client.NewClient(
		config.State.API.URL,
		&http.Client{Timeout: config.State.API.Timeout},
		clientOpts()...,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create api client: %w", err)
	}

	handler := notifications.NewHandler(
		notifications.NewQueue(),
		notifications.WithLoginRedirect(config.State.Notifications.Delay, func() {
			zap.L().Warn("session expired, set a valid key with ARTEMIS_API_KEY or api.keyFile")
		}),
	)

	o, err := scans.New(c, handler, scans.BatchSizeOpt(config.State.Scans.BatchSize))
	if err != nil {
		return nil, fmt.Errorf("unable to create scan orchestrator: %w", err)
	}

	return &app{client: c, handler: handler, orchestrator: o, printer: p}, nil
}

// flush writes the pending notifications and the global exception to w and
// returns the messages written.
func (a *app) flush(w io.Writer) map[string]bool {
	written := map[string]bool{}
	for _, n := range a.handler.Pending() {
		_, _ = fmt.Fprintf(w, "[%s] %s\n", n.Severity, n.Message)
		written[n.Message] = true
	}
	if e := a.handler.Exception(); e != nil {
		_, _ = fmt.Fprintf(w, "[%s] %s\n", e.Action, e.Message)
		written[e.Message] = true
	}
	a.handler.Queue().Clear()
	a.handler.ClearException()
	return written
}

// newRootCommand returns the artemis command with every subcommand, and a
// getter of the app built once the configuration is loaded.
func newRootCommand() (*cobra.Command, func() *app) {
	var (
		output string
		a      *app
	)

	root := &cobra.Command{
		Use:           "artemis",
		Short:         "Queue and follow Artemis scans",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := config.Init(); err != nil {
				return err
			}
			var err error
			a, err = newApp(output)
			return err
		},
	}
	root.PersistentFlags().StringVarP(&output, "output", "o", formatYAML, "output format, one of [yaml, json]")

	get := func() *app { return a }
	root.AddCommand(
		newHistoryCommand(get),
		newScanCommand(get),
		newCurrentCommand(get),
		newGetCommand(get),
		newStatusCommand(get),
		newKeysCommand(get),
		newServicesCommand(get),
		newReposCommand(get),
		newUsersCommand(get),
		newFindingsCommand(get),
		newSearchCommand(get),
		newServeCommand(get),
		newConfigCommand(),
		newVersionCommand(get),
	)
	return root, get
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signalContext(context.Background())
	defer stop()

	root, get := newRootCommand()
	return run(ctx, root, get, os.Stderr)
}

func run(ctx context.Context, root *cobra.Command, get func() *app, stderr io.Writer) int {
	err := root.ExecuteContext(ctx)
	written := map[string]bool{}
	if a := get(); a != nil {
		a.orchestrator.Wait()
		written = a.flush(stderr)
	}
	if err != nil {
		if !written[err.Error()] {
			_, _ = fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
