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
	"github.com/spf13/cobra"
)

// versionInfo is printed by the version command.
type versionInfo struct {
	Version   string `json:"version"   yaml:"version"`
	BuildTime string `json:"buildTime" yaml:"buildTime"`
	Commit    string `json:"commit"    yaml:"commit"`
}

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the loaded configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return config.WriteConfig(cmd.OutOrStdout())
		},
	}
}

func newVersionCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return get().printer(cmd.OutOrStdout(), versionInfo{
				Version:   config.Version,
				BuildTime: config.BuildTime,
				Commit:    config.Commit,
			})
		},
	}
}
