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
	"os"
	"slices"
	"strconv"

	errs "github.com/crashappsec/artemis/pkg/errors"
	"github.com/crashappsec/artemis/pkg/notifications"
	"github.com/crashappsec/artemis/pkg/schemas"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// hiddenFindingFlags are shared by hidden add and hidden update.
type hiddenFindingFlags struct {
	file    string
	kind    string
	reason  string
	expires string
	value   map[string]string
}

func (f *hiddenFindingFlags) register(cmd *cobra.Command, withFile bool) {
	if withFile {
		cmd.Flags().StringVarP(&f.file, "file", "f", "", "read the hidden finding from a YAML or JSON file")
	}
	cmd.Flags().StringVar(&f.kind, "type", "", fmt.Sprintf("finding type, one of %v", schemas.HiddenFindingTypes))
	cmd.Flags().StringVar(&f.reason, "reason", "", "why the finding is hidden")
	cmd.Flags().StringVar(&f.expires, "expires", "", "expiry timestamp, RFC 3339")
	cmd.Flags().StringToStringVar(&f.value, "value", nil, "value fields identifying the finding, as key=value")
}

// apply sets the fields of finding given on the command line.
func (f *hiddenFindingFlags) apply(cmd *cobra.Command, finding *schemas.HiddenFinding) error {
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, finding); err != nil {
			return fmt.Errorf("failed to parse %s: %w", f.file, err)
		}
	}
	if cmd.Flags().Changed("type") {
		kind := schemas.HiddenFindingType(f.kind)
		if !slices.Contains(schemas.HiddenFindingTypes, kind) {
			return fmt.Errorf("unknown type %q, expected one of %v", f.kind, schemas.HiddenFindingTypes)
		}
		finding.Type = kind
	}
	if cmd.Flags().Changed("reason") {
		finding.Reason = f.reason
	}
	if cmd.Flags().Changed("expires") {
		finding.Expires = nil
		if f.expires != "" {
			t, err := schemas.ParseTimestamp(f.expires)
			if err != nil {
				return err
			}
			finding.Expires = schemas.NewTimestamp(t)
		}
	}
	for key, value := range f.value {
		if err := setHiddenFindingValue(&finding.Value, key, value); err != nil {
			return err
		}
	}
	return nil
}

func setHiddenFindingValue(v *schemas.HiddenFindingValue, key, value string) error {
	switch key {
	case "id":
		v.ID = value
	case "filename":
		v.Filename = value
	case "line":
		line, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("value line: expected a number, got %q", value)
		}
		v.Line = &line
	case "type":
		v.Type = value
	case "commit":
		v.Commit = value
	case "value":
		v.Value = value
	case "source":
		v.Source = value
	case "component":
		v.Component = value
	case "validity":
		v.Validity = value
	case "severity":
		v.Severity = schemas.Severity(value)
	default:
		return fmt.Errorf("unknown value field %q", key)
	}
	return nil
}

func newFindingsCommand(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "findings",
		Short: "Manage scan findings",
	}
	cmd.AddCommand(newHiddenFindingsCommand(get))
	return cmd
}

func newHiddenFindingsCommand(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hidden",
		Aliases: []string{"whitelist"},
		Short:   "Manage the hidden findings of a repository",
	}

	list := &cobra.Command{
		Use:   "list <service> <repo>",
		Short: "List hidden findings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			findings, err := a.client.GetHiddenFindings(cmd.Context(), args[0], args[1], nil)
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), findings)
		},
	}

	var addFlags hiddenFindingFlags
	add := &cobra.Command{
		Use:   "add <service> <repo>",
		Short: "Hide a finding",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			var finding schemas.HiddenFinding
			if err := addFlags.apply(cmd, &finding); err != nil {
				return err
			}
			if finding.CreatedBy == nil {
				if self, err := a.client.GetUserSelf(cmd.Context()); err == nil {
					finding.CreatedBy = &self.Email
				} else {
					zap.L().Debug("unable to get current user for created_by", zap.Error(err))
				}
			}
			findings, err := a.client.AddHiddenFinding(cmd.Context(), args[0], args[1], finding)
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), findings)
		},
	}
	addFlags.register(add, true)

	var updateFlags hiddenFindingFlags
	update := &cobra.Command{
		Use:   "update <service> <repo> <id>",
		Short: "Change the reason, expiry or value of a hidden finding",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			findings, err := a.client.GetHiddenFindings(cmd.Context(), args[0], args[1], nil)
			if err != nil {
				return a.report(err)
			}
			idx := slices.IndexFunc(findings, func(f schemas.HiddenFinding) bool { return f.ID == args[2] })
			if idx < 0 {
				return a.report(errs.New(errs.TypeNotFound, nil, "hidden finding %s not found", args[2]))
			}

			finding := findings[idx]
			if err := updateFlags.apply(cmd, &finding); err != nil {
				return err
			}
			updated, err := a.client.UpdateHiddenFinding(cmd.Context(), args[0], args[1], finding)
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), updated)
		},
	}
	updateFlags.register(update, false)

	del := &cobra.Command{
		Use:   "delete <service> <repo> <id>",
		Short: "Show a hidden finding again",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			id, err := a.client.DeleteHiddenFinding(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return a.report(err)
			}
			a.handler.Notify("Deleted hidden finding "+id, notifications.SeveritySuccess)
			return nil
		},
	}

	cmd.AddCommand(list, add, update, del)
	return cmd
}
