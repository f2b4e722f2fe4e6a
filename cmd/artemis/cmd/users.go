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
	"strconv"

	"github.com/crashappsec/artemis/pkg/api/client"
	"github.com/crashappsec/artemis/pkg/notifications"
	"github.com/crashappsec/artemis/pkg/schemas"
	"github.com/spf13/cobra"
)

// report passes err to the notification handler so that authentication
// failures raise the global exception.
func (a *app) report(err error) error {
	if err != nil {
		a.handler.HandleException(err)
	}
	return err
}

func parseFeatures(raw map[string]string) (map[string]bool, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	features := make(map[string]bool, len(raw))
	for name, value := range raw {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("feature %s: expected true or false, got %q", name, value)
		}
		features[name] = enabled
	}
	return features, nil
}

func newUsersCommand(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage Artemis users, most commands require an admin key",
	}

	var (
		page, perPage int
		email         string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			meta, err := historyMeta(page, perPage, "")
			if err != nil {
				return err
			}
			if email != "" {
				meta.Filters = map[string]client.Filter{
					"email": client.FilterValue(client.MatchIContains, email),
				}
			}
			users, err := a.client.GetUsers(cmd.Context(), meta)
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), users)
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page to load, starting at 1")
	list.Flags().IntVar(&perPage, "per-page", 0, "users per page, defaults to scans.itemsPerPage")
	list.Flags().StringVar(&email, "email", "", "only list users with a matching email")

	self := &cobra.Command{
		Use:   "self",
		Short: "Show the user the API key belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			user, err := a.client.GetUserSelf(cmd.Context())
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), user)
		},
	}

	show := &cobra.Command{
		Use:   "get <email>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			user, err := a.client.GetUserByID(cmd.Context(), args[0])
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), user)
		},
	}

	del := &cobra.Command{
		Use:   "delete <email>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			deleted, err := a.client.DeleteUser(cmd.Context(), args[0])
			if err != nil {
				return a.report(err)
			}
			a.handler.Notify("Deleted user "+deleted, notifications.SeveritySuccess)
			return nil
		},
	}

	cmd.AddCommand(list, self, show,
		newSaveUserCommand(get, "add", "Create a user", false),
		newSaveUserCommand(get, "update", "Change the scope, admin or features of a user", true),
		del,
	)
	return cmd
}

// newSaveUserCommand builds users add and users update. On update only the
// flags given on the command line are sent.
func newSaveUserCommand(get func() *app, use, short string, update bool) *cobra.Command {
	var (
		scope    []string
		admin    bool
		features map[string]string
	)

	cmd := &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			var req schemas.UserRequest
			var err error
			if req.Features, err = parseFeatures(features); err != nil {
				return err
			}
			if !update || cmd.Flags().Changed("scope") {
				req.Scope = scope
			}
			if !update || cmd.Flags().Changed("admin") {
				req.Admin = &admin
			}

			save := a.client.AddUser
			if update {
				save = a.client.UpdateUser
			}
			user, err := save(cmd.Context(), args[0], req)
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringSliceVar(&scope, "scope", []string{"*"}, "repository scopes of the user")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin rights")
	cmd.Flags().StringToStringVar(&features, "feature", nil, "feature flags, as name=true|false")
	return cmd
}

func newKeysCommand(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the API keys of the current user",
	}

	var page, perPage int
	list := &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			meta, err := historyMeta(page, perPage, "")
			if err != nil {
				return err
			}
			keys, err := a.client.GetUserKeys(cmd.Context(), meta)
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), keys)
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page to load, starting at 1")
	list.Flags().IntVar(&perPage, "per-page", 0, "keys per page, defaults to scans.itemsPerPage")

	var req schemas.KeyRequest
	var expires string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an API key, the key is only shown once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			req.Name = args[0]
			if expires != "" {
				t, err := schemas.ParseTimestamp(expires)
				if err != nil {
					return err
				}
				req.Expires = schemas.NewTimestamp(t)
			}
			key, err := a.client.AddUserKey(cmd.Context(), req)
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), key)
		},
	}
	add.Flags().StringSliceVar(&req.Scope, "scope", []string{"*"}, "repository scopes of the key")
	add.Flags().BoolVar(&req.Admin, "admin", false, "create an admin key")
	add.Flags().StringVar(&expires, "expires", "", "expiry timestamp, RFC 3339")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			id, err := a.client.DeleteUserKey(cmd.Context(), args[0])
			if err != nil {
				return a.report(err)
			}
			a.handler.Notify("Deleted key "+id, notifications.SeveritySuccess)
			return nil
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

func newServicesCommand(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Manage the version control services linked to the current user",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List linked services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			services, err := a.client.GetUserServices(cmd.Context())
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), services)
		},
	}

	var params schemas.VcsServiceRequestParams
	link := &cobra.Command{
		Use:   "link <service>",
		Short: "Link a service account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			service, err := a.client.LinkUserService(cmd.Context(), schemas.VcsServiceRequest{
				Name:   args[0],
				Params: params,
			})
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), service)
		},
	}
	link.Flags().StringVar(&params.Username, "username", "", "account name on the service")
	link.Flags().StringVar(&params.AuthCode, "auth-code", "", "oauth code issued by the service")

	unlink := &cobra.Command{
		Use:   "unlink <service>",
		Short: "Unlink a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			name, err := a.client.UnlinkUserService(cmd.Context(), args[0])
			if err != nil {
				return a.report(err)
			}
			a.handler.Notify("Unlinked service "+name, notifications.SeveritySuccess)
			return nil
		},
	}

	cmd.AddCommand(list, link, unlink)
	return cmd
}

func newReposCommand(get func() *app) *cobra.Command {
	var (
		page, perPage int
		service, repo string
	)

	cmd := &cobra.Command{
		Use:   "repos",
		Short: "Search repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			meta, err := historyMeta(page, perPage, "")
			if err != nil {
				return err
			}
			meta.Filters = map[string]client.Filter{}
			if service != "" {
				meta.Filters["service"] = client.FilterValue(client.MatchExact, service)
			}
			if repo != "" {
				meta.Filters["repo"] = client.FilterValue(client.MatchIContains, repo)
			}
			repos, err := a.client.GetRepos(cmd.Context(), meta)
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), repos)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to load, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "repositories per page, defaults to scans.itemsPerPage")
	cmd.Flags().StringVar(&service, "service", "", "only list repositories of this service")
	cmd.Flags().StringVar(&repo, "repo", "", "only list repositories with a matching name")
	return cmd
}

func newStatusCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the maintenance status of the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			status, err := a.client.GetSystemStatus(cmd.Context())
			if err != nil {
				return a.report(err)
			}
			return a.printer(cmd.OutOrStdout(), status)
		},
	}
}
