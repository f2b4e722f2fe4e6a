// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package schemas

// Key is an API key owned by the current user.
type Key struct {
	ID       string          `json:"id"        yaml:"id"        validate:"required"`
	Name     string          `json:"name"      yaml:"name"      validate:"required"`
	Scope    []string        `json:"scope"     yaml:"scope"     validate:"required"`
	Admin    bool            `json:"admin"     yaml:"admin"`
	Features map[string]bool `json:"features"  yaml:"features"`
	Created  *Timestamp      `json:"created"   yaml:"created"`
	Expires  *Timestamp      `json:"expires"   yaml:"expires"`
	LastUsed *Timestamp      `json:"last_used" yaml:"last_used"`
}

type KeysResponse = PagedResponse[Key]

// KeyRequest is the body posted to create a key.
type KeyRequest struct {
	Name     string          `json:"name"               yaml:"name"`
	Scope    []string        `json:"scope"              yaml:"scope"`
	Admin    bool            `json:"admin,omitempty"    yaml:"admin,omitempty"`
	Features map[string]bool `json:"features,omitempty" yaml:"features,omitempty"`
	Expires  *Timestamp      `json:"expires,omitempty"  yaml:"expires,omitempty"`
}

// KeyResponse carries the new key value. It is only returned once.
type KeyResponse struct {
	Key string `json:"key" yaml:"key" validate:"required"`
}

// VcsService is a version control service linked to the current user.
type VcsService struct {
	Name     string     `json:"name"     yaml:"name"     validate:"required"`
	Username string     `json:"username" yaml:"username" validate:"required"`
	Linked   *Timestamp `json:"linked"   yaml:"linked"`
}

// VcsServiceRequestParams identifies the account on the service. Either
// Username or AuthCode is required.
type VcsServiceRequestParams struct {
	Username string `json:"username,omitempty"  yaml:"username,omitempty"`
	AuthCode string `json:"auth_code,omitempty" yaml:"auth_code,omitempty"`
}

// VcsServiceRequest links a service for the current user.
type VcsServiceRequest struct {
	Name   string                  `json:"name"   yaml:"name"`
	Params VcsServiceRequestParams `json:"params" yaml:"params"`
}

type Maintenance struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Message string `json:"message" yaml:"message"`
}

// SystemStatus is returned by the system status endpoint.
type SystemStatus struct {
	Maintenance Maintenance `json:"maintenance" yaml:"maintenance"`
}

// Risk is the repository risk level computed by the server.
type Risk string

const (
	RiskPriority Risk = "priority"
	RiskCritical Risk = "critical"
	RiskHigh     Risk = "high"
	RiskModerate Risk = "moderate"
	RiskLow      Risk = "low"
)

type SearchScan struct {
	Created *Timestamp `json:"created" yaml:"created"`
	ScanID  string     `json:"scan_id" yaml:"scan_id"`
}

// SearchRepo is a repository search result.
type SearchRepo struct {
	Service             string         `json:"service"              yaml:"service"              validate:"required"`
	Repo                string         `json:"repo"                 yaml:"repo"                 validate:"required"`
	Risk                *Risk          `json:"risk"                 yaml:"risk"                 validate:"omitnil,oneof=priority critical high moderate low"`
	Scan                *SearchScan    `json:"scan"                 yaml:"scan"`
	QualifiedScan       *SearchScan    `json:"qualified_scan"       yaml:"qualified_scan"`
	ApplicationMetadata map[string]any `json:"application_metadata" yaml:"application_metadata"`
}

type SearchReposResponse = PagedResponse[SearchRepo]

// User is an Artemis user account. The API returns no id for the current
// user, the client sets it to "self".
type User struct {
	ID        string          `json:"id,omitempty" yaml:"id,omitempty"`
	Email     string          `json:"email"        yaml:"email"        validate:"required"`
	Admin     bool            `json:"admin"        yaml:"admin"`
	Scope     []string        `json:"scope"        yaml:"scope"        validate:"required"`
	Features  map[string]bool `json:"features"     yaml:"features"`
	LastLogin *Timestamp      `json:"last_login"   yaml:"last_login"`
	ScanOrgs  []string        `json:"scan_orgs"    yaml:"scan_orgs"`
}

type UsersResponse = PagedResponse[User]

// UserRequest is the body sent to add or update a user. Nil fields are
// left unchanged on update.
type UserRequest struct {
	Admin    *bool           `json:"admin,omitempty"    yaml:"admin,omitempty"`
	Scope    []string        `json:"scope,omitempty"    yaml:"scope,omitempty"`
	Features map[string]bool `json:"features,omitempty" yaml:"features,omitempty"`
}
