// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package schemas

type ErrorMsg = string

const (
	/* Standard error messages */

	// ErrUnknown is a generic error message used when the error type is not known.
	ErrUnknown ErrorMsg = "an unknown error occurred"
	// ErrUnexpectedFormat is returned when a response fails schema validation.
	ErrUnexpectedFormat ErrorMsg = "unexpected response format"
	// ErrNotFound is returned when the server responds with 404.
	ErrNotFound ErrorMsg = "not found"
	// ErrRequestCancelled is returned when a request was aborted on purpose.
	ErrRequestCancelled ErrorMsg = "request cancelled"
	ErrResourceNotFound ErrorMsg = "resource not found"

	/* Authentication errors */

	// ErrSessionExpired is returned when the API reports the session is no
	// longer authenticated.
	ErrSessionExpired ErrorMsg = "session expired, redirecting to login..."
	// ErrNotAuthorized is returned when the user requested something they
	// do not have access to.
	ErrNotAuthorized ErrorMsg = "not authorized"

	/* Status server errors */

	ErrUnauthorized                ErrorMsg = "unauthorized"
	ErrInvalidAuthenticationHeader ErrorMsg = "invalid authentication header"
	ErrInvalidTokenHeader          ErrorMsg = "invalid token"
	ErrInvalidParameter            ErrorMsg = "invalid parameter"

	/* Request errors */

	ErrVcsOrgRequired      ErrorMsg = "VCS/Org required"
	ErrRepoRequired        ErrorMsg = "repository required"
	ErrDataRequired        ErrorMsg = "data required"
	ErrNoCurrentScan       ErrorMsg = "no current scan"
	ErrInvalidScanID       ErrorMsg = "invalid scan identifier"
	ErrQueueScan           ErrorMsg = "unable to queue new scan"
	ErrGetScanHistory      ErrorMsg = "unable to get scan history"
	ErrGetScanByID         ErrorMsg = "unable to get scan by id"
	ErrGetSystemStatus     ErrorMsg = "unable to get system status"
	ErrGetUserKeys         ErrorMsg = "unable to get user keys"
	ErrAddUserKey          ErrorMsg = "unable to add user key"
	ErrDeleteUserKey       ErrorMsg = "unable to remove user key"
	ErrGetUserServices     ErrorMsg = "unable to get user services"
	ErrLinkUserService     ErrorMsg = "unable to link user service"
	ErrUnlinkUserService   ErrorMsg = "unable to unlink user service"
	ErrGetRepoSearchResult ErrorMsg = "unable to get repository search results"

	ErrEmailRequired            ErrorMsg = "email required"
	ErrGetUsers                 ErrorMsg = "unable to get users"
	ErrGetUserSelf              ErrorMsg = "unable to get current user details"
	ErrGetUserByID              ErrorMsg = "unable to get user details"
	ErrAddUser                  ErrorMsg = "unable to add user"
	ErrUpdateUser               ErrorMsg = "unable to update user"
	ErrDeleteUser               ErrorMsg = "unable to remove user"
	ErrHiddenFindingIDRequired  ErrorMsg = "hidden finding id required"
	ErrGetHiddenFindings        ErrorMsg = "unable to get repo hidden findings"
	ErrAddHiddenFinding         ErrorMsg = "unable to add hidden finding"
	ErrUpdateHiddenFinding      ErrorMsg = "unable to update hidden finding"
	ErrDeleteHiddenFinding      ErrorMsg = "unable to remove hidden finding"
	ErrComponentNameRequired    ErrorMsg = "component name required"
	ErrComponentVersionRequired ErrorMsg = "component version required"
	ErrGetComponents            ErrorMsg = "unable to get component search results"
	ErrGetComponentRepos        ErrorMsg = "unable to get repositories for component"
	ErrVulnerabilityIDRequired  ErrorMsg = "vulnerability id required"
	ErrGetVulnerabilities       ErrorMsg = "unable to get vulnerability search results"
	ErrGetVulnerabilityRepos    ErrorMsg = "unable to get repositories for vulnerability"
)

const (
	// APIKeyHeader is the header used to pass an Artemis API key in requests.
	APIKeyHeader = "x-api-key"
)

// PagedResponse is the envelope the Artemis API uses for every list endpoint.
type PagedResponse[T any] struct {
	Results  []T     `json:"results"  yaml:"results"  validate:"required,dive"`
	Count    int     `json:"count"    yaml:"count"    validate:"gte=0"`
	Next     *string `json:"next"     yaml:"next"`
	Previous *string `json:"previous" yaml:"previous"`
}

// APIResponse is the envelope returned by the local status server.
type APIResponse[T any] struct {
	Success  bool     `json:"success"            yaml:"success"`
	Error    ErrorMsg `json:"error,omitempty"    yaml:"error,omitempty"`
	Response T        `json:"response,omitempty" yaml:"response,omitempty"`
}

type APIVersionResponse struct {
	Version   string `json:"version"             yaml:"version"`
	BuildTime string `json:"buildTime,omitempty" yaml:"buildTime,omitempty"`
	Commit    string `json:"commit,omitempty"    yaml:"commit,omitempty"`
}
