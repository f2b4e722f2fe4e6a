// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package config

import (
	"slices"
	"strings"
)

const (
	EnvProduction  = "production"
	EnvStaging     = "staging"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// IsEnvironmentIn reports whether the configured environment is one of envs.
func IsEnvironmentIn(envs ...string) bool {
	return slices.Contains(envs, strings.ToLower(State.Environment))
}
