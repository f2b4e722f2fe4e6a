// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package schemas

const (
	// EnvVarPrefix is the prefix used for environment variables
	EnvVarPrefix = "ARTEMIS_"
)

const (
	EnvVarConfigPath = EnvVarPrefix + "CONFIG_PATH"
	EnvVarAPIURL     = EnvVarPrefix + "API_URL"
	EnvVarAPIKey     = EnvVarPrefix + "API_KEY" // #nosec G101
)
