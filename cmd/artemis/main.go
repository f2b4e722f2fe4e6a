// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Command line client for the Artemis API.
// It queues scans, loads scan history and keeps reloading it while scans
// are in flight, and can serve what it loaded on a local status server.
package main

import (
	"os"

	"github.com/crashappsec/artemis/cmd/artemis/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
