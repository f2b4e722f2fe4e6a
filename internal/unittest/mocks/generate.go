// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package mocks contains the generated mocks for the unit tests. Mocks of
// interfaces defined in the codebase are generated next to the interface
// with a go:generate directive and written to mocks/pkg/<package>, e.g.
// [github.com/crashappsec/artemis/internal/unittest/mocks/pkg/scans].
package mocks

//go:generate go generate ../../../pkg/...
