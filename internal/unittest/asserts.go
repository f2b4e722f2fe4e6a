// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package unittest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertEqualJSON compares the JSON encoding of two values.
// Use it for values whose pointers or timestamps make [assert.Equal] too strict.
func AssertEqualJSON(t *testing.T, expected, actual any) {
	t.Helper()
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual value: %v", err)
	}

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected value: %v", err)
	}

	assert.JSONEq(t, string(expectedJSON), string(actualJSON), "values are not equal")
}
