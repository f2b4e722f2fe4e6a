// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package unittest

import "math/rand/v2"

type CharSet string

const (
	CharSetAlphaNumeric CharSet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CharSetSpecial holds characters that are invalid in ids and tokens.
	CharSetSpecial CharSet = "!@#$%^&*()_+-=[]{}|;:',.<>?/"
)

// GenerateRandStr returns a random string of strLen characters of cs.
// It is not suitable for secrets.
func GenerateRandStr(cs CharSet, strLen int) string {
	b := make([]byte, strLen)
	for i := range b {
		b[i] = cs[rand.IntN(len(cs))] // #nosec G404
	}
	return string(b)
}
