// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package schemas

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 15, 0, time.UTC)
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "utc offset", value: "2024-03-01T12:30:15+00:00", want: want},
		{name: "zulu", value: "2024-03-01T12:30:15Z", want: want},
		{name: "no offset is utc", value: "2024-03-01T12:30:15", want: want},
		{name: "no offset with fraction", value: "2024-03-01T12:30:15.250000", want: want.Add(250 * time.Millisecond)},
		{name: "space separated", value: "2024-03-01 12:30:15", want: want},
		{name: "other offset", value: "2024-03-01T14:30:15+02:00", want: want},
		{name: "garbage", value: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestTimestamp_JSON(t *testing.T) {
	type holder struct {
		At *Timestamp `json:"at"`
	}

	var h holder
	require.NoError(t, json.Unmarshal([]byte(`{"at":"2024-03-01T12:30:15"}`), &h))
	require.NotNil(t, h.At)
	assert.Equal(t, 12, h.At.Hour())

	out, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2024-03-01T12:30:15Z"}`, string(out))

	h = holder{}
	require.NoError(t, json.Unmarshal([]byte(`{"at":null}`), &h))
	assert.Nil(t, h.At)

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`""`), &ts))
	assert.True(t, ts.IsZero())
	out, err = json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}
