// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.


package schemas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// HiddenFindingType selects which fields of a [HiddenFindingValue] apply.
type HiddenFindingType string

const (
	HiddenFindingConfiguration    HiddenFindingType = "configuration"
	HiddenFindingStaticAnalysis   HiddenFindingType = "static_analysis"
	HiddenFindingSecret           HiddenFindingType = "secret"
	HiddenFindingSecretRaw        HiddenFindingType = "secret_raw"
	HiddenFindingVulnerability    HiddenFindingType = "vulnerability"
	HiddenFindingVulnerabilityRaw HiddenFindingType = "vulnerability_raw"
)

// HiddenFindingTypes lists every type accepted by the API.
var HiddenFindingTypes = []HiddenFindingType{
	HiddenFindingVulnerability,
	HiddenFindingVulnerabilityRaw,
	HiddenFindingSecret,
	HiddenFindingSecretRaw,
	HiddenFindingStaticAnalysis,
	HiddenFindingConfiguration,
}

// HiddenFindingValue identifies the hidden result. Which fields are set
// depends on the finding type.
type HiddenFindingValue struct {
	ID        string   `json:"id,omitempty"        yaml:"id,omitempty"`
	Filename  string   `json:"filename,omitempty"  yaml:"filename,omitempty"`
	Line      *int     `json:"line,omitempty"      yaml:"line,omitempty"`
	Type      string   `json:"type,omitempty"      yaml:"type,omitempty"`
	Commit    string   `json:"commit,omitempty"    yaml:"commit,omitempty"`
	Value     string   `json:"value,omitempty"     yaml:"value,omitempty"`
	Source    string   `json:"source,omitempty"    yaml:"source,omitempty"`
	Component string   `json:"component,omitempty" yaml:"component,omitempty"`
	Validity  string   `json:"validity,omitempty"  yaml:"validity,omitempty"`
	Severity  Severity `json:"severity,omitempty"  yaml:"severity,omitempty" validate:"omitempty,oneof=critical high medium low negligible"`
}

// HiddenFinding suppresses a single result in the scans of a repository.
type HiddenFinding struct {
	ID        string             `json:"id,omitempty" yaml:"id,omitempty"`
	Type      HiddenFindingType  `json:"type"         yaml:"type"         validate:"oneof=configuration static_analysis secret secret_raw vulnerability vulnerability_raw"`
	Value     HiddenFindingValue `json:"value"        yaml:"value"`
	Expires   *Timestamp         `json:"expires"      yaml:"expires"`
	Reason    string             `json:"reason"       yaml:"reason"`
	CreatedBy *string            `json:"created_by"   yaml:"created_by"`
	Created   *Timestamp         `json:"created"      yaml:"created"`
	UpdatedBy *string            `json:"updated_by"   yaml:"updated_by"`
	Updated   *Timestamp         `json:"updated"      yaml:"updated"`
}

// CheckValue reports the value fields the finding type requires but
// that are missing.
func (f HiddenFinding) CheckValue() error {
	v := f.Value
	var merr *multierror.Error
	require := func(ok bool, field string) {
		if !ok {
			merr = multierror.Append(merr, fmt.Errorf("%s finding requires value.%s", f.Type, field))
		}
	}

	switch f.Type {
	case HiddenFindingConfiguration:
		require(v.ID != "", "id")
	case HiddenFindingStaticAnalysis:
		require(v.Filename != "", "filename")
		require(v.Line != nil && *v.Line > 0, "line")
		require(v.Type != "", "type")
	case HiddenFindingSecret:
		require(v.Filename != "", "filename")
		require(v.Line != nil && *v.Line >= 0, "line")
		require(v.Commit != "", "commit")
	case HiddenFindingSecretRaw:
		require(v.Value != "", "value")
	case HiddenFindingVulnerability:
		require(v.ID != "", "id")
		require(v.Source != "", "source")
		require(v.Component != "", "component")
	case HiddenFindingVulnerabilityRaw:
		require(v.ID != "", "id")
	default:
		merr = multierror.Append(merr, fmt.Errorf("unknown hidden finding type %q", f.Type))
	}
	if merr != nil {
		merr.ErrorFormat = joinErrors
	}
	return merr.ErrorOrNil()
}

func joinErrors(es []error) string {
	msgs := make([]string, len(es))
	for i, err := range es {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, ", ")
}

// HiddenFindings decodes either a single finding or a list of them. The
// add endpoint returns one or the other.
type HiddenFindings []HiddenFinding

func (h *HiddenFindings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*h = HiddenFindings{}
		return nil
	case len(data) > 0 && data[0] == '{':
		var one HiddenFinding
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*h = HiddenFindings{one}
		return nil
	default:
		var many []HiddenFinding
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		if many == nil {
			many = []HiddenFinding{}
		}
		*h = many
		return nil
	}
}
