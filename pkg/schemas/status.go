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
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScanStatus is the lifecycle status string reported by the Artemis API.
// The client never infers transitions, it only classifies what the
// server returned. See [ScanStatus.Phase].
type ScanStatus string

const (
	ScanStatusQueued     ScanStatus = "queued"
	ScanStatusProcessing ScanStatus = "processing"
	ScanStatusCompleted  ScanStatus = "completed"
	ScanStatusError      ScanStatus = "error"
	ScanStatusFailed     ScanStatus = "failed"
	ScanStatusTerminated ScanStatus = "terminated"

	// scanStatusRunningPrefix prefixes statuses such as "running plugin 3 of 12".
	scanStatusRunningPrefix = "running "
)

// Phase is the classification of a [ScanStatus].
type Phase uint8

const (
	// PhaseUnknown is used for any status string the client does not recognize.
	PhaseUnknown Phase = iota
	PhaseQueued
	PhaseProcessing
	// PhaseRunning is used for "running plugin <n> of <m>".
	PhaseRunning
	PhaseCompleted
	PhaseError
	PhaseFailed
	PhaseTerminated
)

const (
	PhaseUnknownString    = "Unknown"
	PhaseQueuedString     = "Queued"
	PhaseProcessingString = "Processing"
	PhaseRunningString    = "Running"
	PhaseCompletedString  = "Completed"
	PhaseErrorString      = "Error"
	PhaseFailedString     = "Failed"
	PhaseTerminatedString = "Terminated"
)

func (p Phase) String() string {
	switch p {
	case PhaseQueued:
		return PhaseQueuedString
	case PhaseProcessing:
		return PhaseProcessingString
	case PhaseRunning:
		return PhaseRunningString
	case PhaseCompleted:
		return PhaseCompletedString
	case PhaseError:
		return PhaseErrorString
	case PhaseFailed:
		return PhaseFailedString
	case PhaseTerminated:
		return PhaseTerminatedString
	case PhaseUnknown:
		fallthrough
	default:
		return PhaseUnknownString
	}
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p Phase) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

func (p *Phase) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	*p = phaseFromString(s)
	return nil
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = phaseFromString(s)
	return nil
}

func phaseFromString(s string) Phase {
	switch s {
	case PhaseQueuedString:
		return PhaseQueued
	case PhaseProcessingString:
		return PhaseProcessing
	case PhaseRunningString:
		return PhaseRunning
	case PhaseCompletedString:
		return PhaseCompleted
	case PhaseErrorString:
		return PhaseError
	case PhaseFailedString:
		return PhaseFailed
	case PhaseTerminatedString:
		return PhaseTerminated
	default:
		return PhaseUnknown
	}
}

// Phase classifies the status string.
func (s ScanStatus) Phase() Phase {
	switch s {
	case ScanStatusQueued:
		return PhaseQueued
	case ScanStatusProcessing:
		return PhaseProcessing
	case ScanStatusCompleted:
		return PhaseCompleted
	case ScanStatusError:
		return PhaseError
	case ScanStatusFailed:
		return PhaseFailed
	case ScanStatusTerminated:
		return PhaseTerminated
	}
	if strings.HasPrefix(string(s), scanStatusRunningPrefix) {
		return PhaseRunning
	}
	return PhaseUnknown
}

// IsTerminal reports whether the scan has stopped and its status will not change.
func (s ScanStatus) IsTerminal() bool {
	switch s.Phase() {
	case PhaseCompleted, PhaseError, PhaseFailed, PhaseTerminated:
		return true
	default:
		return false
	}
}

// InProgress reports whether the scan is queued, processing, or running a plugin.
func (s ScanStatus) InProgress() bool {
	switch s.Phase() {
	case PhaseQueued, PhaseProcessing, PhaseRunning:
		return true
	default:
		return false
	}
}

// HasDetail reports whether the server may have anything to return for a
// detail fetch. Only queued scans have nothing yet.
func (s ScanStatus) HasDetail() bool {
	return s != ScanStatusQueued
}

// PluginProgress parses "running plugin <n> of <m>". ok is false
// for any other status.
func (s ScanStatus) PluginProgress() (current, total int, ok bool) {
	if s.Phase() != PhaseRunning {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(string(s), "running plugin %d of %d", &current, &total); err != nil {
		return 0, 0, false
	}
	return current, total, true
}
