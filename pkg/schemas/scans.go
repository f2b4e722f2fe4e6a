// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package schemas

import (
	"maps"
	"slices"
	"strings"
)

// ScanID is the composite identifier of a scan.
type ScanID struct {
	Service string `json:"service" yaml:"service"`
	Repo    string `json:"repo"    yaml:"repo"`
	ScanID  string `json:"scan_id" yaml:"scan_id"`
}

// Key returns the composite key "service/repo/scan_id", which is
// also the API path of the scan.
func (id ScanID) Key() string {
	return strings.Join([]string{id.Service, id.Repo, id.ScanID}, "/")
}

func (id ScanID) String() string {
	return id.Key()
}

// Valid reports whether every part of the identifier is set.
func (id ScanID) Valid() bool {
	return id.Service != "" && id.Repo != "" && id.ScanID != ""
}

// ParseScanID parses "service/repo.../scan_id". The repo part may contain
// any number of path segments (org/repo, group/subgroup/repo...).
func ParseScanID(s string) (ScanID, bool) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) < 3 {
		return ScanID{}, false
	}
	id := ScanID{
		Service: parts[0],
		Repo:    strings.Join(parts[1:len(parts)-1], "/"),
		ScanID:  parts[len(parts)-1],
	}
	return id, id.Valid()
}

type ScanTimestamps struct {
	Queued *Timestamp `json:"queued" yaml:"queued"`
	Start  *Timestamp `json:"start"  yaml:"start"`
	End    *Timestamp `json:"end"    yaml:"end"`
}

type ScanStatusDetail struct {
	PluginName      *string    `json:"plugin_name"       yaml:"plugin_name"`
	PluginStartTime *Timestamp `json:"plugin_start_time" yaml:"plugin_start_time"`
	CurrentPlugin   *int       `json:"current_plugin"    yaml:"current_plugin"`
	TotalPlugins    *int       `json:"total_plugins"     yaml:"total_plugins"`
}

type ScanCallback struct {
	URL      *string `json:"url,omitempty"       yaml:"url,omitempty"`
	ClientID *string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
}

// ScanOptions are the options a scan was requested with. The same structure
// is posted when queueing a scan.
type ScanOptions struct {
	Branch        string        `json:"branch,omitempty"         yaml:"branch,omitempty"`
	Categories    []Category    `json:"categories,omitempty"     yaml:"categories,omitempty"`
	Plugins       []string      `json:"plugins,omitempty"        yaml:"plugins,omitempty"`
	Depth         *int          `json:"depth,omitempty"          yaml:"depth,omitempty"`
	IncludeDev    *bool         `json:"include_dev,omitempty"    yaml:"include_dev,omitempty"`
	Callback      *ScanCallback `json:"callback,omitempty"       yaml:"callback,omitempty"`
	BatchPriority *bool         `json:"batch_priority,omitempty" yaml:"batch_priority,omitempty"`
	IncludePaths  []string      `json:"include_paths,omitempty"  yaml:"include_paths,omitempty"`
	ExcludePaths  []string      `json:"exclude_paths,omitempty"  yaml:"exclude_paths,omitempty"`
}

// ScanHistory is a row of the scan history list.
type ScanHistory struct {
	ScanID       string           `json:"scan_id,omitempty" yaml:"scan_id,omitempty"`
	Repo         string           `json:"repo"              yaml:"repo"              validate:"required"`
	Service      string           `json:"service"           yaml:"service"           validate:"required"`
	Branch       *string          `json:"branch"            yaml:"branch"`
	Timestamps   ScanTimestamps   `json:"timestamps"        yaml:"timestamps"`
	InitiatedBy  *string          `json:"initiated_by"      yaml:"initiated_by"`
	Status       ScanStatus       `json:"status"            yaml:"status"            validate:"required"`
	StatusDetail ScanStatusDetail `json:"status_detail"     yaml:"status_detail"`
	ScanOptions  ScanOptions      `json:"scan_options"      yaml:"scan_options"`
}

// ID returns the composite identifier of the scan.
func (s ScanHistory) ID() ScanID {
	return ScanID{Service: s.Service, Repo: s.Repo, ScanID: s.ScanID}
}

type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeverityHigh       Severity = "high"
	SeverityMedium     Severity = "medium"
	SeverityLow        Severity = "low"
	SeverityNegligible Severity = "negligible"
	// SeverityNone is used by plugins that do not rate findings.
	SeverityNone Severity = ""
)

// SeverityLevels counts findings per severity. A nil map means the category
// was not run.
type SeverityLevels map[Severity]int

// Total returns the sum of all severity counts.
func (s SeverityLevels) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

type SummaryInventory struct {
	TechnologyDiscovery *int `json:"technology_discovery,omitempty" yaml:"technology_discovery,omitempty"`
	BaseImages          *int `json:"base_images,omitempty"          yaml:"base_images,omitempty"`
}

// ResultsSummary holds finding counts per category. Any category
// may be nil when it was not part of the scan.
type ResultsSummary struct {
	Vulnerabilities SeverityLevels    `json:"vulnerabilities" yaml:"vulnerabilities"`
	Secrets         *int              `json:"secrets"         yaml:"secrets"`
	StaticAnalysis  SeverityLevels    `json:"static_analysis" yaml:"static_analysis"`
	Inventory       *SummaryInventory `json:"inventory"       yaml:"inventory"`
}

// Clone returns a copy of the summary that shares no memory with s.
func (s *ResultsSummary) Clone() *ResultsSummary {
	if s == nil {
		return nil
	}
	c := &ResultsSummary{
		Vulnerabilities: maps.Clone(s.Vulnerabilities),
		StaticAnalysis:  maps.Clone(s.StaticAnalysis),
		Secrets:         clonePtr(s.Secrets),
	}
	if s.Inventory != nil {
		c.Inventory = &SummaryInventory{
			TechnologyDiscovery: clonePtr(s.Inventory.TechnologyDiscovery),
			BaseImages:          clonePtr(s.Inventory.BaseImages),
		}
	}
	return c
}

// ScanMessages holds plugin errors, alerts or debug output, keyed by plugin.
// Values are a string or a list of strings.
type ScanMessages map[string]any

// ScanResults holds the full results of a scan, keyed by category. It is only
// populated when the report is requested without format=summary.
type ScanResults map[string]any

// AnalysisReport is a scan with its results. History rows are a subset of it.
type AnalysisReport struct {
	ScanHistory `yaml:",inline"`

	EngineID            *string         `json:"engine_id,omitempty"            yaml:"engine_id,omitempty"`
	ApplicationMetadata map[string]any  `json:"application_metadata,omitempty" yaml:"application_metadata,omitempty"`
	Success             *bool           `json:"success,omitempty"              yaml:"success,omitempty"`
	Truncated           *bool           `json:"truncated,omitempty"            yaml:"truncated,omitempty"`
	Errors              ScanMessages    `json:"errors,omitempty"               yaml:"errors,omitempty"`
	Alerts              ScanMessages    `json:"alerts,omitempty"               yaml:"alerts,omitempty"`
	Debug               ScanMessages    `json:"debug,omitempty"                yaml:"debug,omitempty"`
	ResultsSummary      *ResultsSummary `json:"results_summary,omitempty"      yaml:"results_summary,omitempty"`
	Results             ScanResults     `json:"results,omitempty"              yaml:"results,omitempty"`
}

// HasSummary reports whether the detail fields fetched separately from the
// history row (success and results_summary) are present.
func (r AnalysisReport) HasSummary() bool {
	return r.Success != nil && r.ResultsSummary != nil
}

// Clone returns a copy of the report. Full results are shared and
// must be treated as read-only.
func (r AnalysisReport) Clone() AnalysisReport {
	c := r
	c.Branch = clonePtr(r.Branch)
	c.InitiatedBy = clonePtr(r.InitiatedBy)
	c.Timestamps = ScanTimestamps{
		Queued: clonePtr(r.Timestamps.Queued),
		Start:  clonePtr(r.Timestamps.Start),
		End:    clonePtr(r.Timestamps.End),
	}
	c.StatusDetail = ScanStatusDetail{
		PluginName:      clonePtr(r.StatusDetail.PluginName),
		PluginStartTime: clonePtr(r.StatusDetail.PluginStartTime),
		CurrentPlugin:   clonePtr(r.StatusDetail.CurrentPlugin),
		TotalPlugins:    clonePtr(r.StatusDetail.TotalPlugins),
	}
	c.ScanOptions.Categories = slices.Clone(r.ScanOptions.Categories)
	c.ScanOptions.Plugins = slices.Clone(r.ScanOptions.Plugins)
	c.ScanOptions.IncludePaths = slices.Clone(r.ScanOptions.IncludePaths)
	c.ScanOptions.ExcludePaths = slices.Clone(r.ScanOptions.ExcludePaths)
	c.EngineID = clonePtr(r.EngineID)
	c.ApplicationMetadata = maps.Clone(r.ApplicationMetadata)
	c.Success = clonePtr(r.Success)
	c.Truncated = clonePtr(r.Truncated)
	c.Errors = maps.Clone(r.Errors)
	c.Alerts = maps.Clone(r.Alerts)
	c.Debug = maps.Clone(r.Debug)
	c.ResultsSummary = r.ResultsSummary.Clone()
	return c
}

// ScanHistoryResponse is a page of scan history.
type ScanHistoryResponse = PagedResponse[AnalysisReport]

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
