// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

package client

import (
	"net/url"
	"strconv"
	"strings"
)

// Match selects how a [Filter] is applied to a field.
type Match string

const (
	// MatchIContains matches values containing the filter, ignoring case.
	// It is used when no match is given.
	MatchIContains Match = "icontains"
	MatchContains  Match = "contains"
	// MatchExact matches any of the filter values exactly.
	MatchExact Match = "exact"
	MatchGT    Match = "gt"
	MatchLT    Match = "lt"
	// MatchBetween requires two values, the lower and upper bound.
	MatchBetween Match = "bt"
	// MatchNull matches on whether the field is null. The value is "true" or "false".
	MatchNull Match = "null"
)

// Filter is a filter applied to a single field.
type Filter struct {
	Match  Match
	Values []string
}

// FilterValue returns a [Filter] for a single value.
func FilterValue(match Match, value string) Filter {
	return Filter{Match: match, Values: []string{value}}
}

// RequestMeta holds paging, filtering and ordering of a list request.
type RequestMeta struct {
	// CurrentPage is zero based.
	CurrentPage  int
	ItemsPerPage int
	Filters      map[string]Filter
	OrderBy      string
}

// Query encodes the metadata as query parameters. Filters without a
// value are skipped.
func (m *RequestMeta) Query() url.Values {
	params := url.Values{}
	if m == nil {
		return params
	}

	if m.ItemsPerPage > 0 {
		params.Add("limit", strconv.Itoa(m.ItemsPerPage))
		if m.CurrentPage > 0 {
			params.Add("offset", strconv.Itoa(m.CurrentPage*m.ItemsPerPage))
		}
	}

	for field, filter := range m.Filters {
		if len(filter.Values) == 0 || filter.Values[0] == "" {
			continue
		}
		first := filter.Values[0]
		switch filter.Match {
		case MatchExact:
			for _, v := range filter.Values {
				params.Add(field, v)
			}
		case MatchGT:
			params.Add(field+"__gt", first)
		case MatchLT:
			params.Add(field+"__lt", first)
		case MatchBetween:
			if len(filter.Values) > 1 {
				params.Add(field+"__gt", filter.Values[0])
				params.Add(field+"__lt", filter.Values[1])
			}
		case MatchNull:
			params.Add(field+"__isnull", first)
		case MatchContains:
			params.Add(field+"__contains", first)
		default:
			params.Add(field+"__icontains", first)
		}
	}

	if m.OrderBy != "" {
		params.Add("order_by", m.OrderBy)
	}
	return params
}

// escapePath escapes every segment of p, keeping the separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func buildURL(host, path string, meta *RequestMeta) string {
	requestURL := strings.TrimSuffix(host, "/") + "/" + strings.TrimPrefix(path, "/")
	if query := meta.Query().Encode(); query != "" {
		requestURL += "?" + query
	}
	return requestURL
}
