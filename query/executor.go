// Package query implements the local query executor: a pure function that
// filters, searches, sorts, and paginates an in-memory slice of records.
// The entity manager runs it against cached snapshots so small collections
// never round-trip to the backend for derived views.
package query

import (
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/goliatone/go-entity-manager/storage"
)

// Comparison operator keys accepted inside a filter value object.
const (
	OpGT  = "$gt"
	OpGTE = "$gte"
	OpLT  = "$lt"
	OpLTE = "$lte"
	OpIn  = "$in"
)

// Execute filters, searches, sorts, and paginates items according to
// params. searchFields restricts text search to the named top-level
// fields; when empty, every string-valued field is searched. The input
// slice is never mutated. The returned total counts matches before
// pagination.
func Execute(items []storage.Record, params storage.ListParams, searchFields []string) ([]storage.Record, int) {
	out := make([]storage.Record, 0, len(items))
	for _, rec := range items {
		if !matchesFilters(rec, params.Filters) {
			continue
		}
		if !matchesSearch(rec, params.Search, searchFields) {
			continue
		}
		out = append(out, rec)
	}

	if params.SortBy != "" {
		sortRecords(out, params.SortBy, strings.EqualFold(params.SortOrder, "desc"))
	}

	total := len(out)
	return paginate(out, params.Page, params.PageSize), total
}

// matchesFilters applies every filter with logical AND. Nil and empty
// filter values are ignored rather than applied.
func matchesFilters(rec storage.Record, filters map[string]any) bool {
	for key, want := range filters {
		if isEmptyFilterValue(want) {
			continue
		}
		got, ok := rec[key]
		switch fv := want.(type) {
		case map[string]any:
			if !matchesOperators(got, ok, fv) {
				return false
			}
		case []any:
			if !ok || !containsValue(fv, got) {
				return false
			}
		case []string:
			anyVals := make([]any, len(fv))
			for i, s := range fv {
				anyVals[i] = s
			}
			if !ok || !containsValue(anyVals, got) {
				return false
			}
		default:
			if !ok || compareValues(got, want) != 0 {
				return false
			}
		}
	}
	return true
}

// matchesOperators evaluates a {$op: operand} filter object. Every
// operator present must hold.
func matchesOperators(got any, present bool, ops map[string]any) bool {
	for op, operand := range ops {
		if isEmptyFilterValue(operand) {
			continue
		}
		if !present {
			return false
		}
		switch op {
		case OpGT:
			if compareValues(got, operand) <= 0 {
				return false
			}
		case OpGTE:
			if compareValues(got, operand) < 0 {
				return false
			}
		case OpLT:
			if compareValues(got, operand) >= 0 {
				return false
			}
		case OpLTE:
			if compareValues(got, operand) > 0 {
				return false
			}
		case OpIn:
			vals, ok := operand.([]any)
			if !ok {
				if strs, sok := operand.([]string); sok {
					vals = make([]any, len(strs))
					for i, s := range strs {
						vals[i] = s
					}
				} else {
					// Single operand degrades to equality.
					vals = []any{operand}
				}
			}
			if !containsValue(vals, got) {
				return false
			}
		default:
			// Unknown operator keys never match anything; a typo should
			// surface as an empty result, not a silent full scan.
			return false
		}
	}
	return true
}

// matchesSearch does a case-insensitive substring match over the allowed
// fields.
func matchesSearch(rec storage.Record, search string, fields []string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)

	if len(fields) > 0 {
		for _, f := range fields {
			if v, ok := rec[f]; ok {
				if strings.Contains(strings.ToLower(cast.ToString(v)), needle) {
					return true
				}
			}
		}
		return false
	}

	for _, v := range rec {
		if s, ok := v.(string); ok {
			if strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
	}
	return false
}

// sortRecords orders records by the named field. The sort is stable so
// equal-key records retain their relative input order.
func sortRecords(items []storage.Record, field string, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		c := compareValues(items[i][field], items[j][field])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func paginate(items []storage.Record, page, pageSize int) []storage.Record {
	if pageSize <= 0 {
		return items
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []storage.Record{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// compareValues orders two record values: numerically when both coerce to
// float64, lexically otherwise. Returns -1, 0, or 1.
func compareValues(a, b any) int {
	af, aerr := cast.ToFloat64E(a)
	bf, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, bs := cast.ToString(a), cast.ToString(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func containsValue(vals []any, got any) bool {
	for _, v := range vals {
		if compareValues(got, v) == 0 {
			return true
		}
	}
	return false
}

func isEmptyFilterValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok && s == "" {
		return true
	}
	if vs, ok := v.([]any); ok && len(vs) == 0 {
		return true
	}
	if vs, ok := v.([]string); ok && len(vs) == 0 {
		return true
	}
	return false
}
