package storage

import "github.com/spf13/cast"

// DefaultIDField is the record field treated as identity when a manager
// does not configure its own.
const DefaultIDField = "id"

// Record is an opaque field-name to value mapping. The core assumes no
// schema beyond one field acting as identity.
type Record map[string]any

// ID returns the string form of the record's identity field.
func (r Record) ID(idField string) string {
	if r == nil {
		return ""
	}
	if idField == "" {
		idField = DefaultIDField
	}
	return cast.ToString(r[idField])
}

// Clone returns a shallow copy of the record. Cached records are cloned
// on every read so callers never alias cache state.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CloneRecords copies a slice of records, cloning each element.
func CloneRecords(items []Record) []Record {
	if items == nil {
		return nil
	}
	out := make([]Record, len(items))
	for i, r := range items {
		out[i] = r.Clone()
	}
	return out
}
