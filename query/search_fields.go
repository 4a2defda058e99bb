package query

import (
	"strings"

	"github.com/goliatone/go-entity-manager/logging"
)

// ParseSearchFields filters an adapter's searchable-field declaration down
// to the names the executor can resolve. Dotted "parent.field" entries are
// parsed but skipped for now: the executor only resolves top-level fields,
// so they produce a non-fatal warning and search proceeds with the rest.
func ParseSearchFields(fields []string, log logging.Logger) []string {
	if len(fields) == 0 {
		return nil
	}
	if log == nil {
		log = logging.Nop{}
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(f)
		if name == "" {
			continue
		}
		if strings.Contains(name, ".") {
			log.Warn("search field references a parent path and is not yet resolved, skipping", logging.Fields{
				"field": name,
			})
			continue
		}
		out = append(out, name)
	}
	return out
}
