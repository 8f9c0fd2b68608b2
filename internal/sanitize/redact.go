package sanitize

import (
	"fmt"

	"github.com/redleaf-labs/hopper/internal/model"
)

// NormalizeFilters coerces configured filter entries to their string form.
// Filters are matched by string equality against key names, so non-string
// entries (symbols, numbers, Stringers) are tolerated rather than rejected.
func NormalizeFilters(entries []any) []string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprint(e))
	}
	return out
}

// Redact replaces, in place, the value of every key whose name exactly
// matches a filter with the model.Filtered sentinel, recursing into nested
// mappings. Sequences are not descended into: a sensitive key inside a
// slice of maps survives redaction. That asymmetry is a long-standing
// quirk of the wire format consumers have come to rely on, so it is kept.
//
// Redact runs after Clean, so it only ever sees map[string]any values.
func Redact(m map[string]any, filters []string) {
	if len(m) == 0 || len(filters) == 0 {
		return
	}
	for k, v := range m {
		if matchesFilter(k, filters) {
			m[k] = model.Filtered
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			Redact(nested, filters)
		}
	}
}

func matchesFilter(key string, filters []string) bool {
	for _, f := range filters {
		if key == f {
			return true
		}
	}
	return false
}
