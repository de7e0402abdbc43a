// Package strings holds small helpers for list-valued configuration.
package strings

import "strings"

// DedupeAndTrim trims each element and drops blanks and repeats, keeping the
// first occurrence order. Comma-separated env values such as broker lists
// pass through it.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
