// Package strings parses the comma separated lists used for rights and brokers.
package strings

import (
	"slices"
	"strings"
)

// CleanList trims entries and drops blanks and repeats. Order is kept; an
// empty result is nil.
func CleanList(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// SplitList splits raw on commas and cleans the result.
func SplitList(raw string) []string {
	return CleanList(strings.Split(raw, ","))
}
