// Package strings provides slice helpers for operator-supplied lists.
package strings

import (
	"strings"
)

// Dedupe passes every value through normalize and keeps the first occurrence
// of each non-empty result. Order is preserved. A nil normalize trims space.
//
//	Dedupe([]string{"PNG", ".png", " jpg"}, Extension)
//	// []string{".png", ".jpg"}
func Dedupe(values []string, normalize func(string) string) []string {
	if normalize == nil {
		normalize = strings.TrimSpace
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Extension lowercases a file extension and gives it a leading dot.
func Extension(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimLeft(s, ".")
	if s == "" {
		return ""
	}
	return "." + s
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return Dedupe(strings.Split(s, ","), nil)
}
