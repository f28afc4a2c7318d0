// Package dates canonicalizes locale-formatted dates printed on identity
// documents. Output is YYYYMMDD, or YYYYMMDD~YYYYMMDD for validity ranges where
// either side may be open.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RangeSeparator joins the two sides of a canonical range.
const RangeSeparator = "~"

// datePattern finds a 19xx/20xx year followed by month and day. Separators are
// dots, dashes, slashes, spaces and the Korean year/month markers.
var datePattern = regexp.MustCompile(`((?:19|20)\d{2})[.\-/\s년]*(\d{1,2})[.\-/\s월]*(\d{1,2})`)

// Normalize returns the canonical form of s, or "" when s holds no date. A
// leading or trailing "~" marks an open range end.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if start, end, ok := strings.Cut(s, RangeSeparator); ok {
		from, to := single(start), single(end)
		if from == "" && to == "" {
			return ""
		}
		return from + RangeSeparator + to
	}

	found := find(s, 2)
	switch len(found) {
	case 0:
		return ""
	case 1:
		return found[0]
	default:
		return found[0] + RangeSeparator + found[1]
	}
}

// single returns the first date in s.
func single(s string) string {
	found := find(s, 1)
	if len(found) == 0 {
		return ""
	}
	return found[0]
}

func find(s string, limit int) []string {
	var out []string
	for _, m := range datePattern.FindAllStringSubmatch(s, -1) {
		canonical, ok := canonicalize(m[1], m[2], m[3])
		if !ok {
			continue
		}
		out = append(out, canonical)
		if len(out) == limit {
			break
		}
	}
	return out
}

func canonicalize(year, month, day string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d%02d%02d", y, m, d), true
}
