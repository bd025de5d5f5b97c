// Package streamfmt converts between the abbreviated stream counts shown on
// playlist pages ("3.5K", "2.1M") and plain integers.
package streamfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var suffixes = []struct {
	letter     string
	multiplier float64
}{
	{"K", 1_000},
	{"M", 1_000_000},
	{"B", 1_000_000_000},
}

// ParseCount coerces page text like "4,238", "3.5K" or "2.1M" into an
// integer. It never fails: anything unparsable is 0, since the input is
// untrusted page text and a missing count should not kill a scrape.
func ParseCount(text string) int64 {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	upper := strings.ToUpper(text)

	for _, s := range suffixes {
		if !strings.Contains(upper, s.letter) {
			continue
		}
		prefix := strings.ReplaceAll(upper, s.letter, "")
		value, err := strconv.ParseFloat(prefix, 64)
		if err != nil {
			return 0
		}
		return int64(math.Round(value * s.multiplier))
	}

	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// FormatCount renders n the way the site abbreviates it, with one decimal
// place. Round-tripping through ParseCount is lossy on purpose.
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatGrouped renders n with thousands separators, e.g. 4238 -> "4,238".
// Used for the per-track lines of the report.
func FormatGrouped(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return sign + strings.Join(groups, ",")
}
