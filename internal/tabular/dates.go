package tabular

import (
	"strings"
	"time"
)

// DefaultDateLayouts are tried in order before the generic fallback.
var DefaultDateLayouts = []string{"20060102", "2006-01-02", "2006/01/02", "2006.01.02"}

// genericLayouts is the best-effort last resort for values none of the
// explicit layouts accepted.
var genericLayouts = []string{
	time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02 15:04:05",
	"2006/01/02 15:04:05", "2006-1-2", "2006/1/2", "2006.1.2", "20060102150405",
	"01/02/2006", "02/01/2006", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006", "2006년 1월 2일",
}

// NormalizeDate parses s with the first matching layout and returns the
// calendar date at midnight UTC. ok is false when nothing matched; that is a
// missing value, not an error.
func NormalizeDate(s string, layouts []string) (time.Time, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, false
	}
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	if t, ok := tryLayouts(v, layouts); ok {
		return t, true
	}
	// Integer dates read through a float column render as "20250115.0".
	if base, ok := strings.CutSuffix(v, ".0"); ok {
		if t, ok := tryLayouts(base, layouts); ok {
			return t, true
		}
	}
	return tryLayouts(v, genericLayouts)
}

func tryLayouts(v string, layouts []string) (time.Time, bool) {
	for _, l := range layouts {
		if t, err := time.Parse(l, v); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ParseDateColumn normalizes every value of col. Unparseable values come back
// as nil. If the table has rows and none of them parse, the column as a whole
// is rejected with DateColumnError.
func ParseDateColumn(t *Table, col string, layouts []string) ([]*time.Time, error) {
	out := make([]*time.Time, t.Len())
	parsed := 0
	for i, r := range t.Rows {
		if d, ok := NormalizeDate(r[col], layouts); ok {
			out[i] = &d
			parsed++
		}
	}
	if t.Len() > 0 && parsed == 0 {
		return out, &DateColumnError{Column: col}
	}
	return out, nil
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
