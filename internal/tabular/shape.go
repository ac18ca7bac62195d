package tabular

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ParseNumber parses a human-written number: surrounding spaces, a percent
// sign, and thousands separators are tolerated. When both ',' and '.' appear
// the last one is the decimal separator; a lone ',' followed by exactly three
// digits is read as a thousands separator ("1,234"), otherwise as a decimal one.
// NaN and infinities are not numbers here.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	dec := '.'
	switch {
	case cpos >= 0 && dpos >= 0:
		if cpos > dpos {
			dec = ','
		}
	case cpos >= 0:
		if strings.Count(raw, ",") == 1 && len(raw)-cpos-1 != 3 {
			dec = ','
		}
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Float coerces r[col] to a number; anything unparseable counts as 0.
func Float(r Row, col string) float64 {
	f, _ := ParseNumber(r[col])
	return f
}

// Filter returns the rows for which keep is true, in order.
func Filter(t *Table, keep func(i int, r Row) bool) *Table {
	var rows []Row
	for i, r := range t.Rows {
		if keep(i, r) {
			rows = append(rows, r)
		}
	}
	return t.WithRows(rows)
}

// Equals returns a predicate matching rows whose col equals value after trimming.
func Equals(col, value string) func(int, Row) bool {
	want := strings.TrimSpace(value)
	return func(_ int, r Row) bool { return strings.TrimSpace(r[col]) == want }
}

// Distinct returns the sorted non-blank values of col.
func Distinct(t *Table, col string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range t.Rows {
		v := strings.TrimSpace(r[col])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Group is one key's sums, in the order of the columns passed to GroupSum.
type Group struct {
	Key  string
	Sums []float64
	Size int
}

// Total returns the sum of all of g's sums.
func (g Group) Total() float64 {
	var s float64
	for _, v := range g.Sums {
		s += v
	}
	return s
}

// GroupSum sums cols per distinct value of key. Groups come back in first-seen order.
func GroupSum(t *Table, key string, cols ...string) []Group {
	idx := map[string]int{}
	var out []Group
	for _, r := range t.Rows {
		k := strings.TrimSpace(r[key])
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Group{Key: k, Sums: make([]float64, len(cols))})
		}
		g := &out[i]
		g.Size++
		for j, c := range cols {
			g.Sums[j] += Float(r, c)
		}
	}
	return out
}

// SortBy returns a copy of t stably sorted by the numeric value of col.
// Unparseable cells sort as 0.
func SortBy(t *Table, col string, desc bool) *Table {
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := Float(rows[i], col), Float(rows[j], col)
		if desc {
			return a > b
		}
		return a < b
	})
	return t.WithRows(rows)
}

// Head returns at most the first n rows.
func Head(t *Table, n int) *Table {
	if n < 0 || n >= len(t.Rows) {
		return t.WithRows(t.Rows)
	}
	return t.WithRows(t.Rows[:n])
}
