// Package rank orders table rows by a metric and assigns rank colours.
package rank

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/tablescope/internal/tabular"
)

// Entry is one ranked row. Rank is the 0-based position after a stable
// descending sort of Value.
type Entry struct {
	Key    string
	Value  float64
	Rank   int
	Pinned bool
	Row    tabular.Row
}

// Rank sorts t by valueCol descending, keeping input order for ties.
func Rank(t *tabular.Table, keyCol, valueCol string) []Entry {
	out := make([]Entry, 0, t.Len())
	for _, r := range t.Rows {
		out = append(out, Entry{Key: strings.TrimSpace(r[keyCol]), Value: tabular.Float(r, valueCol), Row: r})
	}
	return Sorted(out)
}

// Sorted stably sorts entries by Value descending and renumbers Rank.
func Sorted(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	for i := range out {
		out[i].Rank = i
	}
	return out
}

// TopNWithPin returns the first n entries. When pin names an entry ranked at
// or beyond n, that entry is appended (marked Pinned) and the result holds n+1
// entries. An empty pin, or one that matches nothing, yields the plain top n.
func TopNWithPin(entries []Entry, n int, pin string) []Entry {
	if n < 0 {
		n = 0
	}
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]Entry, n, n+1)
	copy(out, entries[:n])
	if pin == "" {
		return out
	}
	for i := range out {
		if out[i].Key == pin {
			out[i].Pinned = true
			return out
		}
	}
	for _, e := range entries[n:] {
		if e.Key == pin {
			e.Pinned = true
			return append(out, e)
		}
	}
	return out
}

// Colors assigns each entry a gradient colour by its position in entries.
// Pinned entries get the reserved colour instead.
func Colors(entries []Entry, g Gradient, pinned RGB) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		if e.Pinned {
			out[i] = pinned.Hex()
			continue
		}
		out[i] = g.At(i, len(entries)).Hex()
	}
	return out
}
