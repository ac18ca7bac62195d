package rank

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tablescope/internal/tabular"
)

func TestGradientEndpointsAndMonotonic(t *testing.T) {
	t.Parallel()
	g := DefaultGradient
	for n := 2; n <= 20; n++ {
		assert.Equal(t, g.From, g.At(0, n), "n=%d first", n)
		assert.Equal(t, g.To, g.At(n-1, n), "n=%d last", n)
		prev := g.At(0, n)
		for i := 1; i < n; i++ {
			c := g.At(i, n)
			assert.LessOrEqual(t, c.R, prev.R, "red non-increasing n=%d i=%d", n, i)
			assert.GreaterOrEqual(t, c.B, prev.B, "blue non-decreasing n=%d i=%d", n, i)
			prev = c
		}
	}
	assert.Equal(t, g.From, g.At(0, 1))
	assert.Equal(t, "#800080", g.At(1, 3).Hex())
}

func TestGradientDeterministic(t *testing.T) {
	t.Parallel()
	g := Gradient{From: RGB{10, 20, 30}, To: RGB{200, 100, 0}}
	assert.Equal(t, g.At(3, 7), g.At(3, 7))
}

func TestParseHex(t *testing.T) {
	t.Parallel()
	c, err := ParseHex("#ff7f00")
	require.NoError(t, err)
	assert.Equal(t, RGB{0xff, 0x7f, 0x00}, c)
	assert.Equal(t, "#ff7f00", c.Hex())
	_, err = ParseHex("red")
	assert.Error(t, err)
}

func TestOpacityRamp(t *testing.T) {
	t.Parallel()
	assert.Nil(t, OpacityRamp(0, Red, Blue, 0.95, 0.2))
	assert.Equal(t, []string{"rgba(255,0,0,1.00)"}, OpacityRamp(1, Red, Blue, 0.95, 0.2))
	assert.Equal(t, []string{"rgba(255,0,0,1.00)", "rgba(0,0,255,0.95)"}, OpacityRamp(2, Red, Blue, 0.95, 0.2))
	got := OpacityRamp(5, Red, Blue, 0.95, 0.2)
	assert.Equal(t, []string{"rgba(255,0,0,1.00)", "rgba(0,0,255,0.95)", "rgba(0,0,255,0.70)", "rgba(0,0,255,0.45)", "rgba(0,0,255,0.20)"}, got)
}

func ranked15(pinAt int) []Entry {
	entries := make([]Entry, 15)
	for i := range entries {
		entries[i] = Entry{Key: fmt.Sprintf("c%02d", i), Value: float64(100 - i)}
	}
	if pinAt >= 0 {
		entries[pinAt].Key = "South Korea"
	}
	return Sorted(entries)
}

func TestTopNWithPin_AppendsPinnedRow(t *testing.T) {
	t.Parallel()
	entries := ranked15(12)
	got := TopNWithPin(entries, 10, "South Korea")
	require.Len(t, got, 11)
	assert.Equal(t, "South Korea", got[10].Key)
	assert.Equal(t, 12, got[10].Rank)
	assert.True(t, got[10].Pinned)
	for _, e := range got[:10] {
		assert.False(t, e.Pinned)
	}
}

func TestTopNWithPin_AbsentPin(t *testing.T) {
	t.Parallel()
	got := TopNWithPin(ranked15(-1), 10, "South Korea")
	assert.Len(t, got, 10)
}

func TestTopNWithPin_PinInsideTop(t *testing.T) {
	t.Parallel()
	got := TopNWithPin(ranked15(3), 10, "South Korea")
	require.Len(t, got, 10)
	assert.True(t, got[3].Pinned)
}

func TestTopNWithPin_Bounds(t *testing.T) {
	t.Parallel()
	entries := ranked15(-1)
	assert.Len(t, TopNWithPin(entries, 50, ""), 15)
	assert.Len(t, TopNWithPin(entries, -1, ""), 0)
	assert.Len(t, TopNWithPin(nil, 10, "x"), 0)
}

func TestColors_PinnedReserved(t *testing.T) {
	t.Parallel()
	got := TopNWithPin(ranked15(12), 10, "South Korea")
	colors := Colors(got, Gradient{From: RGB{0, 0, 0}, To: RGB{0, 0, 200}}, Red)
	require.Len(t, colors, 11)
	assert.Equal(t, "#000000", colors[0])
	assert.Equal(t, "#ff0000", colors[10])
}

func TestRankFromTable(t *testing.T) {
	t.Parallel()
	tbl := tabular.New([]string{"Country", "INFJ"})
	tbl.Append(tabular.Row{"Country": "A", "INFJ": "0.1"})
	tbl.Append(tabular.Row{"Country": "B", "INFJ": "0.3"})
	tbl.Append(tabular.Row{"Country": "C", "INFJ": "0.1"})
	got := Rank(tbl, "Country", "INFJ")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{got[0].Key, got[1].Key, got[2].Key})
	assert.Equal(t, 2, got[2].Rank)
}

func TestRankTreatsNaNAsZero(t *testing.T) {
	t.Parallel()
	tbl := tabular.New([]string{"Country", "INFJ"})
	for _, r := range [][2]string{{"A", "1"}, {"B", "NaN"}, {"C", "5"}, {"D", "3"}, {"E", "9"}} {
		tbl.Append(tabular.Row{"Country": r[0], "INFJ": r[1]})
	}
	got := Rank(tbl, "Country", "INFJ")
	keys := make([]string, len(got))
	for i, e := range got {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{"E", "C", "D", "A", "B"}, keys)
	assert.Equal(t, 0.0, got[4].Value)
}
