package tabular

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_AliasOrderWins(t *testing.T) {
	t.Parallel()
	got, ok := Resolve([]string{"y", "x"}, []string{"x", "y"})
	require.True(t, ok)
	assert.Equal(t, "x", got)

	got, ok = Resolve([]string{"x", "y"}, []string{"x", "y"})
	require.True(t, ok)
	assert.Equal(t, "x", got)

	_, ok = Resolve([]string{"a"}, []string{"x", "y"})
	assert.False(t, ok)
}

func TestResolveAll_ReportsEveryMissingField(t *testing.T) {
	t.Parallel()
	tbl := New([]string{"일자", "역", "승차"})
	cols, err := ResolveAll(tbl,
		AliasGroup{Field: "date", Aliases: []string{"사용일자", "일자", "date"}},
		AliasGroup{Field: "line", Aliases: []string{"노선명", "노선", "line"}},
		AliasGroup{Field: "station", Aliases: []string{"역명", "역", "station"}},
		AliasGroup{Field: "offs", Aliases: []string{"하차총승객수", "하차"}},
	)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"line", "offs"}, se.Missing)
	assert.Equal(t, []string{"일자", "역", "승차"}, se.Available)
	assert.Equal(t, "일자", cols["date"])
	assert.Equal(t, "역", cols["station"])
}

func TestNormalizeDate_Formats(t *testing.T) {
	t.Parallel()
	want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"20250115", "2025-01-15", "2025/01/15", "2025.01.15", " 20250115 ", "20250115.0", "2025-01-15T08:30:00Z"} {
		got, ok := NormalizeDate(in, nil)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), "%q -> %v", in, got)
	}
	for _, in := range []string{"", "not a date", "2025-13-45"} {
		_, ok := NormalizeDate(in, nil)
		assert.False(t, ok, in)
	}
}

func TestNormalizeDate_SlashedIsMonthFirst(t *testing.T) {
	t.Parallel()
	got, ok := NormalizeDate("03/04/2025", nil)
	require.True(t, ok)
	assert.Equal(t, "2025-03-04", got.Format("2006-01-02"))

	// Only a day-first reading fits when the first field exceeds 12.
	got, ok = NormalizeDate("25/04/2025", nil)
	require.True(t, ok)
	assert.Equal(t, "2025-04-25", got.Format("2006-01-02"))
}

func TestParseDateColumn(t *testing.T) {
	t.Parallel()
	tbl := New([]string{"d"})
	tbl.Append(Row{"d": "20250101"})
	tbl.Append(Row{"d": "garbage"})
	got, err := ParseDateColumn(tbl, "d", nil)
	require.NoError(t, err)
	require.NotNil(t, got[0])
	assert.Nil(t, got[1])

	bad := New([]string{"d"})
	bad.Append(Row{"d": "x"})
	bad.Append(Row{"d": "y"})
	_, err = ParseDateColumn(bad, "d", nil)
	var de *DateColumnError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "d", de.Column)

	_, err = ParseDateColumn(New([]string{"d"}), "d", nil)
	assert.NoError(t, err, "an empty table is not an unparseable column")
}
