package chart

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerticalBarRendersColorsAndPercentAxis(t *testing.T) {
	bar, err := VerticalBar(BarSpec{
		Title:      "South Korea — MBTI 비율 (내림차순)",
		SeriesName: "ratio",
		Categories: []string{"INFJ", "ENTP"},
		Values:     []float64{0.12, 0.05},
		Colors:     []string{"#ff0000", "#0000ff"},
		Percent:    true,
	})
	require.NoError(t, err)
	html, err := Render(bar)
	require.NoError(t, err)
	assert.Contains(t, html, "INFJ")
	assert.Contains(t, html, "#0000ff")
	assert.Contains(t, html, "toFixed(0)")
}

func TestHorizontalBarPutsFirstCategoryOnTop(t *testing.T) {
	spec := BarSpec{
		Title:      "top",
		Categories: []string{"강남", "잠실", "서울역"},
		Values:     []float64{300, 200, 100},
		Colors:     []string{"rgba(255,0,0,1.00)", "rgba(0,0,255,0.95)", "rgba(0,0,255,0.20)"},
		Details:    []string{"<b>강남</b>", "<b>잠실</b>", "<b>서울역</b>"},
	}
	bar, err := HorizontalBar(spec)
	require.NoError(t, err)
	html, err := Render(bar)
	require.NoError(t, err)
	opt := optionJSON(t, html)
	assert.NotContains(t, html, `\"`)
	series := opt["series"].([]any)
	require.Len(t, series, 1)
	items := series[0].(map[string]any)["data"].([]any)
	require.Len(t, items, 3)
	top := items[2].(map[string]any)
	assert.Equal(t, "강남", top["name"])
	assert.Equal(t, "<b>강남</b>", top["tooltip"].(map[string]any)["formatter"])

	// Category axis runs bottom-up, so the leader is laid out last.
	assert.Equal(t, []string{"서울역", "잠실", "강남"}, reversed(spec.Categories))
	data := spec.data(true)
	require.Len(t, data, 3)
	assert.Equal(t, "강남", data[2].Name)
	assert.Equal(t, "rgba(255,0,0,1.00)", data[2].ItemStyle.Color)
	assert.Equal(t, 100.0, data[0].Value)
}

func TestBarSpecValidation(t *testing.T) {
	_, err := VerticalBar(BarSpec{Title: "empty"})
	assert.Error(t, err)
	_, err = VerticalBar(BarSpec{Title: "short", Categories: []string{"a", "b"}, Values: []float64{1}})
	assert.Error(t, err)
	_, err = HorizontalBar(BarSpec{Title: "colors", Categories: []string{"a"}, Values: []float64{1}, Colors: []string{"#000000", "#ffffff"}})
	assert.Error(t, err)
}

func TestScatter(t *testing.T) {
	_, err := Scatter(ScatterSpec{Title: "none"})
	assert.Error(t, err)

	sc, err := Scatter(ScatterSpec{Title: "spots", Points: []Point{{Name: "Myeongdong (명동)", X: 126.985, Y: 37.5636}}})
	require.NoError(t, err)
	html, err := Render(sc)
	require.NoError(t, err)
	assert.Contains(t, html, "126.985")
	assert.Contains(t, html, "Myeongdong")
}

// optionJSON pulls the chart option literal out of a rendered page. Without
// function formatters it must be plain JSON.
func optionJSON(t *testing.T, html string) map[string]any {
	t.Helper()
	_, rest, ok := strings.Cut(html, "let option_")
	require.True(t, ok, "option assignment missing")
	_, rest, ok = strings.Cut(rest, "= ")
	require.True(t, ok)
	literal, _, _ := strings.Cut(rest, "\n")
	var opt map[string]any
	require.NoError(t, json.Unmarshal([]byte(literal), &opt), literal)
	return opt
}
