package screen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tablescope/internal/chart"
	"github.com/KaramelBytes/tablescope/internal/rank"
	"github.com/KaramelBytes/tablescope/internal/tabular"
)

var countryGroup = tabular.AliasGroup{Field: "Country", Aliases: []string{"Country", "country", "국가"}}

// CountryInput selects a country for the distribution tab.
type CountryInput struct {
	Source  SourceRef
	Country string
}

// RankInput selects a type for the ranking tab. TopN <= 0 and an empty Pin
// fall back to the configured values.
type RankInput struct {
	Source SourceRef
	Type   string
	TopN   int
	Pin    string
	// PinSet marks Pin as given; an empty given Pin turns the pinned row off.
	PinSet bool
}

type countryTable struct {
	loaded    *tabular.Loaded
	bundled   bool
	keyCol    string
	typeCols  []string
	countries []string
}

func (e *Env) openCountries(ctx context.Context, ref SourceRef) (*countryTable, error) {
	l, bundled, err := e.open(ctx, ref, e.Config.CountriesFile)
	if err != nil {
		return nil, err
	}
	cols, err := tabular.ResolveAll(l.Table, countryGroup)
	if err != nil {
		return nil, err
	}
	ct := &countryTable{loaded: l, bundled: bundled, keyCol: cols[countryGroup.Field]}
	for _, h := range l.Table.Header {
		if h != ct.keyCol {
			ct.typeCols = append(ct.typeCols, h)
		}
	}
	for _, c := range l.Table.Column(ct.keyCol) {
		if c = strings.TrimSpace(c); c != "" {
			ct.countries = append(ct.countries, c)
		}
	}
	if len(ct.typeCols) == 0 || len(ct.countries) == 0 {
		return nil, &EmptyResultError{Hint: "국가별 MBTI 데이터가 비어 있습니다."}
	}
	return ct, nil
}

// CountryMBTI charts one country's type ratios, highest first, coloured along
// the rank gradient. An unknown country selects the first one.
func (e *Env) CountryMBTI(ctx context.Context, in CountryInput) *View {
	v := newView("🌍 Countries MBTI Explorer")
	v.Subtitle = "국가를 선택하면 MBTI 유형 비율을 확인할 수 있습니다."
	ct, err := e.openCountries(ctx, in.Source)
	if err != nil {
		return v.fail(err)
	}
	v.Source = in.Source.ID
	v.Choices["country"] = ct.countries
	country := pick(strings.TrimSpace(in.Country), ct.countries)
	v.Selected["country"] = country

	var row tabular.Row
	for _, r := range ct.loaded.Table.Rows {
		if strings.TrimSpace(r[ct.keyCol]) == country {
			row = r
			break
		}
	}
	entries := make([]rank.Entry, len(ct.typeCols))
	for i, c := range ct.typeCols {
		entries[i] = rank.Entry{Key: c, Value: tabular.Float(row, c)}
	}
	entries = rank.Sorted(entries)
	colors := rank.Colors(entries, e.Config.Gradient(), e.Config.Pinned())

	spec := chart.BarSpec{
		Title:        fmt.Sprintf("%s — MBTI 비율 (내림차순)", country),
		SeriesName:   country,
		Colors:       colors,
		Percent:      true,
		CategoryName: "MBTI 유형",
		ValueName:    "비율",
	}
	for _, en := range entries {
		spec.Categories = append(spec.Categories, en.Key)
		spec.Values = append(spec.Values, en.Value)
	}
	bar, err := chart.VerticalBar(spec)
	if err != nil {
		return v.fail(err)
	}
	html, err := chart.Render(bar)
	if err != nil {
		return v.fail(err)
	}
	v.Charts = append(v.Charts, Panel{Heading: "국가별 MBTI 보기", HTML: html})
	v.Export = entriesTable(entries, "MBTI", colors)
	return v
}

// MBTIRank lists the countries with the highest ratio of one type. The pinned
// country is appended when it falls outside the top N and always keeps the
// reserved colour.
func (e *Env) MBTIRank(ctx context.Context, in RankInput) *View {
	v := newView("🌍 Countries MBTI Explorer")
	v.Subtitle = "MBTI 유형을 선택하면 해당 유형 비율이 높은 국가 TOP10을 보여줍니다."
	ct, err := e.openCountries(ctx, in.Source)
	if err != nil {
		return v.fail(err)
	}
	v.Source = in.Source.ID
	v.Choices["type"] = ct.typeCols
	typ := pickFold(in.Type, ct.typeCols)
	v.Selected["type"] = typ

	n := in.TopN
	if n <= 0 {
		n = e.Config.TopN
	}
	pin := strings.TrimSpace(in.Pin)
	if !in.PinSet {
		pin = e.Config.PinnedKey
	}
	v.Selected["top_n"] = strconv.Itoa(n)
	v.Selected["pin"] = pin

	top := rank.TopNWithPin(rank.Rank(ct.loaded.Table, ct.keyCol, typ), n, pin)
	colors := rank.Colors(top, e.Config.Gradient(), e.Config.Pinned())
	spec := chart.BarSpec{
		Title:        fmt.Sprintf("%s 유형 비율 — 상위 국가", typ),
		SeriesName:   typ,
		Colors:       colors,
		Percent:      true,
		CategoryName: "국가",
		ValueName:    "비율",
	}
	for _, en := range top {
		spec.Categories = append(spec.Categories, en.Key)
		spec.Values = append(spec.Values, en.Value)
	}
	bar, err := chart.HorizontalBar(spec)
	if err != nil {
		return v.fail(err)
	}
	html, err := chart.Render(bar)
	if err != nil {
		return v.fail(err)
	}
	v.Charts = append(v.Charts, Panel{Heading: "MBTI 유형별 국가 순위", HTML: html})
	v.Export = entriesTable(top, "Country", colors)
	if pin != "" {
		v.Notes = append(v.Notes, fmt.Sprintf("※ %s이(가) Top%d 안에 없으면 자동으로 추가하여 %s로 표시합니다.", pin, n, e.Config.Pinned().Hex()))
	}
	return v
}

func entriesTable(entries []rank.Entry, keyName string, colors []string) *tabular.Table {
	t := tabular.New([]string{"순위", keyName, "비율", "색상"})
	for i, en := range entries {
		t.Append(tabular.Row{
			"순위":    strconv.Itoa(en.Rank + 1),
			keyName: en.Key,
			"비율":    strconv.FormatFloat(en.Value, 'f', -1, 64),
			"색상":    colors[i],
		})
	}
	return t
}
