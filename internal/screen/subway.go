package screen

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/tablescope/internal/chart"
	"github.com/KaramelBytes/tablescope/internal/config"
	"github.com/KaramelBytes/tablescope/internal/rank"
	"github.com/KaramelBytes/tablescope/internal/tabular"
)

// Logical subway fields, named after the canonical column headers.
const (
	FieldDate    = "사용일자"
	FieldLine    = "노선명"
	FieldStation = "역명"
	FieldOns     = "승차총승객수"
	FieldOffs    = "하차총승객수"
)

// SubwayColumns are the accepted spellings of each field, most specific first.
var SubwayColumns = []tabular.AliasGroup{
	{Field: FieldDate, Aliases: []string{"사용일자", "일자", "date"}},
	{Field: FieldLine, Aliases: []string{"노선명", "노선", "line"}},
	{Field: FieldStation, Aliases: []string{"역명", "역", "station"}},
	{Field: FieldOns, Aliases: []string{"승차총승객수", "승차", "on", "승차총"}},
	{Field: FieldOffs, Aliases: []string{"하차총승객수", "하차", "off", "하차총"}},
}

const (
	subwayMinTopN  = 5
	subwayMaxTopN  = 100
	previewRows    = 200
	subwayTotalCol = "total"
)

// SubwayInput is the subway filter form. Empty values select the defaults:
// the first day of the date window, the first line, the configured N.
type SubwayInput struct {
	Source SourceRef
	Date   string
	Line   string
	TopN   int
}

// Subway sums boardings and alightings per station for one date and line and
// charts the busiest stations.
func (e *Env) Subway(ctx context.Context, in SubwayInput) *View {
	v := newView("지하철 역별 이용량 (승차+하차)")
	l, bundled, err := e.open(ctx, in.Source, e.Config.SubwayFile)
	if err != nil {
		return v.fail(err)
	}
	v.Source = in.Source.ID
	if bundled {
		v.add(LevelInfo, "로컬 파일 `%s`에서 로드했습니다 (%s).", l.Source, l.Encoding)
	}
	t := l.Table
	cols, err := tabular.ResolveAll(t, SubwayColumns...)
	if err != nil {
		return v.fail(err)
	}
	dates, err := tabular.ParseDateColumn(t, cols[FieldDate], e.Config.DateLayouts)
	if err != nil {
		return v.fail(err)
	}

	lo, hi, err := e.Config.DateWindow()
	if err != nil {
		return v.fail(err)
	}
	day := clampDay(parseDay(in.Date, lo), lo, hi)
	v.Selected["date"] = day.Format(config.DateFormat)
	v.Selected["date_min"] = lo.Format(config.DateFormat)
	v.Selected["date_max"] = hi.Format(config.DateFormat)

	lines := tabular.Distinct(t, cols[FieldLine])
	v.Choices["line"] = lines
	line := pick(strings.TrimSpace(in.Line), lines)
	v.Selected["line"] = line

	n := ClampTopN(in.TopN, e.Config.SubwayTopN)
	v.Selected["top_n"] = strconv.Itoa(n)

	filtered := tabular.Filter(t, func(i int, r tabular.Row) bool {
		return dates[i] != nil && tabular.SameDay(*dates[i], day) && strings.TrimSpace(r[cols[FieldLine]]) == line
	})
	if filtered.Len() == 0 {
		return v.fail(&EmptyResultError{Hint: "선택한 날짜와 호선에 해당하는 데이터가 없습니다. 다른 날짜/호선을 선택해 주세요."})
	}

	groups := tabular.GroupSum(filtered, cols[FieldStation], cols[FieldOns], cols[FieldOffs])
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Total() > groups[j].Total() })
	if len(groups) > n {
		groups = groups[:n]
	}

	colors := rank.OpacityRamp(len(groups), rank.Red, rank.Blue, 0.95, 0.2)
	export := tabular.New([]string{cols[FieldStation], cols[FieldOns], cols[FieldOffs], subwayTotalCol})
	spec := chart.BarSpec{
		Title:        fmt.Sprintf("%s — %s 역별 이용량 (상위 %d)", day.Format(config.DateFormat), line, len(groups)),
		SeriesName:   line,
		Colors:       colors,
		CategoryName: "역명",
		ValueName:    "승차+하차 합계",
	}
	for _, g := range groups {
		ons, offs, total := g.Sums[0], g.Sums[1], g.Total()
		spec.Categories = append(spec.Categories, g.Key)
		spec.Values = append(spec.Values, total)
		spec.Details = append(spec.Details, fmt.Sprintf("<b>%s</b><br>총합: %s<br>승차 합: %s<br>하차 합: %s",
			html.EscapeString(g.Key), formatCount(total), formatCount(ons), formatCount(offs)))
		export.Append(tabular.Row{
			cols[FieldStation]: g.Key,
			cols[FieldOns]:     formatCount(ons),
			cols[FieldOffs]:    formatCount(offs),
			subwayTotalCol:     formatCount(total),
		})
	}
	bar, err := chart.HorizontalBar(spec)
	if err != nil {
		return v.fail(err)
	}
	doc, err := chart.Render(bar)
	if err != nil {
		return v.fail(err)
	}
	v.Charts = append(v.Charts, Panel{Heading: spec.Title, HTML: doc})
	v.Export = export
	v.Table = tabular.Head(filtered, previewRows)
	v.TableTitle = "원본 데이터 미리보기"
	return v
}

// ClampTopN applies the slider bounds; n <= 0 means def.
func ClampTopN(n, def int) int {
	if n <= 0 {
		n = def
	}
	return min(max(n, subwayMinTopN), subwayMaxTopN)
}

func parseDay(s string, def time.Time) time.Time {
	if strings.TrimSpace(s) == "" {
		return def
	}
	if d, ok := tabular.NormalizeDate(s, tabular.DefaultDateLayouts); ok {
		return d
	}
	return def
}

func clampDay(d, lo, hi time.Time) time.Time {
	if d.Before(lo) {
		return lo
	}
	if d.After(hi) {
		return hi
	}
	return d
}

func formatCount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
