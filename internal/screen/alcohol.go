package screen

import (
	"context"

	"github.com/KaramelBytes/tablescope/internal/analysis"
	"github.com/KaramelBytes/tablescope/internal/chart"
	"github.com/KaramelBytes/tablescope/internal/tabular"
)

// Logical mortality fields.
const (
	FieldKind  = "구분"
	FieldYear  = "연도"
	FieldTotal = "총계"
)

var alcoholColumns = []tabular.AliasGroup{
	{Field: FieldKind, Aliases: []string{"구분", "kind"}},
	{Field: FieldYear, Aliases: []string{"연도", "년도", "year"}},
	{Field: FieldTotal, Aliases: []string{"총계", "합계", "total"}},
}

var alcoholSeries = []struct {
	kind    string
	heading string
}{
	{"사망률", "📊 사망률 그래프 (오래된 연도 → 최근 연도)"},
	{"사망자수", "📊 사망자수 그래프 (오래된 연도 → 최근 연도)"},
}

// AlcoholInput selects the mortality source.
type AlcoholInput struct {
	Source SourceRef
}

// Alcohol charts the yearly totals of the mortality rate and death count rows.
func (e *Env) Alcohol(ctx context.Context, in AlcoholInput) *View {
	v := newView("알코올 질환 사망자 분석")
	l, bundled, err := e.open(ctx, in.Source, e.Config.AlcoholFile)
	if err != nil {
		return v.fail(err)
	}
	v.Source = in.Source.ID
	if bundled {
		v.add(LevelInfo, "기본 파일 `%s`을(를) 불러왔습니다 (%s).", l.Source, l.Encoding)
	}
	t := l.Table
	v.Table = tabular.Head(t, 5)
	v.TableTitle = "데이터 미리보기"
	cols, err := tabular.ResolveAll(t, alcoholColumns...)
	if err != nil {
		return v.fail(err)
	}

	for _, s := range alcoholSeries {
		rows := tabular.SortBy(tabular.Filter(t, tabular.Equals(cols[FieldKind], s.kind)), cols[FieldYear], false)
		if rows.Len() == 0 {
			v.add(LevelInfo, "'%s' 행이 없어 그래프를 건너뜁니다.", s.kind)
			continue
		}
		spec := chart.BarSpec{
			Title:        s.kind,
			SeriesName:   cols[FieldTotal],
			CategoryName: cols[FieldYear],
			ValueName:    cols[FieldTotal],
		}
		for _, r := range rows.Rows {
			spec.Categories = append(spec.Categories, r[cols[FieldYear]])
			spec.Values = append(spec.Values, tabular.Float(r, cols[FieldTotal]))
		}
		bar, err := chart.VerticalBar(spec)
		if err != nil {
			return v.fail(err)
		}
		html, err := chart.Render(bar)
		if err != nil {
			return v.fail(err)
		}
		v.Charts = append(v.Charts, Panel{Heading: s.heading, HTML: html})
	}
	if len(v.Charts) == 0 {
		return v.fail(&EmptyResultError{Hint: "구분 컬럼에 '사망률' 또는 '사망자수' 행이 없습니다."})
	}
	opt := analysis.DefaultOptions()
	opt.GroupBy = []string{cols[FieldKind]}
	v.Summary = analysis.Summarize(l, opt).Markdown()
	return v
}
