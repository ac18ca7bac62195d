// Package chart builds the screens' bar and scatter charts with go-echarts
// and renders them as standalone HTML documents.
package chart

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultWidth  = "100%"
	defaultHeight = "520px"
)

// BarSpec describes one bar series. Colors and Details, when set, are
// parallel to Categories; Details replaces the hover text of the matching bar.
type BarSpec struct {
	Title      string
	Subtitle   string
	SeriesName string
	Categories []string
	Values     []float64
	Colors     []string
	Details    []string
	// Percent formats the value axis and hover values as percentages of 1.
	Percent      bool
	CategoryName string
	ValueName    string
	Height       string
}

// Point is one labelled scatter point.
type Point struct {
	Name string
	X, Y float64
}

// ScatterSpec describes a single scatter series.
type ScatterSpec struct {
	Title    string
	Subtitle string
	XName    string
	YName    string
	Points   []Point
	Color    string
	Height   string
}

// Renderer is anything go-echarts can write as an HTML page.
type Renderer interface {
	Render(w io.Writer) error
}

// Render writes c as a complete HTML document.
func Render(c Renderer) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	return buf.String(), nil
}

// VerticalBar draws categories along the x axis in the given order.
func VerticalBar(spec BarSpec) (*charts.Bar, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(spec.init()),
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}),
		charts.WithTooltipOpts(spec.tooltip()),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.CategoryName, Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.ValueName, Type: "value", AxisLabel: spec.valueLabel()}),
	)
	bar.SetXAxis(spec.Categories)
	bar.AddSeries(spec.SeriesName, spec.data(false))
	return bar, nil
}

// HorizontalBar draws a ranked list with the first category on top. The
// category axis runs bottom-up, so the series is laid out in reverse.
func HorizontalBar(spec BarSpec) (*charts.Bar, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	if spec.Height == "" {
		spec.Height = fmt.Sprintf("%dpx", max(360, 80+28*len(spec.Categories)))
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(spec.init()),
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}),
		charts.WithTooltipOpts(spec.tooltip()),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithGridOpts(opts.Grid{Left: "160", Right: "40"}),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.ValueName, Type: "value", AxisLabel: spec.valueLabel()}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.CategoryName, Type: "category", Data: reversed(spec.Categories)}),
	)
	bar.AddSeries(spec.SeriesName, spec.data(true))
	return bar, nil
}

// Scatter plots points on two value axes. Both axes are scaled to the data
// rather than anchored at zero.
func Scatter(spec ScatterSpec) (*charts.Scatter, error) {
	if len(spec.Points) == 0 {
		return nil, fmt.Errorf("scatter %q: no points", spec.Title)
	}
	height := spec.Height
	if height == "" {
		height = defaultHeight
	}
	color := spec.Color
	if color == "" {
		color = "#1f77b4"
	}
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: spec.Title, Width: defaultWidth, Height: height}),
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts(`function (p) { return '<b>' + p.name + '</b><br>' + p.value[1] + ', ' + p.value[0]; }`),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.XName, Type: "value", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.YName, Type: "value", Scale: opts.Bool(true)}),
	)
	data := make([]opts.ScatterData, len(spec.Points))
	for i, p := range spec.Points {
		data[i] = opts.ScatterData{Name: p.Name, Value: []float64{p.X, p.Y}, SymbolSize: 14}
	}
	sc.AddSeries(spec.Title, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
	return sc, nil
}

func (s BarSpec) validate() error {
	if len(s.Categories) == 0 {
		return fmt.Errorf("bar %q: no categories", s.Title)
	}
	if len(s.Values) != len(s.Categories) {
		return fmt.Errorf("bar %q: %d values for %d categories", s.Title, len(s.Values), len(s.Categories))
	}
	if len(s.Colors) > 0 && len(s.Colors) != len(s.Categories) {
		return fmt.Errorf("bar %q: %d colors for %d categories", s.Title, len(s.Colors), len(s.Categories))
	}
	if len(s.Details) > 0 && len(s.Details) != len(s.Categories) {
		return fmt.Errorf("bar %q: %d details for %d categories", s.Title, len(s.Details), len(s.Categories))
	}
	return nil
}

func (s BarSpec) init() opts.Initialization {
	h := s.Height
	if h == "" {
		h = defaultHeight
	}
	return opts.Initialization{PageTitle: s.Title, Width: defaultWidth, Height: h}
}

func (s BarSpec) data(reverse bool) []opts.BarData {
	out := make([]opts.BarData, len(s.Values))
	for i, v := range s.Values {
		d := opts.BarData{Name: s.Categories[i], Value: v}
		if len(s.Colors) > 0 {
			d.ItemStyle = &opts.ItemStyle{Color: s.Colors[i]}
		}
		if len(s.Details) > 0 {
			// Plain text formatter; emitted as a JSON string.
			d.Tooltip = &opts.Tooltip{Formatter: types.FuncStr(s.Details[i])}
		}
		out[i] = d
	}
	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func (s BarSpec) valueLabel() *opts.AxisLabel {
	if !s.Percent {
		return nil
	}
	return &opts.AxisLabel{Formatter: opts.FuncOpts(`function (v) { return (v * 100).toFixed(0) + '%'; }`)}
}

// tooltip shows the name and the (percent) value. Details, when given, are
// attached per bar in data.
func (s BarSpec) tooltip() opts.Tooltip {
	t := opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}
	if s.Percent && len(s.Details) == 0 {
		t.Formatter = opts.FuncOpts(`function (p) { return '<b>' + p.name + '</b><br>비율: ' + (p.value * 100).toFixed(2) + '%'; }`)
	}
	return t
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
