package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tablescope/internal/chart"
	"github.com/KaramelBytes/tablescope/internal/rank"
	"github.com/KaramelBytes/tablescope/internal/tabular"
	"github.com/KaramelBytes/tablescope/internal/utils"
)

var (
	rankInput     inputFlags
	rankKey       string
	rankMetric    string
	rankTop       int
	rankPin       string
	rankChartPath string
)

var rankCmd = &cobra.Command{
	Use:   "rank <file>",
	Short: "Rank rows by a metric and print the top N with the pinned row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		l, err := rankInput.load(args[0])
		if err != nil {
			return err
		}
		t := l.Table
		key := rankKey
		if key == "" && len(t.Header) > 0 {
			key = t.Header[0]
		}
		for _, col := range []string{key, rankMetric} {
			if !t.Has(col) {
				return &tabular.SchemaError{Missing: []string{col}, Available: t.Header}
			}
		}
		n := rankTop
		if n <= 0 {
			n = c.TopN
		}
		pin := c.PinnedKey
		if cmd.Flags().Changed("pin") {
			pin = rankPin
		}

		top := rank.TopNWithPin(rank.Rank(t, key, rankMetric), n, pin)
		if len(top) == 0 {
			return tabular.ErrEmptyResult
		}
		colors := rank.Colors(top, c.Gradient(), c.Pinned())

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s by %s (top %d)\n", key, rankMetric, n)
		for i, e := range top {
			mark := ""
			if e.Pinned {
				mark = "  ← pinned"
			}
			fmt.Fprintf(out, "%s %3d. %-24s %s%s\n", swatch(colors[i]), e.Rank+1, e.Key, strconv.FormatFloat(e.Value, 'f', -1, 64), mark)
		}

		if rankChartPath != "" {
			spec := chart.BarSpec{
				Title:        fmt.Sprintf("%s: top %d by %s", key, n, rankMetric),
				SeriesName:   rankMetric,
				Colors:       colors,
				CategoryName: key,
				ValueName:    rankMetric,
			}
			for _, e := range top {
				spec.Categories = append(spec.Categories, e.Key)
				spec.Values = append(spec.Values, e.Value)
			}
			bar, err := chart.HorizontalBar(spec)
			if err != nil {
				return err
			}
			html, err := chart.Render(bar)
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(rankChartPath, []byte(html)); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote chart to %s\n", rankChartPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
	f := rankCmd.Flags()
	f.StringVar(&rankKey, "key", "", "column naming each row (default: first column)")
	f.StringVar(&rankMetric, "metric", "", "numeric column to rank by")
	f.IntVar(&rankTop, "top", 0, "number of rows to show (default from config top_n)")
	f.StringVar(&rankPin, "pin", "", "key appended when outside the top N (default from config pinned_key; empty disables)")
	f.StringVar(&rankChartPath, "chart", "", "optional path to write a horizontal bar chart (HTML)")
	f.StringSliceVar(&rankInput.encodings, "encoding", nil, "encodings to try in order")
	f.StringVar(&rankInput.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	f.StringVar(&rankInput.sheetName, "sheet-name", "", "XLSX: sheet name")
	f.IntVar(&rankInput.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index")
	_ = rankCmd.MarkFlagRequired("metric")
}

// swatch renders a two-cell block in the given "#rrggbb" colour.
func swatch(hex string) string {
	c, err := rank.ParseHex(hex)
	if err != nil {
		return "  "
	}
	return color.RGB(int(c.R), int(c.G), int(c.B)).Sprint("██")
}
