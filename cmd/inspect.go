package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tablescope/internal/analysis"
	"github.com/KaramelBytes/tablescope/internal/utils"
)

var (
	insInput      inputFlags
	insOutputPath string
	insSampleRows int
	insMaxRows    int
	insGroupBy    []string
	insCorr       bool
	insOutliers   bool
	insOutlierThr float64
	insQuiet      bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <files...>",
	Short: "Summarize CSV/XLSX files: schema, stats, groups and sample rows",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		opt := analysis.DefaultOptions()
		if insSampleRows >= 0 {
			opt.SampleRows = insSampleRows
		}
		if insMaxRows >= 0 {
			opt.MaxRows = insMaxRows
		}
		opt.GroupBy = insGroupBy
		opt.Correlations = insCorr
		opt.Outliers = insOutliers
		if insOutlierThr > 0 {
			opt.OutlierThreshold = insOutlierThr
		}
		opt.DateLayouts = currentConfig().DateLayouts

		out := cmd.OutOrStdout()
		var reports []string
		for i, path := range files {
			if len(files) > 1 && !insQuiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Processing %s...\n", i+1, len(files), filepath.Base(path))
			}
			l, err := insInput.load(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			rep := analysis.Summarize(l, opt)
			for _, w := range rep.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s: %s\n", filepath.Base(path), w)
			}
			reports = append(reports, rep.Markdown())
		}
		md := strings.Join(reports, "\n")

		if insOutputPath != "" {
			if err := utils.SafeWriteFile(insOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote summary to %s\n", insOutputPath)
			return nil
		}
		fmt.Fprintln(out, md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	f := inspectCmd.Flags()
	f.StringVarP(&insOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	f.StringSliceVar(&insInput.encodings, "encoding", nil, "encodings to try in order (default from config: utf-8,cp949,euc-kr,latin1)")
	f.StringVar(&insInput.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	f.IntVar(&insSampleRows, "sample-rows", 5, "number of sample rows to include")
	f.IntVar(&insMaxRows, "max-rows", 100000, "maximum rows to process (0 = unlimited)")
	f.StringSliceVar(&insGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	f.BoolVar(&insCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	f.BoolVar(&insOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	f.Float64Var(&insOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	f.StringVar(&insInput.sheetName, "sheet-name", "", "XLSX: sheet name to inspect")
	f.IntVar(&insInput.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	f.BoolVar(&insQuiet, "quiet", false, "suppress progress output")
}
