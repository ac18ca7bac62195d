package analysis

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/tablescope/internal/tabular"
)

// Options controls analysis behavior for tabular data.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// GroupBy computes per-group summaries for the given column names.
	GroupBy []string
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
	// DateLayouts are tried before numeric parsing; empty means tabular.DefaultDateLayouts.
	DateLayouts []string
}

// DefaultOptions returns reasonable defaults for dataset analysis.
func DefaultOptions() Options {
	return Options{
		MaxRows:          100000,
		SampleRows:       5,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly analysis of a tabular dataset.
type Report struct {
	Name      string
	Encoding  string
	Rows      int
	Processed int
	Cols      []ColumnSummary
	Samples   [][]string
	Warnings  []string
	Groups    []GroupResult
	Corr      *CorrMatrix
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|datetime|categorical|text|unknown
	Unit    string
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Std    float64
	Sum    float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues    []CategoryCount
	ExampleTexts []string
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key     string
	Size    int
	Metrics map[string]NumSummary // by column name
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

type colAcc struct {
	name   string
	unit   string
	nonNil int
	miss   int
	nums   []float64
	dtCnt  int
	txtCnt int
	cats   map[string]int
	exText []string
}

// Summarize analyzes a loaded table. Numeric cells are read with
// tabular.ParseNumber, so thousands separators and percent signs are accepted.
func Summarize(l *tabular.Loaded, opt Options) *Report {
	rep := &Report{Name: l.Source, Encoding: l.Encoding}
	t := l.Table
	if t == nil || len(t.Header) == 0 {
		return rep
	}
	layouts := opt.DateLayouts
	if len(layouts) == 0 {
		layouts = tabular.DefaultDateLayouts
	}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}

	cols := make([]*colAcc, len(t.Header))
	index := map[string]int{}
	for i, h := range t.Header {
		clean, unit := splitUnits(h)
		cols[i] = &colAcc{name: clean, unit: unit, cats: make(map[string]int)}
		index[strings.ToLower(h)] = i
		index[strings.ToLower(clean)] = i
	}

	// Per-row numeric values for correlations; NaN marks a non-numeric cell.
	var rowsNum [][]float64
	type gAcc struct {
		size int
		vals map[int][]float64
	}
	groups := map[string]*gAcc{}

	rep.Rows = t.Len()
	for _, row := range t.Rows {
		if rep.Processed >= maxRows {
			break
		}
		rep.Processed++
		if len(rep.Samples) < sampleRows {
			rec := make([]string, len(t.Header))
			for j, h := range t.Header {
				rec[j] = row[h]
			}
			rep.Samples = append(rep.Samples, rec)
		}
		gkey := groupKey(row, t.Header, cols, index, opt.GroupBy)
		var ga *gAcc
		if gkey != "" {
			ga = groups[gkey]
			if ga == nil {
				ga = &gAcc{vals: map[int][]float64{}}
				groups[gkey] = ga
			}
			ga.size++
		}
		var nums []float64
		if opt.Correlations {
			nums = make([]float64, len(t.Header))
		}
		for j, h := range t.Header {
			if nums != nil {
				nums[j] = math.NaN()
			}
			c := cols[j]
			v := strings.TrimSpace(row[h])
			if v == "" {
				c.miss++
				continue
			}
			c.nonNil++
			if _, ok := tabular.NormalizeDate(v, layouts); ok {
				c.dtCnt++
				continue
			}
			if strings.Contains(v, "%") && c.unit == "" {
				c.unit = "%"
			}
			if x, ok := tabular.ParseNumber(v); ok {
				c.nums = append(c.nums, x)
				if nums != nil {
					nums[j] = x
				}
				if ga != nil {
					ga.vals[j] = append(ga.vals[j], x)
				}
				continue
			}
			c.txtCnt++
			if len(c.cats) <= 10000 && len(v) <= 64 {
				c.cats[v]++
			}
			if len(c.exText) < 3 {
				c.exText = append(c.exText, v)
			}
		}
		if nums != nil {
			rowsNum = append(rowsNum, nums)
		}
	}

	numCols := []int{}
	rep.Cols = make([]ColumnSummary, 0, len(cols))
	for idx, c := range cols {
		s := ColumnSummary{Name: c.name, Unit: c.unit, NonNull: c.nonNil, Missing: c.miss, Kind: "unknown"}
		numCnt := len(c.nums)
		switch {
		case numCnt > 0 && numCnt >= c.dtCnt && numCnt >= c.txtCnt:
			s.Kind = "numeric"
			fillNumeric(&s, c.nums, opt)
			numCols = append(numCols, idx)
		case c.dtCnt > 0 && c.dtCnt >= c.txtCnt:
			s.Kind = "datetime"
		case len(c.cats) > 0:
			s.Kind = "categorical"
			s.TopValues = topValues(c.cats, 8)
			s.Unique = len(c.cats)
		case c.txtCnt > 0:
			s.Kind = "text"
			s.ExampleTexts = c.exText
		}
		rep.Cols = append(rep.Cols, s)
	}

	if rep.Processed < rep.Rows {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", rep.Processed, rep.Rows))
	}

	if len(groups) > 0 {
		out := make([]GroupResult, 0, len(groups))
		for k, ga := range groups {
			gr := GroupResult{Key: k, Size: ga.size, Metrics: map[string]NumSummary{}}
			for _, idx := range numCols {
				vals := ga.vals[idx]
				if len(vals) == 0 {
					continue
				}
				lo, _ := stats.Min(vals)
				hi, _ := stats.Max(vals)
				mean, _ := stats.Mean(vals)
				gr.Metrics[cols[idx].name] = NumSummary{Count: len(vals), Min: lo, Max: hi, Mean: mean}
			}
			out = append(out, gr)
		}
		// Largest groups first, ties by key.
		slices.SortFunc(out, func(x, y GroupResult) int {
			if c := cmp.Compare(y.Size, x.Size); c != 0 {
				return c
			}
			return cmp.Compare(x.Key, y.Key)
		})
		if len(out) > maxGroups {
			out = out[:maxGroups]
		}
		rep.Groups = out
	}

	if opt.Correlations && len(numCols) >= 2 {
		rep.Corr = correlations(rowsNum, numCols, cols)
	}
	return rep
}

func groupKey(row tabular.Row, header []string, cols []*colAcc, index map[string]int, by []string) string {
	var parts []string
	for _, name := range by {
		idx, ok := index[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		val := strings.TrimSpace(row[header[idx]])
		parts = append(parts, fmt.Sprintf("%s=%s", cols[idx].name, safeVal(val)))
	}
	return strings.Join(parts, " | ")
}

func fillNumeric(s *ColumnSummary, vals []float64, opt Options) {
	s.Min, _ = stats.Min(vals)
	s.Max, _ = stats.Max(vals)
	s.Mean, _ = stats.Mean(vals)
	s.Median, _ = stats.Median(vals)
	s.Sum, _ = stats.Sum(vals)
	if len(vals) > 1 {
		s.Std, _ = stats.StandardDeviationSample(vals)
	}
	if !opt.Outliers || len(vals) < 8 {
		return
	}
	thr := opt.OutlierThreshold
	if thr <= 0 {
		thr = 3.5
	}
	s.OutlierThreshold = thr
	mad, err := stats.MedianAbsoluteDeviation(vals)
	if err != nil || mad == 0 {
		return
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - s.Median) / mad)
		if az > thr {
			s.OutliersCount++
		}
		if az > s.OutliersMaxAbsZ {
			s.OutliersMaxAbsZ = az
		}
	}
}

func topValues(cats map[string]int, limit int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	slices.SortFunc(tops, func(x, y CategoryCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Value, y.Value)
	})
	if len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

// correlations computes pairwise Pearson r over rows where both cells are numeric.
func correlations(rows [][]float64, numCols []int, cols []*colAcc) *CorrMatrix {
	n := len(numCols)
	names := make([]string, n)
	mat := make([][]float64, n)
	for i, idx := range numCols {
		names[i] = cols[idx].name
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			var xs, ys stats.Float64Data
			for _, r := range rows {
				x, y := r[numCols[a]], r[numCols[b]]
				if math.IsNaN(x) || math.IsNaN(y) {
					continue
				}
				xs = append(xs, x)
				ys = append(ys, y)
			}
			var r float64
			if len(xs) >= 2 {
				if v, err := stats.Pearson(xs, ys); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
					r = math.Max(-1, math.Min(1, v))
				}
			}
			mat[a][b], mat[b][a] = r, r
		}
	}
	return &CorrMatrix{Columns: names, Values: mat}
}

// Markdown renders a compact report suitable for the terminal or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	r.writeHeader(&b)
	r.writeSchema(&b)
	r.writeGroups(&b)
	r.writeCorrelations(&b)
	r.writeSamples(&b)
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

func (r *Report) writeHeader(w io.Writer) {
	fmt.Fprintln(w, "[DATASET SUMMARY]")
	if r.Name != "" {
		fmt.Fprintf(w, "File: %s\n", r.Name)
	}
	if r.Encoding != "" {
		fmt.Fprintf(w, "Encoding: %s\n", r.Encoding)
	}
	switch {
	case r.Rows > 0 && r.Processed > 0 && r.Processed < r.Rows:
		fmt.Fprintf(w, "Rows: ~%d (processed %d)\n", r.Rows, r.Processed)
	case r.Rows > 0:
		fmt.Fprintf(w, "Rows: %d\n", r.Rows)
	}
	fmt.Fprintf(w, "Columns: %d\n\n", len(r.Cols))
}

func (r *Report) writeSchema(w io.Writer) {
	fmt.Fprintln(w, "[SCHEMA]")
	for _, c := range r.Cols {
		fmt.Fprintf(w, "- %s: %s (non-null %d, missing %.1f%%)%s\n", c.label(), c.Kind, c.NonNull, c.missingPct(), c.detail())
	}
}

func (c ColumnSummary) label() string {
	if c.Unit == "" {
		return safeName(c.Name)
	}
	return fmt.Sprintf("%s [%s]", safeName(c.Name), c.Unit)
}

func (c ColumnSummary) missingPct() float64 {
	total := c.NonNull + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Missing) * 100 / float64(total)
}

// detail renders the kind-specific tail of a schema line.
func (c ColumnSummary) detail() string {
	switch c.Kind {
	case "numeric":
		d := fmt.Sprintf(": min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Median, c.Std)
		if c.OutlierThreshold > 0 {
			d += fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold)
			if c.OutliersMaxAbsZ > 0 {
				d += fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ)
			}
		}
		return d
	case "categorical":
		if len(c.TopValues) == 0 {
			return ""
		}
		parts := make([]string, len(c.TopValues))
		for i, kv := range c.TopValues {
			parts[i] = fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count)
		}
		d := ": top " + strings.Join(parts, ", ")
		if c.Unique > len(c.TopValues) {
			d += fmt.Sprintf("; unique=%d", c.Unique)
		}
		return d
	case "text":
		if len(c.ExampleTexts) == 0 {
			return ""
		}
		parts := make([]string, len(c.ExampleTexts))
		for i, ex := range c.ExampleTexts {
			parts[i] = safeVal(ex)
		}
		return ": e.g. " + strings.Join(parts, " | ")
	}
	return ""
}

const (
	maxGroups       = 20
	maxGroupMetrics = 6
)

func (r *Report) writeGroups(w io.Writer) {
	if len(r.Groups) == 0 {
		return
	}
	fmt.Fprint(w, "\n[GROUP-BY SUMMARY]\n")
	for _, g := range r.Groups {
		fmt.Fprintf(w, "- %s (n=%d)\n", g.Key, g.Size)
		names := slices.Sorted(maps.Keys(g.Metrics))
		if len(names) > maxGroupMetrics {
			names = names[:maxGroupMetrics]
		}
		for _, name := range names {
			m := g.Metrics[name]
			fmt.Fprintf(w, "  • %s: mean %.4g (min %.4g, max %.4g)\n", name, m.Mean, m.Min, m.Max)
		}
	}
}

type corrPair struct {
	a, b string
	r    float64
}

const maxCorrPairs = 10

// writeCorrelations lists the strongest pairs by |r|.
func (r *Report) writeCorrelations(w io.Writer) {
	if r.Corr == nil || len(r.Corr.Columns) < 2 {
		return
	}
	cols := r.Corr.Columns
	var pairs []corrPair
	for i := range cols {
		for j := i + 1; j < len(cols); j++ {
			pairs = append(pairs, corrPair{a: cols[i], b: cols[j], r: r.Corr.Values[i][j]})
		}
	}
	slices.SortStableFunc(pairs, func(x, y corrPair) int {
		if c := cmp.Compare(math.Abs(y.r), math.Abs(x.r)); c != 0 {
			return c
		}
		return cmp.Compare(x.a+x.b, y.a+y.b)
	})
	if len(pairs) > maxCorrPairs {
		pairs = pairs[:maxCorrPairs]
	}
	fmt.Fprint(w, "\n[CORRELATIONS]\n")
	for _, p := range pairs {
		fmt.Fprintf(w, "- %s ~ %s: r=%.3f\n", p.a, p.b, p.r)
	}
}

const maxCellRunes = 80

func (r *Report) writeSamples(w io.Writer) {
	if len(r.Samples) == 0 {
		return
	}
	header := make([]string, len(r.Cols))
	rule := make([]string, len(r.Cols))
	for i, c := range r.Cols {
		header[i] = safeName(c.Name)
		rule[i] = "---"
	}
	fmt.Fprint(w, "\n[HEAD AND SAMPLE ROWS]\n")
	fmt.Fprintf(w, "| %s |\n| %s |\n", strings.Join(header, " | "), strings.Join(rule, " | "))
	for _, row := range r.Samples {
		cells := make([]string, len(r.Cols))
		for i := range cells {
			if i < len(row) {
				cells[i] = safeVal(truncateRunes(row[i], maxCellRunes))
			}
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
}

func truncateRunes(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-3]) + "..."
}

// Column returns the summary for name.
func (r *Report) Column(name string) (ColumnSummary, bool) {
	for _, c := range r.Cols {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSummary{}, false
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., 사망률 (%)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., 승차 [명]
	{regexp.MustCompile(`^(.*?)[_\s-]+(%|명|건|원)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
