package analysis

import (
	"math"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/KaramelBytes/tablescope/internal/tabular"
)

var csvRows = []string{
	"노선명,역명,승차총승객수,하차총승객수 (명),사용일자",
	`2호선,강남,"1,000",900,20250115`,
	"2호선,역삼,1100,1000,20250115",
	"1호선,서울역,950,980,20250115",
	"2호선,삼성,1050,1010,20250116",
	"1호선,시청,980,940,20250116",
	"1호선,종각,1020,1005,20250116",
	"2호선,선릉,880,870,20250117",
	"1호선,종로3가,970,,20250117",
	"2호선,잠실,5000,4800,20250117",
	"1호선,동대문,1010,1000,20250118",
}

var (
	processedOns  = []float64{1000, 1100, 950, 1050, 980, 1020, 880, 970, 5000}
	processedOffs = []float64{900, 1000, 980, 1010, 940, 1005, 870, 4800}
)

func loadFixture(t *testing.T) *tabular.Loaded {
	t.Helper()
	l, err := tabular.Load(tabular.Source{Name: "subway.csv", Data: []byte(strings.Join(csvRows, "\n"))}, tabular.LoadOptions{})
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return l
}

func TestSummarizeAndMarkdown(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleRows = 3
	opt.MaxRows = 9
	opt.GroupBy = []string{"노선명"}
	opt.Correlations = true

	rep := Summarize(loadFixture(t), opt)
	assertReport(t, rep)

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: subway.csv",
		"Encoding: utf-8",
		"Rows: ~10 (processed 9)",
		"하차총승객수 [명]: numeric",
		"사용일자: datetime",
		"outliers: 1 above |z|>3.5",
		"[GROUP-BY SUMMARY]",
		"노선명=2호선 (n=5)",
		"[CORRELATIONS]",
		"승차총승객수 ~ 하차총승객수: r=",
		"[HEAD AND SAMPLE ROWS]",
		"processed only 9/10 rows due to MaxRows",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestSummarizeEmptyTable(t *testing.T) {
	rep := Summarize(&tabular.Loaded{Source: "empty.csv", Table: tabular.New(nil)}, DefaultOptions())
	if rep.Name != "empty.csv" || len(rep.Cols) != 0 {
		t.Fatalf("unexpected report: %#v", rep)
	}
	if !strings.Contains(rep.Markdown(), "Columns: 0") {
		t.Fatalf("markdown: %s", rep.Markdown())
	}
}

func TestReadXLSXSheetSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subway.xlsx")
	if err := tabular.WriteFile(path, loadFixture(t).Table); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	byIndex, err := ReadXLSX(path, "", 1)
	if err != nil {
		t.Fatalf("ReadXLSX index: %v", err)
	}
	if byIndex.Source != "subway.xlsx:Sheet1" {
		t.Fatalf("source = %q", byIndex.Source)
	}
	if byIndex.Table.Len() != 10 || byIndex.Table.Rows[0]["역명"] != "강남" {
		t.Fatalf("unexpected rows: %#v", byIndex.Table.Rows)
	}
	if got := byIndex.Table.Rows[7]["하차총승객수 (명)"]; got != "" {
		t.Fatalf("blank cell = %q", got)
	}

	if _, err := ReadXLSX(path, "sheet1", 0); err != nil {
		t.Fatalf("ReadXLSX by name is case-insensitive: %v", err)
	}
	_, err = ReadXLSX(path, "Data", 0)
	if err == nil || !strings.Contains(err.Error(), "Available sheets: Sheet1") {
		t.Fatalf("expected missing sheet error, got %v", err)
	}
	if _, err := ReadXLSX(path, "", 3); err == nil {
		t.Fatal("expected out of range index error")
	}

	opt := DefaultOptions()
	opt.MaxRows = 9
	rep := Summarize(byIndex, opt)
	ons := columnByName(t, rep, "승차총승객수")
	checkStats(t, ons, processedOns)
}

func assertReport(t *testing.T, rep *Report) {
	t.Helper()
	if rep.Rows != 10 {
		t.Fatalf("rows = %d, want 10", rep.Rows)
	}
	if rep.Processed != 9 {
		t.Fatalf("processed = %d, want 9", rep.Processed)
	}
	if len(rep.Warnings) != 1 || rep.Warnings[0] != "processed only 9/10 rows due to MaxRows" {
		t.Fatalf("warnings = %#v", rep.Warnings)
	}
	if len(rep.Samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(rep.Samples))
	}
	expectFirst := []string{"2호선", "강남", "1,000", "900", "20250115"}
	if !equalStrings(rep.Samples[0], expectFirst) {
		t.Fatalf("first sample = %#v, want %#v", rep.Samples[0], expectFirst)
	}

	ons := columnByName(t, rep, "승차총승객수")
	checkStats(t, ons, processedOns)
	count, maxZ := robustOutlierStats(processedOns, 3.5)
	if ons.OutliersCount != count || count != 1 {
		t.Fatalf("ons outliers = %d, want %d", ons.OutliersCount, count)
	}
	if !almostEqual(ons.OutliersMaxAbsZ, maxZ, 1e-6) {
		t.Fatalf("ons max |z| = %f, want %f", ons.OutliersMaxAbsZ, maxZ)
	}

	offs := columnByName(t, rep, "하차총승객수")
	if offs.Unit != "명" {
		t.Fatalf("offs unit = %q", offs.Unit)
	}
	if offs.Missing != 1 {
		t.Fatalf("offs missing = %d, want 1", offs.Missing)
	}
	checkStats(t, offs, processedOffs)

	if date := columnByName(t, rep, "사용일자"); date.Kind != "datetime" {
		t.Fatalf("date kind = %q", date.Kind)
	}
	station := columnByName(t, rep, "역명")
	if station.Kind != "categorical" || station.Unique != 9 || len(station.TopValues) != 8 {
		t.Fatalf("station = %#v", station)
	}
	line := columnByName(t, rep, "노선명")
	if line.TopValues[0].Value != "2호선" || line.TopValues[0].Count != 5 {
		t.Fatalf("line top = %#v", line.TopValues)
	}

	if len(rep.Groups) != 2 {
		t.Fatalf("groups len = %d, want 2", len(rep.Groups))
	}
	groupA, groupB := rep.Groups[0], rep.Groups[1]
	if groupA.Key != "노선명=2호선" || groupA.Size != 5 {
		t.Fatalf("group A = %#v", groupA)
	}
	if groupB.Key != "노선명=1호선" || groupB.Size != 4 {
		t.Fatalf("group B = %#v", groupB)
	}
	checkNumSummary(t, groupA.Metrics["승차총승객수"], subset(processedOns, []int{0, 1, 3, 6, 8}))
	checkNumSummary(t, groupB.Metrics["승차총승객수"], subset(processedOns, []int{2, 4, 5, 7}))

	if rep.Corr == nil {
		t.Fatalf("corr matrix nil")
	}
	if !equalStrings(rep.Corr.Columns, []string{"승차총승객수", "하차총승객수"}) {
		t.Fatalf("corr columns = %#v", rep.Corr.Columns)
	}
	// 종로3가 has no offs value and is left out of the pair.
	pairedOns := subset(processedOns, []int{0, 1, 2, 3, 4, 5, 6, 8})
	exp := correlation(pairedOns, processedOffs)
	if !almostEqual(rep.Corr.Values[0][1], exp, 1e-6) || !almostEqual(rep.Corr.Values[1][0], exp, 1e-6) {
		t.Fatalf("corr = %f, want %f", rep.Corr.Values[0][1], exp)
	}
}

func columnByName(t *testing.T, rep *Report, name string) ColumnSummary {
	t.Helper()
	c, ok := rep.Column(name)
	if !ok {
		t.Fatalf("column %q not found", name)
	}
	return c
}

func checkStats(t *testing.T, col ColumnSummary, vals []float64) {
	t.Helper()
	if col.Kind != "numeric" {
		t.Fatalf("%s kind = %q, want numeric", col.Name, col.Kind)
	}
	if col.NonNull != len(vals) {
		t.Fatalf("%s non-null = %d, want %d", col.Name, col.NonNull, len(vals))
	}
	if !almostEqual(col.Min, minFloat(vals), 1e-9) || !almostEqual(col.Max, maxFloat(vals), 1e-9) {
		t.Fatalf("%s min/max = %f/%f", col.Name, col.Min, col.Max)
	}
	if !almostEqual(col.Mean, mean(vals), 1e-9) {
		t.Fatalf("%s mean = %f, want %f", col.Name, col.Mean, mean(vals))
	}
	if !almostEqual(col.Std, sampleStd(vals), 1e-6) {
		t.Fatalf("%s std = %f, want %f", col.Name, col.Std, sampleStd(vals))
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	if !almostEqual(col.Median, quantileValue(sorted, 0.5), 1e-9) {
		t.Fatalf("%s median = %f", col.Name, col.Median)
	}
}

func checkNumSummary(t *testing.T, s NumSummary, vals []float64) {
	t.Helper()
	if s.Count != len(vals) {
		t.Fatalf("count = %d, want %d", s.Count, len(vals))
	}
	if !almostEqual(s.Mean, mean(vals), 1e-9) || !almostEqual(s.Min, minFloat(vals), 1e-9) || !almostEqual(s.Max, maxFloat(vals), 1e-9) {
		t.Fatalf("summary = %#v for %v", s, vals)
	}
}

func robustOutlierStats(vals []float64, threshold float64) (count int, maxAbs float64) {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	median := quantileValue(sorted, 0.5)
	dev := make([]float64, len(sorted))
	for i, v := range sorted {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad := quantileValue(dev, 0.5)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		z := math.Abs(0.6745 * (v - median) / mad)
		if z > threshold {
			count++
		}
		if z > maxAbs {
			maxAbs = z
		}
	}
	return count, maxAbs
}

func quantileValue(sortedVals []float64, q float64) float64 {
	pos := q * float64(len(sortedVals)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sortedVals[lo]
	}
	w := pos - float64(lo)
	return sortedVals[lo]*(1-w) + sortedVals[hi]*w
}

func subset(vals []float64, idxs []int) []float64 {
	out := make([]float64, len(idxs))
	for i, idx := range idxs {
		out[i] = vals[idx]
	}
	return out
}

func mean(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s / float64(len(vals))
}

func sampleStd(vals []float64) float64 {
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

func minFloat(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		m = math.Min(m, v)
	}
	return m
}

func maxFloat(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		m = math.Max(m, v)
	}
	return m
}

func correlation(a, b []float64) float64 {
	ma, mb := mean(a), mean(b)
	var num, da, db float64
	for i := range a {
		x, y := a[i]-ma, b[i]-mb
		num += x * y
		da += x * x
		db += y * y
	}
	return num / math.Sqrt(da*db)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
