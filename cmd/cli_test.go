package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/tablescope/internal/analysis"
	"github.com/KaramelBytes/tablescope/internal/tabular"
)

// resetFlags clears values and Changed state left over from a previous run.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

const stationsCSV = "date,line,station,on,off\n" +
	"20250115,2호선,강남,1000,900\n" +
	"20250115,2호선,잠실,1200,850\n" +
	"20250115,1호선,서울역,1500,1100\n" +
	"20250116,2호선,역삼,300,200\n"

func TestInspectDetectsKoreanCodepage(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	enc, err := tabular.Encode(stationsCSV, "cp949")
	if err != nil {
		t.Fatal(err)
	}
	in := writeFile(t, home, "stations.csv", enc)
	outPath := filepath.Join(home, "summary.md")

	out := mustRun(t, "inspect", in, "--group-by", "line", "-o", outPath)
	if !strings.Contains(out, "✓ Wrote summary") {
		t.Fatalf("unexpected output: %q", out)
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	md := string(b)
	for _, want := range []string{"[DATASET SUMMARY]", "cp949", "[GROUP-BY SUMMARY]", "2호선"} {
		if !strings.Contains(md, want) {
			t.Fatalf("summary missing %q:\n%s", want, md)
		}
	}
}

func TestInspectRejectsNoMatch(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := runCmd(t, "inspect", filepath.Join(t.TempDir(), "*.csv")); err == nil {
		t.Fatal("expected error for unmatched glob")
	}
}

func TestRankAppendsPinnedRow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	var b strings.Builder
	b.WriteString("Country,INFJ\n")
	for i := 0; i < 15; i++ {
		name := fmt.Sprintf("C%02d", i)
		if i == 12 {
			name = "South Korea"
		}
		fmt.Fprintf(&b, "%s,%d\n", name, 100-i)
	}
	in := writeFile(t, home, "countries.csv", []byte(b.String()))
	chartPath := filepath.Join(home, "rank.html")

	out := mustRun(t, "rank", in, "--key", "Country", "--metric", "INFJ", "--top", "10", "--chart", chartPath)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// heading, 11 ranked rows, chart notice
	if len(lines) != 13 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[11], "13. South Korea") || !strings.Contains(lines[11], "pinned") {
		t.Fatalf("pinned row not last: %q", lines[11])
	}
	html, err := os.ReadFile(chartPath)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if !strings.Contains(string(html), "echarts") {
		t.Fatalf("chart is not an echarts document")
	}

	out = mustRun(t, "rank", in, "--key", "Country", "--metric", "INFJ", "--top", "10", "--pin", "")
	if strings.Contains(out, "South Korea") {
		t.Fatalf("empty --pin should disable the pinned row:\n%s", out)
	}

	_, err = runCmd(t, "rank", in, "--key", "Country", "--metric", "ENTP")
	var se *tabular.SchemaError
	if !errors.As(err, &se) || se.Missing[0] != "ENTP" {
		t.Fatalf("want SchemaError for ENTP, got %v", err)
	}
}

func TestExportFiltersSortsAndCompresses(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	in := writeFile(t, home, "stations.csv", []byte(stationsCSV))

	gz := filepath.Join(home, "out", "line2.csv.gz")
	mustRun(t, "export", in, "--where", "line=2호선", "--where", "date=20250115", "--sort", "on", "--desc", "--out", gz)
	l, err := tabular.LoadFile(gz, tabular.LoadOptions{})
	if err != nil {
		t.Fatalf("reload export: %v", err)
	}
	if l.Compression != tabular.CompressionGZ {
		t.Fatalf("compression = %q", l.Compression)
	}
	got := l.Table.Column("station")
	if strings.Join(got, ",") != "잠실,강남" {
		t.Fatalf("stations = %v", got)
	}

	xlsx := filepath.Join(home, "all.xlsx")
	mustRun(t, "export", in, "--sort", "off", "--out", xlsx)
	xl, err := analysis.ReadXLSX(xlsx, "", 1)
	if err != nil {
		t.Fatalf("read xlsx: %v", err)
	}
	if first := xl.Table.Column("station")[0]; first != "역삼" {
		t.Fatalf("ascending sort by off: first = %s", first)
	}

	out := mustRun(t, "export", in, "--where", "line=1호선")
	if out != "date,line,station,on,off\n20250115,1호선,서울역,1500,1100\n" {
		t.Fatalf("stdout export = %q", out)
	}

	if _, err := runCmd(t, "export", in, "--where", "노선=2호선"); err == nil {
		t.Fatal("expected schema error for unknown column")
	}
	if _, err := runCmd(t, "export", in, "--where", "line"); err == nil {
		t.Fatal("expected error for malformed --where")
	}
}

func TestConfigSetAndShow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	mustRun(t, "config", "set", "top_n", "7")
	mustRun(t, "config", "set", "encodings", "utf-8, cp949")
	out := mustRun(t, "config", "show")
	if !strings.Contains(out, "top_n: 7") {
		t.Fatalf("show missing top_n:\n%s", out)
	}
	if !strings.Contains(out, "- cp949") || strings.Contains(out, "latin1") {
		t.Fatalf("encodings not saved:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(home, ".tablescope", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	if _, err := runCmd(t, "config", "set", "pinned_color", "red"); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := runCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatal("expected unknown key error")
	}
}
