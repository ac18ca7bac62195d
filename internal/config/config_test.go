package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != ":8501" || c.TopN != 10 || c.PinnedKey != "South Korea" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if len(c.Encodings) != 4 || c.Encodings[0] != "utf-8" {
		t.Fatalf("encodings = %v", c.Encodings)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c := Defaults()
	c.PinnedKey = "Japan"
	c.SubwayTopN = 30
	if err := Save(c, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".tablescope", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.PinnedKey != "Japan" || got.SubwayTopN != 30 {
		t.Fatalf("round trip lost values: %+v", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9000\"\ntop_n: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TABLESCOPE_TOP_N", "12")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != ":9000" {
		t.Fatalf("addr = %q want :9000", c.Addr)
	}
	if c.TopN != 12 {
		t.Fatalf("top_n = %d want env value 12", c.TopN)
	}
}

func TestExplicitMissingFileFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Global){
		"encoding": func(c *Global) { c.Encodings = []string{"utf-8", "klingon"} },
		"color":    func(c *Global) { c.PinnedColor = "red" },
		"window":   func(c *Global) { c.DateMin, c.DateMax = "2025-12-31", "2025-01-01" },
		"bad date": func(c *Global) { c.DateMin = "2025/01/01" },
		"top n":    func(c *Global) { c.TopN = 0 },
	}
	for name, mutate := range cases {
		c := Defaults()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestPathResolvesAgainstDataDir(t *testing.T) {
	c := Defaults()
	c.DataDir = "/srv/data"
	if got := c.Path("subway.csv"); got != filepath.Join("/srv/data", "subway.csv") {
		t.Fatalf("Path = %q", got)
	}
	if got := c.Path("/abs/x.csv"); got != "/abs/x.csv" {
		t.Fatalf("absolute path changed: %q", got)
	}
}
