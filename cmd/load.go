package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/tablescope/internal/analysis"
	"github.com/KaramelBytes/tablescope/internal/tabular"
)

// Shared input flags of inspect, rank and export.
type inputFlags struct {
	encodings  []string
	delimiter  string
	sheetName  string
	sheetIndex int
}

func (f *inputFlags) loadOptions() (tabular.LoadOptions, error) {
	opt := tabular.LoadOptions{Encodings: f.encodings}
	if len(opt.Encodings) == 0 {
		opt.Encodings = currentConfig().Encodings
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

// load reads a CSV (optionally compressed) or an XLSX sheet, chosen by extension.
func (f *inputFlags) load(path string) (*tabular.Loaded, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return analysis.ReadXLSX(path, f.sheetName, f.sheetIndex)
	}
	opt, err := f.loadOptions()
	if err != nil {
		return nil, err
	}
	return tabular.LoadFile(path, opt)
}

// expandInputs resolves glob patterns, keeping literal paths that exist.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}
