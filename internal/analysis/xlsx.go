package analysis

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tablescope/internal/tabular"
)

// ReadXLSX loads one sheet of a workbook as a table. If sheetName is empty and
// sheetIndex <= 0, it defaults to the first sheet. sheetIndex is 1-based.
// Header cells are trimmed and short rows padded like CSV input.
func ReadXLSX(path string, sheetName string, sheetIndex int) (*tabular.Loaded, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	target := ""
	if sheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, sheetName) {
				target = s
				break
			}
		}
		if target == "" {
			return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				sheetName, filepath.Base(path), strings.Join(sheets, ", "))
		}
	} else {
		idx := sheetIndex
		if idx <= 0 {
			idx = 1
		}
		if idx > len(sheets) {
			return nil, fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", idx, len(sheets))
		}
		target = sheets[idx-1]
	}

	rows, err := f.GetRows(target)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", target, err)
	}
	name := filepath.Base(path) + ":" + target
	if len(rows) == 0 {
		return &tabular.Loaded{Source: name, Table: tabular.New(nil), Encoding: "xlsx"}, nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	t := tabular.New(header)
	for _, rec := range rows[1:] {
		r := make(tabular.Row, len(header))
		for i, h := range header {
			if i < len(rec) {
				r[h] = rec[i]
			} else {
				r[h] = ""
			}
		}
		t.Append(r)
	}
	return &tabular.Loaded{Source: name, Table: t, Encoding: "xlsx"}, nil
}
