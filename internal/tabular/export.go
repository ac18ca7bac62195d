package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteCSV writes t as comma separated UTF-8 with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range t.Records() {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes t as a single-sheet workbook. Cells that parse as numbers
// are stored as numbers so spreadsheet sums work on the export.
func WriteXLSX(w io.Writer, t *Table, sheet string) error {
	if strings.TrimSpace(sheet) == "" {
		sheet = "Sheet1"
	}
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}
	for col, h := range t.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
	}
	for i, rec := range t.Records() {
		for col, v := range rec {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			var val any = v
			if n, ok := ParseNumber(v); ok && strings.TrimSpace(v) != "" && !strings.Contains(v, "%") {
				val = n
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// WriteFile exports t to path, choosing XLSX for ".xlsx" and CSV otherwise.
// CSV honours a trailing compression extension such as ".csv.gz".
func WriteFile(path string, t *Table) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir output dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	werr := writeTo(f, path, t)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(tmp)
		return werr
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

func writeTo(w io.Writer, path string, t *Table) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return WriteXLSX(w, t, "")
	}
	zw, closeFn, err := NewCompressedWriter(w, CompressionForPath(path))
	if err != nil {
		return err
	}
	if err := WriteCSV(zw, t); err != nil {
		return err
	}
	return closeFn()
}
