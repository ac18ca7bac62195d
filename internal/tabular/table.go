package tabular

// Row maps a column name to its raw cell value.
type Row map[string]string

// Table is an ordered header plus rows in source order. Cells are kept as the
// strings found in the source; numeric and date interpretation happens in the
// helpers that need it.
type Table struct {
	Header []string
	Rows   []Row
}

// New returns an empty table with a copy of the given header.
func New(header []string) *Table {
	h := make([]string, len(header))
	copy(h, header)
	return &Table{Header: h}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Has reports whether col is one of the table's columns.
func (t *Table) Has(col string) bool {
	if t == nil {
		return false
	}
	for _, h := range t.Header {
		if h == col {
			return true
		}
	}
	return false
}

// Append adds a row. Columns missing from r read back as "".
func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// Column returns the values of col in row order.
func (t *Table) Column(col string) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col]
	}
	return out
}

// Records returns the rows as string slices ordered by the header.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]string, len(t.Header))
		for j, h := range t.Header {
			rec[j] = r[h]
		}
		out[i] = rec
	}
	return out
}

// WithRows returns a table sharing t's header and holding rows.
func (t *Table) WithRows(rows []Row) *Table {
	out := New(t.Header)
	out.Rows = rows
	return out
}
