package tabular

// AliasGroup is the ordered list of acceptable column names for one logical field.
type AliasGroup struct {
	Field   string
	Aliases []string
}

// Resolve returns the first alias that names one of columns. The order of
// columns does not matter; the order of aliases does.
func Resolve(columns []string, aliases []string) (string, bool) {
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		set[c] = struct{}{}
	}
	for _, a := range aliases {
		if _, ok := set[a]; ok {
			return a, true
		}
	}
	return "", false
}

// ResolveAll resolves every group against t's header. Fields that cannot be
// resolved are reported together in a single SchemaError, alongside the
// columns that were actually found.
func ResolveAll(t *Table, groups ...AliasGroup) (map[string]string, error) {
	var header []string
	if t != nil {
		header = t.Header
	}
	out := make(map[string]string, len(groups))
	var missing []string
	for _, g := range groups {
		col, ok := Resolve(header, g.Aliases)
		if !ok {
			missing = append(missing, g.Field)
			continue
		}
		out[g.Field] = col
	}
	if len(missing) > 0 {
		avail := make([]string, len(header))
		copy(avail, header)
		return out, &SchemaError{Missing: missing, Available: avail}
	}
	return out, nil
}
