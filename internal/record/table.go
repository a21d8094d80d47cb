package record

// Row maps column name to its cell value. Every column of the owning
// table's schema is present in every row.
type Row map[string]Value

func (r Row) Copy() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is a coerced table: name, columns in schema order, and rows.
// It is written once by the coercion engine and read-only afterwards.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NullCount returns how many rows hold a null in the named column.
func (t *Table) NullCount(column string) int {
	n := 0
	for _, row := range t.Rows {
		if row[column].IsNull() {
			n++
		}
	}
	return n
}

// ObservedKind returns the kind of the first non-null value in the column.
// The second return is false when the column is entirely null.
func (t *Table) ObservedKind(column string) (Kind, bool) {
	for _, row := range t.Rows {
		if v := row[column]; !v.IsNull() {
			return v.Kind, true
		}
	}
	return KindNull, false
}
