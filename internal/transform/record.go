package transform

import (
	"bytes"
	"encoding/json"
)

// Record is one JSON-ready row: column names in schema order mapped to
// JSON-safe scalars. Marshaling emits keys in column order rather than the
// sorted-map order encoding/json would pick on its own.
type Record struct {
	columns []string
	values  map[string]any
}

func newRecord(columns []string) Record {
	return Record{
		columns: columns,
		values:  make(map[string]any, len(columns)),
	}
}

// Get returns the value stored under a column name.
func (r Record) Get(column string) any {
	return r.values[column]
}

// Len returns the number of fields in the record.
func (r Record) Len() int { return len(r.columns) }

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
