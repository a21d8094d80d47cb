// Package coerce converts raw, position-indexed cells into typed, null-aware
// values per the table's schema. This is where the three incompatible null
// representations (null-token strings, missing values, float NaN) collapse
// into the single Null kind.
package coerce

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/datakit/csv2json/internal/record"
	"github.com/datakit/csv2json/internal/schema"
)

// RawRow is one position-indexed row as delivered by a record source.
// Cells are usually strings but may already be typed primitives.
type RawRow []any

// NullTokens are the string spellings recognized as missing values for
// every logical type. The empty string is deliberately included: an empty
// text cell is not a distinct valid value.
var NullTokens = []string{"", "NULL", "null", "None"}

// Coercer turns raw rows into a record.Table according to a table schema.
type Coercer struct {
	logger *slog.Logger
	tokens map[string]struct{}
}

func New(logger *slog.Logger) *Coercer {
	if logger == nil {
		logger = slog.Default()
	}
	tokens := make(map[string]struct{}, len(NullTokens))
	for _, t := range NullTokens {
		tokens[t] = struct{}{}
	}
	return &Coercer{logger: logger, tokens: tokens}
}

// Coerce maps every raw row onto the schema by position. It fails fast on
// the first shape or conversion problem; a bad cell poisons the whole
// table rather than producing a silently partial one.
func (c *Coercer) Coerce(table string, rows []RawRow, ts *schema.TableSchema) (*record.Table, error) {
	columns := ts.Columns
	out := &record.Table{
		Name:    table,
		Columns: ts.ColumnNames(),
		Rows:    make([]record.Row, 0, len(rows)),
	}

	for i, raw := range rows {
		if len(raw) != len(columns) {
			return nil, &RowShapeError{
				Table:    table,
				RowIndex: i,
				Expected: len(columns),
				Actual:   len(raw),
			}
		}

		row := make(record.Row, len(columns))
		for pos, col := range columns {
			v, err := c.cell(table, col, i, raw[pos])
			if err != nil {
				return nil, err
			}
			row[col.Name] = v
		}
		out.Rows = append(out.Rows, row)
	}

	c.logger.Debug("table coerced",
		slog.String("table", table),
		slog.Int("rows", len(out.Rows)),
		slog.Int("columns", len(columns)),
	)
	return out, nil
}

func (c *Coercer) isNullToken(s string) bool {
	_, ok := c.tokens[s]
	return ok
}

// cell converts one raw cell to the column's logical type. Raw cells are
// strings from delimited files in the common case, but typed primitives
// from programmatic sources are accepted without a round-trip through text.
func (c *Coercer) cell(table string, col schema.Column, rowIndex int, raw any) (record.Value, error) {
	if raw == nil {
		return record.Null(), nil
	}

	switch v := raw.(type) {
	case string:
		return c.cellString(table, col, rowIndex, v)
	case record.Value:
		return c.cellTyped(table, col, rowIndex, v)
	case int:
		return c.cellTyped(table, col, rowIndex, record.Integer(int64(v)))
	case int64:
		return c.cellTyped(table, col, rowIndex, record.Integer(v))
	case float64:
		if math.IsNaN(v) {
			return record.Null(), nil
		}
		return c.cellTyped(table, col, rowIndex, record.Float(v))
	case bool:
		return record.Null(), &CoercionError{
			Table: table, Column: col.Name, RowIndex: rowIndex, Value: raw,
			Reason: "boolean cells are not supported",
		}
	default:
		return record.Null(), &CoercionError{
			Table: table, Column: col.Name, RowIndex: rowIndex, Value: raw,
			Reason: "unsupported cell type",
		}
	}
}

func (c *Coercer) cellString(table string, col schema.Column, rowIndex int, s string) (record.Value, error) {
	if c.isNullToken(s) {
		return record.Null(), nil
	}

	switch col.Type {
	case schema.TypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return record.Null(), &CoercionError{
				Table: table, Column: col.Name, RowIndex: rowIndex, Value: s,
				Reason: "not a valid integer",
			}
		}
		return record.Integer(n), nil

	case schema.TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return record.Null(), &CoercionError{
				Table: table, Column: col.Name, RowIndex: rowIndex, Value: s,
				Reason: "not a valid float",
			}
		}
		// NaN never survives coercion; it is not a distinct observable
		// state downstream.
		if math.IsNaN(f) {
			return record.Null(), nil
		}
		return record.Float(f), nil

	default:
		return record.Text(s), nil
	}
}

// cellTyped reconciles an already-typed value with the declared column
// type, normalizing integral floats into integers the way JSON round-trips
// demand.
func (c *Coercer) cellTyped(table string, col schema.Column, rowIndex int, v record.Value) (record.Value, error) {
	if v.IsNull() {
		return record.Null(), nil
	}

	switch col.Type {
	case schema.TypeInteger:
		switch v.Kind {
		case record.KindInteger:
			return v, nil
		case record.KindFloat:
			if v.Float == math.Trunc(v.Float) {
				return record.Integer(int64(v.Float)), nil
			}
			return record.Null(), &CoercionError{
				Table: table, Column: col.Name, RowIndex: rowIndex, Value: v.Float,
				Reason: "expected integer, got float with decimal",
			}
		}
	case schema.TypeFloat:
		switch v.Kind {
		case record.KindFloat:
			return v, nil
		case record.KindInteger:
			return record.Float(float64(v.Int)), nil
		}
	case schema.TypeText:
		if v.Kind == record.KindText {
			if c.isNullToken(v.Text) {
				return record.Null(), nil
			}
			return v, nil
		}
	}

	return record.Null(), &CoercionError{
		Table: table, Column: col.Name, RowIndex: rowIndex, Value: v.JSON(),
		Reason: "expected " + string(col.Type) + ", got " + v.Kind.String(),
	}
}
