// Package transform normalizes coerced tables into JSON-ready documents:
// per-row records with a total JSON projection, per-table descriptive
// metadata, and the combined dataset folding all tables together.
package transform

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/datakit/csv2json/internal/record"
	"github.com/datakit/csv2json/internal/schema"
)

// ColumnStats describes one column in table metadata. Numeric columns
// carry min/max/mean (null when the column is entirely null) and a null
// count; text columns carry the null count only.
type ColumnStats struct {
	Numeric   bool
	Min       *float64
	Max       *float64
	Mean      *float64
	NullCount int
}

func (s ColumnStats) MarshalJSON() ([]byte, error) {
	if !s.Numeric {
		return json.Marshal(struct {
			NullCount int `json:"null_count"`
		}{s.NullCount})
	}
	return json.Marshal(struct {
		Min       *float64 `json:"min"`
		Max       *float64 `json:"max"`
		Mean      *float64 `json:"mean"`
		NullCount int      `json:"null_count"`
	}{s.Min, s.Max, s.Mean, s.NullCount})
}

type TableMetadata struct {
	TableName   string                 `json:"table_name"`
	RecordCount int                    `json:"record_count"`
	ColumnCount int                    `json:"column_count"`
	Columns     []string               `json:"columns"`
	GeneratedAt string                 `json:"generated_at"`
	DataTypes   map[string]string      `json:"data_types"`
	Statistics  map[string]ColumnStats `json:"statistics"`
}

// TransformedTable is the persisted document shape for one table:
// {"metadata": ..., "data": [...]}.
type TransformedTable struct {
	Metadata TableMetadata `json:"metadata"`
	Records  []Record      `json:"data"`
}

// Transformer converts coerced tables to their JSON-ready form.
type Transformer struct {
	logger *slog.Logger
	now    func() time.Time
}

func New(logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{logger: logger, now: time.Now}
}

// Transform produces the JSON-ready document for one table. The value
// projection is total over every kind; empty-string text cells collapse to
// null here as a second, independent collapse point (coercion already
// nullifies them for file input, but programmatically built tables reach
// this stage with literal empty strings intact).
func (tr *Transformer) Transform(t *record.Table, ts *schema.TableSchema) (*TransformedTable, error) {
	records := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := newRecord(t.Columns)
		for _, col := range t.Columns {
			rec.values[col] = projectValue(row[col])
		}
		records = append(records, rec)
	}

	out := &TransformedTable{
		Metadata: tr.metadata(t, ts),
		Records:  records,
	}

	tr.logger.Info("table transformed",
		slog.String("table", t.Name),
		slog.Int("records", len(records)),
	)
	return out, nil
}

// projectValue maps a typed value to its JSON-safe scalar. Defined for
// every kind; empty text becomes null.
func projectValue(v record.Value) any {
	if v.Kind == record.KindText && v.Text == "" {
		return nil
	}
	return v.JSON()
}

func (tr *Transformer) metadata(t *record.Table, ts *schema.TableSchema) TableMetadata {
	meta := TableMetadata{
		TableName:   t.Name,
		RecordCount: len(t.Rows),
		ColumnCount: len(t.Columns),
		Columns:     t.Columns,
		GeneratedAt: tr.now().Format(time.RFC3339),
		DataTypes:   make(map[string]string, len(t.Columns)),
		Statistics:  make(map[string]ColumnStats, len(t.Columns)),
	}

	for _, name := range t.Columns {
		col, ok := ts.ColumnByName(name)
		if !ok {
			col = schema.Column{Name: name, Type: schema.TypeText}
		}
		meta.DataTypes[name] = string(col.Type)
		meta.Statistics[name] = columnStats(t, col)
	}
	return meta
}

// columnStats computes min/max/mean over non-null values of a numeric
// column. Null counting matches the projection: empty text counts as null.
func columnStats(t *record.Table, col schema.Column) ColumnStats {
	stats := ColumnStats{Numeric: col.Type.Numeric()}

	var (
		sum      float64
		count    int
		min, max float64
	)
	for _, row := range t.Rows {
		v := row[col.Name]
		if projectValue(v) == nil {
			stats.NullCount++
			continue
		}
		if !stats.Numeric {
			continue
		}
		f, ok := v.AsFloat()
		if !ok {
			continue
		}
		if count == 0 || f < min {
			min = f
		}
		if count == 0 || f > max {
			max = f
		}
		sum += f
		count++
	}

	if stats.Numeric && count > 0 {
		mean := sum / float64(count)
		stats.Min = &min
		stats.Max = &max
		stats.Mean = &mean
	}
	return stats
}
