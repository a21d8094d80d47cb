package transform

import (
	"bytes"
	"encoding/json"
	"time"
)

// CombinedTableMeta is the per-table entry in combined dataset metadata.
type CombinedTableMeta struct {
	RecordCount int      `json:"record_count"`
	Columns     []string `json:"columns"`
}

type CombinedMetadata struct {
	DatasetName  string                       `json:"dataset_name"`
	CreatedAt    string                       `json:"created_at"`
	TableCount   int                          `json:"table_count"`
	TotalRecords int                          `json:"total_records"`
	Tables       map[string]CombinedTableMeta `json:"tables"`
}

// CombinedDataset is the single-document union of all transformed tables.
// Table iteration order is the caller-supplied order, not map order.
type CombinedDataset struct {
	Metadata CombinedMetadata

	order  []string
	tables map[string][]Record
}

// TableOrder returns the table names in output order.
func (d *CombinedDataset) TableOrder() []string { return d.order }

// Records returns the records of one table.
func (d *CombinedDataset) Records(table string) []Record { return d.tables[table] }

func (d *CombinedDataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"metadata":`)
	meta, err := json.Marshal(d.Metadata)
	if err != nil {
		return nil, err
	}
	buf.Write(meta)
	buf.WriteString(`,"tables":{`)
	for i, name := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		recs, err := json.Marshal(d.tables[name])
		if err != nil {
			return nil, err
		}
		buf.Write(recs)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// Combine folds transformed tables into one combined dataset. Tables absent
// from the map are skipped; totals are additive over the included tables.
func (tr *Transformer) Combine(datasetName string, order []string, tables map[string]*TransformedTable) *CombinedDataset {
	combined := &CombinedDataset{
		Metadata: CombinedMetadata{
			DatasetName: datasetName,
			CreatedAt:   tr.now().Format(time.RFC3339),
			Tables:      make(map[string]CombinedTableMeta, len(tables)),
		},
		tables: make(map[string][]Record, len(tables)),
	}

	for _, name := range order {
		tt, ok := tables[name]
		if !ok {
			continue
		}
		combined.order = append(combined.order, name)
		combined.tables[name] = tt.Records
		combined.Metadata.TotalRecords += len(tt.Records)
		combined.Metadata.Tables[name] = CombinedTableMeta{
			RecordCount: len(tt.Records),
			Columns:     tt.Metadata.Columns,
		}
	}
	combined.Metadata.TableCount = len(combined.order)
	return combined
}
