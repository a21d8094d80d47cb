package schema

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

// Registry loads table schemas from a JSON document and serves them to the
// rest of the pipeline. The document is parsed once and cached for the
// lifetime of the registry; construct one per run and inject it.
type Registry struct {
	path   string
	logger *slog.Logger

	doc   *schemaDocument
	built map[string]*TableSchema
}

// schemaDocument mirrors the on-disk layout:
//
//	{"tables": {"orders": {"columns": {"order_id": {"type": "integer", "position": 0, "required": true}}}}}
//
// Type and position are pointers so that absent keys are distinguishable
// from zero values when the definition is checked.
type schemaDocument struct {
	Tables map[string]schemaTable `json:"tables"`
}

type schemaTable struct {
	Columns map[string]schemaColumn `json:"columns"`
}

type schemaColumn struct {
	Type     *string `json:"type"`
	Position *int    `json:"position"`
	Required bool    `json:"required"`
}

func NewRegistry(path string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		path:   path,
		logger: logger,
		built:  make(map[string]*TableSchema),
	}
}

// Load reads and parses the schema document. It is idempotent: after the
// first successful call the cached result is reused.
func (r *Registry) Load() error {
	if r.doc != nil {
		return nil
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		return &LoadError{Path: r.path, Reason: err}
	}

	var doc schemaDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &LoadError{Path: r.path, Reason: err}
	}
	if len(doc.Tables) == 0 {
		return &LoadError{Path: r.path, Reason: fmt.Errorf("no tables defined")}
	}

	r.doc = &doc
	r.logger.Info("schemas loaded",
		slog.String("path", r.path),
		slog.Int("tables", len(doc.Tables)),
	)
	return nil
}

// Tables returns all registered table names, sorted.
func (r *Registry) Tables() ([]string, error) {
	if err := r.Load(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(r.doc.Tables))
	for name := range r.doc.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Available reports whether a table is registered.
func (r *Registry) Available(table string) bool {
	if err := r.Load(); err != nil {
		return false
	}
	_, ok := r.doc.Tables[table]
	return ok
}

// SchemaOf returns the ordered schema for a table, building and caching it
// on first use.
func (r *Registry) SchemaOf(table string) (*TableSchema, error) {
	if err := r.Load(); err != nil {
		return nil, err
	}
	if s, ok := r.built[table]; ok {
		return s, nil
	}

	raw, ok := r.doc.Tables[table]
	if !ok {
		return nil, &UnknownTableError{Table: table}
	}
	s, err := buildSchema(table, raw)
	if err != nil {
		return nil, err
	}
	r.built[table] = s
	return s, nil
}

// ColumnsOf returns the table's column definitions in position order.
func (r *Registry) ColumnsOf(table string) ([]Column, error) {
	s, err := r.SchemaOf(table)
	if err != nil {
		return nil, err
	}
	return s.Columns, nil
}

// RequiredColumnsOf returns the names of the table's required columns.
func (r *Registry) RequiredColumnsOf(table string) ([]string, error) {
	s, err := r.SchemaOf(table)
	if err != nil {
		return nil, err
	}
	return s.RequiredColumns(), nil
}

// ValidateTableSchema checks a table's definition before any row is read:
// every column must carry a type and a position, the type must be known,
// positions must be unique and contiguous from 0, and the column set must
// be non-empty.
func (r *Registry) ValidateTableSchema(table string) error {
	if err := r.Load(); err != nil {
		return err
	}
	raw, ok := r.doc.Tables[table]
	if !ok {
		return &UnknownTableError{Table: table}
	}
	if _, err := buildSchema(table, raw); err != nil {
		return err
	}
	return nil
}

func buildSchema(table string, raw schemaTable) (*TableSchema, error) {
	if len(raw.Columns) == 0 {
		return nil, &DefinitionError{Table: table, Reason: "empty columns configuration"}
	}

	cols := make([]Column, 0, len(raw.Columns))
	for name, def := range raw.Columns {
		if def.Type == nil {
			return nil, &DefinitionError{Table: table, Column: name, Reason: "missing type"}
		}
		if def.Position == nil {
			return nil, &DefinitionError{Table: table, Column: name, Reason: "missing position"}
		}
		lt := LogicalType(*def.Type)
		if !lt.Known() {
			return nil, &DefinitionError{
				Table:  table,
				Column: name,
				Reason: fmt.Sprintf("unknown type %q", *def.Type),
			}
		}
		cols = append(cols, Column{
			Name:     name,
			Type:     lt,
			Position: *def.Position,
			Required: def.Required,
		})
	}

	sort.Slice(cols, func(i, j int) bool { return cols[i].Position < cols[j].Position })

	// Positions must be unique and contiguous from 0 so that header-less
	// rows can be mapped by index.
	for i, col := range cols {
		if col.Position != i {
			return nil, &DefinitionError{
				Table:  table,
				Column: col.Name,
				Reason: fmt.Sprintf("positions must be contiguous from 0, got %d at index %d", col.Position, i),
			}
		}
	}

	return &TableSchema{TableName: table, Columns: cols}, nil
}
