package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSchemas(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemas.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write schemas: %v", err)
	}
	return path
}

const validSchemas = `{
  "tables": {
    "orders": {
      "columns": {
        "order_status": {"type": "text", "position": 1, "required": true},
        "order_id": {"type": "integer", "position": 0, "required": true}
      }
    }
  }
}`

func TestLoadAndColumnOrder(t *testing.T) {
	r := NewRegistry(writeSchemas(t, validSchemas), nil)

	cols, err := r.ColumnsOf("orders")
	if err != nil {
		t.Fatalf("ColumnsOf: %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(cols))
	}
	// Ordered by position, not by document order.
	if cols[0].Name != "order_id" || cols[1].Name != "order_status" {
		t.Errorf("wrong column order: %s, %s", cols[0].Name, cols[1].Name)
	}
	if cols[0].Type != TypeInteger || cols[1].Type != TypeText {
		t.Errorf("wrong types: %s, %s", cols[0].Type, cols[1].Type)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	path := writeSchemas(t, validSchemas)
	r := NewRegistry(path, nil)
	if err := r.Load(); err != nil {
		t.Fatalf("first load: %v", err)
	}

	// Removing the file must not affect the cached registry.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := r.Load(); err != nil {
		t.Errorf("second load should use cache, got %v", err)
	}
	if _, err := r.ColumnsOf("orders"); err != nil {
		t.Errorf("ColumnsOf after cache: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	var loadErr *LoadError

	r := NewRegistry(filepath.Join(t.TempDir(), "missing.json"), nil)
	if err := r.Load(); !errors.As(err, &loadErr) {
		t.Errorf("missing file: expected LoadError, got %v", err)
	}

	r = NewRegistry(writeSchemas(t, "{not json"), nil)
	if err := r.Load(); !errors.As(err, &loadErr) {
		t.Errorf("malformed file: expected LoadError, got %v", err)
	}

	r = NewRegistry(writeSchemas(t, `{"tables": {}}`), nil)
	if err := r.Load(); !errors.As(err, &loadErr) {
		t.Errorf("empty tables: expected LoadError, got %v", err)
	}
}

func TestUnknownTable(t *testing.T) {
	r := NewRegistry(writeSchemas(t, validSchemas), nil)

	var unknown *UnknownTableError
	if _, err := r.ColumnsOf("ghosts"); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTableError, got %v", err)
	}
	if unknown.Table != "ghosts" {
		t.Errorf("error names table %q, want ghosts", unknown.Table)
	}
}

func TestValidateTableSchema(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{
			"missing type",
			`{"tables": {"t": {"columns": {"a": {"position": 0}}}}}`,
		},
		{
			"missing position",
			`{"tables": {"t": {"columns": {"a": {"type": "integer"}}}}}`,
		},
		{
			"unknown type",
			`{"tables": {"t": {"columns": {"a": {"type": "blob", "position": 0}}}}}`,
		},
		{
			"empty columns",
			`{"tables": {"t": {"columns": {}}}}`,
		},
		{
			"duplicate positions",
			`{"tables": {"t": {"columns": {"a": {"type": "integer", "position": 0}, "b": {"type": "text", "position": 0}}}}}`,
		},
		{
			"gap in positions",
			`{"tables": {"t": {"columns": {"a": {"type": "integer", "position": 0}, "b": {"type": "text", "position": 2}}}}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegistry(writeSchemas(t, tc.body), nil)
			err := r.ValidateTableSchema("t")
			var defErr *DefinitionError
			if !errors.As(err, &defErr) {
				t.Errorf("expected DefinitionError, got %v", err)
			}
		})
	}

	r := NewRegistry(writeSchemas(t, validSchemas), nil)
	if err := r.ValidateTableSchema("orders"); err != nil {
		t.Errorf("valid schema rejected: %v", err)
	}
}

func TestRequiredColumnsOf(t *testing.T) {
	body := `{
  "tables": {
    "t": {
      "columns": {
        "a": {"type": "integer", "position": 0, "required": true},
        "b": {"type": "text", "position": 1}
      }
    }
  }
}`
	r := NewRegistry(writeSchemas(t, body), nil)
	required, err := r.RequiredColumnsOf("t")
	if err != nil {
		t.Fatalf("RequiredColumnsOf: %v", err)
	}
	if len(required) != 1 || required[0] != "a" {
		t.Errorf("required = %v, want [a]", required)
	}
}

func TestTablesSorted(t *testing.T) {
	body := `{
  "tables": {
    "zebra": {"columns": {"a": {"type": "text", "position": 0}}},
    "apple": {"columns": {"a": {"type": "text", "position": 0}}}
  }
}`
	r := NewRegistry(writeSchemas(t, body), nil)
	tables, err := r.Tables()
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if len(tables) != 2 || tables[0] != "apple" || tables[1] != "zebra" {
		t.Errorf("tables = %v, want [apple zebra]", tables)
	}
	if !r.Available("zebra") || r.Available("ghost") {
		t.Error("Available gave wrong answers")
	}
}
