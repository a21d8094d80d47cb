package schema

// LogicalType is the three-way type tag declared per column,
// independent of any host representation.
type LogicalType string

const (
	TypeInteger LogicalType = "integer"
	TypeFloat   LogicalType = "float"
	TypeText    LogicalType = "text"
)

// Numeric reports whether values of this type carry a number.
func (t LogicalType) Numeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Known reports whether t is one of the declared logical types.
func (t LogicalType) Known() bool {
	switch t {
	case TypeInteger, TypeFloat, TypeText:
		return true
	}
	return false
}

type Column struct {
	Name     string      `json:"name"`
	Type     LogicalType `json:"type"`
	Position int         `json:"position"`
	Required bool        `json:"required"`
}

// TableSchema holds one table's column definitions, ordered by position.
type TableSchema struct {
	TableName string
	Columns   []Column
}

// ColumnNames returns the column names in position order.
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// RequiredColumns returns the names of columns marked required.
func (s *TableSchema) RequiredColumns() []string {
	var required []string
	for _, col := range s.Columns {
		if col.Required {
			required = append(required, col.Name)
		}
	}
	return required
}

// ColumnByName looks up a column definition by name.
func (s *TableSchema) ColumnByName(name string) (Column, bool) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}
