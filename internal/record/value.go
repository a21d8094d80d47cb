// Package record holds the typed, null-aware value model that flows between
// the coercion, validation and transformation stages.
package record

import "fmt"

// Kind tags a Value. Null is a first-class kind: every cell of every row
// carries exactly one Value, never an absent entry.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged union over nullable integer, float and text cells.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Text  string
}

func Null() Value           { return Value{Kind: KindNull} }
func Integer(v int64) Value { return Value{Kind: KindInteger, Int: v} }
func Float(v float64) Value { return Value{Kind: KindFloat, Float: v} }
func Text(v string) Value   { return Value{Kind: KindText, Text: v} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsFloat returns the numeric content as a float64. The second return is
// false for null and text values.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInteger:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// JSON projects the value onto a JSON-safe scalar. The projection is total:
// every kind has a defined mapping (null → nil, numbers → native numbers,
// text → string).
func (v Value) JSON() any {
	switch v.Kind {
	case KindInteger:
		return v.Int
	case KindFloat:
		return v.Float
	case KindText:
		return v.Text
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInteger:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindText:
		return v.Text
	default:
		return "NULL"
	}
}
