package validate

import (
	"strings"
	"testing"

	"github.com/datakit/csv2json/internal/record"
	"github.com/datakit/csv2json/internal/schema"
)

func usersSchema() *schema.TableSchema {
	return &schema.TableSchema{
		TableName: "users",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeInteger, Position: 0, Required: true},
			{Name: "name", Type: schema.TypeText, Position: 1, Required: true},
		},
	}
}

// TestRequiredFieldNull covers the canonical case: one required text cell
// null out of two rows.
func TestRequiredFieldNull(t *testing.T) {
	table := &record.Table{
		Name:    "users",
		Columns: []string{"id", "name"},
		Rows: []record.Row{
			{"id": record.Integer(1), "name": record.Text("Alice")},
			{"id": record.Integer(2), "name": record.Null()},
		},
	}

	res := New(nil).Validate(table, usersSchema())

	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(res.Errors), res.Errors)
	}
	if !strings.Contains(res.Errors[0], "name") || !strings.Contains(res.Errors[0], "1") {
		t.Errorf("error should name column and count: %q", res.Errors[0])
	}
	if res.QualityScore != 90.0 {
		t.Errorf("quality score = %v, want 90.0", res.QualityScore)
	}
	if res.ValidRows != 1 {
		t.Errorf("valid rows = %d, want 1", res.ValidRows)
	}
	if res.TotalRows != 2 {
		t.Errorf("total rows = %d, want 2", res.TotalRows)
	}
}

func TestCleanTable(t *testing.T) {
	table := &record.Table{
		Name:    "users",
		Columns: []string{"id", "name"},
		Rows: []record.Row{
			{"id": record.Integer(1), "name": record.Text("Alice")},
		},
	}

	res := New(nil).Validate(table, usersSchema())
	if len(res.Errors)+len(res.Warnings)+len(res.Issues) != 0 {
		t.Errorf("clean table produced findings: %+v", res)
	}
	if res.QualityScore != 100.0 {
		t.Errorf("quality score = %v, want 100.0", res.QualityScore)
	}
	if res.ValidRows != 1 {
		t.Errorf("valid rows = %d, want 1", res.ValidRows)
	}
}

func TestColumnPresence(t *testing.T) {
	table := &record.Table{
		Name:    "users",
		Columns: []string{"id", "nickname"},
		Rows: []record.Row{
			{"id": record.Integer(1), "nickname": record.Text("Ally")},
		},
	}

	res := New(nil).Validate(table, usersSchema())

	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "name") {
		t.Errorf("missing column should be an error: %v", res.Errors)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "nickname") {
		t.Errorf("extra column should be a warning: %v", res.Warnings)
	}
	// Structural errors invalidate the whole table.
	if res.ValidRows != 0 {
		t.Errorf("valid rows = %d, want 0", res.ValidRows)
	}
}

// TestTypeMismatchIsIssue checks the compatibility table: a declared/actual
// mismatch is a recoverable issue, not an error.
func TestTypeMismatchIsIssue(t *testing.T) {
	table := &record.Table{
		Name:    "users",
		Columns: []string{"id", "name"},
		Rows: []record.Row{
			{"id": record.Text("one"), "name": record.Text("Alice")},
		},
	}

	res := New(nil).Validate(table, usersSchema())

	if len(res.Issues) != 1 || !strings.Contains(res.Issues[0], "id") {
		t.Fatalf("expected type issue for id, got %v", res.Issues)
	}
	if len(res.Errors) != 0 {
		t.Errorf("type mismatch must not be an error: %v", res.Errors)
	}
	if res.QualityScore != 98.0 {
		t.Errorf("quality score = %v, want 98.0", res.QualityScore)
	}
}

func TestAllNullColumnHasNoObservableType(t *testing.T) {
	ts := &schema.TableSchema{
		TableName: "t",
		Columns:   []schema.Column{{Name: "col", Type: schema.TypeInteger, Position: 0}},
	}
	table := &record.Table{
		Name:    "t",
		Columns: []string{"col"},
		Rows:    []record.Row{{"col": record.Null()}},
	}

	res := New(nil).Validate(table, ts)
	if len(res.Issues) != 0 {
		t.Errorf("all-null column should not raise type issues: %v", res.Issues)
	}
}

func TestRangeChecks(t *testing.T) {
	ts := &schema.TableSchema{
		TableName: "order_items",
		Columns: []schema.Column{
			{Name: "order_item_id", Type: schema.TypeInteger, Position: 0},
			{Name: "order_item_product_price", Type: schema.TypeFloat, Position: 1},
		},
	}
	table := &record.Table{
		Name:    "order_items",
		Columns: []string{"order_item_id", "order_item_product_price"},
		Rows: []record.Row{
			{"order_item_id": record.Integer(-1), "order_item_product_price": record.Float(9.99)},
			{"order_item_id": record.Integer(2), "order_item_product_price": record.Float(-5)},
		},
	}

	res := New(nil).Validate(table, ts)

	if len(res.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", res.Issues)
	}
	if !strings.Contains(res.Issues[0], "negative ID") {
		t.Errorf("issue 0 = %q", res.Issues[0])
	}
	if !strings.Contains(res.Issues[1], "negative price") {
		t.Errorf("issue 1 = %q", res.Issues[1])
	}
}

// TestEmptyStringWarning exercises the documented quirk: validation still
// observes literal empty strings on programmatically built tables, even
// though file coercion would have nullified them.
func TestEmptyStringWarning(t *testing.T) {
	ts := &schema.TableSchema{
		TableName: "t",
		Columns:   []schema.Column{{Name: "note", Type: schema.TypeText, Position: 0}},
	}
	table := &record.Table{
		Name:    "t",
		Columns: []string{"note"},
		Rows: []record.Row{
			{"note": record.Text("")},
			{"note": record.Text("hello")},
		},
	}

	res := New(nil).Validate(table, ts)

	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "1 empty string") {
		t.Errorf("expected empty-string warning, got %v", res.Warnings)
	}
}

// TestScoreWeights verifies the penalty ordering (error > warning > issue)
// and the floor at zero.
func TestScoreWeights(t *testing.T) {
	base := &Result{Errors: []string{}, Warnings: []string{}, Issues: []string{}}
	if s := score(base); s != 100.0 {
		t.Errorf("empty result score = %v", s)
	}

	withError := &Result{Errors: []string{"e"}}
	withWarning := &Result{Warnings: []string{"w"}}
	withIssue := &Result{Issues: []string{"i"}}
	if !(score(withError) < score(withWarning) && score(withWarning) < score(withIssue)) {
		t.Errorf("penalty ordering broken: %v %v %v",
			score(withError), score(withWarning), score(withIssue))
	}

	many := &Result{Errors: make([]string, 20)}
	if s := score(many); s != 0.0 {
		t.Errorf("score must clamp at 0, got %v", s)
	}
}

func TestSummarize(t *testing.T) {
	results := []*Result{
		{TableName: "a", TotalRows: 10, ValidRows: 10, QualityScore: 100},
		{TableName: "b", TotalRows: 5, ValidRows: 4, QualityScore: 90, Errors: []string{"e"}},
		{TableName: "c", TotalRows: 2, ValidRows: 2, QualityScore: 95, Warnings: []string{"w"}},
	}

	s := Summarize(results)
	if s.TablesValidated != 3 {
		t.Errorf("tables validated = %d", s.TablesValidated)
	}
	if s.OverallQualityScore != 95.0 {
		t.Errorf("overall score = %v, want 95.0", s.OverallQualityScore)
	}
	if s.TotalRows != 17 || s.TotalValidRows != 16 {
		t.Errorf("totals = %d/%d", s.TotalRows, s.TotalValidRows)
	}
	if s.TablesWithErrors != 1 || s.TablesWithWarnings != 1 {
		t.Errorf("error/warning tables = %d/%d", s.TablesWithErrors, s.TablesWithWarnings)
	}

	empty := Summarize(nil)
	if empty.TablesValidated != 0 || empty.OverallQualityScore != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}
