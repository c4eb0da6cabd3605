package records

import (
	"slices"
	"testing"
)

func TestCanonicalName(t *testing.T) {
	cases := map[string]string{
		" total budget ": ColTotalBudget,
		"TotalBudget":    ColTotalBudget,
		"EMAIL":          ColEmail,
		"date":           ColDate,
		"Time":           ColDate,
		"category":       ColCategory,
		"amount":         ColAmount,
		"Name":           ColName,
		"Review":         ColReview,
		"notes":          "Notes",
		"first name":     "First_name",
		"xYZ":            "XYZ",
		"":               "",
	}
	for in, want := range cases {
		if got := CanonicalName(in); got != want {
			t.Errorf("CanonicalName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeReordersAndBackfills(t *testing.T) {
	in := Table{
		Name:    TransactionsTable,
		Columns: []string{"amount", "notes", "user", " Date "},
		Rows: [][]string{
			{"5000", "lunch", "a@b.c", "2025-01-01"},
			{"-2000", "", "a@b.c"},
		},
	}
	got := Normalize(in, Transactions.Columns)

	if !slices.Equal(got.Columns, Transactions.Columns) {
		t.Fatalf("unexpected columns %v", got.Columns)
	}
	want := [][]string{
		{"a@b.c", "2025-01-01", "", "5000"},
		{"a@b.c", "", "", "-2000"},
	}
	for i := range want {
		if !slices.Equal(got.Rows[i], want[i]) {
			t.Fatalf("row %d = %v, want %v", i, got.Rows[i], want[i])
		}
	}
	if in.Columns[0] != "amount" || len(in.Rows[1]) != 3 {
		t.Fatalf("input table was modified")
	}
}

func TestNormalizeCollisionLeftmostWins(t *testing.T) {
	in := Table{
		Name:    ReviewsTable,
		Columns: []string{"Name", "Nama", "Review", "Ulasan", "Rating"},
		Rows:    [][]string{{"first", "second", "old text", "new text", "4"}},
	}
	got := Reviews.Normalize(in)
	if got.Cell(0, ColName) != "first" || got.Cell(0, ColReview) != "old text" {
		t.Fatalf("expected left-most columns to win, got %v", got.Rows[0])
	}
	if got.Cell(0, ColRating) != "4" || got.Cell(0, ColEmail) != "" {
		t.Fatalf("unexpected row %v", got.Rows[0])
	}
}

func TestNormalizeEmptyTable(t *testing.T) {
	got := Normalize(Table{Name: UsersTable}, Users.Columns)
	if !slices.Equal(got.Columns, Users.Columns) || got.Len() != 0 {
		t.Fatalf("expected canonical empty table, got %+v", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []Table{
		{Name: UsersTable},
		{Name: UsersTable, Columns: []string{"password", "EMAIL", "budget"}, Rows: [][]string{{"h", "a@b.c", "9"}}},
		{Name: UsersTable, Columns: []string{"Email", "Email", "total budget"}, Rows: [][]string{{"x", "y", "1"}, {}}},
		{Name: UsersTable, Columns: Users.Columns, Rows: [][]string{{"a@b.c", "h", "0", "extra"}}},
	}
	for _, schema := range Schemas() {
		for i, in := range inputs {
			once := Normalize(in, schema.Columns)
			twice := Normalize(once, schema.Columns)
			if !once.Equal(twice) {
				t.Fatalf("%s input %d: not idempotent\nonce:  %+v\ntwice: %+v", schema.Name, i, once, twice)
			}
			if !slices.Equal(once.Columns, schema.Columns) {
				t.Fatalf("%s input %d: columns %v", schema.Name, i, once.Columns)
			}
			for r, row := range once.Rows {
				if len(row) != len(schema.Columns) {
					t.Fatalf("%s input %d row %d has %d cells", schema.Name, i, r, len(row))
				}
			}
		}
	}
}

func TestSchemaFor(t *testing.T) {
	s, ok := SchemaFor("Transactions")
	if !ok || s.Name != TransactionsTable {
		t.Fatalf("unexpected %v %v", s, ok)
	}
	if _, ok := SchemaFor("Budgets"); ok {
		t.Fatalf("unknown table must not resolve")
	}
	e := Users.Empty()
	e.Columns[0] = "mutated"
	if Users.Columns[0] != ColEmail {
		t.Fatalf("Empty must not share the schema's column slice")
	}
}
