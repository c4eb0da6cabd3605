package records

import "slices"

// Table names.
const (
	UsersTable        = "Users"
	TransactionsTable = "Transactions"
	ReviewsTable      = "Reviews"
)

// Canonical column names.
const (
	ColEmail       = "Email"
	ColPassword    = "Password"
	ColTotalBudget = "Total_Budget"
	ColUser        = "User"
	ColDate        = "Tanggal"
	ColCategory    = "Kategori"
	ColAmount      = "Jumlah"
	ColName        = "Nama"
	ColRating      = "Rating"
	ColReview      = "Ulasan"
)

// Schema binds a table name to its canonical column list.
type Schema struct {
	Name    string
	Columns []string
}

var (
	Users        = Schema{Name: UsersTable, Columns: []string{ColEmail, ColPassword, ColTotalBudget}}
	Transactions = Schema{Name: TransactionsTable, Columns: []string{ColUser, ColDate, ColCategory, ColAmount}}
	// Reviews uses the Indonesian spelling; Name/Review/Time headers are
	// folded into it by the synonym table.
	Reviews = Schema{Name: ReviewsTable, Columns: []string{ColName, ColEmail, ColRating, ColReview, ColDate}}
)

// Schemas lists every table the application owns.
func Schemas() []Schema {
	return []Schema{Users, Transactions, Reviews}
}

// SchemaFor looks up a schema by table name.
func SchemaFor(name string) (Schema, bool) {
	for _, s := range Schemas() {
		if s.Name == name {
			return s, true
		}
	}
	return Schema{}, false
}

// Empty returns the canonical table with no rows.
func (s Schema) Empty() Table {
	return NewTable(s.Name, s.Columns)
}

// Matches reports whether columns already equal the canonical list.
func (s Schema) Matches(columns []string) bool {
	return slices.Equal(s.Columns, columns)
}

// Normalize coerces t into this schema, keeping the schema's table name.
func (s Schema) Normalize(t Table) Table {
	out := Normalize(t, s.Columns)
	out.Name = s.Name
	return out
}
