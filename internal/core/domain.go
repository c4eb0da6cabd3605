package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Entertainment Category = "Entertainment"
	Bills         Category = "Bills"
	Salary        Category = "Salary"
	Other         Category = "Other"
)

// DateLayout is the textual form of a Date inside a table cell.
const DateLayout = "2006-01-02"

type (
	Category string

	Date struct {
		time.Time
	}

	User struct {
		Email        string
		PasswordHash string
		TotalBudget  decimal.Decimal
	}

	// Transaction amounts follow the ledger sign convention:
	// positive is an expense, negative is income.
	Transaction struct {
		User     string
		Date     Date
		Category Category
		Amount   decimal.Decimal
	}

	Review struct {
		Name   string
		Email  string
		Rating int
		Text   string
		Time   time.Time
	}
)

// Error taxonomy. Every concrete validation error wraps ErrValidation so
// callers can branch on the class with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrExternalService    = errors.New("external service error")
)

var (
	ErrMissingField    = fmt.Errorf("%w: required field is blank", ErrValidation)
	ErrDuplicateEmail  = fmt.Errorf("%w: email already registered", ErrValidation)
	ErrInvalidCategory = fmt.Errorf("%w: invalid category", ErrValidation)
	ErrInvalidAmount   = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidDate     = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidRating   = fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	ErrUnknownEmail    = fmt.Errorf("%w: email not found", ErrValidation)
	ErrWrongPassword   = fmt.Errorf("%w: wrong password", ErrValidation)
)

// Categories lists the enumerated transaction categories in display order.
func Categories() []Category {
	return []Category{Food, Transport, Entertainment, Bills, Salary, Other}
}

var categoryAliases = map[string]Category{
	"food":          Food,
	"makanan":       Food,
	"transport":     Transport,
	"transportasi":  Transport,
	"entertainment": Entertainment,
	"hiburan":       Entertainment,
	"bills":         Bills,
	"tagihan":       Bills,
	"salary":        Salary,
	"gaji":          Salary,
	"other":         Other,
	"lainnya":       Other,
}

// ParseCategory accepts the English category names and their Indonesian
// labels, case-insensitively.
func ParseCategory(s string) (Category, error) {
	if c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func (c Category) Valid() bool {
	switch c {
	case Food, Transport, Entertainment, Bills, Salary, Other:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// dateLayouts are tried in order when reading a date cell. The first one is
// what this module writes; the others cover values typed into a spreadsheet
// or written by a dataframe export with a time component.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"02/01/2006",
}

// ParseDate reads a date cell. Blank or unrecognized values return ErrInvalidDate.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Validate checks the fields a signup must carry.
func (u User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: email", ErrMissingField)
	}
	if strings.TrimSpace(u.PasswordHash) == "" {
		return fmt.Errorf("%w: password", ErrMissingField)
	}
	if u.TotalBudget.IsNegative() {
		return fmt.Errorf("%w: budget cannot be negative", ErrInvalidAmount)
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.User) == "" {
		return fmt.Errorf("%w: user", ErrMissingField)
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	return nil
}

// IsExpense reports whether the transaction spends money.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsPositive()
}

func (r Review) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if len(r.Text) > 1000 {
		return fmt.Errorf("%w: review too long (max 1000 characters)", ErrValidation)
	}
	return nil
}
