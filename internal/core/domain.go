package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const dateLayout = "2006-01-02"

type (
	TransactionType string

	Date struct {
		time.Time
	}

	// Money is an amount in hundredths of the currency unit.
	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
	}

	// TransactionDraft is a transaction that has not been assigned an id yet.
	TransactionDraft struct {
		Description string
		Amount      Money
		Type        TransactionType
		Category    string
		Date        Date
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrNegativeBudget   = errors.New("budget must be non-negative")
)

// ParseTransactionType accepts "income" or "expense" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", ErrInvalidType
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Label returns the capitalised name used in tables ("Income", "Expense").
func (t TransactionType) Label() string {
	switch t {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	}
	return string(t)
}

// Sign is "+" for income and "-" for expense.
func (t TransactionType) Sign() string {
	if t == Income {
		return "+"
	}
	return "-"
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// InMonth reports whether d falls in the same calendar month and year as t.
func (d Date) InMonth(t time.Time) bool {
	return d.Year() == t.Year() && d.Month() == t.Month()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts plain dates and full RFC 3339 timestamps.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	if len(s) > len(dateLayout) {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return ErrInvalidDate
		}
		*d = NewDate(t.Year(), int(t.Month()), t.Day())
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (d TransactionDraft) Validate() error {
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(d.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if !d.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if err := d.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// WithID turns the draft into a stored transaction.
func (d TransactionDraft) WithID(id string) Transaction {
	return Transaction{
		ID:          id,
		Description: d.Description,
		Amount:      d.Amount,
		Type:        d.Type,
		Category:    d.Category,
		Date:        d.Date,
	}
}
