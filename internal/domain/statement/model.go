// Package statement defines the canonical transaction model produced by the
// ingestion pipeline and the error taxonomy shared across its stages.
package statement

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned when the source file carries no category column
// or the cell is empty.
const DefaultCategory = "Other"

// Type tags a transaction as money in or money out. It is always derived from
// the sign of Amount, never taken from a source column.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// TypeOf derives the transaction type from a signed amount.
func TypeOf(amount decimal.Decimal) Type {
	if amount.Sign() > 0 {
		return TypeIncome
	}
	return TypeExpense
}

// Date is a timezone-naive calendar day. Bank statements are day-granular, so
// the time-of-day component is always midnight UTC.
type Date struct {
	time.Time
}

// NewDate builds a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// String renders the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Transaction is the canonical record produced for each surviving statement
// row. Amount is signed in the reporting currency: positive means income,
// negative means expense. The sequence returned by a parse preserves original
// file row order; any chronological sorting is a display concern.
type Transaction struct {
	ID       string          `json:"id"`
	Date     Date            `json:"date"`
	Index    int             `json:"index"`
	Amount   decimal.Decimal `json:"amount"`
	Type     Type            `json:"type"`
	Category string          `json:"category"`
	Account  string          `json:"account,omitempty"`
	Note     string          `json:"note,omitempty"`
	Tags     string          `json:"tags,omitempty"`

	// OriginalAmount/OriginalCurrency are populated only when the source row
	// was stated in a currency other than the reporting one.
	OriginalAmount   *decimal.Decimal `json:"originalAmount,omitempty"`
	OriginalCurrency string           `json:"originalCurrency,omitempty"`
}
