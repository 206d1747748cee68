// Package transactions is the expense repository: CRUD over a single
// serialized collection of records kept in the keyed store, plus the demo
// seed, receipt references, summaries and exports built on top of it.
package transactions

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "expensely/internal/errors"
)

// DateLayout is the calendar-date wire format.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time component, kept in its wire form.
type Date string

// ParseDate validates s as YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidDate, err)
	}
	return Date(s), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time returns midnight UTC of d; the zero time if d is malformed.
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

// Month returns the YYYY-MM prefix of d.
func (d Date) Month() string {
	if len(d) < 7 {
		return ""
	}
	return string(d[:7])
}

// Record is one stored transaction. ID never changes after creation.
type Record struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category"`
	Date       Date            `json:"date"`
	Notes      string          `json:"notes"`
	ReceiptURL string          `json:"receiptUrl"`
}

// Fields are the caller-supplied values of a new record.
type Fields struct {
	Amount     decimal.Decimal
	Category   string
	Date       Date
	Notes      string
	ReceiptURL string
}

// Validate checks the data-model invariants a record must hold.
func (f Fields) Validate() error {
	if f.Date != "" {
		if _, err := ParseDate(string(f.Date)); err != nil {
			return err
		}
	}
	return nil
}

// Patch is a partial update. A nil field is absent and keeps its current
// value; a non-nil field overwrites it, so a pointer to "" clears a text field.
type Patch struct {
	Amount     *decimal.Decimal
	Category   *string
	Date       *Date
	Notes      *string
	ReceiptURL *string
}

// Empty reports whether the patch sets no field.
func (p Patch) Empty() bool {
	return p.Amount == nil && p.Category == nil && p.Date == nil && p.Notes == nil && p.ReceiptURL == nil
}

// Validate checks the fields the patch sets.
func (p Patch) Validate() error {
	if p.Date != nil {
		if _, err := ParseDate(string(*p.Date)); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns r with the patch's set fields merged over it.
func (p Patch) Apply(r Record) Record {
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.ReceiptURL != nil {
		r.ReceiptURL = *p.ReceiptURL
	}
	return r
}
