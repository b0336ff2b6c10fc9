package core

import (
	"errors"
	"strings"
	"time"
)

// DefaultCategory is attached to expenses whose category was never assigned
// by the classifier.
const DefaultCategory = "other"

type (
	// Date is a calendar date without a time component. It marshals as
	// "2006-01-02" to match bank-statement exports.
	Date struct {
		time.Time
	}

	// Transaction is a single bank-statement row. The engine treats it as
	// read-only: Withdraw and Deposit are the non-negative debited/credited
	// amounts, and the net effect is Deposit - Withdraw. Date and Reference
	// are carried for upstream consumers (classifier, future time windowing)
	// and are ignored by the insight computation.
	Transaction struct {
		Date      Date    `json:"date"`
		Reference string  `json:"reference"`
		Withdraw  float64 `json:"withdraw"`
		Deposit   float64 `json:"deposit"`
		Category  string  `json:"category,omitempty"`
	}

	// Params are the three scalar inputs of the insight engine. Callers
	// validate them before invoking the engine.
	Params struct {
		MonthlyBudget   float64
		CurrentBalance  float64
		AvgDailyExpense float64
	}
)

var (
	ErrNegativeBudget          = errors.New("monthly_budget must not be negative")
	ErrNegativeAvgDailyExpense = errors.New("avg_daily_expense must not be negative")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		// Tolerate full timestamps from clients that serialize time.Time.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	d.Time = t
	return nil
}

// Validate rejects out-of-contract scalar parameters. The engine itself is
// total; this is the boundary check the transport layer runs first.
func (p Params) Validate() error {
	if p.MonthlyBudget < 0 {
		return ErrNegativeBudget
	}
	if p.AvgDailyExpense < 0 {
		return ErrNegativeAvgDailyExpense
	}
	return nil
}

// Normalize returns a fresh slice with implicit defaults filled in: an
// absent or blank category becomes DefaultCategory. Defaults are applied
// here, at the record-construction boundary, so the computation stages stay
// free of null checks. The input slice is never modified.
func Normalize(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, tx := range txs {
		if strings.TrimSpace(tx.Category) == "" {
			tx.Category = DefaultCategory
		}
		out[i] = tx
	}
	return out
}
