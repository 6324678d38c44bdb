package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fee term payment plans. Only the scheduled plans generate fee-due lines at
// enrollment; other plans are handled downstream by the billing subsystem.
const (
	FeeTermFixedDays = "fixed_days"
	FeeTermFixedDate = "fixed_date"
)

// FeeTerm is a payment-plan definition: a set of lines splitting the total
// fee into installments by percentage.
type FeeTerm struct {
	ID       int64           `json:"id" db:"id"`
	Name     string          `json:"name" db:"name"`
	Plan     string          `json:"plan" db:"plan"`
	Discount decimal.Decimal `json:"discount" db:"discount"`
	Active   bool            `json:"active" db:"active"`

	Lines []FeeTermLine `json:"lines,omitempty"`
}

// FeeTermLine is one installment: Value percent of the total fee, due either
// on the explicit DueDate or DueDays after the fees start date.
type FeeTermLine struct {
	ID      int64           `json:"id" db:"id"`
	TermID  int64           `json:"termId" db:"term_id"`
	Name    string          `json:"name" db:"name"`
	Value   decimal.Decimal `json:"value" db:"value"`
	DueDays int             `json:"dueDays" db:"due_days"`
	DueDate *time.Time      `json:"dueDate,omitempty" db:"due_date"`
}

// IsScheduled reports whether the term generates per-line fee dues.
func (t *FeeTerm) IsScheduled() bool {
	return t.Plan == FeeTermFixedDays || t.Plan == FeeTermFixedDate
}
