package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidationError describes one table cell that disagrees with the fee calculator.
// Observed is zero when the cell could not be parsed.
type ValidationError struct {
	Broker      string
	Instrument  string
	Amount      string
	Observed    decimal.Decimal
	Expected    decimal.Decimal
	Explanation string
}

// ValidationResult summarises a validation pass over a comparison table.
//
// Valid is true exactly when Errors is empty. A result with Checked == 0 is
// vacuously valid: nothing in the table had ground truth to compare against.
type ValidationResult struct {
	Valid   bool
	Errors  []ValidationError
	Checked int
	Passed  int
}

// Checkable reports whether at least one cell was compared against ground truth.
func (r ValidationResult) Checkable() bool {
	return r.Checked > 0
}

// ValidationRun is a persisted validation result.
type ValidationRun struct {
	ID         string
	Source     string
	Valid      bool
	Checked    int
	Passed     int
	ErrorCount int
	CreatedAt  time.Time
	Errors     []ValidationError
}
