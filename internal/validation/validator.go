package validation

import (
	"fmt"

	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/shopspring/decimal"
)

// Tolerance is the largest difference between a table cell and the computed
// fee that still counts as a match.
var Tolerance = decimal.RequireFromString("0.01")

// FeeSource supplies ground truth. *fees.Calculator implements it.
type FeeSource interface {
	Fee(broker, instrument string, amount decimal.Decimal) (decimal.Decimal, bool)
	Explain(broker, instrument string, amount decimal.Decimal) string
}

// Validator checks comparison tables against a FeeSource. It holds no
// mutable state and may be shared between goroutines.
type Validator struct {
	fees FeeSource
}

// NewValidator returns a Validator backed by fs.
func NewValidator(fs FeeSource) *Validator {
	return &Validator{fees: fs}
}

// Validate compares every fee cell of t with the computed fee.
//
// Cells for broker/instrument pairs without a rule, unknown keys and missing
// amount columns are skipped and do not count as checked. Unparsable cells
// are reported with a zero Observed value. Validate never fails: a table
// with nothing checkable is vacuously valid with Checked == 0.
func (v *Validator) Validate(t Table) models.ValidationResult {
	var res models.ValidationResult
	for _, row := range Rows(t) {
		for _, size := range models.TransactionSizes {
			raw, present := row.Values[size]
			if !present {
				continue
			}
			amount := decimal.RequireFromString(size)
			expected, ok := v.fees.Fee(row.Broker, row.Instrument, amount)
			if !ok {
				continue
			}
			res.Checked++

			observed, ok := ParseCell(raw)
			if !ok {
				res.Errors = append(res.Errors, models.ValidationError{
					Broker:      row.Broker,
					Instrument:  row.Instrument,
					Amount:      size,
					Observed:    decimal.Zero,
					Expected:    expected,
					Explanation: fmt.Sprintf("Could not parse table value %q", fmt.Sprint(raw)),
				})
				continue
			}
			if observed.Sub(expected).Abs().LessThanOrEqual(Tolerance) {
				res.Passed++
				continue
			}
			res.Errors = append(res.Errors, models.ValidationError{
				Broker:      row.Broker,
				Instrument:  row.Instrument,
				Amount:      size,
				Observed:    observed,
				Expected:    expected,
				Explanation: v.fees.Explain(row.Broker, row.Instrument, amount),
			})
		}
	}
	res.Valid = len(res.Errors) == 0
	return res
}
