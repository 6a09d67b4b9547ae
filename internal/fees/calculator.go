package fees

import (
	"fmt"
	"strings"

	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/shopspring/decimal"
)

// Calculator computes exact trading fees from a Registry.
//
// Amounts must be non-negative. Negative amounts are not rejected; the
// result for them is whatever the matching tier arithmetic yields.
type Calculator struct {
	reg *Registry
}

// NewCalculator returns a Calculator reading from reg.
func NewCalculator(reg *Registry) *Calculator {
	return &Calculator{reg: reg}
}

// Registry returns the rule table backing the calculator.
func (c *Calculator) Registry() *Registry {
	return c.reg
}

// Quote is a computed fee together with how it was derived.
type Quote struct {
	Broker      string
	Instrument  string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Explanation string
}

// Fee returns the fee for a trade of amount, rounded to cents.
// ok is false when no rule covers (broker, instrument, amount).
func (c *Calculator) Fee(broker, instrument string, amount decimal.Decimal) (decimal.Decimal, bool) {
	e, ok := c.reg.lookup(broker, instrument)
	if !ok {
		return decimal.Zero, false
	}
	fee, _, ok := e.plan.evaluate(amount)
	return fee, ok
}

// Quote computes the fee and its explanation in one pass.
func (c *Calculator) Quote(broker, instrument string, amount decimal.Decimal) (Quote, bool) {
	e, ok := c.reg.lookup(broker, instrument)
	if !ok {
		return Quote{}, false
	}
	fee, st, ok := e.plan.evaluate(amount)
	if !ok {
		return Quote{}, false
	}
	return Quote{
		Broker:      DisplayName(broker),
		Instrument:  NormalizeInstrument(instrument),
		Amount:      amount,
		Fee:         fee,
		Explanation: explain(st, amount, e.plan.handling, fee),
	}, true
}

// Explain describes which tier produced the fee for amount and why.
func (c *Calculator) Explain(broker, instrument string, amount decimal.Decimal) string {
	q, ok := c.Quote(broker, instrument, amount)
	if !ok {
		return fmt.Sprintf("No fee rule for %s %s", broker, instrument)
	}
	return q.Explanation
}

func explain(st step, amount, handling, fee decimal.Decimal) string {
	var b strings.Builder
	t := st.tier
	switch st.kind {
	case models.TierFlat:
		fmt.Fprintf(&b, "Flat fee %s", eur(t.Amount))
	case models.TierBoundedFlat:
		fmt.Fprintf(&b, "Flat fee %s (amount %s <= %s)", eur(t.Fee), eurWhole(amount), eurWhole(t.UpTo))
	case models.TierRateWithMinimum:
		pct := t.Rate.Mul(decimal.NewFromInt(100))
		fmt.Fprintf(&b, "%s x %s%% = %s", eurWhole(amount), pct.StringFixed(2), eur(st.raw))
		if st.minimum {
			fmt.Fprintf(&b, " < %s minimum", eur(t.MinFee))
		}
	case models.TierBasePlusSlice:
		if st.base {
			fmt.Fprintf(&b, "Base fee %s (amount %s <= %s)", eur(t.BaseFee), eurWhole(amount), eurWhole(t.BaseUpTo))
		} else {
			fmt.Fprintf(&b, "%s base + %d x %s (%s remainder / %s slices)",
				eur(t.BaseFee), st.slices, eur(t.SliceFee), eurWhole(amount.Sub(t.BaseUpTo)), eurWhole(t.SliceSize))
		}
	case models.TierPerSlice:
		fmt.Fprintf(&b, "%d x %s per %s slice", st.slices, eur(t.FeePerSlice), eurWhole(t.SliceSize))
		if st.capped {
			fmt.Fprintf(&b, " = %s, capped at %s", eur(st.raw), eur(*t.MaxFee))
		}
	}
	if handling.IsPositive() {
		fmt.Fprintf(&b, " + %s handling", eur(handling))
	}
	fmt.Fprintf(&b, " -> %s", eur(fee))
	return b.String()
}

// eur renders a money value with cents, e.g. EUR7.50.
func eur(d decimal.Decimal) string {
	return "EUR" + d.StringFixed(2)
}

// eurWhole renders an amount with thousands separators and no cents when it
// is whole, e.g. EUR10,000.
func eurWhole(d decimal.Decimal) string {
	if !d.Equal(d.Truncate(0)) {
		return "EUR" + d.StringFixed(2)
	}
	s := d.Abs().Truncate(0).String()
	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "EUR" + b.String()
}
