package fees

import (
	"errors"
	"fmt"

	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidRule is returned when a rule violates the tier invariants.
	ErrInvalidRule = errors.New("invalid fee rule")
	// ErrUnknownTierKind is returned for a tier whose kind is not recognised.
	ErrUnknownTierKind = errors.New("unknown tier kind")
)

// shape is the single evaluation strategy a rule resolves to.
type shape int

const (
	shapeFlat shape = iota + 1
	shapeRate
	shapeBasePlusSlice
	shapeTiered
)

// plan is a validated, ready-to-evaluate form of a FeeRule.
type plan struct {
	shape    shape
	single   models.Tier
	bounded  []models.Tier
	slice    *models.Tier
	handling decimal.Decimal
}

// compile checks a rule against the tier invariants and resolves its shape.
//
// Accepted shapes: one flat tier; one rate_with_minimum tier; one
// base_plus_slice tier; or ascending bounded_flat tiers optionally followed
// by exactly one per_slice tier (a lone per_slice tier is allowed).
func compile(rule models.FeeRule) (plan, error) {
	p := plan{handling: rule.HandlingFee}
	if len(rule.Tiers) == 0 {
		return p, fmt.Errorf("%w: %s %s has no tiers", ErrInvalidRule, rule.Broker, rule.Instrument)
	}
	if rule.HandlingFee.IsNegative() {
		return p, fmt.Errorf("%w: %s %s has a negative handling fee", ErrInvalidRule, rule.Broker, rule.Instrument)
	}

	first := rule.Tiers[0]
	switch first.Kind {
	case models.TierFlat, models.TierRateWithMinimum, models.TierBasePlusSlice:
		if len(rule.Tiers) != 1 {
			return p, fmt.Errorf("%w: %s %s mixes a %s tier with other tiers", ErrInvalidRule, rule.Broker, rule.Instrument, first.Kind)
		}
		if err := checkTier(first); err != nil {
			return p, fmt.Errorf("%w: %s %s: %v", ErrInvalidRule, rule.Broker, rule.Instrument, err)
		}
		p.single = first
		switch first.Kind {
		case models.TierFlat:
			p.shape = shapeFlat
		case models.TierRateWithMinimum:
			p.shape = shapeRate
		default:
			p.shape = shapeBasePlusSlice
		}
		return p, nil
	case models.TierBoundedFlat, models.TierPerSlice:
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownTierKind, first.Kind)
	}

	p.shape = shapeTiered
	for i, t := range rule.Tiers {
		if err := checkTier(t); err != nil {
			return p, fmt.Errorf("%w: %s %s tier %d: %v", ErrInvalidRule, rule.Broker, rule.Instrument, i+1, err)
		}
		switch t.Kind {
		case models.TierBoundedFlat:
			if p.slice != nil {
				return p, fmt.Errorf("%w: %s %s has a bounded_flat tier after its per_slice tier", ErrInvalidRule, rule.Broker, rule.Instrument)
			}
			if n := len(p.bounded); n > 0 && !t.UpTo.GreaterThan(p.bounded[n-1].UpTo) {
				return p, fmt.Errorf("%w: %s %s bounded_flat tiers must be strictly ascending (%s after %s)",
					ErrInvalidRule, rule.Broker, rule.Instrument, t.UpTo, p.bounded[n-1].UpTo)
			}
			p.bounded = append(p.bounded, t)
		case models.TierPerSlice:
			if p.slice != nil {
				return p, fmt.Errorf("%w: %s %s has more than one per_slice tier", ErrInvalidRule, rule.Broker, rule.Instrument)
			}
			s := t
			p.slice = &s
		default:
			return p, fmt.Errorf("%w: %s %s mixes a %s tier with tiered fees", ErrInvalidRule, rule.Broker, rule.Instrument, t.Kind)
		}
	}
	return p, nil
}

// checkTier validates the constants of a single tier.
func checkTier(t models.Tier) error {
	switch t.Kind {
	case models.TierFlat:
		if t.Amount.IsNegative() {
			return errors.New("flat amount is negative")
		}
	case models.TierBoundedFlat:
		if t.UpTo.IsNegative() || t.Fee.IsNegative() {
			return errors.New("bounded_flat values must not be negative")
		}
	case models.TierPerSlice:
		if !t.SliceSize.IsPositive() || !t.FeePerSlice.IsPositive() {
			return errors.New("per_slice size and fee must be strictly positive")
		}
		if t.MaxFee != nil && !t.MaxFee.IsPositive() {
			return errors.New("per_slice cap must be strictly positive")
		}
	case models.TierBasePlusSlice:
		if !t.SliceSize.IsPositive() || !t.SliceFee.IsPositive() {
			return errors.New("base_plus_slice size and fee must be strictly positive")
		}
		if t.BaseUpTo.IsNegative() || t.BaseFee.IsNegative() {
			return errors.New("base_plus_slice base values must not be negative")
		}
	case models.TierRateWithMinimum:
		if t.Rate.IsNegative() || t.MinFee.IsNegative() {
			return errors.New("rate and minimum must not be negative")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTierKind, t.Kind)
	}
	return nil
}

// step records which part of a plan produced a fee; explanations are rendered from it.
type step struct {
	kind    models.TierKind
	tier    models.Tier
	raw     decimal.Decimal // tier result before cap and handling
	slices  int64
	capped  bool
	minimum bool
	base    bool // base_plus_slice amount within the base band
}

// evaluate applies the plan to amount. ok is false when no tier covers the
// amount (bounded tiers exhausted with no per_slice tier to fall back on).
// Such an amount is reported as absent rather than as a EUR0.00 fee, so a
// table cell for it is skipped instead of being checked against zero.
// The returned fee is rounded to cents, ties away from zero.
func (p plan) evaluate(amount decimal.Decimal) (fee decimal.Decimal, st step, ok bool) {
	switch p.shape {
	case shapeFlat:
		st = step{kind: models.TierFlat, tier: p.single, raw: p.single.Amount}
		fee = p.single.Amount

	case shapeRate:
		t := p.single
		raw := amount.Mul(t.Rate)
		st = step{kind: models.TierRateWithMinimum, tier: t, raw: raw}
		fee = raw
		if raw.LessThan(t.MinFee) {
			fee = t.MinFee
			st.minimum = true
		}

	case shapeBasePlusSlice:
		t := p.single
		st = step{kind: models.TierBasePlusSlice, tier: t}
		if amount.LessThanOrEqual(t.BaseUpTo) {
			st.base = true
			fee = t.BaseFee
		} else {
			st.slices = sliceCount(amount.Sub(t.BaseUpTo), t.SliceSize)
			fee = t.BaseFee.Add(decimal.NewFromInt(st.slices).Mul(t.SliceFee))
		}
		st.raw = fee

	case shapeTiered:
		matched := false
		for _, t := range p.bounded {
			if amount.LessThanOrEqual(t.UpTo) {
				st = step{kind: models.TierBoundedFlat, tier: t, raw: t.Fee}
				fee = t.Fee
				matched = true
				break
			}
		}
		if !matched {
			if p.slice == nil {
				return decimal.Zero, step{}, false
			}
			t := *p.slice
			st = step{kind: models.TierPerSlice, tier: t, slices: sliceCount(amount, t.SliceSize)}
			st.raw = decimal.NewFromInt(st.slices).Mul(t.FeePerSlice)
			fee = st.raw
			if t.MaxFee != nil && fee.GreaterThan(*t.MaxFee) {
				fee = *t.MaxFee
				st.capped = true
			}
		}

	default:
		return decimal.Zero, step{}, false
	}

	return fee.Add(p.handling).Round(2), st, true
}

// sliceCount is the number of started slices: a partially filled slice counts in full.
func sliceCount(amount, size decimal.Decimal) int64 {
	return amount.Div(size).Ceil().IntPart()
}
