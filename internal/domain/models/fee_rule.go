package models

import "github.com/shopspring/decimal"

// TierKind tags the shape of a Tier.
type TierKind string

const (
	TierFlat            TierKind = "flat"
	TierBoundedFlat     TierKind = "bounded_flat"
	TierPerSlice        TierKind = "per_slice"
	TierBasePlusSlice   TierKind = "base_plus_slice"
	TierRateWithMinimum TierKind = "rate_with_minimum"
)

// Instrument classes a comparison table is organised by.
const (
	InstrumentStocks = "stocks"
	InstrumentETFs   = "etfs"
	InstrumentBonds  = "bonds"
)

// InstrumentClasses is the closed set of instrument classes, in table order.
var InstrumentClasses = []string{InstrumentStocks, InstrumentETFs, InstrumentBonds}

// TransactionSizes are the canonical trade amounts (EUR) used as table columns.
var TransactionSizes = []string{"250", "500", "1000", "1500", "2000", "2500", "5000", "10000", "50000"}

// Tier is one segment of a broker's tariff. Only the fields relevant to Kind are set:
//
//   - flat:              Amount
//   - bounded_flat:      UpTo, Fee
//   - per_slice:         SliceSize, FeePerSlice, optional MaxFee
//   - base_plus_slice:   BaseUpTo, BaseFee, SliceSize, SliceFee
//   - rate_with_minimum: Rate, MinFee
type Tier struct {
	Kind TierKind

	Amount decimal.Decimal

	UpTo decimal.Decimal
	Fee  decimal.Decimal

	SliceSize   decimal.Decimal
	FeePerSlice decimal.Decimal
	MaxFee      *decimal.Decimal

	BaseUpTo decimal.Decimal
	BaseFee  decimal.Decimal
	SliceFee decimal.Decimal

	Rate   decimal.Decimal
	MinFee decimal.Decimal
}

// Flat charges the same fee for any trade size.
func Flat(amount float64) Tier {
	return Tier{Kind: TierFlat, Amount: decimal.NewFromFloat(amount)}
}

// BoundedFlat charges fee while the trade amount is <= upTo.
func BoundedFlat(upTo, fee float64) Tier {
	return Tier{Kind: TierBoundedFlat, UpTo: decimal.NewFromFloat(upTo), Fee: decimal.NewFromFloat(fee)}
}

// PerSlice charges feePerSlice for every started slice of sliceSize.
func PerSlice(sliceSize, feePerSlice float64) Tier {
	return Tier{Kind: TierPerSlice, SliceSize: decimal.NewFromFloat(sliceSize), FeePerSlice: decimal.NewFromFloat(feePerSlice)}
}

// PerSliceCapped is PerSlice with an upper bound on the slice fee.
func PerSliceCapped(sliceSize, feePerSlice, maxFee float64) Tier {
	t := PerSlice(sliceSize, feePerSlice)
	m := decimal.NewFromFloat(maxFee)
	t.MaxFee = &m
	return t
}

// BasePlusSlice charges baseFee up to baseUpTo and sliceFee per started slice above it.
func BasePlusSlice(baseUpTo, baseFee, sliceSize, sliceFee float64) Tier {
	return Tier{
		Kind:      TierBasePlusSlice,
		BaseUpTo:  decimal.NewFromFloat(baseUpTo),
		BaseFee:   decimal.NewFromFloat(baseFee),
		SliceSize: decimal.NewFromFloat(sliceSize),
		SliceFee:  decimal.NewFromFloat(sliceFee),
	}
}

// RateWithMinimum charges max(amount*rate, minFee).
func RateWithMinimum(rate, minFee float64) Tier {
	return Tier{Kind: TierRateWithMinimum, Rate: decimal.NewFromFloat(rate), MinFee: decimal.NewFromFloat(minFee)}
}

// FeeRule is the published tariff of one broker for one instrument class.
// HandlingFee is added on top of whatever the tiers produce.
type FeeRule struct {
	Broker      string
	Instrument  string
	Tiers       []Tier
	HandlingFee decimal.Decimal
}

// HiddenCosts are the recurring costs a broker charges outside of the per-trade fee.
// Percentages are expressed in percent (0.25 means 0.25%).
type HiddenCosts struct {
	CustodyFeeMonthlyPct           decimal.Decimal
	CustodyFeeMonthlyMin           decimal.Decimal
	ConnectivityFeePerExchangeYear decimal.Decimal
	ConnectivityFeeMaxPctAccount   decimal.Decimal
	SubscriptionFeeMonthly         decimal.Decimal
	FXFeePct                       decimal.Decimal
	DividendFeePct                 decimal.Decimal
	DividendFeeMin                 decimal.Decimal
	DividendFeeMax                 decimal.Decimal
	Notes                          string
}
