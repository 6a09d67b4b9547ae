package fees

import (
	"fmt"
	"os"

	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/guttosm/brokerfees/internal/logger"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape of a fee rule document. JSON documents are
// accepted as well since JSON is valid YAML.
//
//	rules:
//	  - broker: Bolero
//	    instrument: stocks
//	    handling_fee: 0
//	    tiers:
//	      - {up_to: 2500, fee: 7.50}
//	      - {per_slice: 10000, fee: 15.0, max_fee: 50.0}
//	hidden_costs:
//	  Bolero: {connectivity_fee_per_exchange_year: 2.5}
//
// max_fee may also sit on the rule itself; it then caps a per_slice tier
// that has no max_fee of its own.
type ruleFile struct {
	Rules       []ruleDoc                 `yaml:"rules"`
	HiddenCosts map[string]hiddenCostsDoc `yaml:"hidden_costs"`
}

type ruleDoc struct {
	Broker      string    `yaml:"broker"`
	Instrument  string    `yaml:"instrument"`
	Tiers       []tierDoc `yaml:"tiers"`
	HandlingFee float64   `yaml:"handling_fee"`
	// MaxFee caps the per_slice tier when that tier carries no cap of its own.
	MaxFee      *float64  `yaml:"max_fee"`
}

// tierDoc accepts the keys of every tier shape; the present keys decide the kind.
type tierDoc struct {
	Flat     *float64 `yaml:"flat"`
	UpTo     *float64 `yaml:"up_to"`
	Fee      *float64 `yaml:"fee"`
	PerSlice *float64 `yaml:"per_slice"`
	MaxFee   *float64 `yaml:"max_fee"`
	BaseUpTo *float64 `yaml:"base_up_to"`
	BaseFee  *float64 `yaml:"base_fee"`
	SliceFee *float64 `yaml:"slice_fee"`
	Rate     *float64 `yaml:"rate"`
	MinFee   *float64 `yaml:"min_fee"`
}

type hiddenCostsDoc struct {
	CustodyFeeMonthlyPct           float64 `yaml:"custody_fee_monthly_pct"`
	CustodyFeeMonthlyMin           float64 `yaml:"custody_fee_monthly_min"`
	ConnectivityFeePerExchangeYear float64 `yaml:"connectivity_fee_per_exchange_year"`
	ConnectivityFeeMaxPctAccount   float64 `yaml:"connectivity_fee_max_pct_account"`
	SubscriptionFeeMonthly         float64 `yaml:"subscription_fee_monthly"`
	FXFeePct                       float64 `yaml:"fx_fee_pct"`
	DividendFeePct                 float64 `yaml:"dividend_fee_pct"`
	DividendFeeMin                 float64 `yaml:"dividend_fee_min"`
	DividendFeeMax                 float64 `yaml:"dividend_fee_max"`
	Notes                          string  `yaml:"notes"`
}

// LoadFile reads a rule document from path and builds a Registry from it.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fee rules: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fee rules %s: %w", path, err)
	}
	logger.L().Info().Str("path", path).Int("rules", reg.Len()).Msg("fee rules loaded")
	return reg, nil
}

// Parse builds a Registry from a YAML or JSON rule document.
func Parse(data []byte) (*Registry, error) {
	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	b := NewBuilder()
	for i, rd := range doc.Rules {
		if rd.Broker == "" || rd.Instrument == "" {
			return nil, fmt.Errorf("%w: rule %d is missing broker or instrument", ErrInvalidRule, i+1)
		}
		rule := models.FeeRule{
			Broker:      rd.Broker,
			Instrument:  rd.Instrument,
			HandlingFee: decimal.NewFromFloat(rd.HandlingFee),
		}
		for j, td := range rd.Tiers {
			t, err := td.tier()
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s %s) tier %d: %w", i+1, rd.Broker, rd.Instrument, j+1, err)
			}
			if t.Kind == models.TierPerSlice && t.MaxFee == nil && rd.MaxFee != nil {
				m := decimal.NewFromFloat(*rd.MaxFee)
				t.MaxFee = &m
			}
			rule.Tiers = append(rule.Tiers, t)
		}
		b.Register(rd.Broker, rd.Instrument, rule)
	}
	for broker, hc := range doc.HiddenCosts {
		b.RegisterHiddenCosts(broker, hc.model())
	}

	reg, err := b.Build()
	if err != nil {
		return nil, err
	}
	warnAllZero(reg)
	return reg, nil
}

func (td tierDoc) tier() (models.Tier, error) {
	switch {
	case td.Flat != nil:
		return models.Flat(*td.Flat), nil
	case td.Rate != nil:
		return models.RateWithMinimum(*td.Rate, deref(td.MinFee)), nil
	case td.BaseUpTo != nil:
		if td.BaseFee == nil || td.PerSlice == nil || td.SliceFee == nil {
			return models.Tier{}, fmt.Errorf("%w: base_up_to needs base_fee, per_slice and slice_fee", ErrInvalidRule)
		}
		return models.BasePlusSlice(*td.BaseUpTo, *td.BaseFee, *td.PerSlice, *td.SliceFee), nil
	case td.UpTo != nil:
		if td.Fee == nil {
			return models.Tier{}, fmt.Errorf("%w: up_to needs fee", ErrInvalidRule)
		}
		return models.BoundedFlat(*td.UpTo, *td.Fee), nil
	case td.PerSlice != nil:
		if td.Fee == nil {
			return models.Tier{}, fmt.Errorf("%w: per_slice needs fee", ErrInvalidRule)
		}
		if td.MaxFee != nil {
			return models.PerSliceCapped(*td.PerSlice, *td.Fee, *td.MaxFee), nil
		}
		return models.PerSlice(*td.PerSlice, *td.Fee), nil
	}
	return models.Tier{}, ErrUnknownTierKind
}

func (hc hiddenCostsDoc) model() models.HiddenCosts {
	return models.HiddenCosts{
		CustodyFeeMonthlyPct:           decimal.NewFromFloat(hc.CustodyFeeMonthlyPct),
		CustodyFeeMonthlyMin:           decimal.NewFromFloat(hc.CustodyFeeMonthlyMin),
		ConnectivityFeePerExchangeYear: decimal.NewFromFloat(hc.ConnectivityFeePerExchangeYear),
		ConnectivityFeeMaxPctAccount:   decimal.NewFromFloat(hc.ConnectivityFeeMaxPctAccount),
		SubscriptionFeeMonthly:         decimal.NewFromFloat(hc.SubscriptionFeeMonthly),
		FXFeePct:                       decimal.NewFromFloat(hc.FXFeePct),
		DividendFeePct:                 decimal.NewFromFloat(hc.DividendFeePct),
		DividendFeeMin:                 decimal.NewFromFloat(hc.DividendFeeMin),
		DividendFeeMax:                 decimal.NewFromFloat(hc.DividendFeeMax),
		Notes:                          hc.Notes,
	}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// warnAllZero logs rules that charge nothing for every canonical amount,
// which almost always means the tariff was transcribed wrong.
func warnAllZero(reg *Registry) {
	for _, k := range reg.keys() {
		e := reg.entries[k]
		zero := true
		for _, size := range models.TransactionSizes {
			fee, _, ok := e.plan.evaluate(decimal.RequireFromString(size))
			if ok && !fee.IsZero() {
				zero = false
				break
			}
		}
		if zero {
			logger.L().Warn().
				Str("broker", e.rule.Broker).
				Str("instrument", e.rule.Instrument).
				Msg("fee rule evaluates to EUR0.00 for every transaction size")
		}
	}
}
