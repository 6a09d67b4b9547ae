package fees

import (
	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/shopspring/decimal"
)

// DefaultRegistry returns the built-in Belgian broker tariffs used when no
// rule file is configured.
func DefaultRegistry() *Registry {
	b := NewBuilder()
	RegisterDefaults(b)
	reg, err := b.Build()
	if err != nil {
		// The built-in table is fixed; a failure here is a programming error.
		panic(err)
	}
	return reg
}

// RegisterDefaults adds the built-in tariffs to b.
func RegisterDefaults(b *Builder) {
	// Bolero: flat bands up to EUR2,500, then EUR15 per started EUR10,000, capped at EUR50.
	bolero := []models.Tier{
		models.BoundedFlat(250, 2.50),
		models.BoundedFlat(1000, 5.00),
		models.BoundedFlat(2500, 7.50),
		models.PerSliceCapped(10000, 15.00, 50.00),
	}
	b.Register("Bolero", models.InstrumentStocks, models.FeeRule{Tiers: bolero})
	b.Register("Bolero", models.InstrumentETFs, models.FeeRule{Tiers: bolero})
	b.Register("Bolero", models.InstrumentBonds, models.FeeRule{Tiers: []models.Tier{
		models.RateWithMinimum(0.002, 25.00),
	}})

	keytrade := []models.Tier{models.BasePlusSlice(10000, 14.95, 10000, 7.50)}
	b.Register("Keytrade Bank", models.InstrumentStocks, models.FeeRule{Tiers: keytrade})
	b.Register("Keytrade Bank", models.InstrumentETFs, models.FeeRule{Tiers: keytrade})

	degiro := models.FeeRule{Tiers: []models.Tier{models.Flat(2.00)}, HandlingFee: decimal.NewFromInt(1)}
	b.Register("Degiro Belgium", models.InstrumentStocks, degiro)
	b.Register("Degiro Belgium", models.InstrumentETFs, degiro)
	b.Register("Degiro Belgium", models.InstrumentBonds, degiro)

	ing := []models.Tier{models.RateWithMinimum(0.0035, 1.00)}
	b.Register("ING Self Invest", models.InstrumentStocks, models.FeeRule{Tiers: ing})
	b.Register("ING Self Invest", models.InstrumentETFs, models.FeeRule{Tiers: ing})
	b.Register("ING Self Invest", models.InstrumentBonds, models.FeeRule{Tiers: []models.Tier{
		models.RateWithMinimum(0.005, 50.00),
	}})

	rebel := []models.Tier{
		models.BoundedFlat(2500, 3.00),
		models.PerSlice(10000, 10.00),
	}
	b.Register("Rebel", models.InstrumentStocks, models.FeeRule{Tiers: rebel})
	b.Register("Rebel", models.InstrumentETFs, models.FeeRule{Tiers: rebel})

	b.Register("Revolut", models.InstrumentStocks, models.FeeRule{Tiers: []models.Tier{
		models.RateWithMinimum(0.0025, 1.00),
	}})

	b.RegisterHiddenCosts("Bolero", models.HiddenCosts{
		ConnectivityFeePerExchangeYear: decimal.RequireFromString("2.50"),
		Notes:                          "No custody fees for Belgian residents. Connectivity fee of EUR2.50/exchange/year.",
	})
	b.RegisterHiddenCosts("Keytrade Bank", models.HiddenCosts{
		Notes: "No account fees. Phone/international orders cost extra.",
	})
	b.RegisterHiddenCosts("Degiro Belgium", models.HiddenCosts{
		ConnectivityFeePerExchangeYear: decimal.RequireFromString("2.50"),
		ConnectivityFeeMaxPctAccount:   decimal.RequireFromString("0.25"),
		FXFeePct:                       decimal.RequireFromString("0.25"),
		Notes:                          "EUR2 commission + EUR1 handling per trade. Connectivity fee EUR2.50/exchange/year.",
	})
	b.RegisterHiddenCosts("ING Self Invest", models.HiddenCosts{
		CustodyFeeMonthlyPct: decimal.RequireFromString("0.0242"),
		CustodyFeeMonthlyMin: decimal.RequireFromString("1.50"),
		FXFeePct:             decimal.RequireFromString("0.50"),
	})
	b.RegisterHiddenCosts("Rebel", models.HiddenCosts{
		DividendFeePct: decimal.RequireFromString("1.00"),
		DividendFeeMin: decimal.RequireFromString("2.50"),
		Notes:          "No custody fees for Belgian stocks. Non-Belgian dividend collection fee. Part of Belfius.",
	})
	b.RegisterHiddenCosts("Revolut", models.HiddenCosts{
		FXFeePct: decimal.RequireFromString("0.50"),
		Notes:    "Standard plan (free): 0.25% commission, EUR1 min. FX fees above monthly limits.",
	})
}
