package comparison

import (
	"sort"

	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/guttosm/brokerfees/internal/fees"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Personas returns the investor archetypes used for cost-of-ownership ranking.
func Personas() []models.Persona {
	return []models.Persona{
		{
			Key:         "passive_investor",
			Name:        "Passive Investor",
			Description: "Monthly EUR500 ETF purchases. Long-term buy-and-hold strategy.",
			Trades: []models.TradeProfile{
				{Instrument: models.InstrumentETFs, Amount: decimal.NewFromInt(500), CountPerYear: 12},
			},
			PortfolioValue:       decimal.NewFromInt(30000),
			ExchangesUsed:        1,
			FXVolumeAnnual:       decimal.Zero,
			DividendIncomeAnnual: decimal.NewFromInt(600),
		},
		{
			Key:         "moderate_investor",
			Name:        "Moderate Investor",
			Description: "Mix of ETF and stock purchases. Semi-active portfolio management.",
			Trades: []models.TradeProfile{
				{Instrument: models.InstrumentETFs, Amount: decimal.NewFromInt(1000), CountPerYear: 6},
				{Instrument: models.InstrumentStocks, Amount: decimal.NewFromInt(2500), CountPerYear: 6},
			},
			PortfolioValue:       decimal.NewFromInt(50000),
			ExchangesUsed:        2,
			FXVolumeAnnual:       decimal.NewFromInt(5000),
			DividendIncomeAnnual: decimal.NewFromInt(1000),
		},
		{
			Key:         "active_trader",
			Name:        "Active Trader",
			Description: "Frequent stock trades including large positions. Active portfolio management.",
			Trades: []models.TradeProfile{
				{Instrument: models.InstrumentStocks, Amount: decimal.NewFromInt(2500), CountPerYear: 120},
				{Instrument: models.InstrumentStocks, Amount: decimal.NewFromInt(10000), CountPerYear: 24},
			},
			PortfolioValue:       decimal.NewFromInt(200000),
			ExchangesUsed:        3,
			FXVolumeAnnual:       decimal.NewFromInt(50000),
			DividendIncomeAnnual: decimal.NewFromInt(4000),
		},
	}
}

// PersonaCosts computes the annual cost of p at broker: trading fees plus
// custody, connectivity, subscription, FX and dividend costs. ok is false
// when the broker has no rule for any of the persona's trades.
func PersonaCosts(calc *fees.Calculator, broker string, p models.Persona) (models.PersonaCost, bool) {
	res := models.PersonaCost{Broker: fees.DisplayName(broker)}
	trading := decimal.Zero
	for _, tr := range p.Trades {
		fee, ok := calc.Fee(broker, tr.Instrument, tr.Amount)
		if !ok {
			continue
		}
		total := fee.Mul(decimal.NewFromInt(int64(tr.CountPerYear)))
		trading = trading.Add(total)
		res.TradingDetails = append(res.TradingDetails, models.TradeCostDetail{
			Instrument:   tr.Instrument,
			Amount:       tr.Amount,
			CountPerYear: tr.CountPerYear,
			FeePerTrade:  fee,
			Total:        total.Round(2),
		})
	}
	if len(res.TradingDetails) == 0 {
		return models.PersonaCost{}, false
	}

	hc, _ := calc.Registry().HiddenCosts(broker)

	custody := decimal.Zero
	if hc.CustodyFeeMonthlyPct.IsPositive() {
		monthly := decimal.Max(p.PortfolioValue.Mul(hc.CustodyFeeMonthlyPct).Div(hundred), hc.CustodyFeeMonthlyMin)
		custody = monthly.Mul(twelve)
	}

	connectivity := hc.ConnectivityFeePerExchangeYear.Mul(decimal.NewFromInt(int64(p.ExchangesUsed)))
	if hc.ConnectivityFeeMaxPctAccount.IsPositive() {
		connectivity = decimal.Min(connectivity, p.PortfolioValue.Mul(hc.ConnectivityFeeMaxPctAccount).Div(hundred))
	}

	subscription := hc.SubscriptionFeeMonthly.Mul(twelve)

	fx := decimal.Zero
	if hc.FXFeePct.IsPositive() && p.FXVolumeAnnual.IsPositive() {
		fx = p.FXVolumeAnnual.Mul(hc.FXFeePct).Div(hundred)
	}

	dividend := decimal.Zero
	if hc.DividendFeePct.IsPositive() && p.DividendIncomeAnnual.IsPositive() {
		dividend = p.DividendIncomeAnnual.Mul(hc.DividendFeePct).Div(hundred)
		if hc.DividendFeeMin.IsPositive() {
			dividend = decimal.Max(dividend, hc.DividendFeeMin)
		}
		if hc.DividendFeeMax.IsPositive() {
			dividend = decimal.Min(dividend, hc.DividendFeeMax)
		}
	}

	res.Trading = trading.Round(2)
	res.CustodyAnnual = custody.Round(2)
	res.ConnectivityAnnual = connectivity.Round(2)
	res.SubscriptionAnnual = subscription.Round(2)
	res.FXAnnual = fx.Round(2)
	res.DividendAnnual = dividend.Round(2)
	res.TotalAnnual = trading.Add(custody).Add(connectivity).Add(subscription).Add(fx).Add(dividend).Round(2)
	return res, true
}

// PersonaRanking is the cost of one persona at every broker that can serve
// it, cheapest first. Rank starts at 1.
type PersonaRanking struct {
	Persona models.Persona
	Costs   []models.PersonaCost
}

// RankPersonas computes PersonaCosts for every persona and broker and ranks
// brokers by total annual cost. Ties are broken by broker name. An empty
// brokers list means every broker in the registry.
func RankPersonas(calc *fees.Calculator, brokers []string) []PersonaRanking {
	if len(brokers) == 0 {
		brokers = calc.Registry().Brokers()
	}
	personas := Personas()
	out := make([]PersonaRanking, 0, len(personas))
	for _, p := range personas {
		ranking := PersonaRanking{Persona: p}
		for _, b := range brokers {
			if c, ok := PersonaCosts(calc, b, p); ok {
				ranking.Costs = append(ranking.Costs, c)
			}
		}
		sort.SliceStable(ranking.Costs, func(i, j int) bool {
			a, b := ranking.Costs[i], ranking.Costs[j]
			if !a.TotalAnnual.Equal(b.TotalAnnual) {
				return a.TotalAnnual.LessThan(b.TotalAnnual)
			}
			return a.Broker < b.Broker
		})
		for i := range ranking.Costs {
			ranking.Costs[i].Rank = i + 1
		}
		out = append(out, ranking)
	}
	return out
}
