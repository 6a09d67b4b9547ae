package dto

import (
	"github.com/guttosm/brokerfees/internal/comparison"
	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/guttosm/brokerfees/internal/fees"
)

// FeeResponse represents the JSON structure returned by GET /api/v1/fees.
type FeeResponse struct {
	Broker      string  `json:"broker" example:"Bolero"`
	Instrument  string  `json:"instrument" example:"stocks"`
	Amount      float64 `json:"amount" example:"2500"`
	Fee         float64 `json:"fee" example:"7.5"`
	Explanation string  `json:"explanation" example:"Flat fee EUR7.50 (amount EUR2,500 <= EUR2,500) -> EUR7.50"`
}

// NewFeeResponse converts a calculator quote.
func NewFeeResponse(q fees.Quote) FeeResponse {
	return FeeResponse{
		Broker:      q.Broker,
		Instrument:  q.Instrument,
		Amount:      q.Amount.InexactFloat64(),
		Fee:         q.Fee.InexactFloat64(),
		Explanation: q.Explanation,
	}
}

// TradeCost is the yearly cost of one recurring trade.
type TradeCost struct {
	Instrument   string  `json:"instrument" example:"etfs"`
	Amount       float64 `json:"amount" example:"500"`
	CountPerYear int     `json:"count_per_year" example:"12"`
	FeePerTrade  float64 `json:"fee_per_trade" example:"3"`
	Total        float64 `json:"total" example:"36"`
}

// PersonaCost is the annual cost of a persona at one broker.
type PersonaCost struct {
	Broker               string      `json:"broker" example:"Degiro Belgium"`
	Rank                 int         `json:"rank" example:"1"`
	TradingCosts         float64     `json:"trading_costs" example:"36"`
	CustodyCostAnnual    float64     `json:"custody_cost_annual" example:"0"`
	ConnectivityAnnual   float64     `json:"connectivity_cost_annual" example:"2.5"`
	SubscriptionAnnual   float64     `json:"subscription_cost_annual" example:"0"`
	FXCostAnnual         float64     `json:"fx_cost_annual" example:"0"`
	DividendCostAnnual   float64     `json:"dividend_cost_annual" example:"0"`
	TotalAnnual          float64     `json:"total_annual_tco" example:"38.5"`
	TradingCostBreakdown []TradeCost `json:"trading_cost_details"`
}

// PersonaRanking lists brokers for one persona, cheapest first.
type PersonaRanking struct {
	Key         string        `json:"key" example:"passive_investor"`
	Name        string        `json:"name" example:"Passive Investor"`
	Description string        `json:"description"`
	Brokers     []PersonaCost `json:"brokers"`
}

// NewPersonaRankings converts persona rankings for the API.
func NewPersonaRankings(in []comparison.PersonaRanking) []PersonaRanking {
	out := make([]PersonaRanking, 0, len(in))
	for _, r := range in {
		pr := PersonaRanking{
			Key:         r.Persona.Key,
			Name:        r.Persona.Name,
			Description: r.Persona.Description,
			Brokers:     make([]PersonaCost, 0, len(r.Costs)),
		}
		for _, c := range r.Costs {
			pr.Brokers = append(pr.Brokers, newPersonaCost(c))
		}
		out = append(out, pr)
	}
	return out
}

func newPersonaCost(c models.PersonaCost) PersonaCost {
	pc := PersonaCost{
		Broker:               c.Broker,
		Rank:                 c.Rank,
		TradingCosts:         c.Trading.InexactFloat64(),
		CustodyCostAnnual:    c.CustodyAnnual.InexactFloat64(),
		ConnectivityAnnual:   c.ConnectivityAnnual.InexactFloat64(),
		SubscriptionAnnual:   c.SubscriptionAnnual.InexactFloat64(),
		FXCostAnnual:         c.FXAnnual.InexactFloat64(),
		DividendCostAnnual:   c.DividendAnnual.InexactFloat64(),
		TotalAnnual:          c.TotalAnnual.InexactFloat64(),
		TradingCostBreakdown: make([]TradeCost, 0, len(c.TradingDetails)),
	}
	for _, d := range c.TradingDetails {
		pc.TradingCostBreakdown = append(pc.TradingCostBreakdown, TradeCost{
			Instrument:   d.Instrument,
			Amount:       d.Amount.InexactFloat64(),
			CountPerYear: d.CountPerYear,
			FeePerTrade:  d.FeePerTrade.InexactFloat64(),
			Total:        d.Total.InexactFloat64(),
		})
	}
	return pc
}
