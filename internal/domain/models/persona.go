package models

import "github.com/shopspring/decimal"

// TradeProfile is one recurring trade inside a persona.
type TradeProfile struct {
	Instrument   string
	Amount       decimal.Decimal
	CountPerYear int
}

// Persona is an investor archetype used for total-cost-of-ownership comparison.
type Persona struct {
	Key                  string
	Name                 string
	Description          string
	Trades               []TradeProfile
	PortfolioValue       decimal.Decimal
	ExchangesUsed        int
	FXVolumeAnnual       decimal.Decimal
	DividendIncomeAnnual decimal.Decimal
}

// TradeCostDetail is the yearly cost of one TradeProfile at a broker.
type TradeCostDetail struct {
	Instrument   string
	Amount       decimal.Decimal
	CountPerYear int
	FeePerTrade  decimal.Decimal
	Total        decimal.Decimal
}

// PersonaCost is the annual cost of one persona at one broker.
type PersonaCost struct {
	Broker             string
	Trading            decimal.Decimal
	TradingDetails     []TradeCostDetail
	CustodyAnnual      decimal.Decimal
	ConnectivityAnnual decimal.Decimal
	SubscriptionAnnual decimal.Decimal
	FXAnnual           decimal.Decimal
	DividendAnnual     decimal.Decimal
	TotalAnnual        decimal.Decimal
	Rank               int
}
