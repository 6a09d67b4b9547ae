// Package comparison builds deterministic broker comparison tables and
// annual cost-of-ownership rankings from the fee calculator.
package comparison

import (
	"fmt"
	"strings"

	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/guttosm/brokerfees/internal/fees"
	"github.com/guttosm/brokerfees/internal/validation"
	"github.com/shopspring/decimal"
)

// Exchange is the exchange key generated tables are filed under.
const Exchange = "euronext_brussels"

// BuildTables returns the ground-truth comparison table for brokers, in the
// same shape the validator accepts:
//
//	{"euronext_brussels": {"stocks": {Broker: {"250": fee, ...}}, "etfs": ...,
//	  "bonds": ..., "calculation_logic": {Broker: {class: {"250": text}}},
//	  "notes": {Broker: text}}}
//
// Brokers are listed under their display names; a broker with no rule for a
// class is left out of that class. An empty brokers list means every broker
// in the registry.
func BuildTables(calc *fees.Calculator, brokers []string) validation.Table {
	if len(brokers) == 0 {
		brokers = calc.Registry().Brokers()
	}

	sections := make(map[string]any, len(models.InstrumentClasses))
	for _, class := range models.InstrumentClasses {
		sections[class] = map[string]any{}
	}
	logic := map[string]any{}
	notes := map[string]any{}

	for _, broker := range brokers {
		display := fees.DisplayName(broker)
		perClass := map[string]any{}
		for _, class := range models.InstrumentClasses {
			values := map[string]any{}
			explanations := map[string]any{}
			for _, size := range models.TransactionSizes {
				q, ok := calc.Quote(broker, class, decimal.RequireFromString(size))
				if !ok {
					continue
				}
				values[size] = q.Fee.InexactFloat64()
				explanations[size] = q.Explanation
			}
			if len(values) == 0 {
				continue
			}
			sections[class].(map[string]any)[display] = values
			perClass[class] = explanations
		}
		if len(perClass) > 0 {
			logic[display] = perClass
			if note := Note(calc.Registry(), broker); note != "" {
				notes[display] = note
			}
		}
	}

	sections["calculation_logic"] = logic
	sections["notes"] = notes
	return validation.Table{Exchange: sections}
}

// Note summarises the hidden costs of broker. Explicit notes win; otherwise
// a note is assembled from the non-zero cost fields.
func Note(reg *fees.Registry, broker string) string {
	hc, ok := reg.HiddenCosts(broker)
	if !ok {
		return ""
	}
	if hc.Notes != "" {
		return hc.Notes
	}
	var parts []string
	if hc.CustodyFeeMonthlyPct.IsPositive() {
		parts = append(parts, fmt.Sprintf("Custody: %s%%/month (min EUR%s/month)", hc.CustodyFeeMonthlyPct, hc.CustodyFeeMonthlyMin.StringFixed(2)))
	}
	if hc.ConnectivityFeePerExchangeYear.IsPositive() {
		parts = append(parts, fmt.Sprintf("Connectivity: EUR%s/exchange/year", hc.ConnectivityFeePerExchangeYear.StringFixed(2)))
	}
	if hc.SubscriptionFeeMonthly.IsPositive() {
		parts = append(parts, fmt.Sprintf("Subscription: EUR%s/month", hc.SubscriptionFeeMonthly.StringFixed(2)))
	}
	if hc.FXFeePct.IsPositive() {
		parts = append(parts, fmt.Sprintf("FX: %s%%", hc.FXFeePct))
	}
	if hc.DividendFeePct.IsPositive() {
		parts = append(parts, fmt.Sprintf("Dividend fee: %s%%", hc.DividendFeePct))
	}
	if len(parts) == 0 {
		parts = append(parts, "No significant hidden costs")
	}
	return strings.Join(parts, ". ") + "."
}
