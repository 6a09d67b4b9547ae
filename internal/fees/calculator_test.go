package fees

import (
	"strings"
	"testing"

	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculator_Fee_DefaultRegistry(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())

	cases := []struct {
		name       string
		broker     string
		instrument string
		amount     string
		want       string
	}{
		{name: "bolero bounded flat at boundary", broker: "Bolero", instrument: "stocks", amount: "2500", want: "7.50"},
		{name: "bolero lowest band", broker: "Bolero", instrument: "stocks", amount: "250", want: "2.50"},
		{name: "bolero just above 250", broker: "Bolero", instrument: "stocks", amount: "250.01", want: "5.00"},
		{name: "bolero one slice", broker: "Bolero", instrument: "stocks", amount: "5000", want: "15.00"},
		{name: "bolero exactly one slice", broker: "Bolero", instrument: "stocks", amount: "10000", want: "15.00"},
		{name: "bolero slice capped", broker: "Bolero", instrument: "stocks", amount: "50000", want: "50.00"},
		{name: "keytrade base band", broker: "Keytrade Bank", instrument: "etfs", amount: "10000", want: "14.95"},
		{name: "keytrade base plus slices", broker: "Keytrade Bank", instrument: "etfs", amount: "50000", want: "44.95"},
		{name: "keytrade partial slice", broker: "keytrade", instrument: "ETF", amount: "10000.01", want: "22.45"},
		{name: "degiro bonds small", broker: "Degiro Belgium", instrument: "bonds", amount: "1", want: "3.00"},
		{name: "degiro bonds large", broker: "Degiro Belgium", instrument: "bonds", amount: "1000000", want: "3.00"},
		{name: "degiro alias", broker: "  DEGIRO be ", instrument: "obligaties", amount: "500", want: "3.00"},
		{name: "ing minimum applies", broker: "ING Self Invest", instrument: "stocks", amount: "250", want: "1.00"},
		{name: "ing rate applies", broker: "ing", instrument: "aandelen", amount: "5000", want: "17.50"},
		{name: "ing rate exact", broker: "ING Self Invest", instrument: "stocks", amount: "1500", want: "5.25"},
		{name: "revolut rounding", broker: "Revolut", instrument: "stocks", amount: "1001", want: "2.50"},
		{name: "rebel slice", broker: "Rebel", instrument: "trackers", amount: "5000", want: "10.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := calc.Fee(tc.broker, tc.instrument, d(tc.amount))
			if !ok {
				t.Fatalf("expected a rule for %s %s", tc.broker, tc.instrument)
			}
			if !got.Equal(d(tc.want)) {
				t.Fatalf("fee(%s, %s, %s) = %s, want %s", tc.broker, tc.instrument, tc.amount, got.StringFixed(2), tc.want)
			}
		})
	}
}

func TestCalculator_Fee_UnknownPair(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())
	cases := []struct{ broker, instrument string }{
		{"Unknown Broker", "stocks"},
		{"Keytrade Bank", "bonds"},
		{"Revolut", "etfs"},
		{"Bolero", "options"},
	}
	for _, c := range cases {
		if fee, ok := calc.Fee(c.broker, c.instrument, d("1000")); ok {
			t.Fatalf("expected no rule for %s %s, got %s", c.broker, c.instrument, fee)
		}
	}
}

func TestCalculator_RoundingTieAwayFromZero(t *testing.T) {
	b := NewBuilder()
	b.Register("Half", "stocks", models.FeeRule{Tiers: []models.Tier{models.RateWithMinimum(0.001, 0)}})
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	calc := NewCalculator(reg)

	// 1005 * 0.001 = 1.005 -> 1.01
	got, ok := calc.Fee("half", "stocks", d("1005"))
	if !ok || !got.Equal(d("1.01")) {
		t.Fatalf("want 1.01, got %s ok=%v", got, ok)
	}
}

func TestCalculator_BoundedTiersExhaustedWithoutSlice(t *testing.T) {
	b := NewBuilder()
	b.Register("Bands", "stocks", models.FeeRule{Tiers: []models.Tier{
		models.BoundedFlat(1000, 1),
		models.BoundedFlat(5000, 4),
	}})
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	calc := NewCalculator(reg)

	if fee, ok := calc.Fee("Bands", "stocks", d("5000")); !ok || !fee.Equal(d("4")) {
		t.Fatalf("want 4 at boundary, got %s ok=%v", fee, ok)
	}
	if _, ok := calc.Fee("Bands", "stocks", d("5000.01")); ok {
		t.Fatalf("expected no ground truth above the last band")
	}
}

func TestCalculator_Deterministic(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())
	sizes := []string{"0", "0.01", "123456.78"}
	sizes = append(sizes, models.TransactionSizes...)
	for _, rule := range calc.Registry().Rules() {
		for _, size := range sizes {
			first, ok1 := calc.Fee(rule.Broker, rule.Instrument, d(size))
			for i := 0; i < 5; i++ {
				again, ok2 := calc.Fee(rule.Broker, rule.Instrument, d(size))
				if ok1 != ok2 || !first.Equal(again) {
					t.Fatalf("%s %s %s not deterministic: %s vs %s", rule.Broker, rule.Instrument, size, first, again)
				}
			}
		}
	}
}

// Negative amounts are outside the contract; the calculator still answers
// with the first matching tier rather than failing.
func TestCalculator_NegativeAmountPrecondition(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())
	fee, ok := calc.Fee("Bolero", "stocks", d("-100"))
	if !ok || !fee.Equal(d("2.50")) {
		t.Fatalf("negative amount: got %s ok=%v", fee, ok)
	}
	fee, ok = calc.Fee("ING Self Invest", "stocks", d("-100"))
	if !ok || !fee.Equal(d("1.00")) {
		t.Fatalf("negative amount with minimum: got %s ok=%v", fee, ok)
	}
}

func TestCalculator_Explain(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())
	cases := []struct {
		broker, instrument, amount string
		want                       string
	}{
		{"Bolero", "stocks", "2500", "Flat fee EUR7.50 (amount EUR2,500 <= EUR2,500) -> EUR7.50"},
		{"Bolero", "stocks", "5000", "1 x EUR15.00 per EUR10,000 slice -> EUR15.00"},
		{"Bolero", "stocks", "50000", "5 x EUR15.00 per EUR10,000 slice = EUR75.00, capped at EUR50.00 -> EUR50.00"},
		{"Keytrade Bank", "etfs", "50000", "EUR14.95 base + 4 x EUR7.50 (EUR40,000 remainder / EUR10,000 slices) -> EUR44.95"},
		{"Keytrade Bank", "etfs", "2500", "Base fee EUR14.95 (amount EUR2,500 <= EUR10,000) -> EUR14.95"},
		{"Degiro Belgium", "bonds", "1", "Flat fee EUR2.00 + EUR1.00 handling -> EUR3.00"},
		{"ING Self Invest", "stocks", "250", "EUR250 x 0.35% = EUR0.88 < EUR1.00 minimum -> EUR1.00"},
		{"Nobody", "stocks", "250", "No fee rule for Nobody stocks"},
	}
	for _, c := range cases {
		if got := calc.Explain(c.broker, c.instrument, d(c.amount)); got != c.want {
			t.Fatalf("Explain(%s %s %s)\n got: %s\nwant: %s", c.broker, c.instrument, c.amount, got, c.want)
		}
	}
}

func TestCalculator_Quote(t *testing.T) {
	calc := NewCalculator(DefaultRegistry())
	q, ok := calc.Quote("keytrade", "etf", d("50000"))
	if !ok {
		t.Fatalf("expected quote")
	}
	if q.Broker != "Keytrade Bank" || q.Instrument != "etfs" || !q.Fee.Equal(d("44.95")) {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if !strings.Contains(q.Explanation, "4 x EUR7.50") {
		t.Fatalf("explanation missing slice count: %q", q.Explanation)
	}
}

func TestEurWhole(t *testing.T) {
	cases := map[string]string{
		"0":       "EUR0",
		"250":     "EUR250",
		"2500":    "EUR2,500",
		"1000000": "EUR1,000,000",
		"12.5":    "EUR12.50",
		"-2500":   "EUR-2,500",
	}
	for in, want := range cases {
		if got := eurWhole(d(in)); got != want {
			t.Fatalf("eurWhole(%s) = %q, want %q", in, got, want)
		}
	}
}
