package validation

import (
	"reflect"
	"strings"
	"testing"

	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/guttosm/brokerfees/internal/fees"
	"github.com/shopspring/decimal"
)

func newValidator() (*Validator, *fees.Calculator) {
	calc := fees.NewCalculator(fees.DefaultRegistry())
	return NewValidator(calc), calc
}

// groundTruthTable fills a map-shaped table with the calculator's own fees.
func groundTruthTable(calc *fees.Calculator) Table {
	sections := map[string]any{}
	for _, rule := range calc.Registry().Rules() {
		rows, _ := sections[rule.Instrument].(map[string]any)
		if rows == nil {
			rows = map[string]any{}
			sections[rule.Instrument] = rows
		}
		values := map[string]any{}
		for _, size := range models.TransactionSizes {
			fee, _ := calc.Fee(rule.Broker, rule.Instrument, decimal.RequireFromString(size))
			values[size] = fee.InexactFloat64()
		}
		rows[rule.Broker] = values
	}
	return Table{"euronext_brussels": sections}
}

func TestValidate_RoundTrip(t *testing.T) {
	v, calc := newValidator()
	res := v.Validate(groundTruthTable(calc))

	want := calc.Registry().Len() * len(models.TransactionSizes)
	if !res.Valid || len(res.Errors) != 0 {
		t.Fatalf("expected a valid table, got %+v", res.Errors)
	}
	if res.Checked != want || res.Passed != want {
		t.Fatalf("checked=%d passed=%d, want %d", res.Checked, res.Passed, want)
	}
	if !res.Checkable() {
		t.Fatalf("expected a checkable result")
	}
}

func TestValidate_FlagsWrongCell(t *testing.T) {
	v, _ := newValidator()
	table := Table{
		"euronext_brussels": map[string]any{
			"stocks": []any{
				map[string]any{"broker": "Bolero", "2500": 7.5, "5000": "€10.00"},
			},
		},
	}
	res := v.Validate(table)
	if res.Valid {
		t.Fatalf("expected invalid result")
	}
	if res.Checked != 2 || res.Passed != 1 || len(res.Errors) != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	e := res.Errors[0]
	if e.Broker != "Bolero" || e.Instrument != "stocks" || e.Amount != "5000" {
		t.Fatalf("unexpected error cell: %+v", e)
	}
	if !e.Expected.Equal(decimal.RequireFromString("15")) || !e.Observed.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("unexpected values: observed=%s expected=%s", e.Observed, e.Expected)
	}
	if e.Explanation != "1 x EUR15.00 per EUR10,000 slice -> EUR15.00" {
		t.Fatalf("unexpected explanation: %q", e.Explanation)
	}

	text := BuildCorrectionText(res.Errors)
	if !strings.Contains(text, "15.00") {
		t.Fatalf("correction text misses the expected value:\n%s", text)
	}
}

func TestValidate_ToleranceBoundary(t *testing.T) {
	v, _ := newValidator()
	table := Table{"x": map[string]any{"stocks": map[string]any{
		"Bolero": map[string]any{"250": 2.51, "500": "4.98", "1000": 5.01},
	}}}
	res := v.Validate(table)
	if res.Checked != 3 || res.Passed != 2 || len(res.Errors) != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if res.Errors[0].Amount != "500" {
		t.Fatalf("expected the 500 cell to fail, got %+v", res.Errors[0])
	}
}

func TestValidate_UnknownPairsAreNeutral(t *testing.T) {
	v, _ := newValidator()
	table := Table{
		"euronext_brussels": map[string]any{
			"bonds":  map[string]any{"Keytrade Bank": map[string]any{"250": 999, "5000": "garbage"}},
			"stocks": []any{map[string]any{"broker": "Nobody Ltd", "250": 0}},
			"etfs":   map[string]any{"Revolut": map[string]any{"1000": 1}},
		},
	}
	res := v.Validate(table)
	if !res.Valid || res.Checked != 0 || res.Passed != 0 || len(res.Errors) != 0 {
		t.Fatalf("unknown pairs must not be checked: %+v", res)
	}
	if res.Checkable() {
		t.Fatalf("nothing was checkable")
	}
}

func TestValidate_UnparsableCell(t *testing.T) {
	v, _ := newValidator()
	table := Table{"euronext_brussels": map[string]any{
		"stocks": map[string]any{"Degiro Belgium": map[string]any{"250": "n/a", "500": nil}},
	}}
	res := v.Validate(table)
	if res.Checked != 2 || len(res.Errors) != 2 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	for _, e := range res.Errors {
		if !e.Observed.IsZero() || !e.Expected.Equal(decimal.RequireFromString("3")) {
			t.Fatalf("unexpected error values: %+v", e)
		}
		if !strings.HasPrefix(e.Explanation, "Could not parse table value") {
			t.Fatalf("unexpected explanation: %q", e.Explanation)
		}
	}
	if !strings.Contains(res.Errors[0].Explanation, "n/a") {
		t.Fatalf("explanation should quote the cell: %q", res.Errors[0].Explanation)
	}
}

func TestValidate_StructuralAnomaliesSkipped(t *testing.T) {
	v, _ := newValidator()
	table := Table{
		"_meta":    map[string]any{"stocks": map[string]any{"Bolero": map[string]any{"250": 1}}},
		"headline": "cheapest broker is ...",
		"euronext_brussels": map[string]any{
			"stocks": []any{
				"not a row",
				map[string]any{"name": "Bolero", "250": 1},
				map[string]any{"broker": 42, "250": 1},
				map[string]any{"broker": "Bolero", "250": 2.5, "300": 99, "notes": "x"},
			},
			"etfs":              "see above",
			"options":           map[string]any{"Bolero": map[string]any{"250": 1}},
			"calculation_logic": map[string]any{"Bolero": "bands"},
		},
		"empty": map[string]any{},
	}
	res := v.Validate(table)
	if !res.Valid || res.Checked != 1 || res.Passed != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestValidate_EmptyTableIsVacuouslyValid(t *testing.T) {
	v, _ := newValidator()
	for _, table := range []Table{nil, {}, {"x": 1}} {
		res := v.Validate(table)
		if !res.Valid || res.Checkable() {
			t.Fatalf("expected vacuous validity for %v, got %+v", table, res)
		}
	}
}

func TestValidate_DecodedJSON(t *testing.T) {
	v, _ := newValidator()
	table, err := Decode([]byte(`{
		"euronext_brussels": {
			"ETFs": [{"broker": "keytrade", "50000": 44.95, "10000": "€14,95"}],
			"Stocks": {"ING Self Invest": {"250": 1.00, "5000": "17.5"}}
		}
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	res := v.Validate(table)
	if !res.Valid || res.Checked != 4 || res.Passed != 4 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, err := Decode([]byte(`[1, 2`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRows_OrderAndShapes(t *testing.T) {
	table := Table{
		"b_exchange": map[string]any{
			"bonds":  map[string]any{"Zed": map[string]any{}, "Alpha": map[string]any{}},
			"stocks": []any{map[string]any{"broker": "Second"}, map[string]any{"broker": "First"}},
		},
		"a_exchange": map[string]any{"trackers": map[string]any{"Only": map[string]any{}}},
	}
	var got []string
	for _, r := range Rows(table) {
		got = append(got, r.Exchange+"/"+r.Instrument+"/"+r.Broker)
	}
	want := []string{
		"a_exchange/etfs/Only",
		"b_exchange/stocks/Second",
		"b_exchange/stocks/First",
		"b_exchange/bonds/Alpha",
		"b_exchange/bonds/Zed",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rows order\n got: %v\nwant: %v", got, want)
	}
}

func TestBuildCorrectionText(t *testing.T) {
	if got := BuildCorrectionText(nil); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
	errs := []models.ValidationError{
		{
			Broker: "Bolero", Instrument: "stocks", Amount: "5000",
			Observed: decimal.RequireFromString("10"), Expected: decimal.RequireFromString("15"),
			Explanation: "1 x EUR15.00 per EUR10,000 slice -> EUR15.00",
		},
		{
			Broker: "Degiro Belgium", Instrument: "bonds", Amount: "250",
			Observed: decimal.Zero, Expected: decimal.RequireFromString("3"),
			Explanation: `Could not parse table value "n/a"`,
		},
	}
	want := "\nCORRECTIONS FROM PREVIOUS ATTEMPT (YOU MUST FIX THESE):\n\n" +
		"1. Bolero stocks €5000: you said €10.00, correct answer is €15.00\n" +
		"   Reason: 1 x EUR15.00 per EUR10,000 slice -> EUR15.00\n" +
		"2. Degiro Belgium bonds €250: you said €0.00, correct answer is €3.00\n" +
		"   Reason: Could not parse table value \"n/a\"\n" +
		"\nFix ALL of the above values. Do not change any other values that were correct."
	if got := BuildCorrectionText(errs); got != want {
		t.Fatalf("correction text\n got: %q\nwant: %q", got, want)
	}
}
