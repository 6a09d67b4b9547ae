package validation

import (
	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/guttosm/brokerfees/internal/fees"
	"github.com/guttosm/brokerfees/internal/logger"
	"github.com/shopspring/decimal"
)

type cellKey struct {
	broker     string
	instrument string
	amount     string
}

// Patch overwrites every cell of t named in errs with its expected value.
//
// t is modified in place; the return value is the number of cells written.
// Cells not named in errs, and named cells already holding the expected
// value, are left alone; patching twice with the same errors therefore
// leaves the table as patching once did. Patched values are float64
// so the table re-encodes as plain JSON numbers.
func Patch(t Table, errs []models.ValidationError) int {
	if len(errs) == 0 {
		return 0
	}
	corrections := make(map[cellKey]decimal.Decimal, len(errs))
	for _, e := range errs {
		corrections[cellKey{fees.NormalizeBroker(e.Broker), fees.NormalizeInstrument(e.Instrument), e.Amount}] = e.Expected
	}

	log := logger.With("patcher")
	patched := 0
	for _, row := range Rows(t) {
		broker := fees.NormalizeBroker(row.Broker)
		for _, size := range models.TransactionSizes {
			old, present := row.Values[size]
			if !present {
				continue
			}
			want, ok := corrections[cellKey{broker, row.Instrument, size}]
			if !ok {
				continue
			}
			if cur, ok := ParseCell(old); ok && cur.Equal(want) {
				continue
			}
			row.Values[size] = want.InexactFloat64()
			patched++
			log.Debug().
				Str("broker", row.Broker).
				Str("instrument", row.Instrument).
				Str("amount", size).
				Interface("old", old).
				Str("new", want.StringFixed(2)).
				Msg("patched cell")
		}
	}
	return patched
}
