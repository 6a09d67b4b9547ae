package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/guttosm/brokerfees/internal/domain/models"
	"github.com/guttosm/brokerfees/internal/fees"
)

// Table is a decoded comparison table:
//
//	{exchange: {instrument: rows}}
//
// where rows is either a list of {"broker": name, "250": v, ...} objects or a
// map of broker name to {"250": v, ...}. Exchange keys starting with "_" hold
// metadata and are ignored.
type Table = map[string]any

// Row is one broker's fee cells for one instrument class, independent of the
// shape it was read from. Values is the table's own map: writes through it
// change the table.
type Row struct {
	Exchange   string
	Instrument string
	Broker     string
	Values     map[string]any
}

// Decode parses a JSON comparison table. Numbers are kept as json.Number so
// cell values are not rounded through float64.
func Decode(data []byte) (Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var t Table
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	return t, nil
}

// Rows flattens both row shapes of t into a single list. Anything that does
// not fit the expected structure is skipped. The order is deterministic:
// exchanges sorted by key, instruments in class order, list rows in list
// order and map rows sorted by broker name.
func Rows(t Table) []Row {
	var out []Row
	for _, exchange := range sortedKeys(t) {
		if strings.HasPrefix(exchange, "_") {
			continue
		}
		sections, ok := t[exchange].(map[string]any)
		if !ok {
			continue
		}
		for _, class := range models.InstrumentClasses {
			for _, key := range sortedKeys(sections) {
				if fees.NormalizeInstrument(key) != class {
					continue
				}
				out = appendRows(out, exchange, class, sections[key])
			}
		}
	}
	return out
}

func appendRows(out []Row, exchange, class string, section any) []Row {
	switch rows := section.(type) {
	case []any:
		for _, r := range rows {
			m, ok := r.(map[string]any)
			if !ok {
				continue
			}
			broker, ok := m["broker"].(string)
			if !ok || strings.TrimSpace(broker) == "" {
				continue
			}
			out = append(out, Row{Exchange: exchange, Instrument: class, Broker: broker, Values: m})
		}
	case map[string]any:
		for _, broker := range sortedKeys(rows) {
			m, ok := rows[broker].(map[string]any)
			if !ok {
				continue
			}
			out = append(out, Row{Exchange: exchange, Instrument: class, Broker: broker, Values: m})
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
