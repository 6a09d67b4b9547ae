package fees

import "strings"

// brokerAliases maps common spellings to the canonical registry key.
var brokerAliases = map[string]string{
	"degiro":          "degiro belgium",
	"degiro be":       "degiro belgium",
	"degiro belgie":   "degiro belgium",
	"keytrade":        "keytrade bank",
	"keytrade bank":   "keytrade bank",
	"ing":             "ing self invest",
	"ing belgium":     "ing self invest",
	"ing self-invest": "ing self invest",
	"bolero (kbc)":    "bolero",
	"kbc bolero":      "bolero",
	"rebel (belfius)": "rebel",
	"belfius rebel":   "rebel",
}

var instrumentAliases = map[string]string{
	"stock":       "stocks",
	"shares":      "stocks",
	"equities":    "stocks",
	"aandelen":    "stocks",
	"actions":     "stocks",
	"etf":         "etfs",
	"trackers":    "etfs",
	"tracker":     "etfs",
	"bond":        "bonds",
	"obligaties":  "bonds",
	"obligations": "bonds",
}

// displayNames maps canonical broker keys to the names used in generated tables.
var displayNames = map[string]string{
	"degiro belgium":  "Degiro Belgium",
	"bolero":          "Bolero",
	"keytrade bank":   "Keytrade Bank",
	"ing self invest": "ING Self Invest",
	"rebel":           "Rebel",
	"revolut":         "Revolut",
}

// canonical lower-cases s, trims it and collapses inner whitespace.
func canonical(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeBroker returns the registry key for a free-text broker name.
// Unknown names pass through in canonical form.
func NormalizeBroker(name string) string {
	k := canonical(name)
	if v, ok := brokerAliases[k]; ok {
		return v
	}
	return k
}

// NormalizeInstrument returns the registry key for a free-text instrument class.
func NormalizeInstrument(name string) string {
	k := canonical(name)
	if v, ok := instrumentAliases[k]; ok {
		return v
	}
	return k
}

// DisplayName returns the presentation name for a broker, or the input
// unchanged when the broker has no known display name.
func DisplayName(broker string) string {
	if v, ok := displayNames[NormalizeBroker(broker)]; ok {
		return v
	}
	return broker
}
