package fees

import (
	"fmt"
	"strings"

	"github.com/guttosm/brokerfees/internal/domain/models"
)

// Diff describes how next differs from prev, one line per added, removed or
// changed rule, ordered by broker then instrument.
func Diff(prev, next *Registry) []string {
	seen := make(map[ruleKey]struct{})
	var keys []ruleKey
	for _, k := range append(prev.keys(), next.keys()...) {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sortKeys(keys)

	var changes []string
	for _, k := range keys {
		o, inOld := prev.lookupKey(k)
		n, inNew := next.lookupKey(k)
		switch {
		case !inOld && inNew:
			changes = append(changes, fmt.Sprintf("ADDED %s %s: %s", n.Broker, n.Instrument, describeTiers(n)))
		case inOld && !inNew:
			changes = append(changes, fmt.Sprintf("REMOVED %s %s", o.Broker, o.Instrument))
		case describeTiers(o) != describeTiers(n):
			changes = append(changes, fmt.Sprintf("CHANGED %s %s: %s -> %s", o.Broker, o.Instrument, describeTiers(o), describeTiers(n)))
		}
	}
	return changes
}

func (r *Registry) lookupKey(k ruleKey) (models.FeeRule, bool) {
	if r == nil {
		return models.FeeRule{}, false
	}
	e, ok := r.entries[k]
	return e.rule, ok
}

// describeTiers renders a rule compactly, e.g. "[<=2500:7.50 slice 10000:15.00 max 50.00] +1.00".
func describeTiers(rule models.FeeRule) string {
	parts := make([]string, 0, len(rule.Tiers))
	for _, t := range rule.Tiers {
		switch t.Kind {
		case models.TierFlat:
			parts = append(parts, "flat "+t.Amount.StringFixed(2))
		case models.TierBoundedFlat:
			parts = append(parts, fmt.Sprintf("<=%s:%s", t.UpTo, t.Fee.StringFixed(2)))
		case models.TierPerSlice:
			s := fmt.Sprintf("slice %s:%s", t.SliceSize, t.FeePerSlice.StringFixed(2))
			if t.MaxFee != nil {
				s += " max " + t.MaxFee.StringFixed(2)
			}
			parts = append(parts, s)
		case models.TierBasePlusSlice:
			parts = append(parts, fmt.Sprintf("base <=%s:%s slice %s:%s", t.BaseUpTo, t.BaseFee.StringFixed(2), t.SliceSize, t.SliceFee.StringFixed(2)))
		case models.TierRateWithMinimum:
			parts = append(parts, fmt.Sprintf("rate %s min %s", t.Rate, t.MinFee.StringFixed(2)))
		}
	}
	s := "[" + strings.Join(parts, " ") + "]"
	if rule.HandlingFee.IsPositive() {
		s += " +" + rule.HandlingFee.StringFixed(2)
	}
	return s
}
