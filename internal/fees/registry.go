package fees

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/guttosm/brokerfees/internal/domain/models"
)

type ruleKey struct {
	broker     string
	instrument string
}

type entry struct {
	rule models.FeeRule
	plan plan
}

// Registry is an immutable table of fee rules keyed by canonical
// (broker, instrument). It is safe for concurrent use.
type Registry struct {
	entries map[ruleKey]entry
	hidden  map[string]models.HiddenCosts
}

// Builder collects rules before freezing them into a Registry.
// A Builder is not safe for concurrent use.
type Builder struct {
	rules  map[ruleKey]models.FeeRule
	hidden map[string]models.HiddenCosts
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		rules:  make(map[ruleKey]models.FeeRule),
		hidden: make(map[string]models.HiddenCosts),
	}
}

// Register adds rule under the canonical form of (broker, instrument).
// Registering an existing key replaces the previous rule.
func (b *Builder) Register(broker, instrument string, rule models.FeeRule) *Builder {
	if rule.Broker == "" {
		rule.Broker = broker
	}
	if rule.Instrument == "" {
		rule.Instrument = instrument
	}
	rule.Tiers = slices.Clone(rule.Tiers)
	b.rules[ruleKey{NormalizeBroker(broker), NormalizeInstrument(instrument)}] = rule
	return b
}

// RegisterHiddenCosts records the non-trading costs of a broker.
func (b *Builder) RegisterHiddenCosts(broker string, costs models.HiddenCosts) *Builder {
	b.hidden[NormalizeBroker(broker)] = costs
	return b
}

// Build validates every registered rule and returns the frozen Registry.
// All invalid rules are reported together.
func (b *Builder) Build() (*Registry, error) {
	reg := &Registry{
		entries: make(map[ruleKey]entry, len(b.rules)),
		hidden:  make(map[string]models.HiddenCosts, len(b.hidden)),
	}
	var errs []error
	for k, r := range b.rules {
		p, err := compile(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reg.entries[k] = entry{rule: r, plan: p}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("build registry: %w", errors.Join(errs...))
	}
	for k, v := range b.hidden {
		reg.hidden[k] = v
	}
	return reg, nil
}

func (r *Registry) lookup(broker, instrument string) (entry, bool) {
	if r == nil {
		return entry{}, false
	}
	e, ok := r.entries[ruleKey{NormalizeBroker(broker), NormalizeInstrument(instrument)}]
	return e, ok
}

// Rule returns a copy of the rule registered for (broker, instrument).
func (r *Registry) Rule(broker, instrument string) (models.FeeRule, bool) {
	e, ok := r.lookup(broker, instrument)
	if !ok {
		return models.FeeRule{}, false
	}
	rule := e.rule
	rule.Tiers = slices.Clone(rule.Tiers)
	return rule, true
}

// Rules returns copies of all rules ordered by broker then instrument key.
func (r *Registry) Rules() []models.FeeRule {
	keys := r.keys()
	out := make([]models.FeeRule, 0, len(keys))
	for _, k := range keys {
		rule := r.entries[k].rule
		rule.Tiers = slices.Clone(rule.Tiers)
		out = append(out, rule)
	}
	return out
}

// Brokers returns the canonical names of all brokers with at least one rule, sorted.
func (r *Registry) Brokers() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, k := range r.keys() {
		if _, ok := seen[k.broker]; ok {
			continue
		}
		seen[k.broker] = struct{}{}
		out = append(out, k.broker)
	}
	return out
}

// HiddenCosts returns the non-trading costs registered for broker.
func (r *Registry) HiddenCosts(broker string) (models.HiddenCosts, bool) {
	if r == nil {
		return models.HiddenCosts{}, false
	}
	c, ok := r.hidden[NormalizeBroker(broker)]
	return c, ok
}

// Len is the number of registered rules.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

func (r *Registry) keys() []ruleKey {
	if r == nil {
		return nil
	}
	keys := make([]ruleKey, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []ruleKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].broker != keys[j].broker {
			return keys[i].broker < keys[j].broker
		}
		return keys[i].instrument < keys[j].instrument
	})
}
