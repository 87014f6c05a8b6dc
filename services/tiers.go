package services

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Tier is a half-open interval [Min, Max). The last tier of a table may use
// Max = +Inf to catch everything at or above Min.
type Tier struct {
	Label string  `yaml:"label"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Color string  `yaml:"color"`
}

// Contains reports whether v falls in [Min, Max).
func (t Tier) Contains(v float64) bool {
	if math.IsInf(t.Max, 1) {
		return v >= t.Min
	}
	return v >= t.Min && v < t.Max
}

// Open reports whether the tier has no upper bound.
func (t Tier) Open() bool { return math.IsInf(t.Max, 1) }

// TierTable is an ordered list of tiers.
type TierTable []Tier

var (
	ErrEmptyTable    = errors.New("tier table is empty")
	ErrTierOrder     = errors.New("tiers must ascend without gaps or overlaps")
	ErrOpenNotLast   = errors.New("only the last tier may be open-ended")
	ErrInvertedRange = errors.New("tier min must be below max")
)

// Validate checks the table invariants: ascending, contiguous, each tier
// non-empty, and only the final tier open-ended.
func (t TierTable) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	for i, tier := range t {
		if tier.Open() && i != len(t)-1 {
			return fmt.Errorf("tier %q: %w", tier.Label, ErrOpenNotLast)
		}
		if !(tier.Min < tier.Max) {
			return fmt.Errorf("tier %q: %w", tier.Label, ErrInvertedRange)
		}
		if i > 0 && t[i-1].Max != tier.Min {
			return fmt.Errorf("tier %q starts at %v, previous ends at %v: %w",
				tier.Label, tier.Min, t[i-1].Max, ErrTierOrder)
		}
	}
	return nil
}

// Find returns the index of the tier containing v, or -1.
func (t TierTable) Find(v float64) int {
	for i, tier := range t {
		if tier.Contains(v) {
			return i
		}
	}
	return -1
}

var inf = math.Inf(1)

// Default tier tables. Callers receive copies from DefaultTierSet; these
// values are never mutated.
var (
	hourlyRateTiers = TierTable{
		{Label: "$5-$15", Min: 5, Max: 15, Color: "#FF6B6B"},
		{Label: "$15-$25", Min: 15, Max: 25, Color: "#FFB347"},
		{Label: "$25-$35", Min: 25, Max: 35, Color: "#4ECDC4"},
		{Label: "$35-$50", Min: 35, Max: 50, Color: "#45B7D1"},
		{Label: "$50-$75", Min: 50, Max: 75, Color: "#9B59B6"},
		{Label: "$75+", Min: 75, Max: inf, Color: "#E67E22"},
	}
	fixedBudgetTiers = TierTable{
		{Label: "Micro (<$100)", Min: 0, Max: 100, Color: "#6B7280"},
		{Label: "Small ($100-$500)", Min: 100, Max: 500, Color: "#4ECDC4"},
		{Label: "Medium ($500-$2.5K)", Min: 500, Max: 2500, Color: "#45B7D1"},
		{Label: "Large ($2.5K-$10K)", Min: 2500, Max: 10000, Color: "#A29BFE"},
		{Label: "Major ($10K+)", Min: 10000, Max: inf, Color: "#FF9F43"},
	}
	spendingTiers = TierTable{
		{Label: "Starter ($1-$1K)", Min: 1, Max: 1000, Color: "#FF6B6B"},
		{Label: "Growing ($1K-$5K)", Min: 1000, Max: 5000, Color: "#4ECDC4"},
		{Label: "Established ($5K-$25K)", Min: 5000, Max: 25000, Color: "#45B7D1"},
		{Label: "Corporate ($25K-$100K)", Min: 25000, Max: 100000, Color: "#A29BFE"},
		{Label: "Enterprise ($100K+)", Min: 100000, Max: inf, Color: "#FF9F43"},
	}
	hireRateTiers = TierTable{
		{Label: "Very Low (0-20%)", Min: 0, Max: 20, Color: "#EF4444"},
		{Label: "Low (20-40%)", Min: 20, Max: 40, Color: "#F59E0B"},
		{Label: "Medium (40-60%)", Min: 40, Max: 60, Color: "#10B981"},
		{Label: "High (60-80%)", Min: 60, Max: 80, Color: "#3B82F6"},
		{Label: "Excellent (80%+)", Min: 80, Max: inf, Color: "#8B5CF6"},
	}
	connectsTiers = TierTable{
		{Label: "Low (1-5)", Min: 1, Max: 6, Color: "#4ECDC4"},
		{Label: "Medium (6-10)", Min: 6, Max: 11, Color: "#FFB347"},
		{Label: "High (11-15)", Min: 11, Max: 16, Color: "#FF6B6B"},
		{Label: "Very High (16-20)", Min: 16, Max: 21, Color: "#A29BFE"},
		{Label: "Premium (21+)", Min: 21, Max: inf, Color: "#E67E22"},
	}
	interviewTiers = TierTable{
		{Label: "No Interviews (0)", Min: 0, Max: 1, Color: "#6B7280"},
		{Label: "Low Activity (1-3)", Min: 1, Max: 4, Color: "#10B981"},
		{Label: "Moderate (4-8)", Min: 4, Max: 9, Color: "#3B82F6"},
		{Label: "High Activity (9-15)", Min: 9, Max: 16, Color: "#F59E0B"},
		{Label: "Very Active (16+)", Min: 16, Max: inf, Color: "#EF4444"},
	}
)

// TierSet bundles the tables used by the tiered chart views.
type TierSet struct {
	HourlyRate   TierTable `yaml:"hourly_rate"`
	FixedBudget  TierTable `yaml:"fixed_budget"`
	Spending     TierTable `yaml:"client_spending"`
	HireRate     TierTable `yaml:"client_hire_rate"`
	Connects     TierTable `yaml:"connects_required"`
	Interviewing TierTable `yaml:"interviewing"`
}

// DefaultTierSet returns fresh copies of the built-in tables.
func DefaultTierSet() TierSet {
	return TierSet{
		HourlyRate:   clone(hourlyRateTiers),
		FixedBudget:  clone(fixedBudgetTiers),
		Spending:     clone(spendingTiers),
		HireRate:     clone(hireRateTiers),
		Connects:     clone(connectsTiers),
		Interviewing: clone(interviewTiers),
	}
}

func clone(t TierTable) TierTable {
	return append(TierTable(nil), t...)
}

// Validate checks every table in the set.
func (s TierSet) Validate() error {
	for name, t := range map[string]TierTable{
		"hourly_rate":       s.HourlyRate,
		"fixed_budget":      s.FixedBudget,
		"client_spending":   s.Spending,
		"client_hire_rate":  s.HireRate,
		"connects_required": s.Connects,
		"interviewing":      s.Interviewing,
	} {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// yamlTier mirrors Tier with an optional max; an omitted max is open-ended.
type yamlTier struct {
	Label string   `yaml:"label"`
	Min   float64  `yaml:"min"`
	Max   *float64 `yaml:"max"`
	Color string   `yaml:"color"`
}

type yamlTierSet struct {
	HourlyRate   []yamlTier `yaml:"hourly_rate"`
	FixedBudget  []yamlTier `yaml:"fixed_budget"`
	Spending     []yamlTier `yaml:"client_spending"`
	HireRate     []yamlTier `yaml:"client_hire_rate"`
	Connects     []yamlTier `yaml:"connects_required"`
	Interviewing []yamlTier `yaml:"interviewing"`
}

// ParseTierSet overlays the tables present in a YAML document onto the
// defaults. Tables absent from the document keep their default values.
func ParseTierSet(data []byte) (TierSet, error) {
	var doc yamlTierSet
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return TierSet{}, fmt.Errorf("tiers: parse yaml: %w", err)
	}

	set := DefaultTierSet()
	overlay(&set.HourlyRate, doc.HourlyRate)
	overlay(&set.FixedBudget, doc.FixedBudget)
	overlay(&set.Spending, doc.Spending)
	overlay(&set.HireRate, doc.HireRate)
	overlay(&set.Connects, doc.Connects)
	overlay(&set.Interviewing, doc.Interviewing)

	if err := set.Validate(); err != nil {
		return TierSet{}, fmt.Errorf("tiers: %w", err)
	}
	return set, nil
}

// LoadTierSet reads a YAML tier file. An empty path yields the defaults.
func LoadTierSet(path string) (TierSet, error) {
	if path == "" {
		return DefaultTierSet(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return TierSet{}, fmt.Errorf("tiers: read %q: %w", path, err)
	}
	return ParseTierSet(data)
}

func overlay(dst *TierTable, src []yamlTier) {
	if len(src) == 0 {
		return
	}
	table := make(TierTable, 0, len(src))
	for _, t := range src {
		max := inf
		if t.Max != nil {
			max = *t.Max
		}
		table = append(table, Tier{Label: t.Label, Min: t.Min, Max: max, Color: t.Color})
	}
	*dst = table
}
