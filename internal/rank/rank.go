// Package rank maps elo ratings onto named tiers and 1–5 divisions.
//
// A Table is an ascending list of tiers whose first threshold is 0. Each tier
// except the top one is split into Divisions equal-width divisions; the top
// tier is undivided and reports division 0.
package rank

import "math"

// Divisions is the number of divisions inside every tier but the top one.
const Divisions = 5

// Tier is a named elo band starting at Threshold.
type Tier struct {
	Threshold int    `json:"threshold"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
}

// Position locates an elo on the ladder. It is derived, never stored.
type Position struct {
	TierIndex int  `json:"tierIndex"`
	Tier      Tier `json:"tier"`
	Division  int  `json:"division"` // 1..5, or 0 for the top tier
	Start     int  `json:"start"`
	End       int  `json:"end"` // next tier threshold; 0 for the top tier
}

// Change classifies a move between two positions.
type Change string

const (
	NoChange  Change = "none"
	Promotion Change = "promotion"
	Demotion  Change = "demotion"
)

// Band is a tier with its inclusive elo range, for listings.
type Band struct {
	Tier
	Min int `json:"min"`
	Max int `json:"max"` // -1 when open ended
}

// Table is an ordered ascending tier list.
type Table struct {
	tiers []Tier
}

// NewTable builds a table from tiers that are already sorted ascending
// and start at threshold 0.
func NewTable(tiers []Tier) Table {
	return Table{tiers: append([]Tier(nil), tiers...)}
}

// Default is the live ladder.
var Default = NewTable([]Tier{
	{0, "Bigma", "<:caseoh:1347767315084873859>"},
	{500, "Bronze", "🥉"},
	{1200, "Silver", "🥈"},
	{1500, "Gold", "🥇"},
	{1800, "Platinum", "🔷"},
	{2100, "Diamond", "💎"},
	{2400, "Mythic", "🐉"},
	{2700, "Master", "🔥"},
	{3000, "Grandmaster", "👑"},
	{3300, "Legend", "⚡"},
	{3600, "Godlike", "⚜️"},
	{4000, "Immortal", "🌌"},
	{4500, "Celestial", "🔱"},
	{5100, "Ascendant", "🌠"},
	{5800, "Transcendent", "🔮"},
	{6500, "Absolute", "⚫"},
	{7200, "Overlord", "🧙‍♂️"},
	{7900, "Empyrean", "☀️"},
	{8600, "Cosmic", "🪐"},
	{9300, "Astral", "✨"},
	{10000, "Singularity", "🌀"},
	{676767, "ohio sigma rizzler", "🗿"},
	{696969, "elaine", "🥰"},
})

// Len returns the number of tiers.
func (t Table) Len() int { return len(t.tiers) }

// indexFor returns the index of the highest tier whose threshold ≤ elo,
// or -1 when elo is below the first threshold.
func (t Table) indexFor(elo int) int {
	i := -1
	for j, tier := range t.tiers {
		if elo < tier.Threshold {
			break
		}
		i = j
	}
	return i
}

// TierFor returns the highest tier whose threshold ≤ elo. Ratings below the
// first threshold map to the lowest tier.
func (t Table) TierFor(elo int) Tier {
	i := t.indexFor(elo)
	if i < 0 {
		i = 0
	}
	return t.tiers[i]
}

// NextTierAbove returns the lowest tier whose threshold > elo.
func (t Table) NextTierAbove(elo int) (Tier, bool) {
	for _, tier := range t.tiers {
		if elo < tier.Threshold {
			return tier, true
		}
	}
	return Tier{}, false
}

// Position returns the tier and division for elo, or nil when elo lies
// below the table.
func (t Table) Position(elo int) *Position {
	i := t.indexFor(elo)
	if i < 0 {
		return nil
	}
	tier := t.tiers[i]
	p := &Position{TierIndex: i, Tier: tier, Start: tier.Threshold}
	if i+1 >= len(t.tiers) {
		return p
	}
	p.End = t.tiers[i+1].Threshold

	size := float64(p.End-p.Start) / Divisions
	div := int(math.Floor(float64(elo-p.Start)/size)) + 1
	p.Division = max(1, min(Divisions, div))
	return p
}

// Compare orders positions by tier index, then division. A nil input
// compares equal to anything.
func Compare(a, b *Position) int {
	if a == nil || b == nil {
		return 0
	}
	switch {
	case a.TierIndex != b.TierIndex:
		if a.TierIndex < b.TierIndex {
			return -1
		}
		return 1
	case a.Division < b.Division:
		return -1
	case a.Division > b.Division:
		return 1
	}
	return 0
}

// Classify reports whether moving from before to after is a promotion or demotion.
func Classify(before, after *Position) Change {
	switch c := Compare(after, before); {
	case c > 0:
		return Promotion
	case c < 0:
		return Demotion
	}
	return NoChange
}

// Progress is how far elo is from its tier start to the next tier, in [0,1].
// The top tier is always complete.
func (t Table) Progress(elo int) float64 {
	next, ok := t.NextTierAbove(elo)
	if !ok {
		return 1
	}
	start := t.TierFor(elo).Threshold
	if next.Threshold == start {
		return 1
	}
	p := float64(elo-start) / float64(next.Threshold-start)
	return max(0, min(1, p))
}

// Bands lists every tier with its inclusive range.
func (t Table) Bands() []Band {
	out := make([]Band, 0, len(t.tiers))
	for i, tier := range t.tiers {
		b := Band{Tier: tier, Min: tier.Threshold, Max: -1}
		if i+1 < len(t.tiers) {
			b.Max = t.tiers[i+1].Threshold - 1
		}
		out = append(out, b)
	}
	return out
}
