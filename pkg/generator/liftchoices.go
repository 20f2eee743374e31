package generator

import (
	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/mask"
)

// Decoy returns base with up to changeCount tier-active categories changed,
// walking shape, eyes, mouth in that order.
func (g *Generator) Decoy(base mask.Attributes, changeCount, tier int) mask.Attributes {
	tier = mask.ClampTier(tier)
	decoy := base.Normalize(tier)
	changed := 0
	for category := 0; category < tier && changed < changeCount; category++ {
		decoy = g.mutate(decoy, category)
		changed++
	}
	return decoy
}

// LiftChoices returns the three masks shown on the elevators. The normalized
// disguise is always present exactly once; the two decoys are near misses of
// it. The order is shuffled so the disguise slot cannot be predicted.
func (g *Generator) LiftChoices(disguise mask.Attributes, tier int) []mask.Attributes {
	disguise = disguise.Normalize(tier)
	choices := make([]mask.Attributes, 0, design.LiftChoiceCount)
	seen := make(map[mask.Attributes]bool, design.LiftChoiceCount)

	add := func(m mask.Attributes) bool {
		if seen[m] {
			return false
		}
		seen[m] = true
		choices = append(choices, m)
		return true
	}
	add(disguise)

	for changes := 1; changes < design.LiftChoiceCount; changes++ {
		for attempt := 0; attempt < g.tuning.DecoyAttempts; attempt++ {
			if add(g.Decoy(disguise, changes, tier)) {
				break
			}
		}
	}

	if len(choices) < design.LiftChoiceCount {
		g.logger.Debug("Decoy search exhausted, falling back to mask enumeration",
			"error", design.ErrGenerationExhausted,
			"tier", tier,
			"found", len(choices))
		for _, m := range mask.All(tier) {
			if len(choices) == design.LiftChoiceCount {
				break
			}
			add(m)
		}
	}

	// Only reachable with a domain smaller than the choice count.
	for len(choices) < design.LiftChoiceCount {
		choices = append(choices, disguise)
	}

	g.rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	return choices
}
