package generator

import (
	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/mask"
)

// Classify rates candidate against reference at a tier.
//
//   - Best: equal after normalization.
//   - Partial: exactly one category differs while more than one is active.
//   - None: every active category differs.
//
// Candidates that fit none of these (two of three categories differ) return
// ok == false.
func Classify(reference, candidate mask.Attributes, tier int) (fit design.Fit, ok bool) {
	tier = mask.ClampTier(tier)
	diffs := mask.DiffCount(reference, candidate, tier)
	switch {
	case diffs == 0:
		return design.FitBest, true
	case diffs == tier:
		return design.FitNone, true
	case diffs == 1:
		return design.FitPartial, true
	default:
		return "", false
	}
}

// MostCommonMask returns the most frequent normalized mask of a roster.
// Ties go to the mask seen first.
func MostCommonMask(npcs []design.NpcRecord, tier int) (mask.Attributes, bool) {
	if len(npcs) == 0 {
		return mask.Attributes{}, false
	}

	counts := make(map[mask.Attributes]int, len(npcs))
	var best mask.Attributes
	bestCount := 0
	for _, npc := range npcs {
		m := npc.Mask.Normalize(tier)
		counts[m]++
		if counts[m] > bestCount {
			best, bestCount = m, counts[m]
		}
	}
	return best, true
}

// Board fills the fit board for a level around a reference mask. The
// reference comes first as the Best entry; at least one Partial and one None
// follow when the tier allows them, then a random mix. The search is bounded
// by BoardAttempts and returns a short board when it runs out.
func (g *Generator) Board(level, tier int, reference mask.Attributes) []design.MaskOption {
	tier = mask.ClampTier(tier)
	reference = reference.Normalize(tier)
	target := g.tuning.MaskCount(max(1, level), tier)

	options := make([]design.MaskOption, 0, target)
	options = append(options, design.MaskOption{Mask: reference, Fit: design.FitBest})
	seen := map[mask.Attributes]bool{reference: true}
	havePartial, haveNone := false, false

	for attempt := 0; len(options) < target && attempt < g.tuning.BoardAttempts; attempt++ {
		var want design.Fit
		switch {
		case !havePartial && tier > 1:
			want = design.FitPartial
		case !haveNone:
			want = design.FitNone
		case tier > 1 && g.rng.Chance():
			want = design.FitPartial
		default:
			want = design.FitNone
		}

		candidate := reference
		if want == design.FitPartial {
			candidate = g.mutate(candidate, g.rng.Intn(tier))
		} else {
			for category := 0; category < tier; category++ {
				candidate = g.mutate(candidate, category)
			}
		}

		if seen[candidate] {
			continue
		}
		fit, ok := Classify(reference, candidate, tier)
		if !ok || fit == design.FitBest {
			continue
		}

		seen[candidate] = true
		options = append(options, design.MaskOption{Mask: candidate, Fit: fit})
		switch fit {
		case design.FitPartial:
			havePartial = true
		case design.FitNone:
			haveNone = true
		}
	}

	if len(options) < target {
		g.logger.Debug("Board search exhausted",
			"error", design.ErrGenerationExhausted,
			"level", level,
			"tier", tier,
			"wanted", target,
			"found", len(options))
	}
	return options
}
