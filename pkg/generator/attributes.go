package generator

import "github.com/jwebster45206/masquerade/pkg/mask"

// RandomMask draws a mask for a tier. The shape is always drawn; the eyes
// from tier 2 and the mouth from tier 3. Inactive categories are None.
func (g *Generator) RandomMask(tier int) mask.Attributes {
	tier = mask.ClampTier(tier)
	m := mask.Attributes{
		Shape: mask.Shapes[g.rng.Intn(len(mask.Shapes))],
		Eye:   mask.EyeNone,
		Mouth: mask.MouthNone,
	}
	if tier >= 2 {
		m.Eye = mask.Eyes[g.rng.Intn(len(mask.Eyes))]
	}
	if tier >= 3 {
		m.Mouth = mask.Mouths[g.rng.Intn(len(mask.Mouths))]
	}
	return m
}

// DifferentFrom samples a value of domain that is not current. Sampling is
// capped; once the cap is hit the value after current in the domain is used.
// A domain without any other value returns current.
func DifferentFrom[T comparable](g *Generator, current T, domain []T) T {
	if len(domain) == 0 {
		return current
	}
	for i := 0; i < g.tuning.SampleCap; i++ {
		v := domain[g.rng.Intn(len(domain))]
		if v != current {
			return v
		}
	}

	for i, v := range domain {
		if v == current {
			next := domain[(i+1)%len(domain)]
			return next
		}
	}
	return domain[0]
}

// mutate changes one attribute category. category 0 is the shape, 1 the
// eyes, 2 the mouth.
func (g *Generator) mutate(m mask.Attributes, category int) mask.Attributes {
	switch category {
	case 0:
		m.Shape = DifferentFrom(g, m.Shape, mask.Shapes)
	case 1:
		m.Eye = DifferentFrom(g, m.Eye, mask.Eyes)
	case 2:
		m.Mouth = DifferentFrom(g, m.Mouth, mask.Mouths)
	}
	return m
}
