package generator

import "github.com/jwebster45206/masquerade/pkg/design"

// NpcCount returns the roster size of a level.
func (g *Generator) NpcCount(level int) int {
	return g.tuning.NpcCount(max(1, level))
}

// Roster builds the NPCs of a level, each with an independent mask and a
// suggested spawn point.
func (g *Generator) Roster(level, tier int) []design.NpcRecord {
	count := g.NpcCount(level)
	npcs := make([]design.NpcRecord, count)
	for i := range npcs {
		npcs[i] = design.NpcRecord{
			ID:   i,
			Mask: g.RandomMask(tier),
		}
	}

	for i, p := range g.SpawnPoints(count) {
		npcs[i].Position = p.Position
		npcs[i].LookAt = p.LookAt
	}
	return npcs
}
