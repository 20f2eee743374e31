package generator

import (
	"math"

	"github.com/jwebster45206/masquerade/pkg/geom"
)

// SpawnPoint is a suggested NPC position and the point it faces.
type SpawnPoint struct {
	Position geom.Vec3
	LookAt   geom.Vec3
}

// SpawnPoints places count NPCs in groups around random centers. A group
// that cannot be placed within AttemptsPerGroup falls back to placing a
// single NPC, and a single NPC that cannot be placed stands at the center.
func (g *Generator) SpawnPoints(count int) []SpawnPoint {
	p := g.tuning.Placement
	half := p.LevelSize / 2
	points := make([]SpawnPoint, 0, count)

	for remaining := count; remaining > 0; {
		size := min(max(p.MinGroupSize+g.rng.Intn(p.MaxGroupSize-p.MinGroupSize+1), 1), remaining)

		placed := false
		for attempt := 0; attempt < p.AttemptsPerGroup && !placed; attempt++ {
			center := geom.Vec3{X: g.rng.Range(-half, half), Z: g.rng.Range(-half, half)}

			group := make([]SpawnPoint, 0, size)
			for i := 0; i < size; i++ {
				angle := (360.0/float64(size))*float64(i) + g.rng.Range(-12, 12)
				radius := g.rng.Range(p.GroupRadiusMin, p.GroupRadiusMax)
				rad := angle * math.Pi / 180
				pos := center.Add(geom.Vec3{X: math.Cos(rad) * radius, Z: math.Sin(rad) * radius})

				if !insideLevel(pos, half) || !farEnough(pos, p.MinDistance, points, group) {
					break
				}
				group = append(group, SpawnPoint{Position: pos, LookAt: center})
			}

			if len(group) == size {
				points = append(points, group...)
				remaining -= size
				placed = true
			}
		}

		if !placed {
			g.logger.Debug("Failed to place NPC group, placing a single NPC", "group_size", size)
			points = append(points, g.singleSpawnPoint(points, half))
			remaining--
		}
	}

	return points
}

func (g *Generator) singleSpawnPoint(existing []SpawnPoint, half float64) SpawnPoint {
	for attempt := 0; attempt < g.tuning.Placement.AttemptsPerSingle; attempt++ {
		pos := geom.Vec3{X: g.rng.Range(-half, half), Z: g.rng.Range(-half, half)}
		if farEnough(pos, g.tuning.Placement.MinDistance, existing, nil) {
			return SpawnPoint{Position: pos, LookAt: pos}
		}
	}
	return SpawnPoint{}
}

func insideLevel(pos geom.Vec3, half float64) bool {
	return pos.X >= -half && pos.X <= half && pos.Z >= -half && pos.Z <= half
}

func farEnough(pos geom.Vec3, minDistance float64, existing, pending []SpawnPoint) bool {
	minSq := minDistance * minDistance
	for _, p := range existing {
		if p.Position.Sub(pos).LenSq() < minSq {
			return false
		}
	}
	for _, p := range pending {
		if p.Position.Sub(pos).LenSq() < minSq {
			return false
		}
	}
	return true
}
