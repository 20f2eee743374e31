package mood

import "github.com/jwebster45206/masquerade/pkg/mask"

// Evaluate decides how an NPC wearing own reacts to the player's disguise.
//
// Without a face on the disguise only the shape counts and one match is
// enough to nod. With a face, two matches nod, one leaves the NPC idle and
// none makes it shake its head.
func Evaluate(player, own mask.Attributes) Mood {
	hasFace := player.HasFace()

	matches := 0
	if player.Shape == own.Shape {
		matches++
	}
	if hasFace {
		if player.Eye == own.Eye {
			matches++
		}
		if player.Mouth == own.Mouth {
			matches++
		}
	}

	if !hasFace {
		if matches >= 1 {
			return Nodding
		}
		return HeadShaking
	}

	switch {
	case matches >= 2:
		return Nodding
	case matches == 1:
		return Idle
	default:
		return HeadShaking
	}
}
