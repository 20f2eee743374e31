package mask

import "fmt"

// Shape is the outline of a mask. Every mask has a shape.
type Shape string

const (
	ShapeRound    Shape = "round"
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
)

// EyeState is the expression painted on a mask's eyes.
type EyeState string

const (
	EyeNone    EyeState = "none"
	EyeSmile   EyeState = "smile"
	EyeNeutral EyeState = "neutral"
	EyeFrown   EyeState = "frown"
)

// MouthMood is the expression painted on a mask's mouth.
type MouthMood string

const (
	MouthNone        MouthMood = "none"
	MouthHappy       MouthMood = "happy"
	MouthIndifferent MouthMood = "indifferent"
	MouthSad         MouthMood = "sad"
)

// Domains in canonical order. None sentinels are not part of a domain.
var (
	Shapes = []Shape{ShapeRound, ShapeSquare, ShapeTriangle}
	Eyes   = []EyeState{EyeSmile, EyeNeutral, EyeFrown}
	Mouths = []MouthMood{MouthHappy, MouthIndifferent, MouthSad}
)

// Tier bounds. The tier is the number of active attribute categories.
const (
	MinTier = 1
	MaxTier = 3
)

// Attributes is a full mask description. It is a comparable value type and
// can be used directly as a map key.
type Attributes struct {
	Shape Shape     `json:"shape"`
	Eye   EyeState  `json:"eye"`
	Mouth MouthMood `json:"mouth"`
}

// New returns a mask with the given attributes.
func New(shape Shape, eye EyeState, mouth MouthMood) Attributes {
	return Attributes{Shape: shape, Eye: eye, Mouth: mouth}
}

// ClampTier forces tier into [MinTier, MaxTier].
func ClampTier(tier int) int {
	if tier < MinTier {
		return MinTier
	}
	if tier > MaxTier {
		return MaxTier
	}
	return tier
}

// Normalize forces every category above the active tier to its None sentinel.
func (a Attributes) Normalize(tier int) Attributes {
	tier = ClampTier(tier)
	if tier < 3 {
		a.Mouth = MouthNone
	}
	if tier < 2 {
		a.Eye = EyeNone
	}
	if a.Eye == "" {
		a.Eye = EyeNone
	}
	if a.Mouth == "" {
		a.Mouth = MouthNone
	}
	return a
}

// HasFace reports whether both facial categories are set.
func (a Attributes) HasFace() bool {
	return a.Eye != EyeNone && a.Eye != "" && a.Mouth != MouthNone && a.Mouth != ""
}

// Validate checks every field against its domain.
func (a Attributes) Validate() error {
	if indexOf(Shapes, a.Shape) < 0 {
		return fmt.Errorf("invalid mask shape %q", a.Shape)
	}
	if a.Eye != EyeNone && indexOf(Eyes, a.Eye) < 0 {
		return fmt.Errorf("invalid mask eye state %q", a.Eye)
	}
	if a.Mouth != MouthNone && indexOf(Mouths, a.Mouth) < 0 {
		return fmt.Errorf("invalid mask mouth mood %q", a.Mouth)
	}
	return nil
}

func (a Attributes) String() string {
	return fmt.Sprintf("%s/%s/%s", a.Shape, a.Eye, a.Mouth)
}

// DiffCount returns how many tier-active categories differ between a and b.
func DiffCount(a, b Attributes, tier int) int {
	a, b = a.Normalize(tier), b.Normalize(tier)
	diffs := 0
	if a.Shape != b.Shape {
		diffs++
	}
	if a.Eye != b.Eye {
		diffs++
	}
	if a.Mouth != b.Mouth {
		diffs++
	}
	return diffs
}

// MaxDistinct is the number of distinct normalized masks at a tier.
// Inactive categories contribute a factor of one.
func MaxDistinct(tier int) int {
	tier = ClampTier(tier)
	count := len(Shapes)
	if tier >= 2 {
		count *= len(Eyes)
	}
	if tier >= 3 {
		count *= len(Mouths)
	}
	return count
}

// All enumerates every normalized mask of a tier in canonical order.
func All(tier int) []Attributes {
	tier = ClampTier(tier)
	eyes := []EyeState{EyeNone}
	if tier >= 2 {
		eyes = Eyes
	}
	mouths := []MouthMood{MouthNone}
	if tier >= 3 {
		mouths = Mouths
	}

	out := make([]Attributes, 0, MaxDistinct(tier))
	for _, s := range Shapes {
		for _, e := range eyes {
			for _, m := range mouths {
				out = append(out, Attributes{Shape: s, Eye: e, Mouth: m})
			}
		}
	}
	return out
}

func indexOf[T comparable](domain []T, v T) int {
	for i, d := range domain {
		if d == v {
			return i
		}
	}
	return -1
}
