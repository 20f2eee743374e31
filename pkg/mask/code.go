package mask

import "strings"

// CodeResolver maps a mask code to whatever asset a renderer keeps for it.
// Renderers implement it once at construction instead of matching child
// object names at runtime.
type CodeResolver interface {
	Resolve(code string) (asset string, ok bool)
}

var shapeCodes = map[Shape]string{
	ShapeRound:    "R",
	ShapeSquare:   "S",
	ShapeTriangle: "T",
}

var eyeCodes = map[EyeState]string{
	EyeSmile:   "S",
	EyeNeutral: "N",
	EyeFrown:   "F",
	EyeNone:    "O",
}

var mouthCodes = map[MouthMood]string{
	MouthHappy:       "H",
	MouthIndifferent: "I",
	MouthSad:         "S",
	MouthNone:        "O",
}

// Code builds the asset code of a mask, e.g. "MR.SH" for a round mask with
// smiling eyes and a happy mouth. It returns "" for masks outside the domain.
func (a Attributes) Code() string {
	a = a.Normalize(MaxTier)
	shape, ok := shapeCodes[a.Shape]
	if !ok {
		return ""
	}
	eye, ok := eyeCodes[a.Eye]
	if !ok {
		return ""
	}
	mouth, ok := mouthCodes[a.Mouth]
	if !ok {
		return ""
	}
	return "M" + shape + "." + eye + mouth
}

// ParseCode is the inverse of Code. Matching is case-insensitive.
func ParseCode(code string) (Attributes, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 5 || code[0] != 'M' || code[2] != '.' {
		return Attributes{}, false
	}

	var a Attributes
	found := false
	for s, c := range shapeCodes {
		if c == code[1:2] {
			a.Shape, found = s, true
		}
	}
	if !found {
		return Attributes{}, false
	}

	found = false
	for e, c := range eyeCodes {
		if c == code[3:4] {
			a.Eye, found = e, true
		}
	}
	if !found {
		return Attributes{}, false
	}

	found = false
	for m, c := range mouthCodes {
		if c == code[4:5] {
			a.Mouth, found = m, true
		}
	}
	if !found {
		return Attributes{}, false
	}
	return a, true
}
