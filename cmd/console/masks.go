package main

import (
	"github.com/jwebster45206/masquerade/pkg/mask"
)

var (
	shapeFrames = map[mask.Shape][2]string{
		mask.ShapeRound:    {"(", ")"},
		mask.ShapeSquare:   {"[", "]"},
		mask.ShapeTriangle: {"<", ">"},
	}
	eyeGlyphs = map[mask.EyeState]string{
		mask.EyeSmile:   "^",
		mask.EyeNeutral: "-",
		mask.EyeFrown:   "`",
		mask.EyeNone:    " ",
	}
	mouthGlyphs = map[mask.MouthMood]string{
		mask.MouthHappy:       "v",
		mask.MouthIndifferent: "_",
		mask.MouthSad:         "n",
		mask.MouthNone:        " ",
	}
)

// faceArt resolves mask codes to small text faces for the sidebar.
type faceArt map[string]string

var _ mask.CodeResolver = faceArt(nil)

// newFaceArt draws every mask once, keyed by its code.
func newFaceArt() faceArt {
	art := make(faceArt)
	eyes := append([]mask.EyeState{mask.EyeNone}, mask.Eyes...)
	mouths := append([]mask.MouthMood{mask.MouthNone}, mask.Mouths...)
	for _, shape := range mask.Shapes {
		frame := shapeFrames[shape]
		for _, eye := range eyes {
			for _, mouth := range mouths {
				code := mask.New(shape, eye, mouth).Code()
				if code == "" {
					continue
				}
				art[code] = frame[0] + eyeGlyphs[eye] + mouthGlyphs[mouth] + eyeGlyphs[eye] + frame[1]
			}
		}
	}
	return art
}

func (f faceArt) Resolve(code string) (string, bool) {
	face, ok := f[code]
	return face, ok
}
