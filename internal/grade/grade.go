package grade

import "fmt"

// ColorGrade classifies cotton by color.
type ColorGrade string

// Recognised color grades.
const (
	ColorSM  ColorGrade = "SM"
	ColorMID ColorGrade = "MID"
	ColorSLM ColorGrade = "SLM"
)

// ColorGrades lists every valid color grade in table order.
var ColorGrades = []ColorGrade{ColorSM, ColorMID, ColorSLM}

// Valid reports whether the color grade is one of the recognised values.
func (c ColorGrade) Valid() bool {
	switch c {
	case ColorSM, ColorMID, ColorSLM:
		return true
	}
	return false
}

// LeafGrade classifies cotton by leaf content, 1 (best) through 7.
type LeafGrade int

// Leaf grade bounds.
const (
	MinLeafGrade LeafGrade = 1
	MaxLeafGrade LeafGrade = 7
)

// Valid reports whether the leaf grade is within 1..7.
func (l LeafGrade) Valid() bool {
	return l >= MinLeafGrade && l <= MaxLeafGrade
}

// StapleLength is the fiber length class; only the six classes 32..37
// appear in the reference table.
type StapleLength int

// StapleLengths lists every valid staple length class in table order.
var StapleLengths = []StapleLength{32, 33, 34, 35, 36, 37}

// Valid reports whether the staple length is one of the tabulated classes.
func (s StapleLength) Valid() bool {
	return s >= 32 && s <= 37
}

// Params bundles the three grade inputs of a sample.
type Params struct {
	Color  ColorGrade
	Leaf   LeafGrade
	Staple StapleLength
}

// Validate checks every component against its enumerated domain.
func (p Params) Validate() error {
	if !p.Color.Valid() {
		return fmt.Errorf("unknown color grade %q", string(p.Color))
	}
	if !p.Leaf.Valid() {
		return fmt.Errorf("leaf grade %d out of range 1..7", int(p.Leaf))
	}
	if !p.Staple.Valid() {
		return fmt.Errorf("staple length %d not in 32..37", int(p.Staple))
	}
	return nil
}
