package grade

import "fmt"

// premiumTable holds the fixed premium/discount reference values in
// hundredths of a cent per pound, keyed color grade -> leaf grade ->
// staple length. The values are a business fixture and must match the
// published table exactly.
var premiumTable = map[ColorGrade]map[LeafGrade]map[StapleLength]int{
	ColorSM: {
		1: {32: 70, 33: 370, 34: 405, 35: 470, 36: 535, 37: 580},
		2: {32: 0, 33: 300, 34: 335, 35: 400, 36: 465, 37: 510},
		3: {32: -120, 33: 180, 34: 215, 35: 280, 36: 345, 37: 390},
		4: {32: -335, 33: -35, 34: 0, 35: 65, 36: 130, 37: 175},
		5: {32: -700, 33: -400, 34: -365, 35: -300, 36: -235, 37: -190},
		6: {32: -800, 33: -500, 34: -465, 35: -400, 36: -335, 37: -290},
		7: {32: -800, 33: -500, 34: -465, 35: -400, 36: -335, 37: -290},
	},
	ColorMID: {
		1: {32: -30, 33: 270, 34: 305, 35: 370, 36: 435, 37: 480},
		2: {32: -180, 33: 120, 34: 155, 35: 220, 36: 285, 37: 330},
		3: {32: -400, 33: -100, 34: -65, 35: 0, 36: 65, 37: 110},
		4: {32: -420, 33: -120, 34: -85, 35: -20, 36: 45, 37: 90},
		5: {32: -730, 33: -430, 34: -395, 35: -330, 36: -265, 37: -220},
		6: {32: -850, 33: -550, 34: -515, 35: -450, 36: -385, 37: -340},
		7: {32: -850, 33: -550, 34: -515, 35: -450, 36: -385, 37: -340},
	},
	ColorSLM: {
		1: {32: -320, 33: -20, 34: 15, 35: 80, 36: 145, 37: 190},
		2: {32: -340, 33: -40, 34: -5, 35: 60, 36: 125, 37: 170},
		3: {32: -360, 33: -60, 34: -25, 35: 40, 36: 105, 37: 150},
		4: {32: -400, 33: -100, 34: -65, 35: 0, 36: 65, 37: 110},
		5: {32: -700, 33: -400, 34: -365, 35: -300, 36: -235, 37: -190},
		6: {32: -950, 33: -650, 34: -615, 35: -550, 36: -485, 37: -440},
		7: {32: -950, 33: -650, 34: -615, 35: -550, 36: -485, 37: -440},
	},
}

func init() {
	// Every valid combination must resolve; a hole in the reference table
	// is a programming error, not a runtime condition.
	for _, c := range ColorGrades {
		for l := MinLeafGrade; l <= MaxLeafGrade; l++ {
			for _, s := range StapleLengths {
				if _, ok := premiumTable[c][l][s]; !ok {
					panic(fmt.Sprintf("grade: premium table missing entry %s/%d/%d", c, l, s))
				}
			}
		}
	}
}

// PremiumDiscount returns the premium (positive) or discount (negative)
// for the grade combination, in cents per pound. The stored hundredths
// are divided by 100; no further rounding is applied.
func PremiumDiscount(c ColorGrade, l LeafGrade, s StapleLength) (float64, error) {
	if err := (Params{Color: c, Leaf: l, Staple: s}).Validate(); err != nil {
		return 0, err
	}
	return float64(premiumTable[c][l][s]) / 100, nil
}
