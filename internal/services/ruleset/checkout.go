package ruleset

import "github.com/mcoot/dartsync/internal/model"

// MaxCheckout is the highest score finishable with three darts under double out
const MaxCheckout = 170

// bogeys are scores at or below MaxCheckout with no three-dart double-out finish
var bogeys = map[int]bool{169: true, 168: true, 166: true, 165: true, 163: true, 162: true, 159: true}

// twoDartBogeys are scores at or below 110 that still need three darts
var twoDartBogeys = map[int]bool{99: true, 102: true, 103: true, 105: true, 106: true, 108: true, 109: true}

// impossibleVisits are totals no combination of three darts can produce
var impossibleVisits = map[int]bool{163: true, 166: true, 169: true, 172: true, 173: true, 175: true, 176: true, 178: true, 179: true}

// CanCheckoutFrom reports whether a remaining score is finishable
func CanCheckoutFrom(score int) bool {
	return score <= MaxCheckout && !bogeys[score]
}

// ValidVisit reports whether a three-dart total can occur on a board
func ValidVisit(points int) bool {
	return points >= 0 && points <= 180 && !impossibleVisits[points]
}

// masterFinishDarts holds the fewest darts for each master-out finish, where
// the last dart lands on a double, a treble or the bull
var masterFinishDarts = buildMasterFinishDarts()

func buildMasterFinishDarts() map[int]int {
	single := []int{25, 50}
	finishing := []int{50}
	for n := 1; n <= 20; n++ {
		single = append(single, n, 2*n, 3*n)
		finishing = append(finishing, 2*n, 3*n)
	}

	darts := make(map[int]int)
	for _, f := range finishing {
		darts[f] = 1
	}
	for _, f := range finishing {
		for _, a := range single {
			if _, ok := darts[f+a]; !ok {
				darts[f+a] = 2
			}
		}
	}
	for _, f := range finishing {
		for _, a := range single {
			for _, b := range single {
				if _, ok := darts[f+a+b]; !ok {
					darts[f+a+b] = 3
				}
			}
		}
	}
	return darts
}

// MinCheckoutDarts returns the fewest darts that can finish score
func MinCheckoutDarts(score int, out model.InOutMode) int {
	if out == model.ModeMaster {
		if n, ok := masterFinishDarts[score]; ok {
			return n
		}
		return 3
	}
	if out != model.ModeDouble {
		switch {
		case score <= 60:
			return 1
		case score <= 120:
			return 2
		default:
			return 3
		}
	}
	switch {
	case score == 50 || (score <= 40 && score%2 == 0):
		return 1
	case score <= 110 && !twoDartBogeys[score]:
		return 2
	default:
		return 3
	}
}
