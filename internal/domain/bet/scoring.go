package bet

import "strconv"

type Outcome int

const (
	OutcomeAwayWin Outcome = iota - 1
	OutcomeDraw
	OutcomeHomeWin
)

const (
	PointsExact   = 3
	PointsOutcome = 1
	PointsMiss    = 0
)

func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHomeWin
	case home < away:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

// Score awards 3 points for the exact score, 1 for the right outcome and 0 otherwise.
func Score(predictedHome, predictedAway, actualHome, actualAway int) int {
	if predictedHome == actualHome && predictedAway == actualAway {
		return PointsExact
	}
	if OutcomeOf(predictedHome, predictedAway) == OutcomeOf(actualHome, actualAway) {
		return PointsOutcome
	}
	return PointsMiss
}

// IsCorrect reports whether a scored bet counts toward correct predictions.
func IsCorrect(points int) bool {
	return points > PointsMiss
}

// PointsLabel renders points the way the match card shows them, e.g. "+3 очка".
func PointsLabel(points int) string {
	return "+" + strconv.Itoa(points) + " " + pointsNoun(points)
}

func pointsNoun(n int) string {
	if n < 0 {
		n = -n
	}
	mod10, mod100 := n%10, n%100
	switch {
	case mod10 == 1 && mod100 != 11:
		return "очко"
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
		return "очка"
	default:
		return "очков"
	}
}
