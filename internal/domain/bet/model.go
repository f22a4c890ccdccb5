package bet

import (
	"errors"
	"time"
)

var (
	// ErrMatchStarted rejects a prediction submitted at or after kickoff.
	ErrMatchStarted = errors.New("match already started")
	// ErrMatchLocked rejects a prediction on a match that is no longer upcoming.
	ErrMatchLocked = errors.New("match is closed for predictions")
)

// Bet is one player's predicted score for one match. There is at most one per
// (PlayerID, MatchID).
type Bet struct {
	ID                 string
	PlayerID           string
	MatchID            string
	PredictedHomeScore int
	PredictedAwayScore int
	PointsEarned       *int
	IsCalculated       bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Points returns the earned points, zero while unscored.
func (b Bet) Points() int {
	if b.PointsEarned == nil {
		return 0
	}
	return *b.PointsEarned
}

type ListFilter struct {
	PlayerID string
	MatchID  string
	// UncalculatedOnly keeps bets settlement has not scored yet.
	UncalculatedOnly bool
}
