package bet

import (
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/match"
)

type State string

const (
	StateNone    State = "none"
	StatePending State = "pending"
	StateLocked  State = "locked"
	StateScored  State = "scored"
)

// StateOf derives where a (player, match) pair sits in the prediction lifecycle.
func StateOf(now time.Time, m match.Match, b Bet, exists bool) State {
	switch {
	case !exists:
		return StateNone
	case b.IsCalculated:
		return StateScored
	case !match.AcceptsPredictions(now, m):
		return StateLocked
	default:
		return StatePending
	}
}
