package settlement

import "context"

// BetResult is the score awarded to one bet.
type BetResult struct {
	BetID    string
	PlayerID string
	Points   int
}

// Result is everything one match settlement writes.
type Result struct {
	MatchID   string
	HomeScore int
	AwayScore int
	Bets      []BetResult
}

// Repository applies a settlement atomically: the match final score, each
// still-uncalculated bet and the owning players' counters. Bets that are
// already calculated are skipped, so applying twice is a no-op for them.
type Repository interface {
	Apply(ctx context.Context, result Result) (int, error)
}
