package bet

import "context"

// Repository exposes bet persistence. Upsert is keyed by (PlayerID, MatchID).
type Repository interface {
	GetByPlayerAndMatch(ctx context.Context, playerID, matchID string) (Bet, bool, error)
	Upsert(ctx context.Context, item Bet) error
	List(ctx context.Context, filter ListFilter) ([]Bet, error)
	Count(ctx context.Context) (int, error)
}
