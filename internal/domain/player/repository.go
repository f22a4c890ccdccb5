package player

import "context"

// Repository exposes player persistence. List is ordered by rank position.
type Repository interface {
	List(ctx context.Context) ([]Player, error)
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	GetByEmail(ctx context.Context, email string) (Player, bool, error)
	Create(ctx context.Context, item Player) error
	Update(ctx context.Context, item Player) error
	Delete(ctx context.Context, playerID string) error
	Count(ctx context.Context) (int, error)
}

// RankingRecalculator recomputes rank_position for every player.
type RankingRecalculator interface {
	RecalculateRankings(ctx context.Context) error
}
