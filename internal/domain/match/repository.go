package match

import "context"

// Repository exposes match persistence.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Match, error)
	ListFinished(ctx context.Context, limit int) ([]Match, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	Create(ctx context.Context, item Match) error
	Update(ctx context.Context, item Match) error
	Delete(ctx context.Context, matchID string) error
}
