package session

import (
	"context"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/player"
)

// Session is an authenticated player's login, addressed by an opaque token.
type Session struct {
	Token     string
	PlayerID  string
	Role      player.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

func (s Session) IsAdmin() bool {
	return s.Role == player.RoleAdmin
}

// Store holds sessions for their lifetime: Save on login, Load per request,
// Delete on logout. DeleteByPlayer revokes every login of a removed player.
type Store interface {
	Save(ctx context.Context, item Session) error
	Load(ctx context.Context, token string) (Session, bool, error)
	Delete(ctx context.Context, token string) error
	DeleteByPlayer(ctx context.Context, playerID string) error
}
