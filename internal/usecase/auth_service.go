package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/domain/session"
	idgen "github.com/riskibarqy/prediction-pool/internal/platform/id"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// AuthUser is the signed-in player as the client sees it.
type AuthUser struct {
	ID      string
	Name    string
	Email   string
	Role    player.Role
	Points  int
	Correct int
	Total   int
	Rank    int
}

type AuthService struct {
	playerRepo player.Repository
	sessions   session.Store
	tokens     idgen.TokenGenerator
	ttl        time.Duration
	logger     *logging.Logger
	now        func() time.Time
}

func NewAuthService(
	playerRepo player.Repository,
	sessions session.Store,
	tokens idgen.TokenGenerator,
	ttl time.Duration,
	logger *logging.Logger,
) *AuthService {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &AuthService{
		playerRepo: playerRepo,
		sessions:   sessions,
		tokens:     tokens,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (session.Session, AuthUser, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Login")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return session.Session{}, AuthUser{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	item, exists, err := s.playerRepo.GetByEmail(ctx, email)
	if err != nil {
		return session.Session{}, AuthUser{}, fmt.Errorf("get player by email: %w", err)
	}
	if !exists || !verifyPassword(item.Password, password) {
		return session.Session{}, AuthUser{}, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		return session.Session{}, AuthUser{}, fmt.Errorf("generate session token: %w", err)
	}
	now := s.now().UTC()
	sess := session.Session{
		Token:     token,
		PlayerID:  item.ID,
		Role:      item.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return session.Session{}, AuthUser{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.InfoContext(ctx, "player signed in", "player_id", item.ID, "role", item.Role)
	return sess, authUserFromPlayer(item), nil
}

// Authenticate resolves a bearer token to its live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Authenticate")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return session.Session{}, fmt.Errorf("%w: session token is required", ErrUnauthorized)
	}

	sess, exists, err := s.sessions.Load(ctx, token)
	if err != nil {
		return session.Session{}, fmt.Errorf("load session: %w", err)
	}
	if !exists {
		return session.Session{}, fmt.Errorf("%w: session not found", ErrUnauthorized)
	}
	if sess.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return session.Session{}, fmt.Errorf("%w: session expired", ErrUnauthorized)
	}
	return sess, nil
}

// CurrentUser refreshes the signed-in player from the store, so counters and
// rank are current rather than those captured at login.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (AuthUser, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.CurrentUser")
	defer span.End()

	sess, err := s.Authenticate(ctx, token)
	if err != nil {
		return AuthUser{}, err
	}

	item, exists, err := s.playerRepo.GetByID(ctx, sess.PlayerID)
	if err != nil {
		return AuthUser{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		_ = s.sessions.Delete(ctx, token)
		return AuthUser{}, fmt.Errorf("%w: player no longer exists", ErrUnauthorized)
	}
	return authUserFromPlayer(item), nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Logout")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func authUserFromPlayer(p player.Player) AuthUser {
	return AuthUser{
		ID:      p.ID,
		Name:    p.Name,
		Email:   p.Email,
		Role:    p.Role,
		Points:  p.Points,
		Correct: p.CorrectPredictions,
		Total:   p.TotalPredictions,
		Rank:    p.RankPosition,
	}
}
