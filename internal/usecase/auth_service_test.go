package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/domain/session"
)

func newTestAuthService(f *poolFixture) *AuthService {
	return NewAuthService(f.players, f.sessions, &sequenceIDGenerator{prefix: "tok"}, time.Hour, nil)
}

func TestAuthService_LoginAndCurrentUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPoolFixture()
	hash, err := hashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	hashed := testPlayer("p-1", "hashed@pool.local", fixedNow)
	hashed.Password = hash
	legacy := testPlayer("p-2", "legacy@pool.local", fixedNow)
	legacy.Password = "plain"
	f.store.Seed(nil, []player.Player{hashed, legacy}, nil)
	svc := newTestAuthService(f)

	sess, user, err := svc.Login(ctx, " Hashed@Pool.Local ", "s3cret")
	if err != nil {
		t.Fatalf("login with bcrypt password: %v", err)
	}
	if sess.PlayerID != "p-1" || user.Email != "hashed@pool.local" {
		t.Fatalf("unexpected login result: session=%+v user=%+v", sess, user)
	}
	if got := sess.ExpiresAt.Sub(sess.CreatedAt); got != time.Hour {
		t.Fatalf("unexpected session ttl: %s", got)
	}

	if _, _, err := svc.Login(ctx, "legacy@pool.local", "plain"); err != nil {
		t.Fatalf("login with legacy password: %v", err)
	}

	// Counters changed after login must show up on the next lookup.
	scored := hashed
	scored.Points = 5
	if err := f.players.Update(ctx, scored); err != nil {
		t.Fatalf("update player: %v", err)
	}
	current, err := svc.CurrentUser(ctx, sess.Token)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if current.Points != 5 {
		t.Fatalf("expected refreshed points, got %d", current.Points)
	}

	if err := svc.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, sess.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPoolFixture()
	f.store.Seed(nil, []player.Player{testPlayer("p-1", "a@pool.local", fixedNow)}, nil)
	svc := newTestAuthService(f)

	cases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "blank", wantErr: ErrInvalidInput},
		{name: "unknown email", email: "nobody@pool.local", password: "secret", wantErr: ErrUnauthorized},
		{name: "wrong password", email: "a@pool.local", password: "wrong", wantErr: ErrUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Login(ctx, tc.email, tc.password); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAuthService_Authenticate_Expired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPoolFixture()
	svc := newTestAuthService(f)
	now := time.Now()
	svc.now = func() time.Time { return now.Add(2 * time.Hour) }

	if err := f.sessions.Save(ctx, session.Session{Token: "tok", PlayerID: "p-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "tok"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for an expired session, got %v", err)
	}
	if _, exists, _ := f.sessions.Load(ctx, "tok"); exists {
		t.Fatalf("expected the expired session to be removed")
	}
}

func TestAuthService_CurrentUser_DeletedPlayer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPoolFixture()
	svc := newTestAuthService(f)
	now := time.Now()

	if err := f.sessions.Save(ctx, session.Session{Token: "tok", PlayerID: "gone", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if _, err := svc.CurrentUser(ctx, "tok"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
