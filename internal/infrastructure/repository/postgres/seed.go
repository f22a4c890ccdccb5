package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/memory"
	"golang.org/x/crypto/bcrypt"
)

// BootstrapSeed loads the demo accounts and fixtures into an empty database.
// It does nothing once any player exists.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM players`); err != nil {
		return fmt.Errorf("count players for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for _, p := range memory.SeedPlayers(now) {
		hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed player %s password: %w", p.ID, err)
		}
		if err := execNamed(ctx, tx, `
INSERT INTO players (id, name, email, password, role, rank_position, created_at, updated_at)
VALUES (:id, :name, :email, :password, :role, :rank_position, :created_at, :updated_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":            p.ID,
			"name":          p.Name,
			"email":         p.Email,
			"password":      string(hash),
			"role":          string(p.Role),
			"rank_position": p.RankPosition,
			"created_at":    p.CreatedAt,
			"updated_at":    p.UpdatedAt,
		}); err != nil {
			return fmt.Errorf("seed player %s: %w", p.ID, err)
		}
	}

	for _, m := range memory.SeedMatches(now) {
		if err := execNamed(ctx, tx, `
INSERT INTO matches (id, home_team, away_team, match_date, match_time, league, tour, status, home_score, away_score, is_visible, created_at, updated_at)
VALUES (:id, :home_team, :away_team, :match_date, :match_time, :league, :tour, :status, :home_score, :away_score, :is_visible, :created_at, :updated_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":         m.ID,
			"home_team":  m.HomeTeam,
			"away_team":  m.AwayTeam,
			"match_date": m.MatchDate,
			"match_time": m.MatchTime,
			"league":     m.League,
			"tour":       nullInt(m.Tour),
			"status":     string(m.Status),
			"home_score": nullInt(m.HomeScore),
			"away_score": nullInt(m.AwayScore),
			"is_visible": m.IsVisible,
			"created_at": m.CreatedAt,
			"updated_at": m.UpdatedAt,
		}); err != nil {
			return fmt.Errorf("seed match %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

func execNamed(ctx context.Context, tx *sqlx.Tx, query string, arg map[string]any) error {
	bound, args, err := sqlx.Named(query, arg)
	if err != nil {
		return fmt.Errorf("bind query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(bound), args...); err != nil {
		return err
	}
	return nil
}
