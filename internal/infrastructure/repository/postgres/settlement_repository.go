package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/settlement"
	qb "github.com/riskibarqy/prediction-pool/internal/platform/querybuilder"
)

type SettlementRepository struct {
	db *sqlx.DB
}

func NewSettlementRepository(db *sqlx.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

func (r *SettlementRepository) Apply(ctx context.Context, result settlement.Result) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx settle match=%s: %w", result.MatchID, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	matchQuery, matchArgs, err := qb.Update("matches").
		Set("home_score", result.HomeScore).
		Set("away_score", result.AwayScore).
		Set("status", string(match.StatusFinished)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", result.MatchID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build settle match query: %w", err)
	}
	matchResult, err := tx.ExecContext(ctx, matchQuery, matchArgs...)
	if err != nil {
		return 0, fmt.Errorf("settle match=%s: %w", result.MatchID, err)
	}
	affected, err := matchResult.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected settle match: %w", err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("settle match=%s: not found", result.MatchID)
	}

	applied := 0
	for _, item := range result.Bets {
		// The is_calculated guard makes each bet count once even if two
		// settlements of the same match race.
		betQuery, betArgs, err := qb.Update("bets").
			Set("points_earned", item.Points).
			Set("is_calculated", true).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("id", item.BetID),
				qb.Eq("match_id", result.MatchID),
				qb.Eq("is_calculated", false),
			).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build settle bet query: %w", err)
		}
		betResult, err := tx.ExecContext(ctx, betQuery, betArgs...)
		if err != nil {
			return 0, fmt.Errorf("settle bet=%s: %w", item.BetID, err)
		}
		betAffected, err := betResult.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected settle bet: %w", err)
		}
		if betAffected == 0 {
			continue
		}

		correct := 0
		if bet.IsCorrect(item.Points) {
			correct = 1
		}
		playerQuery, playerArgs, err := qb.Update("players").
			SetExpr("points", "points + ?", item.Points).
			SetExpr("total_predictions", "total_predictions + 1").
			SetExpr("correct_predictions", "correct_predictions + ?", correct).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", item.PlayerID)).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build credit player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, playerQuery, playerArgs...); err != nil {
			return 0, fmt.Errorf("credit player=%s: %w", item.PlayerID, err)
		}
		applied++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit settle match=%s tx: %w", result.MatchID, err)
	}

	return applied, nil
}
