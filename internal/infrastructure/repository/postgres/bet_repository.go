package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	qb "github.com/riskibarqy/prediction-pool/internal/platform/querybuilder"
)

// A settled bet is frozen: the conflict branch only fires while is_calculated is false.
const upsertBetSuffix = `ON CONFLICT (player_id, match_id) DO UPDATE SET
    predicted_home_score = EXCLUDED.predicted_home_score,
    predicted_away_score = EXCLUDED.predicted_away_score,
    updated_at = EXCLUDED.updated_at
WHERE bets.is_calculated = false`

type BetRepository struct {
	db *sqlx.DB
}

func NewBetRepository(db *sqlx.DB) *BetRepository {
	return &BetRepository{db: db}
}

func (r *BetRepository) GetByPlayerAndMatch(ctx context.Context, playerID, matchID string) (bet.Bet, bool, error) {
	query, args, err := qb.Select("*").From("bets").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("match_id", matchID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return bet.Bet{}, false, fmt.Errorf("build get bet query: %w", err)
	}

	var row betTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return bet.Bet{}, false, nil
		}
		return bet.Bet{}, false, fmt.Errorf("get bet player=%s match=%s: %w", playerID, matchID, err)
	}

	return betFromRow(row), true, nil
}

func (r *BetRepository) Upsert(ctx context.Context, item bet.Bet) error {
	insertModel := betTableModel{
		ID:                 item.ID,
		PlayerID:           item.PlayerID,
		MatchID:            item.MatchID,
		PredictedHomeScore: item.PredictedHomeScore,
		PredictedAwayScore: item.PredictedAwayScore,
		PointsEarned:       nullInt(item.PointsEarned),
		IsCalculated:       item.IsCalculated,
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
	}
	query, args, err := qb.InsertModel("bets", insertModel, upsertBetSuffix)
	if err != nil {
		return fmt.Errorf("build upsert bet query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert bet player=%s match=%s: %w", item.PlayerID, item.MatchID, err)
	}

	return nil
}

func (r *BetRepository) List(ctx context.Context, filter bet.ListFilter) ([]bet.Bet, error) {
	conds := make([]qb.Condition, 0, 3)
	if filter.PlayerID != "" {
		conds = append(conds, qb.Eq("player_id", filter.PlayerID))
	}
	if filter.MatchID != "" {
		conds = append(conds, qb.Eq("match_id", filter.MatchID))
	}
	if filter.UncalculatedOnly {
		conds = append(conds, qb.Eq("is_calculated", false))
	}

	query, args, err := qb.Select("*").From("bets").
		Where(conds...).
		OrderBy("created_at DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list bets query: %w", err)
	}

	var rows []betTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}

	out := make([]bet.Bet, 0, len(rows))
	for _, row := range rows {
		out = append(out, betFromRow(row))
	}

	return out, nil
}

func (r *BetRepository) Count(ctx context.Context) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("bets").ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count bets query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count bets: %w", err)
	}

	return total, nil
}

func betFromRow(row betTableModel) bet.Bet {
	return bet.Bet{
		ID:                 row.ID,
		PlayerID:           row.PlayerID,
		MatchID:            row.MatchID,
		PredictedHomeScore: row.PredictedHomeScore,
		PredictedAwayScore: row.PredictedAwayScore,
		PointsEarned:       intFromNull(row.PointsEarned),
		IsCalculated:       row.IsCalculated,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}
