package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	qb "github.com/riskibarqy/prediction-pool/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) List(ctx context.Context, filter match.ListFilter) ([]match.Match, error) {
	builder := qb.Select(matchColumns...).From("matches")
	if filter.VisibleOnly {
		builder = builder.Where(qb.Eq("is_visible", true))
	}
	query, args, err := builder.OrderBy("created_at DESC", "id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	return matchesFromRows(rows), nil
}

func (r *MatchRepository) ListFinished(ctx context.Context, limit int) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns...).From("matches").
		Where(
			qb.Eq("status", string(match.StatusFinished)),
			qb.NotNull("home_score"),
			qb.NotNull("away_score"),
		).
		OrderBy("match_date DESC", "match_time DESC", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list finished matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list finished matches: %w", err)
	}

	return matchesFromRows(rows), nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns...).From("matches").
		Where(qb.Eq("id", matchID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match id=%s: %w", matchID, err)
	}

	return matchFromRow(row), true, nil
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) error {
	insertModel := matchTableModel{
		ID:        item.ID,
		HomeTeam:  item.HomeTeam,
		AwayTeam:  item.AwayTeam,
		MatchDate: item.MatchDate,
		MatchTime: item.MatchTime,
		League:    item.League,
		Tour:      nullInt(item.Tour),
		Status:    string(item.Status),
		HomeScore: nullInt(item.HomeScore),
		AwayScore: nullInt(item.AwayScore),
		IsVisible: item.IsVisible,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	query, args, err := qb.InsertModel("matches", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create match: %w", err)
	}

	return nil
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match) error {
	query, args, err := qb.Update("matches").
		Set("home_team", item.HomeTeam).
		Set("away_team", item.AwayTeam).
		Set("match_date", item.MatchDate).
		Set("match_time", item.MatchTime).
		Set("league", item.League).
		Set("tour", nullInt(item.Tour)).
		Set("status", string(item.Status)).
		Set("home_score", nullInt(item.HomeScore)).
		Set("away_score", nullInt(item.AwayScore)).
		Set("is_visible", item.IsVisible).
		Set("updated_at", item.UpdatedAt).
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update match: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update match id=%s: not found", item.ID)
	}

	return nil
}

// Delete removes the match; its bets go with it through ON DELETE CASCADE.
func (r *MatchRepository) Delete(ctx context.Context, matchID string) error {
	query, args, err := qb.DeleteFrom("matches").Where(qb.Eq("id", matchID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected delete match: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete match id=%s: not found", matchID)
	}

	return nil
}

func matchesFromRows(rows []matchTableModel) []match.Match {
	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:        row.ID,
		HomeTeam:  row.HomeTeam,
		AwayTeam:  row.AwayTeam,
		MatchDate: row.MatchDate,
		MatchTime: row.MatchTime,
		League:    row.League,
		Tour:      intFromNull(row.Tour),
		Status:    match.Status(row.Status),
		HomeScore: intFromNull(row.HomeScore),
		AwayScore: intFromNull(row.AwayScore),
		IsVisible: row.IsVisible,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
