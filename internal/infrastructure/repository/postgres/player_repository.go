package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	qb "github.com/riskibarqy/prediction-pool/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select("*").From("players").
		OrderBy("rank_position ASC", "created_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}

	return out, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	return r.getOne(ctx, qb.Eq("id", playerID), "id="+playerID)
}

func (r *PlayerRepository) GetByEmail(ctx context.Context, email string) (player.Player, bool, error) {
	return r.getOne(ctx, qb.Expr("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))), "email")
}

func (r *PlayerRepository) getOne(ctx context.Context, cond qb.Condition, label string) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").Where(cond).Limit(1).ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player %s: %w", label, err)
	}

	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) Create(ctx context.Context, item player.Player) error {
	insertModel := playerTableModel{
		ID:                 item.ID,
		Name:               item.Name,
		Email:              item.Email,
		Password:           item.Password,
		Role:               string(item.Role),
		Points:             item.Points,
		CorrectPredictions: item.CorrectPredictions,
		TotalPredictions:   item.TotalPredictions,
		RankPosition:       item.RankPosition,
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
	}
	query, args, err := qb.InsertModel("players", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return player.ErrEmailTaken
		}
		return fmt.Errorf("create player: %w", err)
	}

	return nil
}

func (r *PlayerRepository) Update(ctx context.Context, item player.Player) error {
	query, args, err := qb.Update("players").
		Set("name", item.Name).
		Set("email", item.Email).
		Set("password", item.Password).
		Set("role", string(item.Role)).
		Set("points", item.Points).
		Set("correct_predictions", item.CorrectPredictions).
		Set("total_predictions", item.TotalPredictions).
		Set("updated_at", item.UpdatedAt).
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update player query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return player.ErrEmailTaken
		}
		return fmt.Errorf("update player: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update player: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update player id=%s: not found", item.ID)
	}

	return nil
}

// Delete removes the player; their bets go with them through ON DELETE CASCADE.
func (r *PlayerRepository) Delete(ctx context.Context, playerID string) error {
	query, args, err := qb.DeleteFrom("players").Where(qb.Eq("id", playerID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete player query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected delete player: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete player id=%s: not found", playerID)
	}

	return nil
}

func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("players").ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count players query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}

	return total, nil
}

// RecalculateRankings runs the recalculate_rankings() stored procedure, which
// rewrites rank_position for every player in one statement.
func (r *PlayerRepository) RecalculateRankings(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "SELECT recalculate_rankings()"); err != nil {
		return fmt.Errorf("recalculate rankings: %w", err)
	}

	return nil
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:                 row.ID,
		Name:               row.Name,
		Email:              row.Email,
		Password:           row.Password,
		Role:               player.Role(row.Role),
		Points:             row.Points,
		CorrectPredictions: row.CorrectPredictions,
		TotalPredictions:   row.TotalPredictions,
		RankPosition:       row.RankPosition,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}
