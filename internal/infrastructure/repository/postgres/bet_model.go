package postgres

import (
	"database/sql"
	"time"
)

type betTableModel struct {
	ID                 string        `db:"id"`
	PlayerID           string        `db:"player_id"`
	MatchID            string        `db:"match_id"`
	PredictedHomeScore int           `db:"predicted_home_score"`
	PredictedAwayScore int           `db:"predicted_away_score"`
	PointsEarned       sql.NullInt64 `db:"points_earned"`
	IsCalculated       bool          `db:"is_calculated"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}
