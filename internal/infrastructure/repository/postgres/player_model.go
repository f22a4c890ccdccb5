package postgres

import "time"

type playerTableModel struct {
	ID                 string    `db:"id"`
	Name               string    `db:"name"`
	Email              string    `db:"email"`
	Password           string    `db:"password"`
	Role               string    `db:"role"`
	Points             int       `db:"points"`
	CorrectPredictions int       `db:"correct_predictions"`
	TotalPredictions   int       `db:"total_predictions"`
	RankPosition       int       `db:"rank_position"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}
