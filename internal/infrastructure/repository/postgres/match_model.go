package postgres

import (
	"database/sql"
	"time"
)

// match_date and match_time are DATE and TIME columns read back through ::text,
// which renders them as YYYY-MM-DD and HH:MM:SS.
var matchColumns = []string{
	"id",
	"home_team",
	"away_team",
	"match_date::text AS match_date",
	"match_time::text AS match_time",
	"league",
	"tour",
	"status",
	"home_score",
	"away_score",
	"is_visible",
	"created_at",
	"updated_at",
}

type matchTableModel struct {
	ID        string        `db:"id"`
	HomeTeam  string        `db:"home_team"`
	AwayTeam  string        `db:"away_team"`
	MatchDate string        `db:"match_date"`
	MatchTime string        `db:"match_time"`
	League    string        `db:"league"`
	Tour      sql.NullInt64 `db:"tour"`
	Status    string        `db:"status"`
	HomeScore sql.NullInt64 `db:"home_score"`
	AwayScore sql.NullInt64 `db:"away_score"`
	IsVisible bool          `db:"is_visible"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}
