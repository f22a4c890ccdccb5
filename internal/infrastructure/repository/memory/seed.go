package memory

import (
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/player"
)

const (
	SeedAdminEmail    = "admin@pool.local"
	SeedAdminPassword = "admin"
)

// SeedPlayers returns the local development accounts. Passwords are stored in
// the legacy plaintext form that login still accepts.
func SeedPlayers(now time.Time) []player.Player {
	return []player.Player{
		{
			ID:           "00000000-0000-4000-8000-000000000001",
			Name:         "Администратор",
			Email:        SeedAdminEmail,
			Password:     SeedAdminPassword,
			Role:         player.RoleAdmin,
			RankPosition: 1,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           "00000000-0000-4000-8000-000000000002",
			Name:         "Игрок",
			Email:        "player@pool.local",
			Password:     "player",
			Role:         player.RolePlayer,
			RankPosition: 2,
			CreatedAt:    now.Add(time.Second),
			UpdatedAt:    now.Add(time.Second),
		},
	}
}

// SeedMatches returns one finished and two upcoming fixtures relative to now.
func SeedMatches(now time.Time) []match.Match {
	local := now.In(match.Moscow)
	tour := 1
	home, away := 2, 1
	return []match.Match{
		{
			ID:        "00000000-0000-4000-9000-000000000001",
			HomeTeam:  "Зенит",
			AwayTeam:  "Спартак",
			MatchDate: local.AddDate(0, 0, -7).Format("2006-01-02"),
			MatchTime: "19:00:00",
			League:    match.DefaultLeague,
			Tour:      &tour,
			Status:    match.StatusFinished,
			HomeScore: &home,
			AwayScore: &away,
			IsVisible: true,
			CreatedAt: now.Add(-7 * 24 * time.Hour),
			UpdatedAt: now.Add(-7 * 24 * time.Hour),
		},
		{
			ID:        "00000000-0000-4000-9000-000000000002",
			HomeTeam:  "ЦСКА",
			AwayTeam:  "Локомотив",
			MatchDate: local.AddDate(0, 0, 3).Format("2006-01-02"),
			MatchTime: "17:30:00",
			League:    match.DefaultLeague,
			Status:    match.StatusUpcoming,
			IsVisible: true,
			CreatedAt: now.Add(-time.Hour),
			UpdatedAt: now.Add(-time.Hour),
		},
		{
			ID:        "00000000-0000-4000-9000-000000000003",
			HomeTeam:  "Краснодар",
			AwayTeam:  "Динамо",
			MatchDate: local.AddDate(0, 0, 4).Format("2006-01-02"),
			MatchTime: "20:00:00",
			League:    match.DefaultLeague,
			Status:    match.StatusUpcoming,
			IsVisible: true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
