package player

import (
	"math"
	"sort"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RolePlayer:
		return RolePlayer, true
	default:
		return "", false
	}
}

// Player is a registered pool participant. Password holds a bcrypt hash, or
// the legacy plaintext credential for records imported as-is.
type Player struct {
	ID                 string
	Name               string
	Email              string
	Password           string
	Role               Role
	Points             int
	CorrectPredictions int
	TotalPredictions   int
	RankPosition       int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (p Player) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Accuracy is the rounded percentage of correct predictions, 0 without predictions.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func (p Player) Accuracy() int {
	return Accuracy(p.CorrectPredictions, p.TotalPredictions)
}

// SortForRanking orders players for rank assignment: points desc, rounded
// accuracy desc, earliest registration, then id. recalculate_rankings() in the
// schema uses the same order.
func SortForRanking(items []Player) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if accA, accB := a.Accuracy(), b.Accuracy(); accA != accB {
			return accA > accB
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// AssignRanks sorts items for ranking and writes 1-based dense positions.
func AssignRanks(items []Player) {
	SortForRanking(items)
	for i := range items {
		items[i].RankPosition = i + 1
	}
}
