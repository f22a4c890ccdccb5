package match

import (
	"strings"
	"time"
)

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusLive     Status = "live"
	StatusFinished Status = "finished"
)

// DefaultLeague is used when an administrator leaves the league blank.
const DefaultLeague = "РПЛ"

// Match is one fixture players can predict. MatchDate and MatchTime are kept
// in their stored textual form; see ParseKickoff for how they become an instant.
type Match struct {
	ID        string
	HomeTeam  string
	AwayTeam  string
	MatchDate string
	MatchTime string
	League    string
	Tour      *int
	Status    Status
	HomeScore *int
	AwayScore *int
	IsVisible bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusUpcoming:
		return StatusUpcoming, true
	case StatusLive:
		return StatusLive, true
	case StatusFinished:
		return StatusFinished, true
	default:
		return "", false
	}
}

// HasFinalScore reports whether the match is finished with both scores known.
func (m Match) HasFinalScore() bool {
	return m.Status == StatusFinished && m.HomeScore != nil && m.AwayScore != nil
}

// ListFilter narrows List results.
type ListFilter struct {
	VisibleOnly bool
}
