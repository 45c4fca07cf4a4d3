package match

import (
	"sort"
	"time"
)

const (
	CategoryUpcoming  = "upcoming"
	CategoryLive      = "live"
	CategoryCompleted = "completed"
)

// IST is the zone used for all user-facing date/time strings.
var IST = time.FixedZone("IST", 5*3600+1800)

// Match is one provider match record. Matches are never persisted; they are
// fetched live from the cricket data API and cached briefly.
type Match struct {
	ID             string
	Name           string
	MatchType      string
	Status         string
	Venue          string
	StartAt        time.Time
	Teams          []string
	SeriesID       string
	FantasyEnabled bool
	Started        bool
	Ended          bool
	Scores         []InningsScore
}

// InningsScore is one innings line from the provider score array.
type InningsScore struct {
	Inning  string
	Runs    int
	Wickets int
	Overs   float64
}

// SquadPlayer is one entry from a match squad.
type SquadPlayer struct {
	ID       string
	Name     string
	Role     string
	Country  string
	TeamName string
}

// Squad groups the squad players of one side.
type Squad struct {
	TeamName string
	Players  []SquadPlayer
}

// Series is one provider tournament record.
type Series struct {
	ID        string
	Name      string
	StartDate string
	EndDate   string
	ODI       int
	T20       int
	Test      int
}

// PlayerProfile is the detail view of one player.
type PlayerProfile struct {
	ID           string
	Name         string
	Role         string
	BattingStyle string
	BowlingStyle string
	Country      string
	PlaceOfBirth string
}

// Category derives the lifecycle bucket purely from the two provider booleans.
func Category(m Match) string {
	switch {
	case m.Ended:
		return CategoryCompleted
	case m.Started:
		return CategoryLive
	default:
		return CategoryUpcoming
	}
}

// SortForCategory orders matches for display: upcoming ascending by start time,
// live and completed most-recent first.
func SortForCategory(matches []Match, category string) {
	if category == CategoryUpcoming {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].StartAt.Before(matches[j].StartAt)
		})
		return
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].StartAt.After(matches[j].StartAt)
	})
}

// FormatIST renders a timestamp for display in India Standard Time.
func FormatIST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(IST).Format("02 Jan 2006, 03:04 PM")
}
