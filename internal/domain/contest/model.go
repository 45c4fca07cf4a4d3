package contest

import (
	"errors"
	"time"
)

const (
	StatusUpcoming  = "upcoming"
	StatusLive      = "live"
	StatusCompleted = "completed"
)

var (
	ErrNotFound      = errors.New("contest not found")
	ErrContestFull   = errors.New("contest is full")
	ErrAlreadyJoined = errors.New("you have already joined this contest")
	ErrNotJoinable   = errors.New("contest is not open for entries")
)

// Contest is a pool that fantasy teams join to compete on one match.
type Contest struct {
	ID             int64
	PublicID       string
	MatchRef       string
	Name           string
	TemplateCode   string
	EntryFee       float64
	PrizePool      float64
	MaxEntries     int
	CurrentEntries int
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Entry links one user's team to a contest.
type Entry struct {
	ID        int64
	ContestID int64
	UserID    int64
	TeamID    int64
	Points    float64
	Rank      *int
	ScoredAt  *time.Time
	CreatedAt time.Time
}

// PlayerScore carries one scored player's fantasy points, multipliers applied.
type PlayerScore struct {
	PlayerRef string
	Points    float64
}

// LeaderboardRow is one per-contest standings line.
type LeaderboardRow struct {
	Rank         int
	UserPublicID string
	UserName     string
	TeamPublicID string
	TeamName     string
	Points       float64
	JoinedAt     time.Time
}

// Template is one of the fixed contest shapes created per match.
type Template struct {
	Code       string
	Name       string
	MaxEntries int
}

// Templates returns the fixed set auto-created for every new match, in creation order.
func Templates() []Template {
	return []Template{
		{Code: "mega", Name: "Mega Contest", MaxEntries: 10000},
		{Code: "h2h", Name: "Head to Head", MaxEntries: 2},
		{Code: "small", Name: "Small League", MaxEntries: 100},
		{Code: "grand", Name: "Grand League", MaxEntries: 1000},
		{Code: "practice", Name: "Practice Contest", MaxEntries: 5000},
	}
}

// CanTransition reports whether a status change is allowed. The flow is
// upcoming -> live -> completed with no reverse step; completed is terminal.
func CanTransition(from, to string) bool {
	switch from {
	case StatusUpcoming:
		return to == StatusLive || to == StatusCompleted
	case StatusLive:
		return to == StatusCompleted
	default:
		return false
	}
}

func ValidStatus(status string) bool {
	switch status {
	case StatusUpcoming, StatusLive, StatusCompleted:
		return true
	default:
		return false
	}
}
