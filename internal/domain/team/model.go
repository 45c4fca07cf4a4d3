package team

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("team not found")

// Player roles as reported by the squad endpoint.
const (
	RoleBatsman      = "batsman"
	RoleBowler       = "bowler"
	RoleAllRounder   = "allrounder"
	RoleWicketKeeper = "wicketkeeper"
)

// Team is a user's fantasy line-up for one match.
type Team struct {
	ID          int64
	PublicID    string
	UserID      int64
	MatchRef    string
	Name        string
	CreditsUsed float64
	TotalPoints float64
	Rank        *int
	Players     []Player
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Player is one selected player within a team.
type Player struct {
	ID            int64
	TeamID        int64
	PlayerRef     string
	PlayerName    string
	Role          string
	TeamName      string
	CreditCost    float64
	IsCaptain     bool
	IsViceCaptain bool
	Points        float64
}
