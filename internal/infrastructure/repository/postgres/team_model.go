package postgres

import (
	"time"

	"github.com/crickarena/crickarena/internal/domain/team"
)

type teamTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	UserID      int64     `db:"user_id"`
	MatchRef    string    `db:"match_ref"`
	Name        string    `db:"name"`
	CreditsUsed float64   `db:"credits_used"`
	TotalPoints float64   `db:"total_points"`
	Rank        *int      `db:"rank"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type teamInsertModel struct {
	PublicID    string  `db:"public_id"`
	UserID      int64   `db:"user_id"`
	MatchRef    string  `db:"match_ref"`
	Name        string  `db:"name"`
	CreditsUsed float64 `db:"credits_used"`
}

type teamPlayerTableModel struct {
	ID            int64   `db:"id"`
	TeamID        int64   `db:"team_id"`
	PlayerRef     string  `db:"player_ref"`
	PlayerName    string  `db:"player_name"`
	Role          string  `db:"role"`
	TeamName      string  `db:"team_name"`
	CreditCost    float64 `db:"credit_cost"`
	IsCaptain     bool    `db:"is_captain"`
	IsViceCaptain bool    `db:"is_vice_captain"`
	Points        float64 `db:"points"`
}

type teamPlayerInsertModel struct {
	TeamID        int64   `db:"team_id"`
	PlayerRef     string  `db:"player_ref"`
	PlayerName    string  `db:"player_name"`
	Role          string  `db:"role"`
	TeamName      string  `db:"team_name"`
	CreditCost    float64 `db:"credit_cost"`
	IsCaptain     bool    `db:"is_captain"`
	IsViceCaptain bool    `db:"is_vice_captain"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:          m.ID,
		PublicID:    m.PublicID,
		UserID:      m.UserID,
		MatchRef:    m.MatchRef,
		Name:        m.Name,
		CreditsUsed: m.CreditsUsed,
		TotalPoints: m.TotalPoints,
		Rank:        m.Rank,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (m teamPlayerTableModel) toDomain() team.Player {
	return team.Player{
		ID:            m.ID,
		TeamID:        m.TeamID,
		PlayerRef:     m.PlayerRef,
		PlayerName:    m.PlayerName,
		Role:          m.Role,
		TeamName:      m.TeamName,
		CreditCost:    m.CreditCost,
		IsCaptain:     m.IsCaptain,
		IsViceCaptain: m.IsViceCaptain,
		Points:        m.Points,
	}
}
