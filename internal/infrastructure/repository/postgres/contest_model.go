package postgres

import (
	"time"

	"github.com/crickarena/crickarena/internal/domain/contest"
)

type contestTableModel struct {
	ID             int64     `db:"id"`
	PublicID       string    `db:"public_id"`
	MatchRef       string    `db:"match_ref"`
	Name           string    `db:"name"`
	TemplateCode   string    `db:"template_code"`
	EntryFee       float64   `db:"entry_fee"`
	PrizePool      float64   `db:"prize_pool"`
	MaxEntries     int       `db:"max_entries"`
	CurrentEntries int       `db:"current_entries"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type contestInsertModel struct {
	PublicID     string  `db:"public_id"`
	MatchRef     string  `db:"match_ref"`
	Name         string  `db:"name"`
	TemplateCode string  `db:"template_code"`
	EntryFee     float64 `db:"entry_fee"`
	PrizePool    float64 `db:"prize_pool"`
	MaxEntries   int     `db:"max_entries"`
	Status       string  `db:"status"`
}

type contestEntryTableModel struct {
	ID        int64      `db:"id"`
	ContestID int64      `db:"contest_id"`
	UserID    int64      `db:"user_id"`
	TeamID    int64      `db:"team_id"`
	Points    float64    `db:"points"`
	Rank      *int       `db:"rank"`
	ScoredAt  *time.Time `db:"scored_at"`
	CreatedAt time.Time  `db:"created_at"`
}

type contestEntryInsertModel struct {
	ContestID int64 `db:"contest_id"`
	UserID    int64 `db:"user_id"`
	TeamID    int64 `db:"team_id"`
}

type leaderboardRowModel struct {
	Rank         int       `db:"rank"`
	UserPublicID string    `db:"user_public_id"`
	UserName     string    `db:"user_name"`
	TeamPublicID string    `db:"team_public_id"`
	TeamName     string    `db:"team_name"`
	Points       float64   `db:"points"`
	JoinedAt     time.Time `db:"joined_at"`
}

func (m contestTableModel) toDomain() contest.Contest {
	return contest.Contest{
		ID:             m.ID,
		PublicID:       m.PublicID,
		MatchRef:       m.MatchRef,
		Name:           m.Name,
		TemplateCode:   m.TemplateCode,
		EntryFee:       m.EntryFee,
		PrizePool:      m.PrizePool,
		MaxEntries:     m.MaxEntries,
		CurrentEntries: m.CurrentEntries,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func (m contestEntryTableModel) toDomain() contest.Entry {
	return contest.Entry{
		ID:        m.ID,
		ContestID: m.ContestID,
		UserID:    m.UserID,
		TeamID:    m.TeamID,
		Points:    m.Points,
		Rank:      m.Rank,
		ScoredAt:  m.ScoredAt,
		CreatedAt: m.CreatedAt,
	}
}

func (m leaderboardRowModel) toDomain() contest.LeaderboardRow {
	return contest.LeaderboardRow{
		Rank:         m.Rank,
		UserPublicID: m.UserPublicID,
		UserName:     m.UserName,
		TeamPublicID: m.TeamPublicID,
		TeamName:     m.TeamName,
		Points:       m.Points,
		JoinedAt:     m.JoinedAt,
	}
}
