package postgres

import (
	"database/sql"
	"time"

	"github.com/crickarena/crickarena/internal/domain/user"
)

type userTableModel struct {
	ID                  int64          `db:"id"`
	PublicID            string         `db:"public_id"`
	Email               string         `db:"email"`
	PasswordHash        string         `db:"password_hash"`
	FullName            string         `db:"full_name"`
	Mobile              string         `db:"mobile"`
	DateOfBirth         time.Time      `db:"date_of_birth"`
	State               string         `db:"state"`
	IsActive            bool           `db:"is_active"`
	IsVerified          bool           `db:"is_verified"`
	ResetToken          sql.NullString `db:"reset_token"`
	ResetTokenExpiresAt *time.Time     `db:"reset_token_expires_at"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

type userInsertModel struct {
	PublicID     string    `db:"public_id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	Mobile       string    `db:"mobile"`
	DateOfBirth  time.Time `db:"date_of_birth"`
	State        string    `db:"state"`
	IsActive     bool      `db:"is_active"`
}

func (m userTableModel) toDomain() user.User {
	return user.User{
		ID:           m.ID,
		PublicID:     m.PublicID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FullName:     m.FullName,
		Mobile:       m.Mobile,
		DateOfBirth:  m.DateOfBirth,
		State:        m.State,
		IsActive:     m.IsActive,
		IsVerified:   m.IsVerified,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type userStatsTableModel struct {
	UserID         int64     `db:"user_id"`
	TotalPoints    float64   `db:"total_points"`
	ContestsJoined int       `db:"contests_joined"`
	ContestsWon    int       `db:"contests_won"`
	TeamsCreated   int       `db:"teams_created"`
	Level          int       `db:"level"`
	XP             int       `db:"xp"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m userStatsTableModel) toDomain() user.Stats {
	return user.Stats{
		UserID:         m.UserID,
		TotalPoints:    m.TotalPoints,
		ContestsJoined: m.ContestsJoined,
		ContestsWon:    m.ContestsWon,
		TeamsCreated:   m.TeamsCreated,
		Level:          m.Level,
		XP:             m.XP,
		UpdatedAt:      m.UpdatedAt,
	}
}

type rankedUserModel struct {
	Rank           int     `db:"rank"`
	UserPublicID   string  `db:"public_id"`
	FullName       string  `db:"full_name"`
	State          string  `db:"state"`
	Level          int     `db:"level"`
	TotalPoints    float64 `db:"total_points"`
	ContestsJoined int     `db:"contests_joined"`
	ContestsWon    int     `db:"contests_won"`
}
