package user

import (
	"context"
	"time"
)

// Repository exposes account persistence. Implementations return ErrEmailTaken,
// ErrMobileTaken and ErrNotFound where applicable.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByPublicID(ctx context.Context, publicID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByResetToken(ctx context.Context, token string) (User, error)
	// UpdateProfile writes full name, mobile, state and date of birth. A mobile
	// number held by another account yields ErrMobileTaken.
	UpdateProfile(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, userID int64) error
}

// RankedUser is one global leaderboard row.
type RankedUser struct {
	Rank           int
	UserPublicID   string
	FullName       string
	State          string
	Level          int
	TotalPoints    float64
	ContestsJoined int
	ContestsWon    int
}

// StatsRepository owns the user_stats counters.
type StatsRepository interface {
	// GetOrCreate returns the stats row, inserting a zeroed one when absent.
	GetOrCreate(ctx context.Context, userID int64) (Stats, error)
	Apply(ctx context.Context, userID int64, delta StatsDelta) error
	TopByPoints(ctx context.Context, limit int) ([]RankedUser, error)
	// RankOf counts users with strictly greater points, returning rank = count + 1.
	RankOf(ctx context.Context, userID int64) (int, error)
}
