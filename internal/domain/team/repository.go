package team

import "context"

// Repository persists fantasy teams together with their players.
type Repository interface {
	// Create inserts the team and its players atomically.
	Create(ctx context.Context, t *Team) error
	GetByPublicID(ctx context.Context, publicID string) (Team, error)
	GetByID(ctx context.Context, teamID int64) (Team, error)
	ListByUser(ctx context.Context, userID int64, matchRef string) ([]Team, error)
	CountByUserAndMatch(ctx context.Context, userID int64, matchRef string) (int, error)
	Rename(ctx context.Context, teamID int64, name string) error
	Delete(ctx context.Context, teamID int64) error
}
