package contest

import (
	"context"
	"time"
)

// Filter narrows contest listings. Zero values mean "any".
type Filter struct {
	MatchRef string
	Status   string
}

// Repository persists contests and their entries.
type Repository interface {
	ExistsForMatch(ctx context.Context, matchRef string) (bool, error)
	CreateBatch(ctx context.Context, contests []Contest) error
	List(ctx context.Context, filter Filter) ([]Contest, error)
	GetByPublicID(ctx context.Context, publicID string) (Contest, error)
	// MatchRefsWithOpenContests returns match refs owning at least one contest
	// that has not reached the completed status.
	MatchRefsWithOpenContests(ctx context.Context) ([]string, error)
	// SetStatusForMatch flips every contest of the match to the given status,
	// skipping rows whose current status does not allow the transition.
	SetStatusForMatch(ctx context.Context, matchRef, status string) (int, error)

	// Join inserts the entry and bumps current_entries in one transaction.
	// The capacity bump is conditional on current_entries < max_entries; when it
	// does not apply the whole transaction rolls back with ErrContestFull.
	// A duplicate (contest, user) pair yields ErrAlreadyJoined.
	Join(ctx context.Context, entry *Entry) error
	EntryForUser(ctx context.Context, contestID, userID int64) (Entry, bool, error)
	// HasEntriesForTeam reports whether the team holds an entry in any contest
	// currently in one of the given statuses.
	HasEntriesForTeam(ctx context.Context, teamID int64, statuses ...string) (bool, error)
	ListEntries(ctx context.Context, contestID int64, limit int) ([]Entry, error)
	ListUnscoredEntries(ctx context.Context, contestID int64) ([]Entry, error)
	// ScoreEntry writes the entry points, the owning team's total and the
	// per-player points in one transaction.
	ScoreEntry(ctx context.Context, entryID, teamID int64, playerScores []PlayerScore, total float64, scoredAt time.Time) error
	// SetEntryRank writes the rank to the entry and its owning team.
	SetEntryRank(ctx context.Context, entryID, teamID int64, rank int) error
	// Leaderboard returns the top entries ordered by points desc, ties broken
	// by earliest join, ranked 1..limit.
	Leaderboard(ctx context.Context, contestID int64, limit int) ([]LeaderboardRow, error)
	// LeaderboardRowForUser returns the user's row with its rank over the full
	// standings, regardless of page position.
	LeaderboardRowForUser(ctx context.Context, contestID, userID int64) (LeaderboardRow, bool, error)
}
