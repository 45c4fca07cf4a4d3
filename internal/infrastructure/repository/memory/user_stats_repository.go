package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/crickarena/crickarena/internal/domain/user"
)

type UserStatsRepository struct {
	mu    sync.RWMutex
	items map[int64]user.Stats
	users *UserRepository
}

// NewUserStatsRepository needs the user repository to join names and states
// into leaderboard rows.
func NewUserStatsRepository(users *UserRepository) *UserStatsRepository {
	return &UserStatsRepository{
		items: make(map[int64]user.Stats),
		users: users,
	}
}

func (r *UserStatsRepository) GetOrCreate(_ context.Context, userID int64) (user.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.items[userID]
	if !ok {
		stats = user.Stats{UserID: userID, Level: 1, UpdatedAt: time.Now()}
		r.items[userID] = stats
	}
	return stats, nil
}

func (r *UserStatsRepository) Apply(_ context.Context, userID int64, delta user.StatsDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.items[userID]
	if !ok {
		stats = user.Stats{UserID: userID}
	}
	stats.TotalPoints += delta.Points
	stats.ContestsJoined += delta.ContestsJoined
	stats.ContestsWon += delta.ContestsWon
	stats.TeamsCreated += delta.TeamsCreated
	stats.XP += delta.XP
	stats.Level = user.LevelForXP(stats.XP)
	stats.UpdatedAt = time.Now()
	r.items[userID] = stats
	return nil
}

func (r *UserStatsRepository) TopByPoints(ctx context.Context, limit int) ([]user.RankedUser, error) {
	r.mu.RLock()
	all := make([]user.Stats, 0, len(r.items))
	for _, stats := range r.items {
		all = append(all, stats)
	}
	r.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].TotalPoints != all[j].TotalPoints {
			return all[i].TotalPoints > all[j].TotalPoints
		}
		return all[i].UserID < all[j].UserID
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	ranked := make([]user.RankedUser, 0, len(all))
	for i, stats := range all {
		row := user.RankedUser{
			Rank:           i + 1,
			Level:          stats.Level,
			TotalPoints:    stats.TotalPoints,
			ContestsJoined: stats.ContestsJoined,
			ContestsWon:    stats.ContestsWon,
		}
		if r.users != nil {
			if u, err := r.users.getByID(ctx, stats.UserID); err == nil {
				row.UserPublicID = u.PublicID
				row.FullName = u.FullName
				row.State = u.State
			}
		}
		ranked = append(ranked, row)
	}
	return ranked, nil
}

func (r *UserStatsRepository) RankOf(_ context.Context, userID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	own, ok := r.items[userID]
	if !ok {
		return 0, nil
	}

	rank := 1
	for _, stats := range r.items {
		if stats.TotalPoints > own.TotalPoints {
			rank++
		}
	}
	return rank, nil
}
