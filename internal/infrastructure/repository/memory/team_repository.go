package memory

import (
	"context"
	"sync"
	"time"

	"github.com/crickarena/crickarena/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]team.Team
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{items: make(map[int64]team.Team)}
}

func (r *TeamRepository) Create(_ context.Context, t *team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t.ID = r.nextID
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	for i := range t.Players {
		t.Players[i].ID = int64(i + 1)
		t.Players[i].TeamID = t.ID
	}
	r.items[t.ID] = cloneTeam(*t)
	return nil
}

func (r *TeamRepository) GetByPublicID(_ context.Context, publicID string) (team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.items {
		if t.PublicID == publicID {
			return cloneTeam(t), nil
		}
	}
	return team.Team{}, team.ErrNotFound
}

func (r *TeamRepository) GetByID(_ context.Context, teamID int64) (team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[teamID]
	if !ok {
		return team.Team{}, team.ErrNotFound
	}
	return cloneTeam(t), nil
}

func (r *TeamRepository) ListByUser(_ context.Context, userID int64, matchRef string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0)
	for id := int64(1); id <= r.nextID; id++ {
		t, ok := r.items[id]
		if !ok || t.UserID != userID {
			continue
		}
		if matchRef != "" && t.MatchRef != matchRef {
			continue
		}
		out = append(out, cloneTeam(t))
	}
	return out, nil
}

func (r *TeamRepository) CountByUserAndMatch(_ context.Context, userID int64, matchRef string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, t := range r.items {
		if t.UserID == userID && t.MatchRef == matchRef {
			count++
		}
	}
	return count, nil
}

func (r *TeamRepository) Rename(_ context.Context, teamID int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[teamID]
	if !ok {
		return team.ErrNotFound
	}
	t.Name = name
	t.UpdatedAt = time.Now()
	r.items[teamID] = t
	return nil
}

func (r *TeamRepository) Delete(_ context.Context, teamID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[teamID]; !ok {
		return team.ErrNotFound
	}
	delete(r.items, teamID)
	return nil
}

// setScore mirrors the scoring write the contest repository performs against
// Postgres in one transaction.
func (r *TeamRepository) setScore(teamID int64, pointsByRef map[string]float64, total float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[teamID]
	if !ok {
		return
	}
	for i := range t.Players {
		if points, found := pointsByRef[t.Players[i].PlayerRef]; found {
			t.Players[i].Points = points
		}
	}
	t.TotalPoints = total
	t.UpdatedAt = time.Now()
	r.items[teamID] = t
}

func (r *TeamRepository) setRank(teamID int64, rank int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[teamID]
	if !ok {
		return
	}
	t.Rank = &rank
	t.UpdatedAt = time.Now()
	r.items[teamID] = t
}

func cloneTeam(t team.Team) team.Team {
	players := make([]team.Player, len(t.Players))
	copy(players, t.Players)
	t.Players = players
	if t.Rank != nil {
		rank := *t.Rank
		t.Rank = &rank
	}
	return t
}
