package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/crickarena/crickarena/internal/domain/contest"
)

type ContestRepository struct {
	mu          sync.RWMutex
	nextID      int64
	nextEntryID int64
	items       map[int64]contest.Contest
	entries     map[int64]contest.Entry
	users       *UserRepository
	teams       *TeamRepository
}

// NewContestRepository joins against the user and team fakes for leaderboard
// rows and cross-table score writes. Either may be nil when unused by a test.
func NewContestRepository(users *UserRepository, teams *TeamRepository) *ContestRepository {
	return &ContestRepository{
		items:   make(map[int64]contest.Contest),
		entries: make(map[int64]contest.Entry),
		users:   users,
		teams:   teams,
	}
}

func (r *ContestRepository) ExistsForMatch(_ context.Context, matchRef string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.items {
		if c.MatchRef == matchRef {
			return true, nil
		}
	}
	return false, nil
}

func (r *ContestRepository) CreateBatch(_ context.Context, contests []contest.Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, c := range contests {
		r.nextID++
		c.ID = r.nextID
		c.CreatedAt = now
		c.UpdatedAt = now
		r.items[c.ID] = c
	}
	return nil
}

func (r *ContestRepository) List(_ context.Context, filter contest.Filter) ([]contest.Contest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contest.Contest, 0)
	for id := int64(1); id <= r.nextID; id++ {
		c, ok := r.items[id]
		if !ok {
			continue
		}
		if filter.MatchRef != "" && c.MatchRef != filter.MatchRef {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *ContestRepository) GetByPublicID(_ context.Context, publicID string) (contest.Contest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.items {
		if c.PublicID == publicID {
			return c, nil
		}
	}
	return contest.Contest{}, contest.ErrNotFound
}

func (r *ContestRepository) MatchRefsWithOpenContests(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	refs := make([]string, 0)
	for id := int64(1); id <= r.nextID; id++ {
		c, ok := r.items[id]
		if !ok || c.Status == contest.StatusCompleted {
			continue
		}
		if _, dup := seen[c.MatchRef]; dup {
			continue
		}
		seen[c.MatchRef] = struct{}{}
		refs = append(refs, c.MatchRef)
	}
	sort.Strings(refs)
	return refs, nil
}

func (r *ContestRepository) SetStatusForMatch(_ context.Context, matchRef, status string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := 0
	for id, c := range r.items {
		if c.MatchRef != matchRef || !contest.CanTransition(c.Status, status) {
			continue
		}
		c.Status = status
		c.UpdatedAt = time.Now()
		r.items[id] = c
		updated++
	}
	return updated, nil
}

func (r *ContestRepository) Join(_ context.Context, entry *contest.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[entry.ContestID]
	if !ok {
		return contest.ErrNotFound
	}
	for _, existing := range r.entries {
		if existing.ContestID == entry.ContestID && existing.UserID == entry.UserID {
			return contest.ErrAlreadyJoined
		}
	}
	if c.CurrentEntries >= c.MaxEntries {
		return contest.ErrContestFull
	}

	r.nextEntryID++
	entry.ID = r.nextEntryID
	entry.CreatedAt = time.Now()
	r.entries[entry.ID] = *entry

	c.CurrentEntries++
	c.UpdatedAt = time.Now()
	r.items[c.ID] = c
	return nil
}

func (r *ContestRepository) EntryForUser(_ context.Context, contestID, userID int64) (contest.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.ContestID == contestID && e.UserID == userID {
			return cloneEntry(e), true, nil
		}
	}
	return contest.Entry{}, false, nil
}

func (r *ContestRepository) HasEntriesForTeam(_ context.Context, teamID int64, statuses ...string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	allowed := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		allowed[s] = struct{}{}
	}
	for _, e := range r.entries {
		if e.TeamID != teamID {
			continue
		}
		c, ok := r.items[e.ContestID]
		if !ok {
			continue
		}
		if _, match := allowed[c.Status]; match {
			return true, nil
		}
	}
	return false, nil
}

func (r *ContestRepository) ListEntries(_ context.Context, contestID int64, limit int) ([]contest.Entry, error) {
	entries := r.entriesOf(contestID, false)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *ContestRepository) ListUnscoredEntries(_ context.Context, contestID int64) ([]contest.Entry, error) {
	return r.entriesOf(contestID, true), nil
}

func (r *ContestRepository) ScoreEntry(_ context.Context, entryID, teamID int64, playerScores []contest.PlayerScore, total float64, scoredAt time.Time) error {
	r.mu.Lock()
	e, ok := r.entries[entryID]
	if ok {
		e.Points = total
		at := scoredAt
		e.ScoredAt = &at
		r.entries[entryID] = e
	}
	r.mu.Unlock()
	if !ok {
		return contest.ErrNotFound
	}

	if r.teams != nil {
		pointsByRef := make(map[string]float64, len(playerScores))
		for _, ps := range playerScores {
			pointsByRef[ps.PlayerRef] = ps.Points
		}
		r.teams.setScore(teamID, pointsByRef, total)
	}
	return nil
}

func (r *ContestRepository) SetEntryRank(_ context.Context, entryID, teamID int64, rank int) error {
	r.mu.Lock()
	e, ok := r.entries[entryID]
	if ok {
		e.Rank = &rank
		r.entries[entryID] = e
	}
	r.mu.Unlock()
	if !ok {
		return contest.ErrNotFound
	}

	if r.teams != nil {
		r.teams.setRank(teamID, rank)
	}
	return nil
}

func (r *ContestRepository) Leaderboard(ctx context.Context, contestID int64, limit int) ([]contest.LeaderboardRow, error) {
	entries := r.entriesOf(contestID, false)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	rows := make([]contest.LeaderboardRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, r.leaderboardRow(ctx, e, i+1))
	}
	return rows, nil
}

func (r *ContestRepository) LeaderboardRowForUser(ctx context.Context, contestID, userID int64) (contest.LeaderboardRow, bool, error) {
	entries := r.entriesOf(contestID, false)
	for i, e := range entries {
		if e.UserID == userID {
			return r.leaderboardRow(ctx, e, i+1), true, nil
		}
	}
	return contest.LeaderboardRow{}, false, nil
}

// entriesOf returns the contest's entries ordered by points desc, join time
// asc, matching the SQL ordering.
func (r *ContestRepository) entriesOf(contestID int64, unscoredOnly bool) []contest.Entry {
	r.mu.RLock()
	out := make([]contest.Entry, 0)
	for id := int64(1); id <= r.nextEntryID; id++ {
		e, ok := r.entries[id]
		if !ok || e.ContestID != contestID {
			continue
		}
		if unscoredOnly && e.ScoredAt != nil {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	r.mu.RUnlock()

	if !unscoredOnly {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Points != out[j].Points {
				return out[i].Points > out[j].Points
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out
}

func (r *ContestRepository) leaderboardRow(ctx context.Context, e contest.Entry, rank int) contest.LeaderboardRow {
	row := contest.LeaderboardRow{
		Rank:     rank,
		Points:   e.Points,
		JoinedAt: e.CreatedAt,
	}
	if r.users != nil {
		if u, err := r.users.getByID(ctx, e.UserID); err == nil {
			row.UserPublicID = u.PublicID
			row.UserName = u.FullName
		}
	}
	if r.teams != nil {
		if t, err := r.teams.GetByID(ctx, e.TeamID); err == nil {
			row.TeamPublicID = t.PublicID
			row.TeamName = t.Name
		}
	}
	return row
}

func cloneEntry(e contest.Entry) contest.Entry {
	if e.Rank != nil {
		rank := *e.Rank
		e.Rank = &rank
	}
	if e.ScoredAt != nil {
		at := *e.ScoredAt
		e.ScoredAt = &at
	}
	return e
}
