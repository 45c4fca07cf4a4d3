package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/crickarena/crickarena/internal/domain/contest"
	"github.com/crickarena/crickarena/internal/domain/match"
	"github.com/crickarena/crickarena/internal/domain/notification"
	"github.com/crickarena/crickarena/internal/domain/scoring"
	"github.com/crickarena/crickarena/internal/domain/team"
	"github.com/crickarena/crickarena/internal/domain/user"
	idgen "github.com/crickarena/crickarena/internal/platform/id"
	"github.com/crickarena/crickarena/internal/platform/logging"
)

const (
	SyncActionAll    = "all"
	SyncActionCreate = "create"
	SyncActionStatus = "status"
	SyncActionPoints = "points"
	SyncActionRank   = "rank"
)

const (
	contestWonXP           = 100
	defaultScoringWorkers  = 4
	maxScoringWorkers      = 16
	scoredContestPageLimit = 0 // no page limit; ranking reads full standings
)

// MatchFeed is the provider surface the sync job needs.
type MatchFeed interface {
	Current(ctx context.Context) ([]match.Match, error)
	Info(ctx context.Context, matchRef string) (match.Match, error)
	Scorecard(ctx context.Context, matchRef string) (scoring.Scorecard, error)
}

// SyncReport summarizes one sync invocation.
type SyncReport struct {
	Action          string   `json:"action"`
	ContestsCreated int      `json:"contestsCreated"`
	StatusUpdates   int      `json:"statusUpdates"`
	EntriesScored   int      `json:"entriesScored"`
	ContestsRanked  int      `json:"contestsRanked"`
	Errors          []string `json:"errors,omitempty"`
	DurationMs      int64    `json:"durationMs"`
}

// ContestSyncService drives the contest lifecycle off the live match feed:
// auto-creating contests, flipping statuses, scoring entries and ranking.
type ContestSyncService struct {
	contests      contest.Repository
	teams         team.Repository
	stats         user.StatsRepository
	notifications notification.Repository
	matches       MatchFeed
	ids           idgen.Generator
	rules         scoring.Rules
	workers       int
	logger        *logging.Logger
	now           func() time.Time
}

func NewContestSyncService(
	contests contest.Repository,
	teams team.Repository,
	stats user.StatsRepository,
	notifications notification.Repository,
	matches MatchFeed,
	ids idgen.Generator,
	rules scoring.Rules,
	workers int,
	logger *logging.Logger,
) *ContestSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultScoringWorkers
	}
	if workers > maxScoringWorkers {
		workers = maxScoringWorkers
	}
	return &ContestSyncService{
		contests:      contests,
		teams:         teams,
		stats:         stats,
		notifications: notifications,
		matches:       matches,
		ids:           ids,
		rules:         rules,
		workers:       workers,
		logger:        logger,
		now:           time.Now,
	}
}

// Run executes the requested phase, or all four in order. Phase errors are
// collected into the report; only an unknown action fails the call.
func (s *ContestSyncService) Run(ctx context.Context, action string) (SyncReport, error) {
	ctx, span := startSpan(ctx, "usecase.ContestSyncService.Run")
	defer span.End()

	if action == "" {
		action = SyncActionAll
	}
	report := SyncReport{Action: action}
	start := s.now()

	switch action {
	case SyncActionAll:
		s.runCreate(ctx, &report)
		s.runStatus(ctx, &report)
		s.runPoints(ctx, &report)
		s.runRank(ctx, &report)
	case SyncActionCreate:
		s.runCreate(ctx, &report)
	case SyncActionStatus:
		s.runStatus(ctx, &report)
	case SyncActionPoints:
		s.runPoints(ctx, &report)
	case SyncActionRank:
		s.runRank(ctx, &report)
	default:
		return SyncReport{}, fmt.Errorf("%w: unknown sync action %q", ErrInvalidInput, action)
	}

	report.DurationMs = s.now().Sub(start).Milliseconds()
	s.logger.InfoContext(ctx, "contest sync finished",
		"action", action,
		"created", report.ContestsCreated,
		"status_updates", report.StatusUpdates,
		"entries_scored", report.EntriesScored,
		"contests_ranked", report.ContestsRanked,
		"errors", len(report.Errors))
	return report, nil
}

// runCreate inserts the fixed contest templates for every fantasy-enabled
// upcoming match that has none yet. The existence pre-check is the only
// idempotency guard; two concurrent runs can double-create.
func (s *ContestSyncService) runCreate(ctx context.Context, report *SyncReport) {
	matches, err := s.matches.Current(ctx)
	if err != nil {
		report.fail("create", fmt.Errorf("fetch current matches: %w", err))
		return
	}

	for _, m := range matches {
		if m.Started || !m.FantasyEnabled {
			continue
		}

		exists, err := s.contests.ExistsForMatch(ctx, m.ID)
		if err != nil {
			report.fail("create", fmt.Errorf("check contests for match %s: %w", m.ID, err))
			continue
		}
		if exists {
			continue
		}

		batch := make([]contest.Contest, 0, len(contest.Templates()))
		for _, tpl := range contest.Templates() {
			publicID, err := s.ids.NewID()
			if err != nil {
				report.fail("create", fmt.Errorf("generate contest id: %w", err))
				return
			}
			batch = append(batch, contest.Contest{
				PublicID:     publicID,
				MatchRef:     m.ID,
				Name:         tpl.Name,
				TemplateCode: tpl.Code,
				MaxEntries:   tpl.MaxEntries,
				Status:       contest.StatusUpcoming,
			})
		}
		if err := s.contests.CreateBatch(ctx, batch); err != nil {
			report.fail("create", fmt.Errorf("create contests for match %s: %w", m.ID, err))
			continue
		}
		report.ContestsCreated += len(batch)
	}
}

// runStatus moves contests along upcoming -> live -> completed based on the
// provider's match flags. Transitions never go backwards.
func (s *ContestSyncService) runStatus(ctx context.Context, report *SyncReport) {
	refs, err := s.contests.MatchRefsWithOpenContests(ctx)
	if err != nil {
		report.fail("status", fmt.Errorf("list open contest matches: %w", err))
		return
	}

	for _, ref := range refs {
		m, err := s.matches.Info(ctx, ref)
		if err != nil {
			report.fail("status", fmt.Errorf("fetch match %s: %w", ref, err))
			continue
		}

		target := ""
		switch {
		case m.Ended:
			target = contest.StatusCompleted
		case m.Started:
			target = contest.StatusLive
		}
		if target == "" {
			continue
		}

		updated, err := s.contests.SetStatusForMatch(ctx, ref, target)
		if err != nil {
			report.fail("status", fmt.Errorf("set status for match %s: %w", ref, err))
			continue
		}
		report.StatusUpdates += updated
	}
}

// runPoints scores unscored entries of completed contests from the match
// scorecard. Contests fan out over a bounded worker pool; a missing scorecard
// leaves the entries unscored for the next run.
func (s *ContestSyncService) runPoints(ctx context.Context, report *SyncReport) {
	completed, err := s.contests.List(ctx, contest.Filter{Status: contest.StatusCompleted})
	if err != nil {
		report.fail("points", fmt.Errorf("list completed contests: %w", err))
		return
	}
	if len(completed) == 0 {
		return
	}

	// One scorecard fetch per match, shared across its contests.
	var cardMu sync.Mutex
	cards := make(map[string]map[string]float64)
	totalsFor := func(matchRef string) (map[string]float64, error) {
		cardMu.Lock()
		defer cardMu.Unlock()
		if totals, ok := cards[matchRef]; ok {
			return totals, nil
		}
		card, err := s.matches.Scorecard(ctx, matchRef)
		if err != nil {
			return nil, err
		}
		totals := scoring.PlayerTotals(card, s.rules)
		cards[matchRef] = totals
		return totals, nil
	}

	var scored atomic.Int64
	errs := make(chan error, len(completed))

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		report.fail("points", fmt.Errorf("create worker pool: %w", err))
		return
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, c := range completed {
		c := c
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			n, err := s.scoreContest(ctx, c, totalsFor)
			if err != nil {
				errs <- fmt.Errorf("contest %s: %w", c.PublicID, err)
			}
			scored.Add(int64(n))
		}); err != nil {
			workers.Done()
			report.fail("points", fmt.Errorf("submit contest to worker pool: %w", err))
			break
		}
	}
	workers.Wait()
	close(errs)

	report.EntriesScored += int(scored.Load())
	for err := range errs {
		report.fail("points", err)
	}
}

func (s *ContestSyncService) scoreContest(
	ctx context.Context,
	c contest.Contest,
	totalsFor func(matchRef string) (map[string]float64, error),
) (int, error) {
	entries, err := s.contests.ListUnscoredEntries(ctx, c.ID)
	if err != nil {
		return 0, fmt.Errorf("list unscored entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	totals, err := totalsFor(c.MatchRef)
	if err != nil {
		return 0, fmt.Errorf("scorecard for match %s: %w", c.MatchRef, err)
	}

	scored := 0
	for _, entry := range entries {
		t, err := s.teams.GetByID(ctx, entry.TeamID)
		if err != nil {
			return scored, fmt.Errorf("load team %d: %w", entry.TeamID, err)
		}

		playerScores := make([]contest.PlayerScore, 0, len(t.Players))
		var total float64
		for _, p := range t.Players {
			points := totals[p.PlayerRef]
			switch {
			case p.IsCaptain:
				points *= scoring.CaptainMultiplier
			case p.IsViceCaptain:
				points *= scoring.ViceCaptainMultiplier
			}
			playerScores = append(playerScores, contest.PlayerScore{PlayerRef: p.PlayerRef, Points: points})
			total += points
		}

		if err := s.contests.ScoreEntry(ctx, entry.ID, entry.TeamID, playerScores, total, s.now()); err != nil {
			return scored, fmt.Errorf("score entry %d: %w", entry.ID, err)
		}
		scored++
	}
	return scored, nil
}

// runRank assigns 1..N per completed contest, points desc with earliest join
// breaking ties. The winner's contests_won bumps only on the first ranking.
func (s *ContestSyncService) runRank(ctx context.Context, report *SyncReport) {
	completed, err := s.contests.List(ctx, contest.Filter{Status: contest.StatusCompleted})
	if err != nil {
		report.fail("rank", fmt.Errorf("list completed contests: %w", err))
		return
	}

	for _, c := range completed {
		entries, err := s.contests.ListEntries(ctx, c.ID, scoredContestPageLimit)
		if err != nil {
			report.fail("rank", fmt.Errorf("list entries for contest %s: %w", c.PublicID, err))
			continue
		}
		if len(entries) == 0 {
			continue
		}

		unscored := 0
		for _, entry := range entries {
			if entry.ScoredAt == nil {
				unscored++
			}
		}
		if unscored > 0 {
			// Ranking a partially scored contest would be unstable.
			continue
		}

		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Points != entries[j].Points {
				return entries[i].Points > entries[j].Points
			}
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		})

		ranked := false
		for i, entry := range entries {
			rank := i + 1
			if entry.Rank != nil && *entry.Rank == rank {
				continue
			}
			firstRanking := entry.Rank == nil

			if err := s.contests.SetEntryRank(ctx, entry.ID, entry.TeamID, rank); err != nil {
				report.fail("rank", fmt.Errorf("rank entry %d: %w", entry.ID, err))
				continue
			}
			ranked = true

			if firstRanking {
				if rank == 1 {
					if err := s.stats.Apply(ctx, entry.UserID, user.StatsDelta{ContestsWon: 1, XP: contestWonXP}); err != nil {
						s.logger.WarnContext(ctx, "apply winner stats failed", "entry_id", entry.ID, "error", err)
					}
				}
				s.notifyResult(ctx, c, entry, rank)
			}
		}
		if ranked {
			report.ContestsRanked++
		}
	}
}

func (s *ContestSyncService) notifyResult(ctx context.Context, c contest.Contest, entry contest.Entry, rank int) {
	n := notification.Notification{
		UserID: entry.UserID,
		Type:   notification.TypeResultsReady,
		Title:  "Results are in",
		Body:   fmt.Sprintf("You finished #%d in %s with %.1f points.", rank, c.Name, entry.Points),
		Link:   "/contests/" + c.PublicID + "/leaderboard",
	}
	if err := s.notifications.Create(ctx, &n); err != nil {
		s.logger.WarnContext(ctx, "create result notification failed", "entry_id", entry.ID, "error", err)
	}
}

func (r *SyncReport) fail(phase string, err error) {
	r.Errors = append(r.Errors, phase+": "+err.Error())
}
