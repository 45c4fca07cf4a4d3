package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/crickarena/crickarena/internal/domain/contest"
	"github.com/crickarena/crickarena/internal/domain/match"
	"github.com/crickarena/crickarena/internal/domain/scoring"
	"github.com/crickarena/crickarena/internal/domain/team"
	"github.com/crickarena/crickarena/internal/domain/user"
	"github.com/crickarena/crickarena/internal/infrastructure/repository/memory"
)

// fakeMatchFeed serves canned current matches and scorecards.
type fakeMatchFeed struct {
	current    []match.Match
	infos      map[string]match.Match
	scorecards map[string]scoring.Scorecard
	currentErr error
	cardErr    error
}

func (f *fakeMatchFeed) Current(_ context.Context) ([]match.Match, error) {
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return f.current, nil
}

func (f *fakeMatchFeed) Info(_ context.Context, matchRef string) (match.Match, error) {
	m, ok := f.infos[matchRef]
	if !ok {
		return match.Match{}, fmt.Errorf("match %s not found", matchRef)
	}
	return m, nil
}

func (f *fakeMatchFeed) Scorecard(_ context.Context, matchRef string) (scoring.Scorecard, error) {
	if f.cardErr != nil {
		return scoring.Scorecard{}, f.cardErr
	}
	card, ok := f.scorecards[matchRef]
	if !ok {
		return scoring.Scorecard{}, fmt.Errorf("scorecard for %s not found", matchRef)
	}
	return card, nil
}

type syncFixture struct {
	svc           *ContestSyncService
	users         *memory.UserRepository
	teams         *memory.TeamRepository
	contests      *memory.ContestRepository
	stats         *memory.UserStatsRepository
	notifications *memory.NotificationRepository
	feed          *fakeMatchFeed
	seeded        int
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	users := memory.NewUserRepository()
	teams := memory.NewTeamRepository()
	contests := memory.NewContestRepository(users, teams)
	stats := memory.NewUserStatsRepository(users)
	notifications := memory.NewNotificationRepository()
	feed := &fakeMatchFeed{
		infos:      make(map[string]match.Match),
		scorecards: make(map[string]scoring.Scorecard),
	}

	svc := NewContestSyncService(contests, teams, stats, notifications, feed, &seqIDs{prefix: "c"}, scoring.DefaultRules(), 2, nil)
	return &syncFixture{
		svc:           svc,
		users:         users,
		teams:         teams,
		contests:      contests,
		stats:         stats,
		notifications: notifications,
		feed:          feed,
	}
}

func (fx *syncFixture) seedUser(t *testing.T, publicID string) user.User {
	t.Helper()

	fx.seeded++
	account := user.User{
		PublicID: publicID,
		Email:    publicID + "@example.com",
		FullName: "User " + publicID,
		Mobile:   fmt.Sprintf("98765%05d", fx.seeded),
		IsActive: true,
	}
	if err := fx.users.Create(context.Background(), &account); err != nil {
		t.Fatalf("seed user %s: %v", publicID, err)
	}
	return account
}

func (fx *syncFixture) seedTeamWithPlayers(t *testing.T, userID int64, publicID, matchRef string, players []team.Player) team.Team {
	t.Helper()

	tm := team.Team{PublicID: publicID, UserID: userID, MatchRef: matchRef, Name: "Team " + publicID, Players: players}
	if err := fx.teams.Create(context.Background(), &tm); err != nil {
		t.Fatalf("seed team %s: %v", publicID, err)
	}
	return tm
}

func TestContestSyncService_Run_UnknownAction(t *testing.T) {
	fx := newSyncFixture(t)

	if _, err := fx.svc.Run(context.Background(), "rebuild"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestContestSyncService_Create(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	fx.feed.current = []match.Match{
		{ID: "m1", FantasyEnabled: true},
		{ID: "m-started", FantasyEnabled: true, Started: true},
		{ID: "m-no-fantasy"},
	}

	report, err := fx.svc.Run(ctx, SyncActionCreate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.ContestsCreated != 5 {
		t.Fatalf("contests created = %d, want 5", report.ContestsCreated)
	}

	created, err := fx.contests.List(ctx, contest.Filter{MatchRef: "m1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(created) != 5 {
		t.Fatalf("expected 5 contests for m1, got %d", len(created))
	}
	for _, c := range created {
		if c.Status != contest.StatusUpcoming {
			t.Fatalf("contest %s status = %q", c.PublicID, c.Status)
		}
	}
	codes := map[string]bool{}
	for _, c := range created {
		codes[c.TemplateCode] = true
	}
	for _, code := range []string{"mega", "h2h", "small", "grand", "practice"} {
		if !codes[code] {
			t.Fatalf("template %q missing from created contests", code)
		}
	}

	// A second run is a no-op for matches that already have contests.
	report, err = fx.svc.Run(ctx, SyncActionCreate)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.ContestsCreated != 0 {
		t.Fatalf("second run created %d contests, want 0", report.ContestsCreated)
	}
}

func TestContestSyncService_Create_FeedError(t *testing.T) {
	fx := newSyncFixture(t)
	fx.feed.currentErr = errors.New("provider down")

	report, err := fx.svc.Run(context.Background(), SyncActionCreate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("expected 1 report error, got %v", report.Errors)
	}
}

func TestContestSyncService_Status(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	fx.feed.current = []match.Match{{ID: "m1", FantasyEnabled: true}}
	if _, err := fx.svc.Run(ctx, SyncActionCreate); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Not started yet: nothing moves.
	fx.feed.infos["m1"] = match.Match{ID: "m1"}
	report, err := fx.svc.Run(ctx, SyncActionStatus)
	if err != nil {
		t.Fatalf("status run: %v", err)
	}
	if report.StatusUpdates != 0 {
		t.Fatalf("status updates = %d, want 0", report.StatusUpdates)
	}

	fx.feed.infos["m1"] = match.Match{ID: "m1", Started: true}
	report, err = fx.svc.Run(ctx, SyncActionStatus)
	if err != nil {
		t.Fatalf("status run: %v", err)
	}
	if report.StatusUpdates != 5 {
		t.Fatalf("status updates = %d, want 5", report.StatusUpdates)
	}
	live, err := fx.contests.List(ctx, contest.Filter{MatchRef: "m1", Status: contest.StatusLive})
	if err != nil {
		t.Fatalf("list live: %v", err)
	}
	if len(live) != 5 {
		t.Fatalf("live contests = %d, want 5", len(live))
	}

	fx.feed.infos["m1"] = match.Match{ID: "m1", Started: true, Ended: true}
	report, err = fx.svc.Run(ctx, SyncActionStatus)
	if err != nil {
		t.Fatalf("status run: %v", err)
	}
	if report.StatusUpdates != 5 {
		t.Fatalf("status updates = %d, want 5", report.StatusUpdates)
	}

	// Completed contests no longer appear among open match refs.
	report, err = fx.svc.Run(ctx, SyncActionStatus)
	if err != nil {
		t.Fatalf("status run: %v", err)
	}
	if report.StatusUpdates != 0 {
		t.Fatalf("status updates after completion = %d, want 0", report.StatusUpdates)
	}
}

// seedCompletedContest builds one completed contest on m1 with two entries:
// user-1's team carries the captain, user-2's the vice-captain.
func (fx *syncFixture) seedCompletedContest(t *testing.T) contest.Contest {
	t.Helper()
	ctx := context.Background()

	if err := fx.contests.CreateBatch(ctx, []contest.Contest{{
		PublicID:   "c1",
		MatchRef:   "m1",
		Name:       "Mega Contest",
		MaxEntries: 100,
		Status:     contest.StatusUpcoming,
	}}); err != nil {
		t.Fatalf("seed contest: %v", err)
	}
	c, err := fx.contests.GetByPublicID(ctx, "c1")
	if err != nil {
		t.Fatalf("reload contest: %v", err)
	}

	first := fx.seedUser(t, "user-1")
	second := fx.seedUser(t, "user-2")

	t1 := fx.seedTeamWithPlayers(t, first.ID, "team-1", "m1", []team.Player{
		{PlayerRef: "batter", Role: team.RoleBatsman, CreditCost: 10, IsCaptain: true},
		{PlayerRef: "bowler", Role: team.RoleBowler, CreditCost: 9, IsViceCaptain: true},
	})
	t2 := fx.seedTeamWithPlayers(t, second.ID, "team-2", "m1", []team.Player{
		{PlayerRef: "batter", Role: team.RoleBatsman, CreditCost: 10, IsViceCaptain: true},
		{PlayerRef: "bowler", Role: team.RoleBowler, CreditCost: 9, IsCaptain: true},
	})

	e1 := contest.Entry{ContestID: c.ID, UserID: first.ID, TeamID: t1.ID}
	if err := fx.contests.Join(ctx, &e1); err != nil {
		t.Fatalf("join 1: %v", err)
	}
	e2 := contest.Entry{ContestID: c.ID, UserID: second.ID, TeamID: t2.ID}
	if err := fx.contests.Join(ctx, &e2); err != nil {
		t.Fatalf("join 2: %v", err)
	}

	if _, err := fx.contests.SetStatusForMatch(ctx, "m1", contest.StatusCompleted); err != nil {
		t.Fatalf("complete contest: %v", err)
	}
	return c
}

func TestContestSyncService_Points(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	c := fx.seedCompletedContest(t)
	fx.feed.scorecards["m1"] = scoring.Scorecard{
		Batting: []scoring.BattingInnings{{PlayerRef: "batter", Runs: 40, Balls: 25}},
		Bowling: []scoring.BowlingInnings{{PlayerRef: "bowler", Wickets: 2, BowledOrLBW: 1}},
	}
	// Base points: batter 44 (40 runs + thirty bonus), bowler 58
	// (2 wickets + one bowled/lbw dismissal).

	report, err := fx.svc.Run(ctx, SyncActionPoints)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("report errors: %v", report.Errors)
	}
	if report.EntriesScored != 2 {
		t.Fatalf("entries scored = %d, want 2", report.EntriesScored)
	}

	t1, err := fx.teams.GetByPublicID(ctx, "team-1")
	if err != nil {
		t.Fatalf("load team-1: %v", err)
	}
	// Captain batter 44*2 + vice-captain bowler 58*1.5.
	if t1.TotalPoints != 88+87 {
		t.Fatalf("team-1 points = %v, want %v", t1.TotalPoints, 88+87)
	}

	t2, err := fx.teams.GetByPublicID(ctx, "team-2")
	if err != nil {
		t.Fatalf("load team-2: %v", err)
	}
	// Vice-captain batter 44*1.5 + captain bowler 58*2.
	if t2.TotalPoints != 66+116 {
		t.Fatalf("team-2 points = %v, want %v", t2.TotalPoints, 66+116)
	}

	entries, err := fx.contests.ListEntries(ctx, c.ID, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	for _, e := range entries {
		if e.ScoredAt == nil {
			t.Fatalf("entry %d not marked scored", e.ID)
		}
	}

	// Already-scored entries are skipped on the next run.
	report, err = fx.svc.Run(ctx, SyncActionPoints)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.EntriesScored != 0 {
		t.Fatalf("second run scored %d entries, want 0", report.EntriesScored)
	}
}

func TestContestSyncService_Points_MissingScorecard(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	c := fx.seedCompletedContest(t)
	fx.feed.cardErr = errors.New("scorecard unavailable")

	report, err := fx.svc.Run(ctx, SyncActionPoints)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.EntriesScored != 0 {
		t.Fatalf("entries scored = %d, want 0", report.EntriesScored)
	}
	if len(report.Errors) == 0 {
		t.Fatal("expected a report error for the missing scorecard")
	}

	entries, err := fx.contests.ListUnscoredEntries(ctx, c.ID)
	if err != nil {
		t.Fatalf("list unscored: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("unscored entries = %d, want 2 (left for the next run)", len(entries))
	}
}

func TestContestSyncService_Rank(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	fx.seedCompletedContest(t)
	fx.feed.scorecards["m1"] = scoring.Scorecard{
		Batting: []scoring.BattingInnings{{PlayerRef: "batter", Runs: 40, Balls: 25}},
		Bowling: []scoring.BowlingInnings{{PlayerRef: "bowler", Wickets: 2}},
	}

	if _, err := fx.svc.Run(ctx, SyncActionPoints); err != nil {
		t.Fatalf("points run: %v", err)
	}
	report, err := fx.svc.Run(ctx, SyncActionRank)
	if err != nil {
		t.Fatalf("rank run: %v", err)
	}
	if report.ContestsRanked != 1 {
		t.Fatalf("contests ranked = %d, want 1", report.ContestsRanked)
	}

	// team-2 scored 166 vs team-1's 163, so user-2 wins.
	t2, err := fx.teams.GetByPublicID(ctx, "team-2")
	if err != nil {
		t.Fatalf("load team-2: %v", err)
	}
	if t2.Rank == nil || *t2.Rank != 1 {
		t.Fatalf("team-2 rank = %v, want 1", t2.Rank)
	}
	t1, err := fx.teams.GetByPublicID(ctx, "team-1")
	if err != nil {
		t.Fatalf("load team-1: %v", err)
	}
	if t1.Rank == nil || *t1.Rank != 2 {
		t.Fatalf("team-1 rank = %v, want 2", t1.Rank)
	}

	winner, err := fx.users.GetByPublicID(ctx, "user-2")
	if err != nil {
		t.Fatalf("load winner: %v", err)
	}
	stats, err := fx.stats.GetOrCreate(ctx, winner.ID)
	if err != nil {
		t.Fatalf("winner stats: %v", err)
	}
	if stats.ContestsWon != 1 || stats.XP != contestWonXP {
		t.Fatalf("winner stats = %+v", stats)
	}

	runnerUp, err := fx.users.GetByPublicID(ctx, "user-1")
	if err != nil {
		t.Fatalf("load runner-up: %v", err)
	}
	notes, err := fx.notifications.ListByUser(ctx, runnerUp.ID, 10)
	if err != nil {
		t.Fatalf("runner-up notifications: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("runner-up notifications = %d, want 1", len(notes))
	}

	// Re-running must not bump the winner again or renotify.
	if _, err := fx.svc.Run(ctx, SyncActionRank); err != nil {
		t.Fatalf("second rank run: %v", err)
	}
	stats, err = fx.stats.GetOrCreate(ctx, winner.ID)
	if err != nil {
		t.Fatalf("winner stats: %v", err)
	}
	if stats.ContestsWon != 1 {
		t.Fatalf("winner contests won after rerun = %d, want 1", stats.ContestsWon)
	}
}

func TestContestSyncService_Rank_SkipsPartiallyScored(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	fx.seedCompletedContest(t)

	report, err := fx.svc.Run(ctx, SyncActionRank)
	if err != nil {
		t.Fatalf("rank run: %v", err)
	}
	if report.ContestsRanked != 0 {
		t.Fatalf("contests ranked = %d, want 0 (entries unscored)", report.ContestsRanked)
	}
}
