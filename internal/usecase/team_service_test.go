package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/crickarena/crickarena/internal/domain/contest"
	"github.com/crickarena/crickarena/internal/domain/match"
	"github.com/crickarena/crickarena/internal/domain/team"
	"github.com/crickarena/crickarena/internal/domain/user"
	"github.com/crickarena/crickarena/internal/infrastructure/repository/memory"
)

// fakeMatchCatalog serves canned matches and squads.
type fakeMatchCatalog struct {
	matches map[string]match.Match
	squads  map[string][]match.Squad
	infoErr error
}

func (f *fakeMatchCatalog) Info(_ context.Context, matchRef string) (match.Match, error) {
	if f.infoErr != nil {
		return match.Match{}, f.infoErr
	}
	m, ok := f.matches[matchRef]
	if !ok {
		return match.Match{}, fmt.Errorf("match %s not found", matchRef)
	}
	return m, nil
}

func (f *fakeMatchCatalog) Squads(_ context.Context, matchRef string) ([]match.Squad, error) {
	return f.squads[matchRef], nil
}

type teamFixture struct {
	svc      *TeamService
	users    *memory.UserRepository
	teams    *memory.TeamRepository
	contests *memory.ContestRepository
	catalog  *fakeMatchCatalog
	account  user.User
}

func newTeamFixture(t *testing.T) *teamFixture {
	t.Helper()

	users := memory.NewUserRepository()
	teams := memory.NewTeamRepository()
	contests := memory.NewContestRepository(users, teams)
	stats := memory.NewUserStatsRepository(users)
	catalog := &fakeMatchCatalog{
		matches: map[string]match.Match{
			"m1": {ID: "m1", Name: "IND vs AUS", StartAt: time.Now().Add(2 * time.Hour)},
		},
		squads: map[string][]match.Squad{},
	}

	account := user.User{
		PublicID: "user-1",
		Email:    "player@example.com",
		FullName: "Test Player",
		Mobile:   "9876543210",
		State:    "Karnataka",
		IsActive: true,
	}
	if err := users.Create(context.Background(), &account); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := NewTeamService(teams, users, stats, contests, catalog, &seqIDs{prefix: "t"}, team.DefaultRules(), nil)
	return &teamFixture{svc: svc, users: users, teams: teams, contests: contests, catalog: catalog, account: account}
}

func lineupInput() []TeamPlayerInput {
	players := make([]TeamPlayerInput, 0, 11)
	for i := 0; i < 11; i++ {
		side := "IND"
		if i >= 5 {
			side = "AUS"
		}
		players = append(players, TeamPlayerInput{
			PlayerRef:  fmt.Sprintf("p%d", i+1),
			PlayerName: fmt.Sprintf("Player %d", i+1),
			Role:       "Batsman",
			TeamName:   side,
			CreditCost: 9,
		})
	}
	players[0].Role = "WK-Batsman"
	players[9].Role = "Bowler"
	players[10].Role = "All-Rounder"
	players[0].IsCaptain = true
	players[1].IsViceCaptain = true
	return players
}

func TestTeamService_Create(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{
		MatchRef: "m1",
		Name:     "Dream XI",
		Players:  lineupInput(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.PublicID == "" {
		t.Fatal("expected a public id")
	}
	if created.Name != "Dream XI" {
		t.Fatalf("name = %q", created.Name)
	}
	if created.CreditsUsed != 99 {
		t.Fatalf("credits used = %v, want 99", created.CreditsUsed)
	}
	if len(created.Players) != 11 {
		t.Fatalf("players = %d, want 11", len(created.Players))
	}
	if created.Players[0].Role != team.RoleWicketKeeper {
		t.Fatalf("role not normalized: %q", created.Players[0].Role)
	}
}

func TestTeamService_Create_DefaultName(t *testing.T) {
	fx := newTeamFixture(t)

	created, err := fx.svc.Create(context.Background(), "user-1", CreateTeamInput{
		MatchRef: "m1",
		Players:  lineupInput(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Name != "Test Player (T1)" {
		t.Fatalf("default name = %q", created.Name)
	}
}

func TestTeamService_Create_Rejections(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	if _, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{Players: lineupInput()}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing match, got %v", err)
	}

	fx.catalog.matches["started"] = match.Match{ID: "started", Started: true}
	if _, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{MatchRef: "started", Players: lineupInput()}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for started match, got %v", err)
	}

	fx.catalog.infoErr = errors.New("provider down")
	if _, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{MatchRef: "m1", Players: lineupInput()}); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	fx.catalog.infoErr = nil

	bad := lineupInput()
	bad[3].Role = "coach"
	if _, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{MatchRef: "m1", Players: bad}); !errors.Is(err, team.ErrUnknownPlayerRole) {
		t.Fatalf("expected unknown role, got %v", err)
	}

	short := lineupInput()[:10]
	if _, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{MatchRef: "m1", Players: short}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for short line-up, got %v", err)
	}

	if _, err := fx.svc.Create(ctx, "missing", CreateTeamInput{MatchRef: "m1", Players: lineupInput()}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
}

func TestTeamService_Create_TeamLimit(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	for i := 0; i < team.DefaultRules().MaxTeamsPerMatch; i++ {
		if _, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{MatchRef: "m1", Players: lineupInput()}); err != nil {
			t.Fatalf("Create %d: %v", i+1, err)
		}
	}

	_, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{MatchRef: "m1", Players: lineupInput()})
	if !errors.Is(err, team.ErrTeamLimitReached) {
		t.Fatalf("expected team limit, got %v", err)
	}
}

func TestTeamService_Create_SquadMembership(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	squad := match.Squad{TeamName: "IND"}
	for i := 0; i < 11; i++ {
		squad.Players = append(squad.Players, match.SquadPlayer{ID: fmt.Sprintf("p%d", i+1)})
	}
	fx.catalog.squads["m1"] = []match.Squad{squad}

	if _, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{MatchRef: "m1", Players: lineupInput()}); err != nil {
		t.Fatalf("Create with full squad: %v", err)
	}

	outsider := lineupInput()
	outsider[10].PlayerRef = "outsider"
	if _, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{MatchRef: "m1", Players: outsider}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for player outside squad, got %v", err)
	}
}

func TestTeamService_ListGetRename(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{MatchRef: "m1", Players: lineupInput()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	listed, err := fx.svc.List(ctx, "user-1", "m1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].PublicID != created.PublicID {
		t.Fatalf("List = %+v", listed)
	}

	got, err := fx.svc.Get(ctx, "user-1", created.PublicID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PublicID != created.PublicID {
		t.Fatalf("Get returned %q", got.PublicID)
	}

	renamed, err := fx.svc.Rename(ctx, "user-1", created.PublicID, "New Name")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if renamed.Name != "New Name" {
		t.Fatalf("renamed name = %q", renamed.Name)
	}

	if _, err := fx.svc.Rename(ctx, "user-1", created.PublicID, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank name, got %v", err)
	}
}

func TestTeamService_OwnershipHidesForeignTeams(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	other := user.User{PublicID: "user-2", Email: "other@example.com", Mobile: "9876543211", FullName: "Other", IsActive: true}
	if err := fx.users.Create(ctx, &other); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	created, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{MatchRef: "m1", Players: lineupInput()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := fx.svc.Get(ctx, "user-2", created.PublicID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign team, got %v", err)
	}
	if err := fx.svc.Delete(ctx, "user-2", created.PublicID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found deleting foreign team, got %v", err)
	}
}

func TestTeamService_Delete(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{MatchRef: "m1", Players: lineupInput()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := fx.svc.Delete(ctx, "user-1", created.PublicID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := fx.svc.Get(ctx, "user-1", created.PublicID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestTeamService_Delete_BlockedByLiveContest(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, "user-1", CreateTeamInput{MatchRef: "m1", Players: lineupInput()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

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
		t.Fatalf("get contest: %v", err)
	}
	stored, err := fx.teams.GetByPublicID(ctx, created.PublicID)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	entry := contest.Entry{ContestID: c.ID, UserID: fx.account.ID, TeamID: stored.ID}
	if err := fx.contests.Join(ctx, &entry); err != nil {
		t.Fatalf("join contest: %v", err)
	}

	// Deletable while the contest is still upcoming, blocked once live.
	if _, err := fx.contests.SetStatusForMatch(ctx, "m1", contest.StatusLive); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := fx.svc.Delete(ctx, "user-1", created.PublicID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for team in live contest, got %v", err)
	}
}
