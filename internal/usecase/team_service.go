package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crickarena/crickarena/internal/domain/contest"
	"github.com/crickarena/crickarena/internal/domain/match"
	"github.com/crickarena/crickarena/internal/domain/team"
	"github.com/crickarena/crickarena/internal/domain/user"
	idgen "github.com/crickarena/crickarena/internal/platform/id"
	"github.com/crickarena/crickarena/internal/platform/logging"
)

const teamCreatedXP = 10

// MatchCatalog is the slice of match lookups the team flow needs.
type MatchCatalog interface {
	Info(ctx context.Context, matchRef string) (match.Match, error)
	Squads(ctx context.Context, matchRef string) ([]match.Squad, error)
}

type TeamPlayerInput struct {
	PlayerRef     string
	PlayerName    string
	Role          string
	TeamName      string
	CreditCost    float64
	IsCaptain     bool
	IsViceCaptain bool
}

type CreateTeamInput struct {
	MatchRef string
	Name     string
	Players  []TeamPlayerInput
}

type TeamService struct {
	teams    team.Repository
	users    user.Repository
	stats    user.StatsRepository
	contests contest.Repository
	matches  MatchCatalog
	ids      idgen.Generator
	rules    team.Rules
	logger   *logging.Logger
}

func NewTeamService(
	teams team.Repository,
	users user.Repository,
	stats user.StatsRepository,
	contests contest.Repository,
	matches MatchCatalog,
	ids idgen.Generator,
	rules team.Rules,
	logger *logging.Logger,
) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamService{
		teams:    teams,
		users:    users,
		stats:    stats,
		contests: contests,
		matches:  matches,
		ids:      ids,
		rules:    rules,
		logger:   logger,
	}
}

// Create validates the line-up and stores it. The match must not have started
// and, when squad data exists, every pick must belong to it.
func (s *TeamService) Create(ctx context.Context, userPublicID string, input CreateTeamInput) (team.Team, error) {
	ctx, span := startSpan(ctx, "usecase.TeamService.Create")
	defer span.End()

	account, err := s.accountOf(ctx, userPublicID)
	if err != nil {
		return team.Team{}, err
	}

	matchRef := strings.TrimSpace(input.MatchRef)
	if matchRef == "" {
		return team.Team{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	m, err := s.matches.Info(ctx, matchRef)
	if err != nil {
		return team.Team{}, fmt.Errorf("%w: match lookup failed: %v", ErrDependencyUnavailable, err)
	}
	if m.Started {
		return team.Team{}, fmt.Errorf("%w: match has already started", ErrInvalidInput)
	}

	count, err := s.teams.CountByUserAndMatch(ctx, account.ID, matchRef)
	if err != nil {
		return team.Team{}, fmt.Errorf("count teams: %w", err)
	}
	if count >= s.rules.MaxTeamsPerMatch {
		return team.Team{}, fmt.Errorf("%w: at most %d teams per match", team.ErrTeamLimitReached, s.rules.MaxTeamsPerMatch)
	}

	players := make([]team.Player, 0, len(input.Players))
	var creditsUsed float64
	for _, p := range input.Players {
		role, ok := team.NormalizeRole(p.Role)
		if !ok {
			return team.Team{}, fmt.Errorf("%w: %s", team.ErrUnknownPlayerRole, p.Role)
		}
		players = append(players, team.Player{
			PlayerRef:     strings.TrimSpace(p.PlayerRef),
			PlayerName:    strings.TrimSpace(p.PlayerName),
			Role:          role,
			TeamName:      strings.TrimSpace(p.TeamName),
			CreditCost:    p.CreditCost,
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
		})
		creditsUsed += p.CreditCost
	}

	if err := team.ValidatePlayers(players, s.rules); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.checkSquadMembership(ctx, matchRef, players); err != nil {
		return team.Team{}, err
	}

	publicID, err := s.ids.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = fmt.Sprintf("%s (T%d)", account.FullName, count+1)
	}

	t := team.Team{
		PublicID:    publicID,
		UserID:      account.ID,
		MatchRef:    matchRef,
		Name:        name,
		CreditsUsed: creditsUsed,
		Players:     players,
	}
	if err := s.teams.Create(ctx, &t); err != nil {
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}

	if err := s.stats.Apply(ctx, account.ID, user.StatsDelta{TeamsCreated: 1, XP: teamCreatedXP}); err != nil {
		s.logger.WarnContext(ctx, "apply team stats failed", "user_id", userPublicID, "error", err)
	}

	s.logger.InfoContext(ctx, "team created", "team_id", t.PublicID, "match_ref", matchRef)
	return t, nil
}

func (s *TeamService) List(ctx context.Context, userPublicID, matchRef string) ([]team.Team, error) {
	ctx, span := startSpan(ctx, "usecase.TeamService.List")
	defer span.End()

	account, err := s.accountOf(ctx, userPublicID)
	if err != nil {
		return nil, err
	}
	return s.teams.ListByUser(ctx, account.ID, strings.TrimSpace(matchRef))
}

func (s *TeamService) Get(ctx context.Context, userPublicID, teamPublicID string) (team.Team, error) {
	ctx, span := startSpan(ctx, "usecase.TeamService.Get")
	defer span.End()

	_, t, err := s.ownedTeam(ctx, userPublicID, teamPublicID)
	return t, err
}

func (s *TeamService) Rename(ctx context.Context, userPublicID, teamPublicID, name string) (team.Team, error) {
	ctx, span := startSpan(ctx, "usecase.TeamService.Rename")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return team.Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	_, t, err := s.ownedTeam(ctx, userPublicID, teamPublicID)
	if err != nil {
		return team.Team{}, err
	}

	if err := s.teams.Rename(ctx, t.ID, name); err != nil {
		return team.Team{}, fmt.Errorf("rename team: %w", err)
	}
	t.Name = name
	return t, nil
}

// Delete removes a team unless it has entered a contest that is already live
// or settled.
func (s *TeamService) Delete(ctx context.Context, userPublicID, teamPublicID string) error {
	ctx, span := startSpan(ctx, "usecase.TeamService.Delete")
	defer span.End()

	_, t, err := s.ownedTeam(ctx, userPublicID, teamPublicID)
	if err != nil {
		return err
	}

	locked, err := s.contests.HasEntriesForTeam(ctx, t.ID, contest.StatusLive, contest.StatusCompleted)
	if err != nil {
		return fmt.Errorf("check contest entries: %w", err)
	}
	if locked {
		return fmt.Errorf("%w: team has entered a contest that is already underway", ErrConflict)
	}

	return s.teams.Delete(ctx, t.ID)
}

func (s *TeamService) accountOf(ctx context.Context, userPublicID string) (user.User, error) {
	account, err := s.users.GetByPublicID(ctx, userPublicID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return user.User{}, fmt.Errorf("find user: %w", err)
	}
	return account, nil
}

func (s *TeamService) ownedTeam(ctx context.Context, userPublicID, teamPublicID string) (user.User, team.Team, error) {
	account, err := s.accountOf(ctx, userPublicID)
	if err != nil {
		return user.User{}, team.Team{}, err
	}

	t, err := s.teams.GetByPublicID(ctx, teamPublicID)
	if err != nil {
		if errors.Is(err, team.ErrNotFound) {
			return user.User{}, team.Team{}, fmt.Errorf("%w: team not found", ErrNotFound)
		}
		return user.User{}, team.Team{}, fmt.Errorf("find team: %w", err)
	}
	if t.UserID != account.ID {
		// Hide other users' teams entirely.
		return user.User{}, team.Team{}, fmt.Errorf("%w: team not found", ErrNotFound)
	}
	return account, t, nil
}

// checkSquadMembership rejects picks that are not in the published squads.
// Squad data being unavailable is not an error.
func (s *TeamService) checkSquadMembership(ctx context.Context, matchRef string, players []team.Player) error {
	squads, err := s.matches.Squads(ctx, matchRef)
	if err != nil || len(squads) == 0 {
		return nil
	}

	known := make(map[string]struct{})
	for _, squad := range squads {
		for _, p := range squad.Players {
			known[p.ID] = struct{}{}
		}
	}
	if len(known) == 0 {
		return nil
	}

	for _, p := range players {
		if _, ok := known[p.PlayerRef]; !ok {
			return fmt.Errorf("%w: player %s is not in the match squad", ErrInvalidInput, p.PlayerRef)
		}
	}
	return nil
}
