package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crickarena/crickarena/internal/domain/contest"
	"github.com/crickarena/crickarena/internal/domain/notification"
	"github.com/crickarena/crickarena/internal/domain/team"
	"github.com/crickarena/crickarena/internal/domain/user"
	"github.com/crickarena/crickarena/internal/platform/logging"
)

const (
	contestJoinedXP     = 20
	contestLeaderboardN = 100
)

type JoinContestInput struct {
	ContestPublicID string
	TeamPublicID    string
}

// ContestLeaderboard is the per-contest standings page plus the caller's own
// row when it falls outside the page.
type ContestLeaderboard struct {
	Contest contest.Contest
	Rows    []contest.LeaderboardRow
	Own     *contest.LeaderboardRow
}

type ContestService struct {
	contests      contest.Repository
	teams         team.Repository
	users         user.Repository
	stats         user.StatsRepository
	notifications notification.Repository
	logger        *logging.Logger
}

func NewContestService(
	contests contest.Repository,
	teams team.Repository,
	users user.Repository,
	stats user.StatsRepository,
	notifications notification.Repository,
	logger *logging.Logger,
) *ContestService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ContestService{
		contests:      contests,
		teams:         teams,
		users:         users,
		stats:         stats,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *ContestService) List(ctx context.Context, matchRef, status string) ([]contest.Contest, error) {
	ctx, span := startSpan(ctx, "usecase.ContestService.List")
	defer span.End()

	status = strings.TrimSpace(status)
	if status != "" && !contest.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown contest status %q", ErrInvalidInput, status)
	}

	return s.contests.List(ctx, contest.Filter{
		MatchRef: strings.TrimSpace(matchRef),
		Status:   status,
	})
}

func (s *ContestService) Get(ctx context.Context, publicID string) (contest.Contest, error) {
	ctx, span := startSpan(ctx, "usecase.ContestService.Get")
	defer span.End()

	c, err := s.contests.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, contest.ErrNotFound) {
			return contest.Contest{}, fmt.Errorf("%w: contest not found", ErrNotFound)
		}
		return contest.Contest{}, fmt.Errorf("find contest: %w", err)
	}
	return c, nil
}

// Join enters the user's team into a contest. The entry insert and the
// capacity bump are atomic in the repository; a full contest leaves no row.
func (s *ContestService) Join(ctx context.Context, userPublicID string, input JoinContestInput) (contest.Entry, error) {
	ctx, span := startSpan(ctx, "usecase.ContestService.Join")
	defer span.End()

	account, err := s.users.GetByPublicID(ctx, userPublicID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return contest.Entry{}, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return contest.Entry{}, fmt.Errorf("find user: %w", err)
	}

	c, err := s.contests.GetByPublicID(ctx, strings.TrimSpace(input.ContestPublicID))
	if err != nil {
		if errors.Is(err, contest.ErrNotFound) {
			return contest.Entry{}, fmt.Errorf("%w: contest not found", ErrNotFound)
		}
		return contest.Entry{}, fmt.Errorf("find contest: %w", err)
	}
	if c.Status != contest.StatusUpcoming {
		return contest.Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, contest.ErrNotJoinable)
	}

	t, err := s.teams.GetByPublicID(ctx, strings.TrimSpace(input.TeamPublicID))
	if err != nil {
		if errors.Is(err, team.ErrNotFound) {
			return contest.Entry{}, fmt.Errorf("%w: team not found", ErrNotFound)
		}
		return contest.Entry{}, fmt.Errorf("find team: %w", err)
	}
	if t.UserID != account.ID {
		return contest.Entry{}, fmt.Errorf("%w: team not found", ErrNotFound)
	}
	if t.MatchRef != c.MatchRef {
		return contest.Entry{}, fmt.Errorf("%w: team belongs to a different match", ErrInvalidInput)
	}

	entry := contest.Entry{
		ContestID: c.ID,
		UserID:    account.ID,
		TeamID:    t.ID,
	}
	if err := s.contests.Join(ctx, &entry); err != nil {
		switch {
		case errors.Is(err, contest.ErrContestFull), errors.Is(err, contest.ErrAlreadyJoined):
			return contest.Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		default:
			return contest.Entry{}, fmt.Errorf("join contest: %w", err)
		}
	}

	if err := s.stats.Apply(ctx, account.ID, user.StatsDelta{ContestsJoined: 1, XP: contestJoinedXP}); err != nil {
		s.logger.WarnContext(ctx, "apply join stats failed", "user_id", userPublicID, "error", err)
	}
	s.notify(ctx, account.ID, notification.Notification{
		Type:  notification.TypeContestJoined,
		Title: "Contest joined",
		Body:  fmt.Sprintf("Your team %s has entered %s.", t.Name, c.Name),
		Link:  "/contests/" + c.PublicID,
	})

	s.logger.InfoContext(ctx, "contest joined",
		"contest_id", c.PublicID, "team_id", t.PublicID, "user_id", userPublicID)
	return entry, nil
}

// Leaderboard returns the top rows and, for an authenticated caller outside
// the page, their own ranked row. principalUserID may be empty.
func (s *ContestService) Leaderboard(ctx context.Context, contestPublicID, principalUserID string) (ContestLeaderboard, error) {
	ctx, span := startSpan(ctx, "usecase.ContestService.Leaderboard")
	defer span.End()

	c, err := s.Get(ctx, contestPublicID)
	if err != nil {
		return ContestLeaderboard{}, err
	}

	rows, err := s.contests.Leaderboard(ctx, c.ID, contestLeaderboardN)
	if err != nil {
		return ContestLeaderboard{}, fmt.Errorf("load leaderboard: %w", err)
	}
	board := ContestLeaderboard{Contest: c, Rows: rows}

	if principalUserID == "" {
		return board, nil
	}
	for _, row := range rows {
		if row.UserPublicID == principalUserID {
			return board, nil
		}
	}

	account, err := s.users.GetByPublicID(ctx, principalUserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return board, nil
		}
		return ContestLeaderboard{}, fmt.Errorf("find user: %w", err)
	}
	own, ok, err := s.contests.LeaderboardRowForUser(ctx, c.ID, account.ID)
	if err != nil {
		return ContestLeaderboard{}, fmt.Errorf("load own standing: %w", err)
	}
	if ok {
		board.Own = &own
	}
	return board, nil
}

func (s *ContestService) notify(ctx context.Context, userID int64, n notification.Notification) {
	n.UserID = userID
	if err := s.notifications.Create(ctx, &n); err != nil {
		s.logger.WarnContext(ctx, "create notification failed", "type", n.Type, "error", err)
	}
}
