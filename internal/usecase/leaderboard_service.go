package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/crickarena/crickarena/internal/domain/user"
	"github.com/crickarena/crickarena/internal/platform/logging"
)

const globalLeaderboardN = 100

// GlobalLeaderboard is the site-wide standings page. CurrentUserRank is nil for
// anonymous callers and for users with no stats row.
type GlobalLeaderboard struct {
	Rows            []user.RankedUser
	CurrentUserRank *int
}

type LeaderboardService struct {
	users  user.Repository
	stats  user.StatsRepository
	logger *logging.Logger
}

func NewLeaderboardService(users user.Repository, stats user.StatsRepository, logger *logging.Logger) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{users: users, stats: stats, logger: logger}
}

// Global returns the top users by lifetime points. principalUserID may be
// empty; when set and the user is outside the page, their exact rank is
// resolved with a counting query.
func (s *LeaderboardService) Global(ctx context.Context, principalUserID string) (GlobalLeaderboard, error) {
	ctx, span := startSpan(ctx, "usecase.LeaderboardService.Global")
	defer span.End()

	rows, err := s.stats.TopByPoints(ctx, globalLeaderboardN)
	if err != nil {
		return GlobalLeaderboard{}, fmt.Errorf("load leaderboard: %w", err)
	}
	board := GlobalLeaderboard{Rows: rows}

	if principalUserID == "" {
		return board, nil
	}
	for _, row := range rows {
		if row.UserPublicID == principalUserID {
			rank := row.Rank
			board.CurrentUserRank = &rank
			return board, nil
		}
	}

	account, err := s.users.GetByPublicID(ctx, principalUserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return board, nil
		}
		return GlobalLeaderboard{}, fmt.Errorf("find user: %w", err)
	}
	rank, err := s.stats.RankOf(ctx, account.ID)
	if err != nil {
		return GlobalLeaderboard{}, fmt.Errorf("resolve rank: %w", err)
	}
	if rank > 0 {
		board.CurrentUserRank = &rank
	}
	return board, nil
}
