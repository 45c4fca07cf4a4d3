package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crickarena/crickarena/internal/domain/user"
)

type UserStatsRepository struct {
	db *sqlx.DB
}

func NewUserStatsRepository(db *sqlx.DB) *UserStatsRepository {
	return &UserStatsRepository{db: db}
}

func (r *UserStatsRepository) GetOrCreate(ctx context.Context, userID int64) (user.Stats, error) {
	const query = `
		INSERT INTO user_stats (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, total_points, contests_joined, contests_won,
			teams_created, level, xp, updated_at`

	var row userStatsTableModel
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return user.Stats{}, fmt.Errorf("get or create user stats: %w", err)
	}
	return row.toDomain(), nil
}

// Apply adds the delta to the counters and recomputes the level from the new
// xp total in one statement.
func (r *UserStatsRepository) Apply(ctx context.Context, userID int64, delta user.StatsDelta) error {
	const query = `
		INSERT INTO user_stats (user_id, total_points, contests_joined, contests_won, teams_created, xp, level)
		VALUES ($1, $2, $3, $4, $5, $6, ($6 / 1000) + 1)
		ON CONFLICT (user_id) DO UPDATE SET
			total_points    = user_stats.total_points + EXCLUDED.total_points,
			contests_joined = user_stats.contests_joined + EXCLUDED.contests_joined,
			contests_won    = user_stats.contests_won + EXCLUDED.contests_won,
			teams_created   = user_stats.teams_created + EXCLUDED.teams_created,
			xp              = user_stats.xp + EXCLUDED.xp,
			level           = ((user_stats.xp + EXCLUDED.xp) / 1000) + 1,
			updated_at      = NOW()`

	if _, err := r.db.ExecContext(ctx, query,
		userID, delta.Points, delta.ContestsJoined, delta.ContestsWon, delta.TeamsCreated, delta.XP,
	); err != nil {
		return fmt.Errorf("apply user stats delta: %w", err)
	}
	return nil
}

func (r *UserStatsRepository) TopByPoints(ctx context.Context, limit int) ([]user.RankedUser, error) {
	const query = `
		SELECT
			RANK() OVER (ORDER BY s.total_points DESC, s.user_id ASC) AS rank,
			u.public_id, u.full_name, u.state,
			s.level, s.total_points, s.contests_joined, s.contests_won
		FROM user_stats s
		JOIN users u ON u.id = s.user_id
		WHERE u.is_active
		ORDER BY s.total_points DESC, s.user_id ASC
		LIMIT $1`

	var rows []rankedUserModel
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("top users by points: %w", err)
	}

	ranked := make([]user.RankedUser, 0, len(rows))
	for _, row := range rows {
		ranked = append(ranked, user.RankedUser{
			Rank:           row.Rank,
			UserPublicID:   row.UserPublicID,
			FullName:       row.FullName,
			State:          row.State,
			Level:          row.Level,
			TotalPoints:    row.TotalPoints,
			ContestsJoined: row.ContestsJoined,
			ContestsWon:    row.ContestsWon,
		})
	}
	return ranked, nil
}

func (r *UserStatsRepository) RankOf(ctx context.Context, userID int64) (int, error) {
	// Rank 0 means "no stats row yet"; callers render that as unranked.
	const query = `
		SELECT CASE
			WHEN NOT EXISTS (SELECT 1 FROM user_stats WHERE user_id = $1) THEN 0
			ELSE (
				SELECT COUNT(*) + 1
				FROM user_stats
				WHERE total_points > (SELECT total_points FROM user_stats WHERE user_id = $1)
			)
		END`

	var rank int
	if err := r.db.GetContext(ctx, &rank, query, userID); err != nil {
		return 0, fmt.Errorf("rank of user: %w", err)
	}
	return rank, nil
}
