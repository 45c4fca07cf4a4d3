package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/crickarena/crickarena/internal/domain/contest"
	qb "github.com/crickarena/crickarena/internal/platform/querybuilder"
)

var contestColumns = []string{
	"id", "public_id", "match_ref", "name", "template_code",
	"entry_fee", "prize_pool", "max_entries", "current_entries",
	"status", "created_at", "updated_at",
}

var contestEntryColumns = []string{
	"id", "contest_id", "user_id", "team_id",
	"points", "rank", "scored_at", "created_at",
}

const leaderboardSelect = `
	SELECT
		RANK() OVER (ORDER BY e.points DESC, e.created_at ASC) AS rank,
		u.public_id AS user_public_id,
		u.full_name AS user_name,
		t.public_id AS team_public_id,
		t.name AS team_name,
		e.points,
		e.created_at AS joined_at
	FROM contest_entries e
	JOIN users u ON u.id = e.user_id
	JOIN user_teams t ON t.id = e.team_id
	WHERE e.contest_id = $1`

type ContestRepository struct {
	db *sqlx.DB
}

func NewContestRepository(db *sqlx.DB) *ContestRepository {
	return &ContestRepository{db: db}
}

func (r *ContestRepository) ExistsForMatch(ctx context.Context, matchRef string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM contests WHERE match_ref = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, matchRef); err != nil {
		return false, fmt.Errorf("contests exist for match: %w", err)
	}
	return exists, nil
}

func (r *ContestRepository) CreateBatch(ctx context.Context, contests []contest.Contest) error {
	if len(contests) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create contests: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, c := range contests {
		insertModel := contestInsertModel{
			PublicID:     c.PublicID,
			MatchRef:     c.MatchRef,
			Name:         c.Name,
			TemplateCode: c.TemplateCode,
			EntryFee:     c.EntryFee,
			PrizePool:    c.PrizePool,
			MaxEntries:   c.MaxEntries,
			Status:       c.Status,
		}
		query, args, err := qb.InsertModel("contests", insertModel, "")
		if err != nil {
			return fmt.Errorf("build create contest query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("create contest: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create contests: %w", err)
	}

	return nil
}

func (r *ContestRepository) List(ctx context.Context, filter contest.Filter) ([]contest.Contest, error) {
	conditions := []qb.Condition{}
	if filter.MatchRef != "" {
		conditions = append(conditions, qb.Eq("match_ref", filter.MatchRef))
	}
	if filter.Status != "" {
		conditions = append(conditions, qb.Eq("status", filter.Status))
	}

	query, args, err := qb.Select(contestColumns...).
		From("contests").
		Where(conditions...).
		OrderBy("match_ref ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list contests query: %w", err)
	}

	var rows []contestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}

	contests := make([]contest.Contest, 0, len(rows))
	for _, row := range rows {
		contests = append(contests, row.toDomain())
	}
	return contests, nil
}

func (r *ContestRepository) GetByPublicID(ctx context.Context, publicID string) (contest.Contest, error) {
	query, args, err := qb.Select(contestColumns...).
		From("contests").
		Where(qb.Eq("public_id", publicID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return contest.Contest{}, fmt.Errorf("build get contest query: %w", err)
	}

	var row contestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return contest.Contest{}, contest.ErrNotFound
		}
		return contest.Contest{}, fmt.Errorf("get contest: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ContestRepository) MatchRefsWithOpenContests(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("match_ref").
		From("contests").
		Where(qb.Expr("status <> ?", contest.StatusCompleted)).
		GroupBy("match_ref").
		OrderBy("match_ref ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build open contest matches query: %w", err)
	}

	var refs []string
	if err := r.db.SelectContext(ctx, &refs, query, args...); err != nil {
		return nil, fmt.Errorf("open contest matches: %w", err)
	}
	return refs, nil
}

func (r *ContestRepository) SetStatusForMatch(ctx context.Context, matchRef, status string) (int, error) {
	if !contest.ValidStatus(status) {
		return 0, fmt.Errorf("invalid contest status %q", status)
	}

	// The IN clause keeps the transition monotonic at the database level.
	allowed := []any{contest.StatusUpcoming}
	if status == contest.StatusCompleted {
		allowed = append(allowed, contest.StatusLive)
	}

	query, args, err := qb.Update("contests").
		Set("status", status).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("match_ref", matchRef),
			qb.In("status", allowed),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build set contest status query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("set contest status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected set contest status: %w", err)
	}
	return int(affected), nil
}

// Join inserts the entry and bumps current_entries in one transaction. The
// conditional update is the capacity gate: zero rows affected means the
// contest is full and the insert rolls back with it.
func (r *ContestRepository) Join(ctx context.Context, entry *contest.Entry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx join contest: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertModel := contestEntryInsertModel{
		ContestID: entry.ContestID,
		UserID:    entry.UserID,
		TeamID:    entry.TeamID,
	}
	query, args, err := qb.InsertModel("contest_entries", insertModel, "RETURNING id, created_at")
	if err != nil {
		return fmt.Errorf("build join contest query: %w", err)
	}
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		if isUniqueViolation(err, "contest_entries_contest_id_user_id_key") {
			return contest.ErrAlreadyJoined
		}
		return fmt.Errorf("join contest: %w", err)
	}

	bumpQuery, bumpArgs, err := qb.Update("contests").
		SetExpr("current_entries", "current_entries + 1").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", entry.ContestID),
			qb.Expr("current_entries < max_entries"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build bump contest entries query: %w", err)
	}
	result, err := tx.ExecContext(ctx, bumpQuery, bumpArgs...)
	if err != nil {
		return fmt.Errorf("bump contest entries: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected bump contest entries: %w", err)
	}
	if affected == 0 {
		return contest.ErrContestFull
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit join contest: %w", err)
	}

	return nil
}

func (r *ContestRepository) EntryForUser(ctx context.Context, contestID, userID int64) (contest.Entry, bool, error) {
	query, args, err := qb.Select(contestEntryColumns...).
		From("contest_entries").
		Where(
			qb.Eq("contest_id", contestID),
			qb.Eq("user_id", userID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return contest.Entry{}, false, fmt.Errorf("build entry for user query: %w", err)
	}

	var row contestEntryTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return contest.Entry{}, false, nil
		}
		return contest.Entry{}, false, fmt.Errorf("entry for user: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *ContestRepository) HasEntriesForTeam(ctx context.Context, teamID int64, statuses ...string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM contest_entries e
			JOIN contests c ON c.id = e.contest_id
			WHERE e.team_id = $1 AND c.status = ANY($2)
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, teamID, pq.Array(statuses)); err != nil {
		return false, fmt.Errorf("entries for team: %w", err)
	}
	return exists, nil
}

func (r *ContestRepository) ListEntries(ctx context.Context, contestID int64, limit int) ([]contest.Entry, error) {
	builder := qb.Select(contestEntryColumns...).
		From("contest_entries").
		Where(qb.Eq("contest_id", contestID)).
		OrderBy("points DESC", "created_at ASC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list entries query: %w", err)
	}

	var rows []contestEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	entries := make([]contest.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

func (r *ContestRepository) ListUnscoredEntries(ctx context.Context, contestID int64) ([]contest.Entry, error) {
	query, args, err := qb.Select(contestEntryColumns...).
		From("contest_entries").
		Where(
			qb.Eq("contest_id", contestID),
			qb.IsNull("scored_at"),
		).
		OrderBy("id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list unscored entries query: %w", err)
	}

	var rows []contestEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list unscored entries: %w", err)
	}

	entries := make([]contest.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

// ScoreEntry writes entry points, per-player points and the team total in one
// transaction.
func (r *ContestRepository) ScoreEntry(ctx context.Context, entryID, teamID int64, playerScores []contest.PlayerScore, total float64, scoredAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx score entry: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	entryQuery, entryArgs, err := qb.Update("contest_entries").
		Set("points", total).
		Set("scored_at", scoredAt).
		Where(qb.Eq("id", entryID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build score entry query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, entryQuery, entryArgs...); err != nil {
		return fmt.Errorf("score entry: %w", err)
	}

	for _, ps := range playerScores {
		playerQuery, playerArgs, err := qb.Update("team_players").
			Set("points", ps.Points).
			Where(
				qb.Eq("team_id", teamID),
				qb.Eq("player_ref", ps.PlayerRef),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build score team player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, playerQuery, playerArgs...); err != nil {
			return fmt.Errorf("score team player: %w", err)
		}
	}

	teamQuery, teamArgs, err := qb.Update("user_teams").
		Set("total_points", total).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build score team query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, teamQuery, teamArgs...); err != nil {
		return fmt.Errorf("score team: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit score entry: %w", err)
	}

	return nil
}

// SetEntryRank writes the rank to the entry and the owning team together.
func (r *ContestRepository) SetEntryRank(ctx context.Context, entryID, teamID int64, rank int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx set entry rank: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	entryQuery, entryArgs, err := qb.Update("contest_entries").
		Set("rank", rank).
		Where(qb.Eq("id", entryID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set entry rank query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, entryQuery, entryArgs...); err != nil {
		return fmt.Errorf("set entry rank: %w", err)
	}

	teamQuery, teamArgs, err := qb.Update("user_teams").
		Set("rank", rank).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set team rank query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, teamQuery, teamArgs...); err != nil {
		return fmt.Errorf("set team rank: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set entry rank: %w", err)
	}

	return nil
}

func (r *ContestRepository) Leaderboard(ctx context.Context, contestID int64, limit int) ([]contest.LeaderboardRow, error) {
	query := leaderboardSelect + `
	ORDER BY e.points DESC, e.created_at ASC
	LIMIT $2`

	var rows []leaderboardRowModel
	if err := r.db.SelectContext(ctx, &rows, query, contestID, limit); err != nil {
		return nil, fmt.Errorf("contest leaderboard: %w", err)
	}

	board := make([]contest.LeaderboardRow, 0, len(rows))
	for _, row := range rows {
		board = append(board, row.toDomain())
	}
	return board, nil
}

func (r *ContestRepository) LeaderboardRowForUser(ctx context.Context, contestID, userID int64) (contest.LeaderboardRow, bool, error) {
	query := `
	SELECT * FROM (` + leaderboardSelect + `
	) ranked
	WHERE ranked.user_public_id = (SELECT public_id FROM users WHERE id = $2)`

	var row leaderboardRowModel
	if err := r.db.GetContext(ctx, &row, query, contestID, userID); err != nil {
		if isNotFound(err) {
			return contest.LeaderboardRow{}, false, nil
		}
		return contest.LeaderboardRow{}, false, fmt.Errorf("leaderboard row for user: %w", err)
	}
	return row.toDomain(), true, nil
}
