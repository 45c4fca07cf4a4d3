package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crickarena/crickarena/internal/domain/team"
	qb "github.com/crickarena/crickarena/internal/platform/querybuilder"
)

var teamColumns = []string{
	"id", "public_id", "user_id", "match_ref", "name",
	"credits_used", "total_points", "rank", "created_at", "updated_at",
}

var teamPlayerColumns = []string{
	"id", "team_id", "player_ref", "player_name", "role", "team_name",
	"credit_cost", "is_captain", "is_vice_captain", "points",
}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create inserts the team row and all player rows in one transaction.
func (r *TeamRepository) Create(ctx context.Context, t *team.Team) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create team: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertModel := teamInsertModel{
		PublicID:    t.PublicID,
		UserID:      t.UserID,
		MatchRef:    t.MatchRef,
		Name:        t.Name,
		CreditsUsed: t.CreditsUsed,
	}
	query, args, err := qb.InsertModel("user_teams", insertModel, "RETURNING id, created_at, updated_at")
	if err != nil {
		return fmt.Errorf("build create team query: %w", err)
	}
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("create team: %w", err)
	}

	for i := range t.Players {
		p := &t.Players[i]
		playerModel := teamPlayerInsertModel{
			TeamID:        t.ID,
			PlayerRef:     p.PlayerRef,
			PlayerName:    p.PlayerName,
			Role:          p.Role,
			TeamName:      p.TeamName,
			CreditCost:    p.CreditCost,
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
		}
		playerQuery, playerArgs, err := qb.InsertModel("team_players", playerModel, "RETURNING id")
		if err != nil {
			return fmt.Errorf("build create team player query: %w", err)
		}
		if err := tx.QueryRowxContext(ctx, playerQuery, playerArgs...).Scan(&p.ID); err != nil {
			return fmt.Errorf("create team player: %w", err)
		}
		p.TeamID = t.ID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create team: %w", err)
	}

	return nil
}

func (r *TeamRepository) GetByPublicID(ctx context.Context, publicID string) (team.Team, error) {
	return r.getOne(ctx, qb.Eq("public_id", publicID))
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID int64) (team.Team, error) {
	return r.getOne(ctx, qb.Eq("id", teamID))
}

func (r *TeamRepository) getOne(ctx context.Context, conditions ...qb.Condition) (team.Team, error) {
	query, args, err := qb.Select(teamColumns...).
		From("user_teams").
		Where(conditions...).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, team.ErrNotFound
		}
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}

	t := row.toDomain()
	players, err := r.loadPlayers(ctx, t.ID)
	if err != nil {
		return team.Team{}, err
	}
	t.Players = players
	return t, nil
}

func (r *TeamRepository) ListByUser(ctx context.Context, userID int64, matchRef string) ([]team.Team, error) {
	conditions := []qb.Condition{qb.Eq("user_id", userID)}
	if matchRef != "" {
		conditions = append(conditions, qb.Eq("match_ref", matchRef))
	}

	query, args, err := qb.Select(teamColumns...).
		From("user_teams").
		Where(conditions...).
		OrderBy("created_at DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	teams := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		t := row.toDomain()
		players, err := r.loadPlayers(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Players = players
		teams = append(teams, t)
	}
	return teams, nil
}

func (r *TeamRepository) CountByUserAndMatch(ctx context.Context, userID int64, matchRef string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").
		From("user_teams").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("match_ref", matchRef),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count teams query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count teams: %w", err)
	}
	return count, nil
}

func (r *TeamRepository) Rename(ctx context.Context, teamID int64, name string) error {
	query, args, err := qb.Update("user_teams").
		Set("name", name).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build rename team query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("rename team: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected rename team: %w", err)
	}
	if affected == 0 {
		return team.ErrNotFound
	}

	return nil
}

// Delete removes the team; player rows and upcoming contest entries go with
// it via ON DELETE CASCADE.
func (r *TeamRepository) Delete(ctx context.Context, teamID int64) error {
	query, args, err := qb.DeleteFrom("user_teams").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete team query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected delete team: %w", err)
	}
	if affected == 0 {
		return team.ErrNotFound
	}

	return nil
}

func (r *TeamRepository) loadPlayers(ctx context.Context, teamID int64) ([]team.Player, error) {
	query, args, err := qb.Select(teamPlayerColumns...).
		From("team_players").
		Where(qb.Eq("team_id", teamID)).
		OrderBy("id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list team players query: %w", err)
	}

	var rows []teamPlayerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list team players: %w", err)
	}

	players := make([]team.Player, 0, len(rows))
	for _, row := range rows {
		players = append(players, row.toDomain())
	}
	return players, nil
}
