package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/crickarena/crickarena/internal/domain/user"
	qb "github.com/crickarena/crickarena/internal/platform/querybuilder"
)

var userColumns = []string{
	"id", "public_id", "email", "password_hash", "full_name", "mobile",
	"date_of_birth", "state", "is_active", "is_verified",
	"reset_token", "reset_token_expires_at", "created_at", "updated_at",
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	insertModel := userInsertModel{
		PublicID:     u.PublicID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Mobile:       u.Mobile,
		DateOfBirth:  u.DateOfBirth,
		State:        u.State,
		IsActive:     u.IsActive,
	}
	query, args, err := qb.InsertModel("users", insertModel, "RETURNING id, created_at, updated_at")
	if err != nil {
		return fmt.Errorf("build create user query: %w", err)
	}

	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		switch {
		case isUniqueViolation(err, "users_email_key"):
			return user.ErrEmailTaken
		case isUniqueViolation(err, "users_mobile_key"):
			return user.ErrMobileTaken
		default:
			return fmt.Errorf("create user: %w", err)
		}
	}

	return nil
}

func (r *UserRepository) GetByPublicID(ctx context.Context, publicID string) (user.User, error) {
	return r.getOne(ctx, qb.Eq("public_id", publicID))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, qb.Eq("email", email))
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (user.User, error) {
	return r.getOne(ctx,
		qb.Eq("reset_token", token),
		qb.Expr("reset_token_expires_at > NOW()"),
	)
}

func (r *UserRepository) getOne(ctx context.Context, conditions ...qb.Condition) (user.User, error) {
	query, args, err := qb.Select(userColumns...).
		From("users").
		Where(conditions...).
		Limit(1).
		ToSQL()
	if err != nil {
		return user.User{}, fmt.Errorf("build get user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *user.User) error {
	query, args, err := qb.Update("users").
		Set("full_name", u.FullName).
		Set("mobile", u.Mobile).
		Set("state", u.State).
		Set("date_of_birth", u.DateOfBirth).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", u.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update profile query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, "users_mobile_key") {
			return user.ErrMobileTaken
		}
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update profile: %w", err)
	}
	if affected == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	query, args, err := qb.Update("users").
		Set("password_hash", passwordHash).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update password query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	query, args, err := qb.Update("users").
		Set("reset_token", token).
		Set("reset_token_expires_at", expiresAt).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set reset token query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	return nil
}

func (r *UserRepository) ClearResetToken(ctx context.Context, userID int64) error {
	query, args, err := qb.Update("users").
		SetExpr("reset_token", "NULL").
		SetExpr("reset_token_expires_at", "NULL").
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear reset token query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}

	return nil
}
