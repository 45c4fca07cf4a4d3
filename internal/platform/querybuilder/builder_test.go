package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("id", "name").
		From("contests").
		Where(Eq("match_ref", "m1"), Eq("status", "upcoming")).
		OrderBy("created_at DESC").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "SELECT id, name FROM contests WHERE match_ref = $1 AND status = $2 ORDER BY created_at DESC LIMIT 10"
	if sql != wantSQL {
		t.Fatalf("sql = %q, want %q", sql, wantSQL)
	}
	if !reflect.DeepEqual(args, []any{"m1", "upcoming"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestSelectBuilder_InAndIsNull(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("id").
		From("contest_entries").
		Where(In("contest_id", []any{int64(1), int64(2)}), IsNull("scored_at")).
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "SELECT id FROM contest_entries WHERE contest_id IN ($1, $2) AND scored_at IS NULL"
	if sql != wantSQL {
		t.Fatalf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v", args)
	}
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("id").From("users").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != "SELECT id FROM users WHERE 1=0" {
		t.Fatalf("sql = %q", sql)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v", args)
	}
}

func TestSelectBuilder_RequiresColumnsAndTable(t *testing.T) {
	t.Parallel()

	if _, _, err := Select().From("users").ToSQL(); err == nil {
		t.Fatal("expected error for missing columns")
	}
	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestInsertBuilder(t *testing.T) {
	t.Parallel()

	sql, args, err := InsertInto("notifications").
		Columns("user_id", "title").
		Values(int64(1), "a").
		Values(int64(2), "b").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "INSERT INTO notifications (user_id, title) VALUES ($1, $2), ($3, $4) RETURNING id"
	if sql != wantSQL {
		t.Fatalf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 4 {
		t.Fatalf("args = %v", args)
	}
}

func TestInsertBuilder_RowArityMismatch(t *testing.T) {
	t.Parallel()

	if _, _, err := InsertInto("t").Columns("a", "b").Values(1).ToSQL(); err == nil {
		t.Fatal("expected arity error")
	}
}

func TestUpdateBuilder_SetAndSetExpr(t *testing.T) {
	t.Parallel()

	sql, args, err := Update("user_stats").
		Set("level", 3).
		SetExpr("xp", "xp + ?", 20).
		Where(Eq("user_id", int64(7))).
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "UPDATE user_stats SET level = $1, xp = xp + $2 WHERE user_id = $3"
	if sql != wantSQL {
		t.Fatalf("sql = %q, want %q", sql, wantSQL)
	}
	if !reflect.DeepEqual(args, []any{3, 20, int64(7)}) {
		t.Fatalf("args = %v", args)
	}
}

func TestUpdateBuilder_ExprCondition(t *testing.T) {
	t.Parallel()

	sql, args, err := Update("contests").
		Set("status", "live").
		Where(Eq("public_id", "c1"), Expr("current_entries < ?", 100)).
		ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "UPDATE contests SET status = $1 WHERE public_id = $2 AND current_entries < $3"
	if sql != wantSQL {
		t.Fatalf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 3 {
		t.Fatalf("args = %v", args)
	}
}

func TestDeleteBuilder_RequiresWhere(t *testing.T) {
	t.Parallel()

	if _, _, err := DeleteFrom("user_teams").ToSQL(); err == nil {
		t.Fatal("expected error for delete without conditions")
	}

	sql, args, err := DeleteFrom("user_teams").Where(Eq("id", int64(4))).ToSQL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != "DELETE FROM user_teams WHERE id = $1" {
		t.Fatalf("sql = %q", sql)
	}
	if len(args) != 1 {
		t.Fatalf("args = %v", args)
	}
}
