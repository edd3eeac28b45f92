package goals

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrGoalNotFound = errors.New("goal not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, goal *Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO goal
			(user_id, type, title, target_value, current_value, unit, start_date, target_date, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id;`,
		goal.UserID, goal.Type, goal.Title, goal.TargetValue, goal.CurrentValue,
		goal.Unit, goal.StartDate, goal.TargetDate, goal.Status, goal.Notes,
	).Scan(&goal.ID)
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var g Goal
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, type, title, target_value, current_value, unit, start_date, target_date, status, notes
			FROM goal WHERE id = $1;`,
		id,
	).Scan(
		&g.ID, &g.UserID, &g.Type, &g.Title, &g.TargetValue, &g.CurrentValue,
		&g.Unit, &g.StartDate, &g.TargetDate, &g.Status, &g.Notes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return &g, nil
}

func (r *Repo) Update(ctx context.Context, goal *Goal) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE goal
			SET type = $1, title = $2, target_value = $3, current_value = $4,
				unit = $5, start_date = $6, target_date = $7, status = $8, notes = $9
			WHERE id = $10 AND user_id = $11;`,
		goal.Type, goal.Title, goal.TargetValue, goal.CurrentValue,
		goal.Unit, goal.StartDate, goal.TargetDate, goal.Status, goal.Notes,
		goal.ID, goal.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM goal WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// ListByStatus returns the goals with the given status, or all of them
// when status is empty, newest first.
func (r *Repo) ListByStatus(ctx context.Context, userID int, status Status) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.listByStatus")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `SELECT id, user_id, type, title, target_value, current_value, unit, start_date, target_date, status, notes
		FROM goal WHERE user_id = $1`
	args := []interface{}{userID}
	if status != "" {
		args = append(args, status)
		query += " AND status = $2"
	}
	query += " ORDER BY start_date DESC;"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(
			&g.ID, &g.UserID, &g.Type, &g.Title, &g.TargetValue, &g.CurrentValue,
			&g.Unit, &g.StartDate, &g.TargetDate, &g.Status, &g.Notes,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return goals, nil
}
