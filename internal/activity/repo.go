package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/calc"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrActivityNotFound = errors.New("activity not found")

type ListParams struct {
	UserID int
	Type   *calc.ActivityType
	From   *time.Time
	To     *time.Time
	Page   int
	Size   int
}

// Totals are SQL aggregates over a set of activities.
type Totals struct {
	Workouts        int `json:"workouts"`
	CaloriesBurned  int `json:"caloriesBurned"`
	DurationMinutes int `json:"durationMinutes"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, activity *Activity) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO activity
			(user_id, type, duration_minutes, distance_km, calories_burned, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;`,
		activity.UserID, activity.Type, activity.DurationMinutes,
		activity.DistanceKm, activity.CaloriesBurned, activity.Notes, activity.CreatedAt,
	).Scan(&activity.ID)
	if err != nil {
		return nil, err
	}

	return activity, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var a Activity
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, type, duration_minutes, distance_km, calories_burned, notes, created_at
			FROM activity WHERE id = $1;`,
		id,
	).Scan(
		&a.ID, &a.UserID, &a.Type, &a.DurationMinutes,
		&a.DistanceKm, &a.CaloriesBurned, &a.Notes, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *Repo) Update(ctx context.Context, activity *Activity) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE activity
			SET type = $1, duration_minutes = $2, distance_km = $3,
				calories_burned = $4, notes = $5, created_at = $6
			WHERE id = $7 AND user_id = $8;`,
		activity.Type, activity.DurationMinutes, activity.DistanceKm,
		activity.CaloriesBurned, activity.Notes, activity.CreatedAt,
		activity.ID, activity.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrActivityNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM activity WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// List returns a page of activities ordered newest first, plus the total count.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Activity, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	where, args := listFilter(params)

	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM activity `+where+`;`,
		args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	limit := params.Size
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if params.Page > 1 {
		offset = (params.Page - 1) * limit
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(
			`SELECT id, user_id, type, duration_minutes, distance_km, calories_burned, notes, created_at
				FROM activity %s
				ORDER BY created_at DESC
				LIMIT $%d OFFSET $%d;`,
			where, len(args)-1, len(args),
		),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	activities, err := scanActivities(rows)
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

// ListAll returns every matching activity ordered newest first, unpaged.
func (r *Repo) ListAll(ctx context.Context, params ListParams) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.listAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	where, args := listFilter(params)
	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, type, duration_minutes, distance_km, calories_burned, notes, created_at
			FROM activity `+where+`
			ORDER BY created_at DESC;`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

func (r *Repo) Count(ctx context.Context, userID int) (count int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM activity WHERE user_id = $1;`,
		userID,
	).Scan(&count)
	return count, err
}

// TotalCaloriesBurned is the lifetime sum of burned calories.
func (r *Repo) TotalCaloriesBurned(ctx context.Context, userID int) (total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.totalCaloriesBurned")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`SELECT COALESCE(SUM(calories_burned), 0) FROM activity WHERE user_id = $1;`,
		userID,
	).Scan(&total)
	return total, err
}

// TotalsSince aggregates workouts, calories and minutes since the given moment.
func (r *Repo) TotalsSince(ctx context.Context, userID int, since time.Time) (_ Totals, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.totalsSince")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var t Totals
	err = r.db.QueryRow(
		ctx,
		`SELECT COUNT(*), COALESCE(SUM(calories_burned), 0), COALESCE(SUM(duration_minutes), 0)
			FROM activity WHERE user_id = $1 AND created_at >= $2;`,
		userID, since,
	).Scan(&t.Workouts, &t.CaloriesBurned, &t.DurationMinutes)
	return t, err
}

// TotalCaloriesOnDay sums the calories burned on the calendar day of the
// given moment, in that moment's location.
func (r *Repo) TotalCaloriesOnDay(ctx context.Context, userID int, day time.Time) (total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.totalCaloriesOnDay")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	dayStart := pkg.DayStart(day)
	err = r.db.QueryRow(
		ctx,
		`SELECT COALESCE(SUM(calories_burned), 0)
			FROM activity
			WHERE user_id = $1 AND created_at >= $2 AND created_at < $3;`,
		userID, dayStart, dayStart.AddDate(0, 0, 1),
	).Scan(&total)
	return total, err
}

// ExistsOnDay reports whether the user logged any activity on the calendar
// day of the given moment.
func (r *Repo) ExistsOnDay(ctx context.Context, userID int, day time.Time) (exists bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.existsOnDay")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	dayStart := pkg.DayStart(day)
	err = r.db.QueryRow(
		ctx,
		`SELECT EXISTS(
			SELECT 1 FROM activity
			WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		);`,
		userID, dayStart, dayStart.AddDate(0, 0, 1),
	).Scan(&exists)
	return exists, err
}

// ExistsBeforeHour reports whether the user ever logged an activity
// before the given hour of day.
func (r *Repo) ExistsBeforeHour(ctx context.Context, userID, hour int) (exists bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.existsBeforeHour")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`SELECT EXISTS(
			SELECT 1 FROM activity
			WHERE user_id = $1 AND EXTRACT(HOUR FROM created_at) < $2
		);`,
		userID, hour,
	).Scan(&exists)
	return exists, err
}

// TypeBreakdown returns the all-time number of workouts per activity type.
func (r *Repo) TypeBreakdown(ctx context.Context, userID int) (_ map[calc.ActivityType]int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.typeBreakdown")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT type, COUNT(*) FROM activity WHERE user_id = $1 GROUP BY type;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breakdown := make(map[calc.ActivityType]int)
	for rows.Next() {
		var activityType calc.ActivityType
		var count int
		if err := rows.Scan(&activityType, &count); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		breakdown[activityType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return breakdown, nil
}

func listFilter(params ListParams) (where string, args []interface{}) {
	where = "WHERE user_id = $1"
	args = append(args, params.UserID)
	if params.Type != nil {
		args = append(args, *params.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if params.From != nil {
		args = append(args, *params.From)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if params.To != nil {
		args = append(args, *params.To)
		where += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	return where, args
}

func scanActivities(rows pgx.Rows) ([]Activity, error) {
	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Type, &a.DurationMinutes,
			&a.DistanceKm, &a.CaloriesBurned, &a.Notes, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}
