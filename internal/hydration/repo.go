package hydration

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, intake *Intake) (_ *Intake, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.hydration.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO water_intake
			(user_id, milliliters, notes, recorded_at)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		intake.UserID, intake.Milliliters, intake.Notes, intake.RecordedAt,
	).Scan(&intake.ID)
	if err != nil {
		return nil, err
	}

	return intake, nil
}

// DailyTotal sums the milliliters drunk on the calendar day of the
// given moment, in that moment's location.
func (r *Repo) DailyTotal(ctx context.Context, userID int, day time.Time) (total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.hydration.dailyTotal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	dayStart := pkg.DayStart(day)
	err = r.db.QueryRow(
		ctx,
		`SELECT COALESCE(SUM(milliliters), 0)
			FROM water_intake
			WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at < $3;`,
		userID, dayStart, dayStart.AddDate(0, 0, 1),
	).Scan(&total)
	return total, err
}

// ListRange returns the intakes recorded in [from, to), newest first.
func (r *Repo) ListRange(ctx context.Context, userID int, from, to time.Time) (_ []Intake, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.hydration.listRange")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, milliliters, notes, recorded_at
			FROM water_intake
			WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at < $3
			ORDER BY recorded_at DESC;`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intakes []Intake
	for rows.Next() {
		var i Intake
		if err := rows.Scan(&i.ID, &i.UserID, &i.Milliliters, &i.Notes, &i.RecordedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		intakes = append(intakes, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return intakes, nil
}
