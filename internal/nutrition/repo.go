package nutrition

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

func (r *Repo) Add(ctx context.Context, meal *Meal) (_ *Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO meal
			(user_id, type, food_name, calories, protein_g, carbs_g, fats_g, serving_size, notes, logged_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id;`,
		meal.UserID, meal.Type, meal.FoodName, meal.Calories,
		meal.ProteinG, meal.CarbsG, meal.FatsG, meal.ServingSize, meal.Notes, meal.LoggedAt,
	).Scan(&meal.ID)
	if err != nil {
		return nil, err
	}

	return meal, nil
}

// ListRange returns the meals logged in [from, to), oldest first.
func (r *Repo) ListRange(ctx context.Context, userID int, from, to time.Time) (_ []Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.listRange")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, type, food_name, calories, protein_g, carbs_g, fats_g, serving_size, notes, logged_at
			FROM meal
			WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
			ORDER BY logged_at ASC;`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meals []Meal
	for rows.Next() {
		var m Meal
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Type, &m.FoodName, &m.Calories,
			&m.ProteinG, &m.CarbsG, &m.FatsG, &m.ServingSize, &m.Notes, &m.LoggedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return meals, nil
}

// DailyTotals sums the nutrition values of the calendar day of the
// given moment, in that moment's location.
func (r *Repo) DailyTotals(ctx context.Context, userID int, day time.Time) (_ DayTotals, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.dailyTotals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	dayStart := pkg.DayStart(day)
	var totals DayTotals
	err = r.db.QueryRow(
		ctx,
		`SELECT
			COALESCE(SUM(calories), 0),
			COALESCE(SUM(protein_g), 0),
			COALESCE(SUM(carbs_g), 0),
			COALESCE(SUM(fats_g), 0)
		FROM meal
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3;`,
		userID, dayStart, dayStart.AddDate(0, 0, 1),
	).Scan(&totals.Calories, &totals.ProteinG, &totals.CarbsG, &totals.FatsG)
	return totals, err
}
