package profile

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProfileNotFound = errors.New("profile not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context, userID int) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var p Profile
	err = r.db.QueryRow(
		ctx,
		`SELECT
			id, user_id, sex, date_of_birth, height_cm, weight_kg,
			activity_level, goal, created_at, updated_at
		FROM user_profile
		WHERE user_id = $1;`,
		userID,
	).Scan(
		&p.ID, &p.UserID, &p.Sex, &p.DateOfBirth, &p.HeightCm, &p.WeightKg,
		&p.ActivityLevel, &p.Goal, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// Upsert creates the profile on first save and updates it afterwards.
// One profile per user.
func (r *Repo) Upsert(ctx context.Context, p *Profile) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := time.Now()
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO user_profile
			(user_id, sex, date_of_birth, height_cm, weight_kg, activity_level, goal, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			sex = EXCLUDED.sex,
			date_of_birth = EXCLUDED.date_of_birth,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			activity_level = EXCLUDED.activity_level,
			goal = EXCLUDED.goal,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at;`,
		p.UserID, p.Sex, p.DateOfBirth, p.HeightCm, p.WeightKg, p.ActivityLevel, p.Goal, now,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.UpdatedAt = now
	return p, nil
}

// UpdateWeight refreshes the profile weight, used when a new
// biometrics entry comes in.
func (r *Repo) UpdateWeight(ctx context.Context, userID int, weightKg float64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.updateWeight")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE user_profile SET weight_kg = $1, updated_at = $2 WHERE user_id = $3;`,
		weightKg, time.Now(), userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
