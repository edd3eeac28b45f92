package biometrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrBiometricNotFound = errors.New("biometric entry not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, b *Biometric) (_ *Biometric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.biometrics.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO biometric
			(user_id, weight_kg, body_fat_pct, muscle_mass_kg, waist_cm, notes, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;`,
		b.UserID, b.WeightKg, b.BodyFatPct, b.MuscleMassKg, b.WaistCm, b.Notes, b.RecordedAt,
	).Scan(&b.ID)
	if err != nil {
		return nil, err
	}

	return b, nil
}

// ListRange returns the entries recorded in [from, to), oldest first.
func (r *Repo) ListRange(ctx context.Context, userID int, from, to time.Time) (_ []Biometric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.biometrics.listRange")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, weight_kg, body_fat_pct, muscle_mass_kg, waist_cm, notes, recorded_at
			FROM biometric
			WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at < $3
			ORDER BY recorded_at ASC;`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Biometric
	for rows.Next() {
		var b Biometric
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.WeightKg, &b.BodyFatPct,
			&b.MuscleMassKg, &b.WaistCm, &b.Notes, &b.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		entries = append(entries, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Latest returns the most recent entry.
func (r *Repo) Latest(ctx context.Context, userID int) (_ *Biometric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.biometrics.latest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var b Biometric
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, weight_kg, body_fat_pct, muscle_mass_kg, waist_cm, notes, recorded_at
			FROM biometric
			WHERE user_id = $1
			ORDER BY recorded_at DESC
			LIMIT 1;`,
		userID,
	).Scan(
		&b.ID, &b.UserID, &b.WeightKg, &b.BodyFatPct,
		&b.MuscleMassKg, &b.WaistCm, &b.Notes, &b.RecordedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBiometricNotFound
	}
	if err != nil {
		return nil, err
	}

	return &b, nil
}
