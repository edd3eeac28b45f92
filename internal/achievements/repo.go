package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo persists earned badges. The badge table carries a unique index on
// (user_id, badge_type), which makes AwardIfAbsent safe for concurrent
// callers checking the same user.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Exists(ctx context.Context, userID int, badgeType BadgeType) (exists bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.achievements.exists")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM badge WHERE user_id = $1 AND badge_type = $2);`,
		userID, badgeType,
	).Scan(&exists)
	return exists, err
}

// AwardIfAbsent inserts the badge unless the user already has one of that
// kind. Reports whether a new row was actually inserted.
func (r *Repo) AwardIfAbsent(ctx context.Context, userID int, badgeType BadgeType, awardedAt time.Time) (awarded bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.achievements.awardIfAbsent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`INSERT INTO badge (user_id, badge_type, awarded_at)
			VALUES ($1, $2, $3)
		ON CONFLICT (user_id, badge_type) DO NOTHING;`,
		userID, badgeType, awardedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List returns the earned badges, newest first.
func (r *Repo) List(ctx context.Context, userID int) (_ []Badge, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.achievements.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, badge_type, awarded_at
			FROM badge
			WHERE user_id = $1
			ORDER BY awarded_at DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []Badge
	for rows.Next() {
		var b Badge
		if err := rows.Scan(&b.ID, &b.UserID, &b.Type, &b.AwardedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		b.Description = b.Type.Description()
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return badges, nil
}

func (r *Repo) Count(ctx context.Context, userID int) (count int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.achievements.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM badge WHERE user_id = $1;`,
		userID,
	).Scan(&count)
	return count, err
}
