package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSwipeNotFound = errors.New("swipe not found")

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	SwiperID  string
	SwipedID  string
	Direction string
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Upsert stores the swiper's latest action toward the target. A repeat swipe
// overwrites direction, created_at and expires_at; the pair key stays unique.
func (r *SwipeRepo) Upsert(ctx context.Context, tx pgx.Tx, swiperID, swipedID, direction string, now time.Time, expiresAt *time.Time) (SwipeRecord, error) {
	if strings.TrimSpace(swiperID) == "" || strings.TrimSpace(swipedID) == "" || strings.TrimSpace(direction) == "" {
		return SwipeRecord{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	swiper_id,
	swiped_id,
	direction,
	created_at,
	expires_at
) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (swiper_id, swiped_id) DO UPDATE SET
	direction = EXCLUDED.direction,
	created_at = EXCLUDED.created_at,
	expires_at = EXCLUDED.expires_at
RETURNING swiper_id, swiped_id, direction, created_at, expires_at
`, swiperID, swipedID, strings.ToUpper(strings.TrimSpace(direction)), now.UTC(), expiresAt).Scan(
		&rec.SwiperID,
		&rec.SwipedID,
		&rec.Direction,
		&rec.CreatedAt,
		&rec.ExpiresAt,
	)
	if err != nil {
		return SwipeRecord{}, fmt.Errorf("upsert swipe: %w", err)
	}

	return rec, nil
}

func (r *SwipeRepo) Get(ctx context.Context, swiperID, swipedID string) (SwipeRecord, error) {
	if strings.TrimSpace(swiperID) == "" || strings.TrimSpace(swipedID) == "" {
		return SwipeRecord{}, fmt.Errorf("invalid swipe lookup payload")
	}
	if r.pool == nil {
		return SwipeRecord{}, ErrSwipeNotFound
	}

	var rec SwipeRecord
	err := r.pool.QueryRow(ctx, `
SELECT swiper_id, swiped_id, direction, created_at, expires_at
FROM swipes
WHERE swiper_id = $1 AND swiped_id = $2
`, swiperID, swipedID).Scan(
		&rec.SwiperID,
		&rec.SwipedID,
		&rec.Direction,
		&rec.CreatedAt,
		&rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwipeRecord{}, ErrSwipeNotFound
		}
		return SwipeRecord{}, fmt.Errorf("get swipe: %w", err)
	}

	return rec, nil
}

// CountCreatedSince returns how many swipe rows by the swiper carry a
// created_at at or after the boundary. Re-swiping a pair refreshes its
// created_at, so an overwritten pair counts toward the current day once.
func (r *SwipeRepo) CountCreatedSince(ctx context.Context, swiperID string, since time.Time) (int, error) {
	if strings.TrimSpace(swiperID) == "" {
		return 0, fmt.Errorf("invalid swiper id")
	}
	if r.pool == nil {
		return 0, nil
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM swipes
WHERE swiper_id = $1 AND created_at >= $2
`, swiperID, since.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count swipes since: %w", err)
	}

	return count, nil
}

// ListActiveExclusions returns the ids the swiper must not see again:
// every LIKE/SUPERLIKE target forever, plus PASS targets whose deny-list
// window has not lapsed.
func (r *SwipeRepo) ListActiveExclusions(ctx context.Context, swiperID string, now time.Time) ([]string, error) {
	if strings.TrimSpace(swiperID) == "" {
		return nil, fmt.Errorf("invalid swiper id")
	}
	if r.pool == nil {
		return []string{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT swiped_id
FROM swipes
WHERE
	swiper_id = $1
	AND (
		direction IN ('LIKE', 'SUPERLIKE')
		OR (direction = 'PASS' AND expires_at IS NOT NULL AND expires_at > $2)
	)
`, swiperID, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("list swipe exclusions: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, 64)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan swipe exclusion: %w", err)
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate swipe exclusions: %w", rows.Err())
	}

	return ids, nil
}
