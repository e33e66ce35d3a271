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

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchRecord struct {
	UserAID   string
	UserBID   string
	CreatedAt time.Time
}

type MatchWithProfile struct {
	Match   MatchRecord
	Profile ProfileRecord
}

// CanonicalPair orders two user ids lexicographically so the symmetric match
// key is independent of who initiated.
func CanonicalPair(userID, targetID string) (string, string) {
	if userID > targetID {
		return targetID, userID
	}
	return userID, targetID
}

// Upsert records the match on the canonical pair key. A re-acceptance or a
// reverse-direction acceptance is a no-op that still returns the stored row.
func (r *MatchRepo) Upsert(ctx context.Context, tx pgx.Tx, userID, targetID string, now time.Time) (MatchRecord, bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(targetID) == "" || userID == targetID {
		return MatchRecord{}, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return MatchRecord{}, false, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	userA, userB := CanonicalPair(userID, targetID)

	var rec MatchRecord
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	created_at
) VALUES ($1, $2, $3)
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING user_a_id, user_b_id, created_at
`, userA, userB, now.UTC()).Scan(&rec.UserAID, &rec.UserBID, &rec.CreatedAt)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return MatchRecord{}, false, fmt.Errorf("create match: %w", err)
	}

	// Conflict path: the pair matched before. Read the existing row.
	err = tx.QueryRow(ctx, `
SELECT user_a_id, user_b_id, created_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB).Scan(&rec.UserAID, &rec.UserBID, &rec.CreatedAt)
	if err != nil {
		return MatchRecord{}, false, fmt.Errorf("get existing match: %w", err)
	}

	return rec, false, nil
}

func (r *MatchRepo) Exists(ctx context.Context, userID, targetID string) (bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(targetID) == "" {
		return false, fmt.Errorf("invalid match lookup payload")
	}
	if r.pool == nil {
		return false, nil
	}

	userA, userB := CanonicalPair(userID, targetID)

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
LIMIT 1
`, userA, userB).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup match: %w", err)
	}

	return true, nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID string, limit int) ([]MatchWithProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchWithProfile{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.user_a_id,
	m.user_b_id,
	m.created_at,
	p.user_id, COALESCE(p.display_name, ''), p.interests, p.skills, COALESCE(p.location, ''),
	p.open_to_study_partner, p.open_to_projects, p.open_to_accountability, p.open_to_cofounder, p.open_to_helping_others,
	p.school_verified, p.last_active_at
FROM matches m
JOIN profiles p ON p.user_id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE m.user_a_id = $1 OR m.user_b_id = $1
ORDER BY m.created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchWithProfile, 0, limit)
	for rows.Next() {
		var item MatchWithProfile
		if err := rows.Scan(
			&item.Match.UserAID,
			&item.Match.UserBID,
			&item.Match.CreatedAt,
			&item.Profile.UserID,
			&item.Profile.DisplayName,
			&item.Profile.Interests,
			&item.Profile.Skills,
			&item.Profile.Location,
			&item.Profile.OpenToStudyPartner,
			&item.Profile.OpenToProjects,
			&item.Profile.OpenToAccountability,
			&item.Profile.OpenToCofounder,
			&item.Profile.OpenToHelpingOthers,
			&item.Profile.SchoolVerified,
			&item.Profile.LastActiveAt,
		); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}
