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

var ErrInterestNotFound = errors.New("interest not found")

type InterestRepo struct {
	pool *pgxpool.Pool
}

func NewInterestRepo(pool *pgxpool.Pool) *InterestRepo {
	return &InterestRepo{pool: pool}
}

type InterestRecord struct {
	ID           int64
	SenderID     string
	ReceiverID   string
	IsSuperLike  bool
	Status       string
	CreatedAt    time.Time
	RespondedAt  *time.Time
	SeenBySender bool
}

// InterestWithProfile pairs an interest row with the counterpart's profile
// summary for list endpoints.
type InterestWithProfile struct {
	Interest InterestRecord
	Profile  ProfileRecord
}

// Upsert creates or refreshes the sender's interest toward the receiver.
// The write is unconditional on the ordered pair key: a fresh LIKE resets a
// MUTUAL or DECLINED row back to PENDING, matching the product's historical
// behavior.
func (r *InterestRepo) Upsert(ctx context.Context, tx pgx.Tx, senderID, receiverID string, isSuperLike bool, now time.Time) (InterestRecord, error) {
	if strings.TrimSpace(senderID) == "" || strings.TrimSpace(receiverID) == "" {
		return InterestRecord{}, fmt.Errorf("invalid interest payload")
	}
	if tx == nil {
		return InterestRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec InterestRecord
	err := tx.QueryRow(ctx, `
INSERT INTO interests (
	sender_id,
	receiver_id,
	is_super_like,
	status,
	created_at,
	responded_at,
	seen_by_sender
) VALUES ($1, $2, $3, 'PENDING', $4, NULL, FALSE)
ON CONFLICT (sender_id, receiver_id) DO UPDATE SET
	is_super_like = EXCLUDED.is_super_like,
	status = 'PENDING',
	created_at = EXCLUDED.created_at,
	responded_at = NULL,
	seen_by_sender = FALSE
RETURNING id, sender_id, receiver_id, is_super_like, status, created_at, responded_at, seen_by_sender
`, senderID, receiverID, isSuperLike, now.UTC()).Scan(
		&rec.ID,
		&rec.SenderID,
		&rec.ReceiverID,
		&rec.IsSuperLike,
		&rec.Status,
		&rec.CreatedAt,
		&rec.RespondedAt,
		&rec.SeenBySender,
	)
	if err != nil {
		return InterestRecord{}, fmt.Errorf("upsert interest: %w", err)
	}

	return rec, nil
}

func (r *InterestRepo) GetByID(ctx context.Context, interestID int64) (InterestRecord, error) {
	if interestID <= 0 {
		return InterestRecord{}, fmt.Errorf("invalid interest id")
	}
	if r.pool == nil {
		return InterestRecord{}, ErrInterestNotFound
	}

	var rec InterestRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, sender_id, receiver_id, is_super_like, status, created_at, responded_at, seen_by_sender
FROM interests
WHERE id = $1
`, interestID).Scan(
		&rec.ID,
		&rec.SenderID,
		&rec.ReceiverID,
		&rec.IsSuperLike,
		&rec.Status,
		&rec.CreatedAt,
		&rec.RespondedAt,
		&rec.SeenBySender,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return InterestRecord{}, ErrInterestNotFound
		}
		return InterestRecord{}, fmt.Errorf("get interest: %w", err)
	}

	return rec, nil
}

func (r *InterestRepo) GetBySenderReceiver(ctx context.Context, senderID, receiverID string) (InterestRecord, error) {
	if strings.TrimSpace(senderID) == "" || strings.TrimSpace(receiverID) == "" {
		return InterestRecord{}, fmt.Errorf("invalid interest lookup payload")
	}
	if r.pool == nil {
		return InterestRecord{}, ErrInterestNotFound
	}

	var rec InterestRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, sender_id, receiver_id, is_super_like, status, created_at, responded_at, seen_by_sender
FROM interests
WHERE sender_id = $1 AND receiver_id = $2
`, senderID, receiverID).Scan(
		&rec.ID,
		&rec.SenderID,
		&rec.ReceiverID,
		&rec.IsSuperLike,
		&rec.Status,
		&rec.CreatedAt,
		&rec.RespondedAt,
		&rec.SeenBySender,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return InterestRecord{}, ErrInterestNotFound
		}
		return InterestRecord{}, fmt.Errorf("get interest by pair: %w", err)
	}

	return rec, nil
}

// UpdateStatusIfPending flips a PENDING interest to the given status. It is
// the compare-and-swap that serializes concurrent responses: the loser sees
// zero rows updated.
func (r *InterestRepo) UpdateStatusIfPending(ctx context.Context, tx pgx.Tx, interestID int64, status string, respondedAt time.Time) (InterestRecord, bool, error) {
	if interestID <= 0 || strings.TrimSpace(status) == "" {
		return InterestRecord{}, false, fmt.Errorf("invalid interest status payload")
	}
	if tx == nil {
		return InterestRecord{}, false, fmt.Errorf("transaction is required")
	}

	var rec InterestRecord
	err := tx.QueryRow(ctx, `
UPDATE interests
SET status = $2, responded_at = $3
WHERE id = $1 AND status = 'PENDING'
RETURNING id, sender_id, receiver_id, is_super_like, status, created_at, responded_at, seen_by_sender
`, interestID, strings.ToUpper(strings.TrimSpace(status)), respondedAt.UTC()).Scan(
		&rec.ID,
		&rec.SenderID,
		&rec.ReceiverID,
		&rec.IsSuperLike,
		&rec.Status,
		&rec.CreatedAt,
		&rec.RespondedAt,
		&rec.SeenBySender,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return InterestRecord{}, false, nil
		}
		return InterestRecord{}, false, fmt.Errorf("update interest status: %w", err)
	}

	return rec, true, nil
}

func (r *InterestRepo) MarkSeen(ctx context.Context, interestID int64) error {
	if interestID <= 0 {
		return fmt.Errorf("invalid interest id")
	}
	if r.pool == nil {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE interests
SET seen_by_sender = TRUE
WHERE id = $1 AND status = 'MUTUAL'
`, interestID); err != nil {
		return fmt.Errorf("mark interest seen: %w", err)
	}

	return nil
}

func (r *InterestRepo) MarkAllSeenBySender(ctx context.Context, senderID string) (int64, error) {
	if strings.TrimSpace(senderID) == "" {
		return 0, fmt.Errorf("invalid sender id")
	}
	if r.pool == nil {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, `
UPDATE interests
SET seen_by_sender = TRUE
WHERE sender_id = $1 AND status = 'MUTUAL' AND seen_by_sender = FALSE
`, senderID)
	if err != nil {
		return 0, fmt.Errorf("mark all interests seen: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *InterestRepo) ListPendingReceived(ctx context.Context, receiverID string, limit int) ([]InterestWithProfile, error) {
	return r.listWithProfile(ctx, `
WHERE i.receiver_id = $1 AND i.status = 'PENDING'
ORDER BY i.created_at DESC, i.id DESC
`, "i.sender_id", receiverID, limit)
}

func (r *InterestRepo) ListPendingSent(ctx context.Context, senderID string, limit int) ([]InterestWithProfile, error) {
	return r.listWithProfile(ctx, `
WHERE i.sender_id = $1 AND i.status = 'PENDING'
ORDER BY i.created_at DESC, i.id DESC
`, "i.receiver_id", senderID, limit)
}

func (r *InterestRepo) ListUnseenMutualBySender(ctx context.Context, senderID string, limit int) ([]InterestWithProfile, error) {
	return r.listWithProfile(ctx, `
WHERE i.sender_id = $1 AND i.status = 'MUTUAL' AND i.seen_by_sender = FALSE
ORDER BY i.responded_at DESC, i.id DESC
`, "i.receiver_id", senderID, limit)
}

func (r *InterestRepo) CountPendingReceived(ctx context.Context, receiverID string) (int, error) {
	return r.count(ctx, `
SELECT COUNT(*)
FROM interests
WHERE receiver_id = $1 AND status = 'PENDING'
`, receiverID)
}

func (r *InterestRepo) CountUnseenMutualBySender(ctx context.Context, senderID string) (int, error) {
	return r.count(ctx, `
SELECT COUNT(*)
FROM interests
WHERE sender_id = $1 AND status = 'MUTUAL' AND seen_by_sender = FALSE
`, senderID)
}

func (r *InterestRepo) listWithProfile(ctx context.Context, tail, counterpartColumn, userID string, limit int) ([]InterestWithProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []InterestWithProfile{}, nil
	}

	query := `
SELECT
	i.id, i.sender_id, i.receiver_id, i.is_super_like, i.status, i.created_at, i.responded_at, i.seen_by_sender,
	p.user_id, COALESCE(p.display_name, ''), p.interests, p.skills, COALESCE(p.location, ''),
	p.open_to_study_partner, p.open_to_projects, p.open_to_accountability, p.open_to_cofounder, p.open_to_helping_others,
	p.school_verified, p.last_active_at
FROM interests i
JOIN profiles p ON p.user_id = ` + counterpartColumn + tail + `
LIMIT $2
`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list interests: %w", err)
	}
	defer rows.Close()

	items := make([]InterestWithProfile, 0, limit)
	for rows.Next() {
		var item InterestWithProfile
		if err := rows.Scan(
			&item.Interest.ID,
			&item.Interest.SenderID,
			&item.Interest.ReceiverID,
			&item.Interest.IsSuperLike,
			&item.Interest.Status,
			&item.Interest.CreatedAt,
			&item.Interest.RespondedAt,
			&item.Interest.SeenBySender,
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
			return nil, fmt.Errorf("scan interest row: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate interests: %w", rows.Err())
	}

	return items, nil
}

func (r *InterestRepo) count(ctx context.Context, query, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, nil
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count interests: %w", err)
	}

	return count, nil
}
