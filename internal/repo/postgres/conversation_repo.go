package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

type ConversationRecord struct {
	ID        string
	UserAID   string
	UserBID   string
	CreatedAt time.Time
}

func (r *ConversationRepo) FindByParticipants(ctx context.Context, userID, targetID string) (ConversationRecord, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(targetID) == "" {
		return ConversationRecord{}, fmt.Errorf("invalid conversation lookup payload")
	}
	if r.pool == nil {
		return ConversationRecord{}, ErrConversationNotFound
	}

	userA, userB := CanonicalPair(userID, targetID)

	var rec ConversationRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM conversations
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB).Scan(&rec.ID, &rec.UserAID, &rec.UserBID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ConversationRecord{}, ErrConversationNotFound
		}
		return ConversationRecord{}, fmt.Errorf("find conversation: %w", err)
	}

	return rec, nil
}

// FindOrCreate resolves the pair's conversation inside the caller's
// transaction. The unique constraint on the canonical pair makes concurrent
// accepts converge on a single row: the insert loser falls through to the
// select.
func (r *ConversationRepo) FindOrCreate(ctx context.Context, tx pgx.Tx, userID, targetID string, now time.Time) (ConversationRecord, bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(targetID) == "" || userID == targetID {
		return ConversationRecord{}, false, fmt.Errorf("invalid conversation payload")
	}
	if tx == nil {
		return ConversationRecord{}, false, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	userA, userB := CanonicalPair(userID, targetID)

	var rec ConversationRecord
	err := tx.QueryRow(ctx, `
INSERT INTO conversations (
	id,
	user_a_id,
	user_b_id,
	created_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id, user_a_id, user_b_id, created_at
`, uuid.NewString(), userA, userB, now.UTC()).Scan(&rec.ID, &rec.UserAID, &rec.UserBID, &rec.CreatedAt)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return ConversationRecord{}, false, fmt.Errorf("create conversation: %w", err)
	}

	err = tx.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, created_at
FROM conversations
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB).Scan(&rec.ID, &rec.UserAID, &rec.UserBID, &rec.CreatedAt)
	if err != nil {
		return ConversationRecord{}, false, fmt.Errorf("get existing conversation: %w", err)
	}

	return rec, false, nil
}
