package matches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/elaazouzifayssal/collabia-backend/internal/repo/postgres"
)

var ErrValidation = errors.New("validation error")

type MatchStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, userID, targetID string, now time.Time) (pgrepo.MatchRecord, bool, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]pgrepo.MatchWithProfile, error)
}

type ConversationStore interface {
	FindOrCreate(ctx context.Context, tx pgx.Tx, userID, targetID string, now time.Time) (pgrepo.ConversationRecord, bool, error)
	FindByParticipants(ctx context.Context, userID, targetID string) (pgrepo.ConversationRecord, error)
}

type Config struct {
	ListLimit int
}

type Dependencies struct {
	MatchStore        MatchStore
	ConversationStore ConversationStore
}

type Service struct {
	matchStore        MatchStore
	conversationStore ConversationStore
	cfg               Config
	now               func() time.Time
}

// Materialized is the durable outcome of a mutual interest: the canonical
// match row plus the pair's single conversation.
type Materialized struct {
	Match        pgrepo.MatchRecord
	Conversation pgrepo.ConversationRecord
	MatchCreated bool
}

// Entry is one row of a user's match roster.
type Entry struct {
	Match          pgrepo.MatchRecord
	Profile        pgrepo.ProfileRecord
	ConversationID string
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 100
	}

	return &Service{
		matchStore:        deps.MatchStore,
		conversationStore: deps.ConversationStore,
		cfg:               cfg,
		now:               time.Now,
	}
}

// Materialize records the match and resolves the pair's conversation inside
// the caller's transaction. Both writes are idempotent on the canonical pair,
// so replays and reverse-direction acceptances converge on the same rows.
func (s *Service) Materialize(ctx context.Context, tx pgx.Tx, userID, targetID string, now time.Time) (Materialized, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(targetID) == "" || userID == targetID {
		return Materialized{}, ErrValidation
	}
	if s.matchStore == nil || s.conversationStore == nil {
		return Materialized{}, fmt.Errorf("match dependencies are not configured")
	}
	if now.IsZero() {
		now = s.now().UTC()
	}

	match, created, err := s.matchStore.Upsert(ctx, tx, userID, targetID, now)
	if err != nil {
		return Materialized{}, fmt.Errorf("upsert match: %w", err)
	}

	conversation, _, err := s.conversationStore.FindOrCreate(ctx, tx, userID, targetID, now)
	if err != nil {
		return Materialized{}, fmt.Errorf("resolve conversation: %w", err)
	}

	return Materialized{
		Match:        match,
		Conversation: conversation,
		MatchCreated: created,
	}, nil
}

// List returns the user's matches, newest first, each with the counterpart's
// profile and the pair's conversation id.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	items, err := s.matchStore.ListForUser(ctx, userID, s.cfg.ListLimit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entry := Entry{Match: item.Match, Profile: item.Profile}

		if s.conversationStore != nil {
			conversation, err := s.conversationStore.FindByParticipants(ctx, item.Match.UserAID, item.Match.UserBID)
			if err == nil {
				entry.ConversationID = conversation.ID
			} else if !errors.Is(err, pgrepo.ErrConversationNotFound) {
				return nil, fmt.Errorf("resolve conversation for match: %w", err)
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
