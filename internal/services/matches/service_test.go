package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/elaazouzifayssal/collabia-backend/internal/repo/postgres"
)

type stubMatchStore struct {
	existing map[string]pgrepo.MatchRecord
	listed   []pgrepo.MatchWithProfile
}

func pairKey(a, b string) string {
	userA, userB := pgrepo.CanonicalPair(a, b)
	return userA + "|" + userB
}

func (s *stubMatchStore) Upsert(_ context.Context, _ pgx.Tx, userID, targetID string, now time.Time) (pgrepo.MatchRecord, bool, error) {
	if s.existing == nil {
		s.existing = map[string]pgrepo.MatchRecord{}
	}
	key := pairKey(userID, targetID)
	if rec, ok := s.existing[key]; ok {
		return rec, false, nil
	}

	userA, userB := pgrepo.CanonicalPair(userID, targetID)
	rec := pgrepo.MatchRecord{UserAID: userA, UserBID: userB, CreatedAt: now}
	s.existing[key] = rec
	return rec, true, nil
}

func (s *stubMatchStore) ListForUser(_ context.Context, _ string, _ int) ([]pgrepo.MatchWithProfile, error) {
	return s.listed, nil
}

type stubConversationStore struct {
	existing map[string]pgrepo.ConversationRecord
	nextID   string
}

func (s *stubConversationStore) FindOrCreate(_ context.Context, _ pgx.Tx, userID, targetID string, now time.Time) (pgrepo.ConversationRecord, bool, error) {
	if s.existing == nil {
		s.existing = map[string]pgrepo.ConversationRecord{}
	}
	key := pairKey(userID, targetID)
	if rec, ok := s.existing[key]; ok {
		return rec, false, nil
	}

	userA, userB := pgrepo.CanonicalPair(userID, targetID)
	rec := pgrepo.ConversationRecord{ID: s.nextID, UserAID: userA, UserBID: userB, CreatedAt: now}
	s.existing[key] = rec
	return rec, true, nil
}

func (s *stubConversationStore) FindByParticipants(_ context.Context, userID, targetID string) (pgrepo.ConversationRecord, error) {
	if rec, ok := s.existing[pairKey(userID, targetID)]; ok {
		return rec, nil
	}
	return pgrepo.ConversationRecord{}, pgrepo.ErrConversationNotFound
}

var matchNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestMaterializeCanonicalPair(t *testing.T) {
	matchStore := &stubMatchStore{}
	conversationStore := &stubConversationStore{nextID: "conv-1"}
	svc := NewService(Dependencies{MatchStore: matchStore, ConversationStore: conversationStore}, Config{})

	result, err := svc.Materialize(context.Background(), nil, "zoe", "adam", matchNow)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if !result.MatchCreated {
		t.Fatalf("first acceptance must create the match")
	}
	if result.Match.UserAID != "adam" || result.Match.UserBID != "zoe" {
		t.Fatalf("match pair not canonical: %+v", result.Match)
	}
	if result.Conversation.ID != "conv-1" {
		t.Fatalf("expected conversation conv-1, got %q", result.Conversation.ID)
	}
}

func TestMaterializeIdempotent(t *testing.T) {
	matchStore := &stubMatchStore{}
	conversationStore := &stubConversationStore{nextID: "conv-1"}
	svc := NewService(Dependencies{MatchStore: matchStore, ConversationStore: conversationStore}, Config{})

	first, err := svc.Materialize(context.Background(), nil, "adam", "zoe", matchNow)
	if err != nil {
		t.Fatalf("first materialize: %v", err)
	}

	conversationStore.nextID = "conv-2"
	second, err := svc.Materialize(context.Background(), nil, "zoe", "adam", matchNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("second materialize: %v", err)
	}

	if second.MatchCreated {
		t.Fatalf("replay must not create a second match")
	}
	if second.Match != first.Match {
		t.Fatalf("replay returned a different match: %+v vs %+v", second.Match, first.Match)
	}
	if second.Conversation.ID != "conv-1" {
		t.Fatalf("pair must keep exactly one conversation, got %q", second.Conversation.ID)
	}
}

func TestMaterializeValidation(t *testing.T) {
	svc := NewService(Dependencies{MatchStore: &stubMatchStore{}, ConversationStore: &stubConversationStore{}}, Config{})

	if _, err := svc.Materialize(context.Background(), nil, "adam", "adam", matchNow); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for self match, got %v", err)
	}
	if _, err := svc.Materialize(context.Background(), nil, "", "zoe", matchNow); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty user, got %v", err)
	}
}

func TestListAttachesConversations(t *testing.T) {
	matchStore := &stubMatchStore{
		listed: []pgrepo.MatchWithProfile{
			{
				Match:   pgrepo.MatchRecord{UserAID: "adam", UserBID: "zoe", CreatedAt: matchNow},
				Profile: pgrepo.ProfileRecord{UserID: "zoe", DisplayName: "Zoe"},
			},
			{
				Match:   pgrepo.MatchRecord{UserAID: "adam", UserBID: "noah", CreatedAt: matchNow.Add(-time.Hour)},
				Profile: pgrepo.ProfileRecord{UserID: "noah", DisplayName: "Noah"},
			},
		},
	}
	conversationStore := &stubConversationStore{
		existing: map[string]pgrepo.ConversationRecord{
			pairKey("adam", "zoe"): {ID: "conv-zoe", UserAID: "adam", UserBID: "zoe"},
		},
	}
	svc := NewService(Dependencies{MatchStore: matchStore, ConversationStore: conversationStore}, Config{})

	entries, err := svc.List(context.Background(), "adam")
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ConversationID != "conv-zoe" {
		t.Fatalf("expected conversation id conv-zoe, got %q", entries[0].ConversationID)
	}
	if entries[1].ConversationID != "" {
		t.Fatalf("missing conversation must yield an empty id, got %q", entries[1].ConversationID)
	}
	if entries[0].Profile.DisplayName != "Zoe" {
		t.Fatalf("unexpected profile on entry: %+v", entries[0].Profile)
	}
}
