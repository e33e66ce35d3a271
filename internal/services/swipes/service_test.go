package swipes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/elaazouzifayssal/collabia-backend/internal/repo/postgres"
)

type stubSwipeStore struct {
	count     int
	countErr  error
	upserted  []pgrepo.SwipeRecord
	upsertErr error
}

func (s *stubSwipeStore) Upsert(_ context.Context, _ pgx.Tx, swiperID, swipedID, direction string, now time.Time, expiresAt *time.Time) (pgrepo.SwipeRecord, error) {
	if s.upsertErr != nil {
		return pgrepo.SwipeRecord{}, s.upsertErr
	}
	rec := pgrepo.SwipeRecord{
		SwiperID:  swiperID,
		SwipedID:  swipedID,
		Direction: direction,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	s.upserted = append(s.upserted, rec)
	return rec, nil
}

func (s *stubSwipeStore) CountCreatedSince(_ context.Context, _ string, _ time.Time) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.count, nil
}

type stubInterestStore struct {
	upserted  []pgrepo.InterestRecord
	upsertErr error
}

func (s *stubInterestStore) Upsert(_ context.Context, _ pgx.Tx, senderID, receiverID string, isSuperLike bool, now time.Time) (pgrepo.InterestRecord, error) {
	if s.upsertErr != nil {
		return pgrepo.InterestRecord{}, s.upsertErr
	}
	rec := pgrepo.InterestRecord{
		ID:          int64(len(s.upserted) + 1),
		SenderID:    senderID,
		ReceiverID:  receiverID,
		IsSuperLike: isSuperLike,
		Status:      "PENDING",
		CreatedAt:   now,
	}
	s.upserted = append(s.upserted, rec)
	return rec, nil
}

// pairInterestStore models the ordered-pair upsert: one row per
// sender/receiver pair, unconditionally reset to PENDING on every write.
type pairInterestStore struct {
	records map[string]pgrepo.InterestRecord
}

func (s *pairInterestStore) Upsert(_ context.Context, _ pgx.Tx, senderID, receiverID string, isSuperLike bool, now time.Time) (pgrepo.InterestRecord, error) {
	if s.records == nil {
		s.records = map[string]pgrepo.InterestRecord{}
	}
	key := senderID + "|" + receiverID
	rec, ok := s.records[key]
	if !ok {
		rec = pgrepo.InterestRecord{
			ID:         int64(len(s.records) + 1),
			SenderID:   senderID,
			ReceiverID: receiverID,
		}
	}
	rec.IsSuperLike = isSuperLike
	rec.Status = "PENDING"
	rec.CreatedAt = now
	rec.RespondedAt = nil
	rec.SeenBySender = false
	s.records[key] = rec
	return rec, nil
}

type stubBadgeInvalidator struct {
	receivers []string
}

func (s *stubBadgeInvalidator) InvalidatePendingInterests(_ context.Context, receiverID string) {
	s.receivers = append(s.receivers, receiverID)
}

func newTestService(t *testing.T, swipeStore *stubSwipeStore, interestStore InterestStore, cfg Config) *Service {
	t.Helper()

	svc := NewService(Dependencies{
		SwipeStore:    swipeStore,
		InterestStore: interestStore,
	}, cfg)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	}
	svc.runInTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	return svc
}

func TestRecordValidation(t *testing.T) {
	svc := newTestService(t, &stubSwipeStore{}, &stubInterestStore{}, Config{})

	if _, err := svc.Record(context.Background(), "", "user-b", "LIKE"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty swiper, got %v", err)
	}
	if _, err := svc.Record(context.Background(), "user-a", "user-a", "LIKE"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for self swipe, got %v", err)
	}
	if _, err := svc.Record(context.Background(), "user-a", "user-b", "NOPE"); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
}

func TestRecordQuotaExceeded(t *testing.T) {
	swipeStore := &stubSwipeStore{count: 30}
	svc := newTestService(t, swipeStore, &stubInterestStore{}, Config{DailyLimit: 30})

	_, err := svc.Record(context.Background(), "user-a", "user-b", "LIKE")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if len(swipeStore.upserted) != 0 {
		t.Fatalf("expected no write when quota is exhausted, got %d", len(swipeStore.upserted))
	}
}

func TestRecordPassSetsDenyListExpiry(t *testing.T) {
	swipeStore := &stubSwipeStore{}
	interestStore := &stubInterestStore{}
	svc := newTestService(t, swipeStore, interestStore, Config{DenyListDays: 30})

	result, err := svc.Record(context.Background(), "user-a", "user-b", "pass")
	if err != nil {
		t.Fatalf("record pass: %v", err)
	}
	if result.Status != StatusSkipped {
		t.Fatalf("expected status %q, got %q", StatusSkipped, result.Status)
	}
	if result.Interest != nil {
		t.Fatalf("pass must not create an interest")
	}
	if result.Record.ExpiresAt == nil {
		t.Fatalf("pass must carry a deny-list expiry")
	}

	wantExpiry := time.Date(2025, 4, 9, 15, 30, 0, 0, time.UTC)
	if !result.Record.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected expiry %v, got %v", wantExpiry, *result.Record.ExpiresAt)
	}
	if len(interestStore.upserted) != 0 {
		t.Fatalf("expected no interest rows, got %d", len(interestStore.upserted))
	}
}

func TestRecordLikeCreatesPendingInterest(t *testing.T) {
	swipeStore := &stubSwipeStore{count: 29}
	interestStore := &stubInterestStore{}
	svc := newTestService(t, swipeStore, interestStore, Config{DailyLimit: 30})

	result, err := svc.Record(context.Background(), "user-a", "user-b", "LIKE")
	if err != nil {
		t.Fatalf("record like: %v", err)
	}
	if result.Status != StatusPending {
		t.Fatalf("expected status %q, got %q", StatusPending, result.Status)
	}
	if result.Record.ExpiresAt != nil {
		t.Fatalf("like must not carry an expiry")
	}
	if result.Interest == nil {
		t.Fatalf("like must create an interest")
	}
	if result.Interest.IsSuperLike {
		t.Fatalf("like must not be flagged as super like")
	}
	if result.Interest.SenderID != "user-a" || result.Interest.ReceiverID != "user-b" {
		t.Fatalf("unexpected interest pair: %s -> %s", result.Interest.SenderID, result.Interest.ReceiverID)
	}
}

func TestRecordSuperLikeFlagsInterest(t *testing.T) {
	interestStore := &stubInterestStore{}
	svc := newTestService(t, &stubSwipeStore{}, interestStore, Config{})

	result, err := svc.Record(context.Background(), "user-a", "user-b", "super_like")
	if err != nil {
		t.Fatalf("record super like: %v", err)
	}
	if result.Interest == nil || !result.Interest.IsSuperLike {
		t.Fatalf("super like must create a flagged interest, got %+v", result.Interest)
	}
}

func TestRecordRepeatLikeKeepsSingleInterest(t *testing.T) {
	interestStore := &pairInterestStore{}
	svc := newTestService(t, &stubSwipeStore{}, interestStore, Config{})

	first, err := svc.Record(context.Background(), "user-a", "user-b", "LIKE")
	if err != nil {
		t.Fatalf("first like: %v", err)
	}
	second, err := svc.Record(context.Background(), "user-a", "user-b", "LIKE")
	if err != nil {
		t.Fatalf("second like: %v", err)
	}

	if len(interestStore.records) != 1 {
		t.Fatalf("repeat like must keep a single interest row, got %d", len(interestStore.records))
	}
	if second.Interest == nil || second.Interest.ID != first.Interest.ID {
		t.Fatalf("repeat like must refresh the same row: first %+v second %+v", first.Interest, second.Interest)
	}
	if second.Interest.Status != "PENDING" {
		t.Fatalf("expected PENDING, got %q", second.Interest.Status)
	}
}

func TestRecordLikeResetsDeclinedInterest(t *testing.T) {
	respondedAt := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)
	interestStore := &pairInterestStore{records: map[string]pgrepo.InterestRecord{
		"user-a|user-b": {
			ID:           1,
			SenderID:     "user-a",
			ReceiverID:   "user-b",
			Status:       "DECLINED",
			CreatedAt:    respondedAt.Add(-time.Hour),
			RespondedAt:  &respondedAt,
			SeenBySender: true,
		},
	}}
	svc := newTestService(t, &stubSwipeStore{}, interestStore, Config{})

	result, err := svc.Record(context.Background(), "user-a", "user-b", "LIKE")
	if err != nil {
		t.Fatalf("record like: %v", err)
	}

	// A fresh like silently re-opens a declined pair instead of creating a
	// second row.
	if len(interestStore.records) != 1 {
		t.Fatalf("expected a single interest row, got %d", len(interestStore.records))
	}
	if result.Interest == nil || result.Interest.ID != 1 {
		t.Fatalf("expected the declined row to be reused, got %+v", result.Interest)
	}
	if result.Interest.Status != "PENDING" {
		t.Fatalf("expected PENDING, got %q", result.Interest.Status)
	}
	if result.Interest.RespondedAt != nil || result.Interest.SeenBySender {
		t.Fatalf("reset must clear response bookkeeping, got %+v", result.Interest)
	}
	wantCreated := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	if !result.Interest.CreatedAt.Equal(wantCreated) {
		t.Fatalf("expected created_at %v, got %v", wantCreated, result.Interest.CreatedAt)
	}
}

func TestRecordLikeInvalidatesReceiverBadge(t *testing.T) {
	badges := &stubBadgeInvalidator{}

	svc := newTestService(t, &stubSwipeStore{}, &stubInterestStore{}, Config{})
	svc.AttachBadgeInvalidator(badges)

	if _, err := svc.Record(context.Background(), "user-a", "user-b", "pass"); err != nil {
		t.Fatalf("record pass: %v", err)
	}
	if len(badges.receivers) != 0 {
		t.Fatalf("pass must not touch the badge cache, got %v", badges.receivers)
	}

	if _, err := svc.Record(context.Background(), "user-a", "user-b", "LIKE"); err != nil {
		t.Fatalf("record like: %v", err)
	}
	if len(badges.receivers) != 1 || badges.receivers[0] != "user-b" {
		t.Fatalf("like must invalidate the receiver's badge, got %v", badges.receivers)
	}
}

func TestQuotaSnapshot(t *testing.T) {
	swipeStore := &stubSwipeStore{count: 12}
	svc := newTestService(t, swipeStore, &stubInterestStore{}, Config{DailyLimit: 30})

	snapshot, err := svc.Quota(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("quota: %v", err)
	}
	if snapshot.Count != 12 || snapshot.Limit != 30 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}

	wantReset := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if !snapshot.ResetAt.Equal(wantReset) {
		t.Fatalf("expected reset at %v, got %v", wantReset, snapshot.ResetAt)
	}
}

func TestQuotaHonorsTimezone(t *testing.T) {
	swipeStore := &stubSwipeStore{count: 1}
	svc := newTestService(t, swipeStore, &stubInterestStore{}, Config{Timezone: "America/New_York"})

	snapshot, err := svc.Quota(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("quota: %v", err)
	}

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	wantReset := time.Date(2025, 3, 11, 0, 0, 0, 0, loc).UTC()
	if !snapshot.ResetAt.Equal(wantReset) {
		t.Fatalf("expected reset at %v, got %v", wantReset, snapshot.ResetAt)
	}
}
