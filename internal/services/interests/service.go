package interests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/elaazouzifayssal/collabia-backend/internal/domain/enums"
	pgrepo "github.com/elaazouzifayssal/collabia-backend/internal/repo/postgres"
	matchsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/matches"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidAction    = errors.New("invalid respond action")
	ErrNotFound         = errors.New("interest not found")
	ErrForbidden        = errors.New("interest belongs to another user")
	ErrAlreadyResponded = errors.New("interest already responded to")
)

type InterestStore interface {
	GetByID(ctx context.Context, interestID int64) (pgrepo.InterestRecord, error)
	GetBySenderReceiver(ctx context.Context, senderID, receiverID string) (pgrepo.InterestRecord, error)
	UpdateStatusIfPending(ctx context.Context, tx pgx.Tx, interestID int64, status string, respondedAt time.Time) (pgrepo.InterestRecord, bool, error)
	MarkSeen(ctx context.Context, interestID int64) error
	MarkAllSeenBySender(ctx context.Context, senderID string) (int64, error)
	ListPendingReceived(ctx context.Context, receiverID string, limit int) ([]pgrepo.InterestWithProfile, error)
	ListPendingSent(ctx context.Context, senderID string, limit int) ([]pgrepo.InterestWithProfile, error)
	ListUnseenMutualBySender(ctx context.Context, senderID string, limit int) ([]pgrepo.InterestWithProfile, error)
	CountPendingReceived(ctx context.Context, receiverID string) (int, error)
	CountUnseenMutualBySender(ctx context.Context, senderID string) (int, error)
}

// Materializer turns an accepted interest into the durable match artifacts
// inside the respond transaction.
type Materializer interface {
	Materialize(ctx context.Context, tx pgx.Tx, userID, targetID string, now time.Time) (matchsvc.Materialized, error)
}

// ProfileStore resolves the counterpart's profile for the match screen.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (pgrepo.ProfileRecord, error)
}

// BadgeCache is an optional counter cache. The service works without one;
// cache failures degrade to postgres reads.
type BadgeCache interface {
	GetCount(ctx context.Context, key string) (int, bool, error)
	SetCount(ctx context.Context, key string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

type Config struct {
	ListLimit     int
	BadgeCacheTTL time.Duration
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	InterestStore InterestStore
	Materializer  Materializer
	ProfileStore  ProfileStore
	Logger        *zap.Logger
}

type Service struct {
	pool         *pgxpool.Pool
	store        InterestStore
	materializer Materializer
	profileStore ProfileStore
	badges       BadgeCache
	log          *zap.Logger
	cfg          Config
	now          func() time.Time
	runInTx      func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

// Response is the outcome of answering an interest. Match and Conversation
// are set only when the answer was an acceptance. OtherProfile is best
// effort: the lookup runs after the commit, and a failure leaves it nil
// without failing the response.
type Response struct {
	Interest     pgrepo.InterestRecord
	Match        *pgrepo.MatchRecord
	Conversation *pgrepo.ConversationRecord
	OtherProfile *pgrepo.ProfileRecord
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 100
	}
	if cfg.BadgeCacheTTL <= 0 {
		cfg.BadgeCacheTTL = 30 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	svc := &Service{
		pool:         deps.Pool,
		store:        deps.InterestStore,
		materializer: deps.Materializer,
		profileStore: deps.ProfileStore,
		log:          deps.Logger,
		cfg:          cfg,
		now:          time.Now,
	}
	svc.runInTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, svc.pool, fn)
	}
	return svc
}

// AttachBadgeCache enables the redis-backed badge counters. Safe to skip when
// redis is unavailable.
func (s *Service) AttachBadgeCache(cache BadgeCache) {
	s.badges = cache
}

// InvalidatePendingInterests drops the receiver's cached pending badge. The
// swipe path creates interests outside this service and calls this so the
// badge never serves a stale count after a fresh like.
func (s *Service) InvalidatePendingInterests(ctx context.Context, receiverID string) {
	s.invalidateBadges(ctx, pendingBadgeKey(receiverID))
}

// Respond answers a pending interest on behalf of its receiver. Acceptance
// flips the row to MUTUAL and materializes the match and conversation in the
// same transaction; a decline flips it to DECLINED and writes nothing else.
// The status flip is a compare-and-swap, so of two concurrent responders
// exactly one wins and the other gets ErrAlreadyResponded.
func (s *Service) Respond(ctx context.Context, responderID string, interestID int64, action string) (Response, error) {
	if strings.TrimSpace(responderID) == "" {
		return Response{}, ErrValidation
	}
	if interestID <= 0 {
		return Response{}, ErrNotFound
	}

	act, err := parseAction(action)
	if err != nil {
		return Response{}, err
	}

	if s.store == nil {
		return Response{}, fmt.Errorf("interest store is nil")
	}

	rec, err := s.store.GetByID(ctx, interestID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrInterestNotFound) {
			return Response{}, ErrNotFound
		}
		return Response{}, fmt.Errorf("get interest: %w", err)
	}
	if rec.ReceiverID != responderID {
		return Response{}, ErrForbidden
	}
	if rec.Status != string(enums.InterestStatusPending) {
		return Response{}, ErrAlreadyResponded
	}

	now := s.now().UTC()
	status := enums.InterestStatusDeclined
	if act == enums.RespondActionAccept {
		status = enums.InterestStatusMutual
	}

	var resp Response
	if err := s.runInTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		updated, won, err := s.store.UpdateStatusIfPending(txCtx, tx, interestID, string(status), now)
		if err != nil {
			return err
		}
		if !won {
			return ErrAlreadyResponded
		}
		resp.Interest = updated

		if act != enums.RespondActionAccept {
			return nil
		}
		if s.materializer == nil {
			return fmt.Errorf("match materializer is not configured")
		}

		materialized, err := s.materializer.Materialize(txCtx, tx, updated.ReceiverID, updated.SenderID, now)
		if err != nil {
			return err
		}
		resp.Match = &materialized.Match
		resp.Conversation = &materialized.Conversation
		return nil
	}); err != nil {
		return Response{}, err
	}

	if resp.Match != nil && s.profileStore != nil {
		profile, err := s.profileStore.Get(ctx, rec.SenderID)
		if err != nil {
			s.log.Warn("counterpart profile lookup failed", zap.String("user_id", rec.SenderID), zap.Error(err))
		} else {
			resp.OtherProfile = &profile
		}
	}

	s.invalidateBadges(ctx, pendingBadgeKey(rec.ReceiverID), unseenBadgeKey(rec.SenderID))

	return resp, nil
}

// StatusBetween reports the interest the sender holds toward the receiver.
func (s *Service) StatusBetween(ctx context.Context, senderID, receiverID string) (pgrepo.InterestRecord, error) {
	if strings.TrimSpace(senderID) == "" || strings.TrimSpace(receiverID) == "" {
		return pgrepo.InterestRecord{}, ErrValidation
	}
	if s.store == nil {
		return pgrepo.InterestRecord{}, fmt.Errorf("interest store is nil")
	}

	rec, err := s.store.GetBySenderReceiver(ctx, senderID, receiverID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrInterestNotFound) {
			return pgrepo.InterestRecord{}, ErrNotFound
		}
		return pgrepo.InterestRecord{}, fmt.Errorf("get interest status: %w", err)
	}

	return rec, nil
}

func (s *Service) ListReceived(ctx context.Context, userID string) ([]pgrepo.InterestWithProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	return s.store.ListPendingReceived(ctx, userID, s.cfg.ListLimit)
}

func (s *Service) ListSent(ctx context.Context, userID string) ([]pgrepo.InterestWithProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	return s.store.ListPendingSent(ctx, userID, s.cfg.ListLimit)
}

func (s *Service) ListUnseenMutual(ctx context.Context, userID string) ([]pgrepo.InterestWithProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	return s.store.ListUnseenMutualBySender(ctx, userID, s.cfg.ListLimit)
}

// PendingReceivedCount is the receiver's badge number. Served from the cache
// when fresh.
func (s *Service) PendingReceivedCount(ctx context.Context, userID string) (int, error) {
	return s.cachedCount(ctx, pendingBadgeKey(userID), userID, s.store.CountPendingReceived)
}

// UnseenMutualCount is the sender's "new matches" badge number.
func (s *Service) UnseenMutualCount(ctx context.Context, userID string) (int, error) {
	return s.cachedCount(ctx, unseenBadgeKey(userID), userID, s.store.CountUnseenMutualBySender)
}

// MarkSeen acknowledges one mutual interest for its sender.
func (s *Service) MarkSeen(ctx context.Context, userID string, interestID int64) error {
	if strings.TrimSpace(userID) == "" {
		return ErrValidation
	}
	if interestID <= 0 {
		return ErrNotFound
	}

	rec, err := s.store.GetByID(ctx, interestID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrInterestNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get interest: %w", err)
	}
	if rec.SenderID != userID {
		return ErrForbidden
	}

	if err := s.store.MarkSeen(ctx, interestID); err != nil {
		return fmt.Errorf("mark interest seen: %w", err)
	}

	s.invalidateBadges(ctx, unseenBadgeKey(userID))
	return nil
}

// MarkAllSeen acknowledges every unseen mutual interest the user sent.
func (s *Service) MarkAllSeen(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrValidation
	}

	updated, err := s.store.MarkAllSeenBySender(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all interests seen: %w", err)
	}

	s.invalidateBadges(ctx, unseenBadgeKey(userID))
	return updated, nil
}

func (s *Service) cachedCount(ctx context.Context, key, userID string, load func(context.Context, string) (int, error)) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrValidation
	}
	if s.store == nil {
		return 0, fmt.Errorf("interest store is nil")
	}

	if s.badges != nil {
		count, hit, err := s.badges.GetCount(ctx, key)
		if err != nil {
			s.log.Warn("badge cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return count, nil
		}
	}

	count, err := load(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.badges != nil {
		if err := s.badges.SetCount(ctx, key, count, s.cfg.BadgeCacheTTL); err != nil {
			s.log.Warn("badge cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return count, nil
}

func (s *Service) invalidateBadges(ctx context.Context, keys ...string) {
	if s.badges == nil {
		return
	}
	if err := s.badges.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("badge cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func pendingBadgeKey(userID string) string {
	return "badge:interests:pending:" + userID
}

func unseenBadgeKey(userID string) string {
	return "badge:matches:unseen:" + userID
}

func parseAction(input string) (enums.RespondAction, error) {
	switch enums.RespondAction(strings.ToLower(strings.TrimSpace(input))) {
	case enums.RespondActionAccept:
		return enums.RespondActionAccept, nil
	case enums.RespondActionDecline:
		return enums.RespondActionDecline, nil
	default:
		return "", ErrInvalidAction
	}
}
