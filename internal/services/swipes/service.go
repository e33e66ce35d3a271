package swipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elaazouzifayssal/collabia-backend/internal/domain/enums"
	"github.com/elaazouzifayssal/collabia-backend/internal/domain/rules"
	pgrepo "github.com/elaazouzifayssal/collabia-backend/internal/repo/postgres"
)

const (
	StatusPending = "pending"
	StatusSkipped = "skipped"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidDirection = errors.New("invalid swipe direction")
	ErrQuotaExceeded    = errors.New("daily swipe limit reached")
)

type SwipeStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, swiperID, swipedID, direction string, now time.Time, expiresAt *time.Time) (pgrepo.SwipeRecord, error)
	CountCreatedSince(ctx context.Context, swiperID string, since time.Time) (int, error)
}

type InterestStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, senderID, receiverID string, isSuperLike bool, now time.Time) (pgrepo.InterestRecord, error)
}

// BadgeInvalidator drops cached badge counters that a fresh interest makes
// stale. Optional; nil means no badge cache is in play.
type BadgeInvalidator interface {
	InvalidatePendingInterests(ctx context.Context, receiverID string)
}

type Config struct {
	DailyLimit   int
	DenyListDays int
	Timezone     string
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	SwipeStore    SwipeStore
	InterestStore InterestStore
}

type Service struct {
	pool          *pgxpool.Pool
	swipeStore    SwipeStore
	interestStore InterestStore
	badges        BadgeInvalidator
	cfg           Config
	now           func() time.Time
	runInTx       func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Result struct {
	Record   pgrepo.SwipeRecord
	Interest *pgrepo.InterestRecord
	Status   string
}

type QuotaSnapshot struct {
	Count   int
	Limit   int
	ResetAt time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = rules.DailySwipeLimit
	}
	if cfg.DenyListDays <= 0 {
		cfg.DenyListDays = rules.DenyListDays
	}
	if strings.TrimSpace(cfg.Timezone) == "" {
		cfg.Timezone = "UTC"
	}

	svc := &Service{
		pool:          deps.Pool,
		swipeStore:    deps.SwipeStore,
		interestStore: deps.InterestStore,
		cfg:           cfg,
		now:           time.Now,
	}
	svc.runInTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, svc.pool, fn)
	}
	return svc
}

// AttachBadgeInvalidator keeps the receiver's badge counter fresh when likes
// create interests. Safe to skip when no badge cache is in play.
func (s *Service) AttachBadgeInvalidator(badges BadgeInvalidator) {
	s.badges = badges
}

// Record stores the swiper's action toward the target. PASS actions carry a
// deny-list expiry; LIKE and SUPERLIKE also create or refresh a pending
// interest in the same transaction. The quota read happens before the write
// and is deliberately not serialized with it: a concurrent burst at the cap
// may briefly overshoot, which the product accepts.
func (s *Service) Record(ctx context.Context, swiperID, targetID, direction string) (Result, error) {
	if strings.TrimSpace(swiperID) == "" || strings.TrimSpace(targetID) == "" || swiperID == targetID {
		return Result{}, ErrValidation
	}

	dir, err := parseDirection(direction)
	if err != nil {
		return Result{}, err
	}

	if s.swipeStore == nil || s.interestStore == nil {
		return Result{}, fmt.Errorf("swipe dependencies are not configured")
	}

	now := s.now().UTC()
	dayStart := rules.StartOfDay(now, s.location())

	count, err := s.swipeStore.CountCreatedSince(ctx, swiperID, dayStart)
	if err != nil {
		return Result{}, fmt.Errorf("count today's swipes: %w", err)
	}
	if count >= s.cfg.DailyLimit {
		return Result{}, ErrQuotaExceeded
	}

	var expiresAt *time.Time
	if dir == enums.SwipeDirectionPass {
		e := now.Add(time.Duration(s.cfg.DenyListDays) * 24 * time.Hour)
		expiresAt = &e
	}

	result := Result{Status: StatusSkipped}
	if err := s.runInTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		rec, err := s.swipeStore.Upsert(txCtx, tx, swiperID, targetID, string(dir), now, expiresAt)
		if err != nil {
			return err
		}
		result.Record = rec

		if !dir.SignalsInterest() {
			return nil
		}

		interest, err := s.interestStore.Upsert(txCtx, tx, swiperID, targetID, dir == enums.SwipeDirectionSuperLike, now)
		if err != nil {
			return err
		}
		result.Interest = &interest
		result.Status = StatusPending
		return nil
	}); err != nil {
		return Result{}, err
	}

	if result.Interest != nil && s.badges != nil {
		s.badges.InvalidatePendingInterests(ctx, targetID)
	}

	return result, nil
}

// Quota reports how much of today's allowance the user has spent.
func (s *Service) Quota(ctx context.Context, userID string) (QuotaSnapshot, error) {
	if strings.TrimSpace(userID) == "" {
		return QuotaSnapshot{}, ErrValidation
	}
	if s.swipeStore == nil {
		return QuotaSnapshot{}, fmt.Errorf("swipe store is nil")
	}

	now := s.now().UTC()
	loc := s.location()

	count, err := s.swipeStore.CountCreatedSince(ctx, userID, rules.StartOfDay(now, loc))
	if err != nil {
		return QuotaSnapshot{}, fmt.Errorf("count today's swipes: %w", err)
	}

	return QuotaSnapshot{
		Count:   count,
		Limit:   s.cfg.DailyLimit,
		ResetAt: rules.NextResetAt(now, loc),
	}, nil
}

func (s *Service) location() *time.Location {
	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseDirection(input string) (enums.SwipeDirection, error) {
	value := strings.ToUpper(strings.TrimSpace(input))
	value = strings.ReplaceAll(value, "_", "")
	switch enums.SwipeDirection(value) {
	case enums.SwipeDirectionPass, enums.SwipeDirectionLike, enums.SwipeDirectionSuperLike:
		return enums.SwipeDirection(value), nil
	default:
		return "", ErrInvalidDirection
	}
}
