package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/elaazouzifayssal/collabia-backend/internal/repo/postgres"
	authsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/auth"
	swipesvc "github.com/elaazouzifayssal/collabia-backend/internal/services/swipes"
)

type swipeStoreStub struct {
	count int
}

func (s swipeStoreStub) Upsert(context.Context, pgx.Tx, string, string, string, time.Time, *time.Time) (pgrepo.SwipeRecord, error) {
	return pgrepo.SwipeRecord{}, nil
}

func (s swipeStoreStub) CountCreatedSince(context.Context, string, time.Time) (int, error) {
	return s.count, nil
}

type interestStoreStub struct{}

func (interestStoreStub) Upsert(context.Context, pgx.Tx, string, string, bool, time.Time) (pgrepo.InterestRecord, error) {
	return pgrepo.InterestRecord{}, nil
}

func authedRequest(method, target string, body []byte, userID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{UserID: userID}))
}

func TestSwipeRequiresAuth(t *testing.T) {
	h := NewSwipeHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/swipes", bytes.NewReader([]byte(`{}`)))
	rr := httptest.NewRecorder()
	h.Handle(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestSwipeValidatesBody(t *testing.T) {
	svc := swipesvc.NewService(swipesvc.Dependencies{
		SwipeStore:    swipeStoreStub{},
		InterestStore: interestStoreStub{},
	}, swipesvc.Config{})
	h := NewSwipeHandler(svc)

	req := authedRequest(http.MethodPost, "/swipes", []byte(`{"target_id":""}`), "user-a")
	rr := httptest.NewRecorder()
	h.Handle(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSwipeQuotaExceeded(t *testing.T) {
	svc := swipesvc.NewService(swipesvc.Dependencies{
		SwipeStore:    swipeStoreStub{count: 30},
		InterestStore: interestStoreStub{},
	}, swipesvc.Config{DailyLimit: 30})
	h := NewSwipeHandler(svc)

	body, _ := json.Marshal(map[string]string{"target_id": "user-b", "direction": "LIKE"})
	req := authedRequest(http.MethodPost, "/swipes", body, "user-a")
	rr := httptest.NewRecorder()
	h.Handle(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "QUOTA_EXCEEDED" {
		t.Fatalf("unexpected error code: got %q want %q", payload.Code, "QUOTA_EXCEEDED")
	}
}

func TestQuotaSnapshotPayload(t *testing.T) {
	svc := swipesvc.NewService(swipesvc.Dependencies{
		SwipeStore:    swipeStoreStub{count: 12},
		InterestStore: interestStoreStub{},
	}, swipesvc.Config{DailyLimit: 30})
	h := NewSwipeHandler(svc)

	req := authedRequest(http.MethodGet, "/swipes/quota", nil, "user-a")
	rr := httptest.NewRecorder()
	h.Quota(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload struct {
		Count     int `json:"count"`
		Limit     int `json:"limit"`
		Remaining int `json:"remaining"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Count != 12 || payload.Limit != 30 || payload.Remaining != 18 {
		t.Fatalf("unexpected quota payload: %+v", payload)
	}
}
