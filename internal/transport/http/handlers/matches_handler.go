package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/auth"
	interestsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/interests"
	matchsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/matches"
	"github.com/elaazouzifayssal/collabia-backend/internal/transport/http/dto"
	httperrors "github.com/elaazouzifayssal/collabia-backend/internal/transport/http/errors"
)

type MatchesHandler struct {
	matches   *matchsvc.Service
	interests *interestsvc.Service
}

func NewMatchesHandler(matches *matchsvc.Service, interests *interestsvc.Service) *MatchesHandler {
	return &MatchesHandler{matches: matches, interests: interests}
}

// List is the caller's full match roster, newest first.
func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.matches == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	entries, err := h.matches.List(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list matches")
		return
	}

	items := make([]dto.MatchEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.MatchEntryResponse{
			Profile:        mapProfileSummary(entry.Profile),
			ConversationID: entry.ConversationID,
			MatchedAt:      entry.Match.CreatedAt.UTC(),
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchListResponse{Items: items})
}

// New lists the caller's mutual interests they have not acknowledged yet.
func (h *MatchesHandler) New(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.interests == nil {
		writeInternal(w, "INTERESTS_SERVICE_UNAVAILABLE", "interests service is unavailable")
		return
	}

	items, err := h.interests.ListUnseenMutual(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list new matches")
		return
	}

	httperrors.Write(w, http.StatusOK, mapInterestList(items))
}

func (h *MatchesHandler) NewCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.interests == nil {
		writeInternal(w, "INTERESTS_SERVICE_UNAVAILABLE", "interests service is unavailable")
		return
	}

	count, err := h.interests.UnseenMutualCount(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to count new matches")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CountResponse{Count: count})
}

// Seen acknowledges one mutual interest by its id.
func (h *MatchesHandler) Seen(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.interests == nil {
		writeInternal(w, "INTERESTS_SERVICE_UNAVAILABLE", "interests service is unavailable")
		return
	}

	interestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || interestID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid interest id")
		return
	}

	if err := h.interests.MarkSeen(r.Context(), identity.UserID, interestID); err != nil {
		switch {
		case errors.Is(err, interestsvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "interest not found")
		case errors.Is(err, interestsvc.ErrForbidden):
			writeForbidden(w, "FORBIDDEN", "interest belongs to another user")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to mark match seen")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

// SeenAll acknowledges every unseen mutual interest at once.
func (h *MatchesHandler) SeenAll(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.interests == nil {
		writeInternal(w, "INTERESTS_SERVICE_UNAVAILABLE", "interests service is unavailable")
		return
	}

	updated, err := h.interests.MarkAllSeen(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to mark matches seen")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SeenAllResponse{OK: true, Updated: updated})
}
