package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/elaazouzifayssal/collabia-backend/internal/pkg/validate"
	pgrepo "github.com/elaazouzifayssal/collabia-backend/internal/repo/postgres"
	authsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/auth"
	interestsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/interests"
	"github.com/elaazouzifayssal/collabia-backend/internal/transport/http/dto"
	httperrors "github.com/elaazouzifayssal/collabia-backend/internal/transport/http/errors"
)

type InterestsHandler struct {
	service *interestsvc.Service
}

func NewInterestsHandler(service *interestsvc.Service) *InterestsHandler {
	return &InterestsHandler{service: service}
}

// Received lists the pending interests waiting on the caller's answer.
func (h *InterestsHandler) Received(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(req *http.Request, userID string) ([]pgrepo.InterestWithProfile, error) {
		return h.service.ListReceived(req.Context(), userID)
	})
}

// Sent lists the caller's own pending interests.
func (h *InterestsHandler) Sent(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(req *http.Request, userID string) ([]pgrepo.InterestWithProfile, error) {
		return h.service.ListSent(req.Context(), userID)
	})
}

func (h *InterestsHandler) ReceivedCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INTERESTS_SERVICE_UNAVAILABLE", "interests service is unavailable")
		return
	}

	count, err := h.service.PendingReceivedCount(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to count interests")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CountResponse{Count: count})
}

// Status reports the caller's interest toward ?target_id=, if any.
func (h *InterestsHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INTERESTS_SERVICE_UNAVAILABLE", "interests service is unavailable")
		return
	}

	targetID := r.URL.Query().Get("target_id")
	if !validate.Required(targetID) {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
		return
	}

	rec, err := h.service.StatusBetween(r.Context(), identity.UserID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, interestsvc.ErrNotFound):
			httperrors.Write(w, http.StatusOK, dto.InterestStatusResponse{HasSentInterest: false})
		case errors.Is(err, interestsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid status request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load interest status")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.InterestStatusResponse{
		HasSentInterest: true,
		Status:          rec.Status,
		IsSuperLike:     rec.IsSuperLike,
	})
}

// Respond answers a pending interest addressed to the caller.
func (h *InterestsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INTERESTS_SERVICE_UNAVAILABLE", "interests service is unavailable")
		return
	}

	interestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || interestID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid interest id")
		return
	}

	var req dto.RespondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.service.Respond(r.Context(), identity.UserID, interestID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, interestsvc.ErrInvalidAction):
			writeBadRequest(w, "VALIDATION_ERROR", "action must be accept or decline")
		case errors.Is(err, interestsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid respond request")
		case errors.Is(err, interestsvc.ErrNotFound):
			writeNotFound(w, "NOT_FOUND", "interest not found")
		case errors.Is(err, interestsvc.ErrForbidden):
			writeForbidden(w, "FORBIDDEN", "interest belongs to another user")
		case errors.Is(err, interestsvc.ErrAlreadyResponded):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "ALREADY_RESPONDED",
				Message: "interest was already responded to",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to respond to interest")
		}
		return
	}

	resp := dto.RespondResponse{
		OK:       true,
		Interest: mapInterest(result.Interest),
		Matched:  result.Match != nil,
	}
	if result.Match != nil {
		matchedAt := result.Match.CreatedAt.UTC()
		resp.MatchedAt = &matchedAt
	}
	if result.Conversation != nil {
		resp.ConversationID = result.Conversation.ID
	}
	if result.OtherProfile != nil {
		profile := mapProfileSummary(*result.OtherProfile)
		resp.OtherUser = &profile
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *InterestsHandler) list(w http.ResponseWriter, r *http.Request, load func(*http.Request, string) ([]pgrepo.InterestWithProfile, error)) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INTERESTS_SERVICE_UNAVAILABLE", "interests service is unavailable")
		return
	}

	items, err := load(r, identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list interests")
		return
	}

	httperrors.Write(w, http.StatusOK, mapInterestList(items))
}

func mapInterest(rec pgrepo.InterestRecord) dto.InterestResponse {
	resp := dto.InterestResponse{
		ID:           rec.ID,
		SenderID:     rec.SenderID,
		ReceiverID:   rec.ReceiverID,
		IsSuperLike:  rec.IsSuperLike,
		Status:       rec.Status,
		CreatedAt:    rec.CreatedAt.UTC(),
		SeenBySender: rec.SeenBySender,
	}
	if rec.RespondedAt != nil {
		respondedAt := rec.RespondedAt.UTC()
		resp.RespondedAt = &respondedAt
	}
	return resp
}

func mapInterestList(items []pgrepo.InterestWithProfile) dto.InterestListResponse {
	mapped := make([]dto.InterestWithProfileResponse, 0, len(items))
	for _, item := range items {
		mapped = append(mapped, dto.InterestWithProfileResponse{
			Interest: mapInterest(item.Interest),
			Profile:  mapProfileSummary(item.Profile),
		})
	}
	return dto.InterestListResponse{Items: mapped}
}
