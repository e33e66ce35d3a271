package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/elaazouzifayssal/collabia-backend/internal/pkg/validate"
	authsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/auth"
	swipesvc "github.com/elaazouzifayssal/collabia-backend/internal/services/swipes"
	"github.com/elaazouzifayssal/collabia-backend/internal/transport/http/dto"
	httperrors "github.com/elaazouzifayssal/collabia-backend/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if !validate.Required(req.TargetID) || !validate.Required(req.Direction) {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id and direction are required")
		return
	}

	result, err := h.service.Record(r.Context(), identity.UserID, req.TargetID, req.Direction)
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, swipesvc.ErrInvalidDirection):
			writeBadRequest(w, "VALIDATION_ERROR", "unsupported swipe direction")
		case errors.Is(err, swipesvc.ErrQuotaExceeded):
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.APIError{
				Code:    "QUOTA_EXCEEDED",
				Message: "daily swipe limit reached",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	resp := dto.SwipeResponse{
		OK:     true,
		Status: result.Status,
		Record: dto.SwipeRecordResponse{
			TargetID:  result.Record.SwipedID,
			Direction: result.Record.Direction,
			CreatedAt: result.Record.CreatedAt.UTC(),
			ExpiresAt: result.Record.ExpiresAt,
		},
	}
	if result.Interest != nil {
		interest := mapInterest(*result.Interest)
		resp.Interest = &interest
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *SwipeHandler) Quota(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	snapshot, err := h.service.Quota(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load quota")
		return
	}

	remaining := snapshot.Limit - snapshot.Count
	if remaining < 0 {
		remaining = 0
	}

	httperrors.Write(w, http.StatusOK, dto.QuotaResponse{
		Count:     snapshot.Count,
		Limit:     snapshot.Limit,
		Remaining: remaining,
		ResetAt:   snapshot.ResetAt.UTC(),
	})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
