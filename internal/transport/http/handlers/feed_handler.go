package handlers

import (
	"errors"
	"net/http"

	pgrepo "github.com/elaazouzifayssal/collabia-backend/internal/repo/postgres"
	authsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/auth"
	feedsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/feed"
	"github.com/elaazouzifayssal/collabia-backend/internal/transport/http/dto"
	httperrors "github.com/elaazouzifayssal/collabia-backend/internal/transport/http/errors"
)

type FeedHandler struct {
	service *feedsvc.Service
}

func NewFeedHandler(service *feedsvc.Service) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	candidates, err := h.service.Build(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, feedsvc.ErrProfileNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "viewer profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to build feed")
		}
		return
	}

	items := make([]dto.ProfileSummaryResponse, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, mapProfileSummary(candidate.Profile))
	}

	httperrors.Write(w, http.StatusOK, dto.FeedResponse{Candidates: items})
}

func mapProfileSummary(profile pgrepo.ProfileRecord) dto.ProfileSummaryResponse {
	interests := profile.Interests
	if interests == nil {
		interests = []string{}
	}
	skills := profile.Skills
	if skills == nil {
		skills = []string{}
	}

	return dto.ProfileSummaryResponse{
		UserID:               profile.UserID,
		DisplayName:          profile.DisplayName,
		Interests:            interests,
		Skills:               skills,
		Location:             profile.Location,
		OpenToStudyPartner:   profile.OpenToStudyPartner,
		OpenToProjects:       profile.OpenToProjects,
		OpenToAccountability: profile.OpenToAccountability,
		OpenToCofounder:      profile.OpenToCofounder,
		OpenToHelpingOthers:  profile.OpenToHelpingOthers,
		SchoolVerified:       profile.SchoolVerified,
		LastActiveAt:         profile.LastActiveAt.UTC(),
	}
}
