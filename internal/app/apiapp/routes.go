package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/auth"
	feedsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/feed"
	interestsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/interests"
	matchsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/matches"
	swipesvc "github.com/elaazouzifayssal/collabia-backend/internal/services/swipes"
	"github.com/elaazouzifayssal/collabia-backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthManager     *authsvc.Manager
	FeedService     *feedsvc.Service
	SwipeService    *swipesvc.Service
	InterestService *interestsvc.Service
	MatchService    *matchsvc.Service
	Logger          *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	feedHandler := handlers.NewFeedHandler(deps.FeedService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	interestsHandler := handlers.NewInterestsHandler(deps.InterestService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService, deps.InterestService)
	authMW := AuthMiddleware(deps.AuthManager, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.With(authMW).Get("/feed", feedHandler.Handle)

	r.With(authMW).Post("/swipes", swipeHandler.Handle)
	r.With(authMW).Get("/swipes/quota", swipeHandler.Quota)

	r.Route("/interests", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/received", interestsHandler.Received)
		r.Get("/received/count", interestsHandler.ReceivedCount)
		r.Get("/sent", interestsHandler.Sent)
		r.Get("/status", interestsHandler.Status)
		r.Post("/{id}/respond", interestsHandler.Respond)
	})

	r.Route("/matches", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", matchesHandler.List)
		r.Get("/new", matchesHandler.New)
		r.Get("/new/count", matchesHandler.NewCount)
		r.Post("/{id}/seen", matchesHandler.Seen)
		r.Post("/seen-all", matchesHandler.SeenAll)
	})
}
