package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/elaazouzifayssal/collabia-backend/internal/config"
	pgrepo "github.com/elaazouzifayssal/collabia-backend/internal/repo/postgres"
	redrepo "github.com/elaazouzifayssal/collabia-backend/internal/repo/redis"
	authsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/auth"
	feedsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/feed"
	interestsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/interests"
	matchsvc "github.com/elaazouzifayssal/collabia-backend/internal/services/matches"
	swipesvc "github.com/elaazouzifayssal/collabia-backend/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	badgeRepo := redrepo.NewBadgeRepo(redisClient)

	swipeRepo := pgrepo.NewSwipeRepo(pool)
	interestRepo := pgrepo.NewInterestRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	conversationRepo := pgrepo.NewConversationRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)

	authManager, err := authsvc.NewManager(authsvc.Config{
		Secret:   cfg.Auth.JWTSecret,
		TokenTTL: cfg.Auth.JWTAccessTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("create auth manager: %w", err)
	}

	feedService := feedsvc.NewService(feedsvc.Dependencies{
		ProfileStore: profileRepo,
		SwipeStore:   swipeRepo,
	}, feedsvc.Config{
		MaxCandidates: cfg.Engine.MaxCandidates,
	})
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:          pool,
		SwipeStore:    swipeRepo,
		InterestStore: interestRepo,
	}, swipesvc.Config{
		DailyLimit:   cfg.Engine.DailySwipeLimit,
		DenyListDays: cfg.Engine.DenyListDays,
		Timezone:     cfg.Engine.Timezone,
	})
	matchService := matchsvc.NewService(matchsvc.Dependencies{
		MatchStore:        matchRepo,
		ConversationStore: conversationRepo,
	}, matchsvc.Config{})
	interestService := interestsvc.NewService(interestsvc.Dependencies{
		Pool:          pool,
		InterestStore: interestRepo,
		Materializer:  matchService,
		ProfileStore:  profileRepo,
		Logger:        log,
	}, interestsvc.Config{
		BadgeCacheTTL: cfg.Engine.BadgeCacheTTL,
	})
	interestService.AttachBadgeCache(badgeRepo)
	swipeService.AttachBadgeInvalidator(interestService)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthManager:     authManager,
		FeedService:     feedService,
		SwipeService:    swipeService,
		InterestService: interestService,
		MatchService:    matchService,
		Logger:          log,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
