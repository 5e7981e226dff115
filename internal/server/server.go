// Package server is the composition root: it opens the database, builds
// the services and handlers, mounts the routes and runs the HTTP server.
//
//	config → sqlite.DB → services → handlers → chi router → http.Server
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/foodgram/internal/auth"
	"github.com/sakif/foodgram/internal/config"
	"github.com/sakif/foodgram/internal/handler"
	"github.com/sakif/foodgram/internal/middleware"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/ratelimit"
	sqliteRepo "github.com/sakif/foodgram/internal/repository/sqlite"
	"github.com/sakif/foodgram/internal/service"
	"github.com/sakif/foodgram/internal/validation"
)

// Server owns the database connection and the rate limiter; Close
// releases both.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	limiter *ratelimit.KeyedRateLimiter
}

// New opens the database at cfg.Database.Path, creating its directory if
// needed, and wires every route.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, fmt.Errorf("server: creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("server: opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	if cfg.RateLimit.RPS > 0 {
		s.limiter = ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, time.Minute)
	}

	if err := s.setupRoutes(); err != nil {
		s.Close()
		return nil, fmt.Errorf("server: setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops the rate limiter and closes the database.
func (s *Server) Close() error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.db.Close()
}

// jwtSecret returns the configured secret, or a random one for this
// process when none is set.
func (s *Server) jwtSecret() (string, error) {
	if s.config.Auth.JWTSecret != "" {
		return s.config.Auth.JWTSecret, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	s.logger.Warn("JWT_SECRET not set, using a random secret; sessions end on restart")
	return hex.EncodeToString(buf), nil
}

// setupRoutes mounts:
//
//	GET    /healthz
//	GET    /api/tags/, /api/tags/{id}/
//	GET    /api/ingredients/?name=, /api/ingredients/{id}/
//	GET    /api/users/, /api/users/{id}/
//	POST   /api/users/                                  (rate limited)
//	POST   /api/auth/token/login/                       (rate limited)
//	GET    /api/auth/github/login, /api/auth/github/callback
//	POST   /api/auth/token/logout/                      (auth)
//	GET    /api/users/me/, /api/users/subscriptions/    (auth)
//	POST   /api/users/set_password/                     (auth)
//	POST   /api/users/{id}/subscribe/, DELETE likewise  (auth)
//	GET    /api/recipes/, /api/recipes/{id}/
//	POST   /api/recipes/                                (auth)
//	PATCH  /api/recipes/{id}/, DELETE likewise          (auth)
//	POST   /api/recipes/{id}/favorite/, DELETE likewise (auth)
//	POST   /api/recipes/{id}/shopping_cart/, DELETE     (auth)
//	GET    /api/recipes/download_shopping_cart/         (auth)
func (s *Server) setupRoutes() error {
	secret, err := s.jwtSecret()
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(secret, s.config.Auth.TokenTTL)
	if err != nil {
		return err
	}

	var github *auth.GitHubProvider
	if s.config.Auth.GitHubEnabled() {
		callback := s.config.Auth.GitHubCallbackURL
		if callback == "" {
			callback = fmt.Sprintf("http://localhost:%d/api/auth/github/callback", s.config.Server.Port)
		}
		github = auth.NewGitHubProvider(s.config.Auth.GitHubClientID, s.config.Auth.GitHubClientSecret, callback)
	}

	validate := validation.New()

	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
	userService := service.NewUserService(s.db, s.db)
	catalogService := service.NewCatalogService(s.db)
	recipeService := service.NewRecipeService(s.db, s.db, s.db, s.db, s.logger)
	relationService := service.NewRelationService(s.db, s.db, s.db, s.logger)
	shoppingService := service.NewShoppingService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, tokens, github, validate,
		s.config.Log.Environment == "production", s.logger)
	userHandler := handler.NewUserHandler(userService, authService, validate, s.logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, s.logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, shoppingService, validate, s.logger)
	relationHandler := handler.NewRelationHandler(relationService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Get("/healthz", s.handleHealth)

	requireAuth := auth.RequireAuth(tokens)
	limited := func(r chi.Router) chi.Router {
		if s.limiter == nil {
			return r
		}
		return r.With(middleware.RateLimit(s.limiter, s.logger))
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))

		r.Get("/tags/", catalogHandler.HandleTags)
		r.Get("/tags/{id}/", catalogHandler.HandleTag)
		r.Get("/ingredients/", catalogHandler.HandleIngredients)
		r.Get("/ingredients/{id}/", catalogHandler.HandleIngredient)

		limited(r).Post("/auth/token/login/", authHandler.HandleLogin)
		r.With(requireAuth).Post("/auth/token/logout/", authHandler.HandleLogout)
		if github != nil {
			limited(r).Get("/auth/github/login", authHandler.HandleGitHubLogin)
			limited(r).Get("/auth/github/callback", authHandler.HandleGitHubCallback)
		}

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.HandleList)
			limited(r).Post("/", userHandler.HandleRegister)
			r.Get("/{id}/", userHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me/", userHandler.HandleMe)
				r.Post("/set_password/", userHandler.HandleSetPassword)
				r.Get("/subscriptions/", relationHandler.HandleSubscriptions)
				r.Post("/{id}/subscribe/", relationHandler.HandleAdd(model.KindSubscription))
				r.Delete("/{id}/subscribe/", relationHandler.HandleRemove(model.KindSubscription))
			})
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.HandleList)
			r.Get("/{id}/", recipeHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", recipeHandler.HandleCreate)
				r.Get("/download_shopping_cart/", recipeHandler.HandleDownloadShoppingCart)
				r.Patch("/{id}/", recipeHandler.HandleUpdate)
				r.Delete("/{id}/", recipeHandler.HandleDelete)
				r.Post("/{id}/favorite/", relationHandler.HandleAdd(model.KindFavorite))
				r.Delete("/{id}/favorite/", relationHandler.HandleRemove(model.KindFavorite))
				r.Post("/{id}/shopping_cart/", relationHandler.HandleAdd(model.KindShoppingCart))
				r.Delete("/{id}/shopping_cart/", relationHandler.HandleRemove(model.KindShoppingCart))
			})
		})
	})

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}` + "\n"))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// Run serves until ctx is canceled, then shuts down gracefully within
// the configured timeout and closes the server's resources.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("database", s.config.Database.Path),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listening: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}
