package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/schedulr/apiserver/config"
	"github.com/schedulr/apiserver/internal/db"
	"github.com/schedulr/apiserver/internal/handlers"
	"github.com/schedulr/apiserver/internal/mq"
	"github.com/schedulr/apiserver/internal/services"
	"github.com/schedulr/apiserver/internal/store"
	"github.com/sirupsen/logrus"
)

// Server wraps the HTTP server, router and the connections it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	logger     *logrus.Logger
	closers    []func(context.Context) error
}

// Deps holds the collaborators the router is built from.
type Deps struct {
	Users    services.UserRepository
	Tasks    services.TaskRepository
	Notifier services.CompletionNotifier
	Tokens   *services.TokenService
	Logger   *logrus.Logger
}

// New opens the configured database and broker and constructs a Server.
func New(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	srv := &Server{logger: logger}

	users, tasks, err := srv.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queue, err := mq.Open(ctx, cfg)
	if err != nil {
		_ = srv.Shutdown(ctx)
		return nil, err
	}
	var publisher services.Publisher
	if queue != nil {
		publisher = queue
		srv.closers = append(srv.closers, func(context.Context) error { return queue.Close() })
	}

	srv.router = NewRouter(cfg, Deps{
		Users:    users,
		Tasks:    tasks,
		Notifier: services.NewNotifier(publisher, cfg.Notify.Topic, logger),
		Tokens:   services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Logger:   logger,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 5000
	}

	srv.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv, nil
}

func (s *Server) openStores(ctx context.Context, cfg config.Config) (services.UserRepository, services.TaskRepository, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, database, err := db.OpenMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		s.closers = append(s.closers, client.Disconnect)
		return store.NewMongoUserRepository(database), store.NewMongoTaskRepository(database), nil
	default:
		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { return dbConn.Close() })
		return store.NewUserRepository(dbConn), store.NewTaskRepository(dbConn), nil
	}
}

// NewRouter builds the chi router with middleware and all API routes.
func NewRouter(cfg config.Config, deps Deps) *chi.Mux {
	authService := services.NewAuthService(deps.Users, deps.Tokens)
	taskService := services.NewTaskService(deps.Tasks, deps.Notifier)
	authMiddleware := handlers.RequireAuth(deps.Tokens)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", handlers.TokenHeader},
		}),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, authMiddleware, deps.Logger)
	})
	router.Route("/api/tasks", func(r chi.Router) {
		handlers.TaskRouter(r, taskService, authMiddleware, deps.Logger)
	})
	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the database and broker.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.httpServer != nil {
		errs = append(errs, s.httpServer.Shutdown(ctx))
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i](ctx))
	}
	return errors.Join(errs...)
}
