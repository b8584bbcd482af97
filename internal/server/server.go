package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/student-records/apiserver/config"
	"github.com/student-records/apiserver/internal/auth"
	"github.com/student-records/apiserver/internal/db"
	"github.com/student-records/apiserver/internal/handlers"
	"github.com/student-records/apiserver/internal/logging"
	"github.com/student-records/apiserver/internal/metrics"
	"github.com/student-records/apiserver/internal/mq"
	"github.com/student-records/apiserver/internal/services"
	"github.com/student-records/apiserver/internal/storage"
	"github.com/student-records/apiserver/internal/store"
	"github.com/student-records/apiserver/internal/store/mongostore"
	"github.com/student-records/apiserver/internal/store/sqlstore"
	"go.uber.org/zap"
)

// Server wraps the HTTP server, router and the resources it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	store      store.Store
	events     mq.Backend
	log        *zap.Logger
}

// New opens the store and brokers named by cfg, applies pending
// migrations when enabled, and builds the router.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.Database.AutoMigrate {
		if err := db.MigrateUp(cfg.Database); err != nil {
			return nil, err
		}
	}

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}

	events, err := mq.New(ctx, cfg.MQ)
	if err != nil {
		_ = st.Close(ctx)
		return nil, fmt.Errorf("connect %s: %w", cfg.MQ.Backend, err)
	}

	objects, err := storage.New(ctx, cfg.ObjectStorage)
	if err != nil {
		_ = events.Close()
		_ = st.Close(ctx)
		return nil, fmt.Errorf("connect %s: %w", cfg.ObjectStorage.Backend, err)
	}

	var exportTarget services.ObjectStore
	if objects != nil {
		if err := objects.EnsureBucket(ctx); err != nil {
			_ = events.Close()
			_ = st.Close(ctx)
			return nil, fmt.Errorf("ensure bucket %s: %w", objects.Bucket(), err)
		}
		exportTarget = objects
	}

	userService := services.NewUserService(st.Users(), auth.NewHasher(cfg.Auth.BcryptCost))
	studentService := services.NewStudentService(
		st.Students(),
		mq.NewStudentEventPublisher(events, cfg.MQ.StudentEventsChannel),
		log,
	)
	exportService := services.NewExportService(studentService, exportTarget)

	gate := handlers.NewGate(userService, tokens, log)
	authHandler := handlers.NewAuthHandler(userService, tokens, cfg.Auth.TokenTTL(), log)
	studentHandler := handlers.NewStudentHandler(studentService, exportService, log)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  logging.StdLogger(log, zap.InfoLevel),
			NoColor: true,
		}),
		middleware.Recoverer,
		sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle,
		metrics.Middleware,
		middleware.Timeout(60*time.Second),
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}),
	)
	router.Get("/", handlers.Welcome(cfg.APIPrefix))
	router.Get("/health", handlers.Health(st, log))
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	router.Route(cfg.APIPrefix, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, authHandler, gate)
		})
		r.Route("/students", func(r chi.Router) {
			handlers.StudentRouter(r, studentHandler, gate)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     logging.StdLogger(log, zap.ErrorLevel),
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		store:      st,
		events:     events,
		log:        log,
	}, nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := db.OpenMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return mongostore.New(client, cfg.Mongo.Database), nil
	case config.DriverPostgres:
		conn, err := db.OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return sqlstore.New(conn, sqlstore.Postgres), nil
	case config.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqlstore.New(conn, sqlstore.SQLite), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the broker and store.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if closeErr := s.events.Close(); closeErr != nil {
		s.log.Warn("close event backend", zap.Error(closeErr))
	}
	if closeErr := s.store.Close(ctx); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}
