// Package server exposes the astrology engine over HTTP: chart
// calculation, AI interpretation (plain and streamed), report rendering
// and persistence of users and charts.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/astromind-labs/astromind/internal/engine"
	"github.com/astromind-labs/astromind/internal/interpreter"
	"github.com/astromind-labs/astromind/internal/scanner"
	"github.com/astromind-labs/astromind/internal/state"
)

// InterpretCost is charged per AI interpretation when the request names
// a user.
const InterpretCost = 1

// Server hosts the HTTP API.
type Server struct {
	engine *engine.Engine
	interp *interpreter.Interpreter
	store  state.Store
	port   int
	logger *slog.Logger

	// newScanner builds the per-request scanner; overridable in tests.
	newScanner func() *scanner.Scanner
	// now supplies the current time; overridable in tests.
	now func() time.Time
}

// Config holds what the server needs. Interp may be nil when no AI key
// is configured; the interpretation endpoints then return errors while
// calculation keeps working.
type Config struct {
	Engine *engine.Engine
	Interp *interpreter.Interpreter
	Store  state.Store
	Port   int
	Logger *slog.Logger
}

// New creates a Server from a Config.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine: cfg.Engine,
		interp: cfg.Interp,
		store:  cfg.Store,
		port:   cfg.Port,
		logger: logger,
		now:    time.Now,
	}
	s.newScanner = func() *scanner.Scanner {
		return scanner.New(scanner.WithLogger(logger))
	}
	return s
}

// Handler builds the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		corsMiddleware,
	)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/calculate", s.handleCalculate)
	r.Post("/interpret", s.handleInterpret)
	r.Post("/interpret-stream", s.handleInterpretStream)
	r.Post("/report", s.handleReport)

	r.Post("/users", s.handleCreateUser)
	r.Post("/charts", s.handleSaveChart)
	r.Get("/charts", s.handleListCharts)
	r.Get("/charts/{id}", s.handleGetChart)

	return r
}

// Serve runs the server until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// corsMiddleware allows browser frontends on any origin; the API is
// meant to sit behind one.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
