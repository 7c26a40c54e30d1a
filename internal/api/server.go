// Package api serves the HepatoDB screens, records and expression classifier
// as a JSON facade.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humamux"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"

	"github.com/Sternrassler/hepatodb-client/pkg/logging"
	"github.com/Sternrassler/hepatodb-client/pkg/metrics"
	"github.com/Sternrassler/hepatodb-client/pkg/screen"
)

// Version of the facade, reported in the OpenAPI document.
const Version = "1.0.0"

// Backend is what the facade reads from. *client.Client implements it.
type Backend interface {
	screen.Source
	Ready(ctx context.Context) error
}

// Config configures the facade server.
type Config struct {
	Addr           string
	MaxConnections int
	SessionTTL     time.Duration
}

// Server is the HTTP facade.
type Server struct {
	backend  Backend
	sessions *screen.Registry
	config   Config
	logger   zerolog.Logger

	router *mux.Router
	api    huma.API
	server *http.Server

	startTime time.Time
}

// New wires the routes of the facade around backend.
func New(backend Backend, cfg Config) *Server {
	s := &Server{
		backend:   backend,
		sessions:  screen.NewRegistry(backend, cfg.SessionTTL),
		config:    cfg,
		logger:    logging.NewLogger("api"),
		router:    mux.NewRouter(),
		startTime: time.Now(),
	}

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.router.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.readyHandler).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	s.api = humamux.New(s.router, huma.DefaultConfig("HepatoDB proxy", Version))

	huma.Get(s.api, "/api/v1/resources", s.listResources)
	huma.Get(s.api, "/api/v1/resources/{resource}/options", s.getOptions)
	huma.Get(s.api, "/api/v1/resources/{resource}/records", s.getRecords)
	huma.Get(s.api, "/api/v1/expression/classify", s.classify)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-session",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions",
		Summary:       "Create a session with one idle screen per resource",
		DefaultStatus: http.StatusCreated,
	}, s.createSession)
	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-session",
		Method:        http.MethodDelete,
		Path:          "/api/v1/sessions/{id}",
		Summary:       "End a session and cancel its searches",
		DefaultStatus: http.StatusNoContent,
	}, s.deleteSession)
	huma.Get(s.api, "/api/v1/sessions/{id}/screens/{resource}", s.getScreen)
	huma.Post(s.api, "/api/v1/sessions/{id}/screens/{resource}/search", s.searchScreen)
	huma.Post(s.api, "/api/v1/sessions/{id}/screens/{resource}/options", s.loadScreenOptions)

	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the session registry.
func (s *Server) Sessions() *screen.Registry {
	return s.sessions
}

// Start listens on the configured address, accepting at most MaxConnections
// connections at a time, and serves until Shutdown.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener. It returns nil at once when Shutdown
// already ran.
func (s *Server) Serve(listener net.Listener) error {
	defer listener.Close()
	if s.config.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, s.config.MaxConnections)
	}

	s.logger.Info().
		Str("addr", listener.Addr().String()).
		Int("max_connections", s.config.MaxConnections).
		Msg("Starting HepatoDB proxy")

	if err := s.server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server without interrupting active requests. A later
// Serve call returns immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.backend.Ready(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Readiness check failed")
		http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
