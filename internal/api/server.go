package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/parley/internal/errs"
	"github.com/MikeSquared-Agency/parley/internal/observe"
	"github.com/MikeSquared-Agency/parley/internal/processor"
	"github.com/MikeSquared-Agency/parley/internal/session"
)

type Server struct {
	router   *chi.Mux
	port     int
	sessions *session.Manager
	proc     *processor.Processor
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer builds the HTTP API. metrics may be nil, in which case request
// latency is not recorded.
func NewServer(port int, apiToken string, sessions *session.Manager, proc *processor.Processor, metrics *observe.Metrics, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	if metrics != nil {
		router.Use(observe.Middleware(metrics, logger))
	}

	s := &Server{
		router:   router,
		port:     port,
		sessions: sessions,
		proc:     proc,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}

	router.Get("/health", s.health)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))

		r.Get("/status", s.status)
		r.Post("/sessions", s.createSession)
		r.Get("/sessions", s.listSessions)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)

			r.Put("/characters/{name}", s.putCharacter)
			r.Delete("/characters/{name}/stats", s.resetCharacter)
			r.Get("/characters/{name}/summary", s.characterSummary)
			r.Get("/characters/{name}/advice", s.characterAdvice)

			r.Put("/scene", s.putScene)
			r.Post("/lines", s.analyzeLine)
			r.Post("/alternatives", s.alternatives)
			r.Post("/improve", s.improve)
			r.Get("/report", s.report)
			r.Post("/report/archive", s.archiveReport)
			r.Get("/report/latest", s.latestReport)
			r.Get("/stream", s.stream)
		})
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// BearerAuthMiddleware rejects requests without the expected bearer token.
// An empty token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":  "parley",
		"sessions": s.sessions.Len(),
	})
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// writeError maps engine error kinds onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	kind := errs.KindOf(err)
	switch {
	case kind == errs.KindValidation:
		code = http.StatusBadRequest
	case kind == errs.KindUnknownCharacter, kind == errs.KindNotFound:
		code = http.StatusNotFound
	case errors.Is(err, processor.ErrArchiveDisabled):
		code = http.StatusServiceUnavailable
	}
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, code, errorBody{Error: err.Error(), Kind: string(kind)})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Validation("invalid JSON: %v", err)
	}
	return nil
}
