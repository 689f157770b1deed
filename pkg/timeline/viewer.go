package timeline

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ccollicutt/tfanalyze/pkg/logger"
)

//go:embed assets/index.html
var indexPage []byte

// apiError is the body of every non-2xx API response.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server serves the timeline viewer and the exported data.
// Files are read on every request so a fresh export shows up without a restart.
type Server struct {
	dir        string
	router     chi.Router
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates a viewer for the export stored in dir.
func NewServer(dir string, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{dir: dir, log: log.WithComponent("timeline")}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(recovery(s.log))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", s.handleItems)
		r.Get("/groups", s.handleGroups)
		r.Get("/bounds", s.handleBounds)
	})

	s.router = r
}

// Router returns the chi router for testing purposes.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Info("starting timeline viewer", "addr", addr, "dir", s.dir)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("timeline server: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.log.Info("shutting down timeline viewer")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexPage)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	exp, ok := s.load(w)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, Enrich(exp.Items))
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	exp, ok := s.load(w)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, exp.Groups)
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	exp, ok := s.load(w)
	if !ok {
		return
	}
	bounds, ok := DefaultBounds(exp.Items)
	if !ok {
		writeError(w, http.StatusNotFound, "empty", "the timeline has no items")
		return
	}
	writeJSONResponse(w, http.StatusOK, bounds)
}

func (s *Server) load(w http.ResponseWriter) (*Export, bool) {
	exp, err := Load(s.dir)
	if errors.Is(err, ErrNoData) {
		writeError(w, http.StatusNotFound, "not_found", "no timeline data; run tfanalyze analyze --with-graph first")
		return nil, false
	}
	if err != nil {
		s.log.WithError(err).Error("loading timeline")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load timeline data")
		return nil, false
	}
	return exp, true
}

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSONResponse(w, status, &apiError{Code: code, Message: message})
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info("request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start).String(),
					"request_id", chimiddleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered",
						"error", rec,
						"stack_trace", string(debug.Stack()),
						"request_id", chimiddleware.GetReqID(r.Context()),
						"path", r.URL.Path,
					)
					writeError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
