package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/timemachine/internal/store"
	"github.com/MikeSquared-Agency/timemachine/internal/timeline"
)

type Generator interface {
	Generate(ctx context.Context, req timeline.Request) (*timeline.Timeline, error)
}

type Reader interface {
	ListTimelines(ctx context.Context, limit int) ([]timeline.Timeline, error)
	GetTimeline(ctx context.Context, id uuid.UUID) (*timeline.Timeline, error)
}

type Server struct {
	router *chi.Mux
	srv    *http.Server
	gen    Generator
	store  Reader
	logger *slog.Logger
}

// NewServer wires the routes. metrics may be nil, in which case /metrics is
// not mounted.
func NewServer(port int, gen Generator, reader Reader, metrics http.Handler, corsOrigins []string, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(corsHandler(corsOrigins))
	router.Use(preflight)

	s := &Server{
		router: router,
		gen:    gen,
		store:  reader,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Route("/api", func(r chi.Router) {
		r.Get("/", s.root)
		r.Post("/generate-timeline", s.generateTimeline)
		r.Get("/timelines", s.listTimelines)
		r.Get("/timeline/{id}", s.getTimeline)
	})
	if metrics != nil {
		router.Handle("/metrics", metrics)
	}

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "AI Time Machine API"})
}

// maxRequestBody caps the generate request body.
const maxRequestBody = 64 << 10

type generateRequest struct {
	Scenario string `json:"scenario"`
	Depth    string `json:"depth"`
}

func (s *Server) generateTimeline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Scenario) == "" {
		writeError(w, http.StatusBadRequest, "scenario is required")
		return
	}

	tl, err := s.gen.Generate(r.Context(), timeline.Request{
		Scenario: body.Scenario,
		Depth:    timeline.Depth(body.Depth),
	})
	if err != nil {
		s.logger.Error("timeline generation failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, "failed to generate timeline: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

func (s *Server) listTimelines(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListTimelines(r.Context(), store.MaxList)
	if err != nil {
		s.logger.Error("list timelines failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list timelines")
		return
	}
	if list == nil {
		list = []timeline.Timeline{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "timeline not found")
		return
	}

	tl, err := s.store.GetTimeline(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "timeline not found")
		return
	}
	if err != nil {
		s.logger.Error("get timeline failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load timeline")
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
