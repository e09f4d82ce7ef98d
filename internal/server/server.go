// Package server runs the live generation HTTP server: REST endpoints to
// start and poll book generation jobs, plus a WebSocket feed broadcasting
// each section as the assembly loop places it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "embed"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/FocuswithJustin/Ouroboros/core/book"
	"github.com/FocuswithJustin/Ouroboros/internal/logging"
)

//go:embed index.html
var indexHTML []byte

// DefaultWordTarget is used when a create request omits word_target.
const DefaultWordTarget = 50000

// Config holds server configuration.
type Config struct {
	Addr string
}

// Server is the live generation server.
type Server struct {
	cfg    Config
	router chi.Router
	hub    *Hub
	jobs   *JobStore
}

// New creates a server with its routes and WebSocket hub wired up. The hub
// loop starts immediately.
func New(cfg Config) *Server {
	s := &Server{
		cfg:  cfg,
		hub:  NewHub(),
		jobs: NewJobStore(),
	}
	go s.hub.Run()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logging.CombinedMiddleware)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)
	r.Post("/api/books", s.handleCreateBook)
	r.Get("/api/books/{jobID}", s.handleGetJob)
	r.Get("/api/books/{jobID}/text", s.handleGetText)
	r.Get("/ws", s.handleWebSocket)

	s.router = r
	return s
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // long-lived websocket writes
	}

	errCh := make(chan error, 1)
	go func() {
		logging.ServerStartup("http", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type createBookRequest struct {
	WordTarget int   `json:"word_target"`
	Seed       int64 `json:"seed,omitempty"`
}

type createBookResponse struct {
	JobID   string    `json:"job_id"`
	Status  JobStatus `json:"status"`
	PollURL string    `json:"poll_url"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.WordTarget < 0 {
		respondError(w, http.StatusBadRequest, "word_target must not be negative")
		return
	}
	if req.WordTarget == 0 {
		req.WordTarget = DefaultWordTarget
	}

	job := s.jobs.Create(req.WordTarget, req.Seed)
	go s.runJob(job.ID, req.WordTarget, req.Seed)

	respond(w, http.StatusAccepted, createBookResponse{
		JobID:   job.ID,
		Status:  job.Status,
		PollURL: "/api/books/" + job.ID,
	})
}

// runJob drives one generation in the background, feeding every placed
// section to the job store and the WebSocket hub.
func (s *Server) runJob(jobID string, wordTarget int, seed int64) {
	start := time.Now()
	s.jobs.SetRunning(jobID)
	logging.GenerateStart(jobID, wordTarget, seed)

	cfg := book.Config{
		WordTarget: wordTarget,
		Seed:       seed,
		OnSection: func(ev book.Event) {
			s.jobs.SetProgress(jobID, ev.TotalWords)
			s.hub.Broadcast(SectionMessage{
				Type:       "section",
				JobID:      jobID,
				Kind:       ev.Section.Kind.String(),
				SectionID:  uint16(ev.Section.ID),
				Words:      ev.Section.WordCount(),
				TotalWords: ev.TotalWords,
			})
		},
	}

	gen, err := book.New(cfg)
	if err != nil {
		s.failJob(jobID, err)
		return
	}
	b, err := gen.Generate()
	if err != nil {
		s.failJob(jobID, err)
		return
	}

	s.jobs.SetComplete(jobID, b)
	logging.GenerateDone(jobID, len(b.Sections), b.WordCount, time.Since(start))
	s.hub.Broadcast(SectionMessage{
		Type:       "done",
		JobID:      jobID,
		TotalWords: b.WordCount,
	})
}

func (s *Server) failJob(jobID string, err error) {
	logging.Error("generation failed", "job_id", jobID, "error", err)
	s.jobs.SetFailed(jobID, err.Error())
	s.hub.Broadcast(SectionMessage{
		Type:    "error",
		JobID:   jobID,
		Message: err.Error(),
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, ok := s.jobs.Get(jobID)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("job %s not found", jobID))
		return
	}
	respond(w, http.StatusOK, job)
}

func (s *Server) handleGetText(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, ok := s.jobs.Get(jobID)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("job %s not found", jobID))
		return
	}
	if job.Status != JobStatusComplete {
		respondError(w, http.StatusConflict, fmt.Sprintf("job %s is %s", jobID, job.Status))
		return
	}
	text, ok := s.jobs.Text(jobID)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("job %s has no text", jobID))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}
