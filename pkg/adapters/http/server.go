// Package http serves the snapshots of a run over HTTP.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/halo"
	"github.com/aretw0/halo/pkg/adapters/pgm"
	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Server exposes a SnapshotStore and streams snapshot events.
type Server struct {
	Store   ports.SnapshotStore
	Streams *StreamManager
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager with the producer of snapshot events.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates a new HTTP handler for the store.
func NewHandler(store ports.SnapshotStore, opts ...Option) http.Handler {
	server := &Server{
		Store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager()
	}

	r := chi.NewRouter()
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/snapshots", server.ListSnapshots)
	r.Get("/snapshots/latest", server.GetLatest)
	r.Get("/snapshots/{generation}", server.GetSnapshot)
	r.Get("/events", server.SubscribeEvents)
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"app":     "halo-http",
		"version": strings.TrimSpace(halo.Version),
	})
}

// ListSnapshots handles the GET /snapshots request.
func (s *Server) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	gens, err := s.Store.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("List snapshots failed", "error", err)
		return
	}
	writeJSON(w, map[string][]int{"generations": gens})
}

// GetLatest handles the GET /snapshots/latest request.
func (s *Server) GetLatest(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Store.Latest(r.Context())
	s.respond(w, r, snap, err)
}

// GetSnapshot handles the GET /snapshots/{generation} request.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	gen, err := strconv.Atoi(chi.URLParam(r, "generation"))
	if err != nil || gen < 0 {
		http.Error(w, "Invalid generation", http.StatusBadRequest)
		return
	}
	snap, err := s.Store.Load(r.Context(), gen)
	s.respond(w, r, snap, err)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, snap *domain.Snapshot, err error) {
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Load snapshot failed", "error", err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, snap)
	case "pgm":
		w.Header().Set("Content-Type", "image/x-portable-graymap")
		if err := pgm.Encode(w, snap); err != nil {
			s.logger.Error("PGM encode failed", "generation", snap.Generation, "error", err)
		}
	default:
		http.Error(w, "Unsupported format", http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
