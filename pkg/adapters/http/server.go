package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/vivarium/internal/logging"
	"github.com/aretw0/vivarium/pkg/adapters/memory"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/ports"
)

// Server serves the records held by Source.
type Server struct {
	Source  ports.HistorySource
	Streams *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics exposes g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithStreams sets the manager feeding /events. Without it the server
// creates its own, reachable through Server.Streams.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		if sm != nil {
			s.Streams = sm
		}
	}
}

// NewServer creates a Server reading from source.
func NewServer(source ports.HistorySource, opts ...Option) *Server {
	s := &Server{
		Source: source,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(WithStreamLogger(s.logger))
	}
	return s
}

// NewHandler creates the HTTP handler for source.
func NewHandler(source ports.HistorySource, opts ...Option) http.Handler {
	return NewServer(source, opts...).Handler()
}

// Handler returns the routes of s.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS)
	r.Get("/healthz", s.GetHealth)
	r.Get("/configuration", s.GetConfiguration)
	r.Get("/history", s.GetHistory)
	r.Get("/timeseries", s.GetTimeseries)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetConfiguration handles GET /configuration.
func (s *Server) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	config, err := s.Source.Configuration(r.Context())
	if errors.Is(err, domain.ErrNoConfiguration) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, "read configuration", err)
		return
	}
	s.writeJSON(w, config)
}

// GetHistory handles GET /history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.Source.History(r.Context())
	if err != nil {
		s.fail(w, "read history", err)
		return
	}
	s.writeJSON(w, history)
}

// GetTimeseries handles GET /timeseries. The default shape mirrors the
// state tree; format=paths returns one series per slash-joined path.
func (s *Server) GetTimeseries(w http.ResponseWriter, r *http.Request) {
	history, err := s.Source.History(r.Context())
	if err != nil {
		s.fail(w, "read history", err)
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "", "tree":
		s.writeJSON(w, memory.Timeseries(history))
	case "paths":
		s.writeJSON(w, memory.PathTimeseries(history))
	default:
		http.Error(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
	}
}

// SubscribeEvents handles GET /events. The optional experiment_id query
// parameter narrows the stream to one experiment.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		s.logger.Error("sse: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	experimentID := r.URL.Query().Get("experiment_id")
	events, cancel := s.Streams.Subscribe(experimentID)
	defer cancel()
	s.logger.Info("sse client connected", "experiment_id", experimentID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse client disconnected", "experiment_id", experimentID)
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, event.Data)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	http.Error(w, fmt.Sprintf("%s: %v", op, err), http.StatusInternalServerError)
	s.logger.Error("request failed", "op", op, "err", err)
}
