package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/domrec"
	"github.com/aretw0/domrec/internal/logging"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/observability"
	"github.com/aretw0/domrec/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzip"
)

// DefaultMaxBody bounds the size of a stored document.
const DefaultMaxBody = 16 << 20

// Server serves a ports.KeyValueStore over HTTP.
type Server struct {
	Store   ports.KeyValueStore
	Streams *StreamManager

	logger  *slog.Logger
	metrics *observability.Metrics
	maxBody int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics counts requests and exposes GET /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithMaxBody overrides DefaultMaxBody.
func WithMaxBody(n int64) Option {
	return func(s *Server) {
		s.maxBody = n
	}
}

// NewHandler creates a new HTTP handler for the store.
func NewHandler(store ports.KeyValueStore, opts ...Option) http.Handler {
	server := &Server{
		Store:   store,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
		maxBody: DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/store", server.GetStore)
	r.Post("/store", server.PostStore)
	r.Delete("/store", server.DeleteStore)
	r.Get("/keys", server.ListKeys)
	r.Get("/events", server.SubscribeEvents)
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics.Handler())
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Encoding")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, code int, msg string) {
	s.metrics.StoreRequest(r.Method, code)
	http.Error(w, msg, code)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, body []byte) {
	s.metrics.StoreRequest(r.Method, http.StatusOK)
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		s.logger.Error("response write failed", "err", err)
	}
}

func storeKey(r *http.Request) (string, bool) {
	key := r.URL.Query().Get("key")
	return key, key != ""
}

// GetStore handles the GET /store?key= request.
func (s *Server) GetStore(w http.ResponseWriter, r *http.Request) {
	key, ok := storeKey(r)
	if !ok {
		s.fail(w, r, http.StatusBadRequest, "Missing key")
		return
	}

	value, err := s.Store.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			s.fail(w, r, http.StatusNotFound, "Not found")
			return
		}
		s.logger.Error("store get failed", "key", key, "err", err)
		s.fail(w, r, http.StatusInternalServerError, "Store error")
		return
	}
	s.writeJSON(w, r, value)
}

// PostStore handles the POST /store?key= request. The body must be JSON and
// may be gzip-encoded.
func (s *Server) PostStore(w http.ResponseWriter, r *http.Request) {
	key, ok := storeKey(r)
	if !ok {
		s.fail(w, r, http.StatusBadRequest, "Missing key")
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		s.logger.Warn("PostStore: invalid request body", "key", key, "err", err)
		s.fail(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !json.Valid(body) {
		s.fail(w, r, http.StatusBadRequest, "Body is not valid JSON")
		return
	}

	if err := s.Store.Put(r.Context(), key, body); err != nil {
		s.logger.Error("store put failed", "key", key, "err", err)
		s.fail(w, r, http.StatusInternalServerError, "Store error")
		return
	}
	s.logger.Debug("stored value", "key", key, "bytes", len(body))
	s.Streams.Broadcast(key, "saved")
	s.writeJSON(w, r, []byte(`{"status":"ok"}`))
}

// DeleteStore handles the DELETE /store?key= request.
func (s *Server) DeleteStore(w http.ResponseWriter, r *http.Request) {
	key, ok := storeKey(r)
	if !ok {
		s.fail(w, r, http.StatusBadRequest, "Missing key")
		return
	}
	if err := s.Store.Delete(r.Context(), key); err != nil {
		s.logger.Error("store delete failed", "key", key, "err", err)
		s.fail(w, r, http.StatusInternalServerError, "Store error")
		return
	}
	s.Streams.Broadcast(key, "deleted")
	s.writeJSON(w, r, []byte(`{"status":"ok"}`))
}

// ListKeys handles the GET /keys request.
func (s *Server) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.Store.Keys(r.Context())
	if err != nil {
		s.logger.Error("store keys failed", "err", err)
		s.fail(w, r, http.StatusInternalServerError, "Store error")
		return
	}
	body, err := json.Marshal(keys)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Encode error")
		return
	}
	s.writeJSON(w, r, body)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	var reader io.Reader = http.MaxBytesReader(w, r.Body, s.maxBody)
	if strings.EqualFold(r.Header.Get("Content-Encoding"), "gzip") {
		zr, err := gzip.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("invalid gzip body: %w", err)
		}
		defer zr.Close()
		reader = io.LimitReader(zr, s.maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > s.maxBody {
		return nil, errors.New("body too large")
	}
	return body, nil
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"app":     "domrec-store",
		"version": strings.TrimSpace(domrec.Version),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// SubscribeEvents handles the GET /events?key= request (SSE). A message is
// sent whenever the key is saved or deleted.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	key, ok := storeKey(r)
	if !ok {
		http.Error(w, "Missing key", http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(key)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "key", key)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
