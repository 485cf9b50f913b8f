package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/dativetop/dativetop-server/docs/swagger" // registers the generated spec with swag
	"github.com/dativetop/dativetop-server/internal/logging"
	"github.com/dativetop/dativetop-server/internal/metrics"
	"github.com/dativetop/dativetop-server/internal/model"
	"github.com/dativetop/dativetop-server/internal/registry"
)

const (
	requestIDHeader  = "X-Request-Id"
	preflightMethods = "GET, PUT, OPTIONS"
)

// Server is the HTTP + WebSocket surface over the DativeTop registry.
type Server struct {
	cfg      Config
	registry *registry.Registry
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
	metrics  *metrics.Metrics
}

// NewServer creates a Server serving reg. The registry is owned by the
// caller and must outlive the server.
func NewServer(cfg Config, reg *registry.Registry) (*Server, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:      cfg,
		registry: reg,
		router:   r,
		logger:   logger,
		metrics:  metrics.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// the feed is read-only demo data, served to any origin like "/"
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

// Metrics returns the server's collectors (tests, embedding).
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(s.metricsMiddleware)

	// The data resource dispatches on method itself.
	r.HandleFunc("/", s.handleData)

	r.Get("/ws", s.handleWatchWS)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		// CORS preflight, for every route
		if r.Method == http.MethodOptions {
			s.optionsHandler(preflightMethods)(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.IncrementRequests(r.Method, strconv.Itoa(status))
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get(requestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, reqID)

	fields := []logging.Field{
		{Key: "request_id", Value: reqID},
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxBodyBytes+1)); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // the change feed is long-lived
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		s.handleUpdateInstance(w, r)
	default:
		s.handleGetRegistry(w, r)
	}
}

// handleGetRegistry godoc
// @Summary Get the registry
// @Description Returns the editor URL, the OLD URL and every OLD instance keyed by URL.
// @Tags registry
// @Produce json
// @Success 200 {object} model.Registry
// @Router / [get]
func (s *Server) handleGetRegistry(w http.ResponseWriter, r *http.Request) {
	snap := s.registry.Snapshot()
	s.logger.Debug("served registry", logging.Field{Key: "instances", Value: len(snap.OLDInstances)})
	writeJSON(w, http.StatusOK, snap)
}

// handleUpdateInstance godoc
// @Summary Replace an OLD instance
// @Description Stores the instance under its url, replacing any previous entry, and returns the whole registry.
// @Tags registry
// @Accept json
// @Produce json
// @Param instance body model.Instance true "OLD instance"
// @Success 200 {object} model.Registry
// @Failure 400 {object} ErrorResponse
// @Router / [put]
func (s *Server) handleUpdateInstance(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		s.logger.Warn("reading update body", logging.Field{Key: "error", Value: err.Error()})
		s.metrics.IncrementUpdates(metrics.UpdateBadJSON)
		writeError(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	var inst model.Instance
	if err := json.Unmarshal(body, &inst); err != nil {
		s.logger.Warn("decoding update body", logging.Field{Key: "error", Value: err.Error()})
		s.metrics.IncrementUpdates(metrics.UpdateBadJSON)
		writeError(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	snap, err := s.registry.PutInstance(r.Context(), inst)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidInstance) {
			s.logger.Warn("rejecting OLD instance", logging.Field{Key: "error", Value: err.Error()})
			s.metrics.IncrementUpdates(metrics.UpdateInvalid)
			writeError(w, http.StatusBadRequest, msgInvalidInstance)
			return
		}
		s.logger.Error("updating OLD instance", logging.Field{Key: "error", Value: err.Error()})
		s.metrics.IncrementUpdates(metrics.UpdateFailed)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.IncrementUpdates(metrics.UpdateOK)
	s.logger.Info("updated OLD instance", logging.Field{Key: "url", Value: inst.URL}, logging.Field{Key: "count", Value: len(snap.OLDInstances)})
	writeJSON(w, http.StatusOK, snap)
}

// WebSockets

// handleWatchWS streams the registry: once on connect, then after every
// successful update.
func (s *Server) handleWatchWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	updates, cancel := s.registry.Subscribe()
	defer cancel()

	s.metrics.Watchers.Inc()
	defer s.metrics.Watchers.Dec()

	// Reads are only needed to notice the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	s.logger.Info("watcher connected")
	if err := conn.WriteJSON(s.registry.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				// Assume client disconnected
				return
			}
		case <-closed:
			s.logger.Info("watcher disconnected")
			return
		case <-r.Context().Done():
			return
		}
	}
}
