/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api provides the HTTP API server for rscapture.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	rsHttp "github.com/carverauto/rscapture/pkg/http"
	"github.com/carverauto/rscapture/pkg/logger"
	"github.com/carverauto/rscapture/pkg/metrics"
	"github.com/carverauto/rscapture/pkg/models"
)

const (
	maxRequestBody     = 1 << 20
	defaultServiceName = "rscapture"
)

var errBodyTooLarge = errors.New("request body too large")

// APIServer serves the device, stream, capture and feed endpoints.
type APIServer struct {
	router      *mux.Router
	corsConfig  models.CORSConfig
	sessions    SessionManager
	stats       StatsProvider
	recorder    metrics.Recorder
	logger      logger.Logger
	feed        models.VideoFeedConfig
	frameWidth  int
	frameHeight int
	apiKey      string
	webRoot     string
	serviceName string
	config      interface{}
	handler     http.Handler

	fallbackMu   sync.Mutex
	fallbackJPEG map[models.View][]byte
}

// NewAPIServer creates a new API server instance with the given configuration
func NewAPIServer(config models.CORSConfig, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:      mux.NewRouter(),
		corsConfig:  config,
		logger:      logger.NewTestLogger(),
		feed:        models.DefaultConfig().VideoFeed,
		frameWidth:  models.DefaultConfig().Stream.Width,
		frameHeight: models.DefaultConfig().Stream.Height,
		serviceName: defaultServiceName,
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()
	s.handler = s.wrap(s.router)

	return s
}

// WithSessionManager sets the registry the handlers act on.
func WithSessionManager(m SessionManager) func(server *APIServer) {
	return func(server *APIServer) {
		server.sessions = m
	}
}

// WithMetrics sets the frame counter and the stats source.
func WithMetrics(m *metrics.Manager) func(server *APIServer) {
	return func(server *APIServer) {
		server.recorder = m
		server.stats = m
	}
}

// WithLogger sets the server logger.
func WithLogger(log logger.Logger) func(server *APIServer) {
	return func(server *APIServer) {
		server.logger = log
	}
}

// WithVideoFeed sets the feed cadence, encoding and the size of the
// fallback frame.
func WithVideoFeed(feed models.VideoFeedConfig, stream models.StreamSettings) func(server *APIServer) {
	return func(server *APIServer) {
		server.feed = feed
		server.frameWidth = stream.Width
		server.frameHeight = stream.Height
	}
}

// WithAPIKey requires X-API-Key on every route except /healthz.
func WithAPIKey(key string) func(server *APIServer) {
	return func(server *APIServer) {
		server.apiKey = key
	}
}

// WithWebRoot serves a static directory at /.
func WithWebRoot(dir string) func(server *APIServer) {
	return func(server *APIServer) {
		server.webRoot = dir
	}
}

// WithConfig exposes cfg, minus sensitive fields, at /config.
func WithConfig(cfg interface{}) func(server *APIServer) {
	return func(server *APIServer) {
		server.config = cfg
	}
}

// WithServiceName names the tracer of the request spans.
func WithServiceName(name string) func(server *APIServer) {
	return func(server *APIServer) {
		server.serviceName = name
	}
}

// setupRoutes configures the HTTP routes for the API server.
func (s *APIServer) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/devices", s.handleDevices).Methods(http.MethodGet)
	s.router.HandleFunc("/sessions", s.handleSessions).Methods(http.MethodGet)
	s.router.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	s.router.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet)
	s.router.HandleFunc("/swagger/doc.json", s.serveSwaggerJSON).Methods(http.MethodGet)

	s.router.HandleFunc("/start_stream", s.handleStartStream).Methods(http.MethodPost)
	s.router.HandleFunc("/stop_stream", s.handleStopStream).Methods(http.MethodPost)
	s.router.HandleFunc("/stop_all", s.handleStopAll).Methods(http.MethodPost)
	s.router.HandleFunc("/capture", s.handleCapture).Methods(http.MethodPost)
	s.router.HandleFunc("/get_calibration_info", s.handleCalibration).Methods(http.MethodPost)

	s.router.HandleFunc("/video_feed", s.handleVideoFeed).Methods(http.MethodGet)
	s.router.HandleFunc("/video_feed/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/video_feed", s.handleVideoFeedWS).Methods(http.MethodGet)

	if s.webRoot != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.webRoot))).Methods(http.MethodGet)
	}
}

// Handler returns the router wrapped in tracing, request logging, CORS and
// API key checks, outermost first.
func (s *APIServer) Handler() http.Handler {
	return s.handler
}

func (s *APIServer) wrap(h http.Handler) http.Handler {
	h = rsHttp.APIKeyMiddlewareWithOptions(rsHttp.APIKeyOptions{
		APIKey:          s.apiKey,
		ExcludePaths:    []string{"/healthz"},
		LogUnauthorized: true,
		Logger:          s.logger,
	})(h)
	h = rsHttp.CommonMiddleware(h, s.corsConfig, s.logger)
	h = rsHttp.RequestLogger(s.logger)(h)
	h = rsHttp.Tracing(s.serviceName)(h)

	return h
}

// ServeHTTP makes APIServer usable as a handler directly.
func (s *APIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}

		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}

		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	return nil
}

// writeJSONResponse writes a JSON response to the HTTP writer
func (s *APIServer) writeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn().Err(err).Msg("Error encoding response")
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)

	errResponse := models.ErrorResponse{
		Message: message,
		Status:  statusCode,
	}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		// Fallback in case encoding fails
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

func requireSerial(serial string) (string, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return "", errSerialRequired
	}

	return serial, nil
}

func (s *APIServer) feedInterval() time.Duration {
	if d := time.Duration(s.feed.Interval); d > 0 {
		return d
	}

	return 100 * time.Millisecond
}
