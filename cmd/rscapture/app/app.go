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

// Package app wires the rscapture service together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"github.com/carverauto/rscapture/pkg/api"
	"github.com/carverauto/rscapture/pkg/camera"
	"github.com/carverauto/rscapture/pkg/capture"
	"github.com/carverauto/rscapture/pkg/config"
	"github.com/carverauto/rscapture/pkg/config/kvnats"
	"github.com/carverauto/rscapture/pkg/lifecycle"
	"github.com/carverauto/rscapture/pkg/logger"
	"github.com/carverauto/rscapture/pkg/metrics"
	"github.com/carverauto/rscapture/pkg/models"
	"github.com/carverauto/rscapture/pkg/natsutil"
	"github.com/carverauto/rscapture/pkg/session"
	"github.com/carverauto/rscapture/pkg/version"
)

const serviceName = "rscapture"

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
	// Listener replaces cfg.ListenAddr when set.
	Listener net.Listener
	// Ready receives the bound address once the server is serving.
	Ready func(addr net.Addr)
}

// Run boots the service and blocks until ctx is cancelled or a shutdown
// signal arrives.
func Run(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := LoadConfig(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	// Initialize basic logger first (without trace context)
	basicLogger, err := lifecycle.CreateComponentLogger(ctx, "rscapture-main", cfg.Logging)
	if err != nil {
		return err
	}

	tp, ctxWithTrace, rootSpan, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		Logger:         basicLogger,
		OTel:           &cfg.Logging.OTel,
	})
	if err != nil {
		return err
	}

	ctx = ctxWithTrace

	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			basicLogger.Error().Err(err).Msg("Error shutting down tracer provider")
		}

		rootSpan.End()
	}()

	// Create trace-aware logger (this will have trace_id and span_id)
	mainLogger, err := lifecycle.CreateComponentLogger(ctx, "rscapture-main", cfg.Logging)
	if err != nil {
		return err
	}

	defer func() {
		if err := lifecycle.ShutdownLogger(); err != nil {
			mainLogger.Error().Err(err).Msg("Error shutting down logger")
		}
	}()

	if _, err := logger.InitializeMetrics(ctx, logger.MetricsConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		OTel:           &cfg.Logging.OTel,
	}); err != nil && !errors.Is(err, logger.ErrOTelMetricsDisabled) {
		return err
	}

	metricsManager, err := metrics.NewManager(otel.Meter(serviceName))
	if err != nil {
		return err
	}

	driver, err := camera.New(cfg.Driver, mainLogger)
	if err != nil {
		return err
	}

	stream := camera.StreamConfigFrom(cfg.Stream)
	if cfg.Stream.PresetFile != "" {
		if stream.Preset, err = camera.LoadPreset(cfg.Stream.PresetFile); err != nil {
			return err
		}
	}

	store := capture.NewStore(cfg.CaptureDir, cfg.VideoFeed.JPEGQuality, mainLogger)

	events, nc, err := connectEvents(ctx, &cfg.Events, mainLogger)
	if err != nil {
		return err
	}

	registry := session.New(driver, store, events, metricsManager, session.Options{
		Stream:   stream,
		Prefetch: cfg.Stream.Prefetch,
	}, mainLogger)

	apiServer := api.NewAPIServer(cfg.CORS,
		api.WithSessionManager(registry),
		api.WithMetrics(metricsManager),
		api.WithLogger(mainLogger),
		api.WithVideoFeed(cfg.VideoFeed, cfg.Stream),
		api.WithAPIKey(cfg.APIKey),
		api.WithWebRoot(cfg.WebRoot),
		api.WithConfig(cfg),
		api.WithServiceName(serviceName),
	)

	mainLogger.Info().
		Str("driver", driver.Name()).
		Str("capture_dir", cfg.CaptureDir).
		Bool("events", nc != nil).
		Str("version", version.GetFullVersion()).
		Msg("Starting rscapture")

	hooks := []lifecycle.ShutdownHook{
		registry.Close,
	}

	if nc != nil {
		hooks = append(hooks, func(context.Context) error {
			return nc.Drain()
		})
	}

	return lifecycle.RunHTTPServer(ctx, &lifecycle.ServerOptions{
		ListenAddr:      cfg.ListenAddr,
		ServiceName:     serviceName,
		Handler:         apiServer.Handler(),
		Logger:          mainLogger,
		ShutdownTimeout: time.Duration(cfg.ShutdownTimeout),
		ShutdownHooks:   hooks,
		Listener:        opts.Listener,
		Ready:           opts.Ready,
	})
}

func connectEvents(ctx context.Context, cfg *models.EventsConfig, log logger.Logger) (session.EventPublisher, *nats.Conn, error) {
	if !cfg.Enabled {
		return natsutil.NoopPublisher{}, nil, nil
	}

	publisher, nc, err := natsutil.ConnectWithEventPublisher(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up event publishing: %w", err)
	}

	log.Info().
		Str("stream", publisher.Stream()).
		Str("url", cfg.NATSURL).
		Msg("Publishing events to NATS JetStream")

	return publisher, nc, nil
}

// LoadConfig reads the service configuration from the source selected by
// CONFIG_SOURCE. With the file source, a missing file yields the defaults.
func LoadConfig(ctx context.Context, path string) (*models.Config, error) {
	cfg := models.DefaultConfig()
	loader := config.NewConfig(nil)

	if config.Source() == "kv" {
		store, err := kvnats.Connect(ctx, kvURL(), os.Getenv("RSCAPTURE_KV_BUCKET"))
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()

		loader.SetKVStore(store)
	}

	err := loader.LoadAndValidate(ctx, path, cfg)
	if errors.Is(err, config.ErrConfigFileMissing) && config.Source() == "file" {
		cfg = models.DefaultConfig()
		err = cfg.Validate()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if cfg.Logging == nil {
		cfg.Logging = logger.DefaultConfig()
	}

	return cfg, nil
}

// SeedKV writes the file at path into the KV bucket unless the key already
// exists there.
func SeedKV(ctx context.Context, path string) (bool, error) {
	var doc models.Config

	if err := (&config.FileConfigLoader{}).Load(ctx, path, &doc); err != nil {
		return false, err
	}

	store, err := kvnats.Connect(ctx, kvURL(), os.Getenv("RSCAPTURE_KV_BUCKET"))
	if err != nil {
		return false, err
	}
	defer func() { _ = store.Close() }()

	return config.Seed(ctx, store, path, &doc)
}

func kvURL() string {
	if u := strings.TrimSpace(os.Getenv("RSCAPTURE_KV_URL")); u != "" {
		return u
	}

	return nats.DefaultURL
}
