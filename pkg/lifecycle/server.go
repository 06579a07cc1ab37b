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

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/rscapture/pkg/logger"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
)

// ShutdownHook runs after the listener stops accepting requests.
type ShutdownHook func(ctx context.Context) error

// ServerOptions configures RunHTTPServer.
type ServerOptions struct {
	ListenAddr      string
	ServiceName     string
	Handler         http.Handler
	Logger          logger.Logger
	ShutdownTimeout time.Duration
	// ShutdownHooks run in order once the HTTP server has drained.
	ShutdownHooks []ShutdownHook
	// Listener overrides ListenAddr when set.
	Listener net.Listener
	// Ready, when set, receives the bound address once serving starts.
	Ready func(addr net.Addr)
}

// RunHTTPServer serves until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts the server down gracefully and runs the shutdown hooks.
func RunHTTPServer(ctx context.Context, opts *ServerOptions) error {
	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln := opts.Listener
	if ln == nil {
		var err error

		ln, err = net.Listen("tcp", opts.ListenAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", opts.ListenAddr, err)
		}
	}

	// No WriteTimeout: the video feed is a long-lived response.
	srv := &http.Server{
		Handler:           opts.Handler,
		ReadHeaderTimeout: defaultReadTimeout,
		IdleTimeout:       defaultIdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Serve(ln)
	}()

	log.Info().
		Str("service", opts.ServiceName).
		Str("addr", ln.Addr().String()).
		Msg("HTTP server listening")

	if opts.Ready != nil {
		opts.Ready(ln.Addr())
	}

	var serveErr error

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info().Str("service", opts.ServiceName).Msg("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server did not drain before timeout")
		_ = srv.Close()
	}

	for _, hook := range opts.ShutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Shutdown hook failed")
		}
	}

	log.Info().Str("service", opts.ServiceName).Msg("Server stopped")

	return serveErr
}
