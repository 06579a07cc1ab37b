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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/rscapture/pkg/logger"
)

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer

	zl, err := newZerolog(context.Background(), &logger.Config{Level: "debug"}, &buf)
	require.NoError(t, err)

	log := logger.FromZerolog(zl)
	componentLogger := log.WithComponent("session")
	componentLogger.Info().Str("serial", "111").Msg("stream started")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "session", entry["component"])
	assert.Equal(t, "111", entry["serial"])
	assert.Equal(t, "stream started", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	zl, err := newZerolog(context.Background(), &logger.Config{Level: "warn"}, &buf)
	require.NoError(t, err)

	log := logger.FromZerolog(zl)

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.SetDebug(true)
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")

	log.SetLevel(zerolog.ErrorLevel)
	buf.Reset()
	log.Warn().Msg("hidden again")
	assert.Zero(t, buf.Len())
}

func TestCreateLoggerRejectsBadLevel(t *testing.T) {
	_, err := CreateLogger(context.Background(), &logger.Config{Level: "chatty"})
	require.Error(t, err)
}

func TestCreateComponentLogger(t *testing.T) {
	log, err := CreateComponentLogger(context.Background(), "api", &logger.Config{Level: "info"})
	require.NoError(t, err)
	assert.NotNil(t, log)

	require.NoError(t, ShutdownLogger())
}

func freeListener(t *testing.T) net.Listener {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	return ln
}

func TestRunHTTPServerGracefulShutdown(t *testing.T) {
	ln := freeListener(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan net.Addr, 1)
	hookRan := make(chan struct{}, 1)

	done := make(chan error, 1)

	go func() {
		done <- RunHTTPServer(ctx, &ServerOptions{
			ServiceName:     "test",
			Handler:         mux,
			Listener:        ln,
			ShutdownTimeout: time.Second,
			Ready:           func(addr net.Addr) { ready <- addr },
			ShutdownHooks: []ShutdownHook{
				func(context.Context) error {
					hookRan <- struct{}{}
					return fmt.Errorf("hook errors are logged only")
				},
			},
		})
	}()

	addr := <-ready

	resp, err := http.Get("http://" + addr.String() + "/ping")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	select {
	case <-hookRan:
	default:
		t.Fatal("shutdown hook did not run")
	}
}

func TestRunHTTPServerListenError(t *testing.T) {
	ln := freeListener(t)
	defer func() { _ = ln.Close() }()

	err := RunHTTPServer(context.Background(), &ServerOptions{
		ListenAddr: ln.Addr().String(),
		Handler:    http.NotFoundHandler(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
