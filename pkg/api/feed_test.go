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

package api

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/carverauto/rscapture/pkg/camera"
	"github.com/carverauto/rscapture/pkg/capture"
	"github.com/carverauto/rscapture/pkg/logger"
	"github.com/carverauto/rscapture/pkg/metrics"
	"github.com/carverauto/rscapture/pkg/models"
	"github.com/carverauto/rscapture/pkg/session"
)

func writeFile(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600)
}

type liveServer struct {
	url   string
	root  string
	stats *metrics.Manager
}

// newLiveServer runs the API over a real registry with one synthetic Cam1.
func newLiveServer(t *testing.T) *liveServer {
	t.Helper()

	log := logger.NewTestLogger()
	stream := models.StreamSettings{Width: 32, Height: 24, FPS: 60, Prefetch: true}

	stats, err := metrics.NewManager(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	root := filepath.Join(t.TempDir(), "capture")
	driver := camera.NewSynthetic([]models.SyntheticDevice{{Name: "Cam1", Serial: "111"}}, log)

	registry := session.New(driver, capture.NewStore(root, 80, log), nil, stats,
		session.Options{Stream: camera.StreamConfigFrom(stream), Prefetch: stream.Prefetch}, log)

	srv := NewAPIServer(models.CORSConfig{},
		WithSessionManager(registry),
		WithMetrics(stats),
		WithLogger(log),
		WithVideoFeed(models.VideoFeedConfig{
			Interval:    models.Duration(10 * time.Millisecond),
			JPEGQuality: 75,
			DepthAlpha:  0.03,
			DefaultView: "color",
		}, stream),
	)

	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ts.Close()
		_ = registry.Close(context.Background())
	})

	return &liveServer{url: ts.URL, root: root, stats: stats}
}

func (l *liveServer) post(t *testing.T, path, body string, out interface{}) int {
	t.Helper()

	resp, err := http.Post(l.url+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func TestCam1ScenarioOverHTTP(t *testing.T) {
	l := newLiveServer(t)

	resp, err := http.Get(l.url + "/devices")
	require.NoError(t, err)

	var devices []models.Device
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&devices))
	_ = resp.Body.Close()

	require.Equal(t, []models.Device{{Name: "Cam1", Serial: "111", ProductLine: "D400"}}, devices)

	var info models.SessionInfo
	require.Equal(t, http.StatusOK, l.post(t, "/start_stream", `{"serial":"111"}`, &info))
	assert.Equal(t, models.SessionStreaming, info.State)

	var again models.SessionInfo
	require.Equal(t, http.StatusOK, l.post(t, "/start_stream", `{"serial":"111"}`, &again))
	assert.Equal(t, info.ID, again.ID)

	var captured models.CaptureResponse
	require.Equal(t, http.StatusOK, l.post(t, "/capture", `{"serial":"111","folder_name":"test"}`, &captured))
	require.Len(t, captured.Files, 2)

	assert.Equal(t, filepath.Join(l.root, "test", "111_"+captured.Timestamp+".jpg"), captured.Files[0])
	assert.Equal(t, filepath.Join(l.root, "test", "111_"+captured.Timestamp+".png"), captured.Files[1])

	for _, f := range captured.Files {
		assert.FileExists(t, f)
	}

	var cal models.CalibrationResponse
	require.Equal(t, http.StatusOK, l.post(t, "/get_calibration_info", `{"serial":"111","folder_name":"test"}`, &cal))
	assert.Equal(t, filepath.Join(l.root, "test", "111_32x24_calibration.json"), cal.Filename)

	var stopped models.StopStreamResponse
	require.Equal(t, http.StatusOK, l.post(t, "/stop_stream", `{"serial":"111"}`, &stopped))
	assert.Equal(t, models.SessionStopped, stopped.State)

	var errResp models.ErrorResponse
	require.Equal(t, http.StatusConflict, l.post(t, "/capture", `{"serial":"111","folder_name":"test"}`, &errResp))

	require.Equal(t, http.StatusNotFound, l.post(t, "/start_stream", `{"serial":"999"}`, &errResp))
}

// readPart reads one JPEG part off a multipart feed.
func readPart(t *testing.T, mr *multipart.Reader) []byte {
	t.Helper()

	p, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", p.Header.Get("Content-Type"))

	data, err := io.ReadAll(p)
	require.NoError(t, err)
	require.Greater(t, len(data), 2)
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])

	return data
}

func TestVideoFeedPicksUpStreamAfterStart(t *testing.T) {
	l := newLiveServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url+"/video_feed?serial=111&view=both", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/x-mixed-replace", mediaType)
	assert.Equal(t, "frame", params["boundary"])

	mr := multipart.NewReader(resp.Body, params["boundary"])

	// Not streaming yet: fallback frames.
	readPart(t, mr)
	readPart(t, mr)
	assert.Empty(t, l.stats.Snapshot())

	require.Equal(t, http.StatusOK, l.post(t, "/start_stream", `{"serial":"111"}`, nil))

	deadline := time.Now().Add(5 * time.Second)

	for {
		readPart(t, mr)

		if stats := l.stats.Snapshot(); len(stats) == 1 && stats[0].FramesServed > 0 {
			break
		}

		if time.Now().After(deadline) {
			t.Fatal("feed never served a live frame")
		}
	}
}

func TestVideoFeedWebSocket(t *testing.T) {
	l := newLiveServer(t)

	require.Equal(t, http.StatusOK, l.post(t, "/start_stream", `{"serial":"111"}`, nil))

	wsURL := "ws" + strings.TrimPrefix(l.url, "http") + "/ws/video_feed?serial=111&view=depth"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	_ = resp.Body.Close()

	defer func() { _ = conn.Close() }()

	for i := 0; i < 3; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

		kind, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.BinaryMessage, kind)
		assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])
	}
}

func TestVideoFeedWebSocketRejectsForeignOrigin(t *testing.T) {
	l := newLiveServer(t)

	wsURL := "ws" + strings.TrimPrefix(l.url, "http") + "/ws/video_feed?serial=111"

	header := http.Header{}
	header.Set("Origin", "http://evil.example")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSessionsAndStatsEndpoints(t *testing.T) {
	l := newLiveServer(t)

	require.Equal(t, http.StatusOK, l.post(t, "/start_stream", `{"serial":"111"}`, nil))

	resp, err := http.Get(l.url + "/sessions")
	require.NoError(t, err)

	var sessions []models.SessionInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sessions))
	_ = resp.Body.Close()

	require.Len(t, sessions, 1)
	assert.Equal(t, "111", sessions[0].Serial)
	assert.Equal(t, 32, sessions[0].Width)

	resp, err = http.Get(l.url + "/stats")
	require.NoError(t, err)

	var stats []models.DeviceStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	_ = resp.Body.Close()

	require.Len(t, stats, 1)
	assert.True(t, stats[0].Streaming)

	var all models.StopAllResponse
	require.Equal(t, http.StatusOK, l.post(t, "/stop_all", "", &all))
	assert.Equal(t, 1, all.Stopped)
}
