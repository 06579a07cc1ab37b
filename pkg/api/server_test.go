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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/rscapture/pkg/camera"
	"github.com/carverauto/rscapture/pkg/capture"
	"github.com/carverauto/rscapture/pkg/logger"
	"github.com/carverauto/rscapture/pkg/models"
	"github.com/carverauto/rscapture/pkg/session"
)

var errDisk = errors.New("disk full")

func newMockServer(t *testing.T, opts ...func(*APIServer)) (*APIServer, *MockSessionManager) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := NewMockSessionManager(ctrl)

	opts = append([]func(*APIServer){
		WithSessionManager(m),
		WithLogger(logger.NewTestLogger()),
	}, opts...)

	return NewAPIServer(models.CORSConfig{AllowedOrigins: []string{"http://panel.local"}}, opts...), m
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", capture.ErrInvalidFolder), http.StatusBadRequest},
		{errSerialRequired, http.StatusBadRequest},
		{errEmptyBody, http.StatusBadRequest},
		{fmt.Errorf("%w: eof", errBadRequest), http.StatusBadRequest},
		{fmt.Errorf("111: %w", camera.ErrDeviceNotFound), http.StatusNotFound},
		{fmt.Errorf("open 111: %w", camera.ErrDeviceBusy), http.StatusConflict},
		{fmt.Errorf("111: %w", session.ErrNotStreaming), http.StatusConflict},
		{fmt.Errorf("%w: usb", camera.ErrEnumeration), http.StatusServiceUnavailable},
		{session.ErrClosed, http.StatusServiceUnavailable},
		{fmt.Errorf("read 111: %w", camera.ErrHardware), http.StatusBadGateway},
		{fmt.Errorf("%w: rename", capture.ErrIO), http.StatusInternalServerError},
		{errDisk, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestDevicesEndpoint(t *testing.T) {
	srv, m := newMockServer(t)

	m.EXPECT().ListDevices(gomock.Any()).Return([]models.Device{{Name: "Cam1", Serial: "111", ProductLine: "D400"}}, nil)

	rec := doJSON(t, srv, http.MethodGet, "/devices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"name":"Cam1","serial":"111","product_line":"D400"}]`, rec.Body.String())
}

func TestDevicesEnumerationFailure(t *testing.T) {
	srv, m := newMockServer(t)

	m.EXPECT().ListDevices(gomock.Any()).Return(nil, fmt.Errorf("%w: usb", camera.ErrEnumeration))

	rec := doJSON(t, srv, http.MethodGet, "/devices", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, http.StatusServiceUnavailable, decodeError(t, rec).Status)
}

func TestStartStreamValidation(t *testing.T) {
	srv, _ := newMockServer(t)

	for name, body := range map[string]string{
		"empty body":     "",
		"bad json":       "{serial",
		"missing serial": `{}`,
		"blank serial":   `{"serial":"  "}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/start_stream", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestStartStreamErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("999: %w", camera.ErrDeviceNotFound), http.StatusNotFound},
		{"busy", fmt.Errorf("open 111: %w", camera.ErrDeviceBusy), http.StatusConflict},
		{"hardware", fmt.Errorf("open 111: %w", camera.ErrHardware), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, m := newMockServer(t)
			m.EXPECT().StartStream(gomock.Any(), "111").Return(nil, tt.err)

			rec := doJSON(t, srv, http.MethodPost, "/start_stream", `{"serial":"111"}`)
			require.Equal(t, tt.want, rec.Code)

			resp := decodeError(t, rec)
			assert.Equal(t, tt.want, resp.Status)
			assert.Equal(t, tt.err.Error(), resp.Message)
		})
	}
}

func TestStopStreamRequiresSerial(t *testing.T) {
	srv, _ := newMockServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/stop_stream", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStopStreamNeverStarted(t *testing.T) {
	srv, m := newMockServer(t)
	m.EXPECT().StopStream(gomock.Any(), "never").Return(nil)

	rec := doJSON(t, srv, http.MethodPost, "/stop_stream", `{"serial":"never"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"serial":"never","state":"stopped"}`, rec.Body.String())
}

func TestStopAllEndpoint(t *testing.T) {
	srv, m := newMockServer(t)
	m.EXPECT().StopAll(gomock.Any()).Return(2, nil)

	rec := doJSON(t, srv, http.MethodPost, "/stop_all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stopped":2}`, rec.Body.String())
}

func TestCaptureEndpoint(t *testing.T) {
	srv, m := newMockServer(t)
	m.EXPECT().Capture(gomock.Any(), "111", "test").Return(&models.CaptureRecord{
		Folder:    "test",
		Serial:    "111",
		Timestamp: "20250101_120000_000001",
		ColorFile: "capture/test/111_20250101_120000_000001.jpg",
		DepthFile: "capture/test/111_20250101_120000_000001.png",
	}, nil)

	rec := doJSON(t, srv, http.MethodPost, "/capture", `{"serial":"111","folder_name":"test"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"timestamp":"20250101_120000_000001",
		"files":["capture/test/111_20250101_120000_000001.jpg","capture/test/111_20250101_120000_000001.png"]
	}`, rec.Body.String())
}

func TestCaptureErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not streaming", fmt.Errorf("111: %w", session.ErrNotStreaming), http.StatusConflict},
		{"bad folder", fmt.Errorf("%w: \"../x\"", capture.ErrInvalidFolder), http.StatusBadRequest},
		{"io", fmt.Errorf("%w: %w", capture.ErrIO, errDisk), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, m := newMockServer(t)
			m.EXPECT().Capture(gomock.Any(), "111", gomock.Any()).Return(nil, tt.err)

			rec := doJSON(t, srv, http.MethodPost, "/capture", `{"serial":"111","folder_name":"x"}`)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCalibrationEndpoint(t *testing.T) {
	srv, m := newMockServer(t)
	m.EXPECT().GetCalibration(gomock.Any(), "111", "").Return(&models.CalibrationResult{
		Filename: "capture/default/111_640x480_calibration.json",
	}, nil)

	rec := doJSON(t, srv, http.MethodPost, "/get_calibration_info", `{"serial":"111"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"filename":"capture/default/111_640x480_calibration.json"}`, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newMockServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/start_stream", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv, m := newMockServer(t)
	m.EXPECT().DriverName().Return("synthetic")
	m.EXPECT().Sessions().Return([]models.SessionInfo{{Serial: "111"}})

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "synthetic", resp.Driver)
	assert.Equal(t, 1, resp.Sessions)
}

func TestAPIKeyRequired(t *testing.T) {
	srv, m := newMockServer(t, WithAPIKey("secret"))
	m.EXPECT().DriverName().Return("synthetic").AnyTimes()
	m.EXPECT().Sessions().Return(nil).AnyTimes()
	m.EXPECT().ListDevices(gomock.Any()).Return([]models.Device{}, nil)

	rec := doJSON(t, srv, http.MethodGet, "/devices", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays open.
	rec = doJSON(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/devices", nil)
	req.Header.Set("X-API-Key", "secret")

	ok := httptest.NewRecorder()
	srv.ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newMockServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/start_stream", nil)
	req.Header.Set("Origin", "http://panel.local")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://panel.local", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestConfigEndpointRedactsSecrets(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.APIKey = "secret"
	cfg.Events.Creds = "/etc/nats/user.creds"

	srv, _ := newMockServer(t, WithConfig(cfg))

	rec := doJSON(t, srv, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "secret")
	assert.NotContains(t, body, "user.creds")
	assert.Contains(t, body, `"listen_addr":":5000"`)
}

func TestConfigEndpointWithoutConfig(t *testing.T) {
	srv, _ := newMockServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/config", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSwaggerDoc(t *testing.T) {
	srv, _ := newMockServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Info  map[string]interface{}     `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "rscapture API", doc.Info["title"])
	assert.Contains(t, doc.Paths, "/capture")
	assert.Contains(t, doc.Paths, "/start_stream")
}

func TestSnapshotFallbackWhenNotStreaming(t *testing.T) {
	srv, m := newMockServer(t, WithVideoFeed(models.VideoFeedConfig{
		JPEGQuality: 70, DepthAlpha: 0.03, DefaultView: "color",
	}, models.StreamSettings{Width: 64, Height: 48}))
	m.EXPECT().LatestFrame(gomock.Any(), "111").Return(camera.FramePair{}, session.ErrNotStreaming)

	rec := doJSON(t, srv, http.MethodGet, "/video_feed/snapshot?serial=111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "true", rec.Header().Get("X-Frame-Fallback"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xFF, 0xD8}))
}

func TestFallbackMatchesLiveFrameSize(t *testing.T) {
	srv, m := newMockServer(t, WithVideoFeed(models.VideoFeedConfig{
		JPEGQuality: 70, DepthAlpha: 0.03, DefaultView: "color",
	}, models.StreamSettings{Width: 64, Height: 48}))
	m.EXPECT().LatestFrame(gomock.Any(), "111").Return(camera.FramePair{}, session.ErrNotStreaming).Times(3)

	for view, wantWidth := range map[string]int{"color": 64, "depth": 64, "both": 128} {
		rec := doJSON(t, srv, http.MethodGet, "/video_feed/snapshot?serial=111&view="+view, "")
		require.Equal(t, http.StatusOK, rec.Code, view)

		cfg, err := jpeg.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err, view)
		assert.Equal(t, wantWidth, cfg.Width, view)
		assert.Equal(t, 48, cfg.Height, view)
	}
}

func TestSnapshotValidation(t *testing.T) {
	srv, _ := newMockServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/video_feed/snapshot", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/video_feed/snapshot?serial=111&view=infrared", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(dir, "index.html", "<html>panel</html>"))

	srv, m := newMockServer(t, WithWebRoot(dir))
	m.EXPECT().ListDevices(gomock.Any()).Return([]models.Device{}, nil)

	rec := doJSON(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "panel")

	// API routes still win over the file server.
	rec = doJSON(t, srv, http.MethodGet, "/devices", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
