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

package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/rscapture/pkg/models"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "  "})
	require.ErrorIs(t, err, errBaseURLRequired)
}

func TestClientDevicesSendsAPIKey(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/devices", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))

		_ = json.NewEncoder(w).Encode([]models.Device{{Name: "Intel RealSense D435", Serial: "Cam1", ProductLine: "D400"}})
	}))

	devices, err := c.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "Cam1", devices[0].Serial)
}

func TestClientCapturePostsBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/capture", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.CaptureRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Cam1", req.Serial)
		assert.Equal(t, "run1", req.FolderName)

		_ = json.NewEncoder(w).Encode(models.CaptureResponse{
			Timestamp: "20250301_120000_000001",
			Files:     []string{"a.jpg", "a.png"},
		})
	}))

	resp, err := c.Capture(context.Background(), "Cam1", "run1")
	require.NoError(t, err)
	assert.Equal(t, "20250301_120000_000001", resp.Timestamp)
	assert.Len(t, resp.Files, 2)
}

func TestClientSurfacesErrorMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Message: "device Cam1 is not streaming", Status: http.StatusConflict})
	}))

	err := c.StopStream(context.Background(), "Cam1")
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "not streaming")
}

func TestClientNonJSONError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))

	_, err := c.StartStream(context.Background(), "Cam1")
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "gateway down")
}

func TestClientKeepsBasePath(t *testing.T) {
	var got string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Path
		_ = json.NewEncoder(w).Encode(models.CalibrationResponse{Filename: "x.json"})
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{BaseURL: srv.URL + "/rscapture"})
	require.NoError(t, err)

	resp, err := c.Calibration(context.Background(), "Cam1", "")
	require.NoError(t, err)
	assert.Equal(t, "x.json", resp.Filename)
	assert.Equal(t, "/rscapture/get_calibration_info", got)
}
