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

// Package console is a terminal front end for the rscapture service.
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/carverauto/rscapture/pkg/models"
)

const defaultHTTPTimeout = 15 * time.Second

var (
	errBaseURLRequired = errors.New("service base url is required")
	// ErrStatus is wrapped by every non-2xx response.
	ErrStatus = errors.New("unexpected response status")
)

// ClientConfig controls how the service client behaves.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	HTTP    *http.Client
}

// Client is a typed HTTP client for the rscapture endpoints.
type Client struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
}

// NewClient constructs a Client for the service at cfg.BaseURL.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errBaseURLRequired
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid service base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: parsed, apiKey: cfg.APIKey, client: httpClient}, nil
}

func (c *Client) Devices(ctx context.Context) ([]models.Device, error) {
	var out []models.Device
	if err := c.do(ctx, http.MethodGet, "/devices", nil, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) Sessions(ctx context.Context) ([]models.SessionInfo, error) {
	var out []models.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/sessions", nil, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) StartStream(ctx context.Context, serial string) (*models.SessionInfo, error) {
	var out models.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/start_stream", models.SerialRequest{Serial: serial}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) StopStream(ctx context.Context, serial string) error {
	return c.do(ctx, http.MethodPost, "/stop_stream", models.SerialRequest{Serial: serial}, nil)
}

func (c *Client) Capture(ctx context.Context, serial, folder string) (*models.CaptureResponse, error) {
	var out models.CaptureResponse
	req := models.CaptureRequest{Serial: serial, FolderName: folder}
	if err := c.do(ctx, http.MethodPost, "/capture", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) Calibration(ctx context.Context, serial, folder string) (*models.CalibrationResponse, error) {
	var out models.CalibrationResponse
	req := models.CaptureRequest{Serial: serial, FolderName: folder}
	if err := c.do(ctx, http.MethodPost, "/get_calibration_info", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) do(ctx context.Context, method, route string, body, out interface{}) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", route, err)
		}

		reader = bytes.NewReader(payload)
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, route)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", route, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", route, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr models.ErrorResponse

		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, apiErr.Message)
		}

		return fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", route, err)
	}

	return nil
}
