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
	"errors"
	"net/http"

	"github.com/carverauto/rscapture/pkg/camera"
	"github.com/carverauto/rscapture/pkg/capture"
	"github.com/carverauto/rscapture/pkg/session"
)

var (
	errSerialRequired = errors.New("serial is required")
	errEmptyBody      = errors.New("request body is required")
	errBadRequest     = errors.New("invalid request body")
	errNoConfig       = errors.New("configuration not available")
	errInvalidView    = errors.New("invalid view")
)

// statusFor maps registry and store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, capture.ErrInvalidFolder), errors.Is(err, errSerialRequired),
		errors.Is(err, errEmptyBody), errors.Is(err, errBadRequest), errors.Is(err, errInvalidView):
		return http.StatusBadRequest
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, camera.ErrDeviceNotFound):
		return http.StatusNotFound
	case errors.Is(err, camera.ErrDeviceBusy), errors.Is(err, session.ErrNotStreaming):
		return http.StatusConflict
	case errors.Is(err, camera.ErrEnumeration), errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, camera.ErrHardware):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeErr writes err with its mapped status. Server-side failures are
// logged; client errors are not.
func (s *APIServer) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Msg("Request failed")
	}

	writeError(w, err.Error(), status)
}
