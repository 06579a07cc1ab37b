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
	"io"
	"net/http"

	"github.com/carverauto/rscapture/pkg/models"
	"github.com/carverauto/rscapture/pkg/swagger"
	"github.com/carverauto/rscapture/pkg/version"
)

func (s *APIServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := models.HealthResponse{
		Status:  "ok",
		Version: version.GetVersion(),
	}

	if s.sessions != nil {
		resp.Driver = s.sessions.DriverName()
		resp.Sessions = len(s.sessions.Sessions())
	}

	s.writeJSONResponse(w, http.StatusOK, resp)
}

func (s *APIServer) handleDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.sessions.ListDevices(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, devices)
}

func (s *APIServer) handleSessions(w http.ResponseWriter, _ *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, s.sessions.Sessions())
}

func (s *APIServer) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.stats == nil {
		s.writeJSONResponse(w, http.StatusOK, []models.DeviceStats{})
		return
	}

	s.writeJSONResponse(w, http.StatusOK, s.stats.Snapshot())
}

func (s *APIServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if s.config == nil {
		writeError(w, errNoConfig.Error(), http.StatusNotFound)
		return
	}

	filtered, err := models.FilterSensitiveFields(s.config)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, filtered)
}

func (s *APIServer) handleStartStream(w http.ResponseWriter, r *http.Request) {
	var req models.SerialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}

	serial, err := requireSerial(req.Serial)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	info, err := s.sessions.StartStream(r.Context(), serial)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, info)
}

func (s *APIServer) handleStopStream(w http.ResponseWriter, r *http.Request) {
	var req models.SerialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}

	serial, err := requireSerial(req.Serial)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	if err := s.sessions.StopStream(r.Context(), serial); err != nil {
		s.writeErr(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, models.StopStreamResponse{Serial: serial, State: models.SessionStopped})
}

func (s *APIServer) handleStopAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.sessions.StopAll(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, models.StopAllResponse{Stopped: n})
}

func (s *APIServer) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req models.CaptureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}

	serial, err := requireSerial(req.Serial)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	rec, err := s.sessions.Capture(r.Context(), serial, req.FolderName)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, models.CaptureResponse{Timestamp: rec.Timestamp, Files: rec.Files()})
}

func (s *APIServer) handleCalibration(w http.ResponseWriter, r *http.Request) {
	var req models.CaptureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}

	serial, err := requireSerial(req.Serial)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	res, err := s.sessions.GetCalibration(r.Context(), serial, req.FolderName)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, models.CalibrationResponse{Filename: res.Filename})
}

func (*APIServer) serveSwaggerJSON(w http.ResponseWriter, _ *http.Request) {
	doc, err := swagger.Doc()
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	_, _ = io.WriteString(w, doc)
}
