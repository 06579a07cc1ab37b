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

package models

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// SerialRequest is the body of start_stream and stop_stream.
type SerialRequest struct {
	Serial string `json:"serial"`
}

// CaptureRequest is the body of capture and get_calibration_info.
type CaptureRequest struct {
	Serial     string `json:"serial"`
	FolderName string `json:"folder_name,omitempty"`
}

type StopStreamResponse struct {
	Serial string       `json:"serial"`
	State  SessionState `json:"state"`
}

type StopAllResponse struct {
	Stopped int `json:"stopped"`
}

type CaptureResponse struct {
	Timestamp string   `json:"timestamp"`
	Files     []string `json:"files"`
}

type CalibrationResponse struct {
	Filename string `json:"filename"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Driver   string `json:"driver"`
	Sessions int    `json:"sessions"`
}
