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

import "time"

// CloudEvent is a CloudEvents 1.0 envelope in structured JSON mode.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// Event types published by the service.
const (
	EventSessionStarted   = "session.started"
	EventSessionStopped   = "session.stopped"
	EventCaptureSaved     = "capture.saved"
	EventCalibrationSaved = "calibration.saved"
)

type SessionEventData struct {
	SessionID string    `json:"session_id"`
	Serial    string    `json:"serial"`
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

type CaptureEventData struct {
	Serial    string   `json:"serial"`
	Folder    string   `json:"folder"`
	Timestamp string   `json:"timestamp"`
	Files     []string `json:"files"`
}

type CalibrationEventData struct {
	Serial   string `json:"serial"`
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}
