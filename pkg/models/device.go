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

import (
	"fmt"
	"strings"
	"time"
)

// PlatformCameraName is the name reported by built-in laptop cameras, which
// are never offered for streaming.
const PlatformCameraName = "Platform Camera"

// Device is one attached depth camera as reported by enumeration.
type Device struct {
	Name        string `json:"name"`
	Serial      string `json:"serial"`
	ProductLine string `json:"product_line"`
}

// IsPlatformCamera reports whether d is a built-in camera to be hidden.
func (d Device) IsPlatformCamera() bool {
	return strings.EqualFold(strings.TrimSpace(d.Name), PlatformCameraName)
}

// SessionState is the streaming state of one device.
type SessionState string

const (
	SessionStopped   SessionState = "stopped"
	SessionStreaming SessionState = "streaming"
)

// SessionInfo is the public view of a streaming session.
type SessionInfo struct {
	ID            string       `json:"id"`
	Serial        string       `json:"serial"`
	State         SessionState `json:"state"`
	StartedAt     time.Time    `json:"started_at"`
	FramesRead    uint64       `json:"frames_read"`
	LastFrameAt   *time.Time   `json:"last_frame_at,omitempty"`
	LastCaptureTS string       `json:"last_capture_timestamp,omitempty"`
	Width         int          `json:"width"`
	Height        int          `json:"height"`
	FPS           int          `json:"fps"`
}

// View selects which images the video feed renders.
type View string

const (
	ViewColor View = "color"
	ViewDepth View = "depth"
	ViewBoth  View = "both"
)

// ParseView maps a query value onto a View. Empty is not accepted here;
// callers substitute their default first.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case ViewColor:
		return ViewColor, nil
	case ViewDepth:
		return ViewDepth, nil
	case ViewBoth:
		return ViewBoth, nil
	default:
		return "", fmt.Errorf("%w: %q (expected color, depth or both)", errInvalidView, s)
	}
}
