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

// CaptureRecord describes one saved color/depth pair.
type CaptureRecord struct {
	Folder     string    `json:"folder"`
	Serial     string    `json:"serial"`
	Timestamp  string    `json:"timestamp"`
	ColorFile  string    `json:"color_file"`
	DepthFile  string    `json:"depth_file"`
	CapturedAt time.Time `json:"captured_at"`
}

// Files lists the written paths, color first.
func (r *CaptureRecord) Files() []string {
	return []string{r.ColorFile, r.DepthFile}
}

// Intrinsics is a pinhole camera model in pixels.
type Intrinsics struct {
	FX     float64   `json:"fx"`
	FY     float64   `json:"fy"`
	CX     float64   `json:"cx"`
	CY     float64   `json:"cy"`
	Model  string    `json:"model,omitempty"`
	Coeffs []float64 `json:"coeffs,omitempty"`
}

// Extrinsics maps depth-camera coordinates into color-camera coordinates.
// Rotation is column-major 3x3, translation in meters.
type Extrinsics struct {
	Rotation    [9]float64 `json:"rotation"`
	Translation [3]float64 `json:"translation"`
}

// Calibration is the document written by get_calibration_info.
type Calibration struct {
	Serial     string     `json:"serial"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Color      Intrinsics `json:"color"`
	Depth      Intrinsics `json:"depth"`
	Extrinsics Extrinsics `json:"extrinsics"`
	DepthScale float64    `json:"depth_scale,omitempty"`
}

// CalibrationResult reports where a calibration was saved.
type CalibrationResult struct {
	Filename    string       `json:"filename"`
	Calibration *Calibration `json:"calibration"`
}
