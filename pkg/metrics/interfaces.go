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

// Package metrics counts stream activity per device and exports the same
// counters through OpenTelemetry.
package metrics

//go:generate mockgen -destination=mock_recorder.go -package=metrics github.com/carverauto/rscapture/pkg/metrics Recorder

// Recorder receives stream activity from the session registry and the feed.
type Recorder interface {
	StreamStarted(serial string)
	StreamStopped(serial string)
	FrameServed(serial string)
	CaptureSaved(serial string)
	CalibrationSaved(serial string)
	Error(serial, op string)
}
