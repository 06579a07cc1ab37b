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

// DeviceStats are the per-serial counters kept since process start.
type DeviceStats struct {
	Serial         string    `json:"serial"`
	StreamsStarted int64     `json:"streams_started"`
	FramesServed   int64     `json:"frames_served"`
	Captures       int64     `json:"captures"`
	Calibrations   int64     `json:"calibrations"`
	Errors         int64     `json:"errors"`
	Streaming      bool      `json:"streaming"`
	LastActivity   time.Time `json:"last_activity"`
}
