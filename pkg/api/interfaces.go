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
	"context"

	"github.com/carverauto/rscapture/pkg/camera"
	"github.com/carverauto/rscapture/pkg/models"
)

//go:generate mockgen -destination=mock_api.go -package=api github.com/carverauto/rscapture/pkg/api SessionManager

// SessionManager is the registry as seen by the HTTP handlers.
type SessionManager interface {
	ListDevices(ctx context.Context) ([]models.Device, error)
	StartStream(ctx context.Context, serial string) (*models.SessionInfo, error)
	StopStream(ctx context.Context, serial string) error
	StopAll(ctx context.Context) (int, error)
	LatestFrame(ctx context.Context, serial string) (camera.FramePair, error)
	Capture(ctx context.Context, serial, folder string) (*models.CaptureRecord, error)
	GetCalibration(ctx context.Context, serial, folder string) (*models.CalibrationResult, error)
	Sessions() []models.SessionInfo
	DriverName() string
}

// StatsProvider serves the per-device counters.
type StatsProvider interface {
	Snapshot() []models.DeviceStats
}
