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

// Package camera defines the frame-source boundary of the service and the
// drivers behind it.
package camera

//go:generate mockgen -destination=mock_camera.go -package=camera github.com/carverauto/rscapture/pkg/camera Driver,Handle

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/carverauto/rscapture/pkg/models"
)

var (
	// ErrEnumeration means the driver could not list devices at all.
	ErrEnumeration = errors.New("device enumeration failed")
	// ErrDeviceNotFound means the serial is not in the current enumeration.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrDeviceBusy means the device is held by another handle.
	ErrDeviceBusy = errors.New("device busy")
	// ErrHardware covers open, read and calibration failures of a device.
	ErrHardware = errors.New("hardware error")
)

// StreamConfig is what a handle is opened with.
type StreamConfig struct {
	Width           int
	Height          int
	FPS             int
	EnableIREmitter bool
	AlignDepth      bool
	// Preset is applied on Open, after the fields above.
	Preset Preset
}

// StreamConfigFrom converts the configured stream settings.
func StreamConfigFrom(s models.StreamSettings) StreamConfig {
	return StreamConfig{
		Width:           s.Width,
		Height:          s.Height,
		FPS:             s.FPS,
		EnableIREmitter: s.EnableIREmitter,
		AlignDepth:      s.AlignDepth,
	}
}

// FrameInterval is the time between frames at the configured rate.
func (c StreamConfig) FrameInterval() time.Duration {
	if c.FPS <= 0 {
		return 0
	}

	return time.Second / time.Duration(c.FPS)
}

// FramePair is one color image with the depth image captured alongside it.
// Depth values are z16 units, millimeters for every bundled driver.
type FramePair struct {
	Color      *image.RGBA
	Depth      *image.Gray16
	Sequence   uint64
	CapturedAt time.Time
}

// Empty reports whether either image is missing.
func (p FramePair) Empty() bool {
	return p.Color == nil || p.Depth == nil ||
		p.Color.Bounds().Empty() || p.Depth.Bounds().Empty()
}

// Enumerator lists attached devices.
type Enumerator interface {
	Devices(ctx context.Context) ([]models.Device, error)
}

// FrameSource acquires exclusive handles to devices.
type FrameSource interface {
	Open(ctx context.Context, serial string, cfg StreamConfig) (Handle, error)
}

// Handle is an open device. Reads on one handle are not safe for concurrent
// use; callers serialize them.
type Handle interface {
	Serial() string
	ReadFrame(ctx context.Context) (FramePair, error)
	ReadCalibration(ctx context.Context) (*models.Calibration, error)
	Close() error
}

// Driver is a complete camera backend.
type Driver interface {
	Enumerator
	FrameSource
	Name() string
}
