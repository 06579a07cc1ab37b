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

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/carverauto/rscapture/pkg/camera"
)

var (
	// ErrNotStreaming is returned by data-path calls on a device that has no
	// active session.
	ErrNotStreaming = errors.New("device is not streaming")
	// ErrClosed is returned once the registry has been closed.
	ErrClosed = errors.New("session registry closed")

	errEmptyFrame = errors.New("driver returned an empty frame pair")
)

// hardwareErr makes sure a device failure carries a camera sentinel.
func hardwareErr(op, serial string, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, camera.ErrHardware),
		errors.Is(err, camera.ErrDeviceBusy),
		errors.Is(err, camera.ErrDeviceNotFound),
		errors.Is(err, camera.ErrEnumeration):
		return err
	default:
		return fmt.Errorf("%s %s: %w: %w", op, serial, camera.ErrHardware, err)
	}
}
