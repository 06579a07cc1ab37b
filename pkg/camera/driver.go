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

package camera

import (
	"errors"
	"fmt"
	"sync"

	"github.com/carverauto/rscapture/pkg/logger"
	"github.com/carverauto/rscapture/pkg/models"
)

var errUnknownDriver = errors.New("unknown camera driver")

// New builds the driver selected by cfg.Type.
func New(cfg models.DriverConfig, log logger.Logger) (Driver, error) {
	switch cfg.Type {
	case models.DriverSynthetic, "":
		return NewSynthetic(cfg.Synthetic.Devices, log), nil
	case models.DriverPlayback:
		return NewPlayback(cfg.Playback.Dir, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownDriver, cfg.Type)
	}
}

// claims tracks which serials currently have an open handle.
type claims struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newClaims() *claims {
	return &claims{held: make(map[string]struct{})}
}

func (c *claims) acquire(serial string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.held[serial]; busy {
		return fmt.Errorf("open %s: %w", serial, ErrDeviceBusy)
	}

	c.held[serial] = struct{}{}

	return nil
}

func (c *claims) release(serial string) {
	c.mu.Lock()
	delete(c.held, serial)
	c.mu.Unlock()
}
