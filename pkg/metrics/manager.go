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

package metrics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/rscapture/pkg/models"
)

const meterName = "github.com/carverauto/rscapture"

type deviceCounters struct {
	streamsStarted atomic.Int64
	framesServed   atomic.Int64
	captures       atomic.Int64
	calibrations   atomic.Int64
	errors         atomic.Int64
	streaming      atomic.Bool
	lastActivity   atomic.Int64 // unix nanos
}

// Manager implements Recorder. Counters are kept in memory per serial for
// the stats endpoint and mirrored to OTel instruments.
type Manager struct {
	devices       sync.Map // serial -> *deviceCounters
	activeStreams atomic.Int64

	streamsStarted metric.Int64Counter
	framesServed   metric.Int64Counter
	captures       metric.Int64Counter
	calibrations   metric.Int64Counter
	errors         metric.Int64Counter
	active         metric.Int64UpDownCounter
}

var _ Recorder = (*Manager)(nil)

// NewManager creates the instruments on meter. Pass otel.Meter(...) from the
// global provider; without an exporter the instruments are no-ops.
func NewManager(meter metric.Meter) (*Manager, error) {
	m := &Manager{}

	var err error

	if m.streamsStarted, err = meter.Int64Counter("rscapture.streams.started",
		metric.WithDescription("Streams opened")); err != nil {
		return nil, fmt.Errorf("streams counter: %w", err)
	}

	if m.framesServed, err = meter.Int64Counter("rscapture.frames.served",
		metric.WithDescription("Frames written to feed clients")); err != nil {
		return nil, fmt.Errorf("frames counter: %w", err)
	}

	if m.captures, err = meter.Int64Counter("rscapture.captures",
		metric.WithDescription("Frame pairs saved")); err != nil {
		return nil, fmt.Errorf("captures counter: %w", err)
	}

	if m.calibrations, err = meter.Int64Counter("rscapture.calibrations",
		metric.WithDescription("Calibration documents saved")); err != nil {
		return nil, fmt.Errorf("calibrations counter: %w", err)
	}

	if m.errors, err = meter.Int64Counter("rscapture.errors",
		metric.WithDescription("Failed device operations")); err != nil {
		return nil, fmt.Errorf("errors counter: %w", err)
	}

	if m.active, err = meter.Int64UpDownCounter("rscapture.streams.active",
		metric.WithDescription("Devices currently streaming")); err != nil {
		return nil, fmt.Errorf("active streams counter: %w", err)
	}

	return m, nil
}

func (m *Manager) counters(serial string) *deviceCounters {
	if c, ok := m.devices.Load(serial); ok {
		return c.(*deviceCounters)
	}

	c, _ := m.devices.LoadOrStore(serial, &deviceCounters{})

	return c.(*deviceCounters)
}

func (m *Manager) touch(c *deviceCounters) {
	c.lastActivity.Store(time.Now().UnixNano())
}

func serialAttr(serial string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("serial", serial))
}

func (m *Manager) StreamStarted(serial string) {
	c := m.counters(serial)
	c.streamsStarted.Add(1)
	m.touch(c)

	if !c.streaming.Swap(true) {
		m.activeStreams.Add(1)
		m.active.Add(context.Background(), 1, serialAttr(serial))
	}

	m.streamsStarted.Add(context.Background(), 1, serialAttr(serial))
}

func (m *Manager) StreamStopped(serial string) {
	c := m.counters(serial)
	m.touch(c)

	if c.streaming.Swap(false) {
		m.activeStreams.Add(-1)
		m.active.Add(context.Background(), -1, serialAttr(serial))
	}
}

func (m *Manager) FrameServed(serial string) {
	c := m.counters(serial)
	c.framesServed.Add(1)
	m.touch(c)

	m.framesServed.Add(context.Background(), 1, serialAttr(serial))
}

func (m *Manager) CaptureSaved(serial string) {
	c := m.counters(serial)
	c.captures.Add(1)
	m.touch(c)

	m.captures.Add(context.Background(), 1, serialAttr(serial))
}

func (m *Manager) CalibrationSaved(serial string) {
	c := m.counters(serial)
	c.calibrations.Add(1)
	m.touch(c)

	m.calibrations.Add(context.Background(), 1, serialAttr(serial))
}

func (m *Manager) Error(serial, op string) {
	c := m.counters(serial)
	c.errors.Add(1)
	m.touch(c)

	m.errors.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("serial", serial), attribute.String("op", op)))
}

// ActiveStreams is the number of devices currently streaming.
func (m *Manager) ActiveStreams() int64 {
	return m.activeStreams.Load()
}

// Snapshot returns the counters of every device seen so far, ordered by serial.
func (m *Manager) Snapshot() []models.DeviceStats {
	stats := []models.DeviceStats{}

	m.devices.Range(func(key, value interface{}) bool {
		c := value.(*deviceCounters)

		s := models.DeviceStats{
			Serial:         key.(string),
			StreamsStarted: c.streamsStarted.Load(),
			FramesServed:   c.framesServed.Load(),
			Captures:       c.captures.Load(),
			Calibrations:   c.calibrations.Load(),
			Errors:         c.errors.Load(),
			Streaming:      c.streaming.Load(),
		}

		if ns := c.lastActivity.Load(); ns != 0 {
			s.LastActivity = time.Unix(0, ns).UTC()
		}

		stats = append(stats, s)

		return true
	})

	sort.Slice(stats, func(i, j int) bool { return stats[i].Serial < stats[j].Serial })

	return stats
}
