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

// Package session owns the streaming sessions of every device: who is
// streaming, the handle each session holds and the frames read from it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/rscapture/pkg/camera"
	"github.com/carverauto/rscapture/pkg/capture"
	"github.com/carverauto/rscapture/pkg/logger"
	"github.com/carverauto/rscapture/pkg/metrics"
	"github.com/carverauto/rscapture/pkg/models"
)

// EventPublisher receives session, capture and calibration events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// Options configure a Registry.
type Options struct {
	Stream camera.StreamConfig
	// Prefetch runs a reader per session that keeps the latest pair cached.
	Prefetch bool
	// RetryInterval is the pause after a failed prefetch read. Defaults to
	// the frame interval, or 100ms when no fps is set.
	RetryInterval time.Duration
}

// Registry is the single owner of streaming sessions. mu guards only the
// session table, the per-serial start locks and the capture clocks; device
// I/O always happens outside it.
type Registry struct {
	driver  camera.Driver
	store   *capture.Store
	events  EventPublisher
	metrics metrics.Recorder
	opts    Options
	logger  logger.Logger
	now     func() time.Time

	mu           sync.Mutex
	sessions     map[string]*session
	startLocks   map[string]*sync.Mutex
	captureClock map[string]time.Time
	closed       bool
}

const defaultRetryInterval = 100 * time.Millisecond

// New creates a Registry. events may be nil when eventing is disabled.
func New(
	driver camera.Driver, store *capture.Store, events EventPublisher,
	rec metrics.Recorder, opts Options, log logger.Logger) *Registry {
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = opts.Stream.FrameInterval()
	}

	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}

	return &Registry{
		driver:       driver,
		store:        store,
		events:       events,
		metrics:      rec,
		opts:         opts,
		logger:       log,
		now:          time.Now,
		sessions:     make(map[string]*session),
		startLocks:   make(map[string]*sync.Mutex),
		captureClock: make(map[string]time.Time),
	}
}

// DriverName names the frame source in use.
func (r *Registry) DriverName() string {
	return r.driver.Name()
}

// ListDevices enumerates attached devices ordered by serial, hiding
// built-in platform cameras.
func (r *Registry) ListDevices(ctx context.Context) ([]models.Device, error) {
	all, err := r.driver.Devices(ctx)
	if err != nil {
		if errors.Is(err, camera.ErrEnumeration) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", camera.ErrEnumeration, err)
	}

	devices := make([]models.Device, 0, len(all))

	for _, d := range all {
		if d.IsPlatformCamera() {
			continue
		}

		devices = append(devices, d)
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].Serial < devices[j].Serial })

	return devices, nil
}

func (r *Registry) findDevice(ctx context.Context, serial string) error {
	devices, err := r.ListDevices(ctx)
	if err != nil {
		return err
	}

	for _, d := range devices {
		if d.Serial == serial {
			return nil
		}
	}

	return fmt.Errorf("%s: %w", serial, camera.ErrDeviceNotFound)
}

func (r *Registry) lookup(serial string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sessions[serial]
}

// startLock returns the mutex serializing start and stop of serial,
// creating it when create is set.
func (r *Registry) startLock(serial string, create bool) (*sync.Mutex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	lock, ok := r.startLocks[serial]
	if !ok && create {
		lock = &sync.Mutex{}
		r.startLocks[serial] = lock
	}

	return lock, nil
}

// StartStream opens serial and begins streaming. Starting a device that is
// already streaming returns the existing session without touching the
// hardware again.
func (r *Registry) StartStream(ctx context.Context, serial string) (*models.SessionInfo, error) {
	if s := r.lookup(serial); s != nil {
		info := s.info()
		return &info, nil
	}

	if err := r.findDevice(ctx, serial); err != nil {
		return nil, err
	}

	lock, err := r.startLock(serial, true)
	if err != nil {
		return nil, err
	}

	lock.Lock()
	defer lock.Unlock()

	// Another caller may have finished starting while we waited.
	if s := r.lookup(serial); s != nil {
		info := s.info()
		return &info, nil
	}

	h, err := r.driver.Open(ctx, serial, r.opts.Stream)
	if err != nil {
		r.metrics.Error(serial, "open")
		r.logger.Warn().Err(err).Str("serial", serial).Msg("Failed to open device")

		return nil, hardwareErr("open", serial, err)
	}

	s := newSession(uuid.New().String(), serial, h, r.opts.Stream, r.now())

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()

		if cerr := h.Close(); cerr != nil {
			r.logger.Warn().Err(cerr).Str("serial", serial).Msg("Failed to release device")
		}

		return nil, ErrClosed
	}

	r.sessions[serial] = s
	r.mu.Unlock()

	if r.opts.Prefetch {
		r.startPrefetch(s)
	}

	r.metrics.StreamStarted(serial)

	info := s.info()

	r.logger.Info().
		Str("serial", serial).
		Str("session_id", s.id).
		Int("width", s.cfg.Width).
		Int("height", s.cfg.Height).
		Int("fps", s.cfg.FPS).
		Msg("Stream started")

	r.publish(ctx, models.EventSessionStarted, models.SessionEventData{
		SessionID: s.id,
		Serial:    serial,
		State:     string(models.SessionStreaming),
		Timestamp: s.startedAt,
	})

	return &info, nil
}

// StopStream stops serial if it is streaming. Unknown or already stopped
// serials are a no-op. The handle is closed after any in-flight read.
func (r *Registry) StopStream(ctx context.Context, serial string) error {
	r.mu.Lock()
	lock := r.startLocks[serial]
	r.mu.Unlock()

	if lock == nil {
		return nil
	}

	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	s := r.sessions[serial]
	delete(r.sessions, serial)
	r.mu.Unlock()

	if s == nil {
		return nil
	}

	if err := s.close(); err != nil {
		r.logger.Warn().Err(err).Str("serial", serial).Msg("Failed to release device")
	}

	r.metrics.StreamStopped(serial)

	r.logger.Info().
		Str("serial", serial).
		Str("session_id", s.id).
		Uint64("frames_read", s.framesRead.Load()).
		Msg("Stream stopped")

	r.publish(ctx, models.EventSessionStopped, models.SessionEventData{
		SessionID: s.id,
		Serial:    serial,
		State:     string(models.SessionStopped),
		Timestamp: r.now(),
	})

	return nil
}

// StopAll stops every streaming device concurrently and returns how many
// were streaming.
func (r *Registry) StopAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	serials := make([]string, 0, len(r.sessions))

	for serial := range r.sessions {
		serials = append(serials, serial)
	}
	r.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	for _, serial := range serials {
		g.Go(func() error {
			return r.StopStream(gctx, serial)
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	return len(serials), nil
}

// Sessions is a snapshot of the active sessions ordered by serial.
func (r *Registry) Sessions() []models.SessionInfo {
	r.mu.Lock()
	active := make([]*session, 0, len(r.sessions))

	for _, s := range r.sessions {
		active = append(active, s)
	}
	r.mu.Unlock()

	infos := make([]models.SessionInfo, 0, len(active))
	for _, s := range active {
		infos = append(infos, s.info())
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Serial < infos[j].Serial })

	return infos
}

// Streaming reports whether serial has an active session.
func (r *Registry) Streaming(serial string) bool {
	return r.lookup(serial) != nil
}

// LatestFrame returns the newest pair of serial. With prefetch the cached
// pair is returned and a read only happens while the cache is still empty;
// without it every call reads one pair.
func (r *Registry) LatestFrame(ctx context.Context, serial string) (camera.FramePair, error) {
	s := r.lookup(serial)
	if s == nil {
		return camera.FramePair{}, fmt.Errorf("%s: %w", serial, ErrNotStreaming)
	}

	if r.opts.Prefetch {
		if pair := s.cached(); !pair.Empty() && !s.stopped.Load() {
			return pair, nil
		}
	}

	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	if s.stopped.Load() {
		return camera.FramePair{}, fmt.Errorf("%s: %w", serial, ErrNotStreaming)
	}

	pair, err := s.read(ctx)
	if err != nil {
		r.metrics.Error(serial, "read")
		return camera.FramePair{}, err
	}

	return pair, nil
}

// Capture reads one fresh pair from serial and saves it under folder.
func (r *Registry) Capture(ctx context.Context, serial, folder string) (*models.CaptureRecord, error) {
	folder, err := capture.ValidateFolder(folder)
	if err != nil {
		return nil, err
	}

	s := r.lookup(serial)
	if s == nil {
		return nil, fmt.Errorf("%s: %w", serial, ErrNotStreaming)
	}

	rec, err := r.captureLocked(ctx, s, folder)
	if err != nil {
		r.metrics.Error(serial, "capture")
		r.logger.Warn().Err(err).Str("serial", serial).Str("folder", folder).Msg("Capture failed")

		return nil, err
	}

	r.metrics.CaptureSaved(serial)

	r.publish(ctx, models.EventCaptureSaved, models.CaptureEventData{
		Serial:    serial,
		Folder:    rec.Folder,
		Timestamp: rec.Timestamp,
		Files:     rec.Files(),
	})

	return rec, nil
}

func (r *Registry) captureLocked(ctx context.Context, s *session, folder string) (*models.CaptureRecord, error) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	if s.stopped.Load() {
		return nil, fmt.Errorf("%s: %w", s.serial, ErrNotStreaming)
	}

	pair, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	at := r.nextCaptureTime(s.serial)

	rec, err := r.store.SaveFramePair(ctx, folder, s.serial, at, pair)
	if err != nil {
		return nil, err
	}

	s.setLastCapture(rec.Timestamp)

	return rec, nil
}

// nextCaptureTime hands out strictly increasing capture times per serial,
// across sessions.
func (r *Registry) nextCaptureTime(serial string) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := capture.NextTimestamp(r.captureClock[serial], r.now())
	r.captureClock[serial] = at

	return at
}

// GetCalibration reads the calibration of serial and saves it under
// folder. A streaming device is read through its session; otherwise the
// device is opened just for the read.
func (r *Registry) GetCalibration(ctx context.Context, serial, folder string) (*models.CalibrationResult, error) {
	folder, err := capture.ValidateFolder(folder)
	if err != nil {
		return nil, err
	}

	cal, err := r.readCalibration(ctx, serial)
	if err != nil {
		r.metrics.Error(serial, "calibration")
		r.logger.Warn().Err(err).Str("serial", serial).Msg("Calibration read failed")

		return nil, err
	}

	filename, err := r.store.SaveCalibration(ctx, folder, cal)
	if err != nil {
		r.metrics.Error(serial, "calibration")
		return nil, err
	}

	r.metrics.CalibrationSaved(serial)

	r.publish(ctx, models.EventCalibrationSaved, models.CalibrationEventData{
		Serial:   serial,
		Filename: filename,
		Width:    cal.Width,
		Height:   cal.Height,
	})

	return &models.CalibrationResult{Filename: filename, Calibration: cal}, nil
}

func (r *Registry) readCalibration(ctx context.Context, serial string) (*models.Calibration, error) {
	if s := r.lookup(serial); s != nil {
		if cal, ok, err := sessionCalibration(ctx, s); ok {
			return cal, err
		}
	}

	if err := r.findDevice(ctx, serial); err != nil {
		return nil, err
	}

	lock, err := r.startLock(serial, true)
	if err != nil {
		return nil, err
	}

	lock.Lock()
	defer lock.Unlock()

	if s := r.lookup(serial); s != nil {
		if cal, ok, err := sessionCalibration(ctx, s); ok {
			return cal, err
		}
	}

	h, err := r.driver.Open(ctx, serial, r.opts.Stream)
	if err != nil {
		return nil, hardwareErr("open", serial, err)
	}

	defer func() {
		if cerr := h.Close(); cerr != nil {
			r.logger.Warn().Err(cerr).Str("serial", serial).Msg("Failed to release device")
		}
	}()

	cal, err := h.ReadCalibration(ctx)
	if err != nil {
		return nil, hardwareErr("calibration", serial, err)
	}

	return cal, nil
}

// sessionCalibration reads through a live session. ok is false when the
// session stopped before the read could start.
func sessionCalibration(ctx context.Context, s *session) (*models.Calibration, bool, error) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	if s.stopped.Load() {
		return nil, false, nil
	}

	cal, err := s.handle.ReadCalibration(ctx)
	if err != nil {
		return nil, true, hardwareErr("calibration", s.serial, err)
	}

	return cal, true, nil
}

// Close stops every session. Later starts fail with ErrClosed.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}

	serials := make([]string, 0, len(r.sessions))
	for serial := range r.sessions {
		serials = append(serials, serial)
	}

	r.closed = true
	r.mu.Unlock()

	var g errgroup.Group

	for _, serial := range serials {
		g.Go(func() error {
			return r.StopStream(ctx, serial)
		})
	}

	err := g.Wait()

	r.logger.Info().Int("stopped", len(serials)).Msg("Session registry closed")

	return err
}

// publish sends an event without letting a failure reach the caller. The
// request context may already be done, so its cancellation is dropped.
func (r *Registry) publish(ctx context.Context, eventType string, data interface{}) {
	if r.events == nil {
		return
	}

	if err := r.events.Publish(context.WithoutCancel(ctx), eventType, data); err != nil {
		r.logger.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
