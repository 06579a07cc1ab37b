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
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/rscapture/pkg/camera"
	"github.com/carverauto/rscapture/pkg/models"
)

// session is one Streaming device. ioMu serializes every use of handle;
// the cached pair has its own lock so cache hits never wait on a read.
type session struct {
	id        string
	serial    string
	startedAt time.Time
	cfg       camera.StreamConfig
	handle    camera.Handle

	ioMu    sync.Mutex
	stopped atomic.Bool

	cacheMu     sync.RWMutex
	latest      camera.FramePair
	lastFrameAt time.Time
	lastCapture string

	framesRead atomic.Uint64

	cancel context.CancelFunc
	done   chan struct{}
}

func newSession(id, serial string, h camera.Handle, cfg camera.StreamConfig, now time.Time) *session {
	return &session{
		id:        id,
		serial:    serial,
		startedAt: now,
		cfg:       cfg,
		handle:    h,
		cancel:    func() {},
	}
}

// read performs one frame read. Callers hold ioMu.
func (s *session) read(ctx context.Context) (camera.FramePair, error) {
	pair, err := s.handle.ReadFrame(ctx)
	if err != nil {
		return camera.FramePair{}, hardwareErr("read", s.serial, err)
	}

	if pair.Empty() {
		return camera.FramePair{}, hardwareErr("read", s.serial, errEmptyFrame)
	}

	s.framesRead.Add(1)
	s.store(pair)

	return pair, nil
}

func (s *session) store(pair camera.FramePair) {
	s.cacheMu.Lock()
	s.latest = pair
	s.lastFrameAt = time.Now()
	s.cacheMu.Unlock()
}

func (s *session) cached() camera.FramePair {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	return s.latest
}

func (s *session) setLastCapture(ts string) {
	s.cacheMu.Lock()
	s.lastCapture = ts
	s.cacheMu.Unlock()
}

func (s *session) info() models.SessionInfo {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	state := models.SessionStreaming
	if s.stopped.Load() {
		state = models.SessionStopped
	}

	info := models.SessionInfo{
		ID:            s.id,
		Serial:        s.serial,
		State:         state,
		StartedAt:     s.startedAt,
		FramesRead:    s.framesRead.Load(),
		LastCaptureTS: s.lastCapture,
		Width:         s.cfg.Width,
		Height:        s.cfg.Height,
		FPS:           s.cfg.FPS,
	}

	if !s.lastFrameAt.IsZero() {
		t := s.lastFrameAt
		info.LastFrameAt = &t
	}

	return info
}

// close stops the prefetch loop, waits for any in-flight read and releases
// the handle. Only the caller that removed s from the table calls it.
func (s *session) close() error {
	s.cancel()

	if s.done != nil {
		<-s.done
	}

	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	s.stopped.Store(true)

	return s.handle.Close()
}
