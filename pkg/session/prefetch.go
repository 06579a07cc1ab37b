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
	"time"
)

// startPrefetch runs the per-session reader that keeps the cache warm.
func (r *Registry) startPrefetch(s *session) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go r.prefetch(ctx, s)
}

func (r *Registry) prefetch(ctx context.Context, s *session) {
	defer close(s.done)

	interval := s.cfg.FrameInterval()
	failures := 0

	for {
		started := time.Now()

		s.ioMu.Lock()
		if s.stopped.Load() {
			s.ioMu.Unlock()
			return
		}

		_, err := s.read(ctx)
		s.ioMu.Unlock()

		if ctx.Err() != nil {
			return
		}

		wait := interval - time.Since(started)

		if err != nil {
			failures++
			r.metrics.Error(s.serial, "read")

			// Log the first failure of a run and then every 100th.
			if failures%100 == 1 {
				r.logger.Warn().Err(err).Str("serial", s.serial).Int("failures", failures).Msg("Prefetch read failed")
			}

			wait = r.opts.RetryInterval
		} else {
			failures = 0
		}

		if wait <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}
