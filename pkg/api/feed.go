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
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carverauto/rscapture/pkg/imaging"
	"github.com/carverauto/rscapture/pkg/models"
)

const (
	feedBoundary   = "frame"
	wsWriteTimeout = 5 * time.Second
)

type feedRequest struct {
	serial string
	view   models.View
}

func (s *APIServer) parseFeedRequest(r *http.Request) (feedRequest, error) {
	q := r.URL.Query()

	serial, err := requireSerial(q.Get("serial"))
	if err != nil {
		return feedRequest{}, err
	}

	raw := q.Get("view")
	if raw == "" {
		raw = s.feed.DefaultView
	}

	view, err := models.ParseView(raw)
	if err != nil {
		return feedRequest{}, fmt.Errorf("%w: %w", errInvalidView, err)
	}

	return feedRequest{serial: serial, view: view}, nil
}

// frameJPEG renders the current frame of the request. A device that is not
// streaming, or a failed read, yields the fallback frame; live reports
// which one was produced.
func (s *APIServer) frameJPEG(ctx context.Context, req feedRequest) (jpg []byte, live bool, err error) {
	pair, err := s.sessions.LatestFrame(ctx, req.serial)
	if err != nil {
		return s.fallback(req.view), false, nil
	}

	img, err := imaging.Compose(pair, req.view, s.feed.DepthAlpha)
	if err != nil {
		return s.fallback(req.view), false, nil
	}

	jpg, err = imaging.JPEGBytes(img, s.feed.JPEGQuality)
	if err != nil {
		return nil, false, err
	}

	if s.recorder != nil {
		s.recorder.FrameServed(req.serial)
	}

	return jpg, true, nil
}

// fallback returns the placeholder frame for view, sized like the live
// frames of that view so the feed does not change size when it switches.
func (s *APIServer) fallback(view models.View) []byte {
	s.fallbackMu.Lock()
	defer s.fallbackMu.Unlock()

	if jpg, ok := s.fallbackJPEG[view]; ok {
		return jpg
	}

	width := s.frameWidth
	if view == models.ViewBoth {
		width *= 2
	}

	jpg, err := imaging.JPEGBytes(imaging.Fallback(width, s.frameHeight), s.feed.JPEGQuality)
	if err != nil {
		s.logger.Error().Err(err).Str("view", string(view)).Msg("Failed to encode fallback frame")
		return nil
	}

	if s.fallbackJPEG == nil {
		s.fallbackJPEG = make(map[models.View][]byte)
	}

	s.fallbackJPEG[view] = jpg

	return jpg
}

// handleVideoFeed streams JPEG frames as multipart/x-mixed-replace until the
// client goes away. It keeps polling while the device is stopped, so a feed
// opened before start_stream picks the stream up once it starts.
func (s *APIServer) handleVideoFeed(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFeedRequest(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+feedBoundary)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()

	ticker := time.NewTicker(s.feedInterval())
	defer ticker.Stop()

	s.logger.Debug().Str("serial", req.serial).Str("view", string(req.view)).Msg("Video feed opened")

	frames := 0

	defer func() {
		s.logger.Debug().Str("serial", req.serial).Int("frames", frames).Msg("Video feed closed")
	}()

	for {
		jpg, _, err := s.frameJPEG(ctx, req)
		if err != nil {
			s.logger.Warn().Err(err).Str("serial", req.serial).Msg("Failed to encode frame")
		} else if jpg != nil {
			if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n",
				feedBoundary, len(jpg)); err != nil {
				return
			}

			if _, err := w.Write(jpg); err != nil {
				return
			}

			if _, err := w.Write([]byte("\r\n")); err != nil {
				return
			}

			flusher.Flush()

			frames++
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// handleSnapshot returns a single JPEG of the current frame.
func (s *APIServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFeedRequest(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	jpg, live, err := s.frameJPEG(r.Context(), req)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")

	if !live {
		w.Header().Set("X-Frame-Fallback", "true")
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(jpg)
}

func (s *APIServer) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// If there's no Origin header, allow the connection (same as middleware logic)
	if origin == "" {
		return true
	}

	if slices.Contains(s.corsConfig.AllowedOrigins, "*") || slices.Contains(s.corsConfig.AllowedOrigins, origin) {
		return true
	}

	// Same-origin pages served from web_root.
	return strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://"), r.Host)
}

// handleVideoFeedWS sends the feed as binary websocket messages, one JPEG
// per message.
func (s *APIServer) handleVideoFeedWS(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFeedRequest(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     s.checkWebSocketOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Str("origin", r.Header.Get("Origin")).
			Msg("Failed to upgrade to WebSocket")

		return
	}

	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.readUntilClosed(conn, cancel)

	ticker := time.NewTicker(s.feedInterval())
	defer ticker.Stop()

	for {
		jpg, _, err := s.frameJPEG(ctx, req)
		if err != nil {
			s.logger.Warn().Err(err).Str("serial", req.serial).Msg("Failed to encode frame")
		} else if jpg != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))

			if err := conn.WriteMessage(websocket.BinaryMessage, jpg); err != nil {
				s.logger.Debug().Err(err).Str("serial", req.serial).Msg("WebSocket feed write failed")
				return
			}
		}

		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))

			return
		case <-ticker.C:
		}
	}
}

// readUntilClosed drains client messages so close frames are seen, and
// cancels the feed when the connection ends.
func (s *APIServer) readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug().Err(err).Msg("WebSocket feed closed unexpectedly")
			}

			return
		}
	}
}
