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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/carverauto/rscapture/pkg/logger"
	"github.com/carverauto/rscapture/pkg/models"
)

const (
	playbackName        = "playback"
	playbackProductLine = "playback"
	calibrationSuffix   = "_calibration.json"
)

var (
	errNoCalibration = errors.New("no recorded calibration")
	errNotGray16     = errors.New("depth image is not 16-bit grayscale")

	// <serial>_<YYYYMMDD>_<HHMMSS>[_<micros>].jpg|png
	frameFileRe = regexp.MustCompile(`^(.+?)_(\d{8}_\d{6}(?:_\d{6})?)\.(jpg|png)$`)
)

// Playback replays color/depth pairs previously written by the capture
// store. Every serial found under the directory becomes a device whose
// frames loop in timestamp order.
type Playback struct {
	dir    string
	claims *claims
	logger logger.Logger
}

var _ Driver = (*Playback)(nil)

type recordedFrame struct {
	timestamp string
	colorPath string
	depthPath string
}

type recording struct {
	frames      []recordedFrame
	calibration string
}

func NewPlayback(dir string, log logger.Logger) *Playback {
	return &Playback{dir: dir, claims: newClaims(), logger: log}
}

func (*Playback) Name() string { return playbackName }

func (p *Playback) Devices(ctx context.Context) ([]models.Device, error) {
	index, err := p.scan(ctx)
	if err != nil {
		return nil, err
	}

	devices := make([]models.Device, 0, len(index))

	for serial := range index {
		devices = append(devices, models.Device{
			Name:        "Playback " + serial,
			Serial:      serial,
			ProductLine: playbackProductLine,
		})
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].Serial < devices[j].Serial })

	return devices, nil
}

// scan indexes complete frame pairs and calibration files by serial.
func (p *Playback) scan(ctx context.Context) (map[string]*recording, error) {
	colors := make(map[string]map[string]string)
	depths := make(map[string]map[string]string)
	calibrations := make(map[string]string)

	err := filepath.WalkDir(p.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path != p.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}

			return nil
		}

		name := d.Name()

		if strings.HasSuffix(name, calibrationSuffix) {
			if serial, _, ok := strings.Cut(name, "_"); ok {
				calibrations[serial] = path
			}

			return nil
		}

		m := frameFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil
		}

		serial, ts, ext := m[1], m[2], m[3]

		target := colors
		if ext == "png" {
			target = depths
		}

		if target[serial] == nil {
			target[serial] = make(map[string]string)
		}

		target[serial][ts] = path

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %w", ErrEnumeration, p.dir, err)
	}

	index := make(map[string]*recording)

	for serial, byTS := range colors {
		rec := &recording{calibration: calibrations[serial]}

		for ts, colorPath := range byTS {
			depthPath, ok := depths[serial][ts]
			if !ok {
				continue
			}

			rec.frames = append(rec.frames, recordedFrame{timestamp: ts, colorPath: colorPath, depthPath: depthPath})
		}

		if len(rec.frames) == 0 {
			continue
		}

		sort.Slice(rec.frames, func(i, j int) bool { return rec.frames[i].timestamp < rec.frames[j].timestamp })
		index[serial] = rec
	}

	return index, nil
}

func (p *Playback) Open(ctx context.Context, serial string, cfg StreamConfig) (Handle, error) {
	index, err := p.scan(ctx)
	if err != nil {
		return nil, err
	}

	rec, ok := index[serial]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", serial, ErrDeviceNotFound)
	}

	if err := p.claims.acquire(serial); err != nil {
		return nil, err
	}

	p.logger.Debug().
		Str("serial", serial).
		Int("frames", len(rec.frames)).
		Msg("Playback device opened")

	return &playbackHandle{
		driver:    p,
		serial:    serial,
		recording: rec,
		pace:      pacer{interval: cfg.FrameInterval()},
	}, nil
}

type playbackHandle struct {
	driver    *Playback
	serial    string
	recording *recording
	pace      pacer

	mu     sync.Mutex
	next   int
	seq    uint64
	closed bool
}

func (h *playbackHandle) Serial() string { return h.serial }

func (h *playbackHandle) ReadFrame(ctx context.Context) (FramePair, error) {
	h.mu.Lock()
	closed := h.closed
	frame := h.recording.frames[h.next]
	h.next = (h.next + 1) % len(h.recording.frames)
	h.seq++
	seq := h.seq
	h.mu.Unlock()

	if closed {
		return FramePair{}, fmt.Errorf("read %s: handle closed: %w", h.serial, ErrHardware)
	}

	if err := h.pace.wait(ctx); err != nil {
		return FramePair{}, err
	}

	color, err := loadColor(frame.colorPath)
	if err != nil {
		return FramePair{}, fmt.Errorf("read %s: %w: %w", h.serial, ErrHardware, err)
	}

	depth, err := loadDepth(frame.depthPath)
	if err != nil {
		return FramePair{}, fmt.Errorf("read %s: %w: %w", h.serial, ErrHardware, err)
	}

	return FramePair{Color: color, Depth: depth, Sequence: seq, CapturedAt: time.Now()}, nil
}

func (h *playbackHandle) ReadCalibration(ctx context.Context) (*models.Calibration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if h.recording.calibration == "" {
		return nil, fmt.Errorf("calibration %s: %w: %w", h.serial, ErrHardware, errNoCalibration)
	}

	data, err := os.ReadFile(h.recording.calibration)
	if err != nil {
		return nil, fmt.Errorf("calibration %s: %w: %w", h.serial, ErrHardware, err)
	}

	var cal models.Calibration
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("calibration %s: %w: %w", h.serial, ErrHardware, err)
	}

	cal.Serial = h.serial

	return &cal, nil
}

func (h *playbackHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	h.closed = true
	h.driver.claims.release(h.serial)

	return nil
}

func loadColor(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	return rgba, nil
}

func loadDepth(path string) (*image.Gray16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	gray, ok := img.(*image.Gray16)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, errNotGray16)
	}

	return gray, nil
}
