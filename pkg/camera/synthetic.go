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
	"fmt"
	"hash/fnv"
	"image"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/carverauto/rscapture/pkg/logger"
	"github.com/carverauto/rscapture/pkg/models"
)

const (
	syntheticName        = "synthetic"
	syntheticProductLine = "D400"
	syntheticHFOV        = 60.0
	syntheticBaseline    = 0.015
	syntheticDepthScale  = 0.001
	nearDepthMM          = 500
	farDepthMM           = 4000
	targetDepthMM        = 800
	emitterOffHoleStride = 7
)

// Synthetic simulates a set of depth cameras. Color frames carry a moving
// bar over a gradient tinted per serial; depth frames are a horizontal ramp
// with a moving near target.
type Synthetic struct {
	devices []models.Device
	claims  *claims
	logger  logger.Logger
	now     func() time.Time
}

var _ Driver = (*Synthetic)(nil)

func NewSynthetic(devices []models.SyntheticDevice, log logger.Logger) *Synthetic {
	out := make([]models.Device, 0, len(devices))

	for _, d := range devices {
		name := d.Name
		if name == "" {
			name = "Synthetic " + d.Serial
		}

		productLine := d.ProductLine
		if productLine == "" {
			productLine = syntheticProductLine
		}

		out = append(out, models.Device{Name: name, Serial: d.Serial, ProductLine: productLine})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Serial < out[j].Serial })

	return &Synthetic{
		devices: out,
		claims:  newClaims(),
		logger:  log,
		now:     time.Now,
	}
}

func (*Synthetic) Name() string { return syntheticName }

func (s *Synthetic) Devices(ctx context.Context) ([]models.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumeration, err)
	}

	out := make([]models.Device, len(s.devices))
	copy(out, s.devices)

	return out, nil
}

func (s *Synthetic) Open(ctx context.Context, serial string, cfg StreamConfig) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !s.known(serial) {
		return nil, fmt.Errorf("open %s: %w", serial, ErrDeviceNotFound)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("open %s: invalid stream size %dx%d: %w", serial, cfg.Width, cfg.Height, ErrHardware)
	}

	if err := s.claims.acquire(serial); err != nil {
		return nil, err
	}

	if len(cfg.Preset) > 0 {
		cfg = cfg.Preset.apply(cfg)

		s.logger.Debug().
			Str("serial", serial).
			Int("settings", len(cfg.Preset)).
			Bool("ir_emitter", cfg.EnableIREmitter).
			Msg("Applied advanced-mode preset")
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(serial))

	s.logger.Debug().
		Str("serial", serial).
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Int("fps", cfg.FPS).
		Msg("Synthetic device opened")

	return &syntheticHandle{
		driver: s,
		serial: serial,
		cfg:    cfg,
		tint:   uint8(h.Sum32()),
		pace:   pacer{interval: cfg.FrameInterval()},
	}, nil
}

func (s *Synthetic) known(serial string) bool {
	for _, d := range s.devices {
		if d.Serial == serial {
			return true
		}
	}

	return false
}

type syntheticHandle struct {
	driver *Synthetic
	serial string
	cfg    StreamConfig
	tint   uint8
	pace   pacer

	mu     sync.Mutex
	seq    uint64
	closed bool
}

func (h *syntheticHandle) Serial() string { return h.serial }

func (h *syntheticHandle) ReadFrame(ctx context.Context) (FramePair, error) {
	if h.isClosed() {
		return FramePair{}, fmt.Errorf("read %s: handle closed: %w", h.serial, ErrHardware)
	}

	if err := h.pace.wait(ctx); err != nil {
		return FramePair{}, err
	}

	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.mu.Unlock()

	return FramePair{
		Color:      h.renderColor(seq),
		Depth:      h.renderDepth(seq),
		Sequence:   seq,
		CapturedAt: h.driver.now(),
	}, nil
}

func (h *syntheticHandle) renderColor(seq uint64) *image.RGBA {
	w, ht := h.cfg.Width, h.cfg.Height
	img := image.NewRGBA(image.Rect(0, 0, w, ht))

	barWidth := max(w/20, 1)
	barX := int(seq*8) % w

	for y := 0; y < ht; y++ {
		row := img.Pix[y*img.Stride:]
		g := uint8(y * 255 / ht)

		for x := 0; x < w; x++ {
			i := x * 4

			if x >= barX && x < barX+barWidth {
				row[i], row[i+1], row[i+2] = 255, 255, 255
			} else {
				row[i] = uint8(x * 255 / w)
				row[i+1] = g
				row[i+2] = h.tint
			}

			row[i+3] = 255
		}
	}

	return img
}

func (h *syntheticHandle) renderDepth(seq uint64) *image.Gray16 {
	w, ht := h.cfg.Width, h.cfg.Height
	img := image.NewGray16(image.Rect(0, 0, w, ht))

	radius := max(ht/6, 1)
	cx := radius + int(seq*4)%max(w-2*radius, 1)
	cy := ht / 2

	for y := 0; y < ht; y++ {
		row := img.Pix[y*img.Stride:]
		dy := y - cy

		for x := 0; x < w; x++ {
			var d uint16

			dx := x - cx

			switch {
			case !h.cfg.EnableIREmitter && x%emitterOffHoleStride == 0:
				d = 0
			case dx*dx+dy*dy <= radius*radius:
				d = targetDepthMM
			default:
				d = uint16(nearDepthMM + x*(farDepthMM-nearDepthMM)/w)
			}

			row[x*2] = uint8(d >> 8)
			row[x*2+1] = uint8(d)
		}
	}

	return img
}

// ReadCalibration derives a pinhole model from the stream size. Depth and
// color share intrinsics when alignment is on.
func (h *syntheticHandle) ReadCalibration(ctx context.Context) (*models.Calibration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if h.isClosed() {
		return nil, fmt.Errorf("calibration %s: handle closed: %w", h.serial, ErrHardware)
	}

	w, ht := float64(h.cfg.Width), float64(h.cfg.Height)
	f := (w / 2) / math.Tan(syntheticHFOV/2*math.Pi/180)

	color := models.Intrinsics{
		FX: f, FY: f, CX: w / 2, CY: ht / 2,
		Model:  "brown_conrady",
		Coeffs: []float64{0, 0, 0, 0, 0},
	}

	depth := color
	if !h.cfg.AlignDepth {
		// unaligned depth keeps the depth imager's own, wider lens
		depth.FX, depth.FY = f*0.95, f*0.95
	}

	depth.Coeffs = append([]float64(nil), color.Coeffs...)

	return &models.Calibration{
		Serial: h.serial,
		Width:  h.cfg.Width,
		Height: h.cfg.Height,
		Color:  color,
		Depth:  depth,
		Extrinsics: models.Extrinsics{
			Rotation:    [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
			Translation: [3]float64{syntheticBaseline, 0, 0},
		},
		DepthScale: syntheticDepthScale,
	}, nil
}

func (h *syntheticHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	h.closed = true
	h.driver.claims.release(h.serial)

	return nil
}

func (h *syntheticHandle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.closed
}

// pacer spaces reads at a fixed interval. The first read is immediate.
type pacer struct {
	interval time.Duration
	next     time.Time
}

func (p *pacer) wait(ctx context.Context) error {
	now := time.Now()

	if wait := p.next.Sub(now); wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		now = p.next
	} else if err := ctx.Err(); err != nil {
		return err
	}

	p.next = now.Add(p.interval)

	return nil
}
