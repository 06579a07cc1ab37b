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

// Package models holds the shared data types of the rscapture service.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/rscapture/pkg/logger"
)

var (
	errInvalidDuration      = errors.New("invalid duration")
	errListenAddrRequired   = errors.New("listen_addr is required")
	errCaptureDirRequired   = errors.New("capture_dir is required")
	errInvalidStreamSize    = errors.New("stream width and height must be positive")
	errInvalidStreamFPS     = errors.New("stream fps must be positive")
	errInvalidJPEGQuality   = errors.New("video_feed.jpeg_quality must be between 1 and 100")
	errInvalidFeedInterval  = errors.New("video_feed.interval must be positive")
	errInvalidDepthAlpha    = errors.New("video_feed.depth_alpha must be positive")
	errInvalidView          = errors.New("invalid view")
	errUnknownDriver        = errors.New("unknown driver type")
	errSyntheticNoDevices   = errors.New("driver.synthetic.devices must not be empty")
	errSyntheticSerial      = errors.New("synthetic devices need a unique non-empty serial")
	errPlaybackDirRequired  = errors.New("driver.playback.dir is required")
	errEventsNATSURLMissing = errors.New("events.nats_url is required when events are enabled")
)

const (
	DriverSynthetic = "synthetic"
	DriverPlayback  = "playback"

	DefaultListenAddr     = ":5000"
	DefaultCaptureDir     = "capture"
	DefaultEventStream    = "RSCAPTURE_EVENTS"
	DefaultEventSubject   = "rscapture"
	defaultWidth          = 640
	defaultHeight         = 480
	defaultFPS            = 30
	defaultJPEGQuality    = 80
	defaultDepthAlpha     = 0.03
	defaultFeedInterval   = 100 * time.Millisecond
	defaultShutdownTimout = 10 * time.Second
)

// Duration is a time.Duration that unmarshals from "100ms" style strings or
// nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))

		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins,omitempty"`
	AllowCredentials bool     `json:"allow_credentials,omitempty"`
}

// StreamSettings are the per-device stream parameters requested on open.
type StreamSettings struct {
	Width           int  `json:"width"`
	Height          int  `json:"height"`
	FPS             int  `json:"fps"`
	EnableIREmitter bool `json:"enable_ir_emitter"`
	AlignDepth      bool `json:"align_depth"`
	// Prefetch keeps a background reader per session so the feed serves
	// the cached pair instead of reading on every poll.
	Prefetch bool `json:"prefetch"`
	// PresetFile is a RealSense advanced-mode JSON applied to every device
	// when it is opened.
	PresetFile string `json:"preset_file,omitempty"`
}

// VideoFeedConfig controls the MJPEG and websocket feeds.
type VideoFeedConfig struct {
	Interval    Duration `json:"interval"`
	JPEGQuality int      `json:"jpeg_quality"`
	DepthAlpha  float64  `json:"depth_alpha"`
	DefaultView string   `json:"default_view"`
}

// SyntheticDevice describes one simulated camera.
type SyntheticDevice struct {
	Name        string `json:"name"`
	Serial      string `json:"serial"`
	ProductLine string `json:"product_line,omitempty"`
}

type SyntheticConfig struct {
	Devices []SyntheticDevice `json:"devices"`
}

type PlaybackConfig struct {
	Dir string `json:"dir"`
}

// DriverConfig selects and configures the frame source.
type DriverConfig struct {
	Type      string          `json:"type"`
	Synthetic SyntheticConfig `json:"synthetic"`
	Playback  PlaybackConfig  `json:"playback"`
}

// EventsConfig enables CloudEvent publishing to NATS JetStream.
type EventsConfig struct {
	Enabled       bool      `json:"enabled"`
	NATSURL       string    `json:"nats_url"`
	StreamName    string    `json:"stream_name"`
	SubjectPrefix string    `json:"subject_prefix"`
	Creds         string    `json:"creds_file,omitempty" sensitive:"true"`
	Timeout       Duration  `json:"timeout"`
	TLS           *TLSFiles `json:"tls,omitempty"`
}

// TLSFiles points at PEM files for an mTLS client connection.
type TLSFiles struct {
	CAFile     string `json:"ca_file"`
	CertFile   string `json:"cert_file"`
	KeyFile    string `json:"key_file" sensitive:"true"`
	ServerName string `json:"server_name,omitempty"`
}

// Config is the service configuration document.
type Config struct {
	ListenAddr      string          `json:"listen_addr"`
	CaptureDir      string          `json:"capture_dir"`
	WebRoot         string          `json:"web_root,omitempty"`
	APIKey          string          `json:"api_key,omitempty" sensitive:"true"`
	CORS            CORSConfig      `json:"cors"`
	Stream          StreamSettings  `json:"stream"`
	VideoFeed       VideoFeedConfig `json:"video_feed"`
	Driver          DriverConfig    `json:"driver"`
	Events          EventsConfig    `json:"events"`
	Logging         *logger.Config  `json:"logging,omitempty"`
	ShutdownTimeout Duration        `json:"shutdown_timeout"`
}

// DefaultConfig returns the configuration used when no file overrides it:
// one synthetic camera on :5000.
func DefaultConfig() *Config {
	cfg := &Config{
		Stream: StreamSettings{Prefetch: true},
		Driver: DriverConfig{
			Synthetic: SyntheticConfig{
				Devices: []SyntheticDevice{{Name: "Synthetic D435", Serial: "000000000001", ProductLine: "D400"}},
			},
		},
	}

	cfg.ApplyDefaults()

	return cfg
}

// ApplyDefaults fills zero values with their defaults.
func (c *Config) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	if c.CaptureDir == "" {
		c.CaptureDir = DefaultCaptureDir
	}

	if c.Stream.Width == 0 {
		c.Stream.Width = defaultWidth
	}

	if c.Stream.Height == 0 {
		c.Stream.Height = defaultHeight
	}

	if c.Stream.FPS == 0 {
		c.Stream.FPS = defaultFPS
	}

	if c.VideoFeed.Interval == 0 {
		c.VideoFeed.Interval = Duration(defaultFeedInterval)
	}

	if c.VideoFeed.JPEGQuality == 0 {
		c.VideoFeed.JPEGQuality = defaultJPEGQuality
	}

	if c.VideoFeed.DepthAlpha == 0 {
		c.VideoFeed.DepthAlpha = defaultDepthAlpha
	}

	if c.VideoFeed.DefaultView == "" {
		c.VideoFeed.DefaultView = string(ViewColor)
	}

	if c.Driver.Type == "" {
		c.Driver.Type = DriverSynthetic
	}

	if c.Events.StreamName == "" {
		c.Events.StreamName = DefaultEventStream
	}

	if c.Events.SubjectPrefix == "" {
		c.Events.SubjectPrefix = DefaultEventSubject
	}

	if c.Events.Timeout == 0 {
		c.Events.Timeout = Duration(5 * time.Second)
	}

	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = Duration(defaultShutdownTimout)
	}
}

// Validate applies defaults then checks the result.
func (c *Config) Validate() error {
	c.ApplyDefaults()

	if strings.TrimSpace(c.ListenAddr) == "" {
		return errListenAddrRequired
	}

	if strings.TrimSpace(c.CaptureDir) == "" {
		return errCaptureDirRequired
	}

	if c.Stream.Width < 0 || c.Stream.Height < 0 {
		return errInvalidStreamSize
	}

	if c.Stream.FPS < 0 {
		return errInvalidStreamFPS
	}

	if c.VideoFeed.JPEGQuality < 1 || c.VideoFeed.JPEGQuality > 100 {
		return errInvalidJPEGQuality
	}

	if c.VideoFeed.Interval < 0 {
		return errInvalidFeedInterval
	}

	if c.VideoFeed.DepthAlpha < 0 {
		return errInvalidDepthAlpha
	}

	if _, err := ParseView(c.VideoFeed.DefaultView); err != nil {
		return fmt.Errorf("video_feed.default_view: %w", err)
	}

	if err := c.Driver.validate(); err != nil {
		return err
	}

	if c.Events.Enabled && c.Events.NATSURL == "" {
		return errEventsNATSURLMissing
	}

	return nil
}

func (d *DriverConfig) validate() error {
	switch d.Type {
	case DriverSynthetic:
		if len(d.Synthetic.Devices) == 0 {
			return errSyntheticNoDevices
		}

		seen := make(map[string]struct{}, len(d.Synthetic.Devices))

		for _, dev := range d.Synthetic.Devices {
			if dev.Serial == "" {
				return errSyntheticSerial
			}

			if _, dup := seen[dev.Serial]; dup {
				return fmt.Errorf("%w: %s", errSyntheticSerial, dev.Serial)
			}

			seen[dev.Serial] = struct{}{}
		}
	case DriverPlayback:
		if d.Playback.Dir == "" {
			return errPlaybackDirRequired
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownDriver, d.Type)
	}

	return nil
}
