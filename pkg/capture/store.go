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

// Package capture persists frame pairs and calibration documents under the
// capture directory.
package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/rscapture/pkg/camera"
	"github.com/carverauto/rscapture/pkg/imaging"
	"github.com/carverauto/rscapture/pkg/logger"
	"github.com/carverauto/rscapture/pkg/models"
)

var (
	// ErrIO wraps every filesystem failure of the store.
	ErrIO = errors.New("capture I/O error")
	// ErrInvalidFolder rejects folder names that would escape the capture directory.
	ErrInvalidFolder = errors.New("invalid folder name")

	errEmptyPair = errors.New("frame pair is empty")
)

const (
	// DefaultFolder is used when the request names no folder.
	DefaultFolder = "default"
	// TimestampLayout is the second-resolution part of a file-name
	// timestamp; FormatTimestamp appends _<microseconds>.
	TimestampLayout = "20060102_150405"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Store writes captures atomically: each file lands under a hidden temp name
// in its final directory and is renamed into place once synced.
type Store struct {
	root        string
	jpegQuality int
	logger      logger.Logger
}

func NewStore(root string, jpegQuality int, log logger.Logger) *Store {
	return &Store{root: root, jpegQuality: jpegQuality, logger: log}
}

// Root is the capture directory.
func (s *Store) Root() string { return s.root }

// ValidateFolder normalizes a requested folder name. Empty selects
// DefaultFolder; separators, ".." and leading dots are rejected.
func ValidateFolder(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultFolder, nil
	}

	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") ||
		strings.HasPrefix(name, ".") || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFolder, name)
	}

	return name, nil
}

// FormatTimestamp renders t as YYYYMMDD_HHMMSS_ffffff in UTC.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()

	return fmt.Sprintf("%s_%06d", t.Format(TimestampLayout), t.Nanosecond()/int(time.Microsecond))
}

// NextTimestamp returns now truncated to microseconds, bumped past last when
// the clock has not advanced beyond it.
func NextTimestamp(last, now time.Time) time.Time {
	now = now.Truncate(time.Microsecond)

	if !last.IsZero() && !now.After(last) {
		return last.Add(time.Microsecond)
	}

	return now
}

// SaveFramePair writes <root>/<folder>/<serial>_<timestamp>.jpg (color) and
// .png (16-bit depth). Neither file appears unless both were written.
func (s *Store) SaveFramePair(
	ctx context.Context, folder, serial string, at time.Time, pair camera.FramePair) (*models.CaptureRecord, error) {
	folder, err := ValidateFolder(folder)
	if err != nil {
		return nil, err
	}

	if pair.Empty() {
		return nil, fmt.Errorf("%w: %w", ErrIO, errEmptyPair)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := s.ensureDir(folder)
	if err != nil {
		return nil, err
	}

	ts := FormatTimestamp(at)
	base := filepath.Join(dir, serial+"_"+ts)
	colorPath, depthPath := base+".jpg", base+".png"

	colorTmp, err := writeTemp(dir, func(f *os.File) error {
		return imaging.EncodeJPEG(f, pair.Color, s.jpegQuality)
	})
	if err != nil {
		return nil, err
	}

	depthTmp, err := writeTemp(dir, func(f *os.File) error {
		return imaging.EncodePNG16(f, pair.Depth)
	})
	if err != nil {
		removeQuietly(colorTmp)

		return nil, err
	}

	if err := os.Rename(colorTmp, colorPath); err != nil {
		removeQuietly(colorTmp, depthTmp)

		return nil, fmt.Errorf("%w: rename %s: %w", ErrIO, colorPath, err)
	}

	if err := os.Rename(depthTmp, depthPath); err != nil {
		removeQuietly(depthTmp, colorPath)

		return nil, fmt.Errorf("%w: rename %s: %w", ErrIO, depthPath, err)
	}

	s.logger.Info().
		Str("serial", serial).
		Str("folder", folder).
		Str("timestamp", ts).
		Msg("Capture saved")

	return &models.CaptureRecord{
		Folder:     folder,
		Serial:     serial,
		Timestamp:  ts,
		ColorFile:  colorPath,
		DepthFile:  depthPath,
		CapturedAt: at,
	}, nil
}

// CalibrationFilename is <serial>_<W>x<H>_calibration.json.
func CalibrationFilename(cal *models.Calibration) string {
	return fmt.Sprintf("%s_%dx%d_calibration.json", cal.Serial, cal.Width, cal.Height)
}

// SaveCalibration writes the calibration document as indented JSON and
// returns its path. An existing file for the same serial and size is
// replaced atomically.
func (s *Store) SaveCalibration(ctx context.Context, folder string, cal *models.Calibration) (string, error) {
	folder, err := ValidateFolder(folder)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(cal, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: marshal calibration: %w", ErrIO, err)
	}

	dir, err := s.ensureDir(folder)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, CalibrationFilename(cal))

	tmp, err := writeTemp(dir, func(f *os.File) error {
		_, err := f.Write(append(data, '\n'))
		return err
	})
	if err != nil {
		return "", err
	}

	if err := os.Rename(tmp, path); err != nil {
		removeQuietly(tmp)

		return "", fmt.Errorf("%w: rename %s: %w", ErrIO, path, err)
	}

	s.logger.Info().Str("serial", cal.Serial).Str("file", path).Msg("Calibration saved")

	return path, nil
}

func (s *Store) ensureDir(folder string) (string, error) {
	dir := filepath.Join(s.root, folder)

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrIO, dir, err)
	}

	return dir, nil
}

// writeTemp creates a hidden temp file in dir, fills it, syncs and closes it.
// The temp is removed if any step fails.
func writeTemp(dir string, fill func(f *os.File) error) (string, error) {
	path := filepath.Join(dir, "."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return "", fmt.Errorf("%w: create temp: %w", ErrIO, err)
	}

	err = fill(f)
	if err == nil {
		err = f.Sync()
	}

	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		removeQuietly(path)

		return "", fmt.Errorf("%w: write temp: %w", ErrIO, err)
	}

	return path, nil
}

func removeQuietly(paths ...string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
