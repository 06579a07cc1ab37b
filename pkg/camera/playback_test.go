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
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/rscapture/pkg/logger"
	"github.com/carverauto/rscapture/pkg/models"
)

func writeRecordedPair(t *testing.T, dir, serial, ts string, depthValue uint16) {
	t.Helper()

	rgba := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for i := range rgba.Pix {
		rgba.Pix[i] = 200
	}

	f, err := os.Create(filepath.Join(dir, serial+"_"+ts+".jpg"))
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, rgba, nil))
	require.NoError(t, f.Close())

	depth := image.NewGray16(image.Rect(0, 0, 8, 6))
	depth.SetGray16(0, 0, color.Gray16{Y: depthValue})

	f, err = os.Create(filepath.Join(dir, serial+"_"+ts+".png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, depth))
	require.NoError(t, f.Close())
}

func TestPlaybackDevicesAndFrames(t *testing.T) {
	root := t.TempDir()
	session := filepath.Join(root, "test")
	require.NoError(t, os.MkdirAll(session, 0o755))

	writeRecordedPair(t, session, "111", "20250101_120000_000002", 2000)
	writeRecordedPair(t, session, "111", "20250101_120000_000001", 1000)
	writeRecordedPair(t, root, "222", "20250101_120000", 500)

	// a color frame without its depth partner is ignored
	require.NoError(t, os.WriteFile(filepath.Join(root, "333_20250101_120000.jpg"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o600))

	drv := NewPlayback(root, logger.NewTestLogger())
	ctx := context.Background()

	devices, err := drv.Devices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, models.Device{Name: "Playback 111", Serial: "111", ProductLine: "playback"}, devices[0])
	assert.Equal(t, "222", devices[1].Serial)

	h, err := drv.Open(ctx, "111", StreamConfig{})
	require.NoError(t, err)

	defer func() { _ = h.Close() }()

	_, err = drv.Open(ctx, "111", StreamConfig{})
	require.ErrorIs(t, err, ErrDeviceBusy)

	var depths []uint16

	for i := 0; i < 3; i++ {
		pair, err := h.ReadFrame(ctx)
		require.NoError(t, err)
		require.False(t, pair.Empty())
		assert.Equal(t, uint64(i+1), pair.Sequence)

		depths = append(depths, pair.Depth.Gray16At(0, 0).Y)
	}

	assert.Equal(t, []uint16{1000, 2000, 1000}, depths)

	_, err = h.ReadCalibration(ctx)
	require.ErrorIs(t, err, ErrHardware)
}

func TestPlaybackCalibration(t *testing.T) {
	root := t.TempDir()
	writeRecordedPair(t, root, "111", "20250101_120000", 900)

	cal := models.Calibration{Serial: "ignored", Width: 8, Height: 6, Color: models.Intrinsics{FX: 7}}
	data, err := json.Marshal(cal)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "111_8x6_calibration.json"), data, 0o600))

	h, err := NewPlayback(root, logger.NewTestLogger()).Open(context.Background(), "111", StreamConfig{})
	require.NoError(t, err)

	defer func() { _ = h.Close() }()

	got, err := h.ReadCalibration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "111", got.Serial)
	assert.InDelta(t, 7.0, got.Color.FX, 1e-9)
}

func TestPlaybackErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewPlayback(filepath.Join(t.TempDir(), "missing"), logger.NewTestLogger()).Devices(ctx)
	require.ErrorIs(t, err, ErrEnumeration)

	_, err = NewPlayback(t.TempDir(), logger.NewTestLogger()).Open(ctx, "111", StreamConfig{})
	require.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestPlaybackCorruptFrame(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "111_20250101_120000.jpg"), []byte("not a jpeg"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "111_20250101_120000.png"), []byte("not a png"), 0o600))

	h, err := NewPlayback(root, logger.NewTestLogger()).Open(context.Background(), "111", StreamConfig{})
	require.NoError(t, err)

	defer func() { _ = h.Close() }()

	_, err = h.ReadFrame(context.Background())
	require.ErrorIs(t, err, ErrHardware)
}
