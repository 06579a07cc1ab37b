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

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/rscapture/pkg/camera"
	"github.com/carverauto/rscapture/pkg/models"
)

func depthImage(w, h int, value uint16) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}

	return img
}

func TestJetEndpoints(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0, G: 0, B: 128, A: 255}, jet[0])
	assert.Equal(t, color.RGBA{R: 128, G: 0, B: 0, A: 255}, jet[255])

	mid := jet[128]
	assert.Greater(t, mid.G, uint8(200))
}

func TestColorize(t *testing.T) {
	// 0.03 * 4000mm saturates, 0.03 * 0 stays at the bottom of the map
	far := Colorize(depthImage(4, 2, 4000), 0.03)
	assert.Equal(t, jet[120], far.RGBAAt(0, 0))

	saturated := Colorize(depthImage(4, 2, 20000), 0.03)
	assert.Equal(t, jet[255], saturated.RGBAAt(3, 1))

	zero := Colorize(depthImage(4, 2, 0), 0.03)
	assert.Equal(t, jet[0], zero.RGBAAt(1, 1))
}

func TestSideBySide(t *testing.T) {
	left := image.NewRGBA(image.Rect(0, 0, 4, 2))
	right := image.NewRGBA(image.Rect(0, 0, 3, 2))
	right.SetRGBA(0, 0, color.RGBA{R: 9, A: 255})

	out := SideBySide(left, right)
	assert.Equal(t, image.Rect(0, 0, 7, 2), out.Bounds())
	assert.Equal(t, uint8(9), out.RGBAAt(4, 0).R)

	tall := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out = SideBySide(left, tall)
	assert.Equal(t, image.Rect(0, 0, 6, 2), out.Bounds())
}

func TestFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 48))
	out := Fit(src, 32, 24)
	assert.Equal(t, image.Rect(0, 0, 32, 24), out.Bounds())
}

func TestFallback(t *testing.T) {
	img := Fallback(160, 120)
	require.Equal(t, image.Rect(0, 0, 160, 120), img.Bounds())

	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(0, 0))

	lit := 0
	for y := 0; y < 120; y++ {
		for x := 0; x < 160; x++ {
			if img.RGBAAt(x, y).R > 0 {
				lit++
			}
		}
	}

	assert.Positive(t, lit, "label should be drawn")
}

func TestCompose(t *testing.T) {
	pair := camera.FramePair{
		Color: image.NewRGBA(image.Rect(0, 0, 8, 6)),
		Depth: depthImage(8, 6, 1000),
	}

	img, err := Compose(pair, models.ViewColor, 0.03)
	require.NoError(t, err)
	assert.Same(t, pair.Color, img)

	img, err = Compose(pair, models.ViewDepth, 0.03)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	img, err = Compose(pair, models.ViewBoth, 0.03)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())

	_, err = Compose(pair, models.View("ir"), 0.03)
	require.ErrorIs(t, err, errUnknownView)

	_, err = Compose(camera.FramePair{}, models.ViewColor, 0.03)
	require.ErrorIs(t, err, errEmptyPair)
}

func TestEncoders(t *testing.T) {
	data, err := JPEGBytes(Fallback(32, 16), 80)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 32, decoded.Bounds().Dx())

	var buf bytes.Buffer
	require.NoError(t, EncodePNG16(&buf, depthImage(4, 4, 1234)))

	depth, err := png.Decode(&buf)
	require.NoError(t, err)

	gray, ok := depth.(*image.Gray16)
	require.True(t, ok)
	assert.Equal(t, uint16(1234), gray.Gray16At(2, 2).Y)
}
