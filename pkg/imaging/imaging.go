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

// Package imaging renders frame pairs into displayable images and encodes
// them for the feed and the capture store.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/carverauto/rscapture/pkg/camera"
	"github.com/carverauto/rscapture/pkg/models"
)

const fallbackLabel = "NO SIGNAL"

//nolint:gochecknoglobals // read-only lookup table
var jet = buildJet()

// buildJet returns the 256 entry JET colormap: dark blue through cyan,
// yellow and red to dark red.
func buildJet() [256]color.RGBA {
	var lut [256]color.RGBA

	channel := func(x, center float64) uint8 {
		v := 1.5 - math.Abs(4*x-center)
		v = math.Max(0, math.Min(1, v))

		return uint8(math.Round(v * 255))
	}

	for i := range lut {
		x := float64(i) / 255
		lut[i] = color.RGBA{R: channel(x, 3), G: channel(x, 2), B: channel(x, 1), A: 255}
	}

	return lut
}

// Colorize scales depth by alpha, saturates to 8 bits and applies the JET
// colormap. Zero depth renders as the darkest blue.
func Colorize(depth *image.Gray16, alpha float64) *image.RGBA {
	b := depth.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := 0; y < b.Dy(); y++ {
		src := depth.Pix[y*depth.Stride:]
		dst := out.Pix[y*out.Stride:]

		for x := 0; x < b.Dx(); x++ {
			d := float64(uint16(src[x*2])<<8 | uint16(src[x*2+1]))

			v := math.Round(math.Abs(d * alpha))
			if v > 255 {
				v = 255
			}

			c := jet[int(v)]
			i := x * 4
			dst[i], dst[i+1], dst[i+2], dst[i+3] = c.R, c.G, c.B, c.A
		}
	}

	return out
}

// SideBySide places left and right next to each other. The right image is
// scaled to the left image's height first when they differ.
func SideBySide(left, right image.Image) *image.RGBA {
	lb := left.Bounds()

	rb := right.Bounds()
	if rb.Dy() != lb.Dy() && rb.Dy() > 0 {
		w := rb.Dx() * lb.Dy() / rb.Dy()
		right = Fit(right, w, lb.Dy())
		rb = right.Bounds()
	}

	out := image.NewRGBA(image.Rect(0, 0, lb.Dx()+rb.Dx(), lb.Dy()))
	draw.Draw(out, image.Rect(0, 0, lb.Dx(), lb.Dy()), left, lb.Min, draw.Src)
	draw.Draw(out, image.Rect(lb.Dx(), 0, lb.Dx()+rb.Dx(), rb.Dy()), right, rb.Min, draw.Src)

	return out
}

// Fit scales img to exactly width x height.
func Fit(img image.Image, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)

	return out
}

// Fallback is the frame shown while a device has nothing to show.
func Fallback(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, fallbackLabel).Ceil()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I((width - textWidth) / 2),
			Y: fixed.I((height + face.Ascent) / 2),
		},
	}
	d.DrawString(fallbackLabel)

	return img
}

// Compose renders a frame pair for the given view.
func Compose(pair camera.FramePair, view models.View, alpha float64) (image.Image, error) {
	if pair.Empty() {
		return nil, errEmptyPair
	}

	switch view {
	case models.ViewColor:
		return pair.Color, nil
	case models.ViewDepth:
		return Colorize(pair.Depth, alpha), nil
	case models.ViewBoth:
		return SideBySide(pair.Color, Colorize(pair.Depth, alpha)), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownView, view)
	}
}

// EncodeJPEG writes img as a baseline JPEG.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}

	return nil
}

// JPEGBytes encodes img into a new buffer.
func JPEGBytes(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer

	if err := EncodeJPEG(&buf, img, quality); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

//nolint:gochecknoglobals // stateless encoder
var png16 = &png.Encoder{CompressionLevel: png.BestSpeed}

// EncodePNG16 writes depth as a 16-bit grayscale PNG, preserving raw units.
func EncodePNG16(w io.Writer, depth *image.Gray16) error {
	if err := png16.Encode(w, depth); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}

	return nil
}
