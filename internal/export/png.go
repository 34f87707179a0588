/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"layoutedit/internal/geometry"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PNG rasterizes the scene. Widgets are alpha-blended over the background in
// placement order.
func PNG(w io.Writer, s Scene, opt Options) error {
	img := Raster(s, opt)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Raster draws the scene into a new image.
func Raster(s Scene, opt Options) *image.RGBA {
	k := opt.scale()
	pixW := max(1, int(math.Round(float64(s.Canvas.W)*k)))
	pixH := max(1, int(math.Round(float64(s.Canvas.H)*k)))
	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: backgroundColor}, image.Point{}, draw.Src)

	for _, r := range hotCornerRects(s.Canvas, opt.HotCorners) {
		x0, y0, x1, y1 := scaled(r, k)
		strokeRect(img, x0, y0, x1, y1, cornerColor)
	}
	for _, it := range s.Items {
		x0, y0, x1, y1 := scaled(it.Rect, k)
		fc := fillFor(it)
		a := uint8(math.Round(clamp01(it.Alpha) * 255))
		blendRect(img, x0, y0, x1, y1, color.NRGBA{R: fc.R, G: fc.G, B: fc.B, A: a})
		strokeRect(img, x0, y0, x1, y1, strokeColor)
		if opt.Labels {
			drawLabel(img, x0+3, y0+14, it.Label, x1)
		}
	}
	return img
}

func scaled(r geometry.Rect, k float64) (x0, y0, x1, y1 int) {
	x0 = int(math.Round(float64(r.X) * k))
	y0 = int(math.Round(float64(r.Y) * k))
	x1 = int(math.Round(float64(r.X+r.W)*k)) - 1
	y1 = int(math.Round(float64(r.Y+r.H)*k)) - 1
	return x0, y0, max(x0, x1), max(y0, y1)
}

func clamp01(f float64) float64 { return math.Max(0, math.Min(1, f)) }

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func blendRect(img *image.RGBA, x0, y0, x1, y1 int, col color.NRGBA) {
	r := image.Rect(x0, y0, x1+1, y1+1).Intersect(img.Bounds())
	draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Over)
}

// drawLabel writes text with the basic 7x13 face, cut off at maxX.
func drawLabel(img *image.RGBA, x, y int, text string, maxX int) {
	face := basicfont.Face7x13
	fits := (maxX - x) / face.Advance
	if fits <= 0 {
		return
	}
	if len(text) > fits {
		text = text[:fits]
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(strokeColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
