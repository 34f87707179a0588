/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geometry holds the integer value types of the layout canvas and the
// pure functions that operate on them: nearest-corner anchor resolution,
// aspect-ratio constrained scaling and bounds clamping.
// All coordinates are canvas units with the origin at the top-left corner.
package geometry

import "fmt"

// Point is a position on the canvas.
type Point struct{ X, Y int }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Size is a width/height pair.
type Size struct{ W, H int }

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool { return s.W > 0 && s.H > 0 }

// AspectRatio returns W/H, or 0 for an empty size.
func (s Size) AspectRatio() float64 {
	if s.H == 0 {
		return 0
	}
	return float64(s.W) / float64(s.H)
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.W, s.H) }

// Rect is an axis-aligned rectangle defined by its top-left corner and size.
type Rect struct {
	X, Y int
	W, H int
}

func R(x, y, w, h int) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Point    { return Point{r.X, r.Y} }
func (r Rect) Max() Point    { return Point{r.X + r.W, r.Y + r.H} }
func (r Rect) Right() int    { return r.X + r.W }
func (r Rect) Bottom() int   { return r.Y + r.H }
func (r Rect) Size() Size    { return Size{r.W, r.H} }
func (r Rect) Valid() bool   { return r.W > 0 && r.H > 0 }
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X < r.X+r.W && p.Y < r.Y+r.H
}

// At returns r moved so its top-left corner is p.
func (r Rect) At(p Point) Rect { return Rect{X: p.X, Y: p.Y, W: r.W, H: r.H} }

// Translate returns r shifted by dx,dy.
func (r Rect) Translate(dx, dy int) Rect { return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H} }

// Inside reports whether r lies entirely within a canvas of the given size.
func (r Rect) Inside(canvas Size) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= canvas.W && r.Bottom() <= canvas.H
}

func (r Rect) String() string { return fmt.Sprintf("{%d,%d %dx%d}", r.X, r.Y, r.W, r.H) }

// ClampInto shifts r so it lies within the canvas, clamping each axis
// independently to [0, canvas-size]. The size is never changed. A rect larger
// than the canvas on an axis is pinned to 0 on that axis.
func ClampInto(r Rect, canvas Size) Rect {
	r.X = clampAxis(r.X, canvas.W-r.W)
	r.Y = clampAxis(r.Y, canvas.H-r.H)
	return r
}

func clampAxis(v, hi int) int {
	if v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	return v
}
