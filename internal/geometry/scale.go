/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import "math"

// Constraint describes the scaling range of a widget on a canvas. Exactly one
// dimension is driven by the scale fraction; the other follows from the
// widget's aspect ratio.
type Constraint struct {
	// Height is true when height is the constrained dimension.
	Height bool
	Min    int
	Max    int
}

// ScaleBounds computes the constraint for a widget with the given aspect ratio
// (width/height). When the canvas is relatively wider than the widget, height
// is constrained to [minSize, canvas.H/2]; otherwise width is constrained to
// [minSize, canvas.W/2]. Max never drops below minSize.
func ScaleBounds(canvas Size, aspect float64, minSize int) Constraint {
	c := Constraint{Min: minSize}
	if canvas.H > 0 && float64(canvas.W)/float64(canvas.H) > aspect {
		c.Height = true
		c.Max = canvas.H / 2
	} else {
		c.Max = canvas.W / 2
	}
	if c.Max < c.Min {
		c.Max = c.Min
	}
	return c
}

// Dimension maps a fraction in [0,1] to the constrained dimension, rounded to
// the nearest integer. Out-of-range fractions are clamped first.
func (c Constraint) Dimension(fraction float64) int {
	f := ClampFraction(fraction)
	return int(math.Round(float64(c.Min) + f*float64(c.Max-c.Min)))
}

// Fraction is the inverse of Dimension for the current size of r. The result
// is not clamped; a widget smaller than Min yields a negative fraction.
func (c Constraint) Fraction(r Rect) float64 {
	if c.Max == c.Min {
		return 0
	}
	cur := r.W
	if c.Height {
		cur = r.H
	}
	return float64(cur-c.Min) / float64(c.Max-c.Min)
}

// SizeFor derives the full size from a constrained dimension. The derived
// dimension is truncated and never smaller than 1.
func (c Constraint) SizeFor(dim int, aspect float64) Size {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		aspect = 1
	}
	var s Size
	if c.Height {
		s = Size{W: int(float64(dim) * aspect), H: dim}
	} else {
		s = Size{W: dim, H: int(float64(dim) / aspect)}
	}
	if s.W < 1 {
		s.W = 1
	}
	if s.H < 1 {
		s.H = 1
	}
	return s
}

// ClampFraction limits f to [0,1]. NaN maps to 0.
func ClampFraction(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Scale resizes current to the given fraction of its scaling range while
// keeping the corner named by anchor at its pre-scale position. If the new
// rect would leave the canvas it is shifted inward; it is never shrunk below
// the computed size.
func Scale(anchor Anchor, current Rect, aspect, fraction float64, canvas Size, minSize int) Rect {
	c := ScaleBounds(canvas, aspect, minSize)
	s := c.SizeFor(c.Dimension(fraction), aspect)

	fixed := anchor.Corner(current)
	next := Rect{X: fixed.X, Y: fixed.Y, W: s.W, H: s.H}
	if !anchor.Left() {
		next.X = fixed.X - s.W
	}
	if !anchor.Top() {
		next.Y = fixed.Y - s.H
	}
	return ClampInto(next, canvas)
}
