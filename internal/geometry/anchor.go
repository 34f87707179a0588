/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import "math"

// Anchor names a canvas corner. A selected widget is resized relative to the
// anchor nearest to it so that the corner stays in place.
type Anchor int

const (
	TopLeft Anchor = iota
	TopRight
	BottomLeft
	BottomRight
)

// Anchors lists every anchor in resolution order. Ties resolve to the earlier entry.
var Anchors = [...]Anchor{TopLeft, TopRight, BottomLeft, BottomRight}

func (a Anchor) String() string {
	switch a {
	case TopLeft:
		return "TOP_LEFT"
	case TopRight:
		return "TOP_RIGHT"
	case BottomLeft:
		return "BOTTOM_LEFT"
	case BottomRight:
		return "BOTTOM_RIGHT"
	default:
		return "UNKNOWN"
	}
}

// Left reports whether the anchor is on the left edge.
func (a Anchor) Left() bool { return a == TopLeft || a == BottomLeft }

// Top reports whether the anchor is on the top edge.
func (a Anchor) Top() bool { return a == TopLeft || a == TopRight }

// Corner returns the corner of r that corresponds to a.
func (a Anchor) Corner(r Rect) Point {
	p := r.Min()
	if !a.Left() {
		p.X = r.Right()
	}
	if !a.Top() {
		p.Y = r.Bottom()
	}
	return p
}

// ResolveAnchor picks the canvas corner closest to the matching corner of r,
// by squared euclidean distance. On an exact tie the anchor enumerated first
// in Anchors wins.
func ResolveAnchor(canvas Size, r Rect) Anchor {
	left := int64(r.X)
	top := int64(r.Y)
	right := int64(canvas.W - r.Right())
	bottom := int64(canvas.H - r.Bottom())

	best := TopLeft
	bestDist := int64(math.MaxInt64)
	for _, a := range Anchors {
		dx, dy := left, top
		if !a.Left() {
			dx = right
		}
		if !a.Top() {
			dy = bottom
		}
		if d := dx*dx + dy*dy; d < bestDist {
			bestDist = d
			best = a
		}
	}
	return best
}

// HotCorner reports which corner square of the given edge length contains p.
// Corners are tested in Anchors order so overlapping squares on a tiny canvas
// resolve deterministically.
func HotCorner(canvas Size, p Point, size int) (Anchor, bool) {
	if size <= 0 {
		return TopLeft, false
	}
	for _, a := range Anchors {
		zone := Rect{X: 0, Y: 0, W: size, H: size}
		if !a.Left() {
			zone.X = canvas.W - size
		}
		if !a.Top() {
			zone.Y = canvas.H - size
		}
		if zone.Contains(p) {
			return a, true
		}
	}
	return TopLeft, false
}
