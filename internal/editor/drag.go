/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"
	"math"

	"layoutedit/internal/catalog"
	"layoutedit/internal/geometry"
)

// DefaultDragThreshold is the pointer travel, in canvas units, after which a
// press becomes a drag.
const DefaultDragThreshold = 25

// DragState is the pointer state of a DragController.
type DragState int

const (
	Idle DragState = iota
	Pressed
	Dragging
)

func (s DragState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// dragHost is the canvas surface the controller drives.
type dragHost interface {
	widgetAt(p geometry.Point) (catalog.WidgetKind, bool)
	rectOf(k catalog.WidgetKind) (geometry.Rect, bool)
	selection() (catalog.WidgetKind, bool)
	selectKind(k catalog.WidgetKind)
	deselect()
	moveTo(k catalog.WidgetKind, p geometry.Point)
}

// DragController disambiguates taps from drags.
//
//	Idle --down on widget--> Pressed --travel >= threshold--> Dragging
//	Pressed --up--> Idle (tap: widget selected)
//	Dragging --up--> Idle (position committed, no selection)
type DragController struct {
	host      dragHost
	threshold float64
	log       *slog.Logger

	state  DragState
	target catalog.WidgetKind
	down   [2]float64
	grab   [2]float64
}

func newDragController(host dragHost, threshold float64, l *slog.Logger) *DragController {
	if threshold <= 0 {
		threshold = DefaultDragThreshold
	}
	return &DragController{host: host, threshold: threshold, log: l}
}

// State returns the current pointer state.
func (d *DragController) State() DragState { return d.state }

// Target returns the widget under the active press, if any.
func (d *DragController) Target() (catalog.WidgetKind, bool) {
	return d.target, d.state != Idle
}

// Down handles a pointer press at canvas coordinates x,y. It returns false
// when no widget is under the pointer; the press is then left to the host.
func (d *DragController) Down(x, y float64) bool {
	if d.state != Idle {
		// a press without a matching release; start over
		d.reset()
	}
	k, ok := d.host.widgetAt(toPoint(x, y))
	if !ok {
		return false
	}
	if sel, has := d.host.selection(); has && sel != k {
		d.host.deselect()
	}
	r, _ := d.host.rectOf(k)
	d.state = Pressed
	d.target = k
	d.down = [2]float64{x, y}
	d.grab = [2]float64{x - float64(r.X), y - float64(r.Y)}
	d.log.Debug("pointer pressed", slog.String("kind", string(k)), slog.Float64("x", x), slog.Float64("y", y))
	return true
}

// Move handles pointer motion. It returns false when no press is active.
func (d *DragController) Move(x, y float64) bool {
	switch d.state {
	case Pressed:
		if math.Hypot(x-d.down[0], y-d.down[1]) < d.threshold {
			return true
		}
		d.state = Dragging
		// the anchor of a selected widget would go stale once it moves
		if sel, has := d.host.selection(); has && sel == d.target {
			d.host.deselect()
		}
		d.log.Debug("drag started", slog.String("kind", string(d.target)))
		return true
	case Dragging:
		d.follow(x, y)
		return true
	default:
		return false
	}
}

// Up handles a pointer release. A release before the drag threshold was
// reached is a tap and selects the pressed widget.
func (d *DragController) Up(x, y float64) bool {
	switch d.state {
	case Pressed:
		k := d.target
		d.reset()
		d.host.selectKind(k)
		return true
	case Dragging:
		d.follow(x, y)
		d.log.Debug("drag finished", slog.String("kind", string(d.target)))
		d.reset()
		return true
	default:
		return false
	}
}

// Cancel abandons the active press without selecting. A drag in progress
// keeps the position reached so far.
func (d *DragController) Cancel() { d.reset() }

// follow places the target at pointer minus grab offset. Once an edge clamps
// the widget, it stays put until the pointer comes back past the grab point.
func (d *DragController) follow(x, y float64) {
	cur, _ := d.host.rectOf(d.target)
	d.host.moveTo(d.target, geometry.Point{
		X: toCoord(x-d.grab[0], cur.X),
		Y: toCoord(y-d.grab[1], cur.Y),
	})
}

func (d *DragController) reset() {
	d.state = Idle
	d.target = ""
}

func toPoint(x, y float64) geometry.Point {
	return geometry.Point{X: toCoord(x, -1), Y: toCoord(y, -1)}
}

// toCoord floors v into the int32 range so clamping arithmetic cannot
// overflow. NaN yields last.
func toCoord(v float64, last int) int {
	switch {
	case math.IsNaN(v):
		return last
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Floor(v))
}
