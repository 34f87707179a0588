/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"testing"

	"layoutedit/internal/catalog"
	"layoutedit/internal/geometry"
)

type fakeHost struct {
	rect     geometry.Rect
	selected bool
	moves    []geometry.Point
	calls    []string
}

func (h *fakeHost) widgetAt(p geometry.Point) (catalog.WidgetKind, bool) {
	if h.rect.Contains(p) {
		return catalog.DPad, true
	}
	return "", false
}

func (h *fakeHost) rectOf(catalog.WidgetKind) (geometry.Rect, bool) { return h.rect, true }

func (h *fakeHost) selection() (catalog.WidgetKind, bool) { return catalog.DPad, h.selected }

func (h *fakeHost) selectKind(catalog.WidgetKind) {
	h.selected = true
	h.calls = append(h.calls, "select")
}

func (h *fakeHost) deselect() {
	h.selected = false
	h.calls = append(h.calls, "deselect")
}

func (h *fakeHost) moveTo(_ catalog.WidgetKind, p geometry.Point) {
	h.rect = h.rect.At(p)
	h.moves = append(h.moves, p)
}

func TestDragThresholdIsEuclidean(t *testing.T) {
	h := &fakeHost{rect: geometry.R(0, 0, 100, 100)}
	d := newDragController(h, 0, quietLogger())
	d.Down(10, 10)
	d.Move(27, 27) // ~24.04
	if d.State() != Pressed {
		t.Fatalf("state: %v", d.State())
	}
	d.Move(28, 28) // ~25.46
	if d.State() != Dragging {
		t.Fatalf("state: %v", d.State())
	}
	if len(h.moves) != 0 {
		t.Fatalf("threshold crossing moved: %v", h.moves)
	}
}

func TestDragSelectedWidgetDeselects(t *testing.T) {
	h := &fakeHost{rect: geometry.R(0, 0, 100, 100), selected: true}
	d := newDragController(h, 0, quietLogger())
	d.Down(50, 50)
	if len(h.calls) != 0 {
		t.Fatalf("press on selected widget deselected: %v", h.calls)
	}
	d.Move(90, 50)
	if h.selected {
		t.Fatalf("drag kept selection")
	}
	d.Up(95, 55)
	if d.State() != Idle || h.selected {
		t.Fatalf("state=%v selected=%v", d.State(), h.selected)
	}
	if got := h.moves[len(h.moves)-1]; got != (geometry.Point{X: 45, Y: 5}) {
		t.Fatalf("final position: %v", got)
	}
}

func TestDragCancelAndStrayEvents(t *testing.T) {
	h := &fakeHost{rect: geometry.R(0, 0, 100, 100)}
	d := newDragController(h, 0, quietLogger())
	if d.Move(5, 5) || d.Up(5, 5) {
		t.Fatalf("idle controller consumed events")
	}
	d.Down(10, 10)
	d.Cancel()
	if d.Up(10, 10) || h.selected {
		t.Fatalf("cancelled press selected")
	}
	if _, ok := d.Target(); ok {
		t.Fatalf("target after cancel")
	}
}

func TestDragCustomThreshold(t *testing.T) {
	h := &fakeHost{rect: geometry.R(0, 0, 100, 100)}
	d := newDragController(h, 5, quietLogger())
	d.Down(10, 10)
	d.Move(16, 10)
	if d.State() != Dragging {
		t.Fatalf("state: %v", d.State())
	}
}
