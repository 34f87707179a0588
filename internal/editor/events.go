/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor implements the interactive layout canvas: the owned widget
// table, the single selection, per-widget opacity and the pointer state
// machine that turns raw input into move, select and deselect intents.
//
// Everything here runs synchronously on the caller's goroutine and performs
// no I/O. A Canvas belongs to one editing session; it is not safe for
// concurrent use.
package editor

import (
	"layoutedit/internal/catalog"
)

// DefaultGlobalOpacity is used when no settings collaborator is configured.
const DefaultGlobalOpacity = 50

// SelectionInfo is delivered with a selection event so the host can set up
// its scaling controls.
type SelectionInfo struct {
	// ScaleFraction is the widget's current position within its scaling range.
	ScaleFraction float64
	MaxDimension  int
	MinDimension  int
}

// Listener receives selection changes. Calls happen synchronously from the
// operation that caused them.
type Listener interface {
	OnSelected(kind catalog.WidgetKind, info SelectionInfo)
	OnDeselected(kind catalog.WidgetKind)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Selected   func(kind catalog.WidgetKind, info SelectionInfo)
	Deselected func(kind catalog.WidgetKind)
}

func (f ListenerFuncs) OnSelected(kind catalog.WidgetKind, info SelectionInfo) {
	if f.Selected != nil {
		f.Selected(kind, info)
	}
}

func (f ListenerFuncs) OnDeselected(kind catalog.WidgetKind) {
	if f.Deselected != nil {
		f.Deselected(kind)
	}
}

// SettingsProvider supplies the global opacity percentage. It is read when a
// layout is instantiated and on RefreshGlobalOpacity.
type SettingsProvider interface {
	GlobalOpacity() int
}

// Units converts between logical units (density independent) and canvas units.
type Units interface {
	ToCanvas(logical float64) int
	ToLogical(canvas int) float64
}

// Density is a Units implementation: canvas units per logical unit.
// Values <= 0 behave as 1.
type Density float64

func (d Density) factor() float64 {
	if d <= 0 {
		return 1
	}
	return float64(d)
}

func (d Density) ToCanvas(logical float64) int { return int(logical * d.factor()) }
func (d Density) ToLogical(canvas int) float64 { return float64(canvas) / d.factor() }

// Direction is a discrete nudge direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Delta returns the unit step for d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	default:
		return 0, 0
	}
}
