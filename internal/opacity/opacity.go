/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package opacity combines the global and per-widget opacity settings into
// the alpha a widget is rendered with.
package opacity

import "layoutedit/internal/catalog"

const (
	// Opaque is the default opacity of a newly placed widget.
	Opaque = 100
	// SelectedBoost is added to the alpha of the selected widget in the editor.
	SelectedBoost = 0.2
)

// Clamp limits a percentage to [0,100].
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Effective returns (global/100)*(widget/100) with both inputs clamped.
func Effective(global, widget int) float64 {
	return float64(Clamp(global)*Clamp(widget)) / 10000
}

// Display is the alpha shown in the editor. The selected widget is boosted so
// it stands out; the result never exceeds 1. It is never persisted.
func Display(global, widget int, selected bool) float64 {
	a := Effective(global, widget)
	if selected {
		a = min(1.0, a+SelectedBoost)
	}
	return a
}

// Map holds per-widget opacity keyed by kind. Absent kinds read as Opaque.
// The zero value is ready to use.
type Map map[catalog.WidgetKind]int

// Get returns the opacity of k, or Opaque if none is recorded.
func (m Map) Get(k catalog.WidgetKind) int {
	if v, ok := m[k]; ok {
		return v
	}
	return Opaque
}

// Set records a clamped opacity for k.
func (m Map) Set(k catalog.WidgetKind, v int) { m[k] = Clamp(v) }

// Clone returns an independent copy.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
