/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders layout previews as PNG, SVG or PDF.
package export

import (
	"image/color"

	"layoutedit/internal/catalog"
	"layoutedit/internal/geometry"
	"layoutedit/internal/layout"
	"layoutedit/internal/opacity"
)

// Item is one widget as it is rendered.
type Item struct {
	Kind   catalog.WidgetKind
	Label  string
	Rect   geometry.Rect
	Screen bool
	// Alpha is the effective alpha, in [0,1].
	Alpha float64
}

// Scene is a layout resolved against a catalog and a canvas size.
type Scene struct {
	Name   string
	Canvas geometry.Size
	Items  []Item
}

// NewScene decodes l for a canvas of the given size. Entries that cannot be
// decoded are skipped and returned. Widgets are clamped into the canvas and
// drawn with the effective alpha for the given global opacity.
func NewScene(cat catalog.Catalog, l layout.Layout, canvas geometry.Size, global int) (Scene, []*layout.EntryError) {
	widgets, opac, errs := layout.FromPersisted(cat, l.Components)
	s := Scene{Name: l.Name, Canvas: canvas, Items: make([]Item, 0, len(widgets))}
	for _, w := range widgets {
		info, _ := cat.Lookup(w.Kind)
		label := info.Label
		if label == "" {
			label = string(w.Kind)
		}
		s.Items = append(s.Items, Item{
			Kind:   w.Kind,
			Label:  label,
			Rect:   geometry.ClampInto(w.Rect, canvas),
			Screen: info.Screen,
			Alpha:  opacity.Effective(global, opac.Get(w.Kind)),
		})
	}
	return s, errs
}

// Options controls preview rendering.
type Options struct {
	// Scale multiplies canvas units into output units; <= 0 means 1.
	Scale float64
	// Labels draws the widget label inside each rect.
	Labels bool
	// HotCorners outlines the corner regions of the given size; 0 disables them.
	HotCorners int
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

var (
	backgroundColor = color.RGBA{R: 24, G: 24, B: 28, A: 255}
	screenColor     = color.RGBA{R: 70, G: 110, B: 170, A: 255}
	buttonColor     = color.RGBA{R: 210, G: 130, B: 50, A: 255}
	strokeColor     = color.RGBA{R: 235, G: 235, B: 235, A: 255}
	cornerColor     = color.RGBA{R: 120, G: 200, B: 120, A: 255}
)

func fillFor(it Item) color.RGBA {
	if it.Screen {
		return screenColor
	}
	return buttonColor
}

// hotCornerRects returns the four corner squares of a canvas, clipped to it.
func hotCornerRects(canvas geometry.Size, size int) []geometry.Rect {
	if size <= 0 {
		return nil
	}
	w, h := min(size, canvas.W), min(size, canvas.H)
	return []geometry.Rect{
		geometry.R(0, 0, w, h),
		geometry.R(canvas.W-w, 0, w, h),
		geometry.R(0, canvas.H-h, w, h),
		geometry.R(canvas.W-w, canvas.H-h, w, h),
	}
}
