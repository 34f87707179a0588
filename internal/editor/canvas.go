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

	"layoutedit/internal/catalog"
	"layoutedit/internal/geometry"
	applog "layoutedit/internal/log"
	"layoutedit/internal/layout"
	"layoutedit/internal/opacity"
)

const (
	// DefaultWidgetWidth is the width, in logical units, of a newly added widget.
	DefaultWidgetWidth = 100
	// DefaultMinSize is the smallest constrained dimension, in logical units.
	DefaultMinSize = 30
)

// Options configures a Canvas. Zero values select the defaults.
type Options struct {
	Catalog  catalog.Catalog
	Settings SettingsProvider
	Units    Units
	Listener Listener
	Logger   *slog.Logger

	// DefaultWidth and MinSize are logical units.
	DefaultWidth float64
	MinSize      float64

	// DragThreshold is in canvas units.
	DragThreshold float64
}

// Canvas owns the placed widgets, their opacities and the selection of one
// editing session. All mutation goes through its methods.
type Canvas struct {
	cat      catalog.Catalog
	settings SettingsProvider
	units    Units
	listener Listener
	log      *slog.Logger
	drag     *DragController

	defaultWidth int
	minSize      int

	size    geometry.Size
	order   []catalog.WidgetKind
	rects   map[catalog.WidgetKind]geometry.Rect
	opacity opacity.Map
	global  int

	selected    catalog.WidgetKind
	hasSelected bool
	anchor      geometry.Anchor

	modified bool
}

// New creates an empty canvas of zero size. Call Instantiate or Resize before use.
func New(opts Options) *Canvas {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Units == nil {
		opts.Units = Density(1)
	}
	if opts.Logger == nil {
		opts.Logger = applog.WithComponent("editor")
	}
	if opts.DefaultWidth <= 0 {
		opts.DefaultWidth = DefaultWidgetWidth
	}
	if opts.MinSize <= 0 {
		opts.MinSize = DefaultMinSize
	}
	c := &Canvas{
		cat:          opts.Catalog,
		settings:     opts.Settings,
		units:        opts.Units,
		listener:     opts.Listener,
		log:          opts.Logger,
		defaultWidth: max(1, opts.Units.ToCanvas(opts.DefaultWidth)),
		minSize:      max(1, opts.Units.ToCanvas(opts.MinSize)),
		rects:        make(map[catalog.WidgetKind]geometry.Rect),
		opacity:      opacity.Map{},
	}
	c.global = c.readGlobalOpacity()
	c.drag = newDragController(c, opts.DragThreshold, opts.Logger)
	return c
}

// SetListener replaces the selection listener. Nil detaches it.
func (c *Canvas) SetListener(l Listener) { c.listener = l }

// Catalog returns the widget catalog the canvas decodes against.
func (c *Canvas) Catalog() catalog.Catalog { return c.cat }

// Instantiate replaces the canvas content with a persisted layout laid out on
// a canvas of the given size. Entries that cannot be decoded are skipped and
// returned. Widgets are clamped into the canvas. The modified flag is cleared
// and the global opacity is re-read.
func (c *Canvas) Instantiate(entries []layout.PersistedEntry, size geometry.Size) []*layout.EntryError {
	l := applog.WithOperation(c.log, "instantiate")
	c.deselect()
	c.drag.Cancel()

	widgets, opac, errs := layout.FromPersisted(c.cat, entries)
	for _, e := range errs {
		l.Warn("skipping layout entry", slog.Int("index", e.Index), slog.String("component", e.Component), slog.Any("err", e.Err))
	}

	c.size = size
	c.order = c.order[:0]
	c.rects = make(map[catalog.WidgetKind]geometry.Rect, len(widgets))
	for _, w := range widgets {
		c.order = append(c.order, w.Kind)
		c.rects[w.Kind] = geometry.ClampInto(w.Rect, size)
	}
	c.opacity = opac
	c.global = c.readGlobalOpacity()
	c.modified = false
	l.Debug("layout instantiated", slog.Int("widgets", len(widgets)), slog.String("size", size.String()))
	return errs
}

// Build snapshots the widgets and their opacities for persistence, in
// placement order.
func (c *Canvas) Build() []layout.PersistedEntry {
	return layout.ToPersisted(c.Widgets(), c.opacity)
}

// Widgets returns the placed widgets in placement order; later widgets are on top.
func (c *Canvas) Widgets() []layout.PlacedWidget {
	out := make([]layout.PlacedWidget, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, layout.PlacedWidget{Kind: k, Rect: c.rects[k]})
	}
	return out
}

// Kinds returns the placed kinds in catalog order.
func (c *Canvas) Kinds() []catalog.WidgetKind {
	var out []catalog.WidgetKind
	for _, k := range c.cat.Kinds() {
		if _, ok := c.rects[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Available returns the catalog kinds that can still be added.
func (c *Canvas) Available() []catalog.WidgetKind { return catalog.Available(c.cat, c.order) }

// Rect returns the rect of a placed widget.
func (c *Canvas) Rect(k catalog.WidgetKind) (geometry.Rect, bool) {
	r, ok := c.rects[k]
	return r, ok
}

// Size returns the current canvas size.
func (c *Canvas) Size() geometry.Size { return c.size }

// Resize records a new canvas size reported by the host and clamps every
// widget back inside it. It reports whether any widget moved.
func (c *Canvas) Resize(size geometry.Size) bool {
	if size == c.size {
		return false
	}
	c.size = size
	moved := false
	for _, k := range c.order {
		r := c.rects[k]
		if nr := geometry.ClampInto(r, size); nr != r {
			c.rects[k] = nr
			moved = true
		}
	}
	c.log.Debug("canvas resized", slog.String("size", size.String()), slog.Bool("moved", moved))
	return moved
}

// IsModifiedByUser reports whether the layout changed since the last Instantiate.
func (c *Canvas) IsModifiedByUser() bool { return c.modified }

// MarkSaved clears the modified flag once the host has stored the layout.
func (c *Canvas) MarkSaved() { c.modified = false }

// AddWidget places k at the origin with the default width, its height derived
// from the kind's aspect ratio, and opacity 100. It is a no-op returning false
// when k is already placed or not in the catalog.
func (c *Canvas) AddWidget(k catalog.WidgetKind) bool {
	info, ok := c.cat.Lookup(k)
	if !ok {
		c.log.Debug("add rejected: unknown kind", slog.String("kind", string(k)))
		return false
	}
	if _, placed := c.rects[k]; placed {
		c.log.Debug("add rejected: already placed", slog.String("kind", string(k)))
		return false
	}
	h := max(1, int(float64(c.defaultWidth)/info.AspectRatio))
	c.rects[k] = geometry.ClampInto(geometry.R(0, 0, c.defaultWidth, h), c.size)
	c.order = append(c.order, k)
	c.opacity.Set(k, opacity.Opaque)
	c.modified = true
	return true
}

// RemoveSelected deletes the selected widget. The deselection event fires first.
func (c *Canvas) RemoveSelected() bool {
	k, ok := c.Selected()
	if !ok {
		return false
	}
	c.deselect()
	delete(c.rects, k)
	for i, o := range c.order {
		if o == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.modified = true
	return true
}

// Selected returns the selected kind.
func (c *Canvas) Selected() (catalog.WidgetKind, bool) { return c.selected, c.hasSelected }

// HasSelection reports whether a widget is selected.
func (c *Canvas) HasSelection() bool { return c.hasSelected }

// Anchor returns the anchor computed when the current selection was made.
func (c *Canvas) Anchor() (geometry.Anchor, bool) { return c.anchor, c.hasSelected }

// SelectedPosition returns the top-left of the selected widget in logical units.
func (c *Canvas) SelectedPosition() (x, y float64, ok bool) {
	r, ok := c.selectedRect()
	if !ok {
		return 0, 0, false
	}
	return c.units.ToLogical(r.X), c.units.ToLogical(r.Y), true
}

// IsSelectedInUpperHalf reports whether the selected widget's top edge is in
// the upper half of the canvas. Hosts use it to place controls opposite the widget.
func (c *Canvas) IsSelectedInUpperHalf() bool {
	r, ok := c.selectedRect()
	return ok && r.Y < c.size.H/2
}

// Nudge moves the selected widget by exactly one canvas unit. Selection and
// anchor are unchanged. It returns false when nothing is selected.
func (c *Canvas) Nudge(dir Direction) bool {
	k, ok := c.Selected()
	if !ok {
		return false
	}
	dx, dy := dir.Delta()
	r := c.rects[k]
	c.moveTo(k, geometry.Point{X: r.X + dx, Y: r.Y + dy})
	return true
}

// MoveSelected moves the selected widget by dx,dy logical units.
func (c *Canvas) MoveSelected(dx, dy float64) bool {
	k, ok := c.Selected()
	if !ok {
		return false
	}
	r := c.rects[k]
	c.moveTo(k, geometry.Point{X: r.X + c.units.ToCanvas(dx), Y: r.Y + c.units.ToCanvas(dy)})
	return true
}

// ScaleSelected resizes the selected widget to fraction of its scaling range,
// keeping its anchor corner fixed.
func (c *Canvas) ScaleSelected(fraction float64) bool {
	k, ok := c.Selected()
	if !ok {
		return false
	}
	c.rects[k] = geometry.Scale(c.anchor, c.rects[k], catalog.AspectRatio(c.cat, k), fraction, c.size, c.minSize)
	c.modified = true
	return true
}

// SetSelectedOpacity stores a clamped opacity for the selected widget.
func (c *Canvas) SetSelectedOpacity(v int) bool {
	k, ok := c.Selected()
	if !ok {
		return false
	}
	c.opacity.Set(k, v)
	c.modified = true
	return true
}

// SelectedOpacity returns the stored opacity of the selected widget, or 100.
func (c *Canvas) SelectedOpacity() int {
	k, ok := c.Selected()
	if !ok {
		return opacity.Opaque
	}
	return c.opacity.Get(k)
}

// Opacity returns the stored opacity of k, or 100.
func (c *Canvas) Opacity(k catalog.WidgetKind) int { return c.opacity.Get(k) }

// GlobalOpacity returns the global opacity read at instantiation.
func (c *Canvas) GlobalOpacity() int { return c.global }

// RefreshGlobalOpacity re-reads the global opacity from the settings collaborator.
func (c *Canvas) RefreshGlobalOpacity() { c.global = c.readGlobalOpacity() }

// EffectiveAlpha is the alpha k renders with outside the editor.
func (c *Canvas) EffectiveAlpha(k catalog.WidgetKind) float64 {
	return opacity.Effective(c.global, c.opacity.Get(k))
}

// DisplayAlpha is the alpha k is shown with in the editor.
func (c *Canvas) DisplayAlpha(k catalog.WidgetKind) float64 {
	return opacity.Display(c.global, c.opacity.Get(k), c.hasSelected && c.selected == k)
}

// PointerDown forwards a press to the drag controller. It returns false when
// the press missed every widget.
func (c *Canvas) PointerDown(x, y float64) bool { return c.drag.Down(x, y) }
func (c *Canvas) PointerMove(x, y float64) bool { return c.drag.Move(x, y) }
func (c *Canvas) PointerUp(x, y float64) bool   { return c.drag.Up(x, y) }
func (c *Canvas) PointerCancel()                { c.drag.Cancel() }

// DragState exposes the pointer state.
func (c *Canvas) DragState() DragState { return c.drag.State() }

// Tap handles a click on empty canvas. It deselects the current widget and
// returns true, or returns false when nothing was selected so the host can
// handle the click itself.
func (c *Canvas) Tap() bool {
	if !c.hasSelected {
		return false
	}
	c.deselect()
	return true
}

// Deselect clears the selection, emitting the deselection event.
func (c *Canvas) Deselect() { c.deselect() }

// Teardown detaches the listener and drops all state.
func (c *Canvas) Teardown() {
	c.listener = nil
	c.drag.Cancel()
	c.hasSelected = false
	c.selected = ""
	c.order = nil
	c.rects = make(map[catalog.WidgetKind]geometry.Rect)
	c.opacity = opacity.Map{}
	c.modified = false
}

func (c *Canvas) readGlobalOpacity() int {
	if c.settings == nil {
		return DefaultGlobalOpacity
	}
	return opacity.Clamp(c.settings.GlobalOpacity())
}

func (c *Canvas) selectedRect() (geometry.Rect, bool) {
	if !c.hasSelected {
		return geometry.Rect{}, false
	}
	r, ok := c.rects[c.selected]
	return r, ok
}

// dragHost

func (c *Canvas) widgetAt(p geometry.Point) (catalog.WidgetKind, bool) {
	for i := len(c.order) - 1; i >= 0; i-- { // top-most first
		k := c.order[i]
		if c.rects[k].Contains(p) {
			return k, true
		}
	}
	return "", false
}

func (c *Canvas) rectOf(k catalog.WidgetKind) (geometry.Rect, bool) { return c.Rect(k) }

func (c *Canvas) selection() (catalog.WidgetKind, bool) { return c.Selected() }

func (c *Canvas) selectKind(k catalog.WidgetKind) {
	r, ok := c.rects[k]
	if !ok {
		return
	}
	aspect := catalog.AspectRatio(c.cat, k)
	c.selected = k
	c.hasSelected = true
	c.anchor = geometry.ResolveAnchor(c.size, r)
	bounds := geometry.ScaleBounds(c.size, aspect, c.minSize)
	info := SelectionInfo{
		ScaleFraction: bounds.Fraction(r),
		MaxDimension:  bounds.Max,
		MinDimension:  bounds.Min,
	}
	c.log.Debug("widget selected", slog.String("kind", string(k)), slog.String("anchor", c.anchor.String()), slog.Float64("scale", info.ScaleFraction))
	if c.listener != nil {
		c.listener.OnSelected(k, info)
	}
}

func (c *Canvas) deselect() {
	if !c.hasSelected {
		return
	}
	k := c.selected
	c.hasSelected = false
	c.selected = ""
	c.log.Debug("widget deselected", slog.String("kind", string(k)))
	if c.listener != nil {
		c.listener.OnDeselected(k)
	}
}

func (c *Canvas) moveTo(k catalog.WidgetKind, p geometry.Point) {
	r, ok := c.rects[k]
	if !ok {
		return
	}
	c.rects[k] = geometry.ClampInto(r.At(p), c.size)
	c.modified = true
}
