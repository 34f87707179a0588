/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout defines the persisted form of a widget arrangement and the
// mapping between it and the live widget set of an editing session.
//
// The wire form mirrors what existing layout files contain:
//
//	{"rect": {"x": 0, "y": 0, "width": 100, "height": 100}, "component": "DPAD", "opacity": 100}
//
// A missing opacity decodes as 100.
package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"layoutedit/internal/catalog"
	"layoutedit/internal/geometry"
	"layoutedit/internal/opacity"
)

var (
	// ErrInvalidRect marks an entry whose width or height is not positive.
	ErrInvalidRect = errors.New("invalid rect")

	// ErrInvalidDocument is returned when a document fails schema validation.
	ErrInvalidDocument = errors.New("invalid layout document")
)

// Rect is the persisted rectangle.
type Rect struct {
	X      int `json:"x" yaml:"x" toml:"x"`
	Y      int `json:"y" yaml:"y" toml:"y"`
	Width  int `json:"width" yaml:"width" toml:"width"`
	Height int `json:"height" yaml:"height" toml:"height"`
}

func RectFrom(r geometry.Rect) Rect { return Rect{X: r.X, Y: r.Y, Width: r.W, Height: r.H} }

func (r Rect) Geometry() geometry.Rect { return geometry.R(r.X, r.Y, r.Width, r.Height) }

// PersistedEntry is the serialized form of a placed widget and its opacity.
type PersistedEntry struct {
	Rect      Rect   `json:"rect" yaml:"rect" toml:"rect"`
	Component string `json:"component" yaml:"component" toml:"component"`
	Opacity   *int   `json:"opacity,omitempty" yaml:"opacity,omitempty" toml:"opacity,omitempty"`
}

// OpacityOrDefault returns the stored opacity clamped to [0,100], or 100 when absent.
func (e PersistedEntry) OpacityOrDefault() int {
	if e.Opacity == nil {
		return opacity.Opaque
	}
	return opacity.Clamp(*e.Opacity)
}

// PlacedWidget is a widget kind at a position on the canvas.
type PlacedWidget struct {
	Kind catalog.WidgetKind
	Rect geometry.Rect
}

// EntryError reports why a single persisted entry could not be decoded.
type EntryError struct {
	Index     int
	Component string
	Err       error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d (%q): %v", e.Index, e.Component, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// ToPersisted converts the widget set into persisted entries, one per widget
// in the given order. Opacity comes from the map, defaulting to 100.
func ToPersisted(widgets []PlacedWidget, opacities opacity.Map) []PersistedEntry {
	out := make([]PersistedEntry, 0, len(widgets))
	for _, w := range widgets {
		o := opacities.Get(w.Kind)
		out = append(out, PersistedEntry{
			Rect:      RectFrom(w.Rect),
			Component: string(w.Kind),
			Opacity:   &o,
		})
	}
	return out
}

// FromPersisted decodes entries against the catalog. Entries with an unknown
// kind or a non-positive size are skipped and reported; the rest are decoded.
// When the same kind appears twice the later entry wins and keeps the
// position of the first.
func FromPersisted(c catalog.Catalog, entries []PersistedEntry) ([]PlacedWidget, opacity.Map, []*EntryError) {
	widgets := make([]PlacedWidget, 0, len(entries))
	opacities := make(opacity.Map, len(entries))
	index := make(map[catalog.WidgetKind]int, len(entries))
	var errs []*EntryError
	for i, e := range entries {
		w, err := decodeEntry(c, e)
		if err != nil {
			errs = append(errs, &EntryError{Index: i, Component: e.Component, Err: err})
			continue
		}
		if at, dup := index[w.Kind]; dup {
			widgets[at] = w
		} else {
			index[w.Kind] = len(widgets)
			widgets = append(widgets, w)
		}
		opacities.Set(w.Kind, e.OpacityOrDefault())
	}
	return widgets, opacities, errs
}

// FromPersistedStrict is FromPersisted that aborts on the first bad entry.
func FromPersistedStrict(c catalog.Catalog, entries []PersistedEntry) ([]PlacedWidget, opacity.Map, error) {
	w, o, errs := FromPersisted(c, entries)
	if len(errs) > 0 {
		return nil, nil, errs[0]
	}
	return w, o, nil
}

func decodeEntry(c catalog.Catalog, e PersistedEntry) (PlacedWidget, error) {
	k, err := catalog.ParseKind(c, e.Component)
	if err != nil {
		return PlacedWidget{}, err
	}
	r := e.Rect.Geometry()
	if !r.Valid() {
		return PlacedWidget{}, fmt.Errorf("%w: %v", ErrInvalidRect, r)
	}
	return PlacedWidget{Kind: k, Rect: r}, nil
}

// Orientation is the canvas orientation a layout was designed for.
type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
)

// CanvasSize is the reference canvas, in canvas units, used when a layout is
// edited or rendered outside a real screen.
func (o Orientation) CanvasSize() geometry.Size {
	if o == Portrait {
		return geometry.Size{W: 480, H: 800}
	}
	return geometry.Size{W: 800, H: 480}
}

// ParseOrientation accepts any case; empty input means landscape.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Landscape):
		return Landscape, nil
	case string(Portrait):
		return Portrait, nil
	default:
		return "", fmt.Errorf("unknown orientation %q", s)
	}
}

// Layout is a named, stored widget arrangement.
type Layout struct {
	ID          string           `json:"id" yaml:"id" toml:"id"`
	Name        string           `json:"name" yaml:"name" toml:"name"`
	Orientation Orientation      `json:"orientation" yaml:"orientation" toml:"orientation"`
	Components  []PersistedEntry `json:"components" yaml:"components" toml:"components"`
}

// New returns an empty layout with a fresh id.
func New(name string, o Orientation) Layout {
	if o == "" {
		o = Landscape
	}
	return Layout{ID: uuid.NewString(), Name: name, Orientation: o, Components: []PersistedEntry{}}
}

// Normalize fills missing defaults in place: a fresh id when the current one
// is not a uuid, landscape orientation and a non-nil component list.
func (l *Layout) Normalize() {
	if _, err := uuid.Parse(l.ID); err != nil {
		l.ID = uuid.NewString()
	}
	if o, err := ParseOrientation(string(l.Orientation)); err == nil {
		l.Orientation = o
	} else {
		l.Orientation = Landscape
	}
	if l.Components == nil {
		l.Components = []PersistedEntry{}
	}
}
