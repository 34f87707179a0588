/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog describes the closed set of widget kinds that can be placed
// on a layout canvas, together with their fixed aspect ratios.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a kind name does not match the catalog.
var ErrUnknownKind = errors.New("unknown widget kind")

// WidgetKind identifies a placeable widget. The string value is the canonical
// persisted name.
type WidgetKind string

const (
	TopScreen         WidgetKind = "TOP_SCREEN"
	BottomScreen      WidgetKind = "BOTTOM_SCREEN"
	DPad              WidgetKind = "DPAD"
	Buttons           WidgetKind = "BUTTONS"
	ButtonL           WidgetKind = "BUTTON_L"
	ButtonR           WidgetKind = "BUTTON_R"
	ButtonSelect      WidgetKind = "BUTTON_SELECT"
	ButtonStart       WidgetKind = "BUTTON_START"
	ButtonHinge       WidgetKind = "BUTTON_HINGE"
	ButtonPause       WidgetKind = "BUTTON_PAUSE"
	ButtonFastForward WidgetKind = "BUTTON_FAST_FORWARD_TOGGLE"
	ButtonMicrophone  WidgetKind = "BUTTON_MICROPHONE_TOGGLE"
	ButtonSoftInput   WidgetKind = "BUTTON_TOGGLE_SOFT_INPUT"
	ButtonSwapScreens WidgetKind = "BUTTON_SWAP_SCREENS"
	ButtonQuickSave   WidgetKind = "BUTTON_QUICK_SAVE"
	ButtonQuickLoad   WidgetKind = "BUTTON_QUICK_LOAD"
	ButtonRewind      WidgetKind = "BUTTON_REWIND"
)

func (k WidgetKind) String() string { return string(k) }

// Info holds the catalog facts about a widget kind.
type Info struct {
	// AspectRatio is width/height and always positive.
	AspectRatio float64
	// Screen is true for virtual screens, false for input widgets.
	Screen bool
	// Label is a short human-readable name.
	Label string
}

// Catalog is the source of widget kinds and their aspect ratios.
type Catalog interface {
	// Kinds returns every kind in presentation order.
	Kinds() []WidgetKind
	Lookup(k WidgetKind) (Info, bool)
}

// Static is a Catalog backed by an ordered list.
type Static struct {
	order []WidgetKind
	infos map[WidgetKind]Info
}

// Entry pairs a kind with its info for NewStatic.
type Entry struct {
	Kind WidgetKind
	Info Info
}

// NewStatic builds a catalog from entries. Later duplicates replace earlier
// ones but keep the first position. Non-positive aspect ratios become 1.
func NewStatic(entries ...Entry) *Static {
	c := &Static{infos: make(map[WidgetKind]Info, len(entries))}
	for _, e := range entries {
		if e.Info.AspectRatio <= 0 {
			e.Info.AspectRatio = 1
		}
		if _, dup := c.infos[e.Kind]; !dup {
			c.order = append(c.order, e.Kind)
		}
		c.infos[e.Kind] = e.Info
	}
	return c
}

func (c *Static) Kinds() []WidgetKind { return append([]WidgetKind(nil), c.order...) }

func (c *Static) Lookup(k WidgetKind) (Info, bool) {
	s, ok := c.infos[k]
	return s, ok
}

const screenAspect = 256.0 / 192.0

var defaultCatalog = NewStatic(
	Entry{TopScreen, Info{AspectRatio: screenAspect, Screen: true, Label: "Top screen"}},
	Entry{BottomScreen, Info{AspectRatio: screenAspect, Screen: true, Label: "Bottom screen"}},
	Entry{DPad, Info{AspectRatio: 1, Label: "D-pad"}},
	Entry{Buttons, Info{AspectRatio: 1, Label: "A/B/X/Y"}},
	Entry{ButtonL, Info{AspectRatio: 2, Label: "L"}},
	Entry{ButtonR, Info{AspectRatio: 2, Label: "R"}},
	Entry{ButtonSelect, Info{AspectRatio: 1, Label: "Select"}},
	Entry{ButtonStart, Info{AspectRatio: 1, Label: "Start"}},
	Entry{ButtonHinge, Info{AspectRatio: 1, Label: "Hinge"}},
	Entry{ButtonPause, Info{AspectRatio: 1, Label: "Pause"}},
	Entry{ButtonFastForward, Info{AspectRatio: 1, Label: "Fast forward"}},
	Entry{ButtonMicrophone, Info{AspectRatio: 1, Label: "Microphone"}},
	Entry{ButtonSoftInput, Info{AspectRatio: 1, Label: "Toggle controls"}},
	Entry{ButtonSwapScreens, Info{AspectRatio: 1, Label: "Swap screens"}},
	Entry{ButtonQuickSave, Info{AspectRatio: 1, Label: "Quick save"}},
	Entry{ButtonQuickLoad, Info{AspectRatio: 1, Label: "Quick load"}},
	Entry{ButtonRewind, Info{AspectRatio: 1, Label: "Rewind"}},
)

// Default returns the built-in dual-screen handheld catalog.
func Default() Catalog { return defaultCatalog }

// ParseKind resolves a name against the catalog, ignoring case and
// surrounding whitespace. Dashes are accepted in place of underscores.
func ParseKind(c Catalog, name string) (WidgetKind, error) {
	norm := strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
	for _, k := range c.Kinds() {
		if strings.EqualFold(string(k), norm) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Available lists the catalog kinds that are not in placed, in catalog order.
func Available(c Catalog, placed []WidgetKind) []WidgetKind {
	used := make(map[WidgetKind]struct{}, len(placed))
	for _, k := range placed {
		used[k] = struct{}{}
	}
	var out []WidgetKind
	for _, k := range c.Kinds() {
		if _, ok := used[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// AspectRatio returns the aspect ratio of k, or 1 when k is unknown.
func AspectRatio(c Catalog, k WidgetKind) float64 {
	if s, ok := c.Lookup(k); ok {
		return s.AspectRatio
	}
	return 1
}
