/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"errors"
	"math/rand"
	"path/filepath"
	"reflect"
	"testing"

	"layoutedit/internal/catalog"
	"layoutedit/internal/geometry"
	"layoutedit/internal/opacity"
)

func intp(v int) *int { return &v }

func TestRoundTripPreservesWidgetsAndOpacity(t *testing.T) {
	cat := catalog.Default()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		var widgets []PlacedWidget
		opac := opacity.Map{}
		for _, k := range cat.Kinds() {
			if rng.Intn(2) == 0 {
				continue
			}
			widgets = append(widgets, PlacedWidget{Kind: k, Rect: geometry.R(rng.Intn(800), rng.Intn(480), 1+rng.Intn(200), 1+rng.Intn(200))})
			opac.Set(k, rng.Intn(101))
		}
		gotW, gotO, errs := FromPersisted(cat, ToPersisted(widgets, opac))
		if len(errs) != 0 {
			t.Fatalf("unexpected decode errors: %v", errs)
		}
		if len(widgets) == 0 && len(gotW) == 0 {
			continue
		}
		if !reflect.DeepEqual(gotW, widgets) {
			t.Fatalf("widgets differ:\n got %v\nwant %v", gotW, widgets)
		}
		if !reflect.DeepEqual(gotO, opac) {
			t.Fatalf("opacities differ:\n got %v\nwant %v", gotO, opac)
		}
	}
}

func TestToPersistedDefaultsOpacity(t *testing.T) {
	entries := ToPersisted([]PlacedWidget{{Kind: catalog.DPad, Rect: geometry.R(1, 2, 3, 4)}}, nil)
	if len(entries) != 1 || entries[0].Opacity == nil || *entries[0].Opacity != 100 {
		t.Fatalf("expected opacity 100, got %+v", entries)
	}
	if entries[0].Component != "DPAD" || entries[0].Rect != (Rect{1, 2, 3, 4}) {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestFromPersistedSkipsBadEntries(t *testing.T) {
	entries := []PersistedEntry{
		{Rect: Rect{0, 0, 100, 100}, Component: "dpad"},
		{Rect: Rect{0, 0, 100, 100}, Component: "JOYSTICK", Opacity: intp(20)},
		{Rect: Rect{0, 0, 0, 100}, Component: "BUTTONS"},
		{Rect: Rect{10, 10, 50, 50}, Component: "Button_L", Opacity: intp(250)},
	}
	widgets, opac, errs := FromPersisted(catalog.Default(), entries)
	if len(widgets) != 2 {
		t.Fatalf("expected 2 decoded widgets, got %v", widgets)
	}
	if len(errs) != 2 || errs[0].Index != 1 || errs[1].Index != 2 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !errors.Is(errs[0], catalog.ErrUnknownKind) || !errors.Is(errs[1], ErrInvalidRect) {
		t.Fatalf("errors should wrap their causes: %v", errs)
	}
	if opac.Get(catalog.DPad) != 100 || opac.Get(catalog.ButtonL) != 100 {
		t.Fatalf("missing opacity should be 100 and oversized should clamp: %v", opac)
	}
}

func TestFromPersistedStrictAborts(t *testing.T) {
	entries := []PersistedEntry{
		{Rect: Rect{0, 0, 100, 100}, Component: "DPAD"},
		{Rect: Rect{0, 0, 100, 100}, Component: "nope"},
	}
	if _, _, err := FromPersistedStrict(catalog.Default(), entries); !errors.Is(err, catalog.ErrUnknownKind) {
		t.Fatalf("expected strict decode to fail, got %v", err)
	}
}

func TestFromPersistedDuplicateKindLastWins(t *testing.T) {
	entries := []PersistedEntry{
		{Rect: Rect{0, 0, 100, 100}, Component: "DPAD", Opacity: intp(10)},
		{Rect: Rect{0, 0, 60, 60}, Component: "BUTTONS"},
		{Rect: Rect{5, 5, 80, 80}, Component: "DPAD", Opacity: intp(70)},
	}
	widgets, opac, _ := FromPersisted(catalog.Default(), entries)
	if len(widgets) != 2 || widgets[0].Kind != catalog.DPad || widgets[0].Rect != geometry.R(5, 5, 80, 80) {
		t.Fatalf("unexpected widgets %v", widgets)
	}
	if opac.Get(catalog.DPad) != 70 {
		t.Fatalf("later opacity should win, got %d", opac.Get(catalog.DPad))
	}
}

func TestMissingOpacityInJSON(t *testing.T) {
	doc := []byte(`{"id":"x","components":[{"rect":{"x":1,"y":2,"width":30,"height":40},"component":"TOP_SCREEN"}]}`)
	l, err := Unmarshal(JSON, doc)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(l.Components) != 1 || l.Components[0].Opacity != nil || l.Components[0].OpacityOrDefault() != 100 {
		t.Fatalf("unexpected components %+v", l.Components)
	}
	if l.Orientation != Landscape || l.ID == "x" {
		t.Fatalf("Normalize should fill defaults: %+v", l)
	}
}

func sampleLayout() Layout {
	l := New("Sample", Portrait)
	l.Components = ToPersisted([]PlacedWidget{
		{Kind: catalog.TopScreen, Rect: geometry.R(0, 0, 256, 192)},
		{Kind: catalog.DPad, Rect: geometry.R(10, 300, 100, 100)},
	}, opacity.Map{catalog.TopScreen: 100, catalog.DPad: 40})
	return l
}

func TestCodecsRoundTrip(t *testing.T) {
	want := sampleLayout()
	dir := t.TempDir()
	for _, name := range []string{"a.json", "a.yaml", "a.yml", "a.toml"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, want); err != nil {
			t.Fatalf("WriteFile(%s) error: %v", name, err)
		}
		got, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error: %v", name, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s round trip mismatch:\n got %+v\nwant %+v", name, got, want)
		}
	}
}

func TestFormatFromPathRejectsUnknown(t *testing.T) {
	if _, err := FormatFromPath("layout.xml"); err == nil {
		t.Fatalf("expected error for .xml")
	}
}

func TestValidate(t *testing.T) {
	if err := ValidateLayout(sampleLayout()); err != nil {
		t.Fatalf("sample layout should validate: %v", err)
	}
	bad := []byte(`{"id":"x","components":[{"rect":{"x":1,"y":2,"width":0,"height":40}}]}`)
	err := Validate(bad)
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestOrientationCanvasSize(t *testing.T) {
	if got := Landscape.CanvasSize(); got != (geometry.Size{W: 800, H: 480}) {
		t.Fatalf("landscape = %v", got)
	}
	if got := Portrait.CanvasSize(); got != (geometry.Size{W: 480, H: 800}) {
		t.Fatalf("portrait = %v", got)
	}
	if got := Orientation("").CanvasSize(); got != Landscape.CanvasSize() {
		t.Fatalf("empty orientation = %v", got)
	}
}
