/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"layoutedit/internal/catalog"
	"layoutedit/internal/geometry"
	"layoutedit/internal/layout"
)

func sampleScene(t *testing.T) Scene {
	t.Helper()
	op := 40
	l := layout.New("Test & Layout", layout.Landscape)
	l.Components = []layout.PersistedEntry{
		{Rect: layout.Rect{X: 0, Y: 0, Width: 256, Height: 192}, Component: string(catalog.TopScreen)},
		{Rect: layout.Rect{X: 700, Y: 400, Width: 200, Height: 200}, Component: string(catalog.DPad), Opacity: &op},
		{Rect: layout.Rect{X: 10, Y: 10, Width: 10, Height: 10}, Component: "JOYSTICK"},
	}
	s, errs := NewScene(catalog.Default(), l, geometry.Size{W: 800, H: 480}, 50)
	if len(errs) != 1 {
		t.Fatalf("expected one skipped entry, got %v", errs)
	}
	return s
}

func TestNewSceneClampsAndComputesAlpha(t *testing.T) {
	s := sampleScene(t)
	if len(s.Items) != 2 {
		t.Fatalf("items: %+v", s.Items)
	}
	top, dpad := s.Items[0], s.Items[1]
	if !top.Screen || top.Alpha != 0.5 || top.Label != "Top screen" {
		t.Fatalf("top screen item: %+v", top)
	}
	if dpad.Rect != geometry.R(600, 280, 200, 200) {
		t.Fatalf("dpad not clamped: %v", dpad.Rect)
	}
	if dpad.Alpha != 0.2 {
		t.Fatalf("dpad alpha: %v", dpad.Alpha)
	}
}

func TestPNGDimensionsAndBlend(t *testing.T) {
	s := sampleScene(t)
	var buf bytes.Buffer
	if err := PNG(&buf, s, Options{Scale: 0.5, Labels: true, HotCorners: 75}); err != nil {
		t.Fatalf("png: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 240 {
		t.Fatalf("bounds: %v", b)
	}
	raw := Raster(s, Options{})
	bg := raw.RGBAAt(790, 10)
	if bg != backgroundColor {
		t.Fatalf("background pixel: %v", bg)
	}
	// inside the dpad, away from its border: 20% orange over the background
	px := raw.RGBAAt(700, 380)
	if px == bg || px.R <= bg.R || px.R >= buttonColor.R {
		t.Fatalf("blended pixel: %v", px)
	}
}

func TestSVGContainsWidgets(t *testing.T) {
	s := sampleScene(t)
	var buf bytes.Buffer
	if err := SVG(&buf, s, Options{Labels: true, HotCorners: 75}); err != nil {
		t.Fatalf("svg: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`viewBox="0 0 800 480"`, `id="dpad"`, `fill-opacity="0.2"`, "Test &amp; Layout", `class="hot-corner"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("svg missing %q", want)
		}
	}
}

func TestPDFWritesDocument(t *testing.T) {
	s := sampleScene(t)
	var buf bytes.Buffer
	if err := PDF(&buf, s, Options{Labels: true}); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", buf.Bytes()[:min(8, buf.Len())])
	}
	if err := PDF(&buf, Scene{}, Options{}); err == nil {
		t.Fatalf("expected error for empty canvas")
	}
}

func TestWriteFileAndBatchExport(t *testing.T) {
	s := sampleScene(t)
	dir := t.TempDir()
	if err := WriteFile(filepath.Join(dir, "x.gif"), s, Options{}); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	paths, err := BatchExport(s, PresetPrint, 75, filepath.Join(dir, "print"), "handheld")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths: %v", paths)
	}
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil || st.Size() == 0 {
			t.Fatalf("missing or empty %s: %v", p, err)
		}
	}
	if filepath.Base(paths[0]) != "handheld.pdf" {
		t.Fatalf("first path %s", paths[0])
	}
}
