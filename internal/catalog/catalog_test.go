/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"errors"
	"testing"
)

func TestParseKindCaseInsensitive(t *testing.T) {
	c := Default()
	for _, in := range []string{"top_screen", "TOP_SCREEN", " Top_Screen ", "top-screen"} {
		k, err := ParseKind(c, in)
		if err != nil {
			t.Fatalf("ParseKind(%q) error: %v", in, err)
		}
		if k != TopScreen {
			t.Fatalf("ParseKind(%q) = %v, want %v", in, k, TopScreen)
		}
	}
}

func TestParseKindUnknown(t *testing.T) {
	_, err := ParseKind(Default(), "JOYSTICK")
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestAvailableSkipsPlaced(t *testing.T) {
	c := NewStatic(
		Entry{Kind: "A", Info: Info{AspectRatio: 1}},
		Entry{Kind: "B", Info: Info{AspectRatio: 2}},
		Entry{Kind: "C", Info: Info{AspectRatio: 0.5}},
	)
	got := Available(c, []WidgetKind{"B"})
	if len(got) != 2 || got[0] != "A" || got[1] != "C" {
		t.Fatalf("Available = %v", got)
	}
}

func TestNewStaticNormalizesAspect(t *testing.T) {
	c := NewStatic(Entry{Kind: "A"}, Entry{Kind: "B", Info: Info{AspectRatio: 3}}, Entry{Kind: "A", Info: Info{AspectRatio: 2}})
	if got := c.Kinds(); len(got) != 2 || got[0] != "A" {
		t.Fatalf("duplicate kinds should keep first position: %v", got)
	}
	if AspectRatio(c, "A") != 2 {
		t.Fatalf("later duplicate should replace info")
	}
	if AspectRatio(c, "Z") != 1 {
		t.Fatalf("unknown kind should default to 1")
	}
}

func TestDefaultCatalogScreens(t *testing.T) {
	c := Default()
	for _, k := range c.Kinds() {
		s, ok := c.Lookup(k)
		if !ok || s.AspectRatio <= 0 {
			t.Fatalf("bad info for %v: %+v", k, s)
		}
		if s.Screen != (k == TopScreen || k == BottomScreen) {
			t.Fatalf("unexpected screen flag for %v", k)
		}
	}
}
