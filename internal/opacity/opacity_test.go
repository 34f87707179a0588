/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package opacity

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEffectiveScenario(t *testing.T) {
	if got := Effective(50, 40); !near(got, 0.2) {
		t.Fatalf("Effective(50,40) = %v, want 0.2", got)
	}
	if got := Display(50, 40, true); !near(got, 0.4) {
		t.Fatalf("Display(50,40,selected) = %v, want 0.4", got)
	}
	if got := Display(50, 40, false); !near(got, 0.2) {
		t.Fatalf("Display(50,40,unselected) = %v, want 0.2", got)
	}
}

func TestDisplayBoostCapped(t *testing.T) {
	if got := Display(100, 95, true); got != 1 {
		t.Fatalf("boost must cap at 1, got %v", got)
	}
}

func TestEffectiveClampsInputs(t *testing.T) {
	if got := Effective(150, -20); got != 0 {
		t.Fatalf("Effective(150,-20) = %v, want 0", got)
	}
	if got := Effective(250, 300); got != 1 {
		t.Fatalf("Effective(250,300) = %v, want 1", got)
	}
}

func TestEffectiveProperties(t *testing.T) {
	for g := 0; g <= 100; g++ {
		for w := 0; w <= 100; w++ {
			a := Effective(g, w)
			if (a == 0) != (g == 0 || w == 0) {
				t.Fatalf("zero iff either input is zero: g=%d w=%d a=%v", g, w, a)
			}
			if (a == 1) != (g == 100 && w == 100) {
				t.Fatalf("one iff both inputs are 100: g=%d w=%d a=%v", g, w, a)
			}
			if g > 0 && a < Effective(g-1, w) {
				t.Fatalf("not monotonic in global at g=%d w=%d", g, w)
			}
			if w > 0 && a < Effective(g, w-1) {
				t.Fatalf("not monotonic in widget at g=%d w=%d", g, w)
			}
		}
	}
}

func TestMapDefaultsAndClamps(t *testing.T) {
	m := Map{}
	if m.Get("A") != Opaque {
		t.Fatalf("absent kind should read as opaque")
	}
	m.Set("A", 140)
	if m.Get("A") != 100 {
		t.Fatalf("Set should clamp, got %d", m.Get("A"))
	}
	m.Set("A", -3)
	c := m.Clone()
	m.Set("A", 50)
	if c.Get("A") != 0 {
		t.Fatalf("clone must be independent, got %d", c.Get("A"))
	}
}
