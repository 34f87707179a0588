/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui is the interactive terminal front-end of the layout editor.
// Terminal cells map to canvas units: one column is CellWidth units, one row
// is CellHeight units.
package ui

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"layoutedit/internal/catalog"
	"layoutedit/internal/editor"
	"layoutedit/internal/geometry"
	"layoutedit/internal/layout"
	applog "layoutedit/internal/log"
	"layoutedit/internal/telemetry"
)

const (
	CellWidth  = 10
	CellHeight = 20

	scaleStep   = 0.05
	opacityStep = 10
)

// SaveFunc persists the edited layout.
type SaveFunc func(layout.Layout) error

// Editor binds a Canvas to a tcell screen.
type Editor struct {
	screen tcell.Screen
	canvas *editor.Canvas
	doc    layout.Layout
	save   SaveFunc
	log    *slog.Logger

	// hotCorner is the size of the corner markers in canvas units; 0 hides them.
	hotCorner int

	fraction   float64
	pressed    bool
	emptyPress bool
	quitArmed  bool
	message    string
}

// New returns an editor for doc. canvas must already hold doc's widgets. The
// editor takes over the canvas listener.
func New(screen tcell.Screen, doc layout.Layout, canvas *editor.Canvas, save SaveFunc) *Editor {
	e := &Editor{
		screen: screen,
		canvas: canvas,
		doc:    doc,
		save:   save,
		log:    applog.WithComponent("ui").With(slog.String("layout", doc.ID)),
	}
	canvas.SetListener(editor.ListenerFuncs{
		Selected: func(k catalog.WidgetKind, info editor.SelectionInfo) {
			e.fraction = geometry.ClampFraction(info.ScaleFraction)
			e.message = fmt.Sprintf("selected %s (%d..%d)", k, info.MinDimension, info.MaxDimension)
		},
		Deselected: func(k catalog.WidgetKind) {
			e.message = ""
		},
	})
	return e
}

// SetHotCornerSize enables the corner markers.
func (e *Editor) SetHotCornerSize(n int) { e.hotCorner = n }

// Snapshot returns the document with the canvas's current widgets.
func (e *Editor) Snapshot() layout.Layout {
	d := e.doc
	d.Components = e.canvas.Build()
	return d
}

// Message is the status line text.
func (e *Editor) Message() string { return e.message }

// Run draws and handles events until the user quits or the screen is
// finalized. The screen must be initialized; Run does not call Fini.
func (e *Editor) Run() error {
	e.screen.EnableMouse()
	defer e.screen.DisableMouse()
	telemetry.Event(telemetry.EventEditorStarted, map[string]any{"widgets": len(e.canvas.Widgets())})
	for {
		e.draw()
		e.screen.Show()
		ev := e.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if e.HandleEvent(ev) {
			return nil
		}
	}
}

// HandleEvent applies one terminal event and reports whether the editor should exit.
func (e *Editor) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		e.screen.Sync()
	case *tcell.EventKey:
		return e.handleKey(ev)
	case *tcell.EventMouse:
		e.handleMouse(ev)
	}
	return false
}

func (e *Editor) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() != tcell.KeyRune || ev.Rune() != 'q' {
		e.quitArmed = false
	}
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyCtrlS:
		e.doSave()
	case tcell.KeyEscape:
		e.canvas.Deselect()
	case tcell.KeyUp:
		e.canvas.Nudge(editor.DirUp)
	case tcell.KeyDown:
		e.canvas.Nudge(editor.DirDown)
	case tcell.KeyLeft:
		e.canvas.Nudge(editor.DirLeft)
	case tcell.KeyRight:
		e.canvas.Nudge(editor.DirRight)
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		e.removeSelected()
	case tcell.KeyRune:
		return e.handleRune(ev.Rune())
	}
	return false
}

func (e *Editor) handleRune(r rune) bool {
	switch r {
	case 'q':
		if e.canvas.IsModifiedByUser() && !e.quitArmed {
			e.quitArmed = true
			e.message = "unsaved changes: press q again to quit, s to save"
			return false
		}
		return true
	case 's':
		e.doSave()
	case '+', '=':
		e.scale(scaleStep)
	case '-', '_':
		e.scale(-scaleStep)
	case ']':
		e.canvas.SetSelectedOpacity(e.canvas.SelectedOpacity() + opacityStep)
	case '[':
		e.canvas.SetSelectedOpacity(e.canvas.SelectedOpacity() - opacityStep)
	case 'a':
		e.addNext()
	case 'd':
		e.removeSelected()
	}
	return false
}

func (e *Editor) scale(delta float64) {
	f := geometry.ClampFraction(e.fraction + delta)
	if e.canvas.ScaleSelected(f) {
		e.fraction = f
	}
}

func (e *Editor) addNext() {
	avail := e.canvas.Available()
	if len(avail) == 0 {
		e.message = "every widget is already placed"
		return
	}
	k := avail[0]
	if e.canvas.AddWidget(k) {
		e.message = "added " + string(k)
		telemetry.Event(telemetry.EventWidgetAdded, map[string]any{"kind": string(k)})
	}
}

func (e *Editor) removeSelected() {
	k, ok := e.canvas.Selected()
	if !ok {
		return
	}
	if e.canvas.RemoveSelected() {
		e.message = "removed " + string(k)
		telemetry.Event(telemetry.EventWidgetRemoved, map[string]any{"kind": string(k)})
	}
}

func (e *Editor) doSave() {
	if e.save == nil {
		e.message = "saving is not available"
		return
	}
	snap := e.Snapshot()
	if err := e.save(snap); err != nil {
		e.log.Error("save failed", slog.Any("err", err))
		e.message = "save failed: " + err.Error()
		return
	}
	e.canvas.MarkSaved()
	e.message = "saved"
	telemetry.Event(telemetry.EventLayoutSaved, map[string]any{"widgets": len(snap.Components)})
}

// cellCenter maps a terminal cell to the canvas point at its centre.
func cellCenter(x, y int) (float64, float64) {
	return float64(x*CellWidth) + CellWidth/2, float64(y*CellHeight) + CellHeight/2
}

func (e *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	px, py := cellCenter(x, y)
	down := ev.Buttons()&tcell.Button1 != 0

	switch {
	case down && !e.pressed:
		e.pressed = true
		e.emptyPress = !e.canvas.PointerDown(px, py)
	case down && e.pressed:
		e.canvas.PointerMove(px, py)
	case !down && e.pressed:
		e.pressed = false
		if e.emptyPress {
			e.emptyPress = false
			e.canvas.Tap()
			return
		}
		e.canvas.PointerUp(px, py)
	}
}
