/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"layoutedit/internal/geometry"
)

type rgb struct{ r, g, b float64 }

var (
	colBackground = rgb{24, 24, 28}
	colScreen     = rgb{90, 90, 100}
	colButton     = rgb{70, 130, 180}
	colSelected   = rgb{230, 160, 40}

	styleCanvas = tcell.StyleDefault.Background(colBackground.color()).Foreground(tcell.ColorGray)
	styleCorner = tcell.StyleDefault.Background(colBackground.color()).Foreground(tcell.ColorTeal)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleHelp   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

func (c rgb) color() tcell.Color {
	return tcell.NewRGBColor(int32(c.r), int32(c.g), int32(c.b))
}

// over composes c over bg with alpha a.
func (c rgb) over(bg rgb, a float64) rgb {
	a = math.Max(0, math.Min(1, a))
	return rgb{
		r: math.Round(c.r*a + bg.r*(1-a)),
		g: math.Round(c.g*a + bg.g*(1-a)),
		b: math.Round(c.b*a + bg.b*(1-a)),
	}
}

// cellSpan is the inclusive range of cells covered by [lo, lo+n) canvas units.
func cellSpan(lo, n, unit int) (int, int) {
	return lo / unit, (lo + n - 1) / unit
}

const helpText = "drag: move  arrows: nudge  +/-: scale  [/]: opacity  a: add  d: remove  s: save  q: quit"

func (e *Editor) draw() {
	e.screen.Clear()
	w, h := e.screen.Size()
	size := e.canvas.Size()
	cols, rows := size.W/CellWidth, size.H/CellHeight

	for y := 0; y < rows && y < h; y++ {
		for x := 0; x < cols && x < w; x++ {
			e.screen.SetContent(x, y, '·', nil, styleCanvas)
		}
	}
	e.drawHotCorners(size, w, h)

	sel, hasSel := e.canvas.Selected()
	for _, pw := range e.canvas.Widgets() {
		info, _ := e.canvas.Catalog().Lookup(pw.Kind)
		base := colButton
		if info.Screen {
			base = colScreen
		}
		if hasSel && pw.Kind == sel {
			base = colSelected
		}
		fill := base.over(colBackground, e.canvas.DisplayAlpha(pw.Kind))
		st := tcell.StyleDefault.Background(fill.color()).Foreground(tcell.ColorWhite)

		x0, x1 := cellSpan(pw.Rect.X, pw.Rect.W, CellWidth)
		y0, y1 := cellSpan(pw.Rect.Y, pw.Rect.H, CellHeight)
		for y := y0; y <= y1 && y < h; y++ {
			for x := x0; x <= x1 && x < w; x++ {
				e.screen.SetContent(x, y, ' ', nil, st)
			}
		}
		label := info.Label
		if label == "" {
			label = string(pw.Kind)
		}
		drawText(e.screen, x0, y0, x1-x0+1, label, st)
	}

	status := fmt.Sprintf(" %s [%s]", e.doc.Name, e.doc.Orientation)
	if e.canvas.IsModifiedByUser() {
		status += " *"
	}
	if hasSel {
		anchor, _ := e.canvas.Anchor()
		lx, ly, _ := e.canvas.SelectedPosition()
		status += fmt.Sprintf(" | %s @%.0f,%.0f %s opacity %d%%", sel, lx, ly, anchor, e.canvas.SelectedOpacity())
	}
	status += fmt.Sprintf(" | global %d%%", e.canvas.GlobalOpacity())
	if e.message != "" {
		status += " | " + e.message
	}
	if h > 0 {
		fillRow(e.screen, h-1, w, styleStatus)
		drawText(e.screen, 0, h-1, w, status, styleStatus)
	}
	if h-2 >= rows {
		drawText(e.screen, 0, h-2, w, helpText, styleHelp)
	}
}

func (e *Editor) drawHotCorners(size geometry.Size, w, h int) {
	if e.hotCorner <= 0 {
		return
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px, py := cellCenter(x, y)
			if px >= float64(size.W) || py >= float64(size.H) {
				continue
			}
			if _, ok := geometry.HotCorner(size, geometry.Point{X: int(px), Y: int(py)}, e.hotCorner); ok {
				e.screen.SetContent(x, y, '+', nil, styleCorner)
			}
		}
	}
}

func fillRow(s tcell.Screen, y, w int, st tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, st)
	}
}

// drawText writes text from x,y, clipped to width cells.
func drawText(s tcell.Screen, x, y, width int, text string, st tcell.Style) {
	i := 0
	for _, r := range text {
		if i >= width {
			return
		}
		s.SetContent(x+i, y, r, nil, st)
		i++
	}
}
