/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PDF writes the scene as a single-page PDF sized to the canvas, one point
// per canvas unit times Scale. Labels use the built-in Helvetica so no font
// is embedded.
func PDF(w io.Writer, s Scene, opt Options) error {
	k := opt.scale()
	pw, ph := float64(s.Canvas.W)*k, float64(s.Canvas.H)*k
	if pw <= 0 || ph <= 0 {
		return fmt.Errorf("pdf: empty canvas %s", s.Canvas)
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	pdf.SetTitle(s.Name, true)
	pdf.SetCreator("layoutedit", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pw, Ht: ph})
	pdf.SetFont("Helvetica", "", 9)

	setFillColor(pdf, backgroundColor.R, backgroundColor.G, backgroundColor.B)
	pdf.Rect(0, 0, pw, ph, "F")

	pdf.SetLineWidth(0.5)
	if corners := hotCornerRects(s.Canvas, opt.HotCorners); len(corners) > 0 {
		setDrawColor(pdf, cornerColor.R, cornerColor.G, cornerColor.B)
		for _, r := range corners {
			pdf.Rect(float64(r.X)*k, float64(r.Y)*k, float64(r.W)*k, float64(r.H)*k, "D")
		}
	}
	for _, it := range s.Items {
		fc := fillFor(it)
		r := it.Rect
		x, y, rw, rh := float64(r.X)*k, float64(r.Y)*k, float64(r.W)*k, float64(r.H)*k
		setFillColor(pdf, fc.R, fc.G, fc.B)
		pdf.SetAlpha(clamp01(it.Alpha), "Normal")
		pdf.Rect(x, y, rw, rh, "F")
		pdf.SetAlpha(1, "Normal")
		setDrawColor(pdf, strokeColor.R, strokeColor.G, strokeColor.B)
		pdf.Rect(x, y, rw, rh, "D")
		if opt.Labels {
			pdf.SetTextColor(int(strokeColor.R), int(strokeColor.G), int(strokeColor.B))
			pdf.Text(x+2, y+10, it.Label)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, r, g, b uint8) {
	pdf.SetDrawColor(int(r), int(g), int(b))
}

func setFillColor(pdf *gofpdf.Fpdf, r, g, b uint8) {
	pdf.SetFillColor(int(r), int(g), int(b))
}
