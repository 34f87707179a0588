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
	"fmt"
	"io"
	"strings"
)

// SVG writes the scene as a standalone SVG document in canvas units; Scale
// only affects the width and height attributes.
func SVG(w io.Writer, s Scene, opt Options) error {
	k := opt.scale()
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %d %d\">\n",
		float64(s.Canvas.W)*k, float64(s.Canvas.H)*k, s.Canvas.W, s.Canvas.H)
	if s.Name != "" {
		wf("  <title>%s</title>\n", escText(s.Name))
	}
	wf("  <rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" fill=\"%s\"/>\n", s.Canvas.W, s.Canvas.H, svgColor(backgroundColor.R, backgroundColor.G, backgroundColor.B))

	for _, r := range hotCornerRects(s.Canvas, opt.HotCorners) {
		wf("  <rect class=\"hot-corner\" x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"none\" stroke=\"%s\" stroke-width=\"1\"/>\n",
			r.X, r.Y, r.W, r.H, svgColor(cornerColor.R, cornerColor.G, cornerColor.B))
	}
	stroke := svgColor(strokeColor.R, strokeColor.G, strokeColor.B)
	for _, it := range s.Items {
		fc := fillFor(it)
		r := it.Rect
		wf("  <g id=\"%s\">\n", escAttr(strings.ToLower(string(it.Kind))))
		wf("    <rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"%s\" fill-opacity=\"%.4g\" stroke=\"%s\" stroke-width=\"1\"/>\n",
			r.X, r.Y, r.W, r.H, svgColor(fc.R, fc.G, fc.B), clamp01(it.Alpha), stroke)
		if opt.Labels {
			wf("    <text x=\"%d\" y=\"%d\" font-family=\"monospace\" font-size=\"12\" fill=\"%s\">%s</text>\n",
				r.X+3, r.Y+14, stroke, escText(it.Label))
		}
		wf("  </g>\n")
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

var (
	attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", "<", "&lt;", "\n", " ", "\r", "")
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

func escAttr(s string) string { return attrEscaper.Replace(s) }
func escText(s string) string { return textEscaper.Replace(s) }
