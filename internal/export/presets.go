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
	"os"
	"path/filepath"
	"strings"
)

// Format is an output format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// PresetName represents a named export preset.
type PresetName string

const (
	// PresetPreview is full size with labels and hot corners.
	PresetPreview PresetName = "preview"
	// PresetThumbnail is a quarter-size unlabeled raster.
	PresetThumbnail PresetName = "thumbnail"
	// PresetPrint is a labeled vector set.
	PresetPrint PresetName = "print"
)

// Preset returns the options and default formats of a preset. Unknown names
// fall back to the preview preset.
func Preset(p PresetName, hotCornerSize int) (Options, []Format) {
	switch p {
	case PresetThumbnail:
		return Options{Scale: 0.25}, []Format{FormatPNG}
	case PresetPrint:
		return Options{Labels: true}, []Format{FormatPDF, FormatSVG}
	default:
		return Options{Labels: true, HotCorners: hotCornerSize}, []Format{FormatPNG}
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")); f {
	case FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export extension %q", filepath.Ext(path))
	}
}

// Render encodes the scene in the given format.
func Render(f Format, s Scene, opt Options) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatPNG:
		err = PNG(&buf, s, opt)
	case FormatSVG:
		err = SVG(&buf, s, opt)
	case FormatPDF:
		err = PDF(&buf, s, opt)
	default:
		err = fmt.Errorf("unknown format: %s", f)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders the scene into path, choosing the format from its extension.
func WriteFile(path string, s Scene, opt Options) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Render(f, s, opt)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// BatchExport writes the scene once per format of the preset into outDir as
// <base>.<ext> and returns the written paths.
func BatchExport(s Scene, p PresetName, hotCornerSize int, outDir, base string) ([]string, error) {
	opt, formats := Preset(p, hotCornerSize)
	if base == "" {
		base = "layout"
	}
	var out []string
	for _, f := range formats {
		path := filepath.Join(outDir, fmt.Sprintf("%s.%s", base, f))
		if err := WriteFile(path, s, opt); err != nil {
			return out, fmt.Errorf("%s: %w", f, err)
		}
		out = append(out, path)
	}
	return out, nil
}
