/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a layout file encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	default:
		return "", fmt.Errorf("unsupported layout file extension %q", filepath.Ext(path))
	}
}

// Marshal encodes l in the given format. JSON output is indented and ends with a newline.
func Marshal(f Format, l Layout) ([]byte, error) {
	switch f {
	case JSON:
		data, err := json.MarshalIndent(l, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return append(data, '\n'), nil
	case YAML:
		data, err := yaml.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return data, nil
	case TOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(l); err != nil {
			return nil, fmt.Errorf("marshal toml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

// Unmarshal decodes a layout. Defaults are filled via Normalize.
func Unmarshal(f Format, data []byte) (Layout, error) {
	var l Layout
	var err error
	switch f {
	case JSON:
		err = json.Unmarshal(data, &l)
	case YAML:
		err = yaml.Unmarshal(data, &l)
	case TOML:
		_, err = toml.Decode(string(data), &l)
	default:
		return Layout{}, fmt.Errorf("unsupported format %q", f)
	}
	if err != nil {
		return Layout{}, fmt.Errorf("unmarshal %s: %w", f, err)
	}
	l.Normalize()
	return l, nil
}

// ReadFile loads a layout, choosing the format from the extension.
func ReadFile(path string) (Layout, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return Layout{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	return Unmarshal(f, data)
}

// WriteFile stores a layout, choosing the format from the extension.
func WriteFile(path string, l Layout) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(f, l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	return nil
}
