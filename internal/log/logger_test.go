/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func lastJSONLine(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	return m
}

func TestInitAndStructuredLoggingToFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "editor.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: fpath, Console: &console})
	t.Cleanup(func() { _ = Close() })

	l := WithOperation(WithComponent("testcomp"), "op1")
	l.InfoContext(ContextWithLayout(context.Background(), "abc-123"), "hello world", slog.String("k", "v"))

	m := lastJSONLine(t, fpath)
	if m["app"] != AppName {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "testcomp" || m["op"] != "op1" {
		t.Fatalf("context attrs: %v", m)
	}
	if m["layout"] != "abc-123" {
		t.Fatalf("layout attr: %v", m["layout"])
	}
	if m["msg"] != "hello world" {
		t.Fatalf("msg mismatch: %v", m["msg"])
	}
	if !strings.Contains(console.String(), "hello world") {
		t.Fatalf("console output missing record: %q", console.String())
	}
}

func TestInitDiscardConsoleStillWritesFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "tui.log")
	Init(Options{Level: "info", File: fpath, Console: discard{}})
	t.Cleanup(func() { _ = Close() })
	L().Warn("quiet")
	if m := lastJSONLine(t, fpath); m["msg"] != "quiet" {
		t.Fatalf("msg: %v", m["msg"])
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestLayoutFromContext(t *testing.T) {
	if _, ok := LayoutFromContext(context.Background()); ok {
		t.Fatalf("empty context reported a layout")
	}
	if _, ok := LayoutFromContext(ContextWithLayout(context.Background(), "")); ok {
		t.Fatalf("blank id reported")
	}
	id, ok := LayoutFromContext(ContextWithLayout(context.Background(), "x"))
	if !ok || id != "x" {
		t.Fatalf("got %q %v", id, ok)
	}
}
