/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report and a snapshot of the
// layout being edited.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"layoutedit/internal/layout"
	applog "layoutedit/internal/log"
	"layoutedit/internal/storage"
	"layoutedit/internal/telemetry"
	"layoutedit/internal/version"
)

// exitFn is replaced in tests.
var exitFn = os.Exit

// Current reports the layout being edited, if any.
type Current func() (layout.Layout, bool)

// Recover handles a panic: it logs the stack, writes a crash report, saves a
// snapshot of the current layout and exits with status 2. repo and current may
// be nil.
//
// Usage: defer crash.Recover(repo, canvasSnapshot)
func Recover(repo *storage.Repository, current Current) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(repo, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if path, err := saveSnapshot(repo, current); err != nil {
		l.Error("crash snapshot failed", slog.Any("err", err))
	} else if path != "" {
		l.Info("crash snapshot written", slog.String("path", path))
		_, _ = fmt.Fprintf(os.Stderr, "Unsaved changes were written to: %s\n", path)
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func reportDir(repo *storage.Repository) string {
	if repo != nil && repo.Root != "" {
		dir := repo.BackupsDir()
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return dir
		}
	}
	return os.TempDir()
}

func saveSnapshot(repo *storage.Repository, current Current) (path string, err error) {
	if current == nil {
		return "", nil
	}
	// The panic may have left the editor in a state where reading it panics too.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("snapshot: %v", r)
		}
	}()
	l, ok := current()
	if !ok {
		return "", nil
	}
	if repo != nil {
		return repo.WriteCrashSnapshot(l)
	}
	path = filepath.Join(os.TempDir(), fmt.Sprintf("layoutedit-crash-%s.json", time.Now().Format("20060102-150405")))
	return path, layout.WriteFile(path, l)
}

func writeReport(repo *storage.Repository, panicVal any, stack []byte) (string, error) {
	now := time.Now()
	path := filepath.Join(reportDir(repo), fmt.Sprintf("crash-%s.log", now.Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "LayoutEdit Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if repo != nil {
		_, _ = fmt.Fprintf(&buf, "Repository: %s\n", repo.Root)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return path, err
	}
	_ = f.Sync()
	if err := f.Close(); err != nil {
		return path, err
	}

	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
