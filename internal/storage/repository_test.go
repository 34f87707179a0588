/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"layoutedit/internal/catalog"
	"layoutedit/internal/layout"
)

func openRepo(t *testing.T, root string) *Repository {
	t.Helper()
	r, err := Open(context.Background(), root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func sample(name string) layout.Layout {
	l := layout.New(name, layout.Landscape)
	op := 40
	l.Components = []layout.PersistedEntry{
		{Rect: layout.Rect{X: 0, Y: 0, Width: 256, Height: 192}, Component: string(catalog.TopScreen)},
		{Rect: layout.Rect{X: 10, Y: 300, Width: 80, Height: 80}, Component: string(catalog.DPad), Opacity: &op},
	}
	return l
}

func countBackups(t *testing.T, root, id string) int {
	t.Helper()
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	n := 0
	for _, e := range ents {
		if strings.HasPrefix(e.Name(), id+".") && strings.HasSuffix(e.Name(), ".bak") {
			n++
		}
	}
	return n
}

func TestOpenCreatesStructure(t *testing.T) {
	root := t.TempDir()
	openRepo(t, root)
	for _, d := range []string{LayoutsDirName, BackupsDirName, IndexDirName} {
		if fi, err := os.Stat(filepath.Join(root, d)); err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s to exist", d)
		}
	}
}

func TestSaveLoadList(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, t.TempDir())
	a, b := sample("b-layout"), sample("A-layout")
	for _, l := range []layout.Layout{a, b} {
		if err := r.Save(ctx, l); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	got, err := r.Load(ctx, a.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != a.Name || len(got.Components) != 2 || got.Components[1].OpacityOrDefault() != 40 {
		t.Fatalf("loaded: %+v", got)
	}
	list, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "A-layout" || list[1].Widgets != 2 {
		t.Fatalf("list: %+v", list)
	}
}

func TestSaveRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, t.TempDir())
	l := sample("x")
	l.ID = "../escape"
	if err := r.Save(ctx, l); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	l = sample("x")
	l.Components[0].Rect.Width = 0
	if err := r.Save(ctx, l); !errors.Is(err, layout.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestSaveCreatesBackupAndRevision(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	r := openRepo(t, root)
	l := sample("rev")
	if err := r.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n := countBackups(t, root, l.ID); n != 0 {
		t.Fatalf("first save made %d backups", n)
	}
	l.Name = "rev2"
	if err := r.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n := countBackups(t, root, l.ID); n != 1 {
		t.Fatalf("expected one backup, got %d", n)
	}
	revs, err := r.Revisions(ctx, l.ID, 0)
	if err != nil {
		t.Fatalf("Revisions: %v", err)
	}
	if len(revs) != 2 || revs[0].Layout.Name != "rev2" || revs[1].Layout.Name != "rev" {
		t.Fatalf("revisions: %+v", revs)
	}

	back, err := r.Revert(ctx, l.ID, revs[1].ID)
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if back.Name != "rev" {
		t.Fatalf("reverted name %q", back.Name)
	}
	if cur, _ := r.Load(ctx, l.ID); cur.Name != "rev" {
		t.Fatalf("current after revert: %q", cur.Name)
	}
	if _, err := r.Revert(ctx, l.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if n, err := r.PruneRevisions(ctx, l.ID, 1); err != nil || n != 2 {
		t.Fatalf("PruneRevisions: n=%d err=%v", n, err)
	}
}

func TestBackupsArePruned(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	r := openRepo(t, root)
	r.BackupsToKeep = 2
	l := sample("prune")
	for i := 0; i < 5; i++ {
		if err := r.Save(ctx, l); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if n := countBackups(t, root, l.ID); n > 2 {
		t.Fatalf("expected at most 2 backups, got %d", n)
	}
}

func TestLoadFallsBackToBackup(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	r := openRepo(t, root)
	l := sample("good")
	if err := r.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := r.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(r.Path(l.ID), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	got, err := r.Load(ctx, l.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "good" {
		t.Fatalf("backup content: %+v", got)
	}
}

func TestLoadAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, t.TempDir())
	id := layout.New("", "").ID
	if _, err := r.Load(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load: expected ErrNotFound, got %v", err)
	}
	if err := r.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRemovesFromList(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t, t.TempDir())
	l := sample("gone")
	if err := r.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := r.Delete(ctx, l.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if list, _ := r.List(ctx); len(list) != 0 {
		t.Fatalf("list after delete: %+v", list)
	}
}

func TestCorruptIndexIsRebuiltFromFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	r, err := Open(ctx, root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l := sample("survivor")
	if err := r.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = r.Close()
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(IndexPath(root) + suffix)
	}
	if err := os.WriteFile(IndexPath(root), []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}

	r2 := openRepo(t, root)
	list, err := r2.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != l.ID || list[0].Name != "survivor" {
		t.Fatalf("rebuilt list: %+v", list)
	}
	ents, _ := os.ReadDir(filepath.Join(root, IndexDirName, "backups"))
	if len(ents) == 0 {
		t.Fatalf("expected index backup file")
	}
}

func TestReindexSkipsForeignFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	r := openRepo(t, root)
	if err := r.Save(ctx, sample("one")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	dir := filepath.Join(root, LayoutsDirName)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "not-a-uuid.json"), []byte("{}"), 0o644)
	bad := layout.New("", "").ID
	_ = os.WriteFile(filepath.Join(dir, bad+".json"), []byte("{broken"), 0o644)
	n, err := r.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if n != 1 {
		t.Fatalf("indexed %d, want 1", n)
	}
}

func TestWriteCrashSnapshot(t *testing.T) {
	root := t.TempDir()
	r := openRepo(t, root)
	l := sample("crashy")

	path, err := r.WriteCrashSnapshot(l)
	if err != nil {
		t.Fatalf("WriteCrashSnapshot: %v", err)
	}
	if filepath.Dir(path) != r.BackupsDir() || !strings.HasPrefix(filepath.Base(path), l.ID+".crash-") {
		t.Fatalf("unexpected snapshot path %s", path)
	}
	got, err := layout.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if got.Name != "crashy" || len(got.Components) != 2 {
		t.Fatalf("snapshot content = %+v", got)
	}
	if n := countBackups(t, root, l.ID); n != 0 {
		t.Fatalf("crash snapshot counted as backup: %d", n)
	}
	if _, err := r.Load(context.Background(), l.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("crash snapshot must not create the layout, got %v", err)
	}

	l.ID = "draft"
	path, err = r.WriteCrashSnapshot(l)
	if err != nil || !strings.HasPrefix(filepath.Base(path), "unsaved.crash-") {
		t.Fatalf("invalid id snapshot: %s %v", path, err)
	}
}
