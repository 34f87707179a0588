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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"layoutedit/internal/layout"
	applog "layoutedit/internal/log"

	"github.com/google/uuid"
)

const (
	LayoutsDirName = "layouts"
	BackupsDirName = "backups"

	// DefaultBackupsToKeep bounds the file backups kept per layout.
	DefaultBackupsToKeep = 10

	backupStamp = "20060102-150405.000000"
)

var (
	ErrNotFound  = errors.New("layout not found")
	ErrInvalidID = errors.New("invalid layout id")
)

// Summary is the catalogue row of a layout.
type Summary struct {
	ID          string
	Name        string
	Orientation string
	Widgets     int
	UpdatedAt   time.Time
}

// Repository stores layouts under a root directory. It is safe for use by
// one process at a time.
type Repository struct {
	Root string

	// BackupsToKeep bounds backups per layout; <= 0 keeps DefaultBackupsToKeep.
	BackupsToKeep int

	db  *sql.DB
	log *slog.Logger
}

// Open prepares the directory layout under root and opens the catalogue. A
// catalogue that had to be recreated is rebuilt from the layout files.
func Open(ctx context.Context, root string) (*Repository, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	for _, d := range []string{LayoutsDirName, BackupsDirName} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	db, rebuilt, err := openHealthyIndex(ctx, root)
	if err != nil {
		return nil, err
	}
	r := &Repository{
		Root: root,
		db:   db,
		log:  applog.WithComponent("storage").With(slog.String("root", root)),
	}
	if rebuilt {
		if _, err := r.Reindex(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("rebuild index: %w", err)
		}
	}
	return r, nil
}

// Close releases the catalogue.
func (r *Repository) Close() error { return r.db.Close() }

// Path returns the file that stores layout id.
func (r *Repository) Path(id string) string {
	return filepath.Join(r.Root, LayoutsDirName, id+".json")
}

// validID accepts uuids only; they double as file names.
func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Save validates l and writes it transactionally. The previous file, if any,
// is copied to a timestamped backup first. The catalogue row and a revision
// are recorded in one transaction.
func (r *Repository) Save(ctx context.Context, l layout.Layout) error {
	if err := validID(l.ID); err != nil {
		return err
	}
	l.Normalize()
	if err := layout.ValidateLayout(l); err != nil {
		return err
	}
	data, err := layout.Marshal(layout.JSON, l)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	log := applog.WithOperation(r.log, "save").With(slog.String("id", l.ID))

	path := r.Path(l.ID)
	if _, statErr := os.Stat(path); statErr == nil {
		bpath := filepath.Join(r.Root, BackupsDirName, fmt.Sprintf("%s.%s.bak", l.ID, time.Now().Format(backupStamp)))
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current layout: %w", cerr)
		}
	}
	if err := writeAtomic(path, data); err != nil {
		return err
	}

	now := time.Now()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index update: %w", err)
	}
	s := Summary{ID: l.ID, Name: l.Name, Orientation: string(l.Orientation), Widgets: len(l.Components), UpdatedAt: now}
	if err := upsertSummary(ctx, tx, s); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("index layout: %w", err)
	}
	if err := insertRevision(ctx, tx, l.ID, data, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record revision: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index update: %w", err)
	}
	if n := r.pruneBackups(l.ID); n > 0 {
		log.Debug("pruned backups", slog.Int("removed", n))
	}
	log.Info("layout saved", slog.Int("widgets", len(l.Components)))
	return nil
}

// Load reads layout id. When the file cannot be read or parsed, the newest
// backup is used instead.
func (r *Repository) Load(ctx context.Context, id string) (layout.Layout, error) {
	if err := validID(id); err != nil {
		return layout.Layout{}, err
	}
	if err := ctx.Err(); err != nil {
		return layout.Layout{}, err
	}
	path := r.Path(id)
	l, err := layout.ReadFile(path)
	if err == nil {
		return l, nil
	}
	bl, berr := r.openFromLatestBackup(id)
	if berr != nil {
		if errors.Is(err, os.ErrNotExist) {
			return layout.Layout{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return layout.Layout{}, fmt.Errorf("open layout: %w; backup attempt: %v", err, berr)
	}
	r.log.Warn("layout restored from backup", slog.String("id", id), slog.Any("err", err))
	return bl, nil
}

// Delete removes the layout file and its catalogue row. Backups stay on disk.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	if err := os.Remove(r.Path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	if err := deleteSummary(ctx, r.db, id); err != nil {
		return fmt.Errorf("unindex layout: %w", err)
	}
	r.log.Info("layout deleted", slog.String("id", id))
	return nil
}

// List returns the catalogue ordered by name.
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	return listSummaries(ctx, r.db)
}

// Reindex rebuilds the catalogue rows from the layout files. Revision history
// is kept. Files that fail to parse are skipped and logged. It returns the
// number of layouts indexed.
func (r *Repository) Reindex(ctx context.Context) (int, error) {
	dir := filepath.Join(r.Root, LayoutsDirName)
	ents, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read layouts dir: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM layouts`); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	n := 0
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if validID(id) != nil {
			continue
		}
		l, err := layout.ReadFile(filepath.Join(dir, name))
		if err != nil {
			r.log.Warn("skipping unreadable layout", slog.String("file", name), slog.Any("err", err))
			continue
		}
		mt := time.Now()
		if fi, err := e.Info(); err == nil {
			mt = fi.ModTime()
		}
		s := Summary{ID: id, Name: l.Name, Orientation: string(l.Orientation), Widgets: len(l.Components), UpdatedAt: mt}
		if err := upsertSummary(ctx, tx, s); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	r.log.Info("index rebuilt", slog.Int("layouts", n))
	return n, nil
}

func (r *Repository) backups(id string) []string {
	bdir := filepath.Join(r.Root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, id+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	return candidates
}

func (r *Repository) pruneBackups(id string) int {
	keep := r.BackupsToKeep
	if keep <= 0 {
		keep = DefaultBackupsToKeep
	}
	all := r.backups(id)
	removed := 0
	for len(all)-removed > keep {
		if err := os.Remove(all[removed]); err != nil {
			break
		}
		removed++
	}
	return removed
}

// openFromLatestBackup reads the newest backup of id.
func (r *Repository) openFromLatestBackup(id string) (layout.Layout, error) {
	candidates := r.backups(id)
	if len(candidates) == 0 {
		return layout.Layout{}, errors.New("no backups found")
	}
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("read latest backup: %w", err)
	}
	l, err := layout.Unmarshal(layout.JSON, b)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("parse latest backup: %w", err)
	}
	return l, nil
}

// BackupsDir is where backups and crash artefacts are written.
func (r *Repository) BackupsDir() string { return filepath.Join(r.Root, BackupsDirName) }

// WriteCrashSnapshot writes l next to the backups without touching the stored
// layout or the catalogue. It is meant for panic handlers, so the layout is
// not validated.
func (r *Repository) WriteCrashSnapshot(l layout.Layout) (string, error) {
	id := l.ID
	if validID(id) != nil {
		id = "unsaved"
	}
	data, err := layout.Marshal(layout.JSON, l)
	if err != nil {
		return "", fmt.Errorf("marshal crash snapshot: %w", err)
	}
	path := filepath.Join(r.BackupsDir(), fmt.Sprintf("%s.crash-%s.json", id, time.Now().Format(backupStamp)))
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}
