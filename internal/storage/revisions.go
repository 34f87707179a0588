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
	"time"

	"layoutedit/internal/layout"
)

// language=SQL
// dialect=SQLite
const insertRevisionSQL = `INSERT INTO revisions(layout_id, ts, doc) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const listRevisionsSQL = `SELECT id, ts, doc FROM revisions WHERE layout_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const selectRevisionSQL = `SELECT ts, doc FROM revisions WHERE layout_id = ? AND id = ?`

// language=SQL
// dialect=SQLite
const pruneRevisionsSQL = `DELETE FROM revisions WHERE layout_id = ? AND id NOT IN (
	SELECT id FROM revisions WHERE layout_id = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// Revision is one stored version of a layout.
type Revision struct {
	ID     int64
	TS     time.Time
	Layout layout.Layout
}

func insertRevision(ctx context.Context, q execer, id string, doc []byte, ts time.Time) error {
	_, err := q.ExecContext(ctx, insertRevisionSQL, id, ts.UTC().Format(tsLayout), doc)
	return err
}

// Revisions returns up to limit most recent revisions of a layout, newest first.
func (r *Repository) Revisions(ctx context.Context, id string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listRevisionsSQL, id, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Revision
	for rows.Next() {
		var (
			rev  Revision
			ts   string
			blob []byte
		)
		if err := rows.Scan(&rev.ID, &ts, &blob); err != nil {
			return nil, err
		}
		rev.TS, _ = time.Parse(tsLayout, ts)
		if rev.Layout, err = layout.Unmarshal(layout.JSON, blob); err != nil {
			return nil, fmt.Errorf("revision %d: %w", rev.ID, err)
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

// Revert restores revision rev of a layout as its current version. The
// restored document is saved normally, so the replaced version becomes a
// revision itself.
func (r *Repository) Revert(ctx context.Context, id string, rev int64) (layout.Layout, error) {
	var ts string
	var blob []byte
	err := r.db.QueryRowContext(ctx, selectRevisionSQL, id, rev).Scan(&ts, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return layout.Layout{}, fmt.Errorf("%w: revision %d of %s", ErrNotFound, rev, id)
	}
	if err != nil {
		return layout.Layout{}, err
	}
	l, err := layout.Unmarshal(layout.JSON, blob)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("revision %d: %w", rev, err)
	}
	if err := r.Save(ctx, l); err != nil {
		return layout.Layout{}, err
	}
	return l, nil
}

// PruneRevisions keeps at most keepLast revisions of the layout and deletes older ones.
func (r *Repository) PruneRevisions(ctx context.Context, id string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, pruneRevisionsSQL, id, id, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
