/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"layoutedit/internal/crash"
	"layoutedit/internal/layout"
	applog "layoutedit/internal/log"
	"layoutedit/internal/storage"
	"layoutedit/internal/telemetry"
	"layoutedit/internal/ui"
)

func (a *App) newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <file|id>",
		Short: "Edit a layout interactively in the terminal",
		Long: `Edit a layout file, or a stored layout by id, in the terminal.

Mouse: press a widget to select it, drag to move it. Keys: arrows nudge,
+/- scale, [/] opacity, a adds the next widget, d removes, s saves, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEdit(cmd.Context(), args[0])
		},
	}
}

func (a *App) runEdit(ctx context.Context, target string) error {
	var (
		doc  layout.Layout
		save ui.SaveFunc
		repo *storage.Repository
	)
	if _, statErr := os.Stat(target); statErr == nil {
		l, err := layout.ReadFile(target)
		if err != nil {
			return err
		}
		doc = l
		save = func(l layout.Layout) error { return layout.WriteFile(target, l) }
	} else {
		r, err := a.openRepo(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()
		l, err := r.Load(ctx, target)
		if err != nil {
			return fmt.Errorf("%s is neither a file nor a stored layout: %w", target, err)
		}
		repo, doc = r, l
		save = func(l layout.Layout) error { return r.Save(ctx, l) }
	}

	c := a.newCanvas()
	skipped := c.Instantiate(doc.Components, doc.Orientation.CanvasSize())
	telemetry.Event(telemetry.EventLayoutLoaded, map[string]any{"widgets": len(c.Widgets()), "skipped": len(skipped)})

	var ed *ui.Editor
	defer crash.Recover(repo, func() (layout.Layout, bool) {
		if ed == nil {
			return layout.Layout{}, false
		}
		return ed.Snapshot(), true
	})

	screen, err := a.openScreen()
	if err != nil {
		return err
	}
	defer screen.Fini()

	// The screen owns the terminal; console logs would corrupt it.
	quiet := a.cfg.LogOptions()
	quiet.Console = io.Discard
	applog.Init(quiet)
	defer applog.Init(a.cfg.LogOptions())

	ed = ui.New(screen, doc, c, save)
	ed.SetHotCornerSize(a.cfg.Editor.HotCornerSize)
	return ed.Run()
}
