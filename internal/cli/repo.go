/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"layoutedit/internal/catalog"
	"layoutedit/internal/export"
	"layoutedit/internal/layout"
	applog "layoutedit/internal/log"
	"layoutedit/internal/telemetry"
)

func (a *App) newExportCmd() *cobra.Command {
	var (
		output string
		outDir string
		preset string
		scale  float64
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Render a wireframe preview as PNG, SVG or PDF",
		Long: `Render a wireframe preview of a layout.

With --output the format follows the file extension. Without it every format
of the preset is written into --dir as <name>.<ext>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := layout.ReadFile(args[0])
			if err != nil {
				return err
			}
			p := export.PresetName(preset)
			switch p {
			case export.PresetPreview, export.PresetThumbnail, export.PresetPrint:
			default:
				return fmt.Errorf("unknown preset %q", preset)
			}
			scene, skipped := export.NewScene(catalog.Default(), l, l.Orientation.CanvasSize(), a.cfg.GlobalOpacity())
			for _, e := range skipped {
				applog.WithComponent("export").Warn("entry skipped", slog.Any("err", e))
			}

			var written []string
			if output != "" {
				opt, _ := export.Preset(p, a.cfg.Editor.HotCornerSize)
				if cmd.Flags().Changed("scale") {
					opt.Scale = scale
				}
				if err := export.WriteFile(output, scene, opt); err != nil {
					return err
				}
				written = []string{output}
			} else {
				written, err = export.BatchExport(scene, p, a.cfg.Editor.HotCornerSize, outDir, stem(args[0]))
				if err != nil {
					return err
				}
			}
			telemetry.Event(telemetry.EventExported, map[string]any{"preset": preset, "files": len(written)})
			for _, w := range written {
				fmt.Fprintln(cmd.OutOrStdout(), w)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; the extension picks the format")
	cmd.Flags().StringVar(&outDir, "dir", ".", "output directory when --output is not set")
	cmd.Flags().StringVar(&preset, "preset", string(export.PresetPreview), "preview, thumbnail or print")
	cmd.Flags().Float64Var(&scale, "scale", 1, "pixels per canvas unit (with --output)")
	return cmd
}

func (a *App) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List layouts stored in the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()
			items, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tORIENTATION\tWIDGETS\tUPDATED")
			for _, s := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Orientation, s.Widgets, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func (a *App) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Store a layout file in the repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := layout.ReadFile(args[0])
			if err != nil {
				return err
			}
			l.Normalize()
			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()
			if err := repo.Save(cmd.Context(), l); err != nil {
				return err
			}
			telemetry.Event(telemetry.EventLayoutSaved, map[string]any{"widgets": len(l.Components)})
			fmt.Fprintln(cmd.OutOrStdout(), l.ID)
			return nil
		},
	}
}

func (a *App) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()
			return repo.Delete(cmd.Context(), args[0])
		},
	}
}

func (a *App) newRevisionsCmd() *cobra.Command {
	var limit, prune int
	cmd := &cobra.Command{
		Use:   "revisions <id>",
		Short: "List saved revisions of a stored layout, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()
			if prune > 0 {
				n, err := repo.PruneRevisions(cmd.Context(), args[0], prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pruned %d revisions\n", n)
			}
			revs, err := repo.Revisions(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REV\tSAVED\tWIDGETS")
			for _, r := range revs {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", r.ID, r.TS.Local().Format("2006-01-02 15:04:05"), len(r.Layout.Components))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of revisions")
	cmd.Flags().IntVar(&prune, "prune", 0, "keep only the newest N revisions before listing")
	return cmd
}

func (a *App) newRevertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revert <id> <rev>",
		Short: "Restore a stored layout to an earlier revision",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rev, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("revision must be a number: %w", err)
			}
			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()
			l, err := repo.Revert(cmd.Context(), args[0], rev)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reverted %s to revision %d (%d components)\n", l.ID, rev, len(l.Components))
			return nil
		},
	}
}
