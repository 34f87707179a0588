/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"layoutedit/internal/catalog"
	"layoutedit/internal/geometry"
	"layoutedit/internal/layout"
	"layoutedit/internal/opacity"
	"layoutedit/internal/telemetry"
)

func (a *App) newNewCmd() *cobra.Command {
	var (
		name        string
		orientation string
		force       bool
	)
	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Create an empty layout file (.json, .yaml or .toml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			o, err := layout.ParseOrientation(orientation)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if name == "" {
				name = stem(path)
			}
			l := layout.New(name, o)
			if err := layout.WriteFile(path, l); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", path, l.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "layout name (default: file name)")
	cmd.Flags().StringVar(&orientation, "orientation", string(layout.Landscape), "landscape or portrait")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (a *App) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print a layout with resolved anchors and effective opacity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := layout.ReadFile(args[0])
			if err != nil {
				return err
			}
			printLayout(cmd.OutOrStdout(), l, a.cfg.GlobalOpacity())
			return nil
		},
	}
}

func printLayout(w io.Writer, l layout.Layout, global int) {
	size := l.Orientation.CanvasSize()
	fmt.Fprintf(w, "Name:        %s\n", l.Name)
	fmt.Fprintf(w, "ID:          %s\n", l.ID)
	fmt.Fprintf(w, "Orientation: %s (%s)\n", l.Orientation, size)
	fmt.Fprintf(w, "Global:      %d%%\n\n", global)

	widgets, opac, errs := layout.FromPersisted(catalog.Default(), l.Components)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tRECT\tOPACITY\tANCHOR\tALPHA")
	for _, pw := range widgets {
		r := geometry.ClampInto(pw.Rect, size)
		op := opac.Get(pw.Kind)
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%s\t%.2f\n", pw.Kind, r, op, geometry.ResolveAnchor(size, r), opacity.Effective(global, op))
	}
	_ = tw.Flush()
	for _, e := range errs {
		fmt.Fprintf(w, "skipped: %v\n", e)
	}
}

func (a *App) newAddCmd() *cobra.Command {
	var op int
	cmd := &cobra.Command{
		Use:   "add <file> <kind>",
		Short: "Place a widget at the origin with its default size",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, c, err := a.loadCanvas(args[0])
			if err != nil {
				return err
			}
			k, err := catalog.ParseKind(c.Catalog(), args[1])
			if err != nil {
				return err
			}
			if !c.AddWidget(k) {
				return fmt.Errorf("%s is already placed", k)
			}
			l.Components = c.Build()
			if cmd.Flags().Changed("opacity") {
				v := opacity.Clamp(op)
				for i := range l.Components {
					if l.Components[i].Component == string(k) {
						l.Components[i].Opacity = &v
					}
				}
			}
			if err := layout.WriteFile(args[0], l); err != nil {
				return err
			}
			r, _ := c.Rect(k)
			telemetry.Event(telemetry.EventWidgetAdded, map[string]any{"kind": string(k)})
			fmt.Fprintf(cmd.OutOrStdout(), "added %s at %s\n", k, r)
			return nil
		},
	}
	cmd.Flags().IntVar(&op, "opacity", opacity.Opaque, "widget opacity in percent")
	return cmd
}

func (a *App) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file> <kind>",
		Short: "Remove a widget from a layout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := layout.ReadFile(args[0])
			if err != nil {
				return err
			}
			k, err := catalog.ParseKind(catalog.Default(), args[1])
			if err != nil {
				return err
			}
			widgets, opac, _ := layout.FromPersisted(catalog.Default(), l.Components)
			kept := widgets[:0]
			for _, pw := range widgets {
				if pw.Kind != k {
					kept = append(kept, pw)
				}
			}
			if len(kept) == len(widgets) {
				return fmt.Errorf("%s is not placed", k)
			}
			l.Components = layout.ToPersisted(kept, opac)
			if err := layout.WriteFile(args[0], l); err != nil {
				return err
			}
			telemetry.Event(telemetry.EventWidgetRemoved, map[string]any{"kind": string(k)})
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", k)
			return nil
		},
	}
}

func (a *App) newValidateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a layout against the schema and the widget catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := layout.FormatFromPath(path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if f == layout.JSON {
				if err := layout.Validate(data); err != nil {
					return err
				}
			}
			l, err := layout.Unmarshal(f, data)
			if err != nil {
				return err
			}
			if err := layout.ValidateLayout(l); err != nil {
				return err
			}
			if strict {
				if _, _, err := layout.FromPersistedStrict(catalog.Default(), l.Components); err != nil {
					return err
				}
			} else {
				_, _, errs := layout.FromPersisted(catalog.Default(), l.Components)
				for _, e := range errs {
					fmt.Fprintf(cmd.OutOrStdout(), "warning: %v\n", e)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d components)\n", path, len(l.Components))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on entries that would be skipped")
	return cmd
}

func (a *App) newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a layout between JSON, YAML and TOML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == args[1] {
				return errors.New("input and output are the same file")
			}
			l, err := layout.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := layout.WriteFile(args[1], l); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
			return nil
		},
	}
}
