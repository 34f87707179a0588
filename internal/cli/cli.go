/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli wires the layout editor commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"layoutedit/internal/catalog"
	"layoutedit/internal/config"
	"layoutedit/internal/editor"
	"layoutedit/internal/layout"
	applog "layoutedit/internal/log"
	"layoutedit/internal/storage"
	"layoutedit/internal/telemetry"
	"layoutedit/internal/version"
)

// App holds state shared by all commands.
type App struct {
	cfg        config.AppConfig
	injected   bool
	configPath string

	// openScreen returns an initialized terminal screen.
	openScreen func() (tcell.Screen, error)
}

// New returns an App that loads the user config before each command.
func New() *App { return &App{openScreen: terminalScreen} }

// WithConfig makes the App use cfg instead of reading the config file.
func (a *App) WithConfig(cfg config.AppConfig) *App {
	a.cfg = cfg
	a.injected = true
	return a
}

func terminalScreen() (tcell.Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return s, nil
}

// RootCommand builds the command tree.
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           applog.AppName,
		Short:         "Edit on-screen control layouts for a dual-screen handheld",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			telemetry.Default().Flush(cmd.Context())
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("%s %s\n", applog.AppName, version.String()))
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: per-user config dir)")

	root.AddCommand(
		newVersionCmd(),
		a.newNewCmd(),
		a.newShowCmd(),
		a.newAddCmd(),
		a.newRemoveCmd(),
		a.newValidateCmd(),
		a.newConvertCmd(),
		a.newExportCmd(),
		a.newListCmd(),
		a.newImportCmd(),
		a.newDeleteCmd(),
		a.newRevisionsCmd(),
		a.newRevertCmd(),
		a.newEditCmd(),
	)
	return root
}

func (a *App) setup() error {
	if !a.injected {
		var (
			cfg config.AppConfig
			err error
		)
		if a.configPath != "" {
			cfg, err = config.LoadFrom(a.configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		a.cfg = cfg
	}
	applog.Init(a.cfg.LogOptions())
	telemetry.SetDefault(telemetry.FromEnv().WithOptIn(a.cfg.General.TelemetryOptIn))
	applog.WithComponent("cli").Debug("config ready", slog.Int("global_opacity", a.cfg.GlobalOpacity()))
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), applog.AppName, version.String())
		},
	}
}

// newCanvas builds an editor canvas from the editor section of the config.
func (a *App) newCanvas() *editor.Canvas {
	ec := a.cfg.Editor
	return editor.New(editor.Options{
		Catalog:       catalog.Default(),
		Settings:      a.cfg,
		Units:         editor.Density(ec.Density),
		Logger:        applog.WithComponent("editor"),
		DefaultWidth:  ec.DefaultWidth,
		MinSize:       ec.MinSize,
		DragThreshold: ec.DragThreshold,
	})
}

// loadCanvas reads path and instantiates it on its reference canvas.
func (a *App) loadCanvas(path string) (layout.Layout, *editor.Canvas, error) {
	l, err := layout.ReadFile(path)
	if err != nil {
		return layout.Layout{}, nil, err
	}
	c := a.newCanvas()
	for _, e := range c.Instantiate(l.Components, l.Orientation.CanvasSize()) {
		applog.WithComponent("cli").Warn("entry skipped", slog.String("file", path), slog.Any("err", e))
	}
	return l, c, nil
}

func (a *App) openRepo(ctx context.Context) (*storage.Repository, error) {
	dir, err := a.cfg.LayoutsDir()
	if err != nil {
		return nil, err
	}
	repo, err := storage.Open(ctx, dir)
	if err != nil {
		return nil, err
	}
	repo.BackupsToKeep = a.cfg.Storage.BackupsToKeep
	return repo, nil
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
