package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/N3moAhead/pedigree/internal/logger"
	"github.com/N3moAhead/pedigree/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate outputs whenever the relations file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context())
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (a *app) watch(ctx context.Context) error {
	if _, err := os.Stat(a.cfg.YAMLFilename); err != nil {
		return checkMissing(a.cfg.YAMLFilename, err)
	}
	// Draw once so the outputs match the file before the first change.
	if _, err := a.generate(ctx); err != nil {
		return err
	}

	wcfg := watcher.DefaultConfig(a.cfg.YAMLFilename)
	wcfg.Debounce = a.cfg.Debounce
	w, err := watcher.New(wcfg, func(ctx context.Context) error {
		paths, err := a.generate(ctx)
		if err != nil {
			return err
		}
		a.log.Info("regenerated", zap.Strings("outputs", paths))
		return nil
	}, logger.ForComponent(a.log, "watcher"))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, successStyle().Render("Watching "+a.cfg.YAMLFilename+", press Ctrl+C to stop"))
	return w.Run(ctx)
}
