package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/N3moAhead/pedigree/internal/config"
	"github.com/N3moAhead/pedigree/internal/db"
	"github.com/N3moAhead/pedigree/internal/layout"
	"github.com/N3moAhead/pedigree/internal/logger"
	"github.com/N3moAhead/pedigree/internal/render"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the family tree in the configured formats",
		Long: `Reads the relations file and writes <base-filename>.<format> for every
requested format. svg and png are drawn natively; dot can be passed to Graphviz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := a.generate(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(a.out, successStyle().Render("Wrote "+p))
			}
			return nil
		},
	}
	addOutputFlags(cmd)
	return cmd
}

// generate reads the relations file and writes every configured format.
func (a *app) generate(ctx context.Context) ([]string, error) {
	opts, err := renderOptions(a.cfg)
	if err != nil {
		return nil, err
	}
	store := db.NewStore(a.cfg.YAMLFilename, logger.ForComponent(a.log, "db"))
	fam, err := store.Load()
	if err != nil {
		return nil, checkMissing(a.cfg.YAMLFilename, err)
	}
	paths, err := render.Generate(ctx, fam, a.cfg.BaseFilename, a.cfg.Formats, opts, logger.ForComponent(a.log, "render"))
	if err != nil {
		return nil, err
	}
	a.log.Debug("generated family tree",
		zap.String("input", a.cfg.YAMLFilename),
		zap.Int("people", fam.Len()),
		zap.Strings("outputs", paths))
	return paths, nil
}

func renderOptions(cfg *config.Config) (render.Options, error) {
	pref, err := layout.ParsePreference(cfg.Layout)
	if err != nil {
		return render.Options{}, err
	}
	opts := render.DefaultOptions()
	opts.Layout.Preference = pref
	opts.Palette = render.Palette{
		Father: cfg.Colors.Father,
		Mother: cfg.Colors.Mother,
		Spouse: cfg.Colors.Spouse,
		Node:   cfg.Colors.Node,
		Text:   cfg.Colors.Text,
	}
	return opts, nil
}
