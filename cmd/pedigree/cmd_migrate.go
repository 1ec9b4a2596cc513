package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/N3moAhead/pedigree/internal/db"
	"github.com/N3moAhead/pedigree/internal/logger"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite the relations file in the current schema",
		Long: `Older relations files (one YAML document each for people, father, mother
and spouse) are read transparently. migrate rewrites the file in the current
single-document schema so that ids and notes can be stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.YAMLFilename
			res, err := db.MigrateFile(path, logger.ForComponent(a.log, "migration"))
			if err != nil {
				return checkMissing(path, err)
			}
			if !res.Changed() {
				fmt.Fprintf(a.out, "%s is already at schema %s\n", path, res.To)
				return nil
			}
			fmt.Fprintln(a.out, successStyle().Render(
				fmt.Sprintf("Migrated %s from schema %s to %s", path, res.From, res.To)))
			return nil
		},
	}
}
