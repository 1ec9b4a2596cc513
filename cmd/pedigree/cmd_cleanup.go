package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCleanupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete generated files",
		Long:  `Deletes <base-filename>.svg, .png, .dot and .html. Missing files are skipped.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.cleanup()
			for _, p := range removed {
				fmt.Fprintln(a.out, successStyle().Render("Removed "+p))
			}
			return err
		},
	}
	cmd.Flags().StringP("base-filename", "b", "family_tree", "output path without extension")
	return cmd
}

// cleanup removes the outputs of base_filename and returns what it removed.
func (a *app) cleanup() ([]string, error) {
	pattern := escapeMeta(a.cfg.BaseFilename) + ".{svg,png,dot,html}"
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}
	var removed []string
	var errs []error
	for _, path := range matches {
		err := os.Remove(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			errs = append(errs, err)
			continue
		}
		a.log.Debug("removed output", zap.String("path", path))
		removed = append(removed, path)
	}
	return removed, errors.Join(errs...)
}

var globMeta = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"?", `\?`,
	"[", `\[`,
	"]", `\]`,
	"{", `\{`,
	"}", `\}`,
)

// escapeMeta quotes glob syntax in a literal path.
func escapeMeta(path string) string {
	return globMeta.Replace(path)
}
