package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// missingFileError marks errors that deserve the usage text.
type missingFileError struct {
	path string
	err  error
}

func (e *missingFileError) Error() string {
	return fmt.Sprintf("Couldn't open %s", e.path)
}

func (e *missingFileError) Unwrap() error { return e.err }

// checkMissing turns a not-exist error about path into a missingFileError.
func checkMissing(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &missingFileError{path: path, err: err}
	}
	return err
}

// applyColorMode sets the colour profile of the default lipgloss renderer.
// auto keeps whatever lipgloss detected on stdout.
func applyColorMode(mode string) {
	switch mode {
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
	}
}

func errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
}

func successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
}

func printError(w io.Writer, cmd *cobra.Command, err error) {
	var missing *missingFileError
	if errors.As(err, &missing) {
		fmt.Fprintln(w, errorStyle().Render(missing.Error()))
		if cmd != nil {
			fmt.Fprintln(w)
			fmt.Fprint(w, cmd.UsageString())
		}
		return
	}
	fmt.Fprintln(w, errorStyle().Render("Error: "+err.Error()))
}
