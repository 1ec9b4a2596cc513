package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/N3moAhead/pedigree/internal/config"
	"github.com/N3moAhead/pedigree/internal/db"
	"github.com/N3moAhead/pedigree/internal/logger"
	"github.com/N3moAhead/pedigree/internal/wizard"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries what the commands share once flags and config are resolved.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	log        *zap.Logger
	out        io.Writer
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"yaml-filename": "yaml_filename",
	"base-filename": "base_filename",
	"formats":       "formats",
	"layout":        "layout",
	"color":         "color",
	"verbose":       "verbose",
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: config.New(), out: out, log: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "pedigree",
		Short: "Draw family trees from a YAML file of relations",
		Long: `pedigree keeps people and their father, mother and spouse relations in a
YAML file and draws them as SVG, PNG, Graphviz DOT or an interactive HTML page.

Run without a command to edit the relations file in the console.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWizard()
		},
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default .pedigree.yaml in the current directory or $HOME)")
	flags.StringP("yaml-filename", "y", "relations.yaml", "relations file")
	flags.String("color", "auto", "terminal colours: auto, always or never")
	flags.Bool("verbose", false, "enable debug logging")

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newCleanupCmd(a),
		newWatchCmd(a),
		newMigrateCmd(a),
		newListCmd(a),
	)
	return rootCmd
}

// setup loads the config with the flags of cmd on top and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	applyColorMode(cfg.Color)

	// The wizard owns the terminal.
	if cmd.Parent() == nil {
		return nil
	}
	log, err := logger.New(cfg.Verbose)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func (a *app) runWizard() error {
	created, err := db.Ensure(a.cfg.YAMLFilename)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintln(a.out, successStyle().Render("Created "+a.cfg.YAMLFilename))
	}
	return wizard.Run(db.NewStore(a.cfg.YAMLFilename, nil))
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("base-filename", "b", "family_tree", "output path without extension")
	cmd.Flags().StringSliceP("formats", "f", []string{"svg", "dot", "html"}, "output formats: svg, png, dot, html")
	cmd.Flags().String("layout", "balanced", "layout preference: balanced, patrilineal or matrilineal")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(os.Stdout)
	if cmd, err := rootCmd.ExecuteContextC(ctx); err != nil {
		printError(os.Stderr, cmd, err)
		stop()
		os.Exit(1)
	}
}
