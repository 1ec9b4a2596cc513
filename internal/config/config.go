package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Formats are the output formats pedigree can write.
var Formats = []string{"svg", "png", "dot", "html"}

// Layouts are the accepted values of the layout key.
var Layouts = []string{"balanced", "patrilineal", "matrilineal"}

// Colors configures the drawing colours, as #rgb or #rrggbb.
type Colors struct {
	Father string `mapstructure:"father" yaml:"father"`
	Mother string `mapstructure:"mother" yaml:"mother"`
	Spouse string `mapstructure:"spouse" yaml:"spouse"`
	Node   string `mapstructure:"node" yaml:"node"`
	Text   string `mapstructure:"text" yaml:"text"`
}

type Config struct {
	YAMLFilename string        `mapstructure:"yaml_filename" yaml:"yaml_filename"`
	BaseFilename string        `mapstructure:"base_filename" yaml:"base_filename"`
	Formats      []string      `mapstructure:"formats" yaml:"formats"`
	Layout       string        `mapstructure:"layout" yaml:"layout"`
	Colors       Colors        `mapstructure:"colors" yaml:"colors"`
	Color        string        `mapstructure:"color" yaml:"color"` // terminal colours: auto, always, never
	Verbose      bool          `mapstructure:"verbose" yaml:"verbose"`
	Debounce     time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

const EnvPrefix = "PEDIGREE"

// New returns a viper instance with defaults and environment bindings.
// PEDIGREE_COLORS_FATHER overrides colors.father and so on.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("yaml_filename", "relations.yaml")
	v.SetDefault("base_filename", "family_tree")
	v.SetDefault("formats", []string{"svg", "dot", "html"})
	v.SetDefault("layout", "balanced")
	v.SetDefault("colors.father", "#0000ff")
	v.SetDefault("colors.mother", "#ffa500")
	v.SetDefault("colors.spouse", "#666666")
	v.SetDefault("colors.node", "#ffffff")
	v.SetDefault("colors.text", "#000000")
	v.SetDefault("color", "auto")
	v.SetDefault("verbose", false)
	v.SetDefault("debounce", 300*time.Millisecond)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and decodes the result. An explicit
// path must exist; without one .pedigree.yaml is looked up in the working
// directory and then in $HOME, and its absence is fine.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("couldn't open config %s: %w", path, err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".pedigree")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !(errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	var formats []string
	for _, f := range c.Formats {
		for _, part := range strings.Split(f, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" && !slices.Contains(formats, part) {
				formats = append(formats, part)
			}
		}
	}
	c.Formats = formats
	c.Layout = strings.ToLower(strings.TrimSpace(c.Layout))
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func (c *Config) Validate() error {
	var errs []error
	if c.YAMLFilename == "" {
		errs = append(errs, errors.New("yaml_filename must not be empty"))
	}
	if c.BaseFilename == "" {
		errs = append(errs, errors.New("base_filename must not be empty"))
	}
	if len(c.Formats) == 0 {
		errs = append(errs, errors.New("formats must name at least one format"))
	}
	for _, f := range c.Formats {
		if !slices.Contains(Formats, f) {
			errs = append(errs, fmt.Errorf("unknown format %q (want one of %s)", f, strings.Join(Formats, ", ")))
		}
	}
	if !slices.Contains(Layouts, c.Layout) {
		errs = append(errs, fmt.Errorf("unknown layout %q (want one of %s)", c.Layout, strings.Join(Layouts, ", ")))
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("color must be auto, always or never, got %q", c.Color))
	}
	for key, val := range map[string]string{
		"father": c.Colors.Father,
		"mother": c.Colors.Mother,
		"spouse": c.Colors.Spouse,
		"node":   c.Colors.Node,
		"text":   c.Colors.Text,
	} {
		if !hexColor.MatchString(val) {
			errs = append(errs, fmt.Errorf("colors.%s must be a hex colour like #0000ff, got %q", key, val))
		}
	}
	if c.Debounce < 0 {
		errs = append(errs, errors.New("debounce must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
