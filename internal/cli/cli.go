package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperkey/internal/config"
	"github.com/matzehuels/hyperkey/pkg/buildinfo"
	"github.com/matzehuels/hyperkey/pkg/cache"
	"github.com/matzehuels/hyperkey/pkg/observability"
	"github.com/matzehuels/hyperkey/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// annotationSkipConfig marks commands that run without loading the config
// file, so a broken config cannot block completion or cache maintenance.
const annotationSkipConfig = "hyperkey/skip-config"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	envFiles   []string
	config     config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "hyperkey generates Karabiner-Elements hyper key layers",
		Long: `hyperkey turns a tree of hyper key layers into the complex modifications
of a Karabiner-Elements configuration.

Hold the hyper key, tap a layer key, then tap an action key: hyper+a+m opens
Spotify, hyper+d+f maximizes the focused window. Layers come from the
built-in tree or a YAML, TOML or JSON layer file.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.preRun,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/hyperkey/config.toml)")
	root.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", nil, "load environment variables from these files (default .env)")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.cheatsheetCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.layersCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// preRun loads .env files and the config, registers logging hooks and
// attaches the logger to the command context.
func (c *CLI) preRun(cmd *cobra.Command, args []string) error {
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))

	hooks := observability.NewLogHooks(c.Logger)
	observability.SetGeneratorHooks(hooks)
	observability.SetOutputHooks(hooks)

	if cmd.Annotations[annotationSkipConfig] != "" {
		return nil
	}

	if err := config.LoadEnv(c.envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "output", cfg.Output, "layers", cfg.Layers)
	return nil
}

// =============================================================================
// Pipeline Helpers
// =============================================================================

// sourceFlags are the layer and rule flags shared by commands that build
// the configuration.
type sourceFlags struct {
	layers    string
	profile   string
	sublayers bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.layers, "layers", "l", "", "layer file (.yaml, .toml, .json); overrides the config")
	cmd.Flags().StringVar(&f.profile, "profile", "", "Karabiner profile name; overrides the config")
	cmd.Flags().BoolVar(&f.sublayers, "sublayers", true, "use a variable per layer so layer keys must be held (--sublayers=false for flat rules)")
}

// pipelineOptions merges the loaded config with command flags. Flags win.
func (c *CLI) pipelineOptions(cmd *cobra.Command, f *sourceFlags) (pipeline.Options, error) {
	cfg := c.config
	if f != nil {
		if cmd.Flags().Changed("layers") {
			cfg.Layers = config.ExpandHome(f.layers)
		}
		if cmd.Flags().Changed("profile") {
			cfg.Profile = f.profile
		}
		if cmd.Flags().Changed("sublayers") {
			cfg.Sublayers = f.sublayers
		}
	}
	if err := cfg.Validate(); err != nil {
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		LayersPath:    cfg.Layers,
		Rules:         cfg.Options(),
		Profile:       cfg.Profile,
		ShowInMenuBar: cfg.ShowInMenuBar,
		Output:        cfg.Output,
		Flat:          !cfg.Sublayers,
		Logger:        c.Logger,
	}, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/hyperkey/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Terminal Helpers
// =============================================================================

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, strings.ToLower(f))
		}
	}
	return formats
}
