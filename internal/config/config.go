// Package config loads hyperkey settings from a TOML file, .env files and
// environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables, command-line flags. Flags are applied by the CLI.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/hyper"
	"github.com/matzehuels/hyperkey/pkg/source"
)

// AppName names the config directory.
const AppName = "hyperkey"

// Environment variables overriding file values.
const (
	EnvOutput  = "HYPERKEY_OUTPUT"
	EnvProfile = "HYPERKEY_PROFILE"
	EnvLayers  = "HYPERKEY_LAYERS"
)

// DefaultOutput is where Karabiner-Elements reads its configuration.
const DefaultOutput = "~/.config/karabiner/karabiner.json"

// DefaultProfile is the Karabiner profile name written to the output.
const DefaultProfile = "Default"

// Config holds generator settings.
type Config struct {
	Output        string `toml:"output"`
	Profile       string `toml:"profile"`
	ShowInMenuBar bool   `toml:"show_in_menu_bar"`
	// Layers is an optional layer file. Empty selects the built-in tree.
	Layers string `toml:"layers"`
	// Sublayers guards each binding with its layer's variable. Turning it
	// off is only valid for trees whose sub-keys are unique across layers.
	Sublayers bool            `toml:"sublayers"`
	Hyper     HyperConfig     `toml:"hyper"`
	DoubleTap DoubleTapConfig `toml:"double_tap"`
}

// HyperConfig is the [hyper] table.
type HyperConfig struct {
	Key               string `toml:"key"`
	Alone             string `toml:"alone"`
	DisableCommandTab bool   `toml:"disable_command_tab"`
}

// DoubleTapConfig is the [double_tap] table.
type DoubleTapConfig struct {
	Key     string `toml:"key"`
	Emit    string `toml:"emit"`
	DelayMS int    `toml:"delay_ms"`
}

// Default returns the built-in settings.
func Default() Config {
	h := hyper.DefaultHyperKey()
	d := hyper.DefaultDoubleTap()
	return Config{
		Output:    DefaultOutput,
		Profile:   DefaultProfile,
		Sublayers: true,
		// Alone stays empty so a changed key is also what a tap emits.
		Hyper: HyperConfig{
			Key:               h.Key,
			DisableCommandTab: h.DisableCommandTab,
		},
		DoubleTap: DoubleTapConfig{
			Key:     d.Key,
			Emit:    d.Emit,
			DelayMS: int(d.Delay / time.Millisecond),
		},
	}
}

// Dir returns the config directory using XDG standard (~/.config/hyperkey/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultPath returns the config file location inside [Dir].
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadEnv loads .env files into the process environment. Without arguments it
// reads .env in the working directory. Missing files are ignored and
// variables already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", f)
		}
	}
	return nil
}

// Load reads the config file at path on top of [Default], then applies
// environment overrides and expands ~ in paths.
//
// An empty path selects [DefaultPath]; a missing default file is not an
// error. A missing explicit path fails with FILE_NOT_FOUND. Unknown keys
// fail with INVALID_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "locate config directory")
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	} else if explicit && os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	cfg.ApplyEnv()
	cfg.Output = ExpandHome(cfg.Output)
	cfg.Layers = ExpandHome(cfg.Layers)
	return cfg, nil
}

// ApplyEnv overrides fields from HYPERKEY_* environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvOutput)); v != "" {
		c.Output = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvProfile)); v != "" {
		c.Profile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLayers)); v != "" {
		c.Layers = v
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Options converts the settings into rule options.
func (c Config) Options() hyper.Options {
	return hyper.Options{
		Hyper: hyper.HyperKey{
			Key:               c.Hyper.Key,
			Alone:             c.Hyper.Alone,
			DisableCommandTab: c.Hyper.DisableCommandTab,
		},
		DoubleTap: hyper.DoubleTap{
			Key:   c.DoubleTap.Key,
			Emit:  c.DoubleTap.Emit,
			Delay: time.Duration(c.DoubleTap.DelayMS) * time.Millisecond,
		},
		Expand: hyper.ExpandOptions{Sublayers: c.Sublayers},
	}
}

// Validate checks paths, the profile name and key settings.
func (c Config) Validate() error {
	var errs []error
	if err := errors.ValidateOutputPath(c.Output); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Profile) == "" {
		errs = append(errs, errors.New(errors.ErrCodeInvalidConfig, "profile name cannot be empty"))
	}
	if c.Layers != "" {
		if _, err := source.FormatFromPath(c.Layers); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.Options().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs)
}

// LoadLayers returns the layer tree named by c.Layers, or the built-in tree.
func (c Config) LoadLayers() ([]hyper.Layer, error) {
	if c.Layers == "" {
		return hyper.DefaultLayers(), nil
	}
	return source.Load(c.Layers)
}
