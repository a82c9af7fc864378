package pipeline

import (
	"bytes"
	"context"
	"io"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hyperkey/pkg/cache"
	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/hyper"
	"github.com/matzehuels/hyperkey/pkg/karabiner"
	"github.com/matzehuels/hyperkey/pkg/observability"
	"github.com/matzehuels/hyperkey/pkg/source"
)

// Runner encapsulates pipeline execution.
//
// The Runner is stateless except for the artifact cache and logger; it does
// not store pipeline results. Generation itself never touches the cache.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables artifact caching; a nil
// logger uses log.Default().
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute generates the configuration and writes it to opts.Output.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Output == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "output path cannot be empty")
	}

	result, err := r.Generate(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := r.Write(ctx, result, opts.Output); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadLayers returns the layer tree selected by opts, validated, together
// with a name for where it came from. With opts.Flat, sub-keys shared
// between layers are rejected.
func (r *Runner) LoadLayers(ctx context.Context, opts Options) ([]hyper.Layer, string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", err
	}

	src := SourceBuiltin
	switch {
	case opts.Layers != nil:
		src = "inline"
	case opts.LayersPath != "":
		src = opts.LayersPath
	}

	hooks := observability.Generator()
	hooks.OnLoadStart(ctx, src)
	start := time.Now()

	var layers []hyper.Layer
	var err error
	switch {
	case opts.Layers != nil:
		layers = slices.Clone(opts.Layers)
		err = hyper.Validate(layers)
	case opts.LayersPath != "":
		layers, err = source.Load(opts.LayersPath)
	default:
		layers = hyper.DefaultLayers()
	}
	if err == nil {
		err = hyper.ValidateExpansion(layers, opts.Rules.Expand)
	}

	hooks.OnLoadComplete(ctx, src, len(layers), time.Since(start), err)
	if err != nil {
		return nil, src, err
	}
	return layers, src, nil
}

// Generate runs the load and expand stages without touching the output file.
// The same options always produce byte-identical Data.
func (r *Runner) Generate(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	loadStart := time.Now()
	layers, src, err := r.LoadLayers(ctx, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{Layers: layers, Source: src}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Layers = len(layers)
	result.Stats.Bindings = hyper.BindingCount(layers)

	logger.Info("loaded layers",
		"source", src,
		"layers", result.Stats.Layers,
		"bindings", result.Stats.Bindings,
		"duration", result.Stats.LoadTime)

	hooks := observability.Generator()
	hooks.OnExpandStart(ctx, len(layers))
	expandStart := time.Now()

	rules := hyper.Rules(layers, opts.Rules)
	result.Config = karabiner.NewConfig(opts.Profile, opts.ShowInMenuBar, rules)
	result.Data, err = karabiner.Marshal(result.Config)
	result.Stats.ExpandTime = time.Since(expandStart)
	result.Stats.Rules = len(rules)
	result.Stats.Manipulators = karabiner.ManipulatorCount(rules)
	result.Stats.Bytes = len(result.Data)

	hooks.OnExpandComplete(ctx, result.Stats.Rules, result.Stats.Manipulators, result.Stats.ExpandTime, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode configuration")
	}

	logger.Info("expanded rules",
		"rules", result.Stats.Rules,
		"manipulators", result.Stats.Manipulators,
		"duration", result.Stats.ExpandTime)

	return result, nil
}

// Write atomically replaces the file at path with result.Data.
// Failures are WRITE_FAILED errors; nothing is retried.
func (r *Runner) Write(ctx context.Context, result *Result, path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}

	hooks := observability.Output()
	hooks.OnWriteStart(ctx, path)
	start := time.Now()

	err := karabiner.WriteFile(path, result.Data)
	result.Stats.WriteTime = time.Since(start)

	hooks.OnWriteComplete(ctx, path, len(result.Data), result.Stats.WriteTime, err)
	if err != nil {
		return err
	}

	r.writeLogger().Info("wrote configuration",
		"path", path,
		"bytes", len(result.Data),
		"duration", result.Stats.WriteTime)
	return nil
}

// CheckResult reports how the file on disk compares to a fresh generation.
type CheckResult struct {
	// Path is the checked file.
	Path string
	// UpToDate is true when the file is byte-identical to the generated output.
	UpToDate bool
	// Missing is true when the file does not exist.
	Missing bool
	// Changes lists rule-level differences, in generated order.
	Changes []karabiner.Change
	// Result is the fresh generation the file was compared against.
	Result *Result
}

// Check regenerates the configuration in memory and compares it with the
// file at opts.Output. When they differ it returns the CheckResult together
// with an OUT_OF_DATE error.
func (r *Runner) Check(ctx context.Context, opts Options) (*CheckResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Output == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "output path cannot be empty")
	}

	result, err := r.Generate(ctx, opts)
	if err != nil {
		return nil, err
	}
	check := &CheckResult{Path: opts.Output, Result: result}

	err = r.compare(check, result)
	observability.Output().OnCheck(ctx, opts.Output, len(check.Changes), err)
	if err != nil && !errors.Is(err, errors.ErrCodeOutOfDate) {
		return nil, err
	}
	return check, err
}

func (r *Runner) compare(check *CheckResult, result *Result) error {
	current, err := os.ReadFile(check.Path)
	if os.IsNotExist(err) {
		check.Missing = true
		check.Changes = karabiner.Diff(karabiner.Config{}, result.Config)
		return errors.New(errors.ErrCodeOutOfDate, "%s does not exist", check.Path)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", check.Path)
	}

	if bytes.Equal(current, result.Data) {
		check.UpToDate = true
		return nil
	}

	old, err := karabiner.ReadJSON(bytes.NewReader(current))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", check.Path)
	}
	check.Changes = karabiner.Diff(old, result.Config)
	if len(check.Changes) == 0 {
		return errors.New(errors.ErrCodeOutOfDate, "%s differs from the generated configuration outside its rules", check.Path)
	}
	return errors.New(errors.ErrCodeOutOfDate, "%s is out of date: %d rule changes", check.Path, len(check.Changes))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) writeLogger() *log.Logger {
	if r.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return r.Logger
}
