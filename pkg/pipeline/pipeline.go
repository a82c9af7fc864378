// Package pipeline provides the generation pipeline for hyperkey.
//
// This package implements the complete load → expand → write flow used by
// every CLI command. Centralizing it keeps `generate`, `check` and the
// preview commands in agreement about what the output file contains.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: take the layer tree from [Options.Layers], a layer file, or the
//     built-in tree, and validate it
//  2. Expand: prepend the fixed hyper and double-tap rules, expand every
//     layer into a Karabiner rule, and encode the document
//  3. Write: atomically replace the output file
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    LayersPath: "~/.config/hyperkey/layers.yaml",
//	    Output:     "/Users/me/.config/karabiner/karabiner.json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stats.Manipulators)
//
// Run individual stages:
//
//	layers, err := runner.LoadLayers(ctx, opts)
//	result, err := runner.Generate(ctx, opts)
//	err = runner.Write(ctx, result, path)
//	check, err := runner.Check(ctx, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/hyper"
	"github.com/matzehuels/hyperkey/pkg/karabiner"
)

// DefaultProfile is the Karabiner profile name used when none is set.
const DefaultProfile = "Default"

// SourceBuiltin names the built-in layer tree in logs and hooks.
const SourceBuiltin = "builtin"

// Options contains all configuration for a pipeline run.
type Options struct {
	// Layers is the layer tree to expand. When nil, the tree is read from
	// LayersPath, or the built-in tree is used when LayersPath is empty.
	Layers []hyper.Layer

	// LayersPath is a YAML, TOML or JSON layer file.
	LayersPath string

	// Rules configures the fixed rules. Empty keys, a zero emit key and a
	// zero delay are filled from the defaults; fields already set are kept.
	// Rules.Expand is derived from Flat.
	Rules hyper.Options

	// Flat guards bindings with the hyper variable alone instead of a
	// variable per layer. A sub-key bound in more than one layer is then
	// rejected with DUPLICATE_KEY, since only its first binding could fire.
	Flat bool

	// Profile is the Karabiner profile name. Defaults to DefaultProfile.
	Profile string

	// ShowInMenuBar sets global.show_in_menu_bar.
	ShowInMenuBar bool

	// Output is the karabiner.json path for Execute and Check.
	Output string

	// Logger receives progress records. Defaults to a discarding logger.
	Logger *log.Logger

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layers is the validated layer tree.
	Layers []hyper.Layer

	// Source names where the layers came from: a file path or SourceBuiltin.
	Source string

	// Config is the generated document.
	Config karabiner.Config

	// Data is Config encoded exactly as it is written to disk.
	Data []byte

	// Stats contains counts and timings.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Layers       int
	Bindings     int
	Rules        int
	Manipulators int
	Bytes        int
	LoadTime     time.Duration
	ExpandTime   time.Duration
	WriteTime    time.Duration
}

// ValidateAndSetDefaults checks the options and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	o.Rules.Hyper = hyperDefaults(o.Rules.Hyper)
	o.Rules.DoubleTap = doubleTapDefaults(o.Rules.DoubleTap)
	o.Rules.Expand.Sublayers = !o.Flat
	if o.Profile == "" {
		o.Profile = DefaultProfile
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := o.Rules.Validate(); err != nil {
		return err
	}
	if o.Output != "" {
		if err := errors.ValidateOutputPath(o.Output); err != nil {
			return err
		}
	}

	o.validated = true
	return nil
}

// hyperDefaults fills the key of h. A zero HyperKey becomes the default
// one, including its ⌘-Tab setting.
func hyperDefaults(h hyper.HyperKey) hyper.HyperKey {
	def := hyper.DefaultHyperKey()
	if h == (hyper.HyperKey{}) {
		return def
	}
	if h.Key == "" {
		h.Key = def.Key
	}
	return h
}

// doubleTapDefaults fills the unset fields of d.
func doubleTapDefaults(d hyper.DoubleTap) hyper.DoubleTap {
	def := hyper.DefaultDoubleTap()
	if d.Key == "" {
		d.Key = def.Key
	}
	if d.Emit == "" {
		d.Emit = def.Emit
	}
	if d.Delay == 0 {
		d.Delay = def.Delay
	}
	return d
}
