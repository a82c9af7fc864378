package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matzehuels/hyperkey/pkg/cache"
	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/hyper"
	"github.com/matzehuels/hyperkey/pkg/render/nodelink"
)

// Format constants for layer diagram output.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported diagram formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// ValidateFormat checks that a diagram format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// RenderOptions configures layer diagram rendering.
type RenderOptions struct {
	// Formats lists the artifacts to produce. Defaults to svg.
	Formats []string
	// HyperKey labels the root node. Empty means semicolon.
	HyperKey string
	// Detailed adds action kinds and shell commands to binding nodes.
	Detailed bool
	// Scale is the PNG scale factor. Defaults to DefaultScale.
	Scale float64
	// Refresh bypasses cached artifacts.
	Refresh bool
}

// Render draws the layer tree in every requested format and returns the
// artifacts keyed by format. Rendered SVG, PNG and PDF output is cached by
// the hash of the DOT source.
func (r *Runner) Render(ctx context.Context, layers []hyper.Layer, opts RenderOptions) (map[string][]byte, error) {
	if len(opts.Formats) == 0 {
		opts.Formats = []string{FormatSVG}
	}
	if opts.Scale == 0 {
		opts.Scale = DefaultScale
	}
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	dot := nodelink.ToDOT(layers, nodelink.Options{HyperKey: opts.HyperKey, Detailed: opts.Detailed})
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		if format == FormatDOT {
			artifacts[format] = []byte(dot)
			continue
		}

		key := cache.ArtifactKey(dot, artifactVariant(format, opts.Scale))
		if !opts.Refresh {
			if data, hit, err := r.cache().Get(ctx, key); err == nil && hit {
				r.writeLogger().Debug("artifact cache hit", "format", format)
				artifacts[format] = data
				continue
			}
		}

		data, err := renderFormat(dot, format, opts.Scale)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data

		if err := r.cache().Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.writeLogger().Warn("cache artifact", "format", format, "err", err)
		}
	}
	return artifacts, nil
}

func renderFormat(dot, format string, scale float64) ([]byte, error) {
	switch format {
	case FormatSVG:
		return nodelink.RenderSVG(dot)
	case FormatPNG:
		return nodelink.RenderPNG(dot, scale)
	case FormatPDF:
		return nodelink.RenderPDF(dot)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func artifactVariant(format string, scale float64) string {
	if format == FormatPNG {
		return fmt.Sprintf("%s@%gx", format, scale)
	}
	return format
}

// FormatFromPath returns the diagram format named by path's extension.
func FormatFromPath(path string) (string, error) {
	ext := filepath.Ext(path)
	if len(ext) < 2 {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer format from %q", path)
	}
	format := strings.ToLower(ext[1:])
	if format == "gv" {
		format = FormatDOT
	}
	if err := ValidateFormat(format); err != nil {
		return "", err
	}
	return format, nil
}

func (r *Runner) cache() cache.Cache {
	if r.Cache == nil {
		return cache.NewNullCache()
	}
	return r.Cache
}
