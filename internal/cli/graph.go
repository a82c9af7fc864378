package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/hyper"
	"github.com/matzehuels/hyperkey/pkg/pipeline"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	sourceFlags
	output   string   // output file (single format) or base path (multiple)
	formats  []string // dot, svg, png, pdf
	detailed bool     // show action kinds and shell commands
	scale    float64  // PNG scale factor
	noCache  bool     // disable the artifact cache
	refresh  bool     // re-render even when cached
}

// graphCommand creates the graph command for drawing the layer tree.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		opts       graphOpts
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the layer tree as a Graphviz diagram",
		Long: `Draw the layer tree as a Graphviz diagram.

The hyper key sits at the root, one node per layer, one leaf per binding.
Without --output the DOT source is printed. PNG and PDF output need
rsvg-convert from librsvg. Rendered diagrams are cached locally.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if len(opts.formats) == 0 {
				opts.formats = defaultGraphFormats(opts.output)
			}
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			pOpts, err := c.pipelineOptions(cmd, &opts.sourceFlags)
			if err != nil {
				return err
			}
			return c.runGraph(cmd, pOpts, opts)
		},
	}

	opts.sourceFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): dot, svg, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show action kinds and shell commands")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when a cached diagram exists")

	return cmd
}

// defaultGraphFormats infers the format from the output extension, falling
// back to DOT on stdout and SVG for files.
func defaultGraphFormats(output string) []string {
	if output == "" {
		return []string{pipeline.FormatDOT}
	}
	if format, err := pipeline.FormatFromPath(output); err == nil {
		return []string{format}
	}
	return []string{pipeline.FormatSVG}
}

func (c *CLI) runGraph(cmd *cobra.Command, pOpts pipeline.Options, opts graphOpts) error {
	ctx := cmd.Context()
	if err := pOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Cache.Close()

	layers, _, err := runner.LoadLayers(ctx, pOpts)
	if err != nil {
		return err
	}

	if opts.output == "" && len(opts.formats) == 1 && opts.formats[0] == pipeline.FormatDOT {
		artifacts, err := runner.Render(ctx, layers, renderOptions(pOpts, opts))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(artifacts[pipeline.FormatDOT])
		return err
	}
	if opts.output == "" {
		return errors.New(errors.ErrCodeInvalidPath, "--output is required for %s output", strings.Join(opts.formats, ", "))
	}

	artifacts, err := renderWithSpinner(ctx, runner, layers, renderOptions(pOpts, opts))
	if err != nil {
		return err
	}
	return writeArtifacts(artifacts, opts.formats, opts.output)
}

func renderOptions(pOpts pipeline.Options, opts graphOpts) pipeline.RenderOptions {
	return pipeline.RenderOptions{
		Formats:  opts.formats,
		HyperKey: pOpts.Rules.Hyper.Key,
		Detailed: opts.detailed,
		Scale:    opts.scale,
		Refresh:  opts.refresh,
	}
}

func renderWithSpinner(ctx context.Context, runner *pipeline.Runner, layers []hyper.Layer, opts pipeline.RenderOptions) (map[string][]byte, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()
	artifacts, err := runner.Render(ctx, layers, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return nil, err
	}
	spinner.Stop()
	return artifacts, nil
}

// writeArtifacts writes each artifact next to output. A single format is
// written to output as given; several formats share output's base name.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) error {
	base := basePath(output)
	for _, format := range formats {
		path := output
		if len(formats) > 1 {
			path = base + "." + format
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeWriteFailed, err, "create directory %s", dir)
			}
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, err, "write %s", path)
		}
		printFile(path)
	}
	printSuccess("Rendered %s", plural(len(formats), "diagram"))
	return nil
}

// basePath strips a known diagram extension from output.
func basePath(output string) string {
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(strings.ToLower(ext), ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
