package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	sourceFlags
	output string // karabiner.json path; overrides the config
	stdout bool   // print the document instead of writing it
	dryRun bool   // build and report without writing
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Write karabiner.json from the layer tree",
		Long: `Write karabiner.json from the layer tree.

The hyper key rule and the double-tap rule come first, followed by one rule
per layer in declaration order. The file is replaced atomically; rerunning on
unchanged input reproduces it byte for byte.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pOpts, err := c.pipelineOptions(cmd, &opts.sourceFlags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				pOpts.Output = opts.output
				if err := errors.ValidateOutputPath(pOpts.Output); err != nil {
					return err
				}
			}
			return c.runGenerate(cmd, pOpts, opts)
		},
	}

	opts.sourceFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "karabiner.json path; overrides the config")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "print the configuration instead of writing it")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "build the configuration without writing it")
	cmd.MarkFlagsMutuallyExclusive("stdout", "dry-run")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, pOpts pipeline.Options, opts generateOpts) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}

	if opts.stdout || opts.dryRun {
		result, err := runner.Generate(ctx, pOpts)
		if err != nil {
			return err
		}
		if opts.stdout {
			_, err = cmd.OutOrStdout().Write(result.Data)
			return err
		}
		printInfo("Dry run: would write %s", pOpts.Output)
		printStats(result.Stats)
		return nil
	}

	return c.writeConfig(ctx, runner, pOpts)
}

func (c *CLI) writeConfig(ctx context.Context, runner *pipeline.Runner, pOpts pipeline.Options) error {
	prog := newProgress(loggerFromContext(ctx))
	result, err := runner.Execute(ctx, pOpts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated %s", plural(result.Stats.Manipulators, "manipulator")))

	printSuccess("Generated Karabiner configuration")
	printFile(pOpts.Output)
	printStats(result.Stats)
	return nil
}
