package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperkey/pkg/source"
)

// layersCommand creates the layers command, which prints the active layer
// tree in a layer file format. Printing the built-in tree gives a starting
// point for a custom layer file.
func (c *CLI) layersCommand() *cobra.Command {
	var (
		flags  sourceFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "layers",
		Short: "Print the layer tree as YAML, TOML or JSON",
		Example: `  # Start a custom layer file from the built-in tree
  hyperkey layers > ~/.config/hyperkey/layers.yaml

  # Convert a layer file to TOML
  hyperkey layers -l layers.yaml --format toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := source.ParseFormat(format)
			if err != nil {
				return err
			}
			pOpts, err := c.pipelineOptions(cmd, &flags)
			if err != nil {
				return err
			}
			if err := pOpts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			runner, err := c.newRunner(true)
			if err != nil {
				return err
			}
			layers, src, err := runner.LoadLayers(cmd.Context(), pOpts)
			if err != nil {
				return err
			}
			c.Logger.Debug("encoding layers", "source", src, "format", f, "layers", len(layers))
			return source.Encode(cmd.OutOrStdout(), layers, f)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(source.FormatYAML), "output format: yaml, toml or json")

	return cmd
}
