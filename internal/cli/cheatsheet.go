package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/render/cheatsheet"
)

// cheatsheetCommand creates the cheatsheet command.
func (c *CLI) cheatsheetCommand() *cobra.Command {
	var (
		flags    sourceFlags
		markdown bool
		plain    bool
		width    int
		title    string
		style    string
	)

	cmd := &cobra.Command{
		Use:     "cheatsheet",
		Aliases: []string{"cheat"},
		Short:   "Print a cheat sheet of every hyper key chord",
		Long: `Print a cheat sheet of every hyper key chord.

The sheet is rendered for the terminal; --markdown prints the raw markdown
for a README or notes app. Output is uncolored when stdout is not a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			layers, _, err := runner.LoadLayers(cmd.Context(), pOpts)
			if err != nil {
				return err
			}

			md := cheatsheet.Markdown(layers, cheatsheet.Options{
				Hyper:     pOpts.Rules.Hyper,
				DoubleTap: pOpts.Rules.DoubleTap,
				Title:     title,
			})
			if markdown {
				_, err := fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}

			st := cheatsheet.Style(strings.ToLower(style))
			switch st {
			case cheatsheet.StyleAuto, cheatsheet.StylePlain, cheatsheet.StyleDark, cheatsheet.StyleLight:
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown style %q (want auto, plain, dark or light)", style)
			}
			if plain || !isTerminal(os.Stdout) {
				st = cheatsheet.StylePlain
			}
			out, err := cheatsheet.Render(md, st, width)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print raw markdown")
	cmd.Flags().BoolVar(&plain, "plain", false, "render without colors")
	cmd.Flags().IntVar(&width, "width", 100, "wrap width (0 disables wrapping)")
	cmd.Flags().StringVar(&title, "title", "", "document heading")
	cmd.Flags().StringVar(&style, "style", string(cheatsheet.StyleAuto), "color style: auto, plain, dark or light")

	return cmd
}
