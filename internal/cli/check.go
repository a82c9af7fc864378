package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperkey/pkg/errors"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		flags  sourceFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether karabiner.json matches the layer tree",
		Long: `Regenerate the configuration in memory and compare it with karabiner.json.

Exits with status 1 and lists the rules that differ when the file is out of
date, so it can guard a dotfiles commit hook.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pOpts, err := c.pipelineOptions(cmd, &flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				pOpts.Output = output
			}

			runner, err := c.newRunner(true)
			if err != nil {
				return err
			}
			check, err := runner.Check(cmd.Context(), pOpts)
			switch {
			case err == nil:
				printSuccess("%s is up to date", check.Path)
				printStats(check.Result.Stats)
				return nil
			case !errors.Is(err, errors.ErrCodeOutOfDate):
				return err
			}

			switch {
			case check.Missing:
				printWarning("%s does not exist", check.Path)
			case len(check.Changes) == 0:
				printWarning("%s differs outside its rules (profile, menu bar or formatting)", check.Path)
			default:
				printWarning("%s is out of date", check.Path)
				printChanges(check.Changes)
			}
			printNewline()
			printNextStep("Update it with", "hyperkey generate")
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "karabiner.json path; overrides the config")

	return cmd
}
