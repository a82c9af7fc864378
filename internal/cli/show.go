package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperkey/pkg/karabiner"
)

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var (
		flags sourceFlags
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the generated rules as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pOpts, err := c.pipelineOptions(cmd, &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(true)
			if err != nil {
				return err
			}
			result, err := runner.Generate(cmd.Context(), pOpts)
			if err != nil {
				return err
			}

			rules := result.Config.Rules()
			fmt.Fprintln(stdout, StyleTitle.Render("Rules")+" "+StyleDim.Render("("+result.Source+")"))
			if all {
				fmt.Fprintln(stdout, indent(manipulatorTable(rules)))
			} else {
				fmt.Fprintln(stdout, indent(ruleTable(rules)))
			}
			printStats(result.Stats)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every manipulator")

	return cmd
}

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// ruleTable lists rules in output order with their manipulator counts.
func ruleTable(rules []karabiner.Rule) string {
	t := newTable("#", "Rule", "Manipulators")
	for i, r := range rules {
		t.Row(strconv.Itoa(i+1), r.Description, strconv.Itoa(len(r.Manipulators)))
	}
	return t.Render()
}

// manipulatorTable lists every manipulator with its trigger and action.
func manipulatorTable(rules []karabiner.Rule) string {
	t := newTable("#", "Rule", "From", "Action")
	for i, r := range rules {
		for _, m := range r.Manipulators {
			t.Row(strconv.Itoa(i+1), r.Description, fromLabel(m.From), actionLabel(m))
		}
	}
	return t.Render()
}

func fromLabel(f karabiner.From) string {
	if f.Modifiers == nil || len(f.Modifiers.Mandatory) == 0 {
		return f.KeyCode
	}
	return strings.Join(f.Modifiers.Mandatory, "+") + "+" + f.KeyCode
}

func actionLabel(m karabiner.Manipulator) string {
	if m.Description != "" {
		return m.Description
	}
	var parts []string
	for _, e := range m.To {
		switch {
		case e.ShellCommand != "":
			parts = append(parts, e.ShellCommand)
		case e.SetVariable != nil:
			parts = append(parts, fmt.Sprintf("%s=%d", e.SetVariable.Name, e.SetVariable.Value))
		case e.KeyCode != "":
			parts = append(parts, strings.Join(append(append([]string{}, e.Modifiers...), e.KeyCode), "+"))
		}
	}
	return strings.Join(parts, ", ")
}
