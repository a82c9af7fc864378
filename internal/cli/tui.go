package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperkey/pkg/errors"
	"github.com/matzehuels/hyperkey/pkg/hyper"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command, an interactive layer viewer.
func (c *CLI) browseCommand() *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the layer tree interactively",
		Args:  cobra.NoArgs,
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
			if len(layers) == 0 {
				printInfo("No layers to browse")
				return nil
			}

			model := NewLayerBrowserModel(layers, pOpts.Rules.Hyper.Key)
			p := tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "run layer browser")
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// =============================================================================
// LayerBrowserModel - Interactive layer tree viewer
// =============================================================================

// LayerBrowserModel is the bubbletea model for browsing layers and their
// bindings. The left pane lists layers; the right pane shows the bindings
// of the layer under the cursor.
type LayerBrowserModel struct {
	Layers   []hyper.Layer
	HyperKey string
	Cursor   int // selected layer
	Binding  int // selected binding within the layer
	Focus    int // 0 = layers, 1 = bindings
	Height   int
	Offset   int // first visible binding
}

// NewLayerBrowserModel creates a new layer browser model.
func NewLayerBrowserModel(layers []hyper.Layer, hyperKey string) LayerBrowserModel {
	return LayerBrowserModel{
		Layers:   layers,
		HyperKey: hyperKey,
		Height:   15,
	}
}

func (m LayerBrowserModel) Init() tea.Cmd {
	return nil
}

func (m LayerBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l", "left", "h":
			if len(m.current().Bindings) > 0 || m.Focus == 1 {
				m.Focus = 1 - m.Focus
			}
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m *LayerBrowserModel) move(delta int) {
	if m.Focus == 0 {
		next := m.Cursor + delta
		if next < 0 || next >= len(m.Layers) {
			return
		}
		m.Cursor = next
		m.Binding, m.Offset = 0, 0
		return
	}

	next := m.Binding + delta
	if next < 0 || next >= len(m.current().Bindings) {
		return
	}
	m.Binding = next
	if m.Binding < m.Offset {
		m.Offset = m.Binding
	}
	if m.Binding >= m.Offset+m.Height {
		m.Offset = m.Binding - m.Height + 1
	}
}

func (m LayerBrowserModel) current() hyper.Layer {
	if m.Cursor < 0 || m.Cursor >= len(m.Layers) {
		return hyper.Layer{}
	}
	return m.Layers[m.Cursor]
}

func (m LayerBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Hyper Key Layers"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab switch pane  q quit"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.layerList(), "  ", m.bindingTable()))
	b.WriteString("\n\n")

	layer := m.current()
	if m.Focus == 1 && m.Binding < len(layer.Bindings) {
		bnd := layer.Bindings[m.Binding]
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s  %s", m.chord(layer.Key, bnd.Key), bnd.Action.Label())))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Layers))))
	}
	return b.String()
}

func (m LayerBrowserModel) layerList() string {
	var b strings.Builder
	for i, l := range m.Layers {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		name := l.Name
		if name == "" {
			name = "—"
		}
		line := fmt.Sprintf("%s%s  %s", cursor, l.Key, name)

		switch {
		case i == m.Cursor && m.Focus == 0:
			b.WriteString(listSelectedStyle.Render(line))
		case i == m.Cursor:
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m LayerBrowserModel) bindingTable() string {
	layer := m.current()
	if len(layer.Bindings) == 0 {
		return listDimStyle.Render("No bindings")
	}

	end := m.Offset + m.Height
	if end > len(layer.Bindings) {
		end = len(layer.Bindings)
	}
	rows := make([][]string, 0, end-m.Offset)
	for _, bnd := range layer.Bindings[m.Offset:end] {
		rows = append(rows, []string{m.chord(layer.Key, bnd.Key), bnd.Action.Label(), bnd.Action.Kind().String()})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Keys", "Action", "Kind").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if col == 2 {
				base = base.Foreground(colorDim)
			}
			if m.Focus == 1 && m.Offset+row == m.Binding {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})
	return t.Render()
}

func (m LayerBrowserModel) chord(layerKey, subKey string) string {
	return fmt.Sprintf("%s+%s+%s", hyper.KeySymbol(m.HyperKey), layerKey, subKey)
}
