// Package cheatsheet renders a hyper layer tree as a markdown cheat sheet.
//
// [Markdown] builds the document; [Render] formats it for a terminal with
// glamour.
package cheatsheet

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/matzehuels/hyperkey/pkg/hyper"
)

// Options configures the generated document.
type Options struct {
	// Hyper describes the hyper key for the header.
	Hyper hyper.HyperKey
	// DoubleTap describes the double-tap latch for the header.
	DoubleTap hyper.DoubleTap
	// Title overrides the document heading.
	Title string
}

// DefaultTitle is the heading used when Options.Title is empty.
const DefaultTitle = "Hyper key cheat sheet"

// Markdown returns the cheat sheet for layers as GitHub-flavored markdown.
// Layers and bindings appear in declaration order.
func Markdown(layers []hyper.Layer, opts Options) string {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	hk := opts.Hyper
	if hk.Key == "" {
		hk = hyper.DefaultHyperKey()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Hold %s for hyper", code(hyper.KeySymbol(hk.Key)))
	alone := hk.Alone
	if alone == "" {
		alone = hk.Key
	}
	fmt.Fprintf(&b, "; tap it alone for %s.", code(hyper.KeySymbol(alone)))
	if hk.DisableCommandTab {
		b.WriteString(" ⌘-Tab is disabled.")
	}
	b.WriteString("\n")
	if dt := opts.DoubleTap; dt.Key != "" {
		fmt.Fprintf(&b, "Double-tap %s within %s for %s.\n", code(dt.Key), dt.Delay, code(dt.Emit))
	}

	for _, l := range layers {
		b.WriteString("\n## ")
		b.WriteString(code(l.Key))
		if l.Name != "" {
			b.WriteString(" ")
			b.WriteString(l.Name)
		}
		b.WriteString("\n\n")

		if len(l.Bindings) == 0 {
			b.WriteString("_No bindings._\n")
			continue
		}
		b.WriteString("| Keys | Action | Kind |\n")
		b.WriteString("|------|--------|------|\n")
		for _, bd := range l.Bindings {
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				code("hyper+"+l.Key+"+"+bd.Key), escapeCell(bd.Action.Label()), bd.Action.Kind())
		}
	}
	return b.String()
}

func code(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "'") + "`"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Style selects how [Render] formats markdown.
type Style string

// Render styles.
const (
	// StyleAuto picks dark or light from the terminal background.
	StyleAuto Style = "auto"
	// StylePlain produces uncolored output suitable for pipes and files.
	StylePlain Style = "plain"
	StyleDark  Style = "dark"
	StyleLight Style = "light"
)

// Render formats markdown for a terminal of the given width. A width of zero
// disables word wrapping.
func Render(markdown string, style Style, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch style {
	case StylePlain:
		opts = append(opts, glamour.WithStandardStyle("notty"), glamour.WithColorProfile(termenv.Ascii))
	case StyleDark, StyleLight:
		opts = append(opts, glamour.WithStandardStyle(string(style)))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
