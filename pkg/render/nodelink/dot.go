package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/hyperkey/pkg/hyper"
	"github.com/matzehuels/hyperkey/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// HyperKey is the key_code shown on the root node. Empty means semicolon.
	HyperKey string

	// Detailed adds the action kind and the resolved shell command or key
	// events to binding labels. When false, only the sub-key and a short
	// label are shown.
	Detailed bool
}

var kindFill = map[hyper.Kind]string{
	hyper.KindApp:         "\"#dbeafe\"",
	hyper.KindWindow:      "\"#dcfce7\"",
	hyper.KindManipulator: "white",
}

// ToDOT converts a layer tree to Graphviz DOT format: the hyper key at the
// root, one node per layer, one leaf per binding. Nodes and edges follow
// declaration order so the output is stable.
func ToDOT(layers []hyper.Layer, opts Options) string {
	key := opts.HyperKey
	if key == "" {
		key = hyper.DefaultHyperKey().Key
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.15;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse, fillcolor=%q];\n", "hyper", "hyper "+hyper.KeySymbol(key), "#fde68a")

	for _, l := range layers {
		id := layerID(l)
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n", id, layerLabel(l), "#f3f4f6")
		for _, b := range l.Bindings {
			fmt.Fprintf(&buf, "  %q [%s];\n", bindingID(l, b), strings.Join(fmtAttrs(b, opts.Detailed), ", "))
		}
	}

	buf.WriteString("\n")
	for _, l := range layers {
		fmt.Fprintf(&buf, "  %q -> %q;\n", "hyper", layerID(l))
		for _, b := range l.Bindings {
			fmt.Fprintf(&buf, "  %q -> %q;\n", layerID(l), bindingID(l, b))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func layerID(l hyper.Layer) string { return "layer:" + l.Key }

func bindingID(l hyper.Layer, b hyper.Binding) string { return l.Key + "/" + b.Key }

func layerLabel(l hyper.Layer) string {
	if l.Name == "" {
		return l.Key
	}
	return l.Key + "\n" + l.Name
}

func fmtLabel(b hyper.Binding, detailed bool) string {
	label := b.Key + ": " + b.Action.Label()
	if !detailed {
		return label
	}
	parts := []string{label, "kind: " + b.Action.Kind().String()}
	if k := b.Action.Kind(); k == hyper.KindApp || k == hyper.KindWindow {
		m := b.Action.Resolve()
		if len(m.To) > 0 && m.To[0].ShellCommand != "" {
			parts = append(parts, m.To[0].ShellCommand)
		}
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(b hyper.Binding, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(b, detailed))}
	if fill, ok := kindFill[b.Action.Kind()]; ok {
		attrs = append(attrs, "fillcolor="+fill)
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
