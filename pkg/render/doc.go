// Package render turns hyper layer trees into human-facing documents.
//
// # Overview
//
//   - [nodelink]: Graphviz diagrams of the layer tree (DOT, SVG, PDF, PNG)
//   - [cheatsheet]: Markdown cheat sheets, rendered for the terminal with glamour
//
// # Format Conversion
//
// The graph command's PDF and PNG output comes from [ToPDF] and [ToPNG], which
// pipe the Graphviz SVG through rsvg-convert from librsvg.
//
//	dot := nodelink.ToDOT(layers, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/hyperkey/pkg/render/nodelink
// [cheatsheet]: github.com/matzehuels/hyperkey/pkg/render/cheatsheet
package render
