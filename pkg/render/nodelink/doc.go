// Package nodelink renders a hyper layer tree as a node-link diagram.
//
// # Overview
//
// The hyper key is the root, each layer hangs off it, and each binding is a
// leaf labelled with its sub-key and action. Leaves are colored by action
// kind: applications blue, window commands green, raw key events white.
//
// # Usage
//
// Convert layers to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(layers, nodelink.Options{HyperKey: "semicolon"})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
