// Package nodelink renders room graphs as node-link diagrams.
//
// # Overview
//
// Nodes appear as rounded boxes and edges as lines between them. Edges with
// a fixed traversal direction get an arrow; edges that may be realised
// through an inserted room are dashed. The diagram is meant for checking a
// blueprint before generating, and for seeing how the generator will grow
// the layout.
//
// # Usage
//
// Draw the graph alone, or colour it by chain decomposition:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
//	chains, err := decompose.Chains(g, decompose.Options{})
//	dot = nodelink.ChainsDOT(g, chains, nodelink.Options{})
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Chains
//
// In a chain diagram every chain gets a colour from a fixed palette and
// every edge a label "chain.step", so the order in which the search places
// rooms can be read off the picture.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
