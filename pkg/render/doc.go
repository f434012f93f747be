// Package render turns layouts and room graphs into images.
//
// # Overview
//
// Rendering is split by output:
//
//   - [mapimage] draws one raster map per floor of a placed layout
//   - [nodelink] draws the room graph and its chain decomposition with
//     Graphviz
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Node-link diagrams use them
// for non-SVG output:
//
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// Floor maps are rasterised in process and need no external tools.
//
// [mapimage]: github.com/matzehuels/roomweaver/pkg/render/mapimage
// [nodelink]: github.com/matzehuels/roomweaver/pkg/render/nodelink
package render
