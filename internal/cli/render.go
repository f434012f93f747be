package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	pio "github.com/matzehuels/roomweaver/pkg/io"
	"github.com/matzehuels/roomweaver/pkg/layout"
	"github.com/matzehuels/roomweaver/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string
	formats  string
	backends backendFlags
	pipeline.Options
}

// renderCommand creates the render command, which draws an existing layout
// without searching again.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{formats: pipeline.FormatPNG}

	cmd := &cobra.Command{
		Use:   "render [layout.json | layout-id]",
		Short: "Render floor maps of a generated layout",
		Long: `Render draws the floor maps of a layout exported as JSON or saved in a
store (pass its ID together with --store, or rely on the default store).

Chain diagrams need the blueprint, so only png and json apply here.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(opts.formats)
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output directory (default: next to the input)")
	f.StringVarP(&opts.formats, "format", "f", opts.formats, "output format(s): png, json (comma-separated)")
	f.IntSliceVar(&opts.Floors, "floors", nil, "floors to render (default: all)")
	f.IntVar(&opts.CellSize, "cell-size", pipeline.DefaultCellSize, "cell size in pixels")
	f.BoolVar(&opts.Labels, "labels", false, "label rooms")
	opts.backends.bindCache(cmd)
	opts.backends.bindStore(cmd, "store to load layout IDs from")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	for _, f := range opts.Formats {
		if f != pipeline.FormatPNG && f != pipeline.FormatJSON {
			return rwerrors.New(rwerrors.ErrCodeInvalidOptions, "render supports png and json, not %q", f)
		}
	}
	runner, err := c.newRunner(ctx, opts.backends, cliScope, isLayoutID(input))
	if err != nil {
		return err
	}
	defer runner.Close()

	l, err := loadLayout(ctx, runner, input)
	if err != nil {
		return err
	}
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, nil, l, opts.Options)
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		printWarning("Nothing to render for floors %v", opts.Floors)
		return nil
	}

	dir := opts.output
	if dir == "" {
		dir = strings.TrimSuffix(input, filepath.Ext(input))
		if isLayoutID(input) {
			dir = l.Name + "-" + l.ID[:8]
		}
	}
	paths, err := writeArtifacts(dir, artifacts)
	if err != nil {
		return err
	}
	printSuccess("Rendered %s", StyleHighlight.Render(l.Name))
	printStats(pipeline.Stats{Rooms: l.RoomCount(), Connections: l.ConnectionCount(), Floors: len(l.Floors())}, hit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// isLayoutID reports whether arg names a stored layout rather than a file.
func isLayoutID(arg string) bool {
	return rwerrors.ValidateLayoutID(arg) == nil
}

// loadLayout reads a layout from a JSON file, or from the runner's store
// when arg is a layout ID.
func loadLayout(ctx context.Context, runner *pipeline.Runner, arg string) (*layout.Layout, error) {
	if !isLayoutID(arg) {
		return pio.ImportLayout(arg)
	}
	return runner.Fetch(ctx, arg)
}
