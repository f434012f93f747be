package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roomweaver/pkg/graph/decompose"
	"github.com/matzehuels/roomweaver/pkg/pipeline"
	"github.com/matzehuels/roomweaver/pkg/render/nodelink"
)

// chainsCommand creates the chains command, which shows how a blueprint's
// graph decomposes into the cycles and branches the generator places in
// order.
func (c *CLI) chainsCommand() *cobra.Command {
	var (
		output          string
		detailed        bool
		plain           bool
		maxBranchLength int
	)

	cmd := &cobra.Command{
		Use:   "chains [blueprint]",
		Short: "Show the chain decomposition of a blueprint's graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runChains(cmd.Context(), args[0], output, nodelink.Options{Detailed: detailed}, plain, maxBranchLength)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the chain diagram (.svg, .pdf, .png or .dot)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show floor, group and tags in the diagram")
	cmd.Flags().BoolVar(&plain, "plain", false, "draw the graph without chain colouring")
	cmd.Flags().IntVar(&maxBranchLength, "max-branch-length", 0, "split longer branch chains")

	return cmd
}

func (c *CLI) runChains(ctx context.Context, input, output string, diagram nodelink.Options, plain bool, maxBranchLength int) error {
	runner := c.newBareRunner()
	bp, err := runner.Load(ctx, input)
	if err != nil {
		return err
	}
	job, err := runner.Prepare(ctx, bp, pipeline.Options{MaxBranchLength: maxBranchLength})
	if err != nil {
		return err
	}

	d := job.Generator.Decomposition()
	printSuccess("%s: %s cycles, %s branches, %s chains",
		StyleHighlight.Render(bp.Name),
		StyleNumber.Render(strconv.Itoa(len(d.Cycles))),
		StyleNumber.Render(strconv.Itoa(len(d.Branches))),
		StyleNumber.Render(strconv.Itoa(len(d.Chains))))
	for i, ch := range d.Chains {
		printKeyValue(fmt.Sprintf("%d %s", i, chainKind(ch)), formatChain(ch))
	}

	if output == "" {
		return nil
	}
	dot := nodelink.ChainsDOT(job.Model.Graph, d.Chains, diagram)
	if plain {
		dot = nodelink.ToDOT(job.Model.Graph, diagram)
	}
	data, err := renderDOT(dot, output)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printFile(output)
	return nil
}

// newBareRunner returns a runner without cache or store, for commands that
// only need loading and preparation.
func (c *CLI) newBareRunner() *pipeline.Runner {
	return pipeline.NewRunner(nil, nil, c.Logger)
}

func chainKind(ch decompose.Chain) string {
	if ch.Cyclic {
		return "cycle"
	}
	return "branch"
}

// formatChain renders a chain as its node walk, e.g. "1 → 2 → 3 → 1".
func formatChain(ch decompose.Chain) string {
	nodes := ch.Nodes()
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " "+iconArrow+" ")
}

// renderDOT converts DOT source to the format named by path's extension.
func renderDOT(dot, path string) ([]byte, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case pipeline.FormatDOT:
		return []byte(dot), nil
	case pipeline.FormatSVG:
		return nodelink.RenderSVG(dot)
	case pipeline.FormatPDF:
		return nodelink.RenderPDF(dot)
	case pipeline.FormatPNG:
		return nodelink.RenderPNG(dot, 2)
	default:
		return nil, fmt.Errorf("unsupported diagram format %q (use .svg, .pdf, .png or .dot)", ext)
	}
}
