package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	"github.com/matzehuels/roomweaver/pkg/generator"
	"github.com/matzehuels/roomweaver/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output   string
	formats  string
	decay    float64
	backends backendFlags
	pipeline.Options
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{formats: "png,json"}

	cmd := &cobra.Command{
		Use:   "generate [blueprint]",
		Short: "Generate a room layout from a blueprint",
		Long: `Generate places every node and edge of the blueprint's graph as rooms.

Artifacts are written to the output directory: one floor-<z>.png per floor,
layout.json, and the chain diagram as chains.svg, chains.pdf or chains.dot.
With --count N, seeds seed..seed+N-1 are generated concurrently and each
accepted layout is written to its own seed-<n> subdirectory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(opts.formats)
			if cmd.Flags().Changed("decay") {
				opts.RebaseDecayRate = &opts.decay
			}
			return c.runGenerate(cmd.Context(), args[0], &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output directory (default: blueprint name)")
	f.StringVarP(&opts.formats, "format", "f", opts.formats, "output format(s): png, json, svg, pdf, dot (comma-separated)")
	f.Int64VarP(&opts.Seed, "seed", "s", 0, "random seed (default: blueprint seed)")
	f.IntVarP(&opts.Count, "count", "n", 1, "number of consecutive seeds to generate")
	f.IntVar(&opts.MaxRebases, "max-rebases", 0, "rebase allowance for the first chain")
	f.Float64Var(&opts.decay, "decay", 0, "rebase allowance decay rate")
	f.IntVar(&opts.MaxBranchLength, "max-branch-length", 0, "split longer branch chains")
	f.IntVar(&opts.MaxRestarts, "max-restarts", 0, "full restarts before giving up")
	f.IntVarP(&opts.Workers, "workers", "w", 0, "parallel workers (default: GOMAXPROCS)")
	f.BoolVar(&opts.SkipCollectable, "skip-collectables", false, "do not place collectables")
	f.BoolVar(&opts.Refresh, "refresh", false, "ignore cached layouts")
	f.IntSliceVar(&opts.Floors, "floors", nil, "floors to render (default: all)")
	f.IntVar(&opts.CellSize, "cell-size", pipeline.DefaultCellSize, "floor map cell size in pixels")
	f.BoolVar(&opts.Labels, "labels", false, "label rooms in floor maps and chain diagrams")
	opts.backends.bindCache(cmd)
	opts.backends.bindStore(cmd, "also save accepted layouts to a store")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, input string, opts *generateOpts) error {
	runner, err := c.newRunner(ctx, opts.backends, cliScope, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	bp, err := runner.Load(ctx, input)
	if err != nil {
		return err
	}
	if opts.output == "" {
		opts.output = strings.TrimSuffix(input, filepath.Ext(input))
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Preparing %s...", bp.Name))
	spinner.Start()
	job, err := runner.Prepare(ctx, bp, opts.Options)
	if err != nil {
		spinner.StopWithError("Invalid blueprint")
		return err
	}
	spinner.Stop()

	if opts.Count > 1 {
		return c.runBatch(ctx, runner, job, opts)
	}

	seed := job.Seed(opts.Options)
	spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Generating %s (seed %d)...", bp.Name, seed))
	spinner.Start()
	res, err := runner.ExecuteJob(ctx, job, seed, opts.Options)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	if res.State != generator.Accepted {
		spinner.StopWithError(fmt.Sprintf("No layout for seed %d", seed))
		return rwerrors.New(rwerrors.ErrCodeUnsatisfiable, "seed %d: %s", seed, res.Search.Reason)
	}
	spinner.StopWithSuccess(fmt.Sprintf("Generated %s", StyleHighlight.Render(bp.Name)))
	printStats(res.Stats, res.CacheInfo.LayoutHit)

	paths, err := writeArtifacts(opts.output, res.Artifacts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	if _, ok := res.Artifacts["layout.json"]; ok {
		printNewline()
		printNextStep("Browse it", fmt.Sprintf("%s inspect %s", appName, filepath.Join(opts.output, "layout.json")))
	}
	return nil
}

// runBatch generates every seed of the batch, then renders the accepted
// layouts into per-seed directories.
func (c *CLI) runBatch(ctx context.Context, runner *pipeline.Runner, job *pipeline.Job, opts *generateOpts) error {
	prog := newProgress(c.Logger)
	seeds := opts.Seeds(job.Seed(opts.Options))

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %d layouts...", len(seeds)))
	spinner.Start()
	results, err := runner.GenerateBatch(ctx, job, opts.Options)
	if err != nil {
		spinner.StopWithError("Batch failed")
		return err
	}

	accepted := 0
	for i, res := range results {
		if res.State != generator.Accepted {
			continue
		}
		spinner.Update(fmt.Sprintf("Rendering seed %d...", seeds[i]))
		artifacts, err := runner.Render(ctx, job, res.Layout, opts.Options)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		if _, err := writeArtifacts(filepath.Join(opts.output, "seed-"+strconv.FormatInt(seeds[i], 10)), artifacts); err != nil {
			spinner.StopWithError("Write failed")
			return err
		}
		accepted++
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Generated %d of %d layouts", accepted, len(results)))

	fmt.Println(batchTable(seeds, results))
	printFile(opts.output)
	if accepted == 0 {
		return rwerrors.New(rwerrors.ErrCodeUnsatisfiable, "no seed produced a layout")
	}
	return nil
}

func batchTable(seeds []int64, results []*pipeline.Result) string {
	rows := make([][]string, len(results))
	for i, res := range results {
		state := StyleSuccess.Render(res.State.String())
		if res.State != generator.Accepted {
			state = StyleWarning.Render(res.State.String())
		}
		cached := ""
		if res.CacheInfo.LayoutHit {
			cached = iconCached
		}
		rows[i] = []string{
			strconv.FormatInt(seeds[i], 10),
			state,
			strconv.Itoa(res.Stats.Rooms),
			strconv.Itoa(res.Stats.Floors),
			strconv.Itoa(res.Search.Restarts),
			cached,
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Seed", "State", "Rooms", "Floors", "Restarts", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

// writeArtifacts writes each artifact to dir and returns the paths in name
// order.
func writeArtifacts(dir string, artifacts map[string][]byte) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	slices.Sort(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], artifacts[name], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", paths[i], err)
		}
	}
	return paths, nil
}
