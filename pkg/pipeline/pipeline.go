// Package pipeline provides the generation pipeline shared by the roomweaver
// CLI and HTTP API.
//
// # Architecture
//
// The pipeline runs these stages:
//
//  1. Load: read a blueprint file (TOML, YAML or JSON)
//  2. Prepare: resolve the blueprint, precompute configuration spaces and
//     decompose the graph into chains
//  3. Generate: run the backtracking search for a seed, then place
//     collectables with the same random stream
//  4. Store: persist the accepted layout (optional)
//  5. Render: floor maps, graph diagrams and layout JSON
//
// Generated layouts and rendered artifacts are cached by content key, so a
// repeated run of the same blueprint, seed and tunables skips the search.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	bp, err := runner.Load(ctx, "keep.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx, bp, pipeline.Options{Formats: []string{"png"}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.State != generator.Accepted {
//	    log.Fatal(result.Search.Reason)
//	}
//	png := result.Artifacts["floor-0.png"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roomweaver/pkg/cache"
	"github.com/matzehuels/roomweaver/pkg/collectable"
	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	"github.com/matzehuels/roomweaver/pkg/generator"
	"github.com/matzehuels/roomweaver/pkg/layout"
	"github.com/matzehuels/roomweaver/pkg/render/mapimage"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed is used when neither the options nor the blueprint set one.
	DefaultSeed = int64(42)

	// DefaultCellSize is the floor map cell size in pixels.
	DefaultCellSize = mapimage.DefaultCellSize

	// MaxBatch bounds the number of seeds one batch may run.
	MaxBatch = 1000
)

// Format constants for output formats.
const (
	FormatPNG  = "png"  // one floor map per floor
	FormatSVG  = "svg"  // chain diagram
	FormatPDF  = "pdf"  // chain diagram
	FormatDOT  = "dot"  // chain diagram source
	FormatJSON = "json" // layout document
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatSVG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. Zero-valued search fields keep the
// blueprint's own settings. This struct supports JSON serialization for API
// requests.
type Options struct {
	// Generate options
	Seed            int64    `json:"seed,omitempty"`
	Count           int      `json:"count,omitempty"` // seeds Seed..Seed+Count-1 in a batch
	MaxRebases      int      `json:"max_rebases,omitempty"`
	RebaseDecayRate *float64 `json:"rebase_decay_rate,omitempty"`
	MaxBranchLength int      `json:"max_branch_length,omitempty"`
	MaxRestarts     int      `json:"max_restarts,omitempty"`
	Workers         int      `json:"workers,omitempty"`
	SkipCollectable bool     `json:"skip_collectables,omitempty"`
	Refresh         bool     `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Floors   []int    `json:"floors,omitempty"` // empty renders every floor
	CellSize int      `json:"cell_size,omitempty"`
	Labels   bool     `json:"labels,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run for one seed.
type Result struct {
	// State is the search outcome. Artifacts are only rendered for
	// accepted layouts.
	State generator.State

	// Search holds the generator's counters. It is zero on a cache hit
	// apart from State and Seed.
	Search generator.Result

	// Layout is the accepted layout, nil otherwise.
	Layout *layout.Layout

	// Assignments lists the placed collectables.
	Assignments []collectable.Assignment

	// Artifacts contains rendered outputs keyed by file name, such as
	// "floor-0.png" or "chains.svg".
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rooms        int
	Connections  int
	Floors       int
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return rwerrors.New(rwerrors.ErrCodeInvalidOptions, "invalid format: %q (must be one of: png, svg, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetGenerateDefaults fills defaults for the generate stage.
func (o *Options) SetGenerateDefaults() {
	if o.Count == 0 {
		o.Count = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForGenerate validates and sets defaults for generation.
func (o *Options) ValidateForGenerate() error {
	o.SetGenerateDefaults()
	switch {
	case o.Count < 0 || o.Count > MaxBatch:
		return rwerrors.New(rwerrors.ErrCodeInvalidOptions, "count must be between 1 and %d", MaxBatch)
	case o.MaxRebases < 0:
		return rwerrors.New(rwerrors.ErrCodeInvalidOptions, "max_rebases must be >= 1")
	case o.RebaseDecayRate != nil && *o.RebaseDecayRate < 0:
		return rwerrors.New(rwerrors.ErrCodeInvalidOptions, "rebase_decay_rate must be >= 0")
	case o.MaxRestarts < 0:
		return rwerrors.New(rwerrors.ErrCodeInvalidOptions, "max_restarts must be >= 0")
	case o.Workers < 0:
		return rwerrors.New(rwerrors.ErrCodeInvalidOptions, "workers must be >= 0")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.CellSize == 0 {
		o.CellSize = DefaultCellSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.CellSize < 0 {
		return rwerrors.New(rwerrors.ErrCodeInvalidOptions, "cell_size must be positive")
	}
	return ValidateFormats(o.Formats)
}

// Search overlays the non-zero search options on base.
func (o *Options) Search(base generator.Options) generator.Options {
	if o.MaxRebases > 0 {
		base.MaxRebases = o.MaxRebases
	}
	if o.RebaseDecayRate != nil {
		base.RebaseDecayRate = *o.RebaseDecayRate
	}
	if o.MaxBranchLength != 0 {
		base.MaxBranchLength = o.MaxBranchLength
	}
	if o.MaxRestarts > 0 {
		base.MaxRestarts = o.MaxRestarts
	}
	base.Logger = o.Logger
	return base
}

// Seeds returns the seeds of a batch run starting at first.
func (o *Options) Seeds(first int64) []int64 {
	n := max(o.Count, 1)
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = first + int64(i)
	}
	return seeds
}

// LayoutKeyOpts returns cache key options for a generated layout.
func (o *Options) LayoutKeyOpts(search generator.Options, seed int64) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Seed:            seed,
		MaxRebases:      search.MaxRebases,
		RebaseDecayRate: search.RebaseDecayRate,
		MaxBranchLength: search.MaxBranchLength,
		MaxRestarts:     search.MaxRestarts,
		Collectables:    !o.SkipCollectable,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered artifact.
func (o *Options) ArtifactKeyOpts(kind, format string, floor int) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Kind:     kind,
		Floor:    floor,
		Format:   format,
		CellSize: o.CellSize,
		Labels:   o.Labels,
	}
}

// wantsFloor reports whether floor z should be rendered.
func (o *Options) wantsFloor(z int) bool {
	return len(o.Floors) == 0 || slices.Contains(o.Floors, z)
}

// FloorArtifact names the PNG artifact of floor z.
func FloorArtifact(z int) string {
	return fmt.Sprintf("floor-%d.png", z)
}
