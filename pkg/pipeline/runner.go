package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/roomweaver/pkg/cache"
	"github.com/matzehuels/roomweaver/pkg/collectable"
	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	"github.com/matzehuels/roomweaver/pkg/generator"
	pio "github.com/matzehuels/roomweaver/pkg/io"
	"github.com/matzehuels/roomweaver/pkg/layout"
	"github.com/matzehuels/roomweaver/pkg/observability"
	"github.com/matzehuels/roomweaver/pkg/store"
)

// Runner encapsulates pipeline execution with caching and storage.
// Both CLI and API use it to avoid duplicating that logic.
//
// The Runner keeps no per-run state, so multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store // optional; accepted layouts are saved when set
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Job is a blueprint prepared for generation. It is read-only and may be
// shared by concurrent Generate calls.
type Job struct {
	Blueprint *pio.Blueprint
	Model     *pio.Model
	Hash      string
	Search    generator.Options
	Generator *generator.Generator
}

// Seed picks the seed for a run: the option, else the blueprint's, else
// DefaultSeed.
func (j *Job) Seed(opts Options) int64 {
	switch {
	case opts.Seed != 0:
		return opts.Seed
	case j.Model.Seed != 0:
		return j.Model.Seed
	}
	return DefaultSeed
}

// Load reads a blueprint file.
func (r *Runner) Load(ctx context.Context, path string) (*pio.Blueprint, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()

	bp, err := pio.Load(path)
	if err != nil {
		hooks.OnLoadComplete(ctx, path, 0, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnLoadComplete(ctx, path, len(bp.Nodes), len(bp.Shapes), time.Since(start), nil)
	r.Logger.Debug("loaded blueprint", "path", path, "name", bp.Name, "nodes", len(bp.Nodes), "shapes", len(bp.Shapes))
	return bp, nil
}

// Prepare resolves a blueprint, precomputes configuration spaces and
// decomposes the graph.
func (r *Runner) Prepare(ctx context.Context, bp *pio.Blueprint, opts Options) (*Job, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, err
	}

	model, err := bp.Build()
	if err != nil {
		return nil, err
	}
	canonical, err := bp.Canonical()
	if err != nil {
		return nil, rwerrors.Wrap(rwerrors.ErrCodeInternal, err, "hash blueprint")
	}

	start := time.Now()
	table, err := model.Catalog.Precompute(ctx, opts.Workers)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("precomputed configuration spaces",
		"shapes", model.Catalog.Len(),
		"duration", time.Since(start))

	search := opts.Search(model.Options)
	gen, err := generator.New(model.Graph, model.Catalog, table, search)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("decomposed graph", "chains", len(gen.Chains()))

	return &Job{
		Blueprint: bp,
		Model:     model,
		Hash:      cache.Hash(canonical),
		Search:    gen.Options(),
		Generator: gen,
	}, nil
}

// Generate produces the layout for one seed, from cache when possible. A
// search that fails is reported through Result.State, not as an error.
func (r *Runner) Generate(ctx context.Context, job *Job, seed int64, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, job.Model.Name, seed)
	start := time.Now()
	result, err := r.generate(ctx, job, seed, opts)
	rooms := 0
	if result != nil && result.Layout != nil {
		rooms = result.Layout.RoomCount()
	}
	hooks.OnGenerateComplete(ctx, job.Model.Name, seed, rooms, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	result.Stats.GenerateTime = time.Since(start)
	return result, nil
}

func (r *Runner) generate(ctx context.Context, job *Job, seed int64, opts Options) (*Result, error) {
	key := r.Keyer.LayoutKey(job.Hash, opts.LayoutKeyOpts(job.Search, seed))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if l, err := pio.ReadLayout(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				res := accepted(l)
				res.Search = generator.Result{State: generator.Accepted, Seed: seed}
				res.Assignments = collectable.Assignments(l)
				res.CacheInfo.LayoutHit = true
				return res, nil
			}
			// Unreadable entries fall through to a fresh search.
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	sr, err := job.Generator.Run(ctx, seed)
	if err != nil {
		return nil, err
	}
	if sr.State != generator.Accepted {
		return &Result{State: sr.State, Search: sr}, nil
	}

	res := accepted(sr.Layout)
	res.Search = sr
	if !opts.SkipCollectable && len(job.Model.Collectables) > 0 {
		placed, err := collectable.Place(sr.Layout, job.Model.Collectables, sr.Random, job.Model.CollectableOptions)
		if err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeInvalidCatalog, err, "place collectables")
		}
		res.Assignments = placed
	}

	var buf bytes.Buffer
	if err := pio.WriteLayout(&buf, sr.Layout); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.LayoutTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", buf.Len())
		} else {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return res, nil
}

func accepted(l *layout.Layout) *Result {
	return &Result{
		State:  generator.Accepted,
		Layout: l,
		Stats: Stats{
			Rooms:       l.RoomCount(),
			Connections: l.ConnectionCount(),
			Floors:      len(l.Floors()),
		},
	}
}

// Save stores an accepted layout when the runner has a store.
func (r *Runner) Save(ctx context.Context, l *layout.Layout) error {
	if r.Store == nil || l == nil {
		return nil
	}
	start := time.Now()
	err := r.Store.Save(ctx, l)
	observability.Store().OnSave(ctx, fmt.Sprintf("%T", r.Store), l.ID, l.RoomCount(), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	r.Logger.Debug("stored layout", "id", l.ID)
	return nil
}

// Fetch loads a stored layout by ID. Missing layouts wrap [store.ErrNotFound].
func (r *Runner) Fetch(ctx context.Context, id string) (*layout.Layout, error) {
	if r.Store == nil {
		return nil, rwerrors.New(rwerrors.ErrCodeInvalidInput, "layout ID %s needs a store", id)
	}
	start := time.Now()
	l, err := r.Store.Load(ctx, id)
	observability.Store().OnLoad(ctx, fmt.Sprintf("%T", r.Store), id, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return l, nil
}

// Delete removes a stored layout by ID.
func (r *Runner) Delete(ctx context.Context, id string) error {
	if r.Store == nil {
		return rwerrors.New(rwerrors.ErrCodeInvalidInput, "layout ID %s needs a store", id)
	}
	err := r.Store.Delete(ctx, id)
	observability.Store().OnDelete(ctx, fmt.Sprintf("%T", r.Store), id, err)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	r.Logger.Debug("deleted layout", "id", id)
	return nil
}

// Execute runs prepare, generate, store and render for one seed.
func (r *Runner) Execute(ctx context.Context, bp *pio.Blueprint, opts Options) (*Result, error) {
	job, err := r.Prepare(ctx, bp, opts)
	if err != nil {
		return nil, err
	}
	return r.ExecuteJob(ctx, job, job.Seed(opts), opts)
}

// ExecuteJob runs generate, store and render for a prepared job.
func (r *Runner) ExecuteJob(ctx context.Context, job *Job, seed int64, opts Options) (*Result, error) {
	res, err := r.Generate(ctx, job, seed, opts)
	if err != nil {
		return nil, err
	}
	if res.State != generator.Accepted {
		r.Logger.Warn("search failed", "seed", seed, "reason", res.Search.Reason)
		return res, nil
	}
	r.Logger.Info("generated layout",
		"seed", seed,
		"rooms", res.Stats.Rooms,
		"floors", res.Stats.Floors,
		"cached", res.CacheInfo.LayoutHit,
		"duration", res.Stats.GenerateTime)

	if err := r.Save(ctx, res.Layout); err != nil {
		return nil, err
	}

	start := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, job, res.Layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(start)
	res.CacheInfo.RenderHit = hit
	return res, nil
}

// GenerateBatch generates one layout per seed of opts.Seeds concurrently,
// without rendering. Results are in seed order. Accepted layouts are
// stored when the runner has a store.
func (r *Runner) GenerateBatch(ctx context.Context, job *Job, opts Options) ([]*Result, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, err
	}
	seeds := opts.Seeds(job.Seed(opts))
	results := make([]*Result, len(seeds))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, seed := range seeds {
		g.Go(func() error {
			res, err := r.Generate(gctx, job, seed, opts)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			if res.State == generator.Accepted {
				if err := r.Save(gctx, res.Layout); err != nil {
					return err
				}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(); err == nil {
			err = serr
		}
	}
	return err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
