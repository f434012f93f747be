package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/roomweaver/pkg/cache"
	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	pio "github.com/matzehuels/roomweaver/pkg/io"
	"github.com/matzehuels/roomweaver/pkg/layout"
	"github.com/matzehuels/roomweaver/pkg/observability"
	"github.com/matzehuels/roomweaver/pkg/render/mapimage"
	"github.com/matzehuels/roomweaver/pkg/render/nodelink"
)

// artifact is one output to produce.
type artifact struct {
	name   string
	kind   string
	format string
	floor  int
	render func() ([]byte, error)
}

// plan lists the artifacts opts asks for. The chain diagram formats need a
// job; without one they are skipped.
func plan(job *Job, l *layout.Layout, opts Options) []artifact {
	var out []artifact
	var dot string
	chainDOT := func() string {
		if dot == "" {
			dot = nodelink.ChainsDOT(job.Model.Graph, job.Generator.Chains(), nodelink.Options{Detailed: opts.Labels})
		}
		return dot
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatPNG:
			for _, z := range l.Floors() {
				if !opts.wantsFloor(z) {
					continue
				}
				out = append(out, artifact{
					name: FloorArtifact(z), kind: "floor", format: format, floor: z,
					render: func() ([]byte, error) { return renderFloor(l, z, opts) },
				})
			}
		case FormatSVG, FormatPDF, FormatDOT:
			if job == nil {
				continue
			}
			out = append(out, artifact{
				name: "chains." + format, kind: "chains", format: format,
				render: func() ([]byte, error) {
					switch format {
					case FormatSVG:
						return nodelink.RenderSVG(chainDOT())
					case FormatPDF:
						return nodelink.RenderPDF(chainDOT())
					}
					return []byte(chainDOT()), nil
				},
			})
		case FormatJSON:
			out = append(out, artifact{
				name: "layout.json", kind: "layout", format: format,
				render: func() ([]byte, error) {
					var buf bytes.Buffer
					err := pio.WriteLayout(&buf, l)
					return buf.Bytes(), err
				},
			})
		}
	}
	return out
}

func renderFloor(l *layout.Layout, z int, opts Options) ([]byte, error) {
	return mapimage.RenderPNG(l, z,
		mapimage.WithCellSize(opts.CellSize),
		mapimage.WithLabels(opts.Labels))
}

// RenderWithCacheInfo renders the artifacts opts asks for and reports
// whether all of them came from cache. job may be nil for a layout loaded
// from a store; chain diagrams are then skipped.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, job *Job, l *layout.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts := make(map[string][]byte)
	allCached := true
	for _, a := range plan(job, l, opts) {
		key := r.Keyer.ArtifactKey(l.ID, opts.ArtifactKeyOpts(a.kind, a.format, a.floor))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[a.name] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		allCached = false

		data, err := a.render()
		if err != nil {
			err = fmt.Errorf("render %s: %w", a.name, err)
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, false, err
		}
		artifacts[a.name] = data
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)

	r.Logger.Debug("rendered outputs",
		"artifacts", len(artifacts),
		"cached", allCached,
		"duration", time.Since(start))
	return artifacts, allCached, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, job *Job, l *layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, job, l, opts)
	return artifacts, err
}

// RenderFloor renders the PNG map of one floor.
func (r *Runner) RenderFloor(ctx context.Context, l *layout.Layout, z int, opts Options) ([]byte, error) {
	opts.Formats = []string{FormatPNG}
	opts.Floors = []int{z}
	artifacts, err := r.Render(ctx, nil, l, opts)
	if err != nil {
		return nil, err
	}
	data, ok := artifacts[FloorArtifact(z)]
	if !ok {
		return nil, rwerrors.New(rwerrors.ErrCodeNotFound, "floor %d has no rooms", z)
	}
	return data, nil
}
