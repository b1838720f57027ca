// Package pipeline runs the offline build: load extractor output, resolve
// references, analyze dependencies, assemble bundles, and write the full
// artifact layout through a single writer.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"appatlas/internal/artifact"
	"appatlas/internal/bundle"
	"appatlas/internal/deps"
	"appatlas/internal/loader"
	"appatlas/internal/object"
	"appatlas/internal/resolve"
)

// Options configures one pipeline run.
type Options struct {
	// Input is a directory (or single file) of extractor JSON records.
	Input string
	// Labels is an optional directory of .properties label files.
	Labels string
	// Locale picks the translation variant substituted into code.
	Locale string
	// SourceName labels the originating package in artifact metadata.
	SourceName string
	// SkipDeps disables dependency analysis and bundling; the search index,
	// overview, manifest, and orphan artifacts are still written.
	SkipDeps bool
	// Workers bounds concurrent bundle builds. Zero means GOMAXPROCS.
	Workers int
}

// Stats summarizes a completed run.
type Stats struct {
	Objects  int
	Edges    int
	Bundles  int
	Orphans  int
	Duration time.Duration
}

// Run executes the pipeline end to end.
func Run(ctx context.Context, w artifact.Writer, opts Options) (*Stats, error) {
	start := time.Now()

	records, err := loader.LoadRecords(opts.Input)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("pipeline: no records in %s", opts.Input)
	}
	labels, err := loader.LoadLabels(opts.Labels)
	if err != nil {
		return nil, err
	}
	store := object.NewStore(records)
	log.Printf("pipeline: loaded %d objects (%d label keys)", store.Len(), len(labels))

	locale := opts.Locale
	if locale == "" {
		locale = "en-US"
	}
	resolve.New(store, labels).ResolveAll(store, locale)

	var edges []deps.Edge
	if !opts.SkipDeps {
		edges = deps.Analyze(store)
		log.Printf("pipeline: %d dependency edges", len(edges))
	}

	res := &bundle.Result{Assignments: map[string][]string{}}
	if len(edges) > 0 {
		coord := &bundle.Coordinator{Workers: opts.Workers}
		res, err = coord.Build(ctx, store, edges, w)
		if err != nil {
			return nil, err
		}
	}

	if err := w.WriteJSON(ctx, artifact.SearchIndexPath, bundle.BuildSearchIndex(store, edges, res.Assignments)); err != nil {
		return nil, fmt.Errorf("pipeline: write search index: %w", err)
	}

	now := time.Now()
	info := bundle.PackageInfo{
		Filename:             opts.SourceName,
		TotalSourceFiles:     len(records),
		TotalParsedObjects:   store.Len(),
		ParseDurationSeconds: round2(now.Sub(start).Seconds()),
	}
	if err := w.WriteJSON(ctx, artifact.OverviewPath, bundle.BuildOverview(store, edges, res, info, now)); err != nil {
		return nil, fmt.Errorf("pipeline: write overview: %w", err)
	}
	if err := w.WriteJSON(ctx, artifact.ManifestPath, bundle.BuildManifest(store, info, now)); err != nil {
		return nil, fmt.Errorf("pipeline: write manifest: %w", err)
	}

	graph := deps.BuildGraph(edges)
	if len(edges) > 0 {
		if err := bundle.WriteObjectDetails(ctx, w, store, graph, res.Assignments); err != nil {
			return nil, err
		}
	}
	orphans := bundle.Orphans(store, res.Assignments)
	if len(orphans) > 0 {
		if err := bundle.WriteOrphans(ctx, w, orphans, graph); err != nil {
			return nil, err
		}
	}

	return &Stats{
		Objects:  store.Len(),
		Edges:    len(edges),
		Bundles:  len(res.Index),
		Orphans:  len(orphans),
		Duration: time.Since(start),
	}, nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
