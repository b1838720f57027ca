package bundle

import (
	"time"

	"appatlas/internal/deps"
	"appatlas/internal/object"
)

const builderVersion = "2.0.0"

// Overview is the single-fetch application summary: package stats, object
// counts, the bundle index, dependency rankings, and bundle coverage.
type Overview struct {
	Metadata          OverviewMeta   `json:"_metadata"`
	PackageInfo       PackageInfo    `json:"package_info"`
	ObjectCounts      map[string]int `json:"object_counts"`
	Bundles           []IndexEntry   `json:"bundles"`
	DependencySummary deps.Summary   `json:"dependency_summary"`
	Coverage          Coverage       `json:"coverage"`
}

type OverviewMeta struct {
	BuilderVersion string `json:"builder_version"`
	GeneratedAt    string `json:"generated_at"`
	SourcePackage  string `json:"source_package"`
}

// PackageInfo describes the extracted package this application came from.
type PackageInfo struct {
	Filename             string  `json:"filename"`
	TotalSourceFiles     int     `json:"total_source_files"`
	TotalParsedObjects   int     `json:"total_parsed_objects"`
	TotalErrors          int     `json:"total_errors"`
	ParseDurationSeconds float64 `json:"parse_duration_seconds"`
}

// Coverage partitions the object population into bundled and orphaned.
type Coverage struct {
	TotalObjects int `json:"total_objects"`
	Bundled      int `json:"bundled"`
	Orphaned     int `json:"orphaned"`
}

const summaryRankLimit = 20

// BuildOverview assembles the overview from the pipeline's end state.
func BuildOverview(store *object.Store, edges []deps.Edge, res *Result, info PackageInfo, now time.Time) *Overview {
	bundled := 0
	for _, rec := range store.Records() {
		if len(res.Assignments[rec.UUID]) > 0 {
			bundled++
		}
	}
	return &Overview{
		Metadata: OverviewMeta{
			BuilderVersion: builderVersion,
			GeneratedAt:    now.UTC().Format(time.RFC3339),
			SourcePackage:  info.Filename,
		},
		PackageInfo:       info,
		ObjectCounts:      store.CountsByKind(),
		Bundles:           res.Index,
		DependencySummary: deps.Summarize(edges, summaryRankLimit),
		Coverage: Coverage{
			TotalObjects: store.Len(),
			Bundled:      bundled,
			Orphaned:     store.Len() - bundled,
		},
	}
}
