package cmd

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"appatlas/internal/artifact"
	"appatlas/internal/pipeline"
)

var buildFlags struct {
	input   string
	labels  string
	out     string
	app     string
	source  string
	locale  string
	noDeps  bool
	compact bool
	workers int
	useSQL  bool
	useS3   bool
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the pipeline and write the artifact layout",
	Long: `Build reads extractor output (JSON object records plus optional label
properties files), resolves references, analyzes dependencies, assembles
bundles, and writes every artifact.

The destination is a local directory by default. With --sql the artifacts
go to the database named by ATLAS_SQL_DSN; with --s3 they go to the
bucket configured by the ATLAS_S3_* variables. Both remote backends
require --app to name the application.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := buildWriter()
		if err != nil {
			return err
		}

		locale := buildFlags.locale
		if locale == "" {
			locale = cfg.Locale
		}
		source := buildFlags.source
		if source == "" {
			source = filepath.Base(buildFlags.input)
		}

		stats, err := pipeline.Run(cmd.Context(), w, pipeline.Options{
			Input:      buildFlags.input,
			Labels:     buildFlags.labels,
			Locale:     locale,
			SourceName: source,
			SkipDeps:   buildFlags.noDeps,
			Workers:    buildFlags.workers,
		})
		if err != nil {
			return err
		}
		log.Printf("build: %d objects, %d edges, %d bundles, %d orphans in %s",
			stats.Objects, stats.Edges, stats.Bundles, stats.Orphans, stats.Duration.Round(10*time.Millisecond))
		return nil
	},
}

func buildWriter() (artifact.Writer, error) {
	pretty := !buildFlags.compact
	switch {
	case buildFlags.useSQL:
		if buildFlags.app == "" {
			return nil, fmt.Errorf("--sql requires --app")
		}
		store, err := artifact.OpenSQL(cfg.SQLDSN)
		if err != nil {
			return nil, err
		}
		return store.ForApp(buildFlags.app, pretty), nil
	case buildFlags.useS3:
		if buildFlags.app == "" {
			return nil, fmt.Errorf("--s3 requires --app")
		}
		store, err := artifact.NewS3Store(cfg.S3)
		if err != nil {
			return nil, err
		}
		return store.ForApp(buildFlags.app, pretty), nil
	default:
		if buildFlags.out == "" {
			return nil, fmt.Errorf("--out is required without --sql or --s3")
		}
		return artifact.NewLocalWriter(buildFlags.out, pretty)
	}
}

func init() {
	buildCmd.Flags().StringVarP(&buildFlags.input, "input", "i", "", "extractor output: directory or JSON file of object records")
	buildCmd.Flags().StringVar(&buildFlags.labels, "labels", "", "directory of .properties label bundle files")
	buildCmd.Flags().StringVarP(&buildFlags.out, "out", "o", "", "output directory for the artifact layout")
	buildCmd.Flags().StringVar(&buildFlags.app, "app", "", "application name (required for --sql and --s3)")
	buildCmd.Flags().StringVar(&buildFlags.source, "source", "", "source package label for artifact metadata")
	buildCmd.Flags().StringVar(&buildFlags.locale, "locale", "", "locale for translation resolution (default en-US)")
	buildCmd.Flags().BoolVar(&buildFlags.noDeps, "no-deps", false, "skip dependency analysis and bundling")
	buildCmd.Flags().BoolVar(&buildFlags.compact, "compact", false, "disable pretty-printed artifacts")
	buildCmd.Flags().IntVar(&buildFlags.workers, "workers", 0, "concurrent bundle builds (default GOMAXPROCS)")
	buildCmd.Flags().BoolVar(&buildFlags.useSQL, "sql", false, "write artifacts to the SQL store (ATLAS_SQL_DSN)")
	buildCmd.Flags().BoolVar(&buildFlags.useS3, "s3", false, "write artifacts to the S3 bucket (ATLAS_S3_*)")
	_ = buildCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(buildCmd)
}
