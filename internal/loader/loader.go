// Package loader reads the upstream extractor's output: JSON object records
// and optional label bundle properties files. This is the boundary with
// extraction; nothing in here understands package formats.
package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"appatlas/internal/object"
	"appatlas/internal/resolve"
)

// LoadRecords reads object records from path. A directory is scanned
// recursively for .json files in sorted order; a file is decoded directly.
// Each file may hold a single record or an array of records. Records missing
// a UUID are skipped with a log line, never an error.
func LoadRecords(path string) ([]*object.Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	if !info.IsDir() {
		return loadRecordFile(path)
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: scan %s: %w", path, err)
	}
	sort.Strings(files)

	var records []*object.Record
	for _, f := range files {
		recs, err := loadRecordFile(f)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func loadRecordFile(path string) ([]*object.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}

	var records []*object.Record
	if err := json.Unmarshal(data, &records); err != nil {
		var single object.Record
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("loader: decode %s: %w", path, err)
		}
		records = []*object.Record{&single}
	}

	kept := records[:0]
	for _, r := range records {
		if r == nil || r.UUID == "" {
			log.Printf("loader: skipping record without uuid in %s", path)
			continue
		}
		if r.Kind == "" {
			r.Kind = object.KindUnknown
		}
		if r.SourceFile == "" {
			r.SourceFile = filepath.Base(path)
		}
		kept = append(kept, r)
	}
	return kept, nil
}

// LoadLabels parses every .properties file under dir into a single label
// lookup. The first file to define a key wins; a missing or empty dir yields
// an empty lookup.
func LoadLabels(dir string) (map[string]string, error) {
	if dir == "" {
		return map[string]string{}, nil
	}
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".properties") {
			files = append(files, p)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loader: scan labels %s: %w", dir, err)
	}
	sort.Strings(files)

	readers := make([]io.Reader, 0, len(files))
	var open []*os.File
	defer func() {
		for _, f := range open {
			_ = f.Close()
		}
	}()
	for _, f := range files {
		fh, err := os.Open(f)
		if err != nil {
			return nil, fmt.Errorf("loader: open %s: %w", f, err)
		}
		open = append(open, fh)
		readers = append(readers, fh)
	}
	return resolve.ParseLabels(readers...)
}
