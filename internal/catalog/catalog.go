// Package catalog persists discovered review links as a CSV worklist.
//
// The catalog is the contract between the two harvest stages: discovery
// appends to it, fetch reads slices of it. Links are deduplicated by URL
// with keep-first semantics, so merging overlapping discovery runs is safe.
package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Link is a review detail-page address found on a listing page.
type Link struct {
	Page int
	URL  string
}

// Load reads a previously persisted catalog. A missing file is an empty
// catalog, not an error.
func Load(path string) ([]Link, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var links []Link
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("catalog %s: row %d has %d columns, want 2", path, i+1, len(row))
		}
		page, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("catalog %s: row %d: bad page number %q", path, i+1, row[0])
		}
		links = append(links, Link{Page: page, URL: row[1]})
	}
	return links, nil
}

// Merge unions link batches, keeping the first occurrence of each URL.
// The result depends only on the set of URLs seen, so merging the same
// batch twice, or in a different order, yields the same catalog set.
func Merge(batches ...[]Link) []Link {
	seen := make(map[string]bool)
	var merged []Link
	for _, batch := range batches {
		for _, link := range batch {
			if link.URL == "" || seen[link.URL] {
				continue
			}
			seen[link.URL] = true
			merged = append(merged, link)
		}
	}
	return merged
}

// Save writes the catalog atomically: the rows go to a temp file in the
// same directory which is then renamed over the target, so a crash
// mid-write never corrupts a previously valid catalog.
func Save(path string, links []Link) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.csv")
	if err != nil {
		return fmt.Errorf("create catalog temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	rows := [][]string{{"page", "url"}}
	for _, link := range links {
		rows = append(rows, []string{strconv.Itoa(link.Page), link.URL})
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close catalog temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

// URLs extracts the address column of a catalog slice.
func URLs(links []Link) []string {
	urls := make([]string, len(links))
	for i, link := range links {
		urls[i] = link.URL
	}
	return urls
}
