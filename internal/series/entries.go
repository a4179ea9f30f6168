package series

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Entry is one point with its bands, the unit written to result files.
type Entry struct {
	Point string `json:"point"`
	Bands Record `json:"bands"`
}

// Entries flattens results into point-sorted entries.
func Entries(r Results) []Entry {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Point: k, Bands: r[k]})
	}
	return entries
}

func Chunk(entries []Entry, size int) [][]Entry {
	if len(entries) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]Entry{entries}
	}
	chunks := make([][]Entry, 0, (len(entries)+size-1)/size)
	for start := 0; start < len(entries); start += size {
		end := min(start+size, len(entries))
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}

func SaveEntries(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal entries: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}

func LoadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return entries, nil
}

// SaveResults writes an intermediate results map as-is.
func SaveResults(path string, r Results) error {
	return SaveEntries(path, Entries(r))
}

func LoadResults(path string) (Results, error) {
	entries, err := LoadEntries(path)
	if err != nil {
		return nil, err
	}
	r := make(Results, len(entries))
	for _, e := range entries {
		r[e.Point] = e.Bands
	}
	return r, nil
}

// CropLabel is the CDL class of a point for one year.
type CropLabel struct {
	Year int    `json:"year"`
	Code int    `json:"code"`
	Name string `json:"name"`
}

type Labels map[string][]CropLabel
