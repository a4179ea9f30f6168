// Package catalog finds archive files: it builds the scene lists of a
// local imagery archive and selects, per tile and period, the files the
// extractors read.
package catalog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrNoFiles = errors.New("no matching files")

// LoadList reads an archive list. Files ending in .json hold a JSON array,
// anything else one entry per line.
func LoadList(path string) ([]string, error) {
	if strings.HasSuffix(path, ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read list %s: %w", path, err)
		}
		var entries []string
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode list %s: %w", path, err)
		}
		return entries, nil
	}
	return LoadLines(path)
}

func LoadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open list %s: %w", path, err)
	}
	defer f.Close()

	lines := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list %s: %w", path, err)
	}
	return lines, nil
}

// SaveList writes entries as an indented JSON array.
func SaveList(path string, entries []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Resolve turns a list entry into a path. Relative entries live under root.
func Resolve(root, entry string) string {
	entry = strings.TrimSpace(entry)
	if filepath.IsAbs(entry) {
		return entry
	}
	return filepath.Join(root, strings.TrimLeft(entry, "./"))
}

// Relative strips root from path, the inverse of Resolve.
func Relative(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// FindByToken returns the first entry containing token, e.g. a YYYYMMDD
// date in a precipitation list or a year in a CDL list.
func FindByToken(entries []string, token string) (string, bool) {
	for _, e := range entries {
		if strings.Contains(e, token) {
			return e, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// PrecipFile is the daily precipitation file of date (YYYYMMDD).
func PrecipFile(entries []string, date string) (string, bool) {
	return FindByToken(entries, date)
}

// CDLFile is the Cropland Data Layer raster of a year.
func CDLFile(entries []string, year int) (string, bool) {
	return FindByToken(entries, fmt.Sprintf("%d", year))
}
