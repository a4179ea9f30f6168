// Package preprocess turns extracted band series into evenly spaced,
// smoothed series ready for training.
package preprocess

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

// Item is one manifest row: a crop and year smoothed over a season.
// Start and End are MMDD.
type Item struct {
	Year   int    `yaml:"year" json:"year"`
	Crop   string `yaml:"crop" json:"crop"`
	Start  string `yaml:"start" json:"start"`
	End    string `yaml:"end" json:"end"`
	Window int    `yaml:"window" json:"window"`
	Poly   int    `yaml:"poly" json:"poly"`
}

// DefaultItem is the cotton season the preprocessor was tuned on.
var DefaultItem = Item{Year: 2018, Crop: "Cotton", Start: "0401", End: "1001", Window: 33, Poly: 2}

func (i Item) StartDate() string { return fmt.Sprintf("%d%s", i.Year, i.Start) }
func (i Item) EndDate() string   { return fmt.Sprintf("%d%s", i.Year, i.End) }

// Tag is the MMDD_MMDD_win_poly part shared by preprocessed file names.
func (i Item) Tag() string {
	return fmt.Sprintf("%s_%s_%d_%d", i.Start, i.End, i.Window, i.Poly)
}

func (i Item) String() string { return fmt.Sprintf("%d_%s_%s", i.Year, i.Crop, i.Tag()) }

func (i Item) Validate() error {
	for _, d := range []string{i.Start, i.End} {
		if len(d) != 4 || strings.Trim(d, "0123456789") != "" {
			return fmt.Errorf("%s: date %q is not MMDD", i, d)
		}
	}
	if i.Start > i.End {
		return fmt.Errorf("%s: start after end", i)
	}
	return checkWindow(i.Window, i.Poly)
}

type Preprocessor struct {
	Item
	// Quantity caps the entries sampled from each extracted file.
	Quantity  int
	Bands     []string
	Normalize map[string]NormalizeRange
	InDir     string
	OutDir    string
	Rand      *rand.Rand
}

func New(item Item, quantity int, bands []string, inDir, outDir string) *Preprocessor {
	if len(bands) == 0 {
		bands = series.LandsatBands()
	}
	return &Preprocessor{
		Item:      item,
		Quantity:  quantity,
		Bands:     bands,
		Normalize: DefaultNormalize,
		InDir:     inDir,
		OutDir:    outDir,
		Rand:      rand.New(rand.NewSource(int64(item.Year))),
	}
}

// Files lists the extracted result files of the item's year and crop.
func (p *Preprocessor) Files() ([]string, error) {
	entries, err := os.ReadDir(p.InDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", p.InDir, err)
	}
	prefix := fmt.Sprintf("%d_%s", p.Year, p.Crop)
	files := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.Contains(e.Name(), prefix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// OutputName is {year}_{crop}_{MMDD}_{MMDD}_{win}_{poly}_{quantity}_{index}.json
// where index is the chunk number of the extracted file.
func (p *Preprocessor) OutputName(file string) string {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	parts := strings.Split(base, "_")
	return fmt.Sprintf("%d_%s_%s_%d_%s.json", p.Year, p.Crop, p.Tag(), p.Quantity, parts[len(parts)-1])
}

// ProcessSeries runs the preprocessing steps on one band. Precipitation is
// normalized but neither gap filled nor smoothed.
func (p *Preprocessor) ProcessSeries(band string, s series.Series) (series.Series, error) {
	s = RemoveDuplicates(Truncate(s, p.StartDate(), p.EndDate()))
	if r, ok := p.Normalize[band]; ok {
		s = Normalize(s, r)
	}
	if band == series.Precip {
		return s, nil
	}
	filled, err := FillDays(s, p.StartDate(), p.EndDate())
	if err != nil {
		return nil, err
	}
	smoothed, err := SavGol(Interpolate(filled.Values()), p.Window, p.Poly, ModeInterp)
	if err != nil {
		return nil, err
	}
	for i := range filled {
		filled[i].Value = smoothed[i]
	}
	return filled, nil
}

// ProcessEntry returns the processed bands of an entry, or false when the
// entry lacks one of them.
func (p *Preprocessor) ProcessEntry(e series.Entry) (series.Entry, bool, error) {
	out := series.Entry{Point: e.Point, Bands: series.Record{}}
	for _, band := range p.Bands {
		s, ok := e.Bands[band]
		if !ok {
			return out, false, nil
		}
		processed, err := p.ProcessSeries(band, s)
		if err != nil {
			return out, false, fmt.Errorf("point %s band %s: %w", e.Point, band, err)
		}
		out.Bands[band] = processed
	}
	return out, true, nil
}

// sample draws Quantity entries without replacement, keeping file order.
func (p *Preprocessor) sample(entries []series.Entry) []series.Entry {
	if p.Quantity <= 0 || p.Quantity >= len(entries) {
		return entries
	}
	idx := p.Rand.Perm(len(entries))[:p.Quantity]
	sort.Ints(idx)
	out := make([]series.Entry, len(idx))
	for i, j := range idx {
		out[i] = entries[j]
	}
	return out
}

// FileResult reports what SingleRun did with one extracted file.
type FileResult struct {
	Item    string `csv:"item"`
	File    string `csv:"file"`
	Output  string `csv:"output"`
	Read    int    `csv:"read"`
	Kept    int    `csv:"kept"`
	Skipped bool   `csv:"skipped"`
	Error   string `csv:"error"`
}

// SingleRun preprocesses one extracted file. An existing output is left
// untouched.
func (p *Preprocessor) SingleRun(file string) (FileResult, error) {
	name := p.OutputName(file)
	out := filepath.Join(p.OutDir, name)
	res := FileResult{Item: p.String(), File: file, Output: name}
	if _, err := os.Stat(out); err == nil {
		logrus.Infof("%s already processed", file)
		res.Skipped = true
		return res, nil
	}

	entries, err := series.LoadEntries(filepath.Join(p.InDir, file))
	if err != nil {
		return res, err
	}
	entries = p.sample(entries)
	res.Read = len(entries)

	processed := make([]series.Entry, 0, len(entries))
	for _, e := range entries {
		pe, ok, err := p.ProcessEntry(e)
		if err != nil {
			return res, err
		}
		if ok && !allNaN(pe) {
			processed = append(processed, pe)
		}
	}
	res.Kept = len(processed)
	if err := series.SaveEntries(out, processed); err != nil {
		return res, err
	}
	logrus.WithFields(logrus.Fields{"file": file, "read": res.Read, "kept": res.Kept}).Info("preprocessed")
	return res, nil
}

func allNaN(e series.Entry) bool {
	for _, s := range e.Bands {
		for _, o := range s {
			if !math.IsNaN(o.Value) {
				return false
			}
		}
	}
	return true
}

// Run preprocesses every file of the item. Failed files are reported and
// do not stop the others.
func (p *Preprocessor) Run() ([]FileResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	files, err := p.Files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: no extracted files in %s", p.Item, p.InDir)
	}
	results := make([]FileResult, 0, len(files))
	failed := 0
	for _, f := range files {
		r, err := p.SingleRun(f)
		if err != nil {
			logrus.Errorf("%s: %v", f, err)
			r.Error = err.Error()
			failed++
		}
		results = append(results, r)
	}
	if failed == len(files) {
		return results, fmt.Errorf("%s: all %d files failed", p.Item, failed)
	}
	return results, nil
}
