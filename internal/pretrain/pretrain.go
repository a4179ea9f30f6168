// Package pretrain packs preprocessed series into feature/label matrices
// saved as NPZ archives.
package pretrain

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/sbinet/npyio/npz"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/preprocess"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
)

var ErrNoRows = errors.New("no complete rows")

// DefaultIndicator maps a crop type to its class label.
var DefaultIndicator = map[string]int{
	"Other":       0,
	"Corn":        1,
	"Soybeans":    2,
	"Cotton":      3,
	"Rice":        4,
	"Peanut":      5,
	"Potato":      6,
	"SpringWheat": 7,
	"Sorghum":     8,
	"Citrus":      9,
}

// Item is one pretrain manifest row.
type Item struct {
	TrainYears []int  `yaml:"train_years" json:"train_years"`
	TestYear   int    `yaml:"test_year" json:"test_year"`
	Start      string `yaml:"start" json:"start"`
	End        string `yaml:"end" json:"end"`
	Window     int    `yaml:"window" json:"window"`
	Poly       int    `yaml:"poly" json:"poly"`
}

// Season is the preprocess item whose outputs this row reads.
func (i Item) Season(year int, crop string) preprocess.Item {
	return preprocess.Item{Year: year, Crop: crop, Start: i.Start, End: i.End, Window: i.Window, Poly: i.Poly}
}

func (i Item) Tag() string { return i.Season(0, "").Tag() }

type Pretrainer struct {
	CropTypes  []string
	ModelBands []string
	Note       string
	Indicator  map[string]int
	InDir      string
	OutDir     string
}

func New(cropTypes, modelBands []string, note, inDir, outDir string) *Pretrainer {
	if len(modelBands) == 0 {
		modelBands = series.LandsatBands()
	}
	if note == "" {
		note = "REG"
	}
	return &Pretrainer{
		CropTypes:  cropTypes,
		ModelBands: modelBands,
		Note:       note,
		Indicator:  DefaultIndicator,
		InDir:      inDir,
		OutDir:     outDir,
	}
}

// ReduceCropType keeps the preprocessed files of a year and season whose
// crop is one of CropTypes.
func (p *Pretrainer) ReduceCropType(files []string, year int, tag string) []string {
	y := fmt.Sprint(year)
	kept := []string{}
	for _, f := range files {
		if filepath.Ext(f) != ".json" {
			continue
		}
		parts := strings.Split(f, "_")
		if len(parts) < 2 || !slices.Contains(p.CropTypes, parts[1]) {
			continue
		}
		if strings.Contains(f, y) && strings.Contains(f, tag) {
			kept = append(kept, f)
		}
	}
	sort.Strings(kept)
	return kept
}

// dataLetters flags the sources among the model bands: L, S, T then G.
func (p *Pretrainer) dataLetters() string {
	var b strings.Builder
	for _, c := range []struct {
		band   string
		letter byte
	}{
		{series.LandsatBand(series.Red), 'L'},
		{series.SentinelBand(series.Red), 'S'},
		{series.ModisLST, 'T'},
		{series.Precip, 'G'},
	} {
		if slices.Contains(p.ModelBands, c.band) {
			b.WriteByte(c.letter)
		}
	}
	return b.String()
}

// LabelMaker returns the train and test archive names, without extension.
func (p *Pretrainer) LabelMaker(item Item) (train, test string) {
	var b strings.Builder
	b.WriteString(item.Tag() + "_")
	for _, c := range p.CropTypes {
		b.WriteString(c[:min(2, len(c))])
	}
	b.WriteString("_" + p.dataLetters() + "_" + p.Note)
	gen := b.String()

	train = gen + "_TRAIN_"
	for _, y := range item.TrainYears {
		train += twoDigits(y)
	}
	return train, gen + "_TEST_" + twoDigits(item.TestYear)
}

func twoDigits(year int) string { return fmt.Sprintf("%02d", year%100) }

// Batch is a feature matrix with one label per row.
type Batch struct {
	Features [][]float64
	Labels   []int64
}

func (b *Batch) Append(o Batch) {
	b.Features = append(b.Features, o.Features...)
	b.Labels = append(b.Labels, o.Labels...)
}

func (b Batch) Len() int { return len(b.Labels) }

// row concatenates the date sorted values of every model band. It returns
// false when a band is missing or a value is NaN.
func (p *Pretrainer) row(e series.Entry) ([]float64, bool) {
	row := []float64{}
	for _, band := range p.ModelBands {
		s, ok := e.Bands[band]
		if !ok {
			return nil, false
		}
		s = slices.Clone(s)
		sort.SliceStable(s, func(i, j int) bool {
			if s[i].Date != s[j].Date {
				return s[i].Date < s[j].Date
			}
			return s[i].Value < s[j].Value
		})
		for _, o := range s {
			if math.IsNaN(o.Value) {
				return nil, false
			}
			row = append(row, o.Value)
		}
	}
	return row, true
}

// SingleCombine builds the rows of one year from the preprocessed files.
func (p *Pretrainer) SingleCombine(year int, item Item) (Batch, error) {
	entries, err := os.ReadDir(p.InDir)
	if err != nil {
		return Batch{}, fmt.Errorf("failed to list %s: %w", p.InDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	var batch Batch
	for _, f := range p.ReduceCropType(names, year, item.Tag()) {
		crop := strings.Split(f, "_")[1]
		label, ok := p.Indicator[crop]
		if !ok {
			return Batch{}, fmt.Errorf("no indicator for crop %s", crop)
		}
		data, err := series.LoadEntries(filepath.Join(p.InDir, f))
		if err != nil {
			return Batch{}, err
		}
		skipped := 0
		for _, e := range data {
			row, ok := p.row(e)
			if !ok {
				skipped++
				continue
			}
			batch.Features = append(batch.Features, row)
			batch.Labels = append(batch.Labels, int64(label))
		}
		logrus.WithFields(logrus.Fields{"file": f, "rows": len(data) - skipped, "skipped": skipped}).Debug("combined")
	}
	return batch, nil
}

// CombineResult names the archives Combine wrote.
type CombineResult struct {
	Train     string
	Test      string
	TrainRows int
	TestRows  int
}

// Combine writes <train>.npz from the train years and <test>.npz from the
// test year.
func (p *Pretrainer) Combine(item Item) (CombineResult, error) {
	trainLabel, testLabel := p.LabelMaker(item)
	res := CombineResult{
		Train: filepath.Join(p.OutDir, trainLabel+".npz"),
		Test:  filepath.Join(p.OutDir, testLabel+".npz"),
	}

	var train Batch
	for _, y := range item.TrainYears {
		b, err := p.SingleCombine(y, item)
		if err != nil {
			return res, fmt.Errorf("year %d: %w", y, err)
		}
		train.Append(b)
	}
	test, err := p.SingleCombine(item.TestYear, item)
	if err != nil {
		return res, fmt.Errorf("year %d: %w", item.TestYear, err)
	}

	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return res, fmt.Errorf("failed to create %s: %w", p.OutDir, err)
	}
	if err := WriteNPZ(res.Train, train); err != nil {
		return res, err
	}
	if err := WriteNPZ(res.Test, test); err != nil {
		return res, err
	}
	res.TrainRows, res.TestRows = train.Len(), test.Len()
	logrus.WithFields(logrus.Fields{"train": res.TrainRows, "test": res.TestRows}).Infof("wrote %s", trainLabel)
	return res, nil
}

// WriteNPZ saves a batch as `features` (rows x columns) and `labels`.
func WriteNPZ(path string, b Batch) error {
	if b.Len() == 0 {
		return fmt.Errorf("%s: %w", filepath.Base(path), ErrNoRows)
	}
	cols := len(b.Features[0])
	flat := make([]float64, 0, b.Len()*cols)
	for i, r := range b.Features {
		if len(r) != cols {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(r), cols)
		}
		flat = append(flat, r...)
	}

	w, err := npz.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := w.Write("features", mat.NewDense(b.Len(), cols, flat)); err != nil {
		w.Close()
		return fmt.Errorf("failed to write features: %w", err)
	}
	if err := w.Write("labels", b.Labels); err != nil {
		w.Close()
		return fmt.Errorf("failed to write labels: %w", err)
	}
	return w.Close()
}

// ReadNPZ loads an archive written by WriteNPZ.
func ReadNPZ(path string) (Batch, error) {
	r, err := npz.Open(path)
	if err != nil {
		return Batch{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close()

	var m mat.Dense
	if err := r.Read("features", &m); err != nil {
		return Batch{}, fmt.Errorf("failed to read features: %w", err)
	}
	var labels []int64
	if err := r.Read("labels", &labels); err != nil {
		return Batch{}, fmt.Errorf("failed to read labels: %w", err)
	}
	rows, _ := m.Dims()
	b := Batch{Features: make([][]float64, rows), Labels: labels}
	for i := range rows {
		b.Features[i] = mat.Row(nil, i, &m)
	}
	return b, nil
}
