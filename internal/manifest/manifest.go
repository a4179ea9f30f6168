// Package manifest reads the YAML file that drives batch extract,
// preprocess and pretrain runs.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/extract"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/preprocess"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/pretrain"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/series"
	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/utils"
)

// State selects the stages a batch run executes.
type State int

const (
	PreprocessAndPretrain State = iota
	PreprocessOnly
	PretrainOnly
)

func (s State) Preprocess() bool { return s != PretrainOnly }
func (s State) Pretrain() bool   { return s != PreprocessOnly }

func (s State) String() string {
	switch s {
	case PreprocessAndPretrain:
		return "preprocess+pretrain"
	case PreprocessOnly:
		return "preprocess"
	case PretrainOnly:
		return "pretrain"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ExtractRun is one date range applied to several points files.
type ExtractRun struct {
	Start string   `yaml:"start"`
	End   string   `yaml:"end"`
	Tasks []string `yaml:"tasks"`
}

// Regular expands to every year and crop with a shared season.
type Regular struct {
	Years  []int    `yaml:"years"`
	Crops  []string `yaml:"crops"`
	Start  string   `yaml:"start"`
	End    string   `yaml:"end"`
	Window int      `yaml:"window"`
	Poly   int      `yaml:"poly"`
}

func (r *Regular) Items() []preprocess.Item {
	items := make([]preprocess.Item, 0, len(r.Years)*len(r.Crops))
	for _, y := range r.Years {
		for _, c := range r.Crops {
			items = append(items, preprocess.Item{Year: y, Crop: c, Start: r.Start, End: r.End, Window: r.Window, Poly: r.Poly})
		}
	}
	return items
}

type PreprocessSection struct {
	// Quantity is the number of entries sampled per extracted file.
	Quantity int               `yaml:"quantity"`
	Bands    []string          `yaml:"bands"`
	Workers  int               `yaml:"workers"`
	Items    []preprocess.Item `yaml:"items"`
	Regular  *Regular          `yaml:"regular"`
}

type PretrainSection struct {
	CropTypes  []string        `yaml:"crop_types"`
	ModelBands []string        `yaml:"model_bands"`
	Note       string          `yaml:"note"`
	Workers    int             `yaml:"workers"`
	Items      []pretrain.Item `yaml:"items"`
}

type Manifest struct {
	State      State             `yaml:"state"`
	Extract    []ExtractRun      `yaml:"extract"`
	Preprocess PreprocessSection `yaml:"preprocess"`
	Pretrain   PretrainSection   `yaml:"pretrain"`
	Indicator  map[string]int    `yaml:"indicator"`
}

func Default() *Manifest {
	return &Manifest{
		State: PreprocessOnly,
		Preprocess: PreprocessSection{
			Quantity: 2000,
			Bands:    series.LandsatBands(),
			Workers:  2,
		},
		Pretrain: PretrainSection{
			ModelBands: series.LandsatBands(),
			Note:       "REG",
			Workers:    2,
		},
	}
}

func Load(path string) (*Manifest, error) {
	m := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filepath.Base(path), err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// PreprocessItems returns the explicit items followed by the expanded
// regular block. With neither, it returns DefaultItem.
func (m *Manifest) PreprocessItems() []preprocess.Item {
	items := append([]preprocess.Item(nil), m.Preprocess.Items...)
	if m.Preprocess.Regular != nil {
		items = append(items, m.Preprocess.Regular.Items()...)
	}
	if len(items) == 0 {
		items = []preprocess.Item{preprocess.DefaultItem}
	}
	return items
}

// ExtractTasks flattens the extract section.
func (m *Manifest) ExtractTasks() []extract.Task {
	tasks := []extract.Task{}
	for _, run := range m.Extract {
		for _, t := range run.Tasks {
			tasks = append(tasks, extract.Task{PointsFile: t, Start: run.Start, End: run.End})
		}
	}
	return tasks
}

// Indicators merges the manifest override over the default crop labels.
func (m *Manifest) Indicators() map[string]int {
	out := make(map[string]int, len(pretrain.DefaultIndicator)+len(m.Indicator))
	for k, v := range pretrain.DefaultIndicator {
		out[k] = v
	}
	for k, v := range m.Indicator {
		out[k] = v
	}
	return out
}

func (m *Manifest) Validate() error {
	var errs []error
	if m.State < PreprocessAndPretrain || m.State > PretrainOnly {
		errs = append(errs, fmt.Errorf("unknown state %d", m.State))
	}
	for i, run := range m.Extract {
		for _, d := range []string{run.Start, run.End} {
			if _, err := time.Parse(utils.DateLayout, d); err != nil {
				errs = append(errs, fmt.Errorf("extract[%d]: date %q is not YYYYMMDD", i, d))
			}
		}
		if len(run.Tasks) == 0 {
			errs = append(errs, fmt.Errorf("extract[%d]: no tasks", i))
		}
	}
	if m.State.Preprocess() {
		for _, it := range m.PreprocessItems() {
			if err := it.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("preprocess: %w", err))
			}
		}
	}
	if m.State.Pretrain() {
		if len(m.Pretrain.CropTypes) == 0 {
			errs = append(errs, errors.New("pretrain: no crop types"))
		}
		indicators := m.Indicators()
		for _, c := range m.Pretrain.CropTypes {
			if _, ok := indicators[c]; !ok {
				errs = append(errs, fmt.Errorf("pretrain: no indicator for %s", c))
			}
		}
		for i, it := range m.Pretrain.Items {
			if len(it.TrainYears) == 0 {
				errs = append(errs, fmt.Errorf("pretrain[%d]: no train years", i))
			}
			if err := it.Season(it.TestYear, "").Validate(); err != nil {
				errs = append(errs, fmt.Errorf("pretrain[%d]: %w", i, err))
			}
		}
	}
	return errors.Join(errs...)
}
