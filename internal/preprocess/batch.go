package preprocess

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"
)

// BatchRun runs one preprocessor per item on a worker pool. It returns the
// per-file results of every item and the items that failed.
func BatchRun(ctx context.Context, jobs []*Preprocessor, workers int) ([]FileResult, []error) {
	if workers <= 0 {
		workers = 1
	}
	wp := workerpool.New(workers)
	var (
		mu       sync.Mutex
		results  []FileResult
		failures []error
	)
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		wp.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			logrus.Infof("preprocessing %s", job.Item)
			res, err := job.Run()
			mu.Lock()
			defer mu.Unlock()
			results = append(results, res...)
			if err != nil {
				failures = append(failures, fmt.Errorf("%s: %w", job.Item, err))
			}
		})
	}
	wp.StopWait()
	if err := ctx.Err(); err != nil {
		failures = append(failures, err)
	}
	return results, failures
}

// WriteReport saves file results as CSV.
func WriteReport(path string, results []FileResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&results, f); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
