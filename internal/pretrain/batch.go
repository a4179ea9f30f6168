package pretrain

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/sirupsen/logrus"
)

// BatchCombine runs Combine for every item on a worker pool.
func (p *Pretrainer) BatchCombine(ctx context.Context, items []Item, workers int) ([]CombineResult, []error) {
	wp := workerpool.New(max(workers, 1))
	var (
		mu       sync.Mutex
		results  []CombineResult
		failures []error
	)
	for _, item := range items {
		wp.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			res, err := p.Combine(item)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logrus.Errorf("pretrain %s: %v", item.Tag(), err)
				failures = append(failures, fmt.Errorf("%s test %d: %w", item.Tag(), item.TestYear, err))
				return
			}
			results = append(results, res)
		})
	}
	wp.StopWait()
	if err := ctx.Err(); err != nil {
		failures = append(failures, err)
	}
	return results, failures
}
