package plan

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jward/heritage"
)

// Options configures ExecuteAll.
type Options struct {
	// Journal receives every composition once all plans have run. Nil
	// disables journaling.
	Journal heritage.Journal
	Logger  zerolog.Logger
	// Workers bounds concurrency; zero means one per CPU.
	Workers int
}

// batchBuffer holds a plan's composition batches until the serial commit.
type batchBuffer struct {
	batches []*heritage.Batch
}

func (b *batchBuffer) CommitBatch(batch *heritage.Batch) error {
	b.batches = append(b.batches, batch)
	return nil
}

// ExecuteAll runs independent plans in two phases:
//
//	Phase A (parallel): each plan runs on its own worker with its own
//	                    cloner and catalog, buffering journal batches.
//	Phase B (serial):   buffered batches are committed in plan order.
//
// Reports are returned in plan order. A failed plan leaves a nil report.
func ExecuteAll(ctx context.Context, plans []*Plan, opts Options) ([]*Report, error) {
	if len(plans) == 0 {
		return nil, nil
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = min(numWorkers, len(plans))

	workCh := make(chan int, len(plans))
	for i := range plans {
		workCh <- i
	}
	close(workCh)

	type result struct {
		report *Report
		buffer *batchBuffer
		err    error
	}
	results := make([]result, len(plans))

	// ---- Phase A: Parallel execution ----
	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				buf := &batchBuffer{}
				copts := []heritage.Option{heritage.WithLogger(opts.Logger)}
				if opts.Journal != nil {
					copts = append(copts, heritage.WithJournal(buf))
				}
				exec := NewExecutor(heritage.New(copts...), opts.Logger)
				report, err := exec.Execute(ctx, plans[i])
				results[i] = result{report: report, buffer: buf, err: err}
			}
		}()
	}
	wg.Wait()

	// ---- Phase B: Serial commit ----
	reports := make([]*Report, len(plans))
	var errs []error
	for i, res := range results {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("execute %s: %w", plans[i].Name, res.err))
			continue
		}
		reports[i] = res.report
		if opts.Journal == nil {
			continue
		}
		for _, b := range res.buffer.batches {
			if err := opts.Journal.CommitBatch(b); err != nil {
				errs = append(errs, fmt.Errorf("commit %s: %w", plans[i].Name, err))
				break
			}
		}
	}

	if len(errs) > 0 {
		return reports, fmt.Errorf("plan execution had %d error(s): %w", len(errs), errs[0])
	}
	return reports, nil
}
