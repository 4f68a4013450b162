package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/elnk/elnk"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator evaluates a filter over large link lists in parallel chunks
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate evaluates a single filter against all links
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, links []elnk.Link) ([]elnk.Link, error) {
	if len(links) == 0 {
		return []elnk.Link{}, nil
	}

	// For small lists, don't bother with concurrency
	if len(links) < e.batchSize {
		return evaluateSequential(filter, links), nil
	}

	return e.evaluateConcurrent(ctx, filter, links)
}

func evaluateSequential(filter Filter, links []elnk.Link) []elnk.Link {
	matches := make([]elnk.Link, 0, len(links)/4)
	for _, link := range links {
		if filter.Evaluate(link) {
			matches = append(matches, link)
		}
	}
	return matches
}

func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, links []elnk.Link) ([]elnk.Link, error) {
	chunkSize := max(len(links)/e.workerCount, e.batchSize)
	chunks := make([][]elnk.Link, (len(links)+chunkSize-1)/chunkSize)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for i := range chunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(links))

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Each goroutine owns its slot
			chunks[i] = evaluateSequential(filter, links[start:end])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}

	matches := make([]elnk.Link, 0, total)
	for _, chunk := range chunks {
		matches = append(matches, chunk...)
	}
	return matches, nil
}
