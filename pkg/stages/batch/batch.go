// Package batch renders one photo at several aspect ratios in parallel.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/ports"
)

// Stage composes and exports one canvas per aspect ratio with a worker pool.
type Stage struct {
	compose    pipeline.Stage[pipeline.ComposeInput, pipeline.ComposeResult]
	export     pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult]
	logger     ports.Logger
	numWorkers int
}

// NewStage creates a new batch stage.
func NewStage(
	compose pipeline.Stage[pipeline.ComposeInput, pipeline.ComposeResult],
	export pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult],
	logger ports.Logger,
	numWorkers int,
) *Stage {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Stage{
		compose:    compose,
		export:     export,
		logger:     logger.WithComponent("batch"),
		numWorkers: numWorkers,
	}
}

// Execute renders every aspect ratio. The first failure cancels the
// remaining jobs and is returned.
func (s *Stage) Execute(ctx context.Context, input pipeline.BatchInput) (pipeline.BatchResult, error) {
	if len(input.AspectRatios) == 0 {
		return pipeline.BatchResult{Items: []pipeline.BatchItem{}}, nil
	}

	workers := s.numWorkers
	if workers > len(input.AspectRatios) {
		workers = len(input.AspectRatios)
	}
	s.logger.Debug("Rendering %d aspect ratios with %d workers", len(input.AspectRatios), workers)

	result, err := s.executeParallel(ctx, input, workers)
	if err != nil {
		return pipeline.BatchResult{}, err
	}

	s.logger.Debug("Batch completed")
	return result, nil
}

// indexedItem holds an item with its original index for sorting.
type indexedItem struct {
	index int
	item  pipeline.BatchItem
}

// executeParallel renders items using a worker pool.
func (s *Stage) executeParallel(ctx context.Context, input pipeline.BatchInput, workers int) (pipeline.BatchResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numItems := len(input.AspectRatios)
	jobs := make(chan int, numItems)
	results := make(chan indexedItem, numItems)
	errChan := make(chan error, workers)

	// Start workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go s.worker(ctx, cancel, &wg, input, jobs, results, errChan)
	}

	// Send jobs
	for i := 0; i < numItems; i++ {
		jobs <- i
	}
	close(jobs)

	// Wait for workers to finish
	wg.Wait()
	close(results)
	close(errChan)

	// Check for errors
	if err := <-errChan; err != nil {
		return pipeline.BatchResult{}, err
	}
	if err := ctx.Err(); err != nil && len(results) < numItems {
		return pipeline.BatchResult{}, err
	}

	// Sort by index to maintain order
	items := make([]indexedItem, 0, numItems)
	for r := range results {
		items = append(items, r)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].index < items[j].index
	})

	out := make([]pipeline.BatchItem, len(items))
	for i, it := range items {
		out[i] = it.item
	}
	return pipeline.BatchResult{Items: out}, nil
}

// worker processes aspect ratios from the jobs channel.
func (s *Stage) worker(
	ctx context.Context,
	cancel context.CancelFunc,
	wg *sync.WaitGroup,
	input pipeline.BatchInput,
	jobs <-chan int,
	results chan<- indexedItem,
	errChan chan<- error,
) {
	defer wg.Done()

	for idx := range jobs {
		if ctx.Err() != nil {
			return
		}

		item, err := s.render(ctx, input, idx)
		if err != nil {
			select {
			case errChan <- err:
			default:
			}
			cancel()
			return
		}

		results <- indexedItem{index: idx, item: item}
	}
}

// render composes and exports a single aspect ratio.
func (s *Stage) render(ctx context.Context, input pipeline.BatchInput, idx int) (pipeline.BatchItem, error) {
	aspect := input.AspectRatios[idx]

	composed, err := s.compose.Execute(ctx, pipeline.ComposeInput{
		Image:       input.Image,
		Overlay:     input.Overlay,
		AspectRatio: aspect,
	})
	if err != nil {
		return pipeline.BatchItem{}, fmt.Errorf("render %s: %w", aspect, err)
	}

	exported, err := s.export.Execute(ctx, pipeline.ExportInput{
		Canvas: composed.Canvas,
		Format: input.Format,
	})
	if err != nil {
		return pipeline.BatchItem{}, fmt.Errorf("export %s: %w", aspect, err)
	}

	return pipeline.BatchItem{AspectRatio: aspect, Compose: composed, Export: exported}, nil
}

var _ pipeline.Stage[pipeline.BatchInput, pipeline.BatchResult] = (*Stage)(nil)
