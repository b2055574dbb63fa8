package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/vanban-tech/vanban/internal/detector"
	"github.com/vanban-tech/vanban/internal/ocr"
)

// pageJob is a single page processing job.
type pageJob struct {
	index int
	image image.Image
}

// pageResult carries the explicit result-or-error for one page.
type pageResult struct {
	index   int
	outcome pageOutcome
	err     error
}

// pageWorker owns the detector and recognition engine of one worker.
// Instances never cross goroutine boundaries.
type pageWorker struct {
	pipeline *Pipeline
	detector detector.Detector
	engine   ocr.Engine
}

func newPageWorker(p *Pipeline) (*pageWorker, error) {
	det, err := p.detectorFactory()
	if err != nil {
		return nil, fmt.Errorf("create detector: %w", err)
	}
	engine, err := p.engineFactory()
	if err != nil {
		_ = det.Close()
		return nil, fmt.Errorf("create recognition engine: %w", err)
	}
	return &pageWorker{pipeline: p, detector: det, engine: engine}, nil
}

func (w *pageWorker) close() {
	if err := w.detector.Close(); err != nil {
		w.pipeline.logger.Warn("detector close failed", "error", err)
	}
	if err := w.engine.Close(); err != nil {
		w.pipeline.logger.Warn("engine close failed", "error", err)
	}
}

// processPagesParallel fans pages out across a bounded worker pool. Each
// worker lazily constructs its own detector and engine on the first job,
// and every page yields an explicit result or error so a failing page can
// never stall the pool.
func (p *Pipeline) processPagesParallel(ctx context.Context, images []image.Image) ([]pageOutcome, error) {
	workers := min(p.config.Workers, len(images))

	jobs := make(chan pageJob, len(images))
	results := make(chan pageResult, len(images))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.runWorker(ctx, jobs, results)
		}()
	}

	go func() {
		defer close(jobs)
		for i, img := range images {
			select {
			case jobs <- pageJob{index: i, image: img}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]pageOutcome, len(images))
	done := 0
	for res := range results {
		if res.err != nil {
			p.logger.Error("page processing failed", "page", res.index, "error", res.err)
			p.progress.OnError(res.index, res.err)
			res.outcome = pageOutcome{}
		}
		outcomes[res.index] = res.outcome
		done++
		p.progress.OnProgress(ocrPercent(done, len(images)),
			fmt.Sprintf("Đang OCR trang %d/%d...", done, len(images)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// runWorker consumes page jobs until the channel closes or the context is
// canceled. Worker state is created on the first job so unused workers
// never load models.
func (p *Pipeline) runWorker(ctx context.Context, jobs <-chan pageJob, results chan<- pageResult) {
	var w *pageWorker
	defer func() {
		if w != nil {
			w.close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if w == nil {
				worker, err := newPageWorker(p)
				if err != nil {
					results <- pageResult{index: job.index, err: err}
					continue
				}
				w = worker
			}
			outcome, err := w.processPage(job.image, job.index)
			results <- pageResult{index: job.index, outcome: outcome, err: err}
		}
	}
}
