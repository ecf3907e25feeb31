package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Task processes the file at path. The runner fills in the outcome's
// Path and Error.
type Task func(ctx context.Context, path string) (FileOutcome, error)

// Runner applies a Task to every discovered file with a worker pool.
type Runner struct {
	task Task
}

// New creates a Runner for task.
func New(task Task) *Runner {
	return &Runner{task: task}
}

// Run discovers files under opts.Paths and processes them concurrently.
// Outcomes are returned in discovery order whatever order the workers
// finish in. A failing file does not stop the others.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Go(func() {
			r.worker(ctx, workCh, outCh)
		})
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}
	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

func (r *Runner) worker(ctx context.Context, workCh <-chan string, outCh chan<- FileOutcome) {
	for path := range workCh {
		if ctx.Err() != nil {
			return
		}

		outcome, err := r.task(ctx, path)
		outcome.Path = path
		outcome.Error = err

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}
