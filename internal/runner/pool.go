package runner

import (
	"context"
	"fmt"
	"sync"
)

// Job runs one test. Name identifies it in errors for skipped jobs.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// RunPool runs jobs with at most maxWorkers at a time. Once ctx is done no
// further jobs start; each job left unstarted contributes an error wrapping
// ctx.Err(). Errors are returned in job order.
func RunPool(ctx context.Context, maxWorkers int, jobs []Job) []error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	results := make([]error, len(jobs))
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		acquired := false
		select {
		case sem <- struct{}{}:
			acquired = true
		case <-ctx.Done():
		}
		if err := ctx.Err(); err != nil {
			if acquired {
				<-sem
			}
			results[i] = fmt.Errorf("%s: not started: %w", job.Name, err)
			continue
		}
		wg.Add(1)
		go func(i int, j Job) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = j.Run(ctx)
		}(i, job)
	}
	wg.Wait()

	var errs []error
	for _, err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
