package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/desertthunder/riff/internal/claims"
	"github.com/desertthunder/riff/internal/services"
	"golang.org/x/time/rate"
)

// BulkImportOpts contains configuration for bulk reconciliation.
type BulkImportOpts struct {
	NumWorkers int     // Concurrent workers (default: 5, max: 10)
	RateLimit  float64 // Claim sets dispatched per second (default: unlimited)
}

// ImportResult is the reconciliation result of one claim set.
type ImportResult struct {
	Index   int              `json:"index"`
	Email   string           `json:"email"`
	Outcome services.Outcome `json:"-"`
	Status  string           `json:"status"`
	Error   error            `json:"-"`
	Reason  string           `json:"error,omitempty"`
}

// BulkImportResult summarizes a bulk reconciliation.
type BulkImportResult struct {
	Total     int            `json:"total"`
	Created   int            `json:"created"`
	Updated   int            `json:"updated"`
	Unchanged int            `json:"unchanged"`
	Failed    int            `json:"failed"`
	Results   []ImportResult `json:"results"`
}

type importJob struct {
	index  int
	claims claims.Claims
}

// BulkImport reconciles every claim set with a worker pool and reports progress on prog.
//
// Failures of individual sets are recorded in the result and do not stop the import.
// Cancelling ctx stops dispatching; sets already dispatched still finish. The returned
// results are ordered by input position.
func (e *ImportEngine) BulkImport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	sets []claims.Claims,
	opts BulkImportOpts,
) (*BulkImportResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	result := &BulkImportResult{
		Total:   len(sets),
		Results: make([]ImportResult, 0, len(sets)),
	}
	e.sendProgress(prog, startImportUpdate(len(sets), opts.NumWorkers))

	jobs := make(chan importJob, len(sets))
	results := make(chan ImportResult, len(sets))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.importWorker(ctx, &wg, jobs, results)
	}

	go func() {
		defer close(jobs)
		for i, c := range sets {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- importJob{index: i, claims: c}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		switch {
		case res.Error != nil:
			result.Failed++
			e.sendProgress(prog, syncFailedUpdate(completed, len(sets), res))
			continue
		case res.Outcome == services.OutcomeCreated:
			result.Created++
		case res.Outcome == services.OutcomeUpdated:
			result.Updated++
		default:
			result.Unchanged++
		}
		e.sendProgress(prog, syncedUpdate(completed, len(sets), res))
	}

	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].Index < result.Results[j].Index
	})
	e.sendProgress(prog, summaryUpdate(result))

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("import interrupted after %d of %d claim sets: %w", completed, len(sets), err)
	}
	return result, nil
}

// importWorker reconciles claim sets from the jobs channel.
func (e *ImportEngine) importWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan importJob,
	results chan<- ImportResult,
) {
	defer wg.Done()

	for job := range jobs {
		results <- e.importOne(ctx, job)
	}
}

func (e *ImportEngine) importOne(ctx context.Context, job importJob) ImportResult {
	res := ImportResult{
		Index: job.index,
		Email: services.MapClaims(job.claims).Email(),
	}

	outcome, err := e.users.Sync(ctx, job.claims)
	if err != nil {
		e.logger.Warn("claim set failed", "index", job.index, "email", res.Email, "error", err)
		res.Error = err
		res.Reason = err.Error()
		res.Status = "failed"
		return res
	}

	res.Outcome = outcome
	res.Status = outcome.String()
	return res
}
