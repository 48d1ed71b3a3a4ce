package trio

import (
	"context"
	"runtime"
	"sync"

	"github.com/RuthEberhardt/clinical-filter/internal/family"
	"github.com/RuthEberhardt/clinical-filter/internal/mnv"
)

// FamilyJob is one family queued for filtering.
type FamilyJob struct {
	Seq    int
	Family *family.Family
	MNVs   mnv.Candidates
}

// FamilyResult holds the filtering outcome for one family.
type FamilyResult struct {
	Seq    int
	Family *family.Family
	Trios  []*TrioRecord
	Err    error
}

// RunBatch filters families using a pool of workers. Families share no
// mutable state, so they are processed independently. Results arrive on
// the returned channel in completion order; use CollectOrdered to
// consume them in sequence-number order. If workers is 0,
// runtime.NumCPU() is used.
func (pl *Pipeline) RunBatch(ctx context.Context, jobs <-chan FamilyJob, workers int) <-chan FamilyResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan FamilyResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for job := range jobs {
				trios, err := pl.LoadFamily(ctx, job.Family, job.MNVs)
				results <- FamilyResult{
					Seq:    job.Seq,
					Family: job.Family,
					Trios:  trios,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// CollectOrdered calls fn for each result in sequence-number order.
// Out-of-order results are buffered in a pending map and emitted as
// soon as the next expected sequence number is available. Blocks until
// the results channel is closed.
func CollectOrdered(results <-chan FamilyResult, fn func(FamilyResult) error) error {
	pending := make(map[int]FamilyResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
