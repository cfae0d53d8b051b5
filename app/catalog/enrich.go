package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	enrichWorkers = 5
	enrichTimeout = 5 * time.Second
)

// enrich fills missing display data on the given items by concurrent
// single-item lookups. At most enrichWorkers requests run in parallel.
// Lookup failures leave the placeholder item untouched.
func enrich(ctx context.Context, lookup ItemLookup, targets []*workItem) {
	if len(targets) == 0 || lookup == nil {
		return
	}

	jobs := make(chan *workItem)
	var wg sync.WaitGroup

	workers := enrichWorkers
	if len(targets) < workers {
		workers = len(targets)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				enrichOne(ctx, lookup, job)
			}
		}()
	}

	for _, t := range targets {
		jobs <- t
	}
	close(jobs)
	wg.Wait()
}

func enrichOne(ctx context.Context, lookup ItemLookup, job *workItem) {
	lookupCtx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	fresh, err := lookup.GetItem(lookupCtx, job.item.ID)
	if err != nil || fresh == nil {
		slog.Debug("Curated item lookup failed, keeping cached display data",
			"item_id", job.item.ID, "error", err)
		return
	}

	pinned, rank := job.item.Pinned, job.item.Rank
	*job.item = *fresh
	job.item.Pinned = pinned
	job.item.Rank = rank
	job.enriched = true
}
