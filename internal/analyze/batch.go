// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

const defaultConcurrency = 4

// BatchOutput holds the results of one batch run plus aggregate
// statistics folded from them.
type BatchOutput struct {
	RunID   string
	Results []types.CurationResult
	Stats   BatchStats
}

// RunBatch drives Analyze over a note set with bounded concurrency.
// Results are attributed by note and returned in input order. On
// cancellation, notes whose analysis has not completed are omitted
// from the result set; completed results are kept.
func (a *Analyzer) RunBatch(ctx context.Context, notes []types.Note, cfg types.BatchConfig, w io.Writer) BatchOutput {
	runID := uuid.NewString()

	if cfg.SampleSize > 0 && cfg.SampleSize < len(notes) {
		total := len(notes)
		notes = Sample(notes, cfg.SampleSize, cfg.SampleSeed)
		fmt.Fprintf(w, "sampling %d of %d notes\n", len(notes), total)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if concurrency > len(notes) {
		concurrency = len(notes)
	}

	type indexed struct {
		i   int
		res types.CurationResult
	}

	jobs := make(chan int)
	out := make(chan indexed, len(notes))
	var wg sync.WaitGroup

	for n := 0; n < concurrency; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := a.Analyze(ctx, notes[i])
				if err != nil {
					// Cancelled mid-analysis: the note is omitted,
					// never recorded in a partial state.
					continue
				}
				res.RunID = runID
				out <- indexed{i: i, res: res}
			}
		}()
	}

	go func() {
	feed:
		for i := range notes {
			select {
			case jobs <- i:
			case <-ctx.Done():
				break feed
			}
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	// Slots keep attribution unambiguous under concurrent completion.
	slots := make([]*types.CurationResult, len(notes))
	for ir := range out {
		r := ir.res
		slots[ir.i] = &r
		if r.Accepted {
			fmt.Fprintf(w, "accepted %s\n", r.NoteID)
		} else {
			fmt.Fprintf(w, "rejected %s: %s\n", r.NoteID, r.Rationale)
		}
	}

	results := make([]types.CurationResult, 0, len(notes))
	for _, s := range slots {
		if s != nil {
			results = append(results, *s)
		}
	}

	stats := ComputeStats(results)
	stats.Skipped = len(notes) - len(results)

	return BatchOutput{RunID: runID, Results: results, Stats: stats}
}

// Sample selects a reproducible random subset of the notes. Selection
// depends only on the note set and the seed, not on input ordering: the
// set is canonicalized by ID before the seeded shuffle. A zero seed
// derives one from the clock for ad-hoc trial runs.
func Sample(notes []types.Note, size int, seed int64) []types.Note {
	if size <= 0 || size >= len(notes) {
		return notes
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sorted := make([]types.Note, len(notes))
	copy(sorted, notes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(sorted))

	picked := make([]types.Note, 0, size)
	for _, idx := range perm[:size] {
		picked = append(picked, sorted[idx])
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].ID < picked[j].ID })
	return picked
}
