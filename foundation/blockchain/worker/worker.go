// Package worker implements the parallel proof of work search for the
// blockchain. A coordinator shares the nonce domain out across a group of
// independent miners and returns the first solution any of them finds.
package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zimcoin/blockchain/foundation/blockchain/database"
)

// nonceDomain is the total addressable nonce search space shared out across
// the workers, twice the maximum 64 bit signed integer.
const nonceDomain = uint64(math.MaxInt64) * 2

// DefaultMinNonce is the lower bound of the search space when the caller has
// no preference. Keeping clear of the low end avoids re-searching the nonces
// that naive sequential miners cover first.
const DefaultMinNonce = 30_000_000_000

// EventHandler defines a function that is called when events occur during a
// mining operation.
type EventHandler func(v string, args ...any)

// =============================================================================

// Coordinator races a group of independent miners over disjoint contiguous
// slices of the nonce space, all sharing one absolute cutoff.
type Coordinator struct {
	workers   int
	minNonce  uint64
	evHandler EventHandler
}

// NewCoordinator constructs a coordinator for the specified number of
// parallel workers.
func NewCoordinator(workers int, minNonce uint64, evHandler EventHandler) (*Coordinator, error) {
	if workers < 1 {
		return nil, errors.New("at least one worker is required")
	}

	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	c := Coordinator{
		workers:   workers,
		minNonce:  minNonce,
		evHandler: ev,
	}

	return &c, nil
}

// result is what each worker publishes onto the single slot result channel.
type result struct {
	block database.Block
	found bool
	err   error
}

// Mine runs the parallel search until any worker finds a solution or every
// worker reaches the cutoff. The first published result wins; the losing
// workers are forcibly torn down before Mine returns, whatever their
// progress. Found reports false when the cutoff passes without a solution,
// including when the cutoff is already in the past on entry. An unexpected
// worker fault is promoted to a coordinator level error.
func (c *Coordinator) Mine(ctx context.Context, t Template, cutoff time.Time) (database.Block, bool, error) {
	runID := uuid.NewString()

	c.evHandler("worker: mine: run[%s]: started: workers[%d] height[%d] cutoff[%v]", runID, c.workers, t.Height, cutoff.UTC())
	defer c.evHandler("worker: mine: run[%s]: completed", runID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The slot is consumed exactly once. A losing worker finds the slot taken
	// and skips publishing.
	results := make(chan result, 1)

	slice := (nonceDomain - c.minNonce) / uint64(c.workers)

	var wg sync.WaitGroup
	wg.Add(c.workers)

	hasStarted := make(chan bool)

	for i := range c.workers {
		minNonce := c.minNonce + uint64(i)*slice
		maxNonce := minNonce + slice

		go func(workerID int, minNonce uint64, maxNonce uint64) {
			defer wg.Done()
			hasStarted <- true

			c.evHandler("worker: mine: run[%s]: worker[%d]: searching [%d:%d)", runID, workerID, minNonce, maxNonce)

			block, found, err := MineBlock(ctx, t, cutoff, minNonce, maxNonce)

			select {
			case results <- result{block: block, found: found, err: err}:
			default:
			}
		}(i, minNonce, maxNonce)
	}

	// Don't start the race until every worker is up.
	for range c.workers {
		<-hasStarted
	}

	// Block until the first worker publishes, then force the rest down.
	res := <-results
	cancel()
	wg.Wait()

	if res.err != nil {
		return database.Block{}, false, fmt.Errorf("mining worker: %w", res.err)
	}

	if !res.found {
		c.evHandler("worker: mine: run[%s]: cutoff reached with no solution", runID)
		return database.Block{}, false, nil
	}

	c.evHandler("worker: mine: run[%s]: SOLVED: block[%s] nonce[%d]", runID, res.block.BlockID, res.block.Nonce)

	return res.block, true, nil
}
