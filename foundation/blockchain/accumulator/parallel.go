package accumulator

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/foldchain/blockchain/foundation/blockchain/field"
)

// AccumulateParallel commits an ordered list of digests using a pool of
// workers. Each worker accumulates a contiguous chunk and the partial
// states are folded pairwise into the final state. Folding is associative
// and commutative, so the result is identical to a sequential accumulate
// regardless of chunking or merge order. Passing workers below one sizes
// the pool from the runtime.
func AccumulateParallel(params Params, digests []field.Element, workers int) (State, error) {
	if err := params.Validate(); err != nil {
		return State{}, fmt.Errorf("accumulator params: %w", err)
	}

	if len(digests) > params.MaxDegree() {
		return State{}, fmt.Errorf("accumulate %d digests: %w", len(digests), ErrDegreeExceeded)
	}

	if len(digests) == 0 {
		return New(params)
	}

	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(digests) {
		workers = len(digests)
	}

	chunk := (len(digests) + workers - 1) / workers
	chunks := (len(digests) + chunk - 1) / chunk

	partials := make([]State, chunks)
	errs := make([]error, chunks)

	var wg sync.WaitGroup
	wg.Add(chunks)

	for i := 0; i < chunks; i++ {
		lo := i * chunk
		hi := min(lo+chunk, len(digests))

		go func(i int, lo int, hi int) {
			defer wg.Done()
			partials[i], errs[i] = Accumulate(params, digests[lo:hi])
		}(i, lo, hi)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return State{}, err
		}
	}

	for len(partials) > 1 {
		var next []State

		for i := 0; i < len(partials); i += 2 {
			if i+1 == len(partials) {
				next = append(next, partials[i])
				break
			}

			folded, err := Fold(partials[i], partials[i+1])
			if err != nil {
				return State{}, err
			}
			next = append(next, folded)
		}

		partials = next
	}

	return partials[0], nil
}
