package worker

import (
	"context"
	"errors"
	"time"

	"github.com/foldchain/blockchain/foundation/blockchain/state"
)

// productionOperations handles block production.
func (w *Worker) productionOperations() {
	w.evHandler("worker: productionOperations: G started")
	defer w.evHandler("worker: productionOperations: G completed")

	for {
		select {
		case <-w.startProduction:
			if !w.isShutdown() {
				w.runProductionOperation()
			}
		case <-w.shut:
			w.evHandler("worker: productionOperations: received shut signal")
			return
		}
	}
}

// runProductionOperation batches pooled records into the next block and
// runs it through consensus.
func (w *Worker) runProductionOperation() {
	w.evHandler("worker: runProductionOperation: PRODUCE: started")
	defer w.evHandler("worker: runProductionOperation: PRODUCE: completed")

	t := time.Now()
	block, err := w.state.ProduceNextBlock(context.Background())
	duration := time.Since(t)

	w.evHandler("worker: runProductionOperation: PRODUCE: production duration[%v]", duration)

	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoProducerKey):
			w.evHandler("worker: runProductionOperation: PRODUCE: production turned off")
		case errors.Is(err, state.ErrNoOpenSlot):
			w.evHandler("worker: runProductionOperation: PRODUCE: slot already holds the head")
		default:
			w.evHandler("worker: runProductionOperation: PRODUCE: ERROR: %s", err)
		}
		return
	}

	w.evHandler("worker: runProductionOperation: PRODUCE: slot[%d] blk[%s]", block.Header.Slot, block.Hash())
}
