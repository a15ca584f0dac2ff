// Package worker implements the slot clock and block production for the
// chain.
package worker

import (
	"sync"
	"time"

	"github.com/foldchain/blockchain/foundation/blockchain/state"
)

// Worker manages the slot and production workflows for the chain.
type Worker struct {
	state           *state.State
	wg              sync.WaitGroup
	ticker          *time.Ticker
	shut            chan struct{}
	startProduction chan bool
	evHandler       state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler) {
	slotDuration := time.Duration(st.RetrieveGenesis().SlotDuration) * time.Second

	w := Worker{
		state:           st,
		ticker:          time.NewTicker(slotDuration),
		shut:            make(chan struct{}),
		startProduction: make(chan bool, 1),
		evHandler:       evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.slotOperations,
		w.productionOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartProduction starts a production operation. If there is already
// a signal pending in the channel, just return since a production
// operation will start.
func (w *Worker) SignalStartProduction() {
	select {
	case w.startProduction <- true:
	default:
	}
	w.evHandler("worker: SignalStartProduction: production signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
