package worker

// slotOperations drives the slot clock. Every tick advances the chain one
// slot and opens the new slot for production.
func (w *Worker) slotOperations() {
	w.evHandler("worker: slotOperations: G started")
	defer w.evHandler("worker: slotOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runSlotOperation()
			}
		case <-w.shut:
			w.evHandler("worker: slotOperations: received shut signal")
			return
		}
	}
}

// runSlotOperation advances the chain to the next slot and kicks off
// production for it.
func (w *Worker) runSlotOperation() {
	report := w.state.AdvanceSlot()

	w.evHandler("worker: runSlotOperation: SLOT: advanced: slot[%d] head[%s] streak[%d]", report.Slot, report.HeadID, report.Streak)

	if len(report.Finalized) > 0 {
		w.evHandler("worker: runSlotOperation: SLOT: finalized[%d] orphaned[%d]", len(report.Finalized), len(report.Orphaned))
	}

	w.SignalStartProduction()
}
