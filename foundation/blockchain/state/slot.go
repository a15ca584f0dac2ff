package state

import (
	"github.com/foldchain/blockchain/foundation/blockchain/consensus"
)

// AdvanceSlot moves the chain to the next slot and persists any status
// transitions finality produced. The worker calls this on every tick of
// the slot clock, the call itself carries no timing.
func (s *State) AdvanceSlot() consensus.SlotReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := s.engine.AdvanceSlot()

	for _, id := range report.Finalized {
		if err := s.updateStoredStatus(id, consensus.StatusFinalized); err != nil {
			s.evHandler("state: AdvanceSlot: WARNING: finalize blk[%s]: %s", id, err)
		}
	}

	for _, id := range report.Orphaned {
		if err := s.updateStoredStatus(id, consensus.StatusOrphaned); err != nil {
			s.evHandler("state: AdvanceSlot: WARNING: orphan blk[%s]: %s", id, err)
		}
	}

	if report.HeadChanged {
		s.evHandler("state: AdvanceSlot: head moved: slot[%d] head[%s]", report.Slot, report.HeadID)
	}

	if len(report.Finalized) > 0 {
		s.evHandler("state: AdvanceSlot: finalized[%d] orphaned[%d]", len(report.Finalized), len(report.Orphaned))
	}

	// Send an event about this slot for application specific support.
	s.evHandler(`viewer: slot: {"slot":%d,"head":%q,"streak":%d}`, report.Slot, report.HeadID, report.Streak)

	return report
}

// PruneOrphaned drops orphaned blocks from the consensus tree and returns
// the ids that were removed. Their stored copies keep the orphaned status
// for audit.
func (s *State) PruneOrphaned() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := s.engine.PruneOrphaned()

	s.evHandler("state: PruneOrphaned: pruned[%d]", len(pruned))

	return pruned
}

// =============================================================================

// updateStoredStatus persists a lifecycle transition. Finalized and
// orphaned are terminal, a settled block keeps its stored status.
func (s *State) updateStoredStatus(id string, status consensus.Status) error {
	blockData, err := s.db.GetBlockData(id)
	if err != nil {
		return err
	}

	switch consensus.Status(blockData.Status) {
	case consensus.StatusFinalized, consensus.StatusOrphaned:
		return nil
	}

	return s.db.UpdateStatus(id, string(status))
}
