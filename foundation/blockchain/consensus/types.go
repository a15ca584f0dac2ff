package consensus

// Status represents the lifecycle state of a block inside the engine.
type Status string

// The set of lifecycle states. A block moves one way only: a pending
// block either validates or is rejected as orphaned, and a validated
// block either finalizes or is orphaned when its fork loses.
const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusFinalized Status = "finalized"
	StatusOrphaned  Status = "orphaned"
)

// =============================================================================

// Window describes the trailing slot range densities are scored over.
type Window struct {
	Slot uint64 `json:"slot"` // Current slot, the inclusive upper bound of the window.
	Size uint64 `json:"size"` // Number of trailing slots in the window.
}

// Decision reports the outcome of one block submission.
type Decision struct {
	BlockID     string  `json:"block_id"`     // Id of the submitted block.
	Status      Status  `json:"status"`       // Lifecycle state after the submission.
	HeadID      string  `json:"head_id"`      // Canonical head after the submission.
	HeadChanged bool    `json:"head_changed"` // Whether the submission moved the head.
	Density     float64 `json:"density"`      // Density of the chain the block belongs to.
	Window      Window  `json:"window"`       // Window the density was scored over.
}

// SlotReport reports the consequences of advancing the engine one slot.
type SlotReport struct {
	Slot        uint64   `json:"slot"`         // The slot the engine advanced to.
	HeadID      string   `json:"head_id"`      // Canonical head after re-evaluation.
	HeadChanged bool     `json:"head_changed"` // Whether the head moved.
	Streak      uint64   `json:"streak"`       // Consecutive slots the head chain has held maximal density.
	Finalized   []string `json:"finalized"`    // Block ids finalized this slot, oldest first.
	Orphaned    []string `json:"orphaned"`     // Block ids orphaned by that finalization.
}

// ChainInfo describes one competing chain for observers.
type ChainInfo struct {
	Tip         string  `json:"tip"`          // Id of the chain tip.
	TipSlot     uint64  `json:"tip_slot"`     // Slot of the tip block.
	Length      uint64  `json:"length"`       // Number of produced blocks on the chain.
	WindowCount uint64  `json:"window_count"` // Validated or finalized blocks inside the window.
	Density     float64 `json:"density"`      // WindowCount over the window size.
}
