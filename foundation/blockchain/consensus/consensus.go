// Package consensus implements the density based fork choice rule over a
// tree of candidate blocks. The engine is an explicit context value so
// several independent chains can run side by side in one process, each
// with its own genesis parameters and event stream.
package consensus

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/foldchain/blockchain/foundation/blockchain/accumulator"
	"github.com/foldchain/blockchain/foundation/blockchain/database"
	"github.com/foldchain/blockchain/foundation/blockchain/field"
	"github.com/foldchain/blockchain/foundation/blockchain/genesis"
	"github.com/foldchain/blockchain/foundation/blockchain/signature"
)

// Consensus errors reported to the submitting layer. Every rejection is
// per block: the engine and the other chains are unaffected.
var (
	ErrUnknownParent      = errors.New("consensus: unknown parent block")
	ErrSlotOrderViolation = errors.New("consensus: block slot not after parent slot")
	ErrFutureSlot         = errors.New("consensus: block slot is in the future")
)

// =============================================================================

// blockNode is one block in the fork tree.
type blockNode struct {
	id       string
	parentID string
	slot     uint64
	producer database.AccountID
	digest   field.Element
	proof    accumulator.State
	status   Status
	children []string
}

// =============================================================================

// Config represents the configuration required to start the engine.
type Config struct {
	Genesis   genesis.Genesis
	StartSlot uint64
	EvHandler func(v string, args ...any)
}

// Engine maintains the block tree, the sliding density window and the
// canonical head. All mutation happens under a single writer lock so fork
// choice always evaluates a consistent view of every competing chain,
// while readers are served from that same consistent snapshot.
type Engine struct {
	mu sync.RWMutex

	genesis   genesis.Genesis
	evHandler func(v string, args ...any)

	nodes       map[string]*blockNode
	rejected    map[string]error
	currentSlot uint64
	head        string
	headStreak  uint64
	finalized   string
}

// New constructs a consensus engine rooted at the implicit genesis block:
// slot zero, the zero hash and the empty accumulator state.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	emptyState, err := accumulator.New(cfg.Genesis.AccumulatorParams())
	if err != nil {
		return nil, err
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	root := blockNode{
		id:     signature.ZeroHash,
		proof:  emptyState,
		status: StatusFinalized,
	}

	e := Engine{
		genesis:     cfg.Genesis,
		evHandler:   ev,
		nodes:       map[string]*blockNode{root.id: &root},
		rejected:    make(map[string]error),
		currentSlot: cfg.StartSlot,
		head:        root.id,
		finalized:   root.id,
	}

	return &e, nil
}

// =============================================================================

// SubmitBlock runs a candidate block through validation and, on success,
// attaches it to its fork and re-evaluates fork choice. Submitting a block
// the engine has already seen returns the recorded outcome again: a
// rejected id keeps answering with its recorded error even after the slot
// bound that caused it has moved, so a redelivery can only succeed once
// PruneOrphaned has cleared the rejection memory.
func (e *Engine) SubmitBlock(block database.Block) (Decision, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := block.Hash()

	if node, exists := e.nodes[id]; exists {
		return e.decisionFor(id, node.status, false), nil
	}
	if err, exists := e.rejected[id]; exists {
		return e.decisionFor(id, StatusOrphaned, false), err
	}

	e.evHandler("consensus: SubmitBlock: pending: blk[%s] slot[%d]", id, block.Header.Slot)

	parent, err := e.validateBlock(block)
	if err != nil {
		e.rejected[id] = err
		e.evHandler("consensus: SubmitBlock: rejected: blk[%s]: %s", id, err)
		return e.decisionFor(id, StatusOrphaned, false), err
	}

	node := blockNode{
		id:       id,
		parentID: parent.id,
		slot:     block.Header.Slot,
		producer: block.Header.ProducerID,
		digest:   block.Digest(),
		proof:    block.Proof,
		status:   StatusValidated,
	}
	e.nodes[id] = &node
	parent.children = append(parent.children, id)

	prevHead := e.head
	e.evaluateHead()

	// A fork switch restarts the dominance clock. Extending the head
	// chain keeps it running.
	if e.head != prevHead && !e.isDescendant(e.head, prevHead) {
		e.headStreak = 0
	}

	e.evHandler("consensus: SubmitBlock: validated: blk[%s] slot[%d] head[%s]", id, node.slot, e.head)

	return e.decisionFor(id, StatusValidated, e.head != prevHead), nil
}

// validateBlock runs the acceptance checks in order. The carried
// accumulator state must equal the parent state extended with the block
// digest, which pins every block to the exact history below it. Must be
// called with the lock held.
func (e *Engine) validateBlock(block database.Block) (*blockNode, error) {

	// After a finalization the extendable tree narrows to the finalized
	// block's subtree. Anything outside it, orphaned parents included, is
	// no longer part of the engine's live view.
	parent, exists := e.nodes[block.Header.ParentBlockID]
	if !exists || !e.isDescendant(parent.id, e.finalized) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParent, block.Header.ParentBlockID)
	}

	if block.Header.Slot <= parent.slot {
		return nil, fmt.Errorf("%w: block slot %d, parent slot %d", ErrSlotOrderViolation, block.Header.Slot, parent.slot)
	}

	if block.Header.Slot > e.currentSlot {
		return nil, fmt.Errorf("%w: block slot %d, current slot %d", ErrFutureSlot, block.Header.Slot, e.currentSlot)
	}

	if err := block.ValidateRecordsRoot(); err != nil {
		return nil, err
	}

	if err := block.ValidateSignature(); err != nil {
		return nil, err
	}

	expected, err := parent.proof.Append(block.Digest())
	if err != nil {
		return nil, fmt.Errorf("extending parent proof: %w", err)
	}

	if len(block.Proof.Evals) != len(expected.Evals) || block.Proof.ExtensionFactor != expected.ExtensionFactor {
		return nil, fmt.Errorf("carried proof: %w", accumulator.ErrSizeMismatch)
	}

	if !block.Proof.Equal(expected) {
		return nil, fmt.Errorf("carried proof: %w", accumulator.ErrMembershipFailed)
	}

	return parent, nil
}

// =============================================================================

// AdvanceSlot moves the engine to the next slot, re-evaluates fork choice
// over the shifted window and applies finality once the head chain has
// held maximal density for the configured confirmation depth.
func (e *Engine) AdvanceSlot() SlotReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.currentSlot++

	prevHead := e.head
	e.evaluateHead()

	switch {
	case e.head == prevHead, e.isDescendant(e.head, prevHead):
		e.headStreak++
	default:
		e.headStreak = 1
	}

	var finalized, orphaned []string
	if e.headStreak >= e.genesis.ConfirmationDepth {
		finalized, orphaned = e.finalizeBuried()
	}

	report := SlotReport{
		Slot:        e.currentSlot,
		HeadID:      e.head,
		HeadChanged: e.head != prevHead,
		Streak:      e.headStreak,
		Finalized:   finalized,
		Orphaned:    orphaned,
	}

	e.evHandler("consensus: AdvanceSlot: slot[%d] head[%s] streak[%d] finalized[%d] orphaned[%d]",
		report.Slot, report.HeadID, report.Streak, len(finalized), len(orphaned))

	return report
}

// AnchorFinalized moves the finalized anchor to the specified block,
// finalizing its whole path and orphaning every validated block outside
// its subtree, the same narrowing a live finalization applies. A restarted
// node replays its persisted chain as validated and then re-anchors the
// finality it had already granted. The orphaned ids are returned so the
// caller can demote their stored copies.
func (e *Engine) AnchorFinalized(id string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	anchor, exists := e.nodes[id]
	if !exists {
		return nil, fmt.Errorf("consensus: anchor block %s not found", id)
	}
	if anchor.status == StatusOrphaned {
		return nil, fmt.Errorf("consensus: anchor block %s is orphaned", id)
	}
	if !e.isDescendant(id, e.finalized) {
		return nil, fmt.Errorf("consensus: anchor block %s is outside the finalized subtree", id)
	}

	for _, pathID := range e.pathFromRoot(id) {
		e.nodes[pathID].status = StatusFinalized
	}
	e.finalized = id

	var orphaned []string
	for nodeID, node := range e.nodes {
		if node.status != StatusValidated {
			continue
		}
		if !e.isDescendant(nodeID, id) {
			node.status = StatusOrphaned
			orphaned = append(orphaned, nodeID)
		}
	}

	sort.Strings(orphaned)

	// The head may have been sitting on a fork the anchor just orphaned.
	e.evaluateHead()

	e.evHandler("consensus: AnchorFinalized: blk[%s] orphaned[%d]", id, len(orphaned))

	return orphaned, nil
}

// PruneOrphaned removes every orphaned block from the tree and returns
// the removed ids so callers can drop their stored copies. Recorded
// rejections are forgotten as well, which re-opens submission for ids
// that were rejected on slot bounds that have since moved.
func (e *Engine) PruneOrphaned() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var pruned []string
	for id, node := range e.nodes {
		if node.status != StatusOrphaned {
			continue
		}

		if parent, exists := e.nodes[node.parentID]; exists {
			children := parent.children[:0]
			for _, childID := range parent.children {
				if childID != id {
					children = append(children, childID)
				}
			}
			parent.children = children
		}

		delete(e.nodes, id)
		pruned = append(pruned, id)
	}

	e.rejected = make(map[string]error)

	sort.Strings(pruned)

	e.evHandler("consensus: PruneOrphaned: pruned[%d]", len(pruned))

	return pruned
}

// =============================================================================

// Head returns the canonical head block id. Before any block validates
// this is the zero hash of the implicit genesis block.
func (e *Engine) Head() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.head
}

// Window returns the sliding window the engine is currently scoring over.
func (e *Engine) Window() Window {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Window{Slot: e.currentSlot, Size: e.genesis.DensityWindow}
}

// Status reports the lifecycle state of a block the engine has seen.
func (e *Engine) Status(id string) (Status, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if node, exists := e.nodes[id]; exists {
		return node.status, nil
	}
	if _, exists := e.rejected[id]; exists {
		return StatusOrphaned, nil
	}

	return "", fmt.Errorf("block %s not found", id)
}

// DensityOf returns the density score of the chain ending at the
// specified block.
func (e *Engine) DensityOf(id string) (float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if _, exists := e.nodes[id]; !exists {
		return 0, fmt.Errorf("block %s not found", id)
	}

	return float64(e.windowCount(id)) / float64(e.genesis.DensityWindow), nil
}

// Chains returns every competing chain in fork choice order. The first
// entry is the canonical chain.
func (e *Engine) Chains() []ChainInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	scores := e.scores()

	chains := make([]ChainInfo, len(scores))
	for i, s := range scores {
		chains[i] = ChainInfo{
			Tip:         s.tip,
			TipSlot:     e.nodes[s.tip].slot,
			Length:      s.length,
			WindowCount: s.count,
			Density:     float64(s.count) / float64(e.genesis.DensityWindow),
		}
	}

	return chains
}

// =============================================================================

// decisionFor assembles the submission outcome for a block id. Must be
// called with the lock held.
func (e *Engine) decisionFor(id string, status Status, headChanged bool) Decision {
	var density float64
	if _, exists := e.nodes[id]; exists {
		density = float64(e.windowCount(id)) / float64(e.genesis.DensityWindow)
	}

	return Decision{
		BlockID:     id,
		Status:      status,
		HeadID:      e.head,
		HeadChanged: headChanged,
		Density:     density,
		Window:      Window{Slot: e.currentSlot, Size: e.genesis.DensityWindow},
	}
}
