package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/foldchain/blockchain/foundation/blockchain/consensus"
	"github.com/foldchain/blockchain/foundation/blockchain/database"
)

// ErrNoProducerKey is returned when block production is requested on a
// node that holds no producer key.
var ErrNoProducerKey = errors.New("no producer key configured")

// ErrNoOpenSlot is returned when the canonical head already sits in the
// current slot, so there is no slot to produce for yet.
var ErrNoOpenSlot = errors.New("current slot already holds the canonical head")

// =============================================================================

// ProduceNextBlock batches the best pooled records into a block on top of
// the canonical head for the current slot, runs it through consensus and
// returns it.
func (s *State) ProduceNextBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: ProduceNextBlock: PRODUCE: check producer key")

	if s.producerKey == nil {
		return database.Block{}, ErrNoProducerKey
	}

	slot := s.engine.Window().Slot

	parent, err := s.RetrieveCanonicalHead()
	if err != nil {
		return database.Block{}, err
	}

	// One block per producer per slot. The next tick opens the next slot.
	if slot <= parent.Header.Slot {
		return database.Block{}, ErrNoOpenSlot
	}

	// Pick the best records from the pool. An empty batch still produces a
	// block, the chain is scored on block presence.
	records := s.pool.PickBest(int(s.genesis.RecordsPerBlock))

	s.evHandler("state: ProduceNextBlock: PRODUCE: slot[%d] records[%d]", slot, len(records))

	block, err := database.ProduceBlock(s.producerKey, slot, parent, records, s.evHandler)
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: ProduceNextBlock: PRODUCE: submit to consensus")

	if _, err := s.submitUpdateDatabase(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// SubmitBlock takes a block produced here or received from a peer, runs it
// through consensus and if it joins a chain, persists it with its status.
func (s *State) SubmitBlock(block database.Block) (consensus.Decision, error) {
	s.evHandler("state: SubmitBlock: started: parentBlk[%s]: newBlk[%s]: numRecords[%d]", block.Header.ParentBlockID, block.Hash(), len(block.RecordValues()))
	defer s.evHandler("state: SubmitBlock: completed: newBlk[%s]", block.Hash())

	return s.submitUpdateDatabase(block)
}

// =============================================================================

// submitUpdateDatabase runs the block through the consensus engine. If the
// block joins a chain, the state of the node is updated including adding
// the block to storage.
func (s *State) submitUpdateDatabase(block database.Block) (consensus.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: submitUpdateDatabase: submit to consensus")

	decision, err := s.engine.SubmitBlock(block)
	if err != nil {
		return decision, err
	}

	// Write the new block to the chain in storage. A duplicate submission
	// keeps its stored lifecycle, statuses move one way only.
	if _, err := s.db.GetBlockData(block.Hash()); err != nil {
		s.evHandler("state: submitUpdateDatabase: write to storage")

		if err := s.db.Write(database.NewBlockData(block, string(decision.Status))); err != nil {
			return decision, err
		}
	}

	s.evHandler("state: submitUpdateDatabase: remove records from pool")

	// The block carries these records now, they no longer wait on one.
	for _, rec := range block.RecordValues() {
		s.evHandler("state: submitUpdateDatabase: rec[%s] remove", rec)
		s.pool.Delete(rec)
	}

	if decision.HeadChanged {
		s.evHandler("state: submitUpdateDatabase: head moved: head[%s] density[%.3f]", decision.HeadID, decision.Density)
	}

	// Send an event about this new block.
	s.blockEvent(block, decision)

	return decision, nil
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block, decision consensus.Decision) {
	blockHeaderJSON, err := json.Marshal(block.Header)
	if err != nil {
		blockHeaderJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	blockRecordsJSON, err := json.Marshal(block.RecordValues())
	if err != nil {
		blockRecordsJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"status":%q,"header":%s,"records":%s}`, block.Hash(), decision.Status, string(blockHeaderJSON), string(blockRecordsJSON))
}
