package state

import (
	"errors"
	"fmt"

	"github.com/foldchain/blockchain/foundation/blockchain/accumulator"
	"github.com/foldchain/blockchain/foundation/blockchain/database"
	"github.com/foldchain/blockchain/foundation/blockchain/field"
	"github.com/foldchain/blockchain/foundation/blockchain/signature"
)

// ErrNotCanonical is returned when a proof is requested for a block that
// is not on the canonical chain.
var ErrNotCanonical = errors.New("block is not on the canonical chain")

// AccumulatorProof commits the canonical blocks produced inside the slot
// range and returns the resulting accumulator state. An empty range
// returns the identity state.
func (s *State) AccumulatorProof(fromSlot uint64, toSlot uint64) (accumulator.State, error) {
	if fromSlot > toSlot {
		return accumulator.State{}, fmt.Errorf("slot range [%d,%d] is inverted", fromSlot, toSlot)
	}

	blocks, err := s.canonicalBlocks()
	if err != nil {
		return accumulator.State{}, err
	}

	var digests []field.Element
	for _, block := range blocks {
		if block.Header.Slot >= fromSlot && block.Header.Slot <= toSlot {
			digests = append(digests, block.Digest())
		}
	}

	return accumulator.AccumulateParallel(s.genesis.AccumulatorParams(), digests, 0)
}

// MembershipWitness proves the specified block is committed by the
// canonical chain. The returned witness verifies against the returned
// state, which is the state carried by the canonical head.
func (s *State) MembershipWitness(id string) (accumulator.Witness, accumulator.State, error) {
	blocks, err := s.canonicalBlocks()
	if err != nil {
		return accumulator.Witness{}, accumulator.State{}, err
	}

	var digest field.Element
	var found bool

	digests := make([]field.Element, len(blocks))
	for i, block := range blocks {
		digests[i] = block.Digest()

		if block.Hash() == id {
			digest = digests[i]
			found = true
		}
	}

	if !found {
		return accumulator.Witness{}, accumulator.State{}, fmt.Errorf("blk[%s]: %w", id, ErrNotCanonical)
	}

	witness, err := accumulator.Prove(s.genesis.AccumulatorParams(), digests, digest)
	if err != nil {
		return accumulator.Witness{}, accumulator.State{}, err
	}

	// The head block already carries the state the witness verifies
	// against.
	headState := blocks[len(blocks)-1].Proof

	return witness, headState, nil
}

// VerifyProof reports whether the witness proves the digest is committed
// by the accumulator state. Verification needs no chain data, any holder
// of the three values can run it.
func (s *State) VerifyProof(state accumulator.State, digest field.Element, witness accumulator.Witness) bool {
	return accumulator.Verify(state, digest, witness)
}

// =============================================================================

// canonicalBlocks returns the blocks on the canonical chain oldest first
// by walking parent ids back from the head.
func (s *State) canonicalBlocks() ([]database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []database.Block

	for id := s.engine.Head(); id != signature.ZeroHash; {
		block, err := s.db.GetBlock(id)
		if err != nil {
			return nil, err
		}

		out = append(out, block)
		id = block.Header.ParentBlockID
	}

	// The walk collects the head first. Reverse into chain order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return out, nil
}
