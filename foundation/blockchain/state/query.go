package state

import (
	"github.com/foldchain/blockchain/foundation/blockchain/consensus"
	"github.com/foldchain/blockchain/foundation/blockchain/database"
)

// QueryLatest represents to query the latest slot in the chain.
const QueryLatest = ^uint64(0) >> 1

// =============================================================================

// QueryBlockByID returns the stored block with the specified id along
// with its persisted status.
func (s *State) QueryBlockByID(id string) (database.BlockData, error) {
	return s.db.GetBlockData(id)
}

// QueryStatus returns the lifecycle status of the specified block. Blocks
// pruned from the consensus tree answer from storage, and a stored
// terminal status outranks the engine's view since a restarted engine
// re-derives finality it already granted.
func (s *State) QueryStatus(id string) (consensus.Status, error) {
	engineStatus, engineErr := s.engine.Status(id)

	blockData, dbErr := s.db.GetBlockData(id)
	if dbErr != nil {
		if engineErr != nil {
			return "", engineErr
		}
		return engineStatus, nil
	}

	switch stored := consensus.Status(blockData.Status); stored {
	case consensus.StatusFinalized, consensus.StatusOrphaned:
		return stored, nil
	}

	if engineErr != nil {
		return consensus.Status(blockData.Status), nil
	}

	return engineStatus, nil
}

// QueryDensity returns the density of the chain ending at the specified
// block, measured over the window at the current slot.
func (s *State) QueryDensity(id string) (float64, error) {
	return s.engine.DensityOf(id)
}

// QueryPoolLength returns the current length of the record pool.
func (s *State) QueryPoolLength() int {
	return s.pool.Count()
}

// QueryBlocksBySlot returns the set of stored blocks produced inside the
// slot range, any fork included.
func (s *State) QueryBlocksBySlot(from uint64, to uint64) []database.BlockData {
	if from == QueryLatest || to == QueryLatest {
		latest := s.engine.Window().Slot
		if from == QueryLatest {
			from = latest
		}
		if to == QueryLatest {
			to = latest
		}
	}

	var out []database.BlockData
	for _, blockData := range s.db.AllBlocks() {
		if blockData.Header.Slot >= from && blockData.Header.Slot <= to {
			out = append(out, blockData)
		}
	}

	return out
}

// QueryBlocksByAccount returns the set of stored blocks that carry a
// record involving the account. If the account is empty, all blocks are
// returned.
func (s *State) QueryBlocksByAccount(accountID database.AccountID) []database.BlockData {
	var out []database.BlockData

	for _, blockData := range s.db.AllBlocks() {
		for _, rec := range blockData.Records {
			fromID, err := rec.FromAccount()
			if err != nil {
				continue
			}

			if accountID == "" || fromID == accountID || rec.ToID == accountID {
				out = append(out, blockData)
				break
			}
		}
	}

	return out
}
