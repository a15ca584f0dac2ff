package state

import (
	"github.com/foldchain/blockchain/foundation/blockchain/consensus"
	"github.com/foldchain/blockchain/foundation/blockchain/database"
	"github.com/foldchain/blockchain/foundation/blockchain/genesis"
	"github.com/foldchain/blockchain/foundation/blockchain/signature"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveCanonicalHead returns the block at the canonical head. Before
// any block validates this is the implicit genesis block.
func (s *State) RetrieveCanonicalHead() (database.Block, error) {
	headID := s.engine.Head()

	if headID == signature.ZeroHash {
		return database.GenesisBlock(s.genesis)
	}

	return s.db.GetBlock(headID)
}

// RetrieveWindow returns the density window at the current slot.
func (s *State) RetrieveWindow() consensus.Window {
	return s.engine.Window()
}

// RetrieveChains returns every viable chain ordered by the fork choice,
// the canonical chain first.
func (s *State) RetrieveChains() []consensus.ChainInfo {
	return s.engine.Chains()
}

// RetrievePoolRecords returns a copy of the record pool in the order the
// producer would pick.
func (s *State) RetrievePoolRecords() []database.SignedRecord {
	return s.pool.PickBest(-1)
}
