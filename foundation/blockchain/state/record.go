package state

import (
	"github.com/foldchain/blockchain/foundation/blockchain/database"
)

// UpsertRecord accepts a signed record for inclusion in a future block.
// Production itself stays on the slot clock, a record never forces a
// block.
func (s *State) UpsertRecord(rec database.SignedRecord) error {
	if err := rec.Validate(s.genesis.ChainID); err != nil {
		return err
	}

	count, err := s.pool.Upsert(rec)
	if err != nil {
		return err
	}

	s.evHandler("state: UpsertRecord: rec[%s] pool[%d]", rec, count)

	return nil
}
