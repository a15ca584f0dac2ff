// Package state is the core API for the chain and implements all the
// business rules and processing.
package state

import (
	"crypto/ecdsa"
	"sync"

	"github.com/foldchain/blockchain/foundation/blockchain/consensus"
	"github.com/foldchain/blockchain/foundation/blockchain/database"
	"github.com/foldchain/blockchain/foundation/blockchain/genesis"
	"github.com/foldchain/blockchain/foundation/blockchain/pool"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks and slots.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for slot timing and block production.
type Worker interface {
	Shutdown()
	SignalStartProduction()
}

// =============================================================================

// Config represents the configuration required to start
// the chain node.
type Config struct {
	ProducerKey *ecdsa.PrivateKey
	Genesis     genesis.Genesis
	Storage     database.Serializer
	EvHandler   EventHandler
}

// State manages the chain database, the record pool and the consensus
// engine behind one API.
type State struct {
	mu sync.Mutex

	producerKey *ecdsa.PrivateKey
	genesis     genesis.Genesis
	evHandler   EventHandler

	db     *database.Database
	pool   *pool.Pool
	engine *consensus.Engine

	Worker Worker
}

// New constructs a new state value for chain management. Blocks found in
// storage are revalidated and replayed into the consensus engine, so a
// restarted node continues from its persisted chain.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Access the storage for the chain.
	db, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	// The engine resumes at the highest persisted slot so no stored block
	// reads as produced in the future.
	stored := db.AllBlocks()

	var startSlot uint64
	for _, blockData := range stored {
		if blockData.Header.Slot > startSlot {
			startSlot = blockData.Header.Slot
		}
	}

	engine, err := consensus.New(consensus.Config{
		Genesis:   cfg.Genesis,
		StartSlot: startSlot,
		EvHandler: ev,
	})
	if err != nil {
		return nil, err
	}

	// Construct a pool for records waiting on a block.
	pool, err := pool.New()
	if err != nil {
		return nil, err
	}

	// Create the State to provide support for managing the chain.
	state := State{
		producerKey: cfg.ProducerKey,
		genesis:     cfg.Genesis,
		evHandler:   ev,
		db:          db,
		pool:        pool,
		engine:      engine,
	}

	// Replay the persisted chain. Stored order is by slot, so parents are
	// always submitted before their children. Blocks persisted as orphaned
	// stay out of the engine and a block that no longer validates is
	// demoted in storage.
	var anchorID string
	var anchorSlot uint64
	for _, blockData := range stored {
		if blockData.Status == string(consensus.StatusOrphaned) {
			continue
		}

		block, err := database.ToBlock(blockData)
		if err != nil {
			return nil, err
		}

		if _, err := state.engine.SubmitBlock(block); err != nil {
			ev("state: New: replay: blk[%s] no longer validates: %s", blockData.Hash, err)

			if err := state.db.UpdateStatus(blockData.Hash, string(consensus.StatusOrphaned)); err != nil {
				return nil, err
			}
			continue
		}

		if blockData.Status == string(consensus.StatusFinalized) && blockData.Header.Slot > anchorSlot {
			anchorID = blockData.Hash
			anchorSlot = blockData.Header.Slot
		}
	}

	// Finality granted before the shutdown survives it. The engine
	// re-anchors at the deepest stored finalized block so a fork branching
	// below it is rejected from the first slot after the restart.
	if anchorID != "" {
		orphaned, err := state.engine.AnchorFinalized(anchorID)
		if err != nil {
			return nil, err
		}

		for _, id := range orphaned {
			if err := state.updateStoredStatus(id, consensus.StatusOrphaned); err != nil {
				return nil, err
			}
		}
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the database is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all slot and block production activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// Truncate resets the chain both in storage and in memory. The pool, the
// stored blocks and the consensus tree all rewind to genesis.
func (s *State) Truncate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: Truncate: rewind chain to genesis")

	engine, err := consensus.New(consensus.Config{
		Genesis:   s.genesis,
		EvHandler: s.evHandler,
	})
	if err != nil {
		return err
	}

	// Reset the state of the database.
	s.pool.Truncate()
	if err := s.db.Reset(); err != nil {
		return err
	}
	s.engine = engine

	return nil
}
