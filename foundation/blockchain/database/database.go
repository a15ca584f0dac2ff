// Package database handles the chain's data model and the lower level
// support for persisting blocks, their accumulator states and their
// consensus status through an injected storage implementation keyed by
// block id.
package database

import (
	"fmt"
	"sort"
	"sync"

	"github.com/foldchain/blockchain/foundation/blockchain/accumulator"
	"github.com/foldchain/blockchain/foundation/blockchain/genesis"
)

// Serializer interface represents the behavior required to be implemented
// by any package providing support for storing and reading blocks. Keys
// are block ids and any encoding must be deterministic.
type Serializer interface {
	Write(blockData BlockData) error
	GetBlock(id string) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the stored blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// DatabaseIterator provides iteration over stored blocks in their database
// form.
type DatabaseIterator struct {
	iterator Iterator
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	blockData, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData)
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}

// =============================================================================

// GenesisBlock returns the implicit root every chain extends: slot zero,
// the zero hash and the empty accumulator of the genesis shape.
func GenesisBlock(gen genesis.Genesis) (Block, error) {
	state, err := accumulator.New(gen.AccumulatorParams())
	if err != nil {
		return Block{}, err
	}

	return Block{Proof: state}, nil
}

// =============================================================================

// Database manages block persistence and keeps an in memory index of every
// stored block by id. The consensus view of the chain is rebuilt from this
// index at startup.
type Database struct {
	mu sync.RWMutex

	genesis    genesis.Genesis
	blocks     map[string]BlockData
	serializer Serializer
}

// New constructs a new database, reading any previously stored blocks
// through the serializer and checking each block's self consistency.
func New(gen genesis.Genesis, serializer Serializer, evHandler func(v string, args ...any)) (*Database, error) {
	db := Database{
		genesis:    gen,
		blocks:     make(map[string]BlockData),
		serializer: serializer,
	}

	iter := serializer.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		block, err := ToBlock(blockData)
		if err != nil {
			return nil, err
		}

		if blockData.Hash != block.Hash() {
			return nil, fmt.Errorf("stored block %s hashes to %s", blockData.Hash, block.Hash())
		}

		if err := block.ValidateRecordsRoot(); err != nil {
			return nil, fmt.Errorf("stored block %s: %w", blockData.Hash, err)
		}

		if err := block.ValidateSignature(); err != nil {
			return nil, fmt.Errorf("stored block %s: %w", blockData.Hash, err)
		}

		evHandler("database: New: loaded block: slot[%d]: blk[%s]", block.Header.Slot, blockData.Hash)

		db.blocks[blockData.Hash] = blockData
	}

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() {
	db.serializer.Close()
}

// Reset clears the storage and the in memory index.
func (db *Database) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.serializer.Reset(); err != nil {
		return err
	}

	db.blocks = make(map[string]BlockData)
	return nil
}

// Write persists a block with its consensus status and indexes it by id.
func (db *Database) Write(blockData BlockData) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.serializer.Write(blockData); err != nil {
		return err
	}

	db.blocks[blockData.Hash] = blockData
	return nil
}

// UpdateStatus rewrites the stored consensus status for a block.
func (db *Database) UpdateStatus(id string, status string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	blockData, exists := db.blocks[id]
	if !exists {
		return fmt.Errorf("block %s not found", id)
	}

	blockData.Status = status
	if err := db.serializer.Write(blockData); err != nil {
		return err
	}

	db.blocks[id] = blockData
	return nil
}

// GetBlock retrieves a block from the index by its id.
func (db *Database) GetBlock(id string) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blockData, exists := db.blocks[id]
	if !exists {
		return Block{}, fmt.Errorf("block %s not found", id)
	}

	return ToBlock(blockData)
}

// GetBlockData retrieves the stored form of a block by its id.
func (db *Database) GetBlockData(id string) (BlockData, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blockData, exists := db.blocks[id]
	if !exists {
		return BlockData{}, fmt.Errorf("block %s not found", id)
	}

	return blockData, nil
}

// AllBlocks returns every stored block ordered by slot, then by id. A
// parent always carries a lower slot than its children, so replaying the
// returned order rebuilds the chain deterministically.
func (db *Database) AllBlocks() []BlockData {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]BlockData, 0, len(db.blocks))
	for _, blockData := range db.blocks {
		blocks = append(blocks, blockData)
	}

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Header.Slot != blocks[j].Header.Slot {
			return blocks[i].Header.Slot < blocks[j].Header.Slot
		}
		return blocks[i].Hash < blocks[j].Hash
	})

	return blocks
}

// ForEach returns an iterator to walk through all the stored blocks.
func (db *Database) ForEach() DatabaseIterator {
	return DatabaseIterator{iterator: db.serializer.ForEach()}
}
