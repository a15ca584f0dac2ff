package storage

import (
	"errors"
	"sort"
	"sync"

	"github.com/foldchain/blockchain/foundation/blockchain/database"
)

// Memory represents the serialization implementation for reading and
// storing blocks in memory, keyed by block id. This implements the
// database.Serializer interface and exists for tests and ephemeral nodes.
type Memory struct {
	mu     sync.RWMutex
	blocks map[string]database.BlockData
}

// NewMemory constructs a Memory value for use.
func NewMemory() (*Memory, error) {
	return &Memory{
		blocks: make(map[string]database.BlockData),
	}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified database block and stores it in memory.
// Writing an id that already exists replaces the previous contents.
func (m *Memory) Write(blockData database.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks[blockData.Hash] = blockData

	return nil
}

// GetBlock searches memory to locate and return the contents of the
// specified block by id.
func (m *Memory) GetBlock(id string) (database.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blockData, exists := m.blocks[id]
	if !exists {
		return database.BlockData{}, errors.New("block does not exist")
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks in memory.
// The set of block ids is captured up front so writes during iteration
// don't disturb the walk.
func (m *Memory) ForEach() database.Iterator {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.blocks))
	for id := range m.blocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &memoryIterator{storage: m, ids: ids}
}

// Reset will clear out all the blocks in memory.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = make(map[string]database.BlockData)
	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through and reading blocks in memory. This implements the database
// Iterator interface.
type memoryIterator struct {
	storage *Memory  // Access to the Memory storage API.
	ids     []string // Block ids captured when the iterator was created.
	next    int      // Index of the next block id to read.
	eoc     bool     // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from memory.
func (mi *memoryIterator) Next() (database.BlockData, error) {
	if mi.eoc || mi.next >= len(mi.ids) {
		mi.eoc = true
		return database.BlockData{}, errors.New("end of chain")
	}

	blockData, err := mi.storage.GetBlock(mi.ids[mi.next])
	mi.next++

	return blockData, err
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
