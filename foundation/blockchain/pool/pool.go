// Package pool maintains the cache of submitted records waiting to be
// batched into a block.
package pool

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/foldchain/blockchain/foundation/blockchain/database"
)

// Pool represents a cache of records organized by account:nonce.
type Pool struct {
	mu   sync.RWMutex
	pool map[string]database.SignedRecord
}

// New constructs a new record pool for use.
func New() (*Pool, error) {
	p := Pool{
		pool: make(map[string]database.SignedRecord),
	}

	return &p, nil
}

// Count returns the current number of records in the pool.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.pool)
}

// Upsert adds or replaces a record in the pool. A record resubmitted with
// an account and nonce already present takes the old one's place.
func (p *Pool) Upsert(rec database.SignedRecord) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key, err := mapKey(rec)
	if err != nil {
		return 0, err
	}

	p.pool[key] = rec

	return len(p.pool), nil
}

// Delete removes a record from the pool.
func (p *Pool) Delete(rec database.SignedRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key, err := mapKey(rec)
	if err != nil {
		return err
	}

	delete(p.pool, key)

	return nil
}

// Truncate clears all the records from the pool.
func (p *Pool) Truncate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pool = make(map[string]database.SignedRecord)
}

// PickBest returns up to the specified number of records for the next
// block, lowest nonce first within each account and accounts served round
// robin so one busy sender cannot starve the rest. Passing -1 returns
// every record in the pool.
func (p *Pool) PickBest(howMany int) []database.SignedRecord {

	// Group the records by account under the read lock.
	m := make(map[string][]database.SignedRecord)
	p.mu.RLock()
	{
		if howMany == -1 {
			howMany = len(p.pool)
		}

		for key, rec := range p.pool {
			account := strings.Split(key, ":")[0]
			m[account] = append(m[account], rec)
		}
	}
	p.mu.RUnlock()

	accounts := make([]string, 0, len(m))
	for account, recs := range m {
		accounts = append(accounts, account)
		sort.Slice(recs, func(i, j int) bool {
			return recs[i].Nonce < recs[j].Nonce
		})
	}
	sort.Strings(accounts)

	var picked []database.SignedRecord
	for rank := 0; len(picked) < howMany; rank++ {
		taken := false
		for _, account := range accounts {
			recs := m[account]
			if rank >= len(recs) {
				continue
			}

			picked = append(picked, recs[rank])
			taken = true
			if len(picked) == howMany {
				break
			}
		}

		if !taken {
			break
		}
	}

	return picked
}

// =============================================================================

// mapKey is used to generate the map key.
func mapKey(rec database.SignedRecord) (string, error) {
	account, err := rec.FromAccount()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s:%d", account, rec.Nonce), nil
}
