// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/foldchain/blockchain/foundation/blockchain/accumulator"
)

// DefaultPath is where the genesis file is expected when no path is
// configured.
const DefaultPath = "zblock/genesis.json"

// Genesis represents the genesis file.
type Genesis struct {
	Date              time.Time `json:"date"`
	ChainID           uint16    `json:"chain_id"`           // The chain id represents an unique id for this running instance.
	SlotDuration      uint64    `json:"slot_duration"`      // Number of seconds between consecutive slots.
	DensityWindow     uint64    `json:"density_window"`     // Number of trailing slots a chain is scored over.
	ConfirmationDepth uint64    `json:"confirmation_depth"` // Number of slots the head chain must hold maximal density before burial finalizes blocks.
	RecordsPerBlock   uint16    `json:"records_per_block"`  // The maximum number of records that can be in a block.
	DomainSize        int       `json:"domain_size"`        // Number of evaluation points an accumulator state carries.
	ExtensionFactor   int       `json:"extension_factor"`   // Inverse rate of the accumulator code.
}

// AccumulatorParams returns the accumulator shape declared by the genesis.
func (g Genesis) AccumulatorParams() accumulator.Params {
	return accumulator.Params{
		DomainSize:      g.DomainSize,
		ExtensionFactor: g.ExtensionFactor,
	}
}

// Validate checks the genesis declares a runnable chain.
func (g Genesis) Validate() error {
	if g.SlotDuration == 0 {
		return fmt.Errorf("slot duration must be positive")
	}
	if g.DensityWindow == 0 {
		return fmt.Errorf("density window must be positive")
	}
	if g.ConfirmationDepth == 0 {
		return fmt.Errorf("confirmation depth must be positive")
	}
	if g.RecordsPerBlock == 0 {
		return fmt.Errorf("records per block must be positive")
	}
	if err := g.AccumulatorParams().Validate(); err != nil {
		return err
	}
	return nil
}

// =============================================================================

// Load opens and consumes the genesis file from the default path.
func Load() (Genesis, error) {
	return LoadFromFile(DefaultPath)
}

// LoadFromFile opens and consumes the specified genesis file.
func LoadFromFile(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, fmt.Errorf("genesis file %s: %w", path, err)
	}

	return genesis, nil
}
