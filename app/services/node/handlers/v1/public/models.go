package public

import (
	"math/big"

	"github.com/foldchain/blockchain/foundation/blockchain/accumulator"
	"github.com/foldchain/blockchain/foundation/blockchain/consensus"
	"github.com/foldchain/blockchain/foundation/blockchain/database"
	"github.com/foldchain/blockchain/foundation/blockchain/field"
)

// newRecord is what a client submits to the pool. The signature parts
// must be present or the signature math panics on a nil big.Int.
type newRecord struct {
	ChainID uint16   `json:"chain_id" validate:"required"`
	Nonce   uint64   `json:"nonce" validate:"required"`
	To      string   `json:"to" validate:"required"`
	Value   uint64   `json:"value"`
	V       *big.Int `json:"v" validate:"required"`
	R       *big.Int `json:"r" validate:"required"`
	S       *big.Int `json:"s" validate:"required"`
}

func toSignedRecord(app newRecord) database.SignedRecord {
	return database.SignedRecord{
		Record: database.Record{
			ChainID: app.ChainID,
			Nonce:   app.Nonce,
			ToID:    database.AccountID(app.To),
			Value:   app.Value,
		},
		V: app.V,
		R: app.R,
		S: app.S,
	}
}

type record struct {
	FromAccount database.AccountID `json:"from"`
	FromName    string             `json:"from_name"`
	To          database.AccountID `json:"to"`
	ToName      string             `json:"to_name"`
	ChainID     uint16             `json:"chain_id"`
	Nonce       uint64             `json:"nonce"`
	Value       uint64             `json:"value"`
	Sig         string             `json:"sig"`
}

type block struct {
	Hash          string             `json:"hash"`
	ParentBlockID string             `json:"parent_block_id"`
	ProducerID    database.AccountID `json:"producer"`
	ProducerName  string             `json:"producer_name"`
	Slot          uint64             `json:"slot"`
	TimeStamp     uint64             `json:"timestamp"`
	RecordsRoot   string             `json:"records_root"`
	Status        string             `json:"status"`
	Records       []record           `json:"records"`
}

type head struct {
	Hash    string           `json:"hash"`
	Slot    uint64           `json:"slot"`
	Density float64          `json:"density"`
	Window  consensus.Window `json:"window"`
	Pool    int              `json:"pool"`
}

type blockStatus struct {
	Hash    string  `json:"hash"`
	Status  string  `json:"status"`
	Density float64 `json:"density"`
}

type membershipProof struct {
	BlockID string              `json:"block_id"`
	Digest  field.Element       `json:"digest"`
	Witness accumulator.Witness `json:"witness"`
	State   accumulator.State   `json:"state"`
}

type verifyRequest struct {
	State   accumulator.State   `json:"state"`
	Digest  field.Element       `json:"digest"`
	Witness accumulator.Witness `json:"witness"`
}

type verifyResponse struct {
	Verified bool `json:"verified"`
}
