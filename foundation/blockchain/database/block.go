package database

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/foldchain/blockchain/foundation/blockchain/accumulator"
	"github.com/foldchain/blockchain/foundation/blockchain/field"
	"github.com/foldchain/blockchain/foundation/blockchain/merkle"
	"github.com/foldchain/blockchain/foundation/blockchain/signature"
)

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	ParentBlockID string    `json:"parent_block_id"` // Hash of the parent block this block extends.
	Slot          uint64    `json:"slot"`            // Slot the block was produced for. Slots strictly increase along a chain.
	TimeStamp     uint64    `json:"timestamp"`       // Time the block was produced.
	ProducerID    AccountID `json:"producer"`        // Account that produced and signed this block.
	RecordsRoot   string    `json:"records_root"`    // Merkle tree root hash for the records in this block.
}

// Block represents a set of records batched together with the accumulator
// state covering the chain through this block.
type Block struct {
	Header  BlockHeader
	Records *merkle.Tree[SignedRecord]
	Proof   accumulator.State
	V       *big.Int
	R       *big.Int
	S       *big.Int
}

// ProduceBlock constructs the next block on the specified parent, commits
// the records in a merkle tree, extends the parent's accumulator with the
// new block's digest and signs the header with the producer's key.
func ProduceBlock(privateKey *ecdsa.PrivateKey, slot uint64, parent Block, records []SignedRecord, evHandler func(v string, args ...any)) (Block, error) {
	evHandler("database: ProduceBlock: slot[%d]: records[%d]", slot, len(records))

	// When producing the first block, the parent block's hash will be zero.
	parentBlockID := parent.Hash()

	// Construct a merkle tree from the records for this block. Blocks can
	// be produced without records, then the root stays zero.
	recordsRoot := signature.ZeroHash
	var tree *merkle.Tree[SignedRecord]
	if len(records) > 0 {
		var err error
		tree, err = merkle.NewTree(records)
		if err != nil {
			return Block{}, err
		}
		recordsRoot = tree.RootHex()
	}

	nb := Block{
		Header: BlockHeader{
			ParentBlockID: parentBlockID,
			Slot:          slot,
			TimeStamp:     uint64(time.Now().UTC().Unix()),
			ProducerID:    PublicKeyToAccountID(privateKey.PublicKey),
			RecordsRoot:   recordsRoot,
		},
		Records: tree,
	}

	// The accumulator commits the digest of the finished header, so the
	// proof is extended only after the header fields are final.
	proof, err := parent.Proof.Append(nb.Digest())
	if err != nil {
		return Block{}, err
	}
	nb.Proof = proof

	v, r, s, err := signature.Sign(nb.Header, privateKey)
	if err != nil {
		return Block{}, err
	}
	nb.V, nb.R, nb.S = v, r, s

	evHandler("database: ProduceBlock: slot[%d]: blk[%s]", slot, nb.Hash())

	return nb, nil
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() string {
	if b.Header.Slot == 0 {
		return signature.ZeroHash
	}

	// CORE NOTE: Hashing the block header and not the whole block so the
	// chain can be cryptographically checked by only needing block headers
	// and not full blocks with the record data. The accumulator state is
	// derived from this hash, so it stays outside the hashed header.

	return signature.Hash(b.Header)
}

// Digest returns the field element that commits this block inside the
// accumulator.
func (b Block) Digest() field.Element {
	return DigestFromHash(b.Hash())
}

// RecordValues returns the records carried by the block in committed
// order. A block produced without records returns nil.
func (b Block) RecordValues() []SignedRecord {
	if b.Records == nil {
		return nil
	}

	return b.Records.Values()
}

// FromAccount extracts the account id that signed the block.
func (b Block) FromAccount() (AccountID, error) {
	address, err := signature.FromAddress(b.Header, b.V, b.R, b.S)
	return AccountID(address), err
}

// ValidateSignature verifies the producer signature conforms to our
// standards and was produced by the account named in the header.
func (b Block) ValidateSignature() error {
	if !b.Header.ProducerID.IsAccountID() {
		return fmt.Errorf("producer account is not properly formatted")
	}

	if err := signature.VerifySignature(b.V, b.R, b.S); err != nil {
		return err
	}

	producerID, err := b.FromAccount()
	if err != nil {
		return err
	}

	if producerID != b.Header.ProducerID {
		return fmt.Errorf("block signed by %s, producer is %s", producerID, b.Header.ProducerID)
	}

	return nil
}

// ValidateRecordsRoot verifies the merkle root in the header matches the
// records carried by the block.
func (b Block) ValidateRecordsRoot() error {
	if b.Records == nil {
		if b.Header.RecordsRoot != signature.ZeroHash {
			return fmt.Errorf("records root %s for a block without records", b.Header.RecordsRoot)
		}
		return nil
	}

	if b.Header.RecordsRoot != b.Records.RootHex() {
		return fmt.Errorf("merkle root does not match records, got %s, exp %s", b.Records.RootHex(), b.Header.RecordsRoot)
	}

	return nil
}

// =============================================================================

// DigestFromHash derives the accumulator digest for a block hash. The
// first eight bytes of the hash reduce into the field.
func DigestFromHash(hash string) field.Element {
	h, err := hexutil.Decode(hash)
	if err != nil || len(h) < 8 {
		return field.Zero()
	}

	return field.New(binary.BigEndian.Uint64(h[:8]))
}

// =============================================================================

// BlockData represents what is serialized through the storage layer and
// over the wire. The consensus status rides along as chain metadata so a
// restarting node can rebuild its view.
type BlockData struct {
	Hash    string            `json:"hash"`
	Header  BlockHeader       `json:"header"`
	Records []SignedRecord    `json:"records"`
	Proof   accumulator.State `json:"proof"`
	V       *big.Int          `json:"v"`
	R       *big.Int          `json:"r"`
	S       *big.Int          `json:"s"`
	Status  string            `json:"status"`
}

// NewBlockData constructs the value to serialize.
func NewBlockData(block Block, status string) BlockData {
	bd := BlockData{
		Hash:   block.Hash(),
		Header: block.Header,
		Proof:  block.Proof,
		V:      block.V,
		R:      block.R,
		S:      block.S,
		Status: status,
	}

	if block.Records != nil {
		bd.Records = block.Records.Values()
	}

	return bd
}

// ToBlock converts a BlockData into a Block.
func ToBlock(blockData BlockData) (Block, error) {
	var tree *merkle.Tree[SignedRecord]
	if len(blockData.Records) > 0 {
		var err error
		tree, err = merkle.NewTree(blockData.Records)
		if err != nil {
			return Block{}, err
		}
	}

	nb := Block{
		Header:  blockData.Header,
		Records: tree,
		Proof:   blockData.Proof,
		V:       blockData.V,
		R:       blockData.R,
		S:       blockData.S,
	}

	return nb, nil
}
