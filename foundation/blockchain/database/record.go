package database

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/foldchain/blockchain/foundation/blockchain/signature"
)

// Record is the minimal state transition between two parties that a block
// can commit. There is no balance model behind it, the chain only orders
// and attests records.
type Record struct {
	ChainID uint16    `json:"chain_id"` // The chain the record is intended for, to stop replays across chains.
	Nonce   uint64    `json:"nonce"`    // Unique id for the record supplied by the submitter.
	ToID    AccountID `json:"to"`       // Account receiving the transition.
	Value   uint64    `json:"value"`    // Value moved by this transition.
}

// NewRecord constructs a new record.
func NewRecord(chainID uint16, nonce uint64, toID AccountID, value uint64) (Record, error) {
	if !toID.IsAccountID() {
		return Record{}, fmt.Errorf("to account is not properly formatted")
	}

	rec := Record{
		ChainID: chainID,
		Nonce:   nonce,
		ToID:    toID,
		Value:   value,
	}

	return rec, nil
}

// Sign uses the specified private key to sign the record.
func (rec Record) Sign(privateKey *ecdsa.PrivateKey) (SignedRecord, error) {
	if !rec.ToID.IsAccountID() {
		return SignedRecord{}, fmt.Errorf("to account is not properly formatted")
	}

	v, r, s, err := signature.Sign(rec, privateKey)
	if err != nil {
		return SignedRecord{}, err
	}

	signedRec := SignedRecord{
		Record: rec,
		V:      v,
		R:      r,
		S:      s,
	}

	return signedRec, nil
}

// =============================================================================

// SignedRecord is a signed version of the record. This is how clients
// provide records for inclusion into a block.
type SignedRecord struct {
	Record
	V *big.Int `json:"v"` // Recovery identifier carrying the fold id.
	R *big.Int `json:"r"` // First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Second coordinate of the ECDSA signature.
}

// Validate verifies the record has a proper signature that conforms to our
// standards and is intended for this chain.
func (rec SignedRecord) Validate(chainID uint16) error {
	if rec.ChainID != chainID {
		return fmt.Errorf("record invalid, wrong chain id, got %d, exp %d", rec.ChainID, chainID)
	}

	if !rec.ToID.IsAccountID() {
		return errors.New("invalid account for to account")
	}

	if err := signature.VerifySignature(rec.V, rec.R, rec.S); err != nil {
		return err
	}

	return nil
}

// FromAccount extracts the account id that signed the record.
func (rec SignedRecord) FromAccount() (AccountID, error) {
	address, err := signature.FromAddress(rec.Record, rec.V, rec.R, rec.S)
	return AccountID(address), err
}

// SignatureString returns the signature as a string.
func (rec SignedRecord) SignatureString() string {
	return signature.SignatureString(rec.V, rec.R, rec.S)
}

// String implements the fmt.Stringer interface for logging.
func (rec SignedRecord) String() string {
	from, err := rec.FromAccount()
	if err != nil {
		from = "unknown"
	}

	return fmt.Sprintf("%s:%d", from, rec.Nonce)
}

// =============================================================================

// Hash implements the merkle Hashable interface for providing a hash of a
// signed record.
func (rec SignedRecord) Hash() ([]byte, error) {
	str := signature.Hash(rec)
	return hex.DecodeString(str[2:])
}

// Equals implements the merkle Hashable interface for providing an
// equality check between two records. If the nonce and signatures are the
// same, the two records are the same.
func (rec SignedRecord) Equals(otherRec SignedRecord) bool {
	recSig := signature.ToSignatureBytes(rec.V, rec.R, rec.S)
	otherRecSig := signature.ToSignatureBytes(otherRec.V, otherRec.R, otherRec.S)

	return rec.Nonce == otherRec.Nonce && bytes.Equal(recSig, otherRecSig)
}
