// Package accumulator implements a Reed-Solomon style proof accumulator
// over the field package's Mersenne prime. The digests committed so far
// form the roots of a characteristic polynomial, and an accumulator state
// is the codeword of that polynomial evaluated across a fixed public
// domain. The state therefore has a constant size set by the domain, no
// matter how many digests it commits.
//
// Folding two states multiplies their codewords pointwise, which is the
// codeword of the product polynomial committing the combined digests.
// Field multiplication makes the operation associative and commutative,
// and the empty state evaluates to one everywhere, so folding is safe to
// reorder and parallelize.
//
// The degree bound is DomainSize / ExtensionFactor. Witness generation
// walks the committed digest list, so proving costs O(n k) while append,
// fold and the resulting proofs stay O(k). The field order 2^31 - 1 has
// only a single factor of two in its multiplicative group, so there is no
// radix-2 FFT shortcut over this domain.
package accumulator

import (
	"errors"
	"fmt"

	"github.com/foldchain/blockchain/foundation/blockchain/field"
)

// Default accumulator shape. A domain of 256 points at rate 1/4 bounds
// the committed set at 64 digests and leaves 192 points for the
// low-degree check.
var DefaultParams = Params{
	DomainSize:      256,
	ExtensionFactor: 4,
}

// Set of errors the accumulator operations can return. Verification never
// returns an error, it reports false instead.
var (
	ErrDegreeExceeded   = errors.New("accumulator: committed digests exceed the bounded degree")
	ErrMembershipFailed = errors.New("accumulator: digest is not attested by this accumulator")
	ErrSizeMismatch     = errors.New("accumulator: accumulator shapes differ")
)

// =============================================================================

// Params declares the shape of an accumulator: how many domain points a
// state carries and the inverse rate reserving points for the low-degree
// check.
type Params struct {
	DomainSize      int `json:"domain_size"`
	ExtensionFactor int `json:"extension_factor"`
}

// Validate checks the parameters describe a usable accumulator shape.
func (p Params) Validate() error {
	if p.DomainSize <= 0 {
		return fmt.Errorf("domain size %d must be positive", p.DomainSize)
	}
	if p.ExtensionFactor < 2 {
		return fmt.Errorf("extension factor %d must be at least 2", p.ExtensionFactor)
	}
	if p.DomainSize%p.ExtensionFactor != 0 {
		return fmt.Errorf("domain size %d must be a multiple of the extension factor %d", p.DomainSize, p.ExtensionFactor)
	}
	if uint64(p.DomainSize) >= field.Prime {
		return fmt.Errorf("domain size %d must be below the field order", p.DomainSize)
	}
	return nil
}

// MaxDegree returns the largest number of digests an accumulator of this
// shape can commit.
func (p Params) MaxDegree() int {
	return p.DomainSize / p.ExtensionFactor
}

// =============================================================================

// State represents an accumulator at a point in time: the codeword of the
// characteristic polynomial of the committed digests plus how many digests
// it commits. States are immutable, operations return fresh values and
// proofs taken against an older state stay valid.
type State struct {
	Evals           []field.Element `json:"evals"`
	Count           int             `json:"count"`
	ExtensionFactor int             `json:"extension_factor"`
}

// New constructs the empty accumulator for the given shape. The empty
// characteristic polynomial is the constant one, so every evaluation
// starts at one.
func New(params Params) (State, error) {
	if err := params.Validate(); err != nil {
		return State{}, fmt.Errorf("accumulator params: %w", err)
	}

	evals := make([]field.Element, params.DomainSize)
	for i := range evals {
		evals[i] = field.One()
	}

	return State{
		Evals:           evals,
		Count:           0,
		ExtensionFactor: params.ExtensionFactor,
	}, nil
}

// maxDegree returns the degree bound for this state. A state decoded from
// an untrusted source can carry a nonsense shape, in which case the bound
// is zero and every operation on it refuses to proceed.
func (s State) maxDegree() int {
	if s.ExtensionFactor < 2 || len(s.Evals) == 0 {
		return 0
	}
	return len(s.Evals) / s.ExtensionFactor
}

// Append commits one more digest, multiplying every evaluation by the
// linear factor the digest roots. The receiver is left untouched.
func (s State) Append(digest field.Element) (State, error) {
	if s.Count >= s.maxDegree() {
		return State{}, fmt.Errorf("append digest %v at count %d: %w", digest, s.Count, ErrDegreeExceeded)
	}

	evals := make([]field.Element, len(s.Evals))
	for i := range s.Evals {
		x := field.New(uint64(i))
		evals[i] = s.Evals[i].Mul(x.Sub(digest))
	}

	return State{
		Evals:           evals,
		Count:           s.Count + 1,
		ExtensionFactor: s.ExtensionFactor,
	}, nil
}

// Fold merges two accumulators of the same shape into one committing the
// union of their digests. The pointwise product keeps the result the same
// size as the inputs, and reordering or regrouping folds cannot change it.
func Fold(a State, b State) (State, error) {
	if len(a.Evals) != len(b.Evals) || a.ExtensionFactor != b.ExtensionFactor {
		return State{}, fmt.Errorf("fold %d/%d evals: %w", len(a.Evals), len(b.Evals), ErrSizeMismatch)
	}

	if a.Count+b.Count > a.maxDegree() {
		return State{}, fmt.Errorf("fold %d and %d digests: %w", a.Count, b.Count, ErrDegreeExceeded)
	}

	evals := make([]field.Element, len(a.Evals))
	for i := range a.Evals {
		evals[i] = a.Evals[i].Mul(b.Evals[i])
	}

	return State{
		Evals:           evals,
		Count:           a.Count + b.Count,
		ExtensionFactor: a.ExtensionFactor,
	}, nil
}

// Accumulate commits an ordered list of digests one append at a time.
func Accumulate(params Params, digests []field.Element) (State, error) {
	state, err := New(params)
	if err != nil {
		return State{}, err
	}

	for _, digest := range digests {
		state, err = state.Append(digest)
		if err != nil {
			return State{}, err
		}
	}

	return state, nil
}

// Equal reports whether two states commit the same polynomial over the
// same shape.
func (s State) Equal(b State) bool {
	if s.Count != b.Count || s.ExtensionFactor != b.ExtensionFactor || len(s.Evals) != len(b.Evals) {
		return false
	}

	for i := range s.Evals {
		if !s.Evals[i].Equal(b.Evals[i]) {
			return false
		}
	}

	return true
}
