package accumulator

import (
	"fmt"

	"github.com/foldchain/blockchain/foundation/blockchain/field"
)

// Witness attests that a single digest is committed by an accumulator. It
// carries the codeword of the cofactor polynomial, the committed set with
// the attested digest divided out, so it has the same constant size as the
// state it belongs to.
type Witness struct {
	Evals []field.Element `json:"evals"`
	Count int             `json:"count"`
}

// Prove generates the membership witness for a digest against the full
// ordered digest list an accumulator was built from. The characteristic
// polynomial is divided by the digest's linear factor and the quotient is
// evaluated across the domain, costing O(n k). Proving does not check
// membership itself: a witness generated for a digest outside the list
// keeps the division remainder and fails verification everywhere.
func Prove(params Params, digests []field.Element, digest field.Element) (Witness, error) {
	if err := params.Validate(); err != nil {
		return Witness{}, fmt.Errorf("accumulator params: %w", err)
	}

	if len(digests) == 0 {
		return Witness{}, fmt.Errorf("prove against an empty digest list: %w", ErrMembershipFailed)
	}

	if len(digests) > params.MaxDegree() {
		return Witness{}, fmt.Errorf("prove across %d digests: %w", len(digests), ErrDegreeExceeded)
	}

	quot, _ := synthDiv(charPoly(digests), digest)

	evals := make([]field.Element, params.DomainSize)
	for i := range evals {
		evals[i] = horner(quot, field.New(uint64(i)))
	}

	return Witness{
		Evals: evals,
		Count: len(digests) - 1,
	}, nil
}

// Verify reports whether the witness proves the digest is committed by the
// state. It never returns an error: malformed, oversized or forged inputs
// simply report false. The check has three parts. The committed count must
// sit inside the degree bound, which rejects adversarial accumulators
// claiming membership past the bounded degree. Every domain point must
// satisfy witness * (x - digest) == state, which rejects witnesses for
// digests the state does not commit. And the witness itself must be a
// codeword of a polynomial within its own degree bound, checked by
// interpolating the first count points and comparing the extension, which
// rejects witnesses manufactured by pointwise division.
func Verify(state State, digest field.Element, w Witness) bool {
	if state.Count <= 0 || state.Count > state.maxDegree() {
		return false
	}

	if len(w.Evals) != len(state.Evals) || w.Count != state.Count-1 {
		return false
	}

	for i := range state.Evals {
		x := field.New(uint64(i))
		if !w.Evals[i].Mul(x.Sub(digest)).Equal(state.Evals[i]) {
			return false
		}
	}

	points := state.Count
	xs := make([]field.Element, points)
	for i := range xs {
		xs[i] = field.New(uint64(i))
	}

	coeffs, err := interpolate(xs, w.Evals[:points])
	if err != nil {
		return false
	}

	for i := points; i < len(w.Evals); i++ {
		if !horner(coeffs, field.New(uint64(i))).Equal(w.Evals[i]) {
			return false
		}
	}

	return true
}
