package accumulator

import (
	"fmt"

	"github.com/foldchain/blockchain/foundation/blockchain/field"
)

// charPoly returns the coefficients, constant term first, of the monic
// polynomial whose roots are the specified digests. Multiplying in one
// linear factor at a time costs O(n^2) for n digests.
func charPoly(digests []field.Element) []field.Element {
	coeffs := make([]field.Element, 1, len(digests)+1)
	coeffs[0] = field.One()

	for _, d := range digests {
		coeffs = append(coeffs, field.Zero())
		for k := len(coeffs) - 1; k >= 1; k-- {
			coeffs[k] = coeffs[k-1].Sub(d.Mul(coeffs[k]))
		}
		coeffs[0] = coeffs[0].Mul(d.Neg())
	}

	return coeffs
}

// synthDiv divides a polynomial by the linear factor (X - d) using
// synthetic division, returning the quotient coefficients and the
// remainder. The remainder equals the polynomial evaluated at d.
func synthDiv(coeffs []field.Element, d field.Element) ([]field.Element, field.Element) {
	if len(coeffs) <= 1 {
		var rem field.Element
		if len(coeffs) == 1 {
			rem = coeffs[0]
		}
		return nil, rem
	}

	quot := make([]field.Element, len(coeffs)-1)
	quot[len(quot)-1] = coeffs[len(coeffs)-1]
	for k := len(coeffs) - 2; k >= 1; k-- {
		quot[k-1] = coeffs[k].Add(d.Mul(quot[k]))
	}
	rem := coeffs[0].Add(d.Mul(quot[0]))

	return quot, rem
}

// horner evaluates a polynomial given by its coefficients, constant term
// first, at the point x.
func horner(coeffs []field.Element, x field.Element) field.Element {
	result := field.Zero()
	for k := len(coeffs) - 1; k >= 0; k-- {
		result = result.Mul(x).Add(coeffs[k])
	}
	return result
}

// interpolate returns the coefficients of the unique polynomial of degree
// below len(xs) passing through the points (xs[i], ys[i]). It builds the
// vanishing polynomial of the x values once, then derives each Lagrange
// basis polynomial by synthetic division and scales it by its value. The
// x values must be pairwise distinct.
func interpolate(xs []field.Element, ys []field.Element) ([]field.Element, error) {
	if len(xs) != len(ys) || len(xs) == 0 {
		return nil, fmt.Errorf("interpolate %d x values against %d y values: %w", len(xs), len(ys), ErrSizeMismatch)
	}

	vanishing := charPoly(xs)
	coeffs := make([]field.Element, len(xs))

	for i := range xs {
		basis, _ := synthDiv(vanishing, xs[i])

		denom := horner(basis, xs[i])
		scale, err := ys[i].Div(denom)
		if err != nil {
			return nil, fmt.Errorf("interpolate at %v: %w", xs[i], err)
		}

		for k := range basis {
			coeffs[k] = coeffs[k].Add(scale.Mul(basis[k]))
		}
	}

	return coeffs, nil
}
