// Package field implements arithmetic over the prime field GF(p) for the
// Mersenne prime p = 2^31 - 1. Elements are immutable values kept in the
// canonical range [0, p), so they can be shared between goroutines without
// synchronization. Products of two canonical elements fit in a uint64,
// which keeps every operation free of big-integer math.
package field

import (
	"errors"
	"fmt"
	"strconv"
)

// Prime is the field order, the Mersenne prime 2^31 - 1.
const Prime uint64 = 1<<31 - 1

// ErrZeroInverse is returned when the multiplicative inverse of zero is
// requested. Zero has no inverse in any field.
var ErrZeroInverse = errors.New("field: zero has no multiplicative inverse")

// ErrOutOfRange is returned by the strict constructors when a value is not
// in the canonical range [0, Prime). Persisted values are decoded through
// the strict path so corruption is surfaced instead of silently reduced.
var ErrOutOfRange = errors.New("field: value outside canonical range")

// Element represents a single field element. The zero value is the additive
// identity and is ready to use.
type Element struct {
	v uint64
}

// New constructs an element from an arbitrary unsigned value, reducing it
// modulo the field order.
func New(v uint64) Element {
	return Element{v: v % Prime}
}

// Parse constructs an element from a value that must already be canonical.
// It fails with ErrOutOfRange when the value is >= Prime.
func Parse(v uint64) (Element, error) {
	if v >= Prime {
		return Element{}, fmt.Errorf("parse %d: %w", v, ErrOutOfRange)
	}
	return Element{v: v}, nil
}

// Zero returns the additive identity.
func Zero() Element {
	return Element{}
}

// One returns the multiplicative identity.
func One() Element {
	return Element{v: 1}
}

// IsZero reports whether the element is the additive identity.
func (e Element) IsZero() bool {
	return e.v == 0
}

// Equal reports whether two elements represent the same value.
func (e Element) Equal(b Element) bool {
	return e.v == b.v
}

// Uint64 returns the canonical representative of the element.
func (e Element) Uint64() uint64 {
	return e.v
}

// Add returns e + b mod p.
func (e Element) Add(b Element) Element {
	return Element{v: (e.v + b.v) % Prime}
}

// Sub returns e - b mod p.
func (e Element) Sub(b Element) Element {
	return Element{v: (e.v + Prime - b.v) % Prime}
}

// Neg returns -e mod p.
func (e Element) Neg() Element {
	if e.v == 0 {
		return Element{}
	}
	return Element{v: Prime - e.v}
}

// Mul returns e * b mod p. Both factors are below 2^31 so the product
// fits a uint64 before reduction.
func (e Element) Mul(b Element) Element {
	return Element{v: (e.v * b.v) % Prime}
}

// Exp returns e raised to the given power via square and multiply.
func (e Element) Exp(power uint64) Element {
	result := One()
	base := e
	for power > 0 {
		if power&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		power >>= 1
	}
	return result
}

// Inverse returns the multiplicative inverse e^(p-2) per Fermat's little
// theorem. It fails with ErrZeroInverse when e is zero.
func (e Element) Inverse() (Element, error) {
	if e.v == 0 {
		return Element{}, ErrZeroInverse
	}
	return e.Exp(Prime - 2), nil
}

// Div returns e / b mod p. It fails with ErrZeroInverse when b is zero.
func (e Element) Div(b Element) (Element, error) {
	inv, err := b.Inverse()
	if err != nil {
		return Element{}, err
	}
	return e.Mul(inv), nil
}

// String implements the fmt.Stringer interface.
func (e Element) String() string {
	return strconv.FormatUint(e.v, 10)
}

// MarshalJSON implements the json.Marshaler interface. Elements encode as
// their canonical decimal value so any serialized form is deterministic.
func (e Element) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, e.v, 10), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface using the strict
// range check.
func (e *Element) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("unable to decode field element: %w", err)
	}

	elem, err := Parse(v)
	if err != nil {
		return err
	}

	*e = elem
	return nil
}
