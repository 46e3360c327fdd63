package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Uint represents an unsigned 256-bit circuit value. It is the only numeric
// kind: contract quantities are naturals, never signed and never floating
// point. The zero Uint is zero and ready to use.
//
// Arithmetic never wraps silently. The Overflow and Underflow methods report
// out-of-range results so contract code can reject them explicitly.
type Uint struct {
	i uint256.Int
}

func (Uint) ledgerValue() {}

// NewUint builds a Uint from a machine word.
func NewUint(n uint64) Uint {
	var u Uint
	u.i.SetUint64(n)
	return u
}

// UintFromDecimal parses a base-10 natural of at most 256 bits.
func UintFromDecimal(s string) (Uint, error) {
	var u Uint
	if err := u.i.SetFromDecimal(s); err != nil {
		return Uint{}, fmt.Errorf("parse uint %q: %w", s, err)
	}
	return u, nil
}

// UintFromBytes32 interprets b as a big-endian 256-bit natural.
func UintFromBytes32(b [32]byte) Uint {
	var u Uint
	u.i.SetBytes32(b[:])
	return u
}

// Dec renders the value in base 10.
func (u Uint) Dec() string {
	return u.i.Dec()
}

// String renders the value in base 10.
func (u Uint) String() string {
	return u.i.Dec()
}

// Bytes32 returns the big-endian 256-bit representation.
func (u Uint) Bytes32() [32]byte {
	return u.i.Bytes32()
}

// IsZero reports whether u is zero.
func (u Uint) IsZero() bool {
	return u.i.IsZero()
}

// Uint64 converts to a machine word. ok is false when the value does not fit.
func (u Uint) Uint64() (n uint64, ok bool) {
	if !u.i.IsUint64() {
		return 0, false
	}
	return u.i.Uint64(), true
}

// Cmp compares u against v, returning -1, 0, or 1.
func (u Uint) Cmp(v Uint) int {
	return u.i.Cmp(&v.i)
}

// AddOverflow returns u+v and whether the sum wrapped past 2^256.
func (u Uint) AddOverflow(v Uint) (Uint, bool) {
	var r Uint
	_, overflow := r.i.AddOverflow(&u.i, &v.i)
	return r, overflow
}

// SubUnderflow returns u-v and whether the difference went below zero.
func (u Uint) SubUnderflow(v Uint) (Uint, bool) {
	var r Uint
	_, underflow := r.i.SubOverflow(&u.i, &v.i)
	return r, underflow
}

// MulOverflow returns u*v and whether the product wrapped past 2^256.
func (u Uint) MulOverflow(v Uint) (Uint, bool) {
	var r Uint
	_, overflow := r.i.MulOverflow(&u.i, &v.i)
	return r, overflow
}
