package ledger

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// Value is a sealed interface over the kinds a circuit can exchange with the
// simulator. Only Bool, Uint, Bytes, Str, Address, List, and Map implement it.
// NO float kind and NO null kind exist: circuits must stay deterministic, and
// absence is modeled by Map.Without rather than by a null marker.
type Value interface {
	ledgerValue() // Sealed - only the types in this package implement it
}

// Bool represents a boolean circuit value.
type Bool bool

func (Bool) ledgerValue() {}

// Str represents a text circuit value. Strings are NFC normalized at
// canonical encoding boundaries, not at construction.
type Str string

func (Str) ledgerValue() {}

// Bytes represents an opaque byte-string circuit value. Treat a Bytes value
// as immutable once constructed; NewBytes copies its input for that reason.
type Bytes []byte

func (Bytes) ledgerValue() {}

// AddressLen is the width of a contract or caller address in bytes.
const AddressLen = 32

// Address identifies a contract instance or a caller.
type Address [AddressLen]byte

func (Address) ledgerValue() {}

// List represents an ordered sequence of values. Lists double as composite
// map keys, for example an (owner, spender) allowance key.
type List []Value

func (List) ledgerValue() {}

// NewBool creates a Bool value.
func NewBool(b bool) Bool {
	return Bool(b)
}

// NewStr creates a Str value.
func NewStr(s string) Str {
	return Str(s)
}

// NewBytes creates a Bytes value from a copy of b.
func NewBytes(b []byte) Bytes {
	return Bytes(bytes.Clone(b))
}

// NewList creates a List from values.
func NewList(vals ...Value) List {
	return List(vals)
}

// ZeroAddress is the all-zero address. Contracts commonly reject it as a
// transfer or ownership target, and renouncing ownership assigns it.
var ZeroAddress Address

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String renders the address as 0x-prefixed lowercase hex.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// AddressFromBytes builds an Address from exactly AddressLen bytes.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressLen {
		return Address{}, fmt.Errorf("address must be %d bytes, got %d", AddressLen, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// ParseAddress parses a 0x-prefixed hex address as produced by String.
func ParseAddress(s string) (Address, error) {
	hexPart, ok := strings.CutPrefix(s, "0x")
	if !ok {
		return Address{}, fmt.Errorf("address %q missing 0x prefix", s)
	}
	b, err := hex.DecodeString(hexPart)
	if err != nil {
		return Address{}, fmt.Errorf("address %q: %w", s, err)
	}
	return AddressFromBytes(b)
}

// Equal reports whether two values are identical. Equality is defined over
// the canonical binary encoding, which is injective across kinds, so a Bytes
// value never equals the Str value with the same bytes.
func Equal(a, b Value) bool {
	return bytes.Equal(Encode(a), Encode(b))
}

// Compare orders two values by their canonical binary encoding. The order is
// total and deterministic; Map uses it for entry ordering.
func Compare(a, b Value) int {
	return bytes.Compare(Encode(a), Encode(b))
}
