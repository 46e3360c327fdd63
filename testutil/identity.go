// Package testutil provides deterministic fixtures for contract simulator
// tests: named caller identities and literal helpers that keep scenarios and
// golden files reproducible across runs.
package testutil

import (
	"crypto/ed25519"

	"golang.org/x/crypto/blake2b"

	"github.com/quietforge/circuitsim/ledger"
)

// identityDomain separates identity seeds from every other DomainHash use.
const identityDomain = "circuitsim/identity"

// Identity derives a deterministic test address from a human-readable name.
// The name seeds an ed25519 key and the address is the blake2b digest of the
// public key, the same shape addresses take outside of tests. The same name
// always yields the same address, so scenarios can say "alice" and mean it.
func Identity(name string) ledger.Address {
	seed := ledger.DomainHash(identityDomain, []byte(name))
	pub := ed25519.NewKeyFromSeed(seed[:]).Public().(ed25519.PublicKey)
	return ledger.Address(blake2b.Sum256(pub))
}

// Identities derives one address per name, in order.
func Identities(names ...string) []ledger.Address {
	out := make([]ledger.Address, len(names))
	for i, name := range names {
		out[i] = Identity(name)
	}
	return out
}

// MustUint parses a decimal literal or panics. For test fixtures only.
func MustUint(dec string) ledger.Uint {
	u, err := ledger.UintFromDecimal(dec)
	if err != nil {
		panic("testutil: bad uint literal: " + err.Error())
	}
	return u
}
