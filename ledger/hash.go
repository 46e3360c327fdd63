package ledger

import "golang.org/x/crypto/blake2b"

// DomainHash computes blake2b-256 over a domain-separated payload. The domain
// string and a zero byte prefix the data, so digests from different uses can
// never collide. Instance addresses and test identities derive from it.
func DomainHash(domain string, data []byte) [32]byte {
	payload := make([]byte, 0, len(domain)+1+len(data))
	payload = append(payload, domain...)
	payload = append(payload, 0)
	payload = append(payload, data...)
	return blake2b.Sum256(payload)
}
