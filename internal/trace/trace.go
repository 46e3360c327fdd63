package trace

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/quietforge/circuitsim/ledger"
)

// Outcome status values.
const (
	StatusOK  = "ok"
	StatusErr = "err"
)

// Domain separators for content-addressed record IDs.
const (
	invocationDomain = "circuitsim/trace/invocation"
	outcomeDomain    = "circuitsim/trace/outcome"
)

// Invocation is one circuit call as recorded. Args holds the canonical JSON
// of the argument list and Caller the 0x-hex caller address, so rows compare
// bytewise across runs.
type Invocation struct {
	ID       string
	RunToken string
	Circuit  string
	Caller   string
	Args     string
	Seq      int64
}

// Outcome is the completion of one invocation: ok with a result, or err with
// the error text. Result holds canonical JSON, or "" for circuits that
// return nothing.
type Outcome struct {
	ID           string
	InvocationID string
	Status       string
	Result       string
	Error        string
	Seq          int64
}

// InvocationID computes the content-addressed ID of an invocation from its
// fields. The same call in the same position always hashes the same.
func InvocationID(runToken, circuit, caller, args string, seq int64) string {
	return recordID(invocationDomain, []string{runToken, circuit, caller, args}, seq)
}

// OutcomeID computes the content-addressed ID of an outcome.
func OutcomeID(invocationID, status, result, errText string, seq int64) string {
	return recordID(outcomeDomain, []string{invocationID, status, result, errText}, seq)
}

// recordID hashes length-prefixed fields plus the seq under a domain tag.
// Length prefixes keep adjacent fields from running together.
func recordID(domain string, fields []string, seq int64) string {
	var payload []byte
	for _, f := range fields {
		payload = binary.AppendUvarint(payload, uint64(len(f)))
		payload = append(payload, f...)
	}
	payload = binary.AppendVarint(payload, seq)
	sum := ledger.DomainHash(domain, payload)
	return hex.EncodeToString(sum[:])
}
