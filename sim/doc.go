// Package sim implements the contract execution simulator core: the state
// threading machinery that lets test code invoke compiled circuit operations
// against an in-memory execution context, with no ledger node, prover, or
// wallet anywhere nearby.
//
// A simulator instance owns exactly one execution context. Every call on the
// instance routes through a dispatch table entry that adapts "take a context,
// return a context and result" circuit operations into "take arguments,
// return a result" calls. Impure entries commit the returned context; pure
// entries discard it. A failed call commits nothing, so from the outside a
// failed call never happened.
//
// Execution is single-threaded and fully synchronous by construction. There
// are no locks: calls on one instance cannot overlap, and two instances
// share no state. Do not drive one instance from multiple goroutines.
//
// The core never logs and never validates circuit arguments or witness table
// shapes. Errors originate in the compiled modules and propagate unchanged
// to the test framework's assertion layer.
package sim
