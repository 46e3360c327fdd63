// Package harness runs YAML conformance scenarios against registered
// contract simulators. A scenario deploys a contract, drives a sequence of
// circuit calls under chosen caller identities, checks per-step
// expectations, and evaluates trace and ledger assertions against the
// recorded call trace.
//
// Every run is isolated: a fresh simulator instance, a fresh in-memory trace
// store, a fresh logical clock. With a fixed run token the full trace is
// byte-reproducible, which is what the golden-file helpers build on.
package harness
