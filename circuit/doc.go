// Package circuit defines the boundary between compiled contract modules and
// the simulator core.
//
// A compiled module presents two dispatch surfaces: pure circuits, invoked
// for their produced value alone, and impure circuits, whose returned
// execution context replaces the current one on success. Witness functions
// are the module's inbound hooks for private-world data; rebinding them
// produces a fresh module while the execution context survives.
//
// The simulator core treats everything here as opaque. It never inspects
// ledger fields, private state, or argument shapes. Validation lives in the
// modules themselves, which is why a malformed call surfaces as a module
// error rather than a simulator error.
package circuit
