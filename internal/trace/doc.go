// Package trace stores the call trace a harness run produces: one record per
// circuit invocation and one per outcome, in a SQLite database. Harness runs
// open an in-memory database each, so traces are per-run and die with the
// run; the package exists so trace assertions can be expressed as SQL
// instead of slice walking.
//
// Records are content-addressed: an ID is the hash of the record's own
// fields, so writing the same record twice is a no-op and two identical runs
// produce identical IDs.
package trace
