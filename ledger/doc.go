// Package ledger provides the value model and contract state tree shared by
// compiled contract modules and the simulator core.
//
// This package contains value types and canonical encodings only. Every other
// package in this module imports ledger; ledger imports nothing from the
// module. That keeps it the foundational layer with no dependency cycles.
//
// Key design constraints:
//   - NO float kinds and NO null kinds anywhere - both break determinism
//   - Numbers are unsigned 256-bit naturals with explicit overflow reporting
//   - Canonical JSON follows RFC 8785 (UTF-16 key order, NFC strings)
//   - Values and state trees are immutable; updates return copies
package ledger
