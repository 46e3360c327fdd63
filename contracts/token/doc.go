// Package token is a compiled-module binding for a fungible token with an
// allowance mechanism. The deployer identity becomes the minting admin.
// Balances and allowances live in ledger maps that drop zero entries, so an
// account that was emptied and an account that never held anything produce
// the same state tree.
//
// All arithmetic is overflow-checked 256-bit; a transfer, mint, or burn that
// would wrap fails the call and commits nothing.
package token
