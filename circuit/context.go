package circuit

import "github.com/quietforge/circuitsim/ledger"

// LocalState carries the call-local portion of an execution context: the
// identity a circuit observes as its caller.
type LocalState struct {
	Identity ledger.Address
}

// NewLocalState builds a LocalState for the given identity.
func NewLocalState(id ledger.Address) LocalState {
	return LocalState{Identity: id}
}

// TxContext is the transaction-shaped view a circuit writes through: the
// ledger state it operates on and the address of the contract instance.
type TxContext struct {
	State   *ledger.StateTree
	Address ledger.Address
}

// Context is the execution context threaded through every circuit call. It is
// a plain value: copying it snapshots the call boundary, and because state
// trees are immutable the copy shares structure safely.
//
// Original is the ledger state as of call entry. Observing circuits read it.
// Mutating circuits write through Tx.State and return a context whose
// Original matches the new Tx.State, so at every commit boundary the two
// views agree.
//
// Private holds the module's private state. The simulator core never looks
// inside it. Modules must treat the stored value as immutable and return
// replacements rather than mutate in place, otherwise a failed call could
// leave effects behind.
type Context struct {
	Original *ledger.StateTree
	Private  any
	Local    LocalState
	Tx       TxContext
}

// WithLocal returns a copy of ctx with the local portion replaced. The
// receiver is unchanged, which is what keeps a caller override scoped to a
// single call.
func (ctx Context) WithLocal(local LocalState) Context {
	ctx.Local = local
	return ctx
}

// WithState returns a copy of ctx whose transaction state and committed view
// both point at tree. Mutating circuits use it to build the context they
// return, which keeps the two views in agreement at every commit boundary.
func (ctx Context) WithState(tree *ledger.StateTree) Context {
	ctx.Tx.State = tree
	ctx.Original = tree
	return ctx
}

// WithPrivate returns a copy of ctx with the private portion replaced.
func (ctx Context) WithPrivate(private any) Context {
	ctx.Private = private
	return ctx
}

// Result is what a circuit invocation produces: the successor context and the
// produced value. For pure circuits the context is ignored by the caller;
// for impure circuits it replaces the current context on success.
type Result struct {
	Context Context
	Value   ledger.Value
}

// ConstructorContext is handed to a module's InitialState: the private state
// to seed the instance with and the local scope of the deployer.
type ConstructorContext struct {
	Private any
	Local   LocalState
}

// InitialState is what a module constructor produces.
type InitialState struct {
	Private any
	State   *ledger.StateTree
	Local   LocalState
}
