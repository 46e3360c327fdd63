package circuit

import "github.com/quietforge/circuitsim/ledger"

// Operation is one compiled circuit. It receives the execution context and
// the call arguments and produces a result. An operation never mutates the
// context it receives; a mutating circuit builds its successor context into
// the Result. An error means the call failed and nothing of it may persist.
type Operation func(ctx Context, args ...ledger.Value) (Result, error)

// Table maps circuit names to operations.
type Table map[string]Operation

// Module is a compiled contract bound to a witness table. The simulator core
// drives it exclusively through this interface.
type Module interface {
	// Circuits returns the pure operations, invoked for their value alone.
	Circuits() Table

	// ImpureCircuits returns the mutating operations, whose returned
	// context replaces the current one when the call succeeds.
	ImpureCircuits() Table

	// InitialState runs the contract constructor and produces the starting
	// portions of the instance's execution context.
	InitialState(cctx ConstructorContext, args ...ledger.Value) (InitialState, error)
}

// ModuleFactory binds a witness table into a fresh Module. Swapping witnesses
// at runtime reruns the factory. Ledger and private state survive the swap
// because they live in the execution context, not in the module.
type ModuleFactory func(witnesses WitnessTable) (Module, error)

// WitnessContext is the view a witness receives: current ledger state,
// current private state, and the instance address. Witnesses read it; the
// only write path back is the private state they return.
type WitnessContext struct {
	Ledger  *ledger.StateTree
	Private any
	Address ledger.Address
}

// Witness is a module's hook into private-world data. It returns the private
// state to adopt and the value the calling circuit consumes.
type Witness func(wctx WitnessContext, args ...ledger.Value) (newPrivate any, value ledger.Value, err error)

// WitnessTable maps witness names to implementations.
type WitnessTable map[string]Witness

// MergeWitnesses overlays patch onto base without modifying either table.
// Entries in patch win. Either table may be nil.
func MergeWitnesses(base, patch WitnessTable) WitnessTable {
	merged := make(WitnessTable, len(base)+len(patch))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}
