package sim

import (
	"fmt"
	"slices"

	"github.com/quietforge/circuitsim/circuit"
	"github.com/quietforge/circuitsim/ledger"
)

// callable is a dispatch table entry: a circuit operation adapted to "take
// arguments, return a result". Entries read the live context through the
// manager at call time, never a snapshot taken at build time.
type callable func(args ...ledger.Value) (ledger.Value, error)

// Base is the simulator every concrete contract simulator wraps. It owns the
// execution context, the caller override, the active witness table, and the
// two memoized dispatch tables.
//
// CRITICAL: a failed impure call commits nothing. The persisted context after
// an error is bit-for-bit the context from before the call, which is the
// rollback guarantee every other property builds on.
//
// Single-threaded by construction: Base holds no locks and must not be
// driven from more than one goroutine. See the package comment.
type Base struct {
	cfg     Config
	manager *ContextManager
	address ledger.Address

	module    circuit.Module
	witnesses circuit.WitnessTable

	caller    ledger.Address
	hasCaller bool

	// Memoized dispatch tables. nil means not built yet; ResetCircuitTables
	// returns both to nil so the next call rebuilds against the current
	// module binding.
	pure   map[string]callable
	impure map[string]callable
}

// Address returns the contract instance address bound at deployment.
func (b *Base) Address() ledger.Address {
	return b.address
}

// Context returns the current execution context. Intended for inspection;
// state mutation goes through circuit calls or SetPrivateState.
func (b *Base) Context() circuit.Context {
	return b.manager.Context()
}

// SetCaller stores an identity override. Subsequent impure calls observe it
// as their caller; the persisted context never does. The override stays
// active until ClearCaller or the next SetCaller.
func (b *Base) SetCaller(id ledger.Address) {
	b.caller = id
	b.hasCaller = true
}

// ClearCaller removes the identity override, restoring pass-through of the
// persisted local identity.
func (b *Base) ClearCaller() {
	b.caller = ledger.ZeroAddress
	b.hasCaller = false
}

// Caller returns the active override, if any.
func (b *Base) Caller() (ledger.Address, bool) {
	return b.caller, b.hasCaller
}

// SetWitnesses replaces the whole witness table and rebuilds the compiled
// module binding from the configured factory. The execution context is not
// touched: ledger state and private state survive the swap. Both dispatch
// tables are invalidated because their entries close over the old binding.
//
// The registry performs no shape validation. A table missing a required key
// fails at first use, inside the module.
func (b *Base) SetWitnesses(table circuit.WitnessTable) error {
	owned := circuit.MergeWitnesses(nil, table)
	module, err := b.cfg.Module(owned)
	if err != nil {
		return fmt.Errorf("rebind witnesses: %w", err)
	}
	b.module = module
	b.witnesses = owned
	b.ResetCircuitTables()
	return nil
}

// OverrideWitness replaces a single witness entry by shallow-merging it into
// the active table, then rebuilds exactly like SetWitnesses.
func (b *Base) OverrideWitness(key string, fn circuit.Witness) error {
	return b.SetWitnesses(circuit.MergeWitnesses(b.witnesses, circuit.WitnessTable{key: fn}))
}

// Witnesses returns a copy of the active witness table.
func (b *Base) Witnesses() circuit.WitnessTable {
	return circuit.MergeWitnesses(nil, b.witnesses)
}

// ResetCircuitTables drops both memoized dispatch tables. The next call
// rebuilds them from the current module binding. Callers rarely need this
// directly; witness swaps invoke it themselves.
func (b *Base) ResetCircuitTables() {
	b.pure = nil
	b.impure = nil
}

// CallPure invokes a pure circuit: the operation runs against the current
// context and only the produced value is kept. Nothing is committed, so an
// unchanged context makes repeated calls with equal arguments return equal
// results.
func (b *Base) CallPure(name string, args ...ledger.Value) (ledger.Value, error) {
	entry, ok := b.pureTable()[name]
	if !ok {
		return nil, &UnknownCircuitError{Name: name, Surface: "pure"}
	}
	return entry(args...)
}

// CallImpure invokes a mutating circuit: the working context is computed
// through the caller override, the operation runs, and on success the
// returned context is committed. On error nothing is committed.
func (b *Base) CallImpure(name string, args ...ledger.Value) (ledger.Value, error) {
	entry, ok := b.impureTable()[name]
	if !ok {
		return nil, &UnknownCircuitError{Name: name, Surface: "impure"}
	}
	return entry(args...)
}

// Call routes a name to its dispatch table. A name the module exposes on
// both surfaces dispatches as impure: the classification conflict has to
// resolve deterministically, and treating the call as mutating is the
// reading that never loses a commit.
func (b *Base) Call(name string, args ...ledger.Value) (ledger.Value, error) {
	if entry, ok := b.impureTable()[name]; ok {
		return entry(args...)
	}
	if entry, ok := b.pureTable()[name]; ok {
		return entry(args...)
	}
	return nil, &UnknownCircuitError{Name: name}
}

// PureNames returns the pure circuit names in sorted order.
func (b *Base) PureNames() []string {
	return sortedNames(b.pureTable())
}

// ImpureNames returns the impure circuit names in sorted order.
func (b *Base) ImpureNames() []string {
	return sortedNames(b.impureTable())
}

// PublicState decodes the committed ledger state through the configured
// decoder.
func (b *Base) PublicState() (any, error) {
	return b.cfg.DecodeLedger(b.manager.Context().Original)
}

// PrivateState returns the current private state.
func (b *Base) PrivateState() any {
	return b.manager.Context().Private
}

// SetPrivateState injects a private state value, preserving everything else
// in the context. Test setup uses it; circuits never do.
func (b *Base) SetPrivateState(private any) {
	b.manager.UpdatePrivateState(private)
}

// ContractState returns the committed ledger state tree undecoded.
func (b *Base) ContractState() *ledger.StateTree {
	return b.manager.Context().Original
}

// pureTable returns the memoized pure dispatch table, building it on first
// use.
func (b *Base) pureTable() map[string]callable {
	if b.pure == nil {
		b.pure = b.buildPureTable()
	}
	return b.pure
}

// impureTable returns the memoized impure dispatch table, building it on
// first use.
func (b *Base) impureTable() map[string]callable {
	if b.impure == nil {
		b.impure = b.buildImpureTable()
	}
	return b.impure
}

func (b *Base) buildPureTable() map[string]callable {
	ops := b.module.Circuits()
	table := make(map[string]callable, len(ops))
	for name, op := range ops {
		table[name] = func(args ...ledger.Value) (ledger.Value, error) {
			res, err := op(b.manager.Context(), args...)
			if err != nil {
				return nil, err
			}
			// Any context echoed back is discarded, never committed.
			return res.Value, nil
		}
	}
	return table
}

func (b *Base) buildImpureTable() map[string]callable {
	ops := b.module.ImpureCircuits()
	table := make(map[string]callable, len(ops))
	for name, op := range ops {
		table[name] = func(args ...ledger.Value) (ledger.Value, error) {
			before := b.manager.Context()

			working := before
			if b.hasCaller {
				working = before.WithLocal(circuit.NewLocalState(b.caller))
			}

			res, err := op(working, args...)
			if err != nil {
				// No commit: the persisted context is exactly as it was.
				return nil, err
			}

			next := res.Context
			if b.hasCaller {
				// The override is call-scoped. Only the ledger and private
				// portions of the result persist; the identity reverts to
				// what was persisted before the call.
				next.Local = before.Local
			}
			b.manager.SetContext(next)
			return res.Value, nil
		}
	}
	return table
}

func sortedNames(table map[string]callable) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
