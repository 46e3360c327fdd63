// Package ownable is a compiled-module binding for single-owner access
// control: one address owns the instance, owner-gated circuits reject every
// other caller, and ownership can be transferred or renounced. The contract
// keeps no private state, consumes no witnesses, and has an empty pure
// surface, which makes it the smallest complete exercise of the simulator's
// caller scope.
package ownable

import (
	_ "embed"

	"github.com/quietforge/circuitsim/circuit"
	"github.com/quietforge/circuitsim/ledger"
)

//go:embed manifest.cue
var ManifestSource []byte

const fieldOwner = "owner"

// module is the compiled binding. With no witnesses and no private state it
// is a bare method set over the execution context.
type module struct{}

// NewModule builds the compiled-module binding. The witness table is accepted
// for factory uniformity; this contract consumes none of it.
func NewModule(_ circuit.WitnessTable) (circuit.Module, error) {
	return module{}, nil
}

func (m module) InitialState(cctx circuit.ConstructorContext, args ...ledger.Value) (circuit.InitialState, error) {
	if err := circuit.NeedArgs("constructor", args, 1); err != nil {
		return circuit.InitialState{}, err
	}
	initialOwner, err := circuit.AddressArg("constructor", args, 0)
	if err != nil {
		return circuit.InitialState{}, err
	}
	if initialOwner.IsZero() {
		return circuit.InitialState{}, circuit.Failf("constructor", "initial owner is the zero address")
	}
	state := ledger.NewStateTree(map[string]ledger.Value{
		fieldOwner: initialOwner,
	})
	return circuit.InitialState{Private: cctx.Private, State: state, Local: cctx.Local}, nil
}

// Circuits is empty: every circuit of this contract reads or writes the
// ledger, so all of them live on the impure surface.
func (m module) Circuits() circuit.Table {
	return circuit.Table{}
}

func (m module) ImpureCircuits() circuit.Table {
	return circuit.Table{
		"owner":             m.owner,
		"transferOwnership": m.transferOwnership,
		"renounceOwnership": m.renounceOwnership,
		"assertOnlyOwner":   m.assertOnlyOwner,
	}
}

func (m module) owner(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("owner", args, 0); err != nil {
		return circuit.Result{}, err
	}
	owner, err := ledger.AddressField(ctx.Original, fieldOwner)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: owner}, nil
}

func (m module) transferOwnership(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("transferOwnership", args, 1); err != nil {
		return circuit.Result{}, err
	}
	newOwner, err := circuit.AddressArg("transferOwnership", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	if err := requireOwner(ctx, "transferOwnership"); err != nil {
		return circuit.Result{}, err
	}
	if newOwner.IsZero() {
		return circuit.Result{}, circuit.Failf("transferOwnership", "new owner is the zero address")
	}
	next := ctx.Tx.State.With(fieldOwner, newOwner)
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) renounceOwnership(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("renounceOwnership", args, 0); err != nil {
		return circuit.Result{}, err
	}
	if err := requireOwner(ctx, "renounceOwnership"); err != nil {
		return circuit.Result{}, err
	}
	next := ctx.Tx.State.With(fieldOwner, ledger.ZeroAddress)
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) assertOnlyOwner(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("assertOnlyOwner", args, 0); err != nil {
		return circuit.Result{}, err
	}
	if err := requireOwner(ctx, "assertOnlyOwner"); err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: ledger.List{}}, nil
}

// requireOwner gates a circuit on the caller being the current owner.
func requireOwner(ctx circuit.Context, circuitName string) error {
	owner, err := ledger.AddressField(ctx.Original, fieldOwner)
	if err != nil {
		return err
	}
	return circuit.Assert(ctx.Local.Identity == owner, circuitName, "caller is not the owner")
}
