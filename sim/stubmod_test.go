package sim

import (
	"errors"
	"fmt"

	"github.com/quietforge/circuitsim/circuit"
	"github.com/quietforge/circuitsim/ledger"
)

// stubModule is a hand-written stand-in for a compiled contract module. Its
// ledger holds a "round" counter and the deployer address. One name, "both",
// is deliberately exposed on both dispatch surfaces to pin down the routing
// rule for conflicting classifications.

type stubPrivate struct {
	Draws uint64
}

type stubLedgerView struct {
	Round    ledger.Uint
	Deployer ledger.Address
}

type stubModule struct {
	witnesses circuit.WitnessTable
}

func newStubModule(witnesses circuit.WitnessTable) (circuit.Module, error) {
	return &stubModule{witnesses: witnesses}, nil
}

func (m *stubModule) InitialState(cctx circuit.ConstructorContext, args ...ledger.Value) (circuit.InitialState, error) {
	if err := circuit.NeedArgs("constructor", args, 1); err != nil {
		return circuit.InitialState{}, err
	}
	round, err := circuit.UintArg("constructor", args, 0)
	if err != nil {
		return circuit.InitialState{}, err
	}
	if round.Cmp(ledger.NewUint(100)) > 0 {
		return circuit.InitialState{}, circuit.Failf("constructor", "initial round too large")
	}

	tree := ledger.NewStateTree().
		With("round", round).
		With("deployer", cctx.Local.Identity)

	return circuit.InitialState{
		Private: cctx.Private,
		State:   tree,
		Local:   cctx.Local,
	}, nil
}

func (m *stubModule) Circuits() circuit.Table {
	return circuit.Table{
		"add": func(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
			if err := circuit.NeedArgs("add", args, 2); err != nil {
				return circuit.Result{}, err
			}
			a, err := circuit.UintArg("add", args, 0)
			if err != nil {
				return circuit.Result{}, err
			}
			b, err := circuit.UintArg("add", args, 1)
			if err != nil {
				return circuit.Result{}, err
			}
			sum, overflow := a.AddOverflow(b)
			if overflow {
				return circuit.Result{}, circuit.Failf("add", "sum overflows")
			}
			return circuit.Result{Context: ctx, Value: sum}, nil
		},
		"both": func(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
			return circuit.Result{Context: ctx, Value: ledger.Str("pure")}, nil
		},
	}
}

func (m *stubModule) ImpureCircuits() circuit.Table {
	return circuit.Table{
		"inc":    m.incOp,
		"whoami": m.whoamiOp,
		"fail":   m.failOp,
		"draw":   m.drawOp,
		"both":   m.bothOp,
	}
}

func (m *stubModule) incOp(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	round, err := stubRound(ctx)
	if err != nil {
		return circuit.Result{}, err
	}
	next, overflow := round.AddOverflow(ledger.NewUint(1))
	if overflow {
		return circuit.Result{}, circuit.Failf("inc", "round overflows")
	}
	out := ctx.WithState(ctx.Tx.State.With("round", next))
	return circuit.Result{Context: out, Value: next}, nil
}

func (m *stubModule) whoamiOp(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	return circuit.Result{Context: ctx, Value: ctx.Local.Identity}, nil
}

func (m *stubModule) failOp(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	return circuit.Result{}, circuit.Failf("fail", "deliberate failure")
}

// drawOp consumes the "supply" witness: the returned private state is
// adopted and the witnessed value is added to the round counter.
func (m *stubModule) drawOp(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	w, ok := m.witnesses["supply"]
	if !ok {
		return circuit.Result{}, &circuit.CallError{Circuit: "draw", Reason: "witness table missing supply"}
	}

	wctx := circuit.WitnessContext{
		Ledger:  ctx.Original,
		Private: ctx.Private,
		Address: ctx.Tx.Address,
	}
	newPrivate, v, err := w(wctx)
	if err != nil {
		return circuit.Result{}, fmt.Errorf("witness supply: %w", err)
	}
	amount, ok := v.(ledger.Uint)
	if !ok {
		return circuit.Result{}, &circuit.CallError{Circuit: "draw", Reason: fmt.Sprintf("witness supply returned %T, want uint", v)}
	}

	round, err := stubRound(ctx)
	if err != nil {
		return circuit.Result{}, err
	}
	next, overflow := round.AddOverflow(amount)
	if overflow {
		return circuit.Result{}, circuit.Failf("draw", "round overflows")
	}

	out := ctx.
		WithState(ctx.Tx.State.With("round", next)).
		WithPrivate(newPrivate)
	return circuit.Result{Context: out, Value: v}, nil
}

func (m *stubModule) bothOp(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	round, err := stubRound(ctx)
	if err != nil {
		return circuit.Result{}, err
	}
	next, _ := round.AddOverflow(ledger.NewUint(10))
	out := ctx.WithState(ctx.Tx.State.With("round", next))
	return circuit.Result{Context: out, Value: ledger.Str("impure")}, nil
}

func stubRound(ctx circuit.Context) (ledger.Uint, error) {
	v, ok := ctx.Tx.State.Get("round")
	if !ok {
		return ledger.Uint{}, errors.New("ledger missing round")
	}
	round, ok := v.(ledger.Uint)
	if !ok {
		return ledger.Uint{}, errors.New("round is not a uint")
	}
	return round, nil
}

func decodeStubLedger(tree *ledger.StateTree) (any, error) {
	v, ok := tree.Get("round")
	if !ok {
		return nil, errors.New("ledger missing round")
	}
	round, ok := v.(ledger.Uint)
	if !ok {
		return nil, errors.New("round is not a uint")
	}
	d, ok := tree.Get("deployer")
	if !ok {
		return nil, errors.New("ledger missing deployer")
	}
	deployer, ok := d.(ledger.Address)
	if !ok {
		return nil, errors.New("deployer is not an address")
	}
	return stubLedgerView{Round: round, Deployer: deployer}, nil
}

// stubWitnesses is the default witness table: each draw bumps the private
// draw counter and supplies 5.
func stubWitnesses() circuit.WitnessTable {
	return circuit.WitnessTable{
		"supply": func(wctx circuit.WitnessContext, _ ...ledger.Value) (any, ledger.Value, error) {
			private, _ := wctx.Private.(stubPrivate)
			private.Draws++
			return private, ledger.NewUint(5), nil
		},
	}
}

func stubFactory() *Factory {
	return NewFactory(Config{
		Module:           newStubModule,
		DefaultPrivate:   func() any { return stubPrivate{} },
		DefaultWitnesses: stubWitnesses,
		DecodeLedger:     decodeStubLedger,
	})
}
