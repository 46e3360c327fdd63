// Package counter is a compiled-module binding for a single-register
// counter. It exists to exercise the witness path end to end: the bump
// circuit pulls its step width from the "step" witness, which reads private
// state and threads an updated copy back through the call.
package counter

import (
	_ "embed"
	"fmt"

	"github.com/quietforge/circuitsim/circuit"
	"github.com/quietforge/circuitsim/ledger"
)

//go:embed manifest.cue
var ManifestSource []byte

const fieldRound = "round"

// Private is the contract's private state. Step is the width bump advances
// by, where zero means one. Pulls counts witness invocations, so tests can
// observe private state threading back out of a call.
type Private struct {
	Step  uint64
	Pulls uint64
}

// DefaultWitnesses returns the standard witness table. The "step" witness
// reads the configured step out of the private state and counts the pull.
func DefaultWitnesses() circuit.WitnessTable {
	return circuit.WitnessTable{
		"step": func(wctx circuit.WitnessContext, _ ...ledger.Value) (any, ledger.Value, error) {
			p, _ := wctx.Private.(Private)
			step := p.Step
			if step == 0 {
				step = 1
			}
			p.Pulls++
			return p, ledger.NewUint(step), nil
		},
	}
}

type module struct {
	witnesses circuit.WitnessTable
}

// NewModule binds a witness table into a fresh compiled-module binding.
func NewModule(witnesses circuit.WitnessTable) (circuit.Module, error) {
	return &module{witnesses: witnesses}, nil
}

func (m *module) InitialState(cctx circuit.ConstructorContext, args ...ledger.Value) (circuit.InitialState, error) {
	if err := circuit.NeedArgs("constructor", args, 1); err != nil {
		return circuit.InitialState{}, err
	}
	start, err := circuit.UintArg("constructor", args, 0)
	if err != nil {
		return circuit.InitialState{}, err
	}
	state := ledger.NewStateTree(map[string]ledger.Value{
		fieldRound: start,
	})
	return circuit.InitialState{Private: cctx.Private, State: state, Local: cctx.Local}, nil
}

func (m *module) Circuits() circuit.Table {
	return circuit.Table{
		"add": m.add,
	}
}

func (m *module) ImpureCircuits() circuit.Table {
	return circuit.Table{
		"increment": m.increment,
		"decrement": m.decrement,
		"round":     m.round,
		"bump":      m.bump,
	}
}

func (m *module) add(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
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
}

func (m *module) increment(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("increment", args, 0); err != nil {
		return circuit.Result{}, err
	}
	return m.advance(ctx, "increment", ledger.NewUint(1))
}

func (m *module) decrement(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("decrement", args, 0); err != nil {
		return circuit.Result{}, err
	}
	round, err := ledger.UintField(ctx.Original, fieldRound)
	if err != nil {
		return circuit.Result{}, err
	}
	next, underflow := round.SubUnderflow(ledger.NewUint(1))
	if underflow {
		return circuit.Result{}, circuit.Failf("decrement", "counter underflow")
	}
	return circuit.Result{
		Context: ctx.WithState(ctx.Tx.State.With(fieldRound, next)),
		Value:   next,
	}, nil
}

func (m *module) round(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("round", args, 0); err != nil {
		return circuit.Result{}, err
	}
	round, err := ledger.UintField(ctx.Original, fieldRound)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: round}, nil
}

// bump advances the counter by the width the "step" witness supplies and
// adopts the private state the witness returns.
func (m *module) bump(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("bump", args, 0); err != nil {
		return circuit.Result{}, err
	}
	w, ok := m.witnesses["step"]
	if !ok {
		return circuit.Result{}, &circuit.CallError{Circuit: "bump", Reason: `witness "step" is not bound`}
	}
	wctx := circuit.WitnessContext{
		Ledger:  ctx.Original,
		Private: ctx.Private,
		Address: ctx.Tx.Address,
	}
	private, v, err := w(wctx)
	if err != nil {
		return circuit.Result{}, fmt.Errorf("witness step: %w", err)
	}
	step, ok := v.(ledger.Uint)
	if !ok {
		return circuit.Result{}, &circuit.CallError{
			Circuit: "bump",
			Reason:  fmt.Sprintf(`witness "step" returned %T, want uint`, v),
		}
	}
	res, err := m.advance(ctx, "bump", step)
	if err != nil {
		return circuit.Result{}, err
	}
	res.Context = res.Context.WithPrivate(private)
	return res, nil
}

func (m *module) advance(ctx circuit.Context, circuitName string, by ledger.Uint) (circuit.Result, error) {
	round, err := ledger.UintField(ctx.Original, fieldRound)
	if err != nil {
		return circuit.Result{}, err
	}
	next, overflow := round.AddOverflow(by)
	if overflow {
		return circuit.Result{}, circuit.Failf(circuitName, "round overflows")
	}
	return circuit.Result{
		Context: ctx.WithState(ctx.Tx.State.With(fieldRound, next)),
		Value:   next,
	}, nil
}
