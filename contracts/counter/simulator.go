package counter

import (
	"fmt"

	"github.com/quietforge/circuitsim/ledger"
	"github.com/quietforge/circuitsim/sim"
)

// Simulator drives one deployed counter instance.
type Simulator struct {
	*sim.Base
}

// Factory returns a fresh simulator factory for this contract. Instances
// start with the default "step" witness bound and an empty Private.
func Factory() *sim.Factory {
	return sim.NewFactory(sim.Config{
		Module:           NewModule,
		DefaultPrivate:   func() any { return Private{} },
		DefaultWitnesses: DefaultWitnesses,
		DecodeLedger: func(tree *ledger.StateTree) (any, error) {
			return Ledger(tree)
		},
	})
}

// Deploy constructs an instance starting at the given round.
func Deploy(start ledger.Uint, opts ...sim.Option) (*Simulator, error) {
	base, err := Factory().Deploy([]ledger.Value{start}, opts...)
	if err != nil {
		return nil, err
	}
	return &Simulator{Base: base}, nil
}

// Round returns the committed round.
func (s *Simulator) Round() (ledger.Uint, error) {
	return s.uintCall("round")
}

// Increment advances the round by one and returns the new round.
func (s *Simulator) Increment() (ledger.Uint, error) {
	return s.uintCall("increment")
}

// Decrement moves the round back by one and returns the new round. A round
// of zero cannot go lower.
func (s *Simulator) Decrement() (ledger.Uint, error) {
	return s.uintCall("decrement")
}

// Bump advances the round by the width the "step" witness supplies and
// returns the new round.
func (s *Simulator) Bump() (ledger.Uint, error) {
	return s.uintCall("bump")
}

// Add computes a+b through the pure surface. Nothing is committed.
func (s *Simulator) Add(a, b ledger.Uint) (ledger.Uint, error) {
	v, err := s.CallPure("add", a, b)
	if err != nil {
		return ledger.Uint{}, err
	}
	return uintResult("add", v)
}

// Private returns the current private state as its concrete type.
func (s *Simulator) Private() Private {
	p, _ := s.PrivateState().(Private)
	return p
}

// SetStep injects a private state configuring the bump width, preserving the
// pull count.
func (s *Simulator) SetStep(step uint64) {
	p := s.Private()
	p.Step = step
	s.SetPrivateState(p)
}

// State returns the decoded public state.
func (s *Simulator) State() (State, error) {
	pub, err := s.PublicState()
	if err != nil {
		return State{}, err
	}
	return pub.(State), nil
}

func (s *Simulator) uintCall(name string, args ...ledger.Value) (ledger.Uint, error) {
	v, err := s.CallImpure(name, args...)
	if err != nil {
		return ledger.Uint{}, err
	}
	return uintResult(name, v)
}

func uintResult(circuitName string, v ledger.Value) (ledger.Uint, error) {
	u, ok := v.(ledger.Uint)
	if !ok {
		return ledger.Uint{}, fmt.Errorf("%s: want uint result, got %T", circuitName, v)
	}
	return u, nil
}
