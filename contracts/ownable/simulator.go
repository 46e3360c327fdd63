package ownable

import (
	"fmt"

	"github.com/quietforge/circuitsim/ledger"
	"github.com/quietforge/circuitsim/sim"
)

// Simulator drives one deployed ownership instance. The embedded generic
// simulator keeps its full surface available: caller overrides, witness
// swaps, raw Call.
type Simulator struct {
	*sim.Base
}

// Factory returns a fresh simulator factory for this contract.
func Factory() *sim.Factory {
	return sim.NewFactory(sim.Config{
		Module: NewModule,
		DecodeLedger: func(tree *ledger.StateTree) (any, error) {
			return Ledger(tree)
		},
	})
}

// Deploy constructs an instance owned by initialOwner.
func Deploy(initialOwner ledger.Address, opts ...sim.Option) (*Simulator, error) {
	base, err := Factory().Deploy([]ledger.Value{initialOwner}, opts...)
	if err != nil {
		return nil, err
	}
	return &Simulator{Base: base}, nil
}

// Owner returns the current owner.
func (s *Simulator) Owner() (ledger.Address, error) {
	v, err := s.CallImpure("owner")
	if err != nil {
		return ledger.Address{}, err
	}
	addr, ok := v.(ledger.Address)
	if !ok {
		return ledger.Address{}, fmt.Errorf("owner: want address result, got %T", v)
	}
	return addr, nil
}

// TransferOwnership hands the instance to newOwner. Only the current owner
// may call it, and the zero address is not a valid new owner.
func (s *Simulator) TransferOwnership(newOwner ledger.Address) error {
	_, err := s.CallImpure("transferOwnership", newOwner)
	return err
}

// RenounceOwnership clears the owner to the zero address. Owner-gated
// circuits become permanently uncallable afterwards.
func (s *Simulator) RenounceOwnership() error {
	_, err := s.CallImpure("renounceOwnership")
	return err
}

// AssertOnlyOwner fails unless the caller is the current owner.
func (s *Simulator) AssertOnlyOwner() error {
	_, err := s.CallImpure("assertOnlyOwner")
	return err
}

// State returns the decoded public state.
func (s *Simulator) State() (State, error) {
	pub, err := s.PublicState()
	if err != nil {
		return State{}, err
	}
	return pub.(State), nil
}
