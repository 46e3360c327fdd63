package multitoken

import (
	"fmt"

	"github.com/quietforge/circuitsim/ledger"
	"github.com/quietforge/circuitsim/sim"
)

// Simulator drives one deployed multitoken instance.
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

// Deploy constructs an instance. The deployer identity becomes the minting
// admin, so callers pass sim.WithIdentity to name it.
func Deploy(uri string, opts ...sim.Option) (*Simulator, error) {
	base, err := Factory().Deploy([]ledger.Value{ledger.Str(uri)}, opts...)
	if err != nil {
		return nil, err
	}
	return &Simulator{Base: base}, nil
}

// URI returns the metadata location for the instance's token ids.
func (s *Simulator) URI() (string, error) {
	v, err := s.CallImpure("uri")
	if err != nil {
		return "", err
	}
	uri, ok := v.(ledger.Str)
	if !ok {
		return "", fmt.Errorf("uri: want string result, got %T", v)
	}
	return string(uri), nil
}

// BalanceOf returns holder's balance of token id, zero by default.
func (s *Simulator) BalanceOf(holder ledger.Address, id ledger.Uint) (ledger.Uint, error) {
	v, err := s.CallImpure("balanceOf", holder, id)
	if err != nil {
		return ledger.Uint{}, err
	}
	bal, ok := v.(ledger.Uint)
	if !ok {
		return ledger.Uint{}, fmt.Errorf("balanceOf: want uint result, got %T", v)
	}
	return bal, nil
}

// Mint credits amount of token id to a holder. Admin only.
func (s *Simulator) Mint(to ledger.Address, id, amount ledger.Uint) error {
	_, err := s.CallImpure("mint", to, id, amount)
	return err
}

// Burn destroys amount of from's balance of token id. The caller must be
// from or an operator from approved.
func (s *Simulator) Burn(from ledger.Address, id, amount ledger.Uint) error {
	_, err := s.CallImpure("burn", from, id, amount)
	return err
}

// SetApprovalForAll grants or revokes operator rights over all of the
// caller's balances.
func (s *Simulator) SetApprovalForAll(operator ledger.Address, approved bool) error {
	_, err := s.CallImpure("setApprovalForAll", operator, ledger.Bool(approved))
	return err
}

// IsApprovedForAll reports whether operator may act for owner.
func (s *Simulator) IsApprovedForAll(owner, operator ledger.Address) (bool, error) {
	v, err := s.CallImpure("isApprovedForAll", owner, operator)
	if err != nil {
		return false, err
	}
	approved, ok := v.(ledger.Bool)
	if !ok {
		return false, fmt.Errorf("isApprovedForAll: want bool result, got %T", v)
	}
	return bool(approved), nil
}

// TransferFrom moves amount of token id between holders. The caller must be
// from or an operator from approved.
func (s *Simulator) TransferFrom(from, to ledger.Address, id, amount ledger.Uint) error {
	_, err := s.CallImpure("transferFrom", from, to, id, amount)
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
