package nft

import (
	"fmt"

	"github.com/quietforge/circuitsim/ledger"
	"github.com/quietforge/circuitsim/sim"
)

// Simulator drives one deployed nft instance.
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
func Deploy(name, symbol string, opts ...sim.Option) (*Simulator, error) {
	base, err := Factory().Deploy([]ledger.Value{ledger.Str(name), ledger.Str(symbol)}, opts...)
	if err != nil {
		return nil, err
	}
	return &Simulator{Base: base}, nil
}

// Name returns the collection name.
func (s *Simulator) Name() (string, error) {
	return s.strCall("name")
}

// Symbol returns the collection symbol.
func (s *Simulator) Symbol() (string, error) {
	return s.strCall("symbol")
}

// OwnerOf returns the owner of a token id. Unminted ids fail.
func (s *Simulator) OwnerOf(id ledger.Uint) (ledger.Address, error) {
	return s.addrCall("ownerOf", id)
}

// BalanceOf returns how many tokens holder owns.
func (s *Simulator) BalanceOf(holder ledger.Address) (ledger.Uint, error) {
	v, err := s.CallImpure("balanceOf", holder)
	if err != nil {
		return ledger.Uint{}, err
	}
	count, ok := v.(ledger.Uint)
	if !ok {
		return ledger.Uint{}, fmt.Errorf("balanceOf: want uint result, got %T", v)
	}
	return count, nil
}

// GetApproved returns the approved delegate for a token id, the zero address
// when there is none. Unminted ids fail.
func (s *Simulator) GetApproved(id ledger.Uint) (ledger.Address, error) {
	return s.addrCall("getApproved", id)
}

// Mint creates token id and assigns it to a holder. Admin only.
func (s *Simulator) Mint(to ledger.Address, id ledger.Uint) error {
	_, err := s.CallImpure("mint", to, id)
	return err
}

// Burn destroys token id. The caller must own it or be its approved
// delegate.
func (s *Simulator) Burn(id ledger.Uint) error {
	_, err := s.CallImpure("burn", id)
	return err
}

// Approve delegates transfer rights for token id. Approving the zero address
// clears the delegation. Only the token owner may call it.
func (s *Simulator) Approve(to ledger.Address, id ledger.Uint) error {
	_, err := s.CallImpure("approve", to, id)
	return err
}

// TransferFrom moves token id between holders. The caller must own the token
// or be its approved delegate.
func (s *Simulator) TransferFrom(from, to ledger.Address, id ledger.Uint) error {
	_, err := s.CallImpure("transferFrom", from, to, id)
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

func (s *Simulator) strCall(name string, args ...ledger.Value) (string, error) {
	v, err := s.CallImpure(name, args...)
	if err != nil {
		return "", err
	}
	str, ok := v.(ledger.Str)
	if !ok {
		return "", fmt.Errorf("%s: want string result, got %T", name, v)
	}
	return string(str), nil
}

func (s *Simulator) addrCall(name string, args ...ledger.Value) (ledger.Address, error) {
	v, err := s.CallImpure(name, args...)
	if err != nil {
		return ledger.Address{}, err
	}
	addr, ok := v.(ledger.Address)
	if !ok {
		return ledger.Address{}, fmt.Errorf("%s: want address result, got %T", name, v)
	}
	return addr, nil
}
