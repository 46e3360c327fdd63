package token

import (
	"fmt"

	"github.com/quietforge/circuitsim/ledger"
	"github.com/quietforge/circuitsim/sim"
)

// Simulator drives one deployed token instance.
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

// Name returns the token name.
func (s *Simulator) Name() (string, error) {
	return s.strCall("name")
}

// Symbol returns the token symbol.
func (s *Simulator) Symbol() (string, error) {
	return s.strCall("symbol")
}

// Decimals returns the display precision through the pure surface.
func (s *Simulator) Decimals() (ledger.Uint, error) {
	v, err := s.CallPure("decimals")
	if err != nil {
		return ledger.Uint{}, err
	}
	return uintResult("decimals", v)
}

// TotalSupply returns the amount in circulation.
func (s *Simulator) TotalSupply() (ledger.Uint, error) {
	return s.uintCall("totalSupply")
}

// BalanceOf returns holder's balance, zero for an unknown holder.
func (s *Simulator) BalanceOf(holder ledger.Address) (ledger.Uint, error) {
	return s.uintCall("balanceOf", holder)
}

// Transfer moves amount from the caller to another holder.
func (s *Simulator) Transfer(to ledger.Address, amount ledger.Uint) error {
	_, err := s.CallImpure("transfer", to, amount)
	return err
}

// Approve grants spender the right to move up to amount of the caller's
// balance. Approving zero revokes the grant.
func (s *Simulator) Approve(spender ledger.Address, amount ledger.Uint) error {
	_, err := s.CallImpure("approve", spender, amount)
	return err
}

// Allowance returns what owner has granted to spender.
func (s *Simulator) Allowance(owner, spender ledger.Address) (ledger.Uint, error) {
	return s.uintCall("allowance", owner, spender)
}

// TransferFrom moves amount between two holders on the strength of the
// caller's allowance from the holder being debited.
func (s *Simulator) TransferFrom(from, to ledger.Address, amount ledger.Uint) error {
	_, err := s.CallImpure("transferFrom", from, to, amount)
	return err
}

// Mint creates amount out of thin air and credits it to a holder. Admin only.
func (s *Simulator) Mint(to ledger.Address, amount ledger.Uint) error {
	_, err := s.CallImpure("mint", to, amount)
	return err
}

// Burn destroys amount of the caller's own balance.
func (s *Simulator) Burn(amount ledger.Uint) error {
	_, err := s.CallImpure("burn", amount)
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

func (s *Simulator) uintCall(name string, args ...ledger.Value) (ledger.Uint, error) {
	v, err := s.CallImpure(name, args...)
	if err != nil {
		return ledger.Uint{}, err
	}
	return uintResult(name, v)
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

func uintResult(circuitName string, v ledger.Value) (ledger.Uint, error) {
	u, ok := v.(ledger.Uint)
	if !ok {
		return ledger.Uint{}, fmt.Errorf("%s: want uint result, got %T", circuitName, v)
	}
	return u, nil
}
