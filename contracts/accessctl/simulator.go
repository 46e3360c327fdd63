package accessctl

import (
	"fmt"

	"github.com/quietforge/circuitsim/ledger"
	"github.com/quietforge/circuitsim/sim"
)

// Simulator drives one deployed access-control instance.
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

// Deploy constructs an instance with initialAdmin holding the default admin
// role.
func Deploy(initialAdmin ledger.Address, opts ...sim.Option) (*Simulator, error) {
	base, err := Factory().Deploy([]ledger.Value{initialAdmin}, opts...)
	if err != nil {
		return nil, err
	}
	return &Simulator{Base: base}, nil
}

// DefaultAdminRole returns the built-in admin role name through the pure
// surface.
func (s *Simulator) DefaultAdminRole() (string, error) {
	v, err := s.CallPure("defaultAdminRole")
	if err != nil {
		return "", err
	}
	return strResult("defaultAdminRole", v)
}

// HasRole reports whether account holds role.
func (s *Simulator) HasRole(role string, account ledger.Address) (bool, error) {
	v, err := s.CallImpure("hasRole", ledger.Str(role), account)
	if err != nil {
		return false, err
	}
	held, ok := v.(ledger.Bool)
	if !ok {
		return false, fmt.Errorf("hasRole: want bool result, got %T", v)
	}
	return bool(held), nil
}

// GrantRole makes account a member of role. The caller must hold the role's
// admin role.
func (s *Simulator) GrantRole(role string, account ledger.Address) error {
	_, err := s.CallImpure("grantRole", ledger.Str(role), account)
	return err
}

// RevokeRole removes account from role. The caller must hold the role's
// admin role.
func (s *Simulator) RevokeRole(role string, account ledger.Address) error {
	_, err := s.CallImpure("revokeRole", ledger.Str(role), account)
	return err
}

// RenounceRole removes the caller's own membership of role.
func (s *Simulator) RenounceRole(role string) error {
	_, err := s.CallImpure("renounceRole", ledger.Str(role))
	return err
}

// AssertRole fails unless the caller holds role.
func (s *Simulator) AssertRole(role string) error {
	_, err := s.CallImpure("assertRole", ledger.Str(role))
	return err
}

// RoleAdmin returns the role that administers role.
func (s *Simulator) RoleAdmin(role string) (string, error) {
	v, err := s.CallImpure("roleAdmin", ledger.Str(role))
	if err != nil {
		return "", err
	}
	return strResult("roleAdmin", v)
}

// SetRoleAdmin rebinds which role administers role. Only a default admin may
// call it.
func (s *Simulator) SetRoleAdmin(role, adminRole string) error {
	_, err := s.CallImpure("setRoleAdmin", ledger.Str(role), ledger.Str(adminRole))
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

func strResult(circuitName string, v ledger.Value) (string, error) {
	str, ok := v.(ledger.Str)
	if !ok {
		return "", fmt.Errorf("%s: want string result, got %T", circuitName, v)
	}
	return string(str), nil
}
