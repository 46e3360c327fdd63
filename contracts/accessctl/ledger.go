package accessctl

import (
	"fmt"

	"github.com/quietforge/circuitsim/ledger"
)

// Membership identifies one role grant.
type Membership struct {
	Role    string
	Account ledger.Address
}

// State is the decoded public state of an access-control instance. Members
// carries only active grants; Admins carries only roles rebound away from
// the default admin role.
type State struct {
	Members map[Membership]bool
	Admins  map[string]string
}

// Ledger decodes the public state tree into its typed view.
func Ledger(tree *ledger.StateTree) (State, error) {
	rolesM, err := ledger.MapField(tree, fieldRoles)
	if err != nil {
		return State{}, err
	}
	members := make(map[Membership]bool, rolesM.Len())
	for _, e := range rolesM.Entries() {
		pair, ok := e.Key.(ledger.List)
		if !ok || len(pair) != 2 {
			return State{}, fmt.Errorf("roles key: want [role, account], got %T", e.Key)
		}
		role, ok := pair[0].(ledger.Str)
		if !ok {
			return State{}, fmt.Errorf("roles key role: want string, got %T", pair[0])
		}
		account, ok := pair[1].(ledger.Address)
		if !ok {
			return State{}, fmt.Errorf("roles key account: want address, got %T", pair[1])
		}
		member, ok := e.Value.(ledger.Bool)
		if !ok {
			return State{}, fmt.Errorf("roles entry: want bool, got %T", e.Value)
		}
		members[Membership{Role: string(role), Account: account}] = bool(member)
	}

	adminsM, err := ledger.MapField(tree, fieldAdmins)
	if err != nil {
		return State{}, err
	}
	admins := make(map[string]string, adminsM.Len())
	for _, e := range adminsM.Entries() {
		role, ok := e.Key.(ledger.Str)
		if !ok {
			return State{}, fmt.Errorf("admins key: want string, got %T", e.Key)
		}
		admin, ok := e.Value.(ledger.Str)
		if !ok {
			return State{}, fmt.Errorf("admins entry: want string, got %T", e.Value)
		}
		admins[string(role)] = string(admin)
	}

	return State{Members: members, Admins: admins}, nil
}
