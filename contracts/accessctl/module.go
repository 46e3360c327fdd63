// Package accessctl is a compiled-module binding for role-based access
// control. Roles are named by strings; each role is administered by another
// role, the default admin role unless rebound with setRoleAdmin. Membership
// is stored sparsely: absent means not a member, and revoking drops the
// entry.
package accessctl

import (
	_ "embed"
	"fmt"

	"github.com/quietforge/circuitsim/circuit"
	"github.com/quietforge/circuitsim/ledger"
)

//go:embed manifest.cue
var ManifestSource []byte

// DefaultAdminRole administers every role that was not rebound with
// setRoleAdmin, including itself.
const DefaultAdminRole = "admin"

const (
	fieldRoles  = "roles"
	fieldAdmins = "admins"
)

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
	initialAdmin, err := circuit.AddressArg("constructor", args, 0)
	if err != nil {
		return circuit.InitialState{}, err
	}
	if initialAdmin.IsZero() {
		return circuit.InitialState{}, circuit.Failf("constructor", "initial admin is the zero address")
	}
	roles := ledger.Map{}.With(roleKey(DefaultAdminRole, initialAdmin), ledger.Bool(true))
	state := ledger.NewStateTree(map[string]ledger.Value{
		fieldRoles:  roles,
		fieldAdmins: ledger.Map{},
	})
	return circuit.InitialState{Private: cctx.Private, State: state, Local: cctx.Local}, nil
}

func (m module) Circuits() circuit.Table {
	return circuit.Table{
		"defaultAdminRole": m.defaultAdminRole,
	}
}

func (m module) ImpureCircuits() circuit.Table {
	return circuit.Table{
		"hasRole":      m.hasRole,
		"grantRole":    m.grantRole,
		"revokeRole":   m.revokeRole,
		"renounceRole": m.renounceRole,
		"assertRole":   m.assertRole,
		"roleAdmin":    m.roleAdmin,
		"setRoleAdmin": m.setRoleAdmin,
	}
}

func (m module) defaultAdminRole(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("defaultAdminRole", args, 0); err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: ledger.Str(DefaultAdminRole)}, nil
}

func (m module) hasRole(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("hasRole", args, 2); err != nil {
		return circuit.Result{}, err
	}
	role, err := circuit.StrArg("hasRole", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	account, err := circuit.AddressArg("hasRole", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	held, err := holdsRole(ctx.Original, role, account)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: ledger.Bool(held)}, nil
}

func (m module) grantRole(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("grantRole", args, 2); err != nil {
		return circuit.Result{}, err
	}
	role, err := circuit.StrArg("grantRole", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	account, err := circuit.AddressArg("grantRole", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	if err := requireRoleAdmin(ctx, "grantRole", role); err != nil {
		return circuit.Result{}, err
	}
	if account.IsZero() {
		return circuit.Result{}, circuit.Failf("grantRole", "grant to the zero address")
	}
	roles, err := ledger.MapField(ctx.Original, fieldRoles)
	if err != nil {
		return circuit.Result{}, err
	}
	next := ctx.Tx.State.With(fieldRoles, roles.With(roleKey(role, account), ledger.Bool(true)))
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) revokeRole(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("revokeRole", args, 2); err != nil {
		return circuit.Result{}, err
	}
	role, err := circuit.StrArg("revokeRole", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	account, err := circuit.AddressArg("revokeRole", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	if err := requireRoleAdmin(ctx, "revokeRole", role); err != nil {
		return circuit.Result{}, err
	}
	roles, err := ledger.MapField(ctx.Original, fieldRoles)
	if err != nil {
		return circuit.Result{}, err
	}
	next := ctx.Tx.State.With(fieldRoles, roles.Without(roleKey(role, account)))
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

// renounceRole removes the caller's own membership. There is no gate: an
// account may always walk away from a role it holds.
func (m module) renounceRole(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("renounceRole", args, 1); err != nil {
		return circuit.Result{}, err
	}
	role, err := circuit.StrArg("renounceRole", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	roles, err := ledger.MapField(ctx.Original, fieldRoles)
	if err != nil {
		return circuit.Result{}, err
	}
	next := ctx.Tx.State.With(fieldRoles, roles.Without(roleKey(role, ctx.Local.Identity)))
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) assertRole(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("assertRole", args, 1); err != nil {
		return circuit.Result{}, err
	}
	role, err := circuit.StrArg("assertRole", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	held, err := holdsRole(ctx.Original, role, ctx.Local.Identity)
	if err != nil {
		return circuit.Result{}, err
	}
	if !held {
		return circuit.Result{}, circuit.Failf("assertRole", "caller is missing role %s", role)
	}
	return circuit.Result{Context: ctx, Value: ledger.List{}}, nil
}

func (m module) roleAdmin(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("roleAdmin", args, 1); err != nil {
		return circuit.Result{}, err
	}
	role, err := circuit.StrArg("roleAdmin", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	admin, err := adminOf(ctx.Original, role)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: admin}, nil
}

func (m module) setRoleAdmin(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("setRoleAdmin", args, 2); err != nil {
		return circuit.Result{}, err
	}
	role, err := circuit.StrArg("setRoleAdmin", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	adminRole, err := circuit.StrArg("setRoleAdmin", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	held, err := holdsRole(ctx.Original, DefaultAdminRole, ctx.Local.Identity)
	if err != nil {
		return circuit.Result{}, err
	}
	if !held {
		return circuit.Result{}, circuit.Failf("setRoleAdmin", "caller is not the default admin")
	}
	admins, err := ledger.MapField(ctx.Original, fieldAdmins)
	if err != nil {
		return circuit.Result{}, err
	}
	if string(adminRole) == DefaultAdminRole {
		// The default is represented by absence.
		admins = admins.Without(role)
	} else {
		admins = admins.With(role, adminRole)
	}
	next := ctx.Tx.State.With(fieldAdmins, admins)
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func roleKey(role ledger.Str, account ledger.Address) ledger.Value {
	return ledger.List{role, account}
}

func holdsRole(tree *ledger.StateTree, role ledger.Str, account ledger.Address) (bool, error) {
	roles, err := ledger.MapField(tree, fieldRoles)
	if err != nil {
		return false, err
	}
	v, ok := roles.Get(roleKey(role, account))
	if !ok {
		return false, nil
	}
	member, ok := v.(ledger.Bool)
	if !ok {
		return false, fmt.Errorf("roles entry: want bool, got %T", v)
	}
	return bool(member), nil
}

// adminOf resolves the role that administers role, the default admin role
// unless rebound.
func adminOf(tree *ledger.StateTree, role ledger.Str) (ledger.Str, error) {
	admins, err := ledger.MapField(tree, fieldAdmins)
	if err != nil {
		return "", err
	}
	v, ok := admins.Get(role)
	if !ok {
		return ledger.Str(DefaultAdminRole), nil
	}
	admin, ok := v.(ledger.Str)
	if !ok {
		return "", fmt.Errorf("admins entry: want string, got %T", v)
	}
	return admin, nil
}

// requireRoleAdmin gates a circuit on the caller holding the role that
// administers role.
func requireRoleAdmin(ctx circuit.Context, circuitName string, role ledger.Str) error {
	adminRole, err := adminOf(ctx.Original, role)
	if err != nil {
		return err
	}
	held, err := holdsRole(ctx.Original, adminRole, ctx.Local.Identity)
	if err != nil {
		return err
	}
	if !held {
		return circuit.Failf(circuitName, "caller is missing role %s", adminRole)
	}
	return nil
}
