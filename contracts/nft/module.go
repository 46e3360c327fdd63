// Package nft is a compiled-module binding for a non-fungible token: each
// token id has exactly one owner, per-token approvals delegate transfer
// rights, and the deployer identity is the minting admin. Burning or
// transferring a token clears its approval.
package nft

import (
	_ "embed"
	"fmt"

	"github.com/quietforge/circuitsim/circuit"
	"github.com/quietforge/circuitsim/ledger"
)

//go:embed manifest.cue
var ManifestSource []byte

const (
	fieldName      = "name"
	fieldSymbol    = "symbol"
	fieldOwners    = "owners"
	fieldBalances  = "balances"
	fieldApprovals = "approvals"
	fieldAdmin     = "admin"
)

type module struct{}

// NewModule builds the compiled-module binding. The witness table is accepted
// for factory uniformity; this contract consumes none of it.
func NewModule(_ circuit.WitnessTable) (circuit.Module, error) {
	return module{}, nil
}

func (m module) InitialState(cctx circuit.ConstructorContext, args ...ledger.Value) (circuit.InitialState, error) {
	if err := circuit.NeedArgs("constructor", args, 2); err != nil {
		return circuit.InitialState{}, err
	}
	name, err := circuit.StrArg("constructor", args, 0)
	if err != nil {
		return circuit.InitialState{}, err
	}
	symbol, err := circuit.StrArg("constructor", args, 1)
	if err != nil {
		return circuit.InitialState{}, err
	}
	if cctx.Local.Identity.IsZero() {
		return circuit.InitialState{}, circuit.Failf("constructor", "deployer identity is the zero address")
	}
	state := ledger.NewStateTree(map[string]ledger.Value{
		fieldName:      name,
		fieldSymbol:    symbol,
		fieldOwners:    ledger.Map{},
		fieldBalances:  ledger.Map{},
		fieldApprovals: ledger.Map{},
		fieldAdmin:     cctx.Local.Identity,
	})
	return circuit.InitialState{Private: cctx.Private, State: state, Local: cctx.Local}, nil
}

func (m module) Circuits() circuit.Table {
	return circuit.Table{}
}

func (m module) ImpureCircuits() circuit.Table {
	return circuit.Table{
		"name":         m.name,
		"symbol":       m.symbol,
		"ownerOf":      m.ownerOf,
		"balanceOf":    m.balanceOf,
		"getApproved":  m.getApproved,
		"mint":         m.mint,
		"burn":         m.burn,
		"approve":      m.approve,
		"transferFrom": m.transferFrom,
	}
}

func (m module) name(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("name", args, 0); err != nil {
		return circuit.Result{}, err
	}
	name, err := ledger.StrField(ctx.Original, fieldName)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: name}, nil
}

func (m module) symbol(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("symbol", args, 0); err != nil {
		return circuit.Result{}, err
	}
	symbol, err := ledger.StrField(ctx.Original, fieldSymbol)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: symbol}, nil
}

func (m module) ownerOf(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("ownerOf", args, 1); err != nil {
		return circuit.Result{}, err
	}
	id, err := circuit.UintArg("ownerOf", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	owner, err := tokenOwner(ctx.Original, "ownerOf", id)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: owner}, nil
}

func (m module) balanceOf(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("balanceOf", args, 1); err != nil {
		return circuit.Result{}, err
	}
	holder, err := circuit.AddressArg("balanceOf", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	balances, err := ledger.MapField(ctx.Original, fieldBalances)
	if err != nil {
		return circuit.Result{}, err
	}
	count, err := countIn(balances, holder)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: count}, nil
}

func (m module) getApproved(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("getApproved", args, 1); err != nil {
		return circuit.Result{}, err
	}
	id, err := circuit.UintArg("getApproved", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	if _, err := tokenOwner(ctx.Original, "getApproved", id); err != nil {
		return circuit.Result{}, err
	}
	approved, err := approvedFor(ctx.Original, id)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: approved}, nil
}

func (m module) mint(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("mint", args, 2); err != nil {
		return circuit.Result{}, err
	}
	to, err := circuit.AddressArg("mint", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	id, err := circuit.UintArg("mint", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}

	admin, err := ledger.AddressField(ctx.Original, fieldAdmin)
	if err != nil {
		return circuit.Result{}, err
	}
	if err := circuit.Assert(ctx.Local.Identity == admin, "mint", "caller is not the admin"); err != nil {
		return circuit.Result{}, err
	}
	if to.IsZero() {
		return circuit.Result{}, circuit.Failf("mint", "mint to the zero address")
	}

	owners, err := ledger.MapField(ctx.Original, fieldOwners)
	if err != nil {
		return circuit.Result{}, err
	}
	if _, minted := owners.Get(id); minted {
		return circuit.Result{}, circuit.Failf("mint", "token already minted")
	}

	balances, err := ledger.MapField(ctx.Original, fieldBalances)
	if err != nil {
		return circuit.Result{}, err
	}
	balances, err = creditOne(balances, "mint", to)
	if err != nil {
		return circuit.Result{}, err
	}

	next := ctx.Tx.State.
		With(fieldOwners, owners.With(id, to)).
		With(fieldBalances, balances)
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) burn(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("burn", args, 1); err != nil {
		return circuit.Result{}, err
	}
	id, err := circuit.UintArg("burn", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}

	owner, err := tokenOwner(ctx.Original, "burn", id)
	if err != nil {
		return circuit.Result{}, err
	}
	if err := requireAuthorized(ctx, "burn", owner, id); err != nil {
		return circuit.Result{}, err
	}

	owners, err := ledger.MapField(ctx.Original, fieldOwners)
	if err != nil {
		return circuit.Result{}, err
	}
	approvals, err := ledger.MapField(ctx.Original, fieldApprovals)
	if err != nil {
		return circuit.Result{}, err
	}
	balances, err := ledger.MapField(ctx.Original, fieldBalances)
	if err != nil {
		return circuit.Result{}, err
	}
	balances, err = debitOne(balances, "burn", owner)
	if err != nil {
		return circuit.Result{}, err
	}

	next := ctx.Tx.State.
		With(fieldOwners, owners.Without(id)).
		With(fieldApprovals, approvals.Without(id)).
		With(fieldBalances, balances)
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) approve(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("approve", args, 2); err != nil {
		return circuit.Result{}, err
	}
	to, err := circuit.AddressArg("approve", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	id, err := circuit.UintArg("approve", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}

	owner, err := tokenOwner(ctx.Original, "approve", id)
	if err != nil {
		return circuit.Result{}, err
	}
	if err := circuit.Assert(ctx.Local.Identity == owner, "approve", "caller is not the token owner"); err != nil {
		return circuit.Result{}, err
	}

	approvals, err := ledger.MapField(ctx.Original, fieldApprovals)
	if err != nil {
		return circuit.Result{}, err
	}
	if to.IsZero() {
		// Approving the zero address clears the delegation.
		approvals = approvals.Without(id)
	} else {
		approvals = approvals.With(id, to)
	}
	next := ctx.Tx.State.With(fieldApprovals, approvals)
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) transferFrom(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("transferFrom", args, 3); err != nil {
		return circuit.Result{}, err
	}
	from, err := circuit.AddressArg("transferFrom", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	to, err := circuit.AddressArg("transferFrom", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	id, err := circuit.UintArg("transferFrom", args, 2)
	if err != nil {
		return circuit.Result{}, err
	}

	owner, err := tokenOwner(ctx.Original, "transferFrom", id)
	if err != nil {
		return circuit.Result{}, err
	}
	if err := requireAuthorized(ctx, "transferFrom", owner, id); err != nil {
		return circuit.Result{}, err
	}
	if from != owner {
		return circuit.Result{}, circuit.Failf("transferFrom", "from is not the owner")
	}
	if to.IsZero() {
		return circuit.Result{}, circuit.Failf("transferFrom", "transfer to the zero address")
	}

	owners, err := ledger.MapField(ctx.Original, fieldOwners)
	if err != nil {
		return circuit.Result{}, err
	}
	approvals, err := ledger.MapField(ctx.Original, fieldApprovals)
	if err != nil {
		return circuit.Result{}, err
	}
	balances, err := ledger.MapField(ctx.Original, fieldBalances)
	if err != nil {
		return circuit.Result{}, err
	}
	balances, err = debitOne(balances, "transferFrom", from)
	if err != nil {
		return circuit.Result{}, err
	}
	balances, err = creditOne(balances, "transferFrom", to)
	if err != nil {
		return circuit.Result{}, err
	}

	next := ctx.Tx.State.
		With(fieldOwners, owners.With(id, to)).
		With(fieldApprovals, approvals.Without(id)).
		With(fieldBalances, balances)
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

// tokenOwner resolves the owner of id or fails the calling circuit when the
// token was never minted or has been burned.
func tokenOwner(tree *ledger.StateTree, circuitName string, id ledger.Uint) (ledger.Address, error) {
	owners, err := ledger.MapField(tree, fieldOwners)
	if err != nil {
		return ledger.Address{}, err
	}
	v, ok := owners.Get(id)
	if !ok {
		return ledger.Address{}, circuit.Failf(circuitName, "token does not exist")
	}
	owner, ok := v.(ledger.Address)
	if !ok {
		return ledger.Address{}, fmt.Errorf("owners entry: want address, got %T", v)
	}
	return owner, nil
}

// requireAuthorized gates a circuit on the caller being the token owner or
// the approved delegate for id.
func requireAuthorized(ctx circuit.Context, circuitName string, owner ledger.Address, id ledger.Uint) error {
	caller := ctx.Local.Identity
	if caller == owner {
		return nil
	}
	approved, err := approvedFor(ctx.Original, id)
	if err != nil {
		return err
	}
	return circuit.Assert(!approved.IsZero() && caller == approved,
		circuitName, "caller is not owner nor approved")
}

// approvedFor returns the approved delegate for id, the zero address when
// there is none.
func approvedFor(tree *ledger.StateTree, id ledger.Uint) (ledger.Address, error) {
	approvals, err := ledger.MapField(tree, fieldApprovals)
	if err != nil {
		return ledger.Address{}, err
	}
	v, ok := approvals.Get(id)
	if !ok {
		return ledger.ZeroAddress, nil
	}
	approved, ok := v.(ledger.Address)
	if !ok {
		return ledger.Address{}, fmt.Errorf("approvals entry: want address, got %T", v)
	}
	return approved, nil
}

func countIn(balances ledger.Map, holder ledger.Address) (ledger.Uint, error) {
	v, ok := balances.Get(holder)
	if !ok {
		return ledger.Uint{}, nil
	}
	n, ok := v.(ledger.Uint)
	if !ok {
		return ledger.Uint{}, fmt.Errorf("balances entry: want uint, got %T", v)
	}
	return n, nil
}

func creditOne(balances ledger.Map, circuitName string, holder ledger.Address) (ledger.Map, error) {
	n, err := countIn(balances, holder)
	if err != nil {
		return ledger.Map{}, err
	}
	next, overflow := n.AddOverflow(ledger.NewUint(1))
	if overflow {
		return ledger.Map{}, circuit.Failf(circuitName, "balance overflows")
	}
	return balances.With(holder, next), nil
}

func debitOne(balances ledger.Map, circuitName string, holder ledger.Address) (ledger.Map, error) {
	n, err := countIn(balances, holder)
	if err != nil {
		return ledger.Map{}, err
	}
	next, underflow := n.SubUnderflow(ledger.NewUint(1))
	if underflow {
		return ledger.Map{}, circuit.Failf(circuitName, "balance underflow")
	}
	if next.IsZero() {
		return balances.Without(holder), nil
	}
	return balances.With(holder, next), nil
}
