// Package multitoken is a compiled-module binding for a multi-asset token:
// many fungible token ids under one instance, with per-account operator
// approvals instead of per-amount allowances. An operator may move or burn
// any of the granting account's balances.
package multitoken

import (
	_ "embed"
	"fmt"

	"github.com/quietforge/circuitsim/circuit"
	"github.com/quietforge/circuitsim/ledger"
)

//go:embed manifest.cue
var ManifestSource []byte

const (
	fieldURI       = "uri"
	fieldBalances  = "balances"
	fieldOperators = "operators"
	fieldAdmin     = "admin"
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
	uri, err := circuit.StrArg("constructor", args, 0)
	if err != nil {
		return circuit.InitialState{}, err
	}
	if cctx.Local.Identity.IsZero() {
		return circuit.InitialState{}, circuit.Failf("constructor", "deployer identity is the zero address")
	}
	state := ledger.NewStateTree(map[string]ledger.Value{
		fieldURI:       uri,
		fieldBalances:  ledger.Map{},
		fieldOperators: ledger.Map{},
		fieldAdmin:     cctx.Local.Identity,
	})
	return circuit.InitialState{Private: cctx.Private, State: state, Local: cctx.Local}, nil
}

func (m module) Circuits() circuit.Table {
	return circuit.Table{}
}

func (m module) ImpureCircuits() circuit.Table {
	return circuit.Table{
		"uri":               m.uri,
		"balanceOf":         m.balanceOf,
		"mint":              m.mint,
		"burn":              m.burn,
		"setApprovalForAll": m.setApprovalForAll,
		"isApprovedForAll":  m.isApprovedForAll,
		"transferFrom":      m.transferFrom,
	}
}

func (m module) uri(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("uri", args, 0); err != nil {
		return circuit.Result{}, err
	}
	uri, err := ledger.StrField(ctx.Original, fieldURI)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: uri}, nil
}

func (m module) balanceOf(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("balanceOf", args, 2); err != nil {
		return circuit.Result{}, err
	}
	holder, err := circuit.AddressArg("balanceOf", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	id, err := circuit.UintArg("balanceOf", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	balances, err := ledger.MapField(ctx.Original, fieldBalances)
	if err != nil {
		return circuit.Result{}, err
	}
	bal, err := amountIn(balances, balanceKey(id, holder))
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: bal}, nil
}

func (m module) mint(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("mint", args, 3); err != nil {
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
	amount, err := circuit.UintArg("mint", args, 2)
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

	balances, err := ledger.MapField(ctx.Original, fieldBalances)
	if err != nil {
		return circuit.Result{}, err
	}
	key := balanceKey(id, to)
	bal, err := amountIn(balances, key)
	if err != nil {
		return circuit.Result{}, err
	}
	credited, overflow := bal.AddOverflow(amount)
	if overflow {
		return circuit.Result{}, circuit.Failf("mint", "balance overflows")
	}

	next := ctx.Tx.State.With(fieldBalances, writeAmount(balances, key, credited))
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) burn(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("burn", args, 3); err != nil {
		return circuit.Result{}, err
	}
	from, err := circuit.AddressArg("burn", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	id, err := circuit.UintArg("burn", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	amount, err := circuit.UintArg("burn", args, 2)
	if err != nil {
		return circuit.Result{}, err
	}
	if err := requireOwnerOrOperator(ctx, "burn", from); err != nil {
		return circuit.Result{}, err
	}

	balances, err := ledger.MapField(ctx.Original, fieldBalances)
	if err != nil {
		return circuit.Result{}, err
	}
	key := balanceKey(id, from)
	bal, err := amountIn(balances, key)
	if err != nil {
		return circuit.Result{}, err
	}
	rest, underflow := bal.SubUnderflow(amount)
	if underflow {
		return circuit.Result{}, circuit.Failf("burn", "burn exceeds balance")
	}

	next := ctx.Tx.State.With(fieldBalances, writeAmount(balances, key, rest))
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) setApprovalForAll(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("setApprovalForAll", args, 2); err != nil {
		return circuit.Result{}, err
	}
	operator, err := circuit.AddressArg("setApprovalForAll", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	approved, err := circuit.BoolArg("setApprovalForAll", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	if operator.IsZero() {
		return circuit.Result{}, circuit.Failf("setApprovalForAll", "approve the zero address")
	}
	if operator == ctx.Local.Identity {
		return circuit.Result{}, circuit.Failf("setApprovalForAll", "approval for self")
	}

	operators, err := ledger.MapField(ctx.Original, fieldOperators)
	if err != nil {
		return circuit.Result{}, err
	}
	key := operatorKey(ctx.Local.Identity, operator)
	if bool(approved) {
		operators = operators.With(key, ledger.Bool(true))
	} else {
		operators = operators.Without(key)
	}
	next := ctx.Tx.State.With(fieldOperators, operators)
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) isApprovedForAll(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("isApprovedForAll", args, 2); err != nil {
		return circuit.Result{}, err
	}
	owner, err := circuit.AddressArg("isApprovedForAll", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	operator, err := circuit.AddressArg("isApprovedForAll", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	approved, err := operatorApproved(ctx.Original, owner, operator)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: ledger.Bool(approved)}, nil
}

func (m module) transferFrom(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("transferFrom", args, 4); err != nil {
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
	amount, err := circuit.UintArg("transferFrom", args, 3)
	if err != nil {
		return circuit.Result{}, err
	}

	if err := requireOwnerOrOperator(ctx, "transferFrom", from); err != nil {
		return circuit.Result{}, err
	}
	if to.IsZero() {
		return circuit.Result{}, circuit.Failf("transferFrom", "transfer to the zero address")
	}

	balances, err := ledger.MapField(ctx.Original, fieldBalances)
	if err != nil {
		return circuit.Result{}, err
	}
	fromKey := balanceKey(id, from)
	fromBal, err := amountIn(balances, fromKey)
	if err != nil {
		return circuit.Result{}, err
	}
	rest, underflow := fromBal.SubUnderflow(amount)
	if underflow {
		return circuit.Result{}, circuit.Failf("transferFrom", "insufficient balance")
	}
	balances = writeAmount(balances, fromKey, rest)

	// Credit is read after the debit so a self-transfer stays a no-op.
	toKey := balanceKey(id, to)
	toBal, err := amountIn(balances, toKey)
	if err != nil {
		return circuit.Result{}, err
	}
	credited, overflow := toBal.AddOverflow(amount)
	if overflow {
		return circuit.Result{}, circuit.Failf("transferFrom", "balance overflows")
	}
	balances = writeAmount(balances, toKey, credited)

	next := ctx.Tx.State.With(fieldBalances, balances)
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func balanceKey(id ledger.Uint, holder ledger.Address) ledger.Value {
	return ledger.List{id, holder}
}

func operatorKey(owner, operator ledger.Address) ledger.Value {
	return ledger.List{owner, operator}
}

func operatorApproved(tree *ledger.StateTree, owner, operator ledger.Address) (bool, error) {
	operators, err := ledger.MapField(tree, fieldOperators)
	if err != nil {
		return false, err
	}
	v, ok := operators.Get(operatorKey(owner, operator))
	if !ok {
		return false, nil
	}
	approved, ok := v.(ledger.Bool)
	if !ok {
		return false, fmt.Errorf("operators entry: want bool, got %T", v)
	}
	return bool(approved), nil
}

// requireOwnerOrOperator gates a circuit on the caller being the debited
// account itself or an operator it approved.
func requireOwnerOrOperator(ctx circuit.Context, circuitName string, from ledger.Address) error {
	caller := ctx.Local.Identity
	if caller == from {
		return nil
	}
	approved, err := operatorApproved(ctx.Original, from, caller)
	if err != nil {
		return err
	}
	return circuit.Assert(approved, circuitName, "caller is not owner nor approved")
}

// amountIn reads the Uint stored under key, where an absent entry is zero.
func amountIn(m ledger.Map, key ledger.Value) (ledger.Uint, error) {
	v, ok := m.Get(key)
	if !ok {
		return ledger.Uint{}, nil
	}
	u, ok := v.(ledger.Uint)
	if !ok {
		return ledger.Uint{}, fmt.Errorf("balances entry: want uint, got %T", v)
	}
	return u, nil
}

// writeAmount stores amount under key, dropping the entry when the amount is
// zero.
func writeAmount(m ledger.Map, key ledger.Value, amount ledger.Uint) ledger.Map {
	if amount.IsZero() {
		return m.Without(key)
	}
	return m.With(key, amount)
}
