package token

import (
	_ "embed"
	"fmt"

	"github.com/quietforge/circuitsim/circuit"
	"github.com/quietforge/circuitsim/ledger"
)

//go:embed manifest.cue
var ManifestSource []byte

const (
	fieldName        = "name"
	fieldSymbol      = "symbol"
	fieldTotalSupply = "totalSupply"
	fieldBalances    = "balances"
	fieldAllowances  = "allowances"
	fieldAdmin       = "admin"
)

const tokenDecimals = 18

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
	if name == "" {
		return circuit.InitialState{}, circuit.Failf("constructor", "name is empty")
	}
	if symbol == "" {
		return circuit.InitialState{}, circuit.Failf("constructor", "symbol is empty")
	}
	// The deployer identity becomes the minting admin.
	if cctx.Local.Identity.IsZero() {
		return circuit.InitialState{}, circuit.Failf("constructor", "deployer identity is the zero address")
	}
	state := ledger.NewStateTree(map[string]ledger.Value{
		fieldName:        name,
		fieldSymbol:      symbol,
		fieldTotalSupply: ledger.NewUint(0),
		fieldBalances:    ledger.Map{},
		fieldAllowances:  ledger.Map{},
		fieldAdmin:       cctx.Local.Identity,
	})
	return circuit.InitialState{Private: cctx.Private, State: state, Local: cctx.Local}, nil
}

func (m module) Circuits() circuit.Table {
	return circuit.Table{
		"decimals": m.decimals,
	}
}

func (m module) ImpureCircuits() circuit.Table {
	return circuit.Table{
		"name":         m.name,
		"symbol":       m.symbol,
		"totalSupply":  m.totalSupply,
		"balanceOf":    m.balanceOf,
		"transfer":     m.transfer,
		"approve":      m.approve,
		"allowance":    m.allowance,
		"transferFrom": m.transferFrom,
		"mint":         m.mint,
		"burn":         m.burn,
	}
}

func (m module) decimals(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("decimals", args, 0); err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: ledger.NewUint(tokenDecimals)}, nil
}

func (m module) name(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	return readStrField(ctx, "name", fieldName, args)
}

func (m module) symbol(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	return readStrField(ctx, "symbol", fieldSymbol, args)
}

func (m module) totalSupply(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("totalSupply", args, 0); err != nil {
		return circuit.Result{}, err
	}
	supply, err := ledger.UintField(ctx.Original, fieldTotalSupply)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: supply}, nil
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
	bal, err := amountIn(balances, holder, "balances")
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: bal}, nil
}

func (m module) transfer(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("transfer", args, 2); err != nil {
		return circuit.Result{}, err
	}
	to, err := circuit.AddressArg("transfer", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	amount, err := circuit.UintArg("transfer", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	next, err := move(ctx.Tx.State, "transfer", ctx.Local.Identity, to, amount)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) approve(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("approve", args, 2); err != nil {
		return circuit.Result{}, err
	}
	spender, err := circuit.AddressArg("approve", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	amount, err := circuit.UintArg("approve", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	if spender.IsZero() {
		return circuit.Result{}, circuit.Failf("approve", "approve to the zero address")
	}
	allowances, err := ledger.MapField(ctx.Original, fieldAllowances)
	if err != nil {
		return circuit.Result{}, err
	}
	allowances = writeAmount(allowances, allowanceKey(ctx.Local.Identity, spender), amount)
	next := ctx.Tx.State.With(fieldAllowances, allowances)
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) allowance(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("allowance", args, 2); err != nil {
		return circuit.Result{}, err
	}
	owner, err := circuit.AddressArg("allowance", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	spender, err := circuit.AddressArg("allowance", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	allowances, err := ledger.MapField(ctx.Original, fieldAllowances)
	if err != nil {
		return circuit.Result{}, err
	}
	allowed, err := amountIn(allowances, allowanceKey(owner, spender), "allowances")
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: allowed}, nil
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
	amount, err := circuit.UintArg("transferFrom", args, 2)
	if err != nil {
		return circuit.Result{}, err
	}

	allowances, err := ledger.MapField(ctx.Original, fieldAllowances)
	if err != nil {
		return circuit.Result{}, err
	}
	key := allowanceKey(from, ctx.Local.Identity)
	allowed, err := amountIn(allowances, key, "allowances")
	if err != nil {
		return circuit.Result{}, err
	}
	remaining, underflow := allowed.SubUnderflow(amount)
	if underflow {
		return circuit.Result{}, circuit.Failf("transferFrom", "insufficient allowance")
	}

	next, err := move(ctx.Tx.State, "transferFrom", from, to, amount)
	if err != nil {
		return circuit.Result{}, err
	}
	next = next.With(fieldAllowances, writeAmount(allowances, key, remaining))
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) mint(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("mint", args, 2); err != nil {
		return circuit.Result{}, err
	}
	to, err := circuit.AddressArg("mint", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}
	amount, err := circuit.UintArg("mint", args, 1)
	if err != nil {
		return circuit.Result{}, err
	}
	if err := requireAdmin(ctx, "mint"); err != nil {
		return circuit.Result{}, err
	}
	if to.IsZero() {
		return circuit.Result{}, circuit.Failf("mint", "mint to the zero address")
	}

	supply, err := ledger.UintField(ctx.Original, fieldTotalSupply)
	if err != nil {
		return circuit.Result{}, err
	}
	newSupply, overflow := supply.AddOverflow(amount)
	if overflow {
		return circuit.Result{}, circuit.Failf("mint", "supply overflows")
	}

	balances, err := ledger.MapField(ctx.Original, fieldBalances)
	if err != nil {
		return circuit.Result{}, err
	}
	bal, err := amountIn(balances, to, "balances")
	if err != nil {
		return circuit.Result{}, err
	}
	credited, overflow := bal.AddOverflow(amount)
	if overflow {
		return circuit.Result{}, circuit.Failf("mint", "balance overflows")
	}

	next := ctx.Tx.State.
		With(fieldTotalSupply, newSupply).
		With(fieldBalances, writeAmount(balances, to, credited))
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

func (m module) burn(ctx circuit.Context, args ...ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs("burn", args, 1); err != nil {
		return circuit.Result{}, err
	}
	amount, err := circuit.UintArg("burn", args, 0)
	if err != nil {
		return circuit.Result{}, err
	}

	holder := ctx.Local.Identity
	balances, err := ledger.MapField(ctx.Original, fieldBalances)
	if err != nil {
		return circuit.Result{}, err
	}
	bal, err := amountIn(balances, holder, "balances")
	if err != nil {
		return circuit.Result{}, err
	}
	rest, underflow := bal.SubUnderflow(amount)
	if underflow {
		return circuit.Result{}, circuit.Failf("burn", "burn exceeds balance")
	}

	supply, err := ledger.UintField(ctx.Original, fieldTotalSupply)
	if err != nil {
		return circuit.Result{}, err
	}
	newSupply, underflow := supply.SubUnderflow(amount)
	if underflow {
		return circuit.Result{}, circuit.Failf("burn", "supply underflow")
	}

	next := ctx.Tx.State.
		With(fieldTotalSupply, newSupply).
		With(fieldBalances, writeAmount(balances, holder, rest))
	return circuit.Result{Context: ctx.WithState(next), Value: ledger.List{}}, nil
}

// move debits amount from one holder and credits another on the balances
// field of tree. The credit side is read after the debit is applied, which
// keeps a self-transfer from inflating the balance.
func move(tree *ledger.StateTree, circuitName string, from, to ledger.Address, amount ledger.Uint) (*ledger.StateTree, error) {
	if to.IsZero() {
		return nil, circuit.Failf(circuitName, "transfer to the zero address")
	}
	balances, err := ledger.MapField(tree, fieldBalances)
	if err != nil {
		return nil, err
	}
	fromBal, err := amountIn(balances, from, "balances")
	if err != nil {
		return nil, err
	}
	rest, underflow := fromBal.SubUnderflow(amount)
	if underflow {
		return nil, circuit.Failf(circuitName, "insufficient balance")
	}
	balances = writeAmount(balances, from, rest)

	toBal, err := amountIn(balances, to, "balances")
	if err != nil {
		return nil, err
	}
	credited, overflow := toBal.AddOverflow(amount)
	if overflow {
		return nil, circuit.Failf(circuitName, "balance overflows")
	}
	balances = writeAmount(balances, to, credited)
	return tree.With(fieldBalances, balances), nil
}

func requireAdmin(ctx circuit.Context, circuitName string) error {
	admin, err := ledger.AddressField(ctx.Original, fieldAdmin)
	if err != nil {
		return err
	}
	return circuit.Assert(ctx.Local.Identity == admin, circuitName, "caller is not the admin")
}

// amountIn reads the Uint stored under key, where an absent entry is zero.
func amountIn(m ledger.Map, key ledger.Value, what string) (ledger.Uint, error) {
	v, ok := m.Get(key)
	if !ok {
		return ledger.Uint{}, nil
	}
	u, ok := v.(ledger.Uint)
	if !ok {
		return ledger.Uint{}, fmt.Errorf("%s entry: want uint, got %T", what, v)
	}
	return u, nil
}

// writeAmount stores amount under key, dropping the entry when the amount is
// zero so absent and zero stay the same observable state.
func writeAmount(m ledger.Map, key ledger.Value, amount ledger.Uint) ledger.Map {
	if amount.IsZero() {
		return m.Without(key)
	}
	return m.With(key, amount)
}

func allowanceKey(owner, spender ledger.Address) ledger.Value {
	return ledger.List{owner, spender}
}

func readStrField(ctx circuit.Context, circuitName, field string, args []ledger.Value) (circuit.Result, error) {
	if err := circuit.NeedArgs(circuitName, args, 0); err != nil {
		return circuit.Result{}, err
	}
	s, err := ledger.StrField(ctx.Original, field)
	if err != nil {
		return circuit.Result{}, err
	}
	return circuit.Result{Context: ctx, Value: s}, nil
}
