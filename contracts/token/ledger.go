package token

import (
	"fmt"

	"github.com/quietforge/circuitsim/ledger"
)

// AllowanceKey identifies one allowance: what owner granted to spender.
type AllowanceKey struct {
	Owner   ledger.Address
	Spender ledger.Address
}

// State is the decoded public state of a token instance. The maps carry only
// nonzero amounts, mirroring the ledger representation.
type State struct {
	Name        string
	Symbol      string
	TotalSupply ledger.Uint
	Admin       ledger.Address
	Balances    map[ledger.Address]ledger.Uint
	Allowances  map[AllowanceKey]ledger.Uint
}

// Ledger decodes the public state tree into its typed view.
func Ledger(tree *ledger.StateTree) (State, error) {
	name, err := ledger.StrField(tree, fieldName)
	if err != nil {
		return State{}, err
	}
	symbol, err := ledger.StrField(tree, fieldSymbol)
	if err != nil {
		return State{}, err
	}
	supply, err := ledger.UintField(tree, fieldTotalSupply)
	if err != nil {
		return State{}, err
	}
	admin, err := ledger.AddressField(tree, fieldAdmin)
	if err != nil {
		return State{}, err
	}

	balM, err := ledger.MapField(tree, fieldBalances)
	if err != nil {
		return State{}, err
	}
	balances := make(map[ledger.Address]ledger.Uint, balM.Len())
	for _, e := range balM.Entries() {
		holder, ok := e.Key.(ledger.Address)
		if !ok {
			return State{}, fmt.Errorf("balances key: want address, got %T", e.Key)
		}
		amount, ok := e.Value.(ledger.Uint)
		if !ok {
			return State{}, fmt.Errorf("balance of %s: want uint, got %T", holder, e.Value)
		}
		balances[holder] = amount
	}

	allowM, err := ledger.MapField(tree, fieldAllowances)
	if err != nil {
		return State{}, err
	}
	allowances := make(map[AllowanceKey]ledger.Uint, allowM.Len())
	for _, e := range allowM.Entries() {
		pair, ok := e.Key.(ledger.List)
		if !ok || len(pair) != 2 {
			return State{}, fmt.Errorf("allowances key: want [owner, spender], got %T", e.Key)
		}
		owner, ok := pair[0].(ledger.Address)
		if !ok {
			return State{}, fmt.Errorf("allowances key owner: want address, got %T", pair[0])
		}
		spender, ok := pair[1].(ledger.Address)
		if !ok {
			return State{}, fmt.Errorf("allowances key spender: want address, got %T", pair[1])
		}
		amount, ok := e.Value.(ledger.Uint)
		if !ok {
			return State{}, fmt.Errorf("allowance of %s: want uint, got %T", owner, e.Value)
		}
		allowances[AllowanceKey{Owner: owner, Spender: spender}] = amount
	}

	return State{
		Name:        string(name),
		Symbol:      string(symbol),
		TotalSupply: supply,
		Admin:       admin,
		Balances:    balances,
		Allowances:  allowances,
	}, nil
}
