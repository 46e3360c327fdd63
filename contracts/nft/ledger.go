package nft

import (
	"fmt"

	"github.com/quietforge/circuitsim/ledger"
)

// State is the decoded public state of an nft instance. Owners and Approvals
// are keyed by token id; Balances carries only holders with at least one
// token.
type State struct {
	Name      string
	Symbol    string
	Admin     ledger.Address
	Owners    map[ledger.Uint]ledger.Address
	Balances  map[ledger.Address]ledger.Uint
	Approvals map[ledger.Uint]ledger.Address
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
	admin, err := ledger.AddressField(tree, fieldAdmin)
	if err != nil {
		return State{}, err
	}

	owners, err := idToAddress(tree, fieldOwners)
	if err != nil {
		return State{}, err
	}
	approvals, err := idToAddress(tree, fieldApprovals)
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
		count, ok := e.Value.(ledger.Uint)
		if !ok {
			return State{}, fmt.Errorf("balance of %s: want uint, got %T", holder, e.Value)
		}
		balances[holder] = count
	}

	return State{
		Name:      string(name),
		Symbol:    string(symbol),
		Admin:     admin,
		Owners:    owners,
		Balances:  balances,
		Approvals: approvals,
	}, nil
}

func idToAddress(tree *ledger.StateTree, field string) (map[ledger.Uint]ledger.Address, error) {
	m, err := ledger.MapField(tree, field)
	if err != nil {
		return nil, err
	}
	out := make(map[ledger.Uint]ledger.Address, m.Len())
	for _, e := range m.Entries() {
		id, ok := e.Key.(ledger.Uint)
		if !ok {
			return nil, fmt.Errorf("%s key: want uint, got %T", field, e.Key)
		}
		addr, ok := e.Value.(ledger.Address)
		if !ok {
			return nil, fmt.Errorf("%s entry %s: want address, got %T", field, id, e.Value)
		}
		out[id] = addr
	}
	return out, nil
}
