package multitoken

import (
	"fmt"

	"github.com/quietforge/circuitsim/ledger"
)

// Holding identifies one balance: holder's amount of token id.
type Holding struct {
	ID     ledger.Uint
	Holder ledger.Address
}

// OperatorGrant identifies one operator approval.
type OperatorGrant struct {
	Owner    ledger.Address
	Operator ledger.Address
}

// State is the decoded public state of a multitoken instance. The maps carry
// only nonzero balances and active grants.
type State struct {
	URI       string
	Admin     ledger.Address
	Balances  map[Holding]ledger.Uint
	Operators map[OperatorGrant]bool
}

// Ledger decodes the public state tree into its typed view.
func Ledger(tree *ledger.StateTree) (State, error) {
	uri, err := ledger.StrField(tree, fieldURI)
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
	balances := make(map[Holding]ledger.Uint, balM.Len())
	for _, e := range balM.Entries() {
		pair, ok := e.Key.(ledger.List)
		if !ok || len(pair) != 2 {
			return State{}, fmt.Errorf("balances key: want [id, holder], got %T", e.Key)
		}
		id, ok := pair[0].(ledger.Uint)
		if !ok {
			return State{}, fmt.Errorf("balances key id: want uint, got %T", pair[0])
		}
		holder, ok := pair[1].(ledger.Address)
		if !ok {
			return State{}, fmt.Errorf("balances key holder: want address, got %T", pair[1])
		}
		amount, ok := e.Value.(ledger.Uint)
		if !ok {
			return State{}, fmt.Errorf("balance of %s: want uint, got %T", holder, e.Value)
		}
		balances[Holding{ID: id, Holder: holder}] = amount
	}

	opM, err := ledger.MapField(tree, fieldOperators)
	if err != nil {
		return State{}, err
	}
	operators := make(map[OperatorGrant]bool, opM.Len())
	for _, e := range opM.Entries() {
		pair, ok := e.Key.(ledger.List)
		if !ok || len(pair) != 2 {
			return State{}, fmt.Errorf("operators key: want [owner, operator], got %T", e.Key)
		}
		owner, ok := pair[0].(ledger.Address)
		if !ok {
			return State{}, fmt.Errorf("operators key owner: want address, got %T", pair[0])
		}
		operator, ok := pair[1].(ledger.Address)
		if !ok {
			return State{}, fmt.Errorf("operators key operator: want address, got %T", pair[1])
		}
		approved, ok := e.Value.(ledger.Bool)
		if !ok {
			return State{}, fmt.Errorf("operators entry: want bool, got %T", e.Value)
		}
		operators[OperatorGrant{Owner: owner, Operator: operator}] = bool(approved)
	}

	return State{
		URI:       string(uri),
		Admin:     admin,
		Balances:  balances,
		Operators: operators,
	}, nil
}
