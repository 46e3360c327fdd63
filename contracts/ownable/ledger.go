package ownable

import "github.com/quietforge/circuitsim/ledger"

// State is the decoded public state of an ownership instance.
type State struct {
	Owner ledger.Address
}

// Ledger decodes the public state tree into its typed view.
func Ledger(tree *ledger.StateTree) (State, error) {
	owner, err := ledger.AddressField(tree, fieldOwner)
	if err != nil {
		return State{}, err
	}
	return State{Owner: owner}, nil
}
