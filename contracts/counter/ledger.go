package counter

import "github.com/quietforge/circuitsim/ledger"

// State is the decoded public state of a counter instance.
type State struct {
	Round ledger.Uint
}

// Ledger decodes the public state tree into its typed view.
func Ledger(tree *ledger.StateTree) (State, error) {
	round, err := ledger.UintField(tree, fieldRound)
	if err != nil {
		return State{}, err
	}
	return State{Round: round}, nil
}
