package sim

import (
	"errors"
	"fmt"
)

// UnknownCircuitError reports a call to a circuit name the compiled module
// does not expose. Surface narrows the complaint to one dispatch table when
// the call went through CallPure or CallImpure.
type UnknownCircuitError struct {
	Name    string
	Surface string // "pure", "impure", or empty when either would do
}

func (e *UnknownCircuitError) Error() string {
	if e.Surface == "" {
		return fmt.Sprintf("unknown circuit %q", e.Name)
	}
	return fmt.Sprintf("unknown %s circuit %q", e.Surface, e.Name)
}

// AsUnknownCircuit unwraps err into an UnknownCircuitError if one is in the
// chain.
func AsUnknownCircuit(err error) (*UnknownCircuitError, bool) {
	var ue *UnknownCircuitError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
