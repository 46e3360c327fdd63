package circuit

import (
	"errors"
	"fmt"
)

// AssertError reports a contract assertion violation: an invariant the
// circuit declared did not hold, for example a transfer from a caller whose
// balance is too small. The simulator core propagates it untouched, so test
// code can match on the circuit name and message.
type AssertError struct {
	Circuit string // circuit that raised the violation
	Message string // contract-authored description
}

func (e *AssertError) Error() string {
	if e.Circuit == "" {
		return "assertion failed: " + e.Message
	}
	return fmt.Sprintf("assertion failed in %s: %s", e.Circuit, e.Message)
}

// Assert returns nil when cond holds and an AssertError otherwise.
func Assert(cond bool, circuit, message string) error {
	if cond {
		return nil
	}
	return &AssertError{Circuit: circuit, Message: message}
}

// Failf builds an AssertError directly, for violations detected without a
// boolean condition at hand.
func Failf(circuit, format string, args ...any) error {
	return &AssertError{Circuit: circuit, Message: fmt.Sprintf(format, args...)}
}

// AsAssertError unwraps err into an AssertError if one is in the chain.
func AsAssertError(err error) (*AssertError, bool) {
	var ae *AssertError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// CallError reports a malformed circuit invocation: wrong arity or an
// argument of an unexpected kind. Compiled modules raise it themselves; the
// simulator core forwards arguments without inspecting them.
type CallError struct {
	Circuit string
	Reason  string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("bad call to %s: %s", e.Circuit, e.Reason)
}

// AsCallError unwraps err into a CallError if one is in the chain.
func AsCallError(err error) (*CallError, bool) {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
