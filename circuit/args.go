package circuit

import (
	"fmt"

	"github.com/quietforge/circuitsim/ledger"
)

// Argument helpers for module implementations. Each extractor assumes the
// index was validated by NeedArgs first.

// NeedArgs checks the exact arity of a call.
func NeedArgs(circuit string, args []ledger.Value, n int) error {
	if len(args) != n {
		return &CallError{
			Circuit: circuit,
			Reason:  fmt.Sprintf("want %d args, got %d", n, len(args)),
		}
	}
	return nil
}

// UintArg extracts argument i as a Uint.
func UintArg(circuit string, args []ledger.Value, i int) (ledger.Uint, error) {
	v, ok := args[i].(ledger.Uint)
	if !ok {
		return ledger.Uint{}, badArg(circuit, i, "uint", args[i])
	}
	return v, nil
}

// AddressArg extracts argument i as an Address.
func AddressArg(circuit string, args []ledger.Value, i int) (ledger.Address, error) {
	v, ok := args[i].(ledger.Address)
	if !ok {
		return ledger.Address{}, badArg(circuit, i, "address", args[i])
	}
	return v, nil
}

// StrArg extracts argument i as a Str.
func StrArg(circuit string, args []ledger.Value, i int) (ledger.Str, error) {
	v, ok := args[i].(ledger.Str)
	if !ok {
		return "", badArg(circuit, i, "string", args[i])
	}
	return v, nil
}

// BoolArg extracts argument i as a Bool.
func BoolArg(circuit string, args []ledger.Value, i int) (ledger.Bool, error) {
	v, ok := args[i].(ledger.Bool)
	if !ok {
		return false, badArg(circuit, i, "bool", args[i])
	}
	return v, nil
}

// BytesArg extracts argument i as Bytes.
func BytesArg(circuit string, args []ledger.Value, i int) (ledger.Bytes, error) {
	v, ok := args[i].(ledger.Bytes)
	if !ok {
		return nil, badArg(circuit, i, "bytes", args[i])
	}
	return v, nil
}

func badArg(circuit string, i int, want string, got ledger.Value) *CallError {
	return &CallError{
		Circuit: circuit,
		Reason:  fmt.Sprintf("arg %d: want %s, got %T", i, want, got),
	}
}
