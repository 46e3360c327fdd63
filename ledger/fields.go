package ledger

import "fmt"

// Typed field accessors for ledger decoders. Each returns an error naming
// the field when it is absent or holds the wrong kind, so decoding a
// mis-shapen tree fails with something a test author can read.

// UintField returns the named field as a Uint.
func UintField(t *StateTree, name string) (Uint, error) {
	v, ok := t.Get(name)
	if !ok {
		return Uint{}, fmt.Errorf("ledger field %q: missing", name)
	}
	u, ok := v.(Uint)
	if !ok {
		return Uint{}, fmt.Errorf("ledger field %q: want uint, got %T", name, v)
	}
	return u, nil
}

// StrField returns the named field as a Str.
func StrField(t *StateTree, name string) (Str, error) {
	v, ok := t.Get(name)
	if !ok {
		return "", fmt.Errorf("ledger field %q: missing", name)
	}
	s, ok := v.(Str)
	if !ok {
		return "", fmt.Errorf("ledger field %q: want string, got %T", name, v)
	}
	return s, nil
}

// AddressField returns the named field as an Address.
func AddressField(t *StateTree, name string) (Address, error) {
	v, ok := t.Get(name)
	if !ok {
		return Address{}, fmt.Errorf("ledger field %q: missing", name)
	}
	a, ok := v.(Address)
	if !ok {
		return Address{}, fmt.Errorf("ledger field %q: want address, got %T", name, v)
	}
	return a, nil
}

// MapField returns the named field as a Map.
func MapField(t *StateTree, name string) (Map, error) {
	v, ok := t.Get(name)
	if !ok {
		return Map{}, fmt.Errorf("ledger field %q: missing", name)
	}
	m, ok := v.(Map)
	if !ok {
		return Map{}, fmt.Errorf("ledger field %q: want map, got %T", name, v)
	}
	return m, nil
}

// BoolField returns the named field as a Bool.
func BoolField(t *StateTree, name string) (Bool, error) {
	v, ok := t.Get(name)
	if !ok {
		return false, fmt.Errorf("ledger field %q: missing", name)
	}
	b, ok := v.(Bool)
	if !ok {
		return false, fmt.Errorf("ledger field %q: want bool, got %T", name, v)
	}
	return b, nil
}
