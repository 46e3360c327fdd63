package ledger

import (
	"bytes"
	"encoding/binary"
	"slices"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/unicode/norm"
)

// StateTree is the public ledger state of one contract instance: named fields
// holding circuit values. A tree is immutable. With returns a new tree that
// shares unchanged values, which is what makes discarding a failed call as
// cheap as dropping the context that held it.
//
// The simulator core never reads field names or values. Only compiled modules
// and their generated decoders interpret the tree.
//
// The zero StateTree is not usable; obtain trees from NewStateTree or With.
type StateTree struct {
	fields map[string]Value
}

// NewStateTree returns a tree holding the given fields. With no arguments
// the tree is empty. Field maps are copied; on a key collision the later map
// wins.
func NewStateTree(fields ...map[string]Value) *StateTree {
	merged := map[string]Value{}
	for _, m := range fields {
		for k, v := range m {
			merged[k] = v
		}
	}
	return &StateTree{fields: merged}
}

// Get returns the field value stored under name.
func (t *StateTree) Get(name string) (Value, bool) {
	v, ok := t.fields[name]
	return v, ok
}

// With returns a copy of t with name bound to value.
func (t *StateTree) With(name string, value Value) *StateTree {
	fields := make(map[string]Value, len(t.fields)+1)
	for k, v := range t.fields {
		fields[k] = v
	}
	fields[name] = value
	return &StateTree{fields: fields}
}

// Names returns the field names in canonical (UTF-16 code unit) order.
func (t *StateTree) Names() []string {
	names := make([]string, 0, len(t.fields))
	for name := range t.fields {
		names = append(names, name)
	}
	slices.SortFunc(names, compareUTF16)
	return names
}

// Len returns the number of fields.
func (t *StateTree) Len() int {
	return len(t.fields)
}

// Encode produces the canonical binary form of the whole tree: a tree tag, a
// field count, then each NFC-normalized name and encoded value in canonical
// name order.
func (t *StateTree) Encode() []byte {
	dst := []byte{tagTree}
	dst = binary.AppendUvarint(dst, uint64(len(t.fields)))
	for _, name := range t.Names() {
		s := norm.NFC.String(name)
		dst = binary.AppendUvarint(dst, uint64(len(s)))
		dst = append(dst, s...)
		dst = appendValue(dst, t.fields[name])
	}
	return dst
}

// Root returns the blake2b-256 digest of the canonical encoding. Tests and
// traces use it as a compact state fingerprint. It is not a commitment
// scheme in the protocol sense.
func (t *StateTree) Root() [32]byte {
	return blake2b.Sum256(t.Encode())
}

// Equal reports whether two trees hold identical fields.
func (t *StateTree) Equal(other *StateTree) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return bytes.Equal(t.Encode(), other.Encode())
}

// CanonicalJSON renders the tree as a canonical JSON object keyed by field
// name. Trace records and golden files embed this form.
func (t *StateTree) CanonicalJSON() []byte {
	dst := []byte{'{'}
	for i, name := range t.Names() {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendCanonicalString(dst, name)
		dst = append(dst, ':')
		dst = AppendCanonicalJSON(dst, t.fields[name])
	}
	return append(dst, '}')
}
