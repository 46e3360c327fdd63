package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTreeGetAndWith(t *testing.T) {
	tree := NewStateTree()

	_, ok := tree.Get("owner")
	assert.False(t, ok)

	var owner Address
	owner[0] = 0x01

	tree2 := tree.With("owner", owner)

	v, ok := tree2.Get("owner")
	require.True(t, ok)
	assert.True(t, Equal(owner, v))

	// The original tree is untouched.
	_, ok = tree.Get("owner")
	assert.False(t, ok)
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, 1, tree2.Len())
}

func TestStateTreeWithReplacesField(t *testing.T) {
	t1 := NewStateTree().With("round", NewUint(1))
	t2 := t1.With("round", NewUint(2))

	v, _ := t1.Get("round")
	assert.True(t, Equal(NewUint(1), v))

	v, _ = t2.Get("round")
	assert.True(t, Equal(NewUint(2), v))
}

func TestStateTreeNamesCanonicalOrder(t *testing.T) {
	tree := NewStateTree().
		With("totalSupply", NewUint(0)).
		With("balances", Map{}).
		With("name", Str("tok"))

	assert.Equal(t, []string{"balances", "name", "totalSupply"}, tree.Names())
}

func TestStateTreeNamesUTF16Order(t *testing.T) {
	// Field names sort by UTF-16 code units. U+10000 encodes as a surrogate
	// pair starting at D800, which sorts before U+E000.
	tree := NewStateTree().
		With("", NewUint(1)).
		With("\U00010000", NewUint(2))

	assert.Equal(t, []string{"\U00010000", ""}, tree.Names())
}

func TestStateTreeRootDeterministic(t *testing.T) {
	a := NewStateTree().
		With("owner", Str("alice")).
		With("round", NewUint(7))
	b := NewStateTree().
		With("round", NewUint(7)).
		With("owner", Str("alice"))

	assert.Equal(t, a.Root(), b.Root())

	c := b.With("round", NewUint(8))
	assert.NotEqual(t, a.Root(), c.Root())
}

func TestStateTreeEqual(t *testing.T) {
	a := NewStateTree().With("x", NewUint(1))
	b := NewStateTree().With("x", NewUint(1))
	c := NewStateTree().With("x", NewUint(2))

	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))

	var nilTree *StateTree
	assert.False(t, nilTree.Equal(a))
	assert.True(t, nilTree.Equal(nil))
}

func TestStateTreeCanonicalJSON(t *testing.T) {
	tree := NewStateTree().
		With("round", NewUint(3)).
		With("label", Str("demo"))

	out := string(tree.CanonicalJSON())
	assert.Equal(t, `{"label":"demo","round":"3"}`, out)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded, 2)
}

func TestStateTreeEncodeDistinguishesNames(t *testing.T) {
	a := NewStateTree().With("ab", Str("c"))
	b := NewStateTree().With("a", Str("bc"))

	assert.NotEqual(t, a.Encode(), b.Encode())
	assert.NotEqual(t, a.Root(), b.Root())
}

func TestEmptyStateTree(t *testing.T) {
	tree := NewStateTree()

	assert.Equal(t, 0, tree.Len())
	assert.Empty(t, tree.Names())
	assert.Equal(t, "{}", string(tree.CanonicalJSON()))

	// Two empty trees agree on everything.
	assert.True(t, tree.Equal(NewStateTree()))
	assert.Equal(t, tree.Root(), NewStateTree().Root())
}
