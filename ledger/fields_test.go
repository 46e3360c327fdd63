package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedFieldAccessors(t *testing.T) {
	tree := NewStateTree(map[string]Value{
		"count": NewUint(7),
		"label": Str("demo"),
		"who":   Address{0xAA},
		"table": NewMap(MapEntry{Key: Str("k"), Value: Bool(true)}),
		"open":  Bool(true),
	})

	t.Run("returns typed values", func(t *testing.T) {
		u, err := UintField(tree, "count")
		require.NoError(t, err)
		assert.Equal(t, "7", u.Dec())

		s, err := StrField(tree, "label")
		require.NoError(t, err)
		assert.Equal(t, Str("demo"), s)

		a, err := AddressField(tree, "who")
		require.NoError(t, err)
		assert.Equal(t, Address{0xAA}, a)

		m, err := MapField(tree, "table")
		require.NoError(t, err)
		assert.Equal(t, 1, m.Len())

		b, err := BoolField(tree, "open")
		require.NoError(t, err)
		assert.Equal(t, Bool(true), b)
	})

	t.Run("missing field names the field", func(t *testing.T) {
		_, err := UintField(tree, "absent")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"absent"`)
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("wrong kind names both kinds", func(t *testing.T) {
		_, err := UintField(tree, "label")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want uint")

		_, err = StrField(tree, "count")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want string")

		_, err = AddressField(tree, "open")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want address")

		_, err = MapField(tree, "who")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want map")

		_, err = BoolField(tree, "table")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want bool")
	})
}
