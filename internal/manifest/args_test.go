package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietforge/circuitsim/internal/manifest"
	"github.com/quietforge/circuitsim/ledger"
	"github.com/quietforge/circuitsim/testutil"
)

func TestConvertArg(t *testing.T) {
	alice := testutil.Identity("alice")

	t.Run("bool", func(t *testing.T) {
		v, err := manifest.ConvertArg("bool", true)
		require.NoError(t, err)
		assert.Equal(t, ledger.Bool(true), v)

		_, err = manifest.ConvertArg("bool", "true")
		require.Error(t, err)
	})

	t.Run("uint from yaml integers", func(t *testing.T) {
		v, err := manifest.ConvertArg("uint", 42)
		require.NoError(t, err)
		assert.Equal(t, ledger.NewUint(42), v)

		v, err = manifest.ConvertArg("uint", int64(7))
		require.NoError(t, err)
		assert.Equal(t, ledger.NewUint(7), v)

		v, err = manifest.ConvertArg("uint", uint64(9))
		require.NoError(t, err)
		assert.Equal(t, ledger.NewUint(9), v)
	})

	t.Run("uint from decimal string", func(t *testing.T) {
		v, err := manifest.ConvertArg("uint", "340282366920938463463374607431768211456")
		require.NoError(t, err)
		want := testutil.MustUint("340282366920938463463374607431768211456")
		assert.Equal(t, want, v)
	})

	t.Run("negative uint is rejected", func(t *testing.T) {
		_, err := manifest.ConvertArg("uint", -1)
		require.ErrorContains(t, err, "negative")
	})

	t.Run("string", func(t *testing.T) {
		v, err := manifest.ConvertArg("string", "hello")
		require.NoError(t, err)
		assert.Equal(t, ledger.Str("hello"), v)
	})

	t.Run("bytes from 0x hex", func(t *testing.T) {
		v, err := manifest.ConvertArg("bytes", "0xdeadbeef")
		require.NoError(t, err)
		assert.Equal(t, ledger.Bytes{0xde, 0xad, 0xbe, 0xef}, v)

		_, err = manifest.ConvertArg("bytes", "deadbeef")
		require.ErrorContains(t, err, "0x prefix")

		_, err = manifest.ConvertArg("bytes", "0xzz")
		require.Error(t, err)
	})

	t.Run("address round-trips through its string form", func(t *testing.T) {
		v, err := manifest.ConvertArg("address", alice.String())
		require.NoError(t, err)
		assert.Equal(t, alice, v)
	})

	t.Run("composite kinds are not scenario arguments", func(t *testing.T) {
		for _, kind := range []string{"list", "map", "unit"} {
			_, err := manifest.ConvertArg(kind, "x")
			require.ErrorContains(t, err, "cannot be supplied")
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := manifest.ConvertArg("float", 1.5)
		require.ErrorContains(t, err, `unknown kind "float"`)
	})
}

func TestConvertArgs(t *testing.T) {
	alice := testutil.Identity("alice")

	vals, err := manifest.ConvertArgs([]string{"address", "uint"}, []any{alice.String(), 100})
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.Equal(t, alice, vals[0])
	assert.Equal(t, ledger.NewUint(100), vals[1])

	_, err = manifest.ConvertArgs([]string{"uint"}, []any{1, 2})
	require.ErrorContains(t, err, "want 1 args, got 2")

	_, err = manifest.ConvertArgs([]string{"uint"}, []any{"not a number"})
	require.ErrorContains(t, err, "arg 0")
}
