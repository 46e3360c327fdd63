package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxUint256Dec = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

func TestNewUint(t *testing.T) {
	u := NewUint(12345)
	assert.Equal(t, "12345", u.Dec())
	assert.False(t, u.IsZero())

	var zero Uint
	assert.True(t, zero.IsZero())
	assert.Equal(t, "0", zero.Dec())
}

func TestUintFromDecimal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"zero", "0", false},
		{"small", "42", false},
		{"max uint256", maxUint256Dec, false},
		{"past max", maxUint256Dec + "0", true},
		{"negative", "-1", true},
		{"not a number", "12a4", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := UintFromDecimal(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, u.Dec())
		})
	}
}

func TestUintBytes32RoundTrip(t *testing.T) {
	u := NewUint(0xdeadbeef)
	b := u.Bytes32()

	// Big-endian: the value sits at the tail.
	assert.Equal(t, byte(0xef), b[31])
	assert.Equal(t, byte(0xde), b[28])

	assert.True(t, Equal(u, UintFromBytes32(b)))
}

func TestUintUint64(t *testing.T) {
	n, ok := NewUint(777).Uint64()
	assert.True(t, ok)
	assert.Equal(t, uint64(777), n)

	big, err := UintFromDecimal(maxUint256Dec)
	require.NoError(t, err)
	_, ok = big.Uint64()
	assert.False(t, ok)
}

func TestUintCmp(t *testing.T) {
	assert.Equal(t, -1, NewUint(1).Cmp(NewUint(2)))
	assert.Equal(t, 1, NewUint(2).Cmp(NewUint(1)))
	assert.Equal(t, 0, NewUint(5).Cmp(NewUint(5)))
}

func TestUintAddOverflow(t *testing.T) {
	sum, overflow := NewUint(40).AddOverflow(NewUint(2))
	assert.False(t, overflow)
	assert.Equal(t, "42", sum.Dec())

	max, err := UintFromDecimal(maxUint256Dec)
	require.NoError(t, err)

	wrapped, overflow := max.AddOverflow(NewUint(1))
	assert.True(t, overflow)
	assert.True(t, wrapped.IsZero())
}

func TestUintSubUnderflow(t *testing.T) {
	diff, underflow := NewUint(42).SubUnderflow(NewUint(2))
	assert.False(t, underflow)
	assert.Equal(t, "40", diff.Dec())

	_, underflow = NewUint(1).SubUnderflow(NewUint(2))
	assert.True(t, underflow)
}

func TestUintMulOverflow(t *testing.T) {
	prod, overflow := NewUint(6).MulOverflow(NewUint(7))
	assert.False(t, overflow)
	assert.Equal(t, "42", prod.Dec())

	max, err := UintFromDecimal(maxUint256Dec)
	require.NoError(t, err)

	_, overflow = max.MulOverflow(NewUint(2))
	assert.True(t, overflow)
}
