package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeCall(t *testing.T, s *Store, runToken, circuit string, seq int64) Invocation {
	t.Helper()
	inv := Invocation{
		ID:       InvocationID(runToken, circuit, "0xabc", "[]", seq),
		RunToken: runToken,
		Circuit:  circuit,
		Caller:   "0xabc",
		Args:     "[]",
		Seq:      seq,
	}
	require.NoError(t, s.WriteInvocation(context.Background(), inv))
	return inv
}

func TestOpenInMemory(t *testing.T) {
	s := openStore(t)

	invs, outs, err := s.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Empty(t, invs)
	assert.Empty(t, outs)
}

func TestWriteAndReadRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	inv := writeCall(t, s, "run-1", "increment", 1)
	out := Outcome{
		ID:           OutcomeID(inv.ID, StatusOK, `"6"`, "", 2),
		InvocationID: inv.ID,
		Status:       StatusOK,
		Result:       `"6"`,
		Seq:          2,
	}
	require.NoError(t, s.WriteOutcome(ctx, out))

	invs, outs, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, invs, 1)
	require.Len(t, outs, 1)
	assert.Equal(t, inv, invs[0])
	assert.Equal(t, out, outs[0])
}

func TestReadRunFiltersByToken(t *testing.T) {
	s := openStore(t)

	writeCall(t, s, "run-1", "increment", 1)
	writeCall(t, s, "run-2", "decrement", 1)

	invs, _, err := s.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, invs, 1)
	assert.Equal(t, "increment", invs[0].Circuit)
}

func TestReadRunOrdersBySeq(t *testing.T) {
	s := openStore(t)

	writeCall(t, s, "run-1", "second", 3)
	writeCall(t, s, "run-1", "first", 1)

	invs, _, err := s.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, invs, 2)
	assert.Equal(t, "first", invs[0].Circuit)
	assert.Equal(t, "second", invs[1].Circuit)
}

func TestDuplicateInvocationIsNoOp(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	inv := writeCall(t, s, "run-1", "increment", 1)
	require.NoError(t, s.WriteInvocation(ctx, inv))

	invs, _, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, invs, 1)
}

func TestSecondOutcomeForInvocationIsIgnored(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	inv := writeCall(t, s, "run-1", "increment", 1)
	first := Outcome{
		ID:           OutcomeID(inv.ID, StatusOK, `"6"`, "", 2),
		InvocationID: inv.ID,
		Status:       StatusOK,
		Result:       `"6"`,
		Seq:          2,
	}
	require.NoError(t, s.WriteOutcome(ctx, first))

	second := Outcome{
		ID:           OutcomeID(inv.ID, StatusErr, "", "boom", 3),
		InvocationID: inv.ID,
		Status:       StatusErr,
		Error:        "boom",
		Seq:          3,
	}
	require.NoError(t, s.WriteOutcome(ctx, second))

	_, outs, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, StatusOK, outs[0].Status)
}

func TestCountInvocations(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	writeCall(t, s, "run-1", "increment", 1)
	writeCall(t, s, "run-1", "increment", 2)
	writeCall(t, s, "run-1", "decrement", 3)

	n, err := s.CountInvocations(ctx, "run-1", "increment")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.CountInvocations(ctx, "run-1", "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFirstSeq(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	writeCall(t, s, "run-1", "increment", 2)
	writeCall(t, s, "run-1", "increment", 5)

	seq, found, err := s.FirstSeq(ctx, "run-1", "increment")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2), seq)

	_, found, err = s.FirstSeq(ctx, "run-1", "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestContentAddressedIDs(t *testing.T) {
	a := InvocationID("run-1", "increment", "0xabc", "[]", 1)
	b := InvocationID("run-1", "increment", "0xabc", "[]", 1)
	c := InvocationID("run-1", "increment", "0xabc", "[]", 2)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	// Field boundaries matter: shifting a byte between adjacent fields must
	// change the ID.
	d := InvocationID("run-1x", "increment", "0xabc", "[]", 1)
	e := InvocationID("run-1", "xincrement", "0xabc", "[]", 1)
	assert.NotEqual(t, d, e)
}
