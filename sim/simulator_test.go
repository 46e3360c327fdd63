package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietforge/circuitsim/circuit"
	"github.com/quietforge/circuitsim/ledger"
)

func deployStub(t *testing.T, round uint64, opts ...Option) *Base {
	t.Helper()
	b, err := stubFactory().Deploy([]ledger.Value{ledger.NewUint(round)}, opts...)
	require.NoError(t, err)
	return b
}

func stubView(t *testing.T, b *Base) stubLedgerView {
	t.Helper()
	pub, err := b.PublicState()
	require.NoError(t, err)
	view, ok := pub.(stubLedgerView)
	require.True(t, ok, "public state is %T", pub)
	return view
}

func testIdentity(tag byte) ledger.Address {
	var a ledger.Address
	a[0] = tag
	return a
}

func TestDeploySeedsContext(t *testing.T) {
	alice := testIdentity(0x01)
	b := deployStub(t, 7, WithIdentity(alice))

	view := stubView(t, b)
	assert.Equal(t, "7", view.Round.Dec())
	assert.Equal(t, alice, view.Deployer)

	assert.Equal(t, stubPrivate{}, b.PrivateState())
	assert.False(t, b.Address().IsZero())

	// Both context views agree at rest.
	ctx := b.Context()
	assert.True(t, ctx.Original.Equal(ctx.Tx.State))
	assert.Equal(t, alice, ctx.Local.Identity)
	assert.Equal(t, b.Address(), ctx.Tx.Address)
}

func TestConstructorRejectionProducesNoInstance(t *testing.T) {
	b, err := stubFactory().Deploy([]ledger.Value{ledger.NewUint(101)})

	require.Error(t, err)
	assert.Nil(t, b)

	ae, ok := circuit.AsAssertError(err)
	require.True(t, ok)
	assert.Equal(t, "constructor", ae.Circuit)
}

func TestCallImpureCommitsOnSuccess(t *testing.T) {
	b := deployStub(t, 0)

	v, err := b.CallImpure("inc")
	require.NoError(t, err)
	assert.True(t, ledger.Equal(ledger.NewUint(1), v))

	v, err = b.CallImpure("inc")
	require.NoError(t, err)
	assert.True(t, ledger.Equal(ledger.NewUint(2), v))

	assert.Equal(t, "2", stubView(t, b).Round.Dec())
}

func TestCommitPersistsReturnedContextInFull(t *testing.T) {
	b := deployStub(t, 3)

	_, err := b.CallImpure("draw")
	require.NoError(t, err)

	// Every portion the operation produced is visible: ledger, private
	// state, and the agreement between the two state views.
	assert.Equal(t, "8", stubView(t, b).Round.Dec())
	assert.Equal(t, stubPrivate{Draws: 1}, b.PrivateState())

	ctx := b.Context()
	assert.True(t, ctx.Original.Equal(ctx.Tx.State))
}

func TestRollbackOnFailure(t *testing.T) {
	b := deployStub(t, 5)
	_, err := b.CallImpure("draw")
	require.NoError(t, err)

	pubBefore := stubView(t, b)
	privBefore := b.PrivateState()
	rootBefore := b.ContractState().Root()

	_, err = b.CallImpure("fail")
	require.Error(t, err)

	ae, ok := circuit.AsAssertError(err)
	require.True(t, ok)
	assert.Equal(t, "deliberate failure", ae.Message)

	// The failed call is a no-op from the outside.
	assert.Equal(t, pubBefore, stubView(t, b))
	assert.Equal(t, privBefore, b.PrivateState())
	assert.Equal(t, rootBefore, b.ContractState().Root())
}

func TestPureCallsAreIdempotent(t *testing.T) {
	b := deployStub(t, 9)
	rootBefore := b.ContractState().Root()

	first, err := b.CallPure("add", ledger.NewUint(2), ledger.NewUint(3))
	require.NoError(t, err)
	second, err := b.CallPure("add", ledger.NewUint(2), ledger.NewUint(3))
	require.NoError(t, err)

	assert.True(t, ledger.Equal(first, second))
	assert.True(t, ledger.Equal(ledger.NewUint(5), first))

	// Pure calls never mutate persisted state.
	assert.Equal(t, rootBefore, b.ContractState().Root())
	assert.Equal(t, stubPrivate{}, b.PrivateState())
}

func TestCallerOverrideObservedByImpureCalls(t *testing.T) {
	alice := testIdentity(0x01)
	eve := testIdentity(0x0e)

	b := deployStub(t, 0, WithIdentity(alice))

	v, err := b.CallImpure("whoami")
	require.NoError(t, err)
	assert.True(t, ledger.Equal(alice, v))

	b.SetCaller(eve)

	// The override is sticky across calls until cleared.
	for range 3 {
		v, err = b.CallImpure("whoami")
		require.NoError(t, err)
		assert.True(t, ledger.Equal(eve, v))
	}

	b.ClearCaller()

	v, err = b.CallImpure("whoami")
	require.NoError(t, err)
	assert.True(t, ledger.Equal(alice, v))
}

func TestCallerOverrideNeverPersisted(t *testing.T) {
	alice := testIdentity(0x01)
	eve := testIdentity(0x0e)

	b := deployStub(t, 0, WithIdentity(alice))

	b.SetCaller(eve)

	// A mutating call under override commits its ledger effect.
	_, err := b.CallImpure("inc")
	require.NoError(t, err)
	assert.Equal(t, "1", stubView(t, b).Round.Dec())

	// The persisted local identity is still the pre-override one.
	assert.Equal(t, alice, b.Context().Local.Identity)

	b.ClearCaller()
	v, err := b.CallImpure("whoami")
	require.NoError(t, err)
	assert.True(t, ledger.Equal(alice, v))
}

func TestCallerAccessor(t *testing.T) {
	b := deployStub(t, 0)

	_, ok := b.Caller()
	assert.False(t, ok)

	eve := testIdentity(0x0e)
	b.SetCaller(eve)
	got, ok := b.Caller()
	assert.True(t, ok)
	assert.Equal(t, eve, got)

	b.ClearCaller()
	_, ok = b.Caller()
	assert.False(t, ok)
}

func TestSetWitnessesPreservesState(t *testing.T) {
	b := deployStub(t, 0)

	_, err := b.CallImpure("draw")
	require.NoError(t, err)

	pubBefore := stubView(t, b)
	privBefore := b.PrivateState()

	err = b.SetWitnesses(circuit.WitnessTable{
		"supply": func(wctx circuit.WitnessContext, _ ...ledger.Value) (any, ledger.Value, error) {
			private, _ := wctx.Private.(stubPrivate)
			private.Draws += 10
			return private, ledger.NewUint(7), nil
		},
	})
	require.NoError(t, err)

	// State observed immediately after the swap is unchanged.
	assert.Equal(t, pubBefore, stubView(t, b))
	assert.Equal(t, privBefore, b.PrivateState())

	// Only subsequent calls behave differently.
	_, err = b.CallImpure("draw")
	require.NoError(t, err)
	assert.Equal(t, "12", stubView(t, b).Round.Dec())
	assert.Equal(t, stubPrivate{Draws: 11}, b.PrivateState())
}

func TestOverrideWitnessMergesSingleKey(t *testing.T) {
	extra := func(circuit.WitnessContext, ...ledger.Value) (any, ledger.Value, error) {
		return nil, ledger.Str("extra"), nil
	}
	table := stubWitnesses()
	table["extra"] = extra

	b, err := stubFactory().Deploy([]ledger.Value{ledger.NewUint(0)}, WithWitnesses(table))
	require.NoError(t, err)

	err = b.OverrideWitness("supply", func(wctx circuit.WitnessContext, _ ...ledger.Value) (any, ledger.Value, error) {
		return wctx.Private, ledger.NewUint(100), nil
	})
	require.NoError(t, err)

	active := b.Witnesses()
	require.Len(t, active, 2)

	// The untouched entry survives the merge.
	_, v, err := active["extra"](circuit.WitnessContext{})
	require.NoError(t, err)
	assert.True(t, ledger.Equal(ledger.Str("extra"), v))

	// The replaced entry drives subsequent calls.
	_, err = b.CallImpure("draw")
	require.NoError(t, err)
	assert.Equal(t, "100", stubView(t, b).Round.Dec())
}

func TestWitnessSwapRebindsDispatchTables(t *testing.T) {
	b := deployStub(t, 0)

	// Build the tables against the original binding.
	_, err := b.CallImpure("draw")
	require.NoError(t, err)
	assert.Equal(t, "5", stubView(t, b).Round.Dec())

	err = b.OverrideWitness("supply", func(wctx circuit.WitnessContext, _ ...ledger.Value) (any, ledger.Value, error) {
		return wctx.Private, ledger.NewUint(1000), nil
	})
	require.NoError(t, err)

	// A stale memoized table would still consult the old witness here.
	_, err = b.CallImpure("draw")
	require.NoError(t, err)
	assert.Equal(t, "1005", stubView(t, b).Round.Dec())
}

func TestMissingWitnessSurfacesAtFirstUse(t *testing.T) {
	// Deploying with an incomplete witness table succeeds: the registry
	// performs no shape validation.
	b, err := stubFactory().Deploy([]ledger.Value{ledger.NewUint(0)}, WithWitnesses(circuit.WitnessTable{}))
	require.NoError(t, err)

	_, err = b.CallImpure("inc")
	require.NoError(t, err, "circuits that consume no witness still work")

	_, err = b.CallImpure("draw")
	require.Error(t, err)

	ce, ok := circuit.AsCallError(err)
	require.True(t, ok)
	assert.Contains(t, ce.Reason, "supply")
}

func TestCallRoutesConflictingNameAsImpure(t *testing.T) {
	b := deployStub(t, 0)

	v, err := b.Call("both")
	require.NoError(t, err)
	assert.True(t, ledger.Equal(ledger.Str("impure"), v))
	assert.Equal(t, "10", stubView(t, b).Round.Dec())

	// The pure variant stays reachable explicitly and commits nothing.
	v, err = b.CallPure("both")
	require.NoError(t, err)
	assert.True(t, ledger.Equal(ledger.Str("pure"), v))
	assert.Equal(t, "10", stubView(t, b).Round.Dec())
}

func TestCallFallsBackToPureTable(t *testing.T) {
	b := deployStub(t, 0)

	v, err := b.Call("add", ledger.NewUint(20), ledger.NewUint(22))
	require.NoError(t, err)
	assert.True(t, ledger.Equal(ledger.NewUint(42), v))
}

func TestUnknownCircuitErrors(t *testing.T) {
	b := deployStub(t, 0)

	_, err := b.CallPure("nope")
	ue, ok := AsUnknownCircuit(err)
	require.True(t, ok)
	assert.Equal(t, "pure", ue.Surface)
	assert.Contains(t, err.Error(), `unknown pure circuit "nope"`)

	// A name only on the other surface is unknown to this one.
	_, err = b.CallPure("inc")
	_, ok = AsUnknownCircuit(err)
	assert.True(t, ok)

	_, err = b.CallImpure("add")
	ue, ok = AsUnknownCircuit(err)
	require.True(t, ok)
	assert.Equal(t, "impure", ue.Surface)

	_, err = b.Call("nope")
	ue, ok = AsUnknownCircuit(err)
	require.True(t, ok)
	assert.Empty(t, ue.Surface)
	assert.Contains(t, err.Error(), `unknown circuit "nope"`)
}

func TestNameListingsSorted(t *testing.T) {
	b := deployStub(t, 0)

	assert.Equal(t, []string{"add", "both"}, b.PureNames())
	assert.Equal(t, []string{"both", "draw", "fail", "inc", "whoami"}, b.ImpureNames())
}

func TestSetPrivateStateInjection(t *testing.T) {
	b := deployStub(t, 2)
	rootBefore := b.ContractState().Root()

	b.SetPrivateState(stubPrivate{Draws: 42})

	assert.Equal(t, stubPrivate{Draws: 42}, b.PrivateState())
	// Only the private portion changed.
	assert.Equal(t, rootBefore, b.ContractState().Root())
}

func TestInstancesAreIndependent(t *testing.T) {
	f := stubFactory()

	a, err := f.Deploy([]ledger.Value{ledger.NewUint(0)})
	require.NoError(t, err)
	b, err := f.Deploy([]ledger.Value{ledger.NewUint(0)})
	require.NoError(t, err)

	assert.NotEqual(t, a.Address(), b.Address())

	_, err = a.CallImpure("inc")
	require.NoError(t, err)

	assert.Equal(t, "1", stubView(t, a).Round.Dec())
	assert.Equal(t, "0", stubView(t, b).Round.Dec())
}
