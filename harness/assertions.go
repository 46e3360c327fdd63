package harness

import (
	"context"
	"fmt"

	"github.com/quietforge/circuitsim/internal/manifest"
	"github.com/quietforge/circuitsim/internal/trace"
	"github.com/quietforge/circuitsim/ledger"
)

// AssertionError reports one failed assertion with the expected and actual
// sides spelled out.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion %s failed: expected %s, actual %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against the recorded trace and
// the final ledger state, returning one message per failure. Trace
// assertions run as SQL against the trace store; ledger_field decodes the
// final state tree directly.
func EvaluateAssertions(ctx context.Context, assertions []Assertion, st *trace.Store, runToken string, final *ledger.StateTree) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(ctx, st, runToken, a)
		case AssertTraceCount:
			err = assertTraceCount(ctx, st, runToken, a)
		case AssertTraceOrder:
			err = assertTraceOrder(ctx, st, runToken, a)
		case AssertLedgerField:
			err = assertLedgerField(final, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func assertTraceContains(ctx context.Context, st *trace.Store, runToken string, a Assertion) error {
	query := "SELECT COUNT(*) FROM invocations WHERE run_token = ? AND circuit = ?"
	args := []any{runToken, a.Circuit}
	expected := fmt.Sprintf("an invocation of %q", a.Circuit)
	if a.Caller != "" {
		addr, err := ResolveIdentity(a.Caller)
		if err != nil {
			return err
		}
		query += " AND caller = ?"
		args = append(args, addr.String())
		expected += fmt.Sprintf(" by %q", a.Caller)
	}

	rows, err := st.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query trace: %w", err)
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return fmt.Errorf("scan trace count: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("query trace: %w", err)
	}

	if n == 0 {
		return &AssertionError{
			Type:     AssertTraceContains,
			Expected: expected,
			Actual:   "not found in trace",
		}
	}
	return nil
}

func assertTraceCount(ctx context.Context, st *trace.Store, runToken string, a Assertion) error {
	n, err := st.CountInvocations(ctx, runToken, a.Circuit)
	if err != nil {
		return err
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d invocations of %q", a.Count, a.Circuit),
			Actual:   fmt.Sprintf("%d invocations", n),
		}
	}
	return nil
}

// assertTraceOrder checks that the first invocation of each listed circuit
// happened in the listed order. Interleaved calls to other circuits are
// allowed.
func assertTraceOrder(ctx context.Context, st *trace.Store, runToken string, a Assertion) error {
	prevSeq := int64(-1)
	prevName := ""
	for _, circuit := range a.Circuits {
		seq, found, err := st.FirstSeq(ctx, runToken, circuit)
		if err != nil {
			return err
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all of %v present", a.Circuits),
				Actual:   fmt.Sprintf("%q never invoked", circuit),
			}
		}
		if seq <= prevSeq {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("circuits in order %v", a.Circuits),
				Actual:   fmt.Sprintf("%q (seq %d) before %q (seq %d)", circuit, seq, prevName, prevSeq),
			}
		}
		prevSeq = seq
		prevName = circuit
	}
	return nil
}

func assertLedgerField(final *ledger.StateTree, a Assertion) error {
	got, ok := final.Get(a.Field)
	if !ok {
		return &AssertionError{
			Type:     AssertLedgerField,
			Expected: fmt.Sprintf("ledger field %q present", a.Field),
			Actual:   fmt.Sprintf("fields %v", final.Names()),
		}
	}
	want, err := expectedFieldValue(got, a.Value)
	if err != nil {
		return fmt.Errorf("field %q: %w", a.Field, err)
	}
	if !ledger.Equal(got, want) {
		return &AssertionError{
			Type:     AssertLedgerField,
			Expected: fmt.Sprintf("field %q = %s", a.Field, ledger.CanonicalJSON(want)),
			Actual:   string(ledger.CanonicalJSON(got)),
		}
	}
	return nil
}

// expectedFieldValue converts the YAML-supplied expected value to the kind
// the field actually holds. Composite kinds have no scenario syntax and
// cannot be asserted this way.
func expectedFieldValue(got ledger.Value, raw any) (ledger.Value, error) {
	switch got.(type) {
	case ledger.Bool:
		return manifest.ConvertArg("bool", raw)
	case ledger.Uint:
		return manifest.ConvertArg("uint", raw)
	case ledger.Str:
		return manifest.ConvertArg("string", raw)
	case ledger.Bytes:
		return manifest.ConvertArg("bytes", raw)
	case ledger.Address:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("want address string, got %T", raw)
		}
		return ResolveIdentity(s)
	default:
		return nil, fmt.Errorf("cannot compare a %T field against a scenario value", got)
	}
}
