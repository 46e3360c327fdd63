package harness

import (
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/quietforge/circuitsim/ledger"
)

// TraceSnapshot is the golden-file form of a run: scenario name, run token,
// and the full trace. Rendering is canonical, so two runs of the same
// scenario with the same run token produce byte-identical snapshots.
type TraceSnapshot struct {
	ScenarioName string
	RunToken     string
	Trace        []TraceEvent
}

// MarshalJSON renders the snapshot as compact JSON with keys in canonical
// order. Ledger values use their canonical JSON form; strings are NFC
// normalized the same way trace records are.
func (s TraceSnapshot) MarshalJSON() ([]byte, error) {
	var dst []byte
	dst = append(dst, `{"run_token":`...)
	dst = appendString(dst, s.RunToken)
	dst = append(dst, `,"scenario_name":`...)
	dst = appendString(dst, s.ScenarioName)
	dst = append(dst, `,"trace":[`...)
	for i, event := range s.Trace {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendEvent(dst, event)
	}
	dst = append(dst, ']', '}')
	return dst, nil
}

func appendEvent(dst []byte, e TraceEvent) []byte {
	dst = append(dst, '{')
	if e.Type == EventInvocation {
		dst = append(dst, `"args":`...)
		dst = ledger.AppendCanonicalJSON(dst, ledger.List(e.Args))
		dst = append(dst, `,"caller":`...)
		dst = appendString(dst, e.Caller)
		dst = append(dst, `,"circuit":`...)
		dst = appendString(dst, e.Circuit)
		dst = append(dst, ',')
	} else {
		if e.Error != "" {
			dst = append(dst, `"error":`...)
			dst = appendString(dst, e.Error)
			dst = append(dst, ',')
		}
	}
	dst = append(dst, `"seq":`...)
	dst = strconv.AppendInt(dst, e.Seq, 10)
	if e.Status != "" {
		dst = append(dst, `,"status":`...)
		dst = appendString(dst, e.Status)
	}
	dst = append(dst, `,"type":`...)
	dst = appendString(dst, e.Type)
	if e.Value != nil {
		dst = append(dst, `,"value":`...)
		dst = ledger.AppendCanonicalJSON(dst, e.Value)
	}
	return append(dst, '}')
}

func appendString(dst []byte, s string) []byte {
	return ledger.AppendCanonicalJSON(dst, ledger.Str(s))
}

// RunWithGolden executes a scenario and compares its trace snapshot against
// testdata/golden/<scenario name>.golden. Regenerate goldens with
//
//	go test ./harness -update
//
// Scenarios used with golden files should fix run_token, otherwise the
// snapshot changes every run.
func RunWithGolden(t *testing.T, r *Runner, sc *Scenario) *Result {
	t.Helper()

	result, err := r.Run(sc)
	if err != nil {
		t.Fatalf("run scenario %q: %v", sc.Name, err)
	}

	snapshot := TraceSnapshot{
		ScenarioName: sc.Name,
		RunToken:     result.RunToken,
		Trace:        result.Trace,
	}
	data, err := snapshot.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal trace snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, data)
	return result
}
