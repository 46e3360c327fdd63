package harness

import "github.com/quietforge/circuitsim/ledger"

// Trace event kinds.
const (
	EventInvocation = "invocation"
	EventOutcome    = "outcome"
)

// TraceEvent is one entry of a run's trace: a circuit invocation or its
// outcome. Invocation events carry Circuit, Caller and Args; outcome events
// carry Status plus Value (ok) or Error (err).
type TraceEvent struct {
	Type    string
	Seq     int64
	Circuit string
	Caller  string
	Args    []ledger.Value
	Status  string
	Value   ledger.Value
	Error   string
}

// Result is the outcome of one scenario run.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool

	// RunToken identifies the run in the trace store.
	RunToken string

	// Trace lists all invocations and outcomes in order.
	Trace []TraceEvent

	// Errors collects expectation and assertion failures. Empty when Pass.
	Errors []string
}

// NewResult returns a passing result to accumulate into.
func NewResult(runToken string) *Result {
	return &Result{Pass: true, RunToken: runToken, Trace: []TraceEvent{}, Errors: []string{}}
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

func (r *Result) addInvocation(circuit, caller string, args []ledger.Value, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:    EventInvocation,
		Seq:     seq,
		Circuit: circuit,
		Caller:  caller,
		Args:    args,
	})
}

func (r *Result) addOutcome(status string, value ledger.Value, errText string, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:   EventOutcome,
		Seq:    seq,
		Status: status,
		Value:  value,
		Error:  errText,
	})
}
