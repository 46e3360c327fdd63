package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/quietforge/circuitsim/internal/manifest"
	"github.com/quietforge/circuitsim/internal/trace"
	"github.com/quietforge/circuitsim/ledger"
	"github.com/quietforge/circuitsim/sim"
	"github.com/quietforge/circuitsim/testutil"
)

// Runner executes scenarios against a registry. The zero value is not
// usable; construct with NewRunner.
type Runner struct {
	// Registry resolves scenario contract keys.
	Registry *Registry

	// Logger receives per-step progress. Defaults to a discard handler so
	// test runs stay quiet.
	Logger *slog.Logger

	// Tokens issues run tokens when a scenario does not fix one.
	Tokens TokenGenerator
}

// NewRunner returns a runner over reg with quiet logging and UUIDv7 run
// tokens.
func NewRunner(reg *Registry) *Runner {
	return &Runner{
		Registry: reg,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens:   UUIDv7Generator{},
	}
}

// Run executes a scenario with the given registry under default runner
// settings.
func Run(reg *Registry, sc *Scenario) (*Result, error) {
	return NewRunner(reg).Run(sc)
}

// Run executes one scenario: deploy, setup steps, flow steps, assertions.
// The returned error covers infrastructure failures (unknown contract,
// trace store trouble, malformed arguments); expectation and assertion
// failures land in the Result instead.
func (r *Runner) Run(sc *Scenario) (*Result, error) {
	entry, ok := r.Registry.Lookup(sc.Contract)
	if !ok {
		return nil, fmt.Errorf("contract %q is not registered", sc.Contract)
	}
	if err := r.Registry.ValidateScenario(sc); err != nil {
		return nil, err
	}

	runToken := sc.RunToken
	if runToken == "" {
		runToken = r.Tokens.Generate()
	}

	st, err := trace.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open trace store: %w", err)
	}
	defer st.Close()

	base, err := deployScenario(entry, sc.Deploy)
	if err != nil {
		return nil, fmt.Errorf("deploy %q: %w", sc.Contract, err)
	}
	if err := checkManifestDrift(entry, base); err != nil {
		return nil, err
	}

	ctx := context.Background()
	run := &scenarioRun{
		runner:   r,
		entry:    entry,
		store:    st,
		clock:    testutil.NewClock(),
		base:     base,
		runToken: runToken,
		result:   NewResult(runToken),
	}

	for i, step := range sc.Setup {
		if err := run.step(ctx, step, fmt.Sprintf("setup[%d]", i), true); err != nil {
			return nil, err
		}
	}
	for i, step := range sc.Flow {
		if err := run.step(ctx, step, fmt.Sprintf("flow[%d]", i), false); err != nil {
			return nil, err
		}
	}

	for _, msg := range EvaluateAssertions(ctx, sc.Assertions, st, runToken, base.ContractState()) {
		run.result.AddError(msg)
	}
	return run.result, nil
}

// scenarioRun is the mutable state of one execution.
type scenarioRun struct {
	runner   *Runner
	entry    *Entry
	store    *trace.Store
	clock    *testutil.Clock
	base     *sim.Base
	runToken string
	result   *Result
}

// step executes one call. Setup steps must succeed; their failures abort
// the run. Flow step failures are checked against the step's expectations
// and recorded in the result.
func (run *scenarioRun) step(ctx context.Context, step Step, label string, setup bool) error {
	decl, _ := run.entry.Manifest.Circuit(step.Call)
	args, err := convertScenarioArgs(decl.Args, step.Args)
	if err != nil {
		return fmt.Errorf("%s: circuit %q: %w", label, step.Call, err)
	}

	caller, err := run.applyCaller(step.Caller)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	argsJSON := string(ledger.CanonicalJSON(ledger.List(args)))
	invSeq := run.clock.Next()
	inv := trace.Invocation{
		ID:       trace.InvocationID(run.runToken, step.Call, caller, argsJSON, invSeq),
		RunToken: run.runToken,
		Circuit:  step.Call,
		Caller:   caller,
		Args:     argsJSON,
		Seq:      invSeq,
	}
	if err := run.store.WriteInvocation(ctx, inv); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	run.result.addInvocation(step.Call, caller, args, invSeq)

	value, callErr := run.base.Call(step.Call, args...)
	outSeq := run.clock.Next()

	if callErr != nil {
		out := trace.Outcome{
			ID:           trace.OutcomeID(inv.ID, trace.StatusErr, "", callErr.Error(), outSeq),
			InvocationID: inv.ID,
			Status:       trace.StatusErr,
			Error:        callErr.Error(),
			Seq:          outSeq,
		}
		if err := run.store.WriteOutcome(ctx, out); err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
		run.result.addOutcome(trace.StatusErr, nil, callErr.Error(), outSeq)
		run.runner.Logger.Info("step failed",
			"step", label, "circuit", step.Call, "error", callErr)

		if setup {
			return fmt.Errorf("%s: circuit %q: %w", label, step.Call, callErr)
		}
		switch {
		case step.ExpectError == "":
			run.result.AddError(fmt.Sprintf("%s: circuit %q: unexpected error: %v", label, step.Call, callErr))
		case !strings.Contains(callErr.Error(), step.ExpectError):
			run.result.AddError(fmt.Sprintf("%s: circuit %q: error %q does not contain %q",
				label, step.Call, callErr.Error(), step.ExpectError))
		}
		return nil
	}

	resultJSON := ""
	if value != nil {
		resultJSON = string(ledger.CanonicalJSON(value))
	}
	out := trace.Outcome{
		ID:           trace.OutcomeID(inv.ID, trace.StatusOK, resultJSON, "", outSeq),
		InvocationID: inv.ID,
		Status:       trace.StatusOK,
		Result:       resultJSON,
		Seq:          outSeq,
	}
	if err := run.store.WriteOutcome(ctx, out); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	run.result.addOutcome(trace.StatusOK, value, "", outSeq)
	run.runner.Logger.Info("step completed",
		"step", label, "circuit", step.Call, "result", resultJSON)

	if step.ExpectError != "" {
		run.result.AddError(fmt.Sprintf("%s: circuit %q: expected an error containing %q, call succeeded",
			label, step.Call, step.ExpectError))
		return nil
	}
	if step.Expect != nil {
		want, err := convertScenarioArg(decl.Result, step.Expect.Value)
		if err != nil {
			return fmt.Errorf("%s: circuit %q: expect: %w", label, step.Call, err)
		}
		if value == nil || !ledger.Equal(value, want) {
			run.result.AddError(fmt.Sprintf("%s: circuit %q: want %s, got %s",
				label, step.Call, ledger.CanonicalJSON(want), resultJSON))
		}
	}
	return nil
}

// applyCaller installs the step's caller override, or clears it when the
// step names none, and returns the identity the call will observe.
func (run *scenarioRun) applyCaller(caller string) (string, error) {
	if caller == "" {
		run.base.ClearCaller()
		return run.base.Context().Local.Identity.String(), nil
	}
	addr, err := ResolveIdentity(caller)
	if err != nil {
		return "", err
	}
	run.base.SetCaller(addr)
	return addr.String(), nil
}

// deployScenario runs the constructor per the scenario's deploy block.
func deployScenario(entry *Entry, deploy *DeployStep) (*sim.Base, error) {
	var raws []any
	var opts []sim.Option
	if deploy != nil {
		raws = deploy.Args
		if deploy.Caller != "" {
			id, err := ResolveIdentity(deploy.Caller)
			if err != nil {
				return nil, err
			}
			opts = append(opts, sim.WithIdentity(id))
		}
		if deploy.Address != "" {
			addr, err := ledger.ParseAddress(deploy.Address)
			if err != nil {
				return nil, err
			}
			opts = append(opts, sim.WithAddress(addr))
		}
	}
	args, err := convertScenarioArgs(entry.Manifest.Constructor.Args, raws)
	if err != nil {
		return nil, fmt.Errorf("constructor: %w", err)
	}
	return entry.Factory().Deploy(args, opts...)
}

// checkManifestDrift compares the manifest's declared surface with the live
// dispatch tables. A mismatch means the manifest no longer describes the
// module and every scenario over it is suspect.
func checkManifestDrift(entry *Entry, base *sim.Base) error {
	if !slices.Equal(base.PureNames(), entry.Manifest.PureNames()) {
		return fmt.Errorf("contract %q: manifest pure circuits %v drifted from module %v",
			entry.Key, entry.Manifest.PureNames(), base.PureNames())
	}
	if !slices.Equal(base.ImpureNames(), entry.Manifest.ImpureNames()) {
		return fmt.Errorf("contract %q: manifest impure circuits %v drifted from module %v",
			entry.Key, entry.Manifest.ImpureNames(), base.ImpureNames())
	}
	return nil
}

// ResolveIdentity turns a scenario identity string into an address: 0x-hex
// strings are parsed, anything else derives the deterministic test identity
// of that name. Scenarios can say "alice" and mean the same address every
// run.
func ResolveIdentity(s string) (ledger.Address, error) {
	if strings.HasPrefix(s, "0x") {
		return ledger.ParseAddress(s)
	}
	return testutil.Identity(s), nil
}

// convertScenarioArgs converts scenario-supplied arguments against declared
// kinds, with identity-name sugar for address kinds.
func convertScenarioArgs(kinds []string, raws []any) ([]ledger.Value, error) {
	if len(raws) != len(kinds) {
		return nil, fmt.Errorf("want %d args, got %d", len(kinds), len(raws))
	}
	out := make([]ledger.Value, len(raws))
	for i, raw := range raws {
		v, err := convertScenarioArg(kinds[i], raw)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func convertScenarioArg(kind string, raw any) (ledger.Value, error) {
	if kind == "address" {
		if s, ok := raw.(string); ok {
			return ResolveIdentity(s)
		}
		return nil, fmt.Errorf("want address string, got %T", raw)
	}
	return manifest.ConvertArg(kind, raw)
}
