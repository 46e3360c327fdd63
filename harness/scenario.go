package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one conformance test: deploy a contract, drive circuit calls,
// assert on the recorded trace and final ledger state.
type Scenario struct {
	// Name uniquely identifies the scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Contract is the registry key of the contract under test.
	Contract string `yaml:"contract"`

	// Deploy configures the constructor call. Nil deploys with no
	// arguments and the default identity.
	Deploy *DeployStep `yaml:"deploy,omitempty"`

	// Setup steps establish state before the flow. They must succeed and
	// carry no expectations.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the main call sequence.
	Flow []Step `yaml:"flow"`

	// Assertions validate the trace and final ledger state after the flow.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// RunToken fixes the run token for deterministic traces. Empty means a
	// fresh token per run.
	RunToken string `yaml:"run_token,omitempty"`
}

// DeployStep configures the constructor invocation.
type DeployStep struct {
	// Args are the constructor arguments, converted against the manifest's
	// declared constructor kinds.
	Args []any `yaml:"args,omitempty"`

	// Caller is the deployer identity: a 0x-hex address or a name resolved
	// to a deterministic test identity. Empty means the zero identity.
	Caller string `yaml:"caller,omitempty"`

	// Address pins the instance to a fixed contract address.
	Address string `yaml:"address,omitempty"`
}

// Step is one circuit call.
type Step struct {
	// Call is the circuit name, looked up in the contract manifest.
	Call string `yaml:"call"`

	// Caller overrides the caller identity for this step. Empty means the
	// persisted identity.
	Caller string `yaml:"caller,omitempty"`

	// Args are the call arguments, converted against the circuit's
	// declared kinds.
	Args []any `yaml:"args,omitempty"`

	// Expect checks the returned value. Mutually exclusive with
	// ExpectError.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// ExpectError requires the call to fail with an error containing this
	// substring.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// ExpectClause checks a call's returned value.
type ExpectClause struct {
	Value any `yaml:"value"`
}

// Assertion validates the recorded trace or the final ledger state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Circuit names the circuit (trace_contains, trace_count).
	Circuit string `yaml:"circuit,omitempty"`

	// Caller narrows trace_contains to invocations by this identity.
	Caller string `yaml:"caller,omitempty"`

	// Count is the exact invocation count (trace_count).
	Count int `yaml:"count,omitempty"`

	// Circuits is the required first-invocation order (trace_order).
	Circuits []string `yaml:"circuits,omitempty"`

	// Field names the ledger field (ledger_field).
	Field string `yaml:"field,omitempty"`

	// Value is the expected field value (ledger_field).
	Value any `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceCount    = "trace_count"
	AssertTraceOrder    = "trace_order"
	AssertLedgerField   = "ledger_field"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so a typo fails loudly instead of silently dropping a check.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML source with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Contract == "" {
		return fmt.Errorf("contract is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if step.Call == "" {
			return fmt.Errorf("setup[%d]: call is required", i)
		}
		if step.Expect != nil || step.ExpectError != "" {
			return fmt.Errorf("setup[%d]: setup steps carry no expectations", i)
		}
	}

	for i, step := range s.Flow {
		if step.Call == "" {
			return fmt.Errorf("flow[%d]: call is required", i)
		}
		if step.Expect != nil && step.ExpectError != "" {
			return fmt.Errorf("flow[%d]: expect and expect_error are mutually exclusive", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Circuit == "" {
			return fmt.Errorf("assertions[%d]: circuit is required for trace_contains", index)
		}
	case AssertTraceCount:
		if a.Circuit == "" {
			return fmt.Errorf("assertions[%d]: circuit is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertTraceOrder:
		if len(a.Circuits) < 2 {
			return fmt.Errorf("assertions[%d]: trace_order needs at least two circuits", index)
		}
	case AssertLedgerField:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for ledger_field", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for ledger_field", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
