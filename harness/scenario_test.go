package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: smallest valid scenario
contract: counter
flow:
  - call: increment
`

func TestParseScenarioMinimal(t *testing.T) {
	sc, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", sc.Name)
	assert.Equal(t, "counter", sc.Contract)
	require.Len(t, sc.Flow, 1)
	assert.Equal(t, "increment", sc.Flow[0].Call)
}

func TestParseScenarioFull(t *testing.T) {
	src := `
name: full
description: every field in use
contract: counter
run_token: run-fixed
deploy:
  args: [5]
  caller: alice
setup:
  - call: increment
flow:
  - call: decrement
    caller: bob
    expect:
      value: 5
  - call: decrement
    expect_error: underflow
assertions:
  - type: trace_count
    circuit: decrement
    count: 2
  - type: trace_order
    circuits: [increment, decrement]
  - type: ledger_field
    field: round
    value: 4
`
	sc, err := ParseScenario([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "run-fixed", sc.RunToken)
	require.NotNil(t, sc.Deploy)
	assert.Equal(t, "alice", sc.Deploy.Caller)
	require.Len(t, sc.Flow, 2)
	require.NotNil(t, sc.Flow[0].Expect)
	assert.Equal(t, 5, sc.Flow[0].Expect.Value)
	assert.Equal(t, "underflow", sc.Flow[1].ExpectError)
	assert.Len(t, sc.Assertions, 3)
}

func TestParseScenarioRejectsUnknownField(t *testing.T) {
	src := `
name: typo
description: assertion vs assertions
contract: counter
flow:
  - call: increment
assertion:
  - type: trace_count
`
	_, err := ParseScenario([]byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertion")
}

func TestParseScenarioValidation(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing name",
			src: `
description: d
contract: counter
flow:
  - call: increment
`,
			want: "name is required",
		},
		{
			name: "missing contract",
			src: `
name: n
description: d
flow:
  - call: increment
`,
			want: "contract is required",
		},
		{
			name: "empty flow",
			src: `
name: n
description: d
contract: counter
`,
			want: "flow list is required",
		},
		{
			name: "setup with expectation",
			src: `
name: n
description: d
contract: counter
setup:
  - call: increment
    expect_error: nope
flow:
  - call: increment
`,
			want: "setup steps carry no expectations",
		},
		{
			name: "expect and expect_error together",
			src: `
name: n
description: d
contract: counter
flow:
  - call: increment
    expect:
      value: 6
    expect_error: boom
`,
			want: "mutually exclusive",
		},
		{
			name: "trace_contains without circuit",
			src: `
name: n
description: d
contract: counter
flow:
  - call: increment
assertions:
  - type: trace_contains
`,
			want: "circuit is required",
		},
		{
			name: "trace_order with one circuit",
			src: `
name: n
description: d
contract: counter
flow:
  - call: increment
assertions:
  - type: trace_order
    circuits: [increment]
`,
			want: "at least two circuits",
		},
		{
			name: "unknown assertion type",
			src: `
name: n
description: d
contract: counter
flow:
  - call: increment
assertions:
  - type: final_state
`,
			want: "unknown assertion type",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadScenarioFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", sc.Name)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
