package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceTimeline(t *testing.T) {
	out, err := execute(t, "trace", filepath.Join("testdata", "counter-basic.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "run ")
	assert.Contains(t, out, "[1] call increment([])")
	assert.Contains(t, out, `[2]   ok "6"`)
	assert.Contains(t, out, "[3] call decrement([])")
	assert.Contains(t, out, `[4]   ok "5"`)
}

func TestTraceJSONSnapshot(t *testing.T) {
	out, err := execute(t, "trace", filepath.Join("testdata", "counter-basic.yaml"), "--format", "json")
	require.NoError(t, err)

	var snapshot struct {
		RunToken     string `json:"run_token"`
		ScenarioName string `json:"scenario_name"`
		Trace        []struct {
			Type    string `json:"type"`
			Seq     int64  `json:"seq"`
			Circuit string `json:"circuit"`
			Status  string `json:"status"`
		} `json:"trace"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snapshot))

	assert.Equal(t, "counter-basic", snapshot.ScenarioName)
	assert.NotEmpty(t, snapshot.RunToken)
	require.Len(t, snapshot.Trace, 4)
	assert.Equal(t, "invocation", snapshot.Trace[0].Type)
	assert.Equal(t, "increment", snapshot.Trace[0].Circuit)
	assert.Equal(t, "outcome", snapshot.Trace[1].Type)
	assert.Equal(t, "ok", snapshot.Trace[1].Status)
}

func TestTraceFailingScenarioExitsNonzero(t *testing.T) {
	out, err := execute(t, "trace", filepath.Join("testdata", "counter-fails.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "failure:")
}

func TestTraceMissingFile(t *testing.T) {
	_, err := execute(t, "trace", filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
