package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsGoodScenario(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join("testdata", "counter-basic.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
}

func TestValidateRejectsUnknownCircuit(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join("testdata", "unknown-circuit.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "not declared")
}

func TestValidateReportsPerFile(t *testing.T) {
	out, err := execute(t, "validate",
		filepath.Join("testdata", "counter-basic.yaml"),
		filepath.Join("testdata", "unknown-circuit.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "✓ "+filepath.Join("testdata", "counter-basic.yaml"))
	assert.Contains(t, out, "✗ "+filepath.Join("testdata", "unknown-circuit.yaml"))
}

func TestValidateMissingFile(t *testing.T) {
	_, err := execute(t, "validate", filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
