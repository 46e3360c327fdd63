package harness

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7GeneratorIssuesUniqueTokens(t *testing.T) {
	gen := UUIDv7Generator{}

	a := gen.Generate()
	b := gen.Generate()

	assert.NotEqual(t, a, b)
	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("run-pinned")
	assert.Equal(t, "run-pinned", gen.Generate())
	assert.Equal(t, "run-pinned", gen.Generate())

	assert.Equal(t, "run-default", NewFixedGenerator("").Generate())
}
