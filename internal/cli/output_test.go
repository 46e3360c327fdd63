package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	plain := NewExitError(ExitFailure, "scenarios failed")
	assert.Equal(t, "scenarios failed", plain.Error())
	assert.Equal(t, ExitFailure, GetExitCode(plain))

	wrapped := WrapExitError(ExitCommandError, "load scenario", errors.New("no such file"))
	assert.Equal(t, "load scenario: no such file", wrapped.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("outer: %w", wrapped)))

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestFormatterEmitOK(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Emit(map[string]any{"n": 1}, "", ""))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestFormatterEmitError(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Emit(nil, "E_TEST", "it broke"))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST", resp.Error.Code)
	assert.Equal(t, "it broke", resp.Error.Message)
}

func TestTextfSuppressedInJSONMode(t *testing.T) {
	var buf bytes.Buffer

	text := &OutputFormatter{Format: "text", Writer: &buf}
	text.Textf("hello %s\n", "world")
	assert.Equal(t, "hello world\n", buf.String())

	buf.Reset()
	jsonF := &OutputFormatter{Format: "json", Writer: &buf}
	jsonF.Textf("hello %s\n", "world")
	assert.Empty(t, buf.String())
}
