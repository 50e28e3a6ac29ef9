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
	err := NewExitError(ExitFailure, "3 validation error(s)")
	assert.Equal(t, "3 validation error(s)", err.Error())
	assert.Equal(t, ExitFailure, GetExitCode(err))

	cause := errors.New("no such file")
	wrapped := WrapExitError(ExitCommandError, "failed to load script", cause)
	assert.Equal(t, "failed to load script: no such file", wrapped.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, cause)

	// Further wrapping still surfaces the code.
	outer := fmt.Errorf("context: %w", wrapped)
	assert.Equal(t, ExitCommandError, GetExitCode(outer))

	// Non-exit errors default to failure.
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]any{"valid": true}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)

	buf.Reset()
	require.NoError(t, f.Failure("load_failed", "bad script", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "load_failed", resp.Error.Code)
}

func TestOutputFormatter_Text(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success("Script is valid."))
	assert.Equal(t, "Script is valid.\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Failure("load_failed", "bad script", nil))
	assert.Contains(t, buf.String(), "error [load_failed]: bad script")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errBuf, Verbose: true}

	f.VerboseLog("loaded %d collections", 3)
	assert.Empty(t, out.String(), "verbose logs stay off stdout")
	assert.Equal(t, "loaded 3 collections\n", errBuf.String())

	errBuf.Reset()
	f.Verbose = false
	f.VerboseLog("hidden")
	assert.Empty(t, errBuf.String())
}
