package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReload_SwapsValidScript(t *testing.T) {
	r, _, _ := testRunner(t, Options{})

	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cues:
  - name: RELOADED
`), 0o644))

	r.reload(path)
	_, ok := r.scriptContent().ResourceByName("cues", "RELOADED")
	assert.True(t, ok)
}

func TestReload_KeepsOldScriptOnInvalid(t *testing.T) {
	r, _, _ := testRunner(t, Options{})
	before := r.scriptContent()

	path := filepath.Join(t.TempDir(), "script.yaml")

	// Validation failure: dangling cue reference.
	require.NoError(t, os.WriteFile(path, []byte(`
triggers:
  - name: t
    event: {type: cue_signaled, cue: GHOST}
    actions: [{name: signal_cue, params: {cue_name: GHOST}}]
`), 0o644))
	r.reload(path)
	assert.Same(t, before, r.scriptContent())

	// Parse failure.
	require.NoError(t, os.WriteFile(path, []byte("cues: ["), 0o644))
	r.reload(path)
	assert.Same(t, before, r.scriptContent())
}
