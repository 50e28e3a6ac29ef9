package script

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedCompact(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"b": 2.0,
		"a": 1.0,
		"c": []any{true, nil, "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":[true,null,"x"]}`, string(out))
}

func TestMarshalCanonical_WholeFloats(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{"n": 3.0, "f": 3.5})
	require.NoError(t, err)
	assert.Equal(t, `{"f":3.5,"n":3}`, string(out))
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{"s": "<a> & </a>"})
	require.NoError(t, err)
	assert.Equal(t, `{"s":"<a> & </a>"}`, string(out))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "e" + combining acute normalizes to the precomposed form.
	out, err := MarshalCanonical("é")
	require.NoError(t, err)
	assert.Equal(t, `"é"`, string(out))
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// In UTF-16, surrogate pairs (here U+1F600) sort before U+FF21
	// even though UTF-8 bytes order them the other way.
	out, err := MarshalCanonical(map[string]any{"Ａ": 1, "\U0001F600": 2})
	require.NoError(t, err)
	assert.Equal(t, `{"😀":2,"Ａ":1}`, string(out))
}

func TestMarshalCanonical_Time(t *testing.T) {
	at := time.Date(2026, time.March, 14, 15, 0, 0, 0, time.UTC)
	out, err := MarshalCanonical(map[string]any{"at": at})
	require.NoError(t, err)
	assert.Equal(t, `{"at":"2026-03-14T15:00:00Z"}`, string(out))
}

func TestMarshalCanonical_ScriptTypes(t *testing.T) {
	out, err := MarshalCanonical(Event{"type": "cue_signaled", "cue": "GO"})
	require.NoError(t, err)
	assert.Equal(t, `{"cue":"GO","type":"cue_signaled"}`, string(out))

	out, err = MarshalCanonical(ComponentValue{"op": "value_is_true"})
	require.NoError(t, err)
	assert.Equal(t, `{"op":"value_is_true"}`, string(out))
}

func TestMarshalCanonical_UnsupportedType(t *testing.T) {
	_, err := MarshalCanonical(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	v := map[string]any{"z": 1.0, "a": map[string]any{"y": 2.0, "b": 3.0}}
	first, err := MarshalCanonical(v)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := MarshalCanonical(v)
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}
}
