package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_InitialCarriesEverything(t *testing.T) {
	d := Diff("s1", nil, Display{Current: "1"})
	require.NotNil(t, d)
	require.NotNil(t, d.Current)
	require.NotNil(t, d.Result)
	require.NotNil(t, d.Error)
	assert.Equal(t, "1", *d.Current)
	assert.Equal(t, "", *d.Result)
	assert.False(t, *d.Error)
}

func TestDiff_OnlyChangedFields(t *testing.T) {
	old := Display{Current: "12", Result: "3"}
	d := Diff("s1", &old, Display{Current: "", Result: "3"})
	require.NotNil(t, d)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"s1","current":""}`, string(raw))
}

func TestDiff_Unchanged(t *testing.T) {
	old := Display{Current: "1", Result: "2"}
	assert.Nil(t, Diff("s1", &old, old))
}
