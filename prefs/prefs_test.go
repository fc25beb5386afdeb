package prefs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/saveblob/prefs"
	"github.com/meigma/saveblob/prefs/memory"
)

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Save.user42.sav", prefs.Key("user42"))
	assert.Equal(t, "Save..sav", prefs.Key(""))
}

func TestGetFrameEmptyAndInvalid(t *testing.T) {
	t.Parallel()

	s := memory.New()
	require.NoError(t, s.Set(prefs.Key("empty"), ""))
	_, err := prefs.GetFrame(s, "empty")
	require.ErrorIs(t, err, prefs.ErrNotFound)

	require.NoError(t, s.Set(prefs.Key("bad"), "%%%not-base64"))
	_, err = prefs.GetFrame(s, "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, prefs.ErrNotFound)
}
