package testutil

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/saveblob/prefs"
)

// StoreContract runs the behavior every prefs.Store must provide against
// stores returned by newStore.
func StoreContract(t *testing.T, newStore func(t *testing.T) prefs.Store) {
	t.Helper()

	t.Run("missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get("Save.nobody.sav")
		require.ErrorIs(t, err, prefs.ErrNotFound)
		require.NoError(t, s.Delete("Save.nobody.sav"))
	})

	t.Run("set get delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set("Save.user42.sav", "AAAA"))
		got, err := s.Get("Save.user42.sav")
		require.NoError(t, err)
		assert.Equal(t, "AAAA", got)

		require.NoError(t, s.Set("Save.user42.sav", "BBBB"))
		got, err = s.Get("Save.user42.sav")
		require.NoError(t, err)
		assert.Equal(t, "BBBB", got)

		require.NoError(t, s.Delete("Save.user42.sav"))
		_, err = s.Get("Save.user42.sav")
		require.ErrorIs(t, err, prefs.ErrNotFound)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set("a", "1"))
		require.NoError(t, s.Set("b", "2"))
		require.NoError(t, s.Delete("a"))
		got, err := s.Get("b")
		require.NoError(t, err)
		assert.Equal(t, "2", got)
	})

	t.Run("large and unusual values", func(t *testing.T) {
		s := newStore(t)
		key := "Save.päivi/../..\\x.sav"
		value := strings.Repeat("QUJD", 1<<16)
		require.NoError(t, s.Set(key, value))
		got, err := s.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("frames", func(t *testing.T) {
		s := newStore(t)
		frame := []byte{4, 0, 0, 0, 0xDE, 0xAD, 0xBE, 0xEF}
		require.NoError(t, prefs.PutFrame(s, "user42", frame))

		raw, err := s.Get(prefs.Key("user42"))
		require.NoError(t, err)
		assert.Equal(t, "BAAAAN6tvu8=", raw)

		got, err := prefs.GetFrame(s, "user42")
		require.NoError(t, err)
		assert.Equal(t, frame, got)

		require.NoError(t, prefs.DeleteFrame(s, "user42"))
		_, err = prefs.GetFrame(s, "user42")
		require.ErrorIs(t, err, prefs.ErrNotFound)
	})

	t.Run("concurrent", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				key := prefs.Key(string(rune('a' + i)))
				assert.NoError(t, s.Set(key, "v"))
				_, err := s.Get(key)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
	})
}
