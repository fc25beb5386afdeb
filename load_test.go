package saveblob

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/saveblob/internal/frame"
	"github.com/meigma/saveblob/internal/testutil"
	"github.com/meigma/saveblob/prefs"
	"github.com/meigma/saveblob/tree"
)

// Offsets into a primary file written with CurrentVersion.
const (
	hashOffset    = 4 + 9 + 4
	contentOffset = 4 + 9 + 40
)

// savedBlob returns a Blob holding the sample payload after a successful
// Save.
func savedBlob(t *testing.T) (*Blob, *testutil.FailingStore) {
	t.Helper()
	b, store := newTestBlob(t, "user42")
	sample := testutil.SampleTree()
	for _, k := range sample.Keys() {
		require.NoError(t, b.Set(k, sample.Get(k)))
	}
	state, err := b.Save()
	require.NoError(t, err)
	require.Equal(t, SaveOK, state)
	return b, store
}

// reopen returns a fresh Blob reading the same file and fallback store.
func reopen(t *testing.T, b *Blob, store prefs.Store, opts ...Option) *Blob {
	t.Helper()
	fresh, err := New(b.Identity(), append([]Option{WithPath(b.Path()), WithPreferences(store)}, opts...)...)
	require.NoError(t, err)
	return fresh
}

func TestLoadRoundTrip(t *testing.T) {
	t.Parallel()

	b, store := savedBlob(t)
	fresh := reopen(t, b, store)

	state, err := fresh.Load()
	require.NoError(t, err)
	require.Equal(t, LoadOK, state)

	got := fresh.Tree()
	got.Delete(KeyDeviceName)
	got.Delete(KeyModifiedTime)
	want := testutil.SampleTree()
	assert.True(t, want.Equal(got), cmp.Diff(want.Root().Interface(), got.Root().Interface()))
	assert.Equal(t, testTime.Unix(), fresh.Timestamp())
	assert.Equal(t, "ada-phone", fresh.DeviceName())
}

func TestLoadNotFound(t *testing.T) {
	t.Parallel()

	b, _ := newTestBlob(t, "user42")
	state, err := b.Load()
	assert.Equal(t, LoadNotFound, state)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoadTamperDetection(t *testing.T) {
	t.Parallel()

	b, _ := savedBlob(t)
	fr, err := b.SaveToStream()
	require.NoError(t, err)
	contentLen := len(fr) - (contentOffset - 4)

	for _, offset := range []int{contentOffset, contentOffset + contentLen/2, contentOffset + contentLen - 1} {
		b, store := savedBlob(t)
		testutil.FlipByte(t, b.Path(), offset)

		state, err := reopen(t, b, store).Load()
		assert.Equal(t, LoadCorrupted, state, "offset %d", offset)
		require.ErrorIs(t, err, ErrCorrupted)
	}
}

func TestLoadScenarioB(t *testing.T) {
	t.Parallel()

	b, store := savedBlob(t)
	data, err := os.ReadFile(b.Path())
	require.NoError(t, err)
	if data[hashOffset] == 'A' {
		data[hashOffset] = 'B'
	} else {
		data[hashOffset] = 'A'
	}
	require.NoError(t, os.WriteFile(b.Path(), data, 0o600))

	state, err := reopen(t, b, store).Load()
	assert.Equal(t, LoadCorrupted, state)
	require.ErrorIs(t, err, ErrCorrupted)
}

// frameWithVersion rewrites the version record of a valid frame.
func frameWithVersion(t *testing.T, b *Blob, version int32) []byte {
	t.Helper()
	fr, err := b.SaveToStream()
	require.NoError(t, err)
	r := bytes.NewReader(fr)
	require.Equal(t, frame.CurrentVersion, frame.DecodeVersion(r))
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	return append(frame.EncodeVersion(version), rest...)
}

func TestLoadScenarioC(t *testing.T) {
	t.Parallel()

	b, store := savedBlob(t)
	fr := frameWithVersion(t, b, frame.CurrentVersion+1)
	require.NoError(t, os.WriteFile(b.Path(), frame.Pad(fr, frame.ReservedSize), 0o600))

	fresh := reopen(t, b, store)
	require.NoError(t, fresh.Set("keep", tree.Int(1)))
	before := fresh.Tree()

	state, err := fresh.Load()
	assert.Equal(t, LoadVersionMismatch, state)
	require.ErrorIs(t, err, ErrVersionMismatch)
	assert.True(t, before.Equal(fresh.Tree()), "store must be unmodified")
}

func TestLoadFromStreamVersionGuard(t *testing.T) {
	t.Parallel()

	b, _ := savedBlob(t)
	fr := frameWithVersion(t, b, 9)
	before := b.Tree()

	state, err := b.LoadFromStream(bytes.NewReader(fr))
	assert.Equal(t, LoadVersionMismatch, state)
	require.ErrorIs(t, err, ErrVersionMismatch)
	assert.True(t, before.Equal(b.Tree()))
}

func TestLoadMigration(t *testing.T) {
	t.Parallel()

	b, _ := savedBlob(t)
	old := frameWithVersion(t, b, 2)

	state, err := b.LoadFromStream(bytes.NewReader(old))
	require.NoError(t, err)
	assert.Equal(t, LoadOK, state, "default migrator passes the stream through")

	var seen int32
	b.migrator = MigratorFunc(func(from int32, rest io.Reader) (io.Reader, error) {
		seen = from
		return rest, nil
	})
	state, err = b.LoadFromStream(bytes.NewReader(old))
	require.NoError(t, err)
	assert.Equal(t, LoadOK, state)
	assert.Equal(t, int32(2), seen)

	b.migrator = MigratorFunc(func(int32, io.Reader) (io.Reader, error) { return nil, nil })
	state, err = b.LoadFromStream(bytes.NewReader(old))
	assert.Equal(t, LoadCorrupted, state)
	require.ErrorIs(t, err, ErrCorrupted)

	boom := errors.New("boom")
	b.migrator = MigratorFunc(func(int32, io.Reader) (io.Reader, error) { return nil, boom })
	state, err = b.LoadFromStream(bytes.NewReader(old))
	assert.Equal(t, LoadCorrupted, state)
	require.ErrorIs(t, err, boom)
}

func TestLoadMalformedFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short prefix", []byte{1, 2}},
		{"truncated frame", frame.Prefix([]byte("abc"))[:5]},
		{"garbage version", frame.Pad([]byte("not a save file at all"), 256)},
		{"bad version string", frame.Pad(append([]byte{3, 0, 0, 0, 1, 0, 0, 0}, '4'), 256)},
		{"truncated header", frame.Pad(frame.EncodeVersion(frame.CurrentVersion), 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, _ := newTestBlob(t, "user42")
			require.NoError(t, os.WriteFile(b.Path(), tt.data, 0o600))
			state, err := b.Load()
			assert.Equal(t, LoadCorrupted, state)
			require.ErrorIs(t, err, ErrCorrupted)
		})
	}
}

func TestLoadContentLengthLimit(t *testing.T) {
	t.Parallel()

	b, store := savedBlob(t)
	state, err := reopen(t, b, store, WithMaxContentLength(8)).Load()
	assert.Equal(t, LoadCorrupted, state)
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestLoadWrongIdentity(t *testing.T) {
	t.Parallel()

	b, store := savedBlob(t)
	other := reopen(t, b, store)
	other.SetLocation(b.Path(), "someone-else")

	state, err := other.Load()
	assert.Equal(t, LoadCorrupted, state)
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestLoadFallsBackOnCorruptPrimary(t *testing.T) {
	t.Parallel()

	b, store := savedBlob(t)
	fr, err := b.SaveToStream()
	require.NoError(t, err)
	require.NoError(t, prefs.PutFrame(store, b.Identity(), frame.Prefix(fr)))
	testutil.FlipByte(t, b.Path(), contentOffset)

	fresh := reopen(t, b, store)
	state, err := fresh.Load()
	require.NoError(t, err)
	assert.Equal(t, LoadOK, state)
	assert.Equal(t, 7, fresh.Get("level").AsInt(0))
}

func TestLoadFallbackWithoutPrefix(t *testing.T) {
	t.Parallel()

	b, store := newTestBlob(t, "user42")
	require.NoError(t, b.Set("level", tree.Int(9)))
	fr, err := b.SaveToStream()
	require.NoError(t, err)
	require.NoError(t, prefs.PutFrame(store, "user42", fr))

	fresh := reopen(t, b, store)
	state, err := fresh.Load()
	require.NoError(t, err)
	assert.Equal(t, LoadOK, state)
	assert.Equal(t, 9, fresh.Get("level").AsInt(0))
}

func TestLoadKeepsPrimaryStateWhenFallbackFails(t *testing.T) {
	t.Parallel()

	b, store := savedBlob(t)
	require.NoError(t, store.Set(prefs.Key(b.Identity()), "bm90IGEgZnJhbWU="))
	testutil.FlipByte(t, b.Path(), contentOffset)

	state, err := reopen(t, b, store).Load()
	assert.Equal(t, LoadCorrupted, state)
	require.ErrorIs(t, err, ErrCorrupted)

	store.FailGet(true)
	state, err = reopen(t, b, store).Load()
	assert.Equal(t, LoadCorrupted, state)
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestLoadPermissionError(t *testing.T) {
	t.Parallel()
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	b, store := savedBlob(t)
	require.NoError(t, os.Chmod(b.Path(), 0o200))

	state, err := reopen(t, b, store).Load()
	assert.Equal(t, LoadPermissionError, state)
	require.ErrorIs(t, err, ErrPermission)
}

func TestLoadFromString(t *testing.T) {
	t.Parallel()

	b, _ := newTestBlob(t, "user42")
	state, err := b.LoadFromString(`{"level":4,"deviceName":"tablet","modifiedTime":1700000000}`)
	require.NoError(t, err)
	assert.Equal(t, LoadOK, state)
	assert.Equal(t, 4, b.Get("level").AsInt(0))
	assert.Equal(t, "tablet", b.DeviceName())
	assert.Equal(t, int64(1700000000), b.Timestamp())

	state, err = b.LoadFromString(`{"level":`)
	assert.Equal(t, LoadCorrupted, state)
	require.ErrorIs(t, err, ErrCorrupted)
	assert.Equal(t, 4, b.Get("level").AsInt(0))
}

func TestMerge(t *testing.T) {
	t.Parallel()

	b, _ := newTestBlob(t, "user42")
	require.NoError(t, b.Set("User.name", tree.String("ada")))
	require.NoError(t, b.Set("User.level", tree.Int(1)))

	state, err := b.Merge(`{"User":{"level":5},"coins":10}`)
	require.NoError(t, err)
	assert.Equal(t, LoadOK, state)
	assert.Equal(t, "ada", b.Get("User.name").AsString(""))
	assert.Equal(t, 5, b.Get("User.level").AsInt(0))
	assert.Equal(t, 10, b.Get("coins").AsInt(0))

	state, err = b.Merge(`[]`)
	assert.Equal(t, LoadCorrupted, state)
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestListSaves(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, id := range []string{"zed", "amy"} {
		b, err := New(id, WithDir(dir))
		require.NoError(t, err)
		_, err = b.Save()
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.sav"), 0o700))

	ids, err := ListSaves(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"amy", "zed"}, ids)

	ids, err = ListSaves(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.Equal(t, filepath.Join("saves", "amy.sav"), SavePath("saves", "amy"))
	assert.NotEmpty(t, DefaultDir())
}
