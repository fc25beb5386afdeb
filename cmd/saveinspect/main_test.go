package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/saveblob"
	"github.com/meigma/saveblob/internal/config"
	"github.com/meigma/saveblob/internal/testutil"
	"github.com/meigma/saveblob/prefs/memory"
)

const payload = `{"level":7,"User":{"name":"ada","scores":[120,80]}}`

func newMeta(t *testing.T) (Meta, *cli.MockUi) {
	t.Helper()
	ui := cli.NewMockUi()
	return Meta{
		Ui:     ui,
		Config: config.Config{Dir: t.TempDir(), PrefsBackend: config.BackendMemory},
		Logger: slog.New(slog.DiscardHandler),
		Prefs:  memory.New(),
	}, ui
}

func writePayload(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func encode(t *testing.T, meta Meta, identity string) {
	t.Helper()
	cmd := &EncodeCommand{Meta: meta}
	require.Equal(t, 0, cmd.Run([]string{"-version", "1.2", identity, writePayload(t, payload)}))
}

func TestCommandsRegistered(t *testing.T) {
	t.Parallel()

	meta, _ := newMeta(t)
	for name, factory := range commands(meta) {
		cmd, err := factory()
		require.NoError(t, err, name)
		assert.NotEmpty(t, cmd.Synopsis(), name)
		assert.Contains(t, cmd.Help(), "saveinspect "+name, name)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	meta, ui := newMeta(t)
	encode(t, meta, "user42")
	assert.Contains(t, ui.OutputWriter.String(), "Saved user42")

	info, err := os.Stat(saveblob.SavePath(meta.Config.Dir, "user42"))
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), info.Size())

	b, err := meta.openBlob("user42")
	require.NoError(t, err)
	state, err := b.Load()
	require.NoError(t, err)
	require.Equal(t, saveblob.LoadOK, state)
	assert.Equal(t, "1.2", b.Version())
	assert.Equal(t, "ada", b.Get("User.name").AsString(""))
	assert.Equal(t, []any{int64(120), int64(80)}, b.Get("User.scores").Interface())
}

func TestDecode(t *testing.T) {
	t.Parallel()

	meta, ui := newMeta(t)
	encode(t, meta, "user42")

	decode := &DecodeCommand{Meta: meta}
	require.Equal(t, 0, decode.Run([]string{"user42"}))
	out := ui.OutputWriter.String()
	assert.Contains(t, out, `"User":{"name":"ada","scores":[120,80]}`)
	assert.Contains(t, out, `"version":"1.2"`)
	assert.Contains(t, out, `"level":7`)

	pretty := &DecodeCommand{Meta: meta}
	require.Equal(t, 0, pretty.Run([]string{"-pretty", "user42"}))
	assert.Contains(t, ui.OutputWriter.String(), "\n  \"level\": 7")

	missing := &DecodeCommand{Meta: meta}
	assert.Equal(t, 1, missing.Run([]string{"nobody"}))
	assert.Contains(t, ui.ErrorWriter.String(), "NotFound")

	assert.Equal(t, cli.RunResultHelp, decode.Run(nil))
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()

	meta, ui := newMeta(t)
	cmd := &EncodeCommand{Meta: meta}
	assert.Equal(t, cli.RunResultHelp, cmd.Run([]string{"user42"}))
	assert.Equal(t, 1, cmd.Run([]string{"user42", filepath.Join(t.TempDir(), "missing.json")}))
	assert.Equal(t, 1, cmd.Run([]string{"user42", writePayload(t, "[1,2]")}))
	assert.Contains(t, ui.ErrorWriter.String(), "Invalid payload")

	stdin := &EncodeCommand{Meta: meta, stdin: strings.NewReader(`{"coins":5}`)}
	require.Equal(t, 0, stdin.Run([]string{"-no-backup", "user42", "-"}))
}

func TestInspect(t *testing.T) {
	t.Parallel()

	meta, ui := newMeta(t)
	encode(t, meta, "user42")

	cmd := &InspectCommand{Meta: meta}
	require.Equal(t, 0, cmd.Run([]string{"user42"}))
	out := ui.OutputWriter.String()
	assert.Contains(t, out, "Size:     1048576")
	assert.Contains(t, out, "Digest:   sha256:")
	assert.Contains(t, out, "Version:  3")
	assert.Contains(t, out, "Check:    ok")
	assert.Contains(t, out, "Load:     OK")

	testutil.FlipByte(t, saveblob.SavePath(meta.Config.Dir, "user42"), 60)
	meta2, ui2 := newMeta(t)
	meta2.Config.Dir = meta.Config.Dir
	cmd = &InspectCommand{Meta: meta2}
	assert.Equal(t, 1, cmd.Run([]string{"user42"}))
	assert.Contains(t, ui2.OutputWriter.String(), "Check:    mismatch")
	assert.Contains(t, ui2.OutputWriter.String(), "Load:     Corrupted")

	meta3, ui3 := newMeta(t)
	cmd = &InspectCommand{Meta: meta3}
	assert.Equal(t, 1, cmd.Run([]string{"nobody"}))
	assert.Contains(t, ui3.OutputWriter.String(), "(missing)")
}

func TestInspectFileBadVersion(t *testing.T) {
	t.Parallel()

	meta, _ := newMeta(t)
	encode(t, meta, "user42")
	path := saveblob.SavePath(meta.Config.Dir, "user42")
	testutil.FlipByte(t, path, 4)

	rep, err := inspectFile(path)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), rep.Version)
	assert.False(t, rep.HashMatches())
	assert.Contains(t, formatReport(rep), "Version:  unreadable")
}

func TestVerify(t *testing.T) {
	t.Parallel()

	meta, ui := newMeta(t)
	encode(t, meta, "alice")
	encode(t, meta, "bob")
	encode(t, meta, "carol")

	cmd := &VerifyCommand{Meta: meta}
	require.Equal(t, 0, cmd.Run([]string{"-j", "2"}))
	out := ui.OutputWriter.String()
	assert.Contains(t, out, "alice: OK")
	assert.Contains(t, out, "bob: OK")
	assert.Contains(t, out, "carol: OK")

	testutil.FlipByte(t, saveblob.SavePath(meta.Config.Dir, "bob"), 60)
	meta2, ui2 := newMeta(t)
	meta2.Config.Dir = meta.Config.Dir
	cmd = &VerifyCommand{Meta: meta2}
	assert.Equal(t, 1, cmd.Run([]string{"alice", "bob", "dave"}))
	assert.Contains(t, ui2.OutputWriter.String(), "alice: OK")
	assert.Contains(t, ui2.ErrorWriter.String(), "bob: Corrupted")
	assert.Contains(t, ui2.ErrorWriter.String(), "dave: NotFound")

	assert.Equal(t, cli.RunResultHelp, cmd.Run([]string{"-j", "0"}))

	empty, ui3 := newMeta(t)
	cmd = &VerifyCommand{Meta: empty}
	assert.Equal(t, 0, cmd.Run(nil))
	assert.Contains(t, ui3.OutputWriter.String(), "No saves found.")
}
