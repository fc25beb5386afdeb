package saveblob

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/meigma/saveblob/internal/frame"
	"github.com/meigma/saveblob/prefs"
	"github.com/meigma/saveblob/tree"
)

// Load replaces the payload with the one stored for the current identity.
//
// The primary file is tried first. When it is missing or fails to load, the
// fallback entry is tried; if that fails too the primary result is returned.
// Registered systems are reset and reloaded after a successful load. The
// payload is left unchanged unless the result is LoadOK.
func (b *Blob) Load() (LoadState, error) {
	prev := b.snapshot()
	state, err := b.loadPrimary()
	if state != LoadOK {
		fstate, ferr := b.loadFallback()
		if fstate == LoadOK {
			b.logger.Info("save recovered from fallback entry",
				slog.String("identity", b.loc.identity),
				slog.String("primary", state.String()))
			state, err = LoadOK, nil
		} else if !errors.Is(ferr, prefs.ErrNotFound) {
			b.logger.Warn("unable to load fallback entry",
				slog.String("identity", b.loc.identity),
				slog.Any("error", ferr))
		}
	}
	if state != LoadOK {
		return state, err
	}
	return b.commit(prev)
}

// LoadFromStream replaces the payload with the frame read from r. The
// payload is left unchanged unless the result is LoadOK.
func (b *Blob) LoadFromStream(r io.Reader) (LoadState, error) {
	prev := b.snapshot()
	state, err := b.loadStream(r)
	if state != LoadOK {
		return state, err
	}
	return b.commit(prev)
}

// LoadFromString replaces the payload with plain JSON text, as received from
// a remote copy of the save. The payload is left unchanged unless the
// result is LoadOK.
func (b *Blob) LoadFromString(text string) (LoadState, error) {
	prev := b.snapshot()
	if err := b.data.FromText(text); err != nil {
		b.logger.Warn("invalid save JSON",
			slog.String("identity", b.loc.identity),
			slog.Any("error", err))
		return LoadCorrupted, loadError(LoadCorrupted, err)
	}
	b.restoreStamps()
	return b.commit(prev)
}

// Merge folds JSON text into the payload. Incoming values win and nested
// maps are merged. The payload is left unchanged unless the result is
// LoadOK.
func (b *Blob) Merge(text string) (LoadState, error) {
	prev := b.snapshot()
	if err := b.data.Merge(text); err != nil {
		return LoadCorrupted, loadError(LoadCorrupted, err)
	}
	b.restoreStamps()
	return b.commit(prev)
}

// snapshot is the payload state a load rolls back to when a system fails.
// It is only taken when systems are registered, since nothing else can fail
// after the payload is replaced.
type snapshot struct {
	data       *tree.Tree
	modified   int64
	deviceName string
}

func (b *Blob) snapshot() snapshot {
	if len(b.systems) == 0 {
		return snapshot{}
	}
	return snapshot{
		data:       b.data.Clone(),
		modified:   b.modified,
		deviceName: b.deviceName,
	}
}

// commit reloads the registered systems from the new payload. If any of
// them fails, the payload in prev is restored and the systems are reloaded
// from it.
func (b *Blob) commit(prev snapshot) (LoadState, error) {
	state, err := b.reloadSystems()
	if state == LoadOK || prev.data == nil {
		return state, err
	}
	b.data = prev.data
	b.modified = prev.modified
	b.deviceName = prev.deviceName
	for _, sys := range b.systems {
		sys.Reset()
		if rerr := sys.Load(); rerr != nil {
			b.logger.Warn("system failed to reload previous payload",
				slog.String("identity", b.loc.identity),
				slog.String("system", sys.Name()),
				slog.Any("error", rerr))
		}
	}
	return state, err
}

func (b *Blob) loadPrimary() (LoadState, error) {
	f, err := os.Open(b.loc.path)
	if err != nil {
		state := classifyReadError(err)
		if state == LoadNotFound {
			b.logger.Debug("no save file found", slog.String("path", b.loc.path))
		} else {
			b.logger.Error("open save file failed",
				slog.String("path", b.loc.path),
				slog.Any("error", err))
		}
		return state, loadError(state, err)
	}
	defer f.Close()

	fr, err := frame.StripPadding(f)
	if err != nil {
		state := classifyReadError(err)
		b.logger.Error("read save file failed",
			slog.String("path", b.loc.path),
			slog.Any("error", err))
		return state, loadError(state, err)
	}
	return b.loadStream(bytes.NewReader(fr))
}

func (b *Blob) loadFallback() (LoadState, error) {
	raw, err := prefs.GetFrame(b.prefs, b.loc.identity)
	if err != nil {
		return LoadNotFound, err
	}
	// Entries written without the length prefix are accepted as well.
	fr, _ := frame.Unprefix(raw)
	return b.loadStream(bytes.NewReader(fr))
}

// loadStream decodes one frame and, on success, replaces the payload.
func (b *Blob) loadStream(r io.Reader) (LoadState, error) {
	data, state, err := b.decode(r)
	if state != LoadOK {
		b.logger.Warn("unable to load save",
			slog.String("identity", b.loc.identity),
			slog.String("state", state.String()),
			slog.Any("error", err))
		return state, loadError(state, err)
	}
	b.data = data
	b.restoreStamps()
	return LoadOK, nil
}

func (b *Blob) decode(r io.Reader) (*tree.Tree, LoadState, error) {
	version := frame.DecodeVersion(r)
	switch {
	case version == frame.VersionUnreadable:
		return nil, LoadCorrupted, errors.New("unreadable version record")
	case version > frame.CurrentVersion:
		return nil, LoadVersionMismatch, fmt.Errorf("version %d is newer than %d", version, frame.CurrentVersion)
	case version < frame.CurrentVersion:
		migrated, err := b.migrator.Migrate(version, r)
		if err != nil {
			return nil, LoadCorrupted, fmt.Errorf("migrate from version %d: %w", version, err)
		}
		if migrated == nil {
			return nil, LoadCorrupted, fmt.Errorf("migrate from version %d: no data", version)
		}
		r = migrated
	}

	content, err := b.readContent(r)
	if err != nil {
		return nil, LoadCorrupted, err
	}
	packed, err := b.cipher.Decrypt(b.loc.keys, content)
	if err != nil {
		return nil, LoadCorrupted, err
	}
	text, err := b.compressor.Decompress(packed)
	if err != nil {
		return nil, LoadCorrupted, err
	}
	data, err := tree.Parse(string(text))
	if err != nil {
		return nil, LoadCorrupted, err
	}
	return data, LoadOK, nil
}

// readContent reads the content header and the content it describes, and
// verifies the content digest.
func (b *Blob) readContent(r io.Reader) ([]byte, error) {
	h, err := frame.DecodeHeader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid header: %w", err)
	}
	if h.ContentLength < 0 {
		return nil, fmt.Errorf("invalid content length %d", h.ContentLength)
	}
	if b.maxContentLength > 0 && int(h.ContentLength) > b.maxContentLength {
		return nil, fmt.Errorf("content length %d exceeds limit %d", h.ContentLength, b.maxContentLength)
	}

	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, int64(h.ContentLength))
	if err != nil {
		return nil, fmt.Errorf("content length different to expected (got %d expected %d): %w", n, h.ContentLength, err)
	}
	content := buf.Bytes()
	if sum := frame.HexDigest(content); sum != h.Hash {
		return nil, fmt.Errorf("checksum failed (got %s expected %s)", sum, h.Hash)
	}
	return content, nil
}

// reloadSystems resets every registered system and loads it from the
// payload.
func (b *Blob) reloadSystems() (LoadState, error) {
	var result *multierror.Error
	for _, sys := range b.systems {
		sys.Reset()
		if err := sys.Load(); err != nil {
			result = multierror.Append(result, fmt.Errorf("system %s: %w", sys.Name(), err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		b.logger.Error("loading systems failed",
			slog.String("identity", b.loc.identity),
			slog.Any("error", err))
		return LoadCorrupted, loadError(LoadCorrupted, err)
	}
	return LoadOK, nil
}
