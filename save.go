package saveblob

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/meigma/saveblob/internal/frame"
	"github.com/meigma/saveblob/prefs"
)

// Save stamps the device name and time, encodes the payload and writes it
// to the primary file. Registered systems are saved into the payload first.
//
// When the primary write fails the frame is stored in the fallback store,
// unless SaveWithoutBackup is given. A successful primary write removes any
// fallback entry. The returned error wraps the sentinel matching the state.
func (b *Blob) Save(opts ...SaveOption) (SaveState, error) {
	cfg := saveConfig{backupOnFail: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !b.enabled {
		b.logger.Debug("save skipped, saving is disabled",
			slog.String("identity", b.loc.identity))
		return SaveDisabled, ErrDisabled
	}

	if err := b.saveSystems(); err != nil {
		return SaveWriteError, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	b.stamp()
	fr, err := b.SaveToStream()
	if err != nil {
		b.logger.Error("encode save failed",
			slog.String("identity", b.loc.identity),
			slog.Any("error", err))
		return SaveWriteError, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	state, err := b.writePrimary(fr)
	if state == SaveOK {
		if derr := prefs.DeleteFrame(b.prefs, b.loc.identity); derr != nil {
			b.logger.Warn("remove stale fallback entry failed",
				slog.String("identity", b.loc.identity),
				slog.Any("error", derr))
		}
		return SaveOK, nil
	}

	if cfg.backupOnFail {
		if perr := prefs.PutFrame(b.prefs, b.loc.identity, frame.Prefix(fr)); perr != nil {
			b.logger.Error("write fallback entry failed",
				slog.String("identity", b.loc.identity),
				slog.Any("error", perr))
			err = multierror.Append(err, fmt.Errorf("write fallback entry: %w", perr))
		} else {
			b.logger.Info("save stored in fallback entry",
				slog.String("identity", b.loc.identity),
				slog.String("key", prefs.Key(b.loc.identity)))
		}
	}
	return state, err
}

// SaveToStream encodes the payload into a frame without touching storage or
// stamping the payload.
func (b *Blob) SaveToStream() ([]byte, error) {
	text, err := b.data.Text()
	if err != nil {
		return nil, fmt.Errorf("serialize payload: %w", err)
	}
	packed, err := b.compressor.Compress([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	sealed, err := b.cipher.Encrypt(b.loc.keys, packed)
	if err != nil {
		return nil, fmt.Errorf("encrypt payload: %w", err)
	}
	if len(sealed) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: content is %d bytes", ErrOversize, len(sealed))
	}
	header, err := frame.EncodeHeader(frame.HexDigest(sealed), int32(len(sealed)))
	if err != nil {
		return nil, err
	}

	version := frame.EncodeVersion(frame.CurrentVersion)
	fr := make([]byte, 0, len(version)+len(header)+len(sealed))
	fr = append(fr, version...)
	fr = append(fr, header...)
	return append(fr, sealed...), nil
}

// writePrimary pads fr and writes it to the save file.
func (b *Blob) writePrimary(fr []byte) (SaveState, error) {
	if len(fr) >= b.reservedSize-4 {
		if b.strict {
			err := fmt.Errorf("%w: %w: frame is %d bytes, reservation is %d",
				ErrDiskSpace, ErrOversize, len(fr), b.reservedSize)
			b.logger.Error("save exceeds reserved disk space",
				slog.String("identity", b.loc.identity),
				slog.Int("frame", len(fr)),
				slog.Int("reserved", b.reservedSize))
			return SaveDiskSpace, err
		}
		b.logger.Error("save exceeds reserved disk space, writing anyway",
			slog.String("identity", b.loc.identity),
			slog.Int("frame", len(fr)),
			slog.Int("reserved", b.reservedSize))
	}

	if err := writeFile(b.loc.path, frame.Pad(fr, b.reservedSize)); err != nil {
		state := classifyWriteError(err)
		b.logger.Error("write save file failed",
			slog.String("identity", b.loc.identity),
			slog.String("path", b.loc.path),
			slog.String("state", state.String()),
			slog.Any("error", err))
		return state, saveError(state, err)
	}

	b.logger.Debug("save written",
		slog.String("identity", b.loc.identity),
		slog.String("path", b.loc.path),
		slog.Int("frame", len(fr)))
	return SaveOK, nil
}

// saveSystems lets every registered system write into the payload.
func (b *Blob) saveSystems() error {
	var result *multierror.Error
	for _, sys := range b.systems {
		if err := sys.Save(); err != nil {
			result = multierror.Append(result, fmt.Errorf("system %s: %w", sys.Name(), err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		b.logger.Error("saving systems failed",
			slog.String("identity", b.loc.identity),
			slog.Any("error", err))
		return err
	}
	return nil
}
