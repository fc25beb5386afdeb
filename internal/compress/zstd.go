// Package compress implements the compressor used for save content.
package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// DefaultMaxDecoderMemory is the default maximum decoder memory (64MB).
const DefaultMaxDecoderMemory = 64 << 20

// ErrDecompression is returned when decompression fails.
var ErrDecompression = errors.New("compress: decompression failed")

// Zstd compresses with zstd. Encoders are created once and decoders are
// pooled, so a Zstd value is safe for concurrent use.
type Zstd struct {
	level            zstd.EncoderLevel
	maxDecoderMemory uint64

	encOnce sync.Once
	enc     *zstd.Encoder
	encErr  error

	decoders sync.Pool
}

// Option configures a Zstd compressor.
type Option func(*Zstd)

// WithLevel sets the encoder level. Defaults to zstd.SpeedDefault.
func WithLevel(level zstd.EncoderLevel) Option {
	return func(z *Zstd) {
		z.level = level
	}
}

// WithMaxDecoderMemory limits the memory a decoder may allocate.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(z *Zstd) {
		z.maxDecoderMemory = limit
	}
}

// NewZstd creates a zstd compressor.
func NewZstd(opts ...Option) *Zstd {
	z := &Zstd{
		level:            zstd.SpeedDefault,
		maxDecoderMemory: DefaultMaxDecoderMemory,
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// Compress returns the zstd encoding of src.
func (z *Zstd) Compress(src []byte) ([]byte, error) {
	z.encOnce.Do(func() {
		z.enc, z.encErr = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(z.level),
			zstd.WithEncoderConcurrency(1),
		)
	})
	if z.encErr != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", z.encErr)
	}
	return z.enc.EncodeAll(src, make([]byte, 0, len(src)/2)), nil
}

// Decompress decodes a zstd stream produced by Compress.
func (z *Zstd) Decompress(src []byte) ([]byte, error) {
	dec, release, err := z.decoder()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	defer release()

	out, err := dec.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	return out, nil
}

// decoder returns a pooled decoder and the function that returns it.
func (z *Zstd) decoder() (*zstd.Decoder, func(), error) {
	if v, ok := z.decoders.Get().(*zstd.Decoder); ok {
		return v, func() { z.decoders.Put(v) }, nil
	}
	opts := []zstd.DOption{zstd.WithDecoderConcurrency(1)}
	if z.maxDecoderMemory > 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(z.maxDecoderMemory))
	}
	dec, err := zstd.NewReader(nil, opts...)
	if err != nil {
		return nil, nil, err
	}
	return dec, func() { z.decoders.Put(dec) }, nil
}
