package main

import (
	"flag"
	"io"
	"log/slog"

	"github.com/mitchellh/cli"

	"github.com/meigma/saveblob"
	"github.com/meigma/saveblob/internal/config"
	"github.com/meigma/saveblob/prefs"
)

// Meta holds the state shared by every command.
type Meta struct {
	Ui     cli.Ui
	Config config.Config
	Logger *slog.Logger
	Prefs  prefs.Store
}

// openBlob returns a Blob for identity using the configured directory and
// preference store.
func (m *Meta) openBlob(identity string, opts ...saveblob.Option) (*saveblob.Blob, error) {
	base := m.Config.BlobOptions(m.Prefs, m.Logger)
	return saveblob.New(identity, append(base, opts...)...)
}

// flagSet returns a flag set that reports errors through the command's
// return code instead of exiting.
func (m *Meta) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}
