package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/mitchellh/cli"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/saveblob"
)

// VerifyCommand loads several saves in parallel and reports each state.
type VerifyCommand struct {
	Meta
}

type verifyResult struct {
	identity string
	state    saveblob.LoadState
	err      error
}

func (c *VerifyCommand) Run(args []string) int {
	fs := c.flagSet("verify")
	workers := fs.Int("j", runtime.GOMAXPROCS(0), "number of saves loaded at once")
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(err.Error())
		return cli.RunResultHelp
	}
	if *workers < 1 {
		c.Ui.Error("The -j flag must be at least 1.")
		return cli.RunResultHelp
	}

	identities := fs.Args()
	if len(identities) == 0 {
		found, err := saveblob.ListSaves(c.Config.SaveDir())
		if err != nil {
			c.Ui.Error(fmt.Sprintf("Could not list saves: %s", err))
			return 1
		}
		identities = found
	}
	if len(identities) == 0 {
		c.Ui.Output("No saves found.")
		return 0
	}

	results, err := c.verify(identities, *workers)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	code := 0
	for _, r := range results {
		if r.state == saveblob.LoadOK {
			c.Ui.Output(fmt.Sprintf("%s: %s", r.identity, r.state))
			continue
		}
		code = 1
		c.Ui.Error(fmt.Sprintf("%s: %s (%v)", r.identity, r.state, r.err))
	}
	return code
}

// verify loads each identity with its own Blob. Results keep the order of
// identities.
func (c *VerifyCommand) verify(identities []string, workers int) ([]verifyResult, error) {
	results := make([]verifyResult, len(identities))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, identity := range identities {
		g.Go(func() error {
			b, err := c.openBlob(identity)
			if err != nil {
				return fmt.Errorf("%s: %w", identity, err)
			}
			state, err := b.Load()
			results[i] = verifyResult{identity: identity, state: state, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *VerifyCommand) Help() string {
	helpText := `
Usage: saveinspect verify [options] [identity ...]

  Load every named save, or every save in the save directory when none are
  named, and report the load state of each. Exits non-zero when any save
  fails to load.

Options:

  -j=N    Number of saves loaded at once. Defaults to GOMAXPROCS.
`
	return strings.TrimSpace(helpText)
}

func (c *VerifyCommand) Synopsis() string {
	return "Check that saves load"
}
