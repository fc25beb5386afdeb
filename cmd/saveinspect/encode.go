package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/meigma/saveblob"
)

// EncodeCommand writes a save from a JSON payload.
type EncodeCommand struct {
	Meta

	// stdin is read when the payload file is "-". Defaults to os.Stdin.
	stdin io.Reader
}

func (c *EncodeCommand) Run(args []string) int {
	fs := c.flagSet("encode")
	version := fs.String("version", "", "set the payload version before saving")
	noBackup := fs.Bool("no-backup", false, "do not keep a fallback copy when the write fails")
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(err.Error())
		return cli.RunResultHelp
	}
	if fs.NArg() != 2 {
		c.Ui.Error("The encode command expects an identity and a JSON file.")
		return cli.RunResultHelp
	}
	identity, src := fs.Arg(0), fs.Arg(1)

	text, err := c.readPayload(src)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Could not read %s: %s", src, err))
		return 1
	}

	b, err := c.openBlob(identity)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	if state, err := b.LoadFromString(text); state != saveblob.LoadOK {
		c.Ui.Error(fmt.Sprintf("Invalid payload in %s: %s (%v)", src, state, err))
		return 1
	}
	if *version != "" {
		b.SetVersion(*version)
	}

	var opts []saveblob.SaveOption
	if *noBackup {
		opts = append(opts, saveblob.SaveWithoutBackup())
	}
	state, err := b.Save(opts...)
	if state != saveblob.SaveOK {
		c.Ui.Error(fmt.Sprintf("Could not save %s: %s (%v)", identity, state, err))
		return 1
	}
	c.Ui.Output(fmt.Sprintf("Saved %s to %s", identity, b.Path()))
	return 0
}

func (c *EncodeCommand) readPayload(src string) (string, error) {
	if src != "-" {
		b, err := os.ReadFile(src)
		return string(b), err
	}
	r := c.stdin
	if r == nil {
		r = os.Stdin
	}
	b, err := io.ReadAll(r)
	return string(b), err
}

func (c *EncodeCommand) Help() string {
	helpText := `
Usage: saveinspect encode [options] <identity> <json-file>

  Replace the payload of the save for identity with the JSON object in
  json-file and save it. Use "-" to read the payload from stdin.

Options:

  -version=V    Set the payload version before saving.
  -no-backup    Do not keep a fallback copy when the write fails.
`
	return strings.TrimSpace(helpText)
}

func (c *EncodeCommand) Synopsis() string {
	return "Write a save from a JSON payload"
}
