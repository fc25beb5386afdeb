package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/meigma/saveblob"
)

// DecodeCommand prints the payload of a save as JSON.
type DecodeCommand struct {
	Meta
}

func (c *DecodeCommand) Run(args []string) int {
	fs := c.flagSet("decode")
	pretty := fs.Bool("pretty", false, "indent the output")
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(err.Error())
		return cli.RunResultHelp
	}
	if fs.NArg() != 1 {
		c.Ui.Error("The decode command expects exactly one identity.")
		return cli.RunResultHelp
	}

	b, err := c.openBlob(fs.Arg(0))
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	state, err := b.Load()
	if state != saveblob.LoadOK {
		c.Ui.Error(fmt.Sprintf("Could not load %s: %s (%v)", b.Identity(), state, err))
		return 1
	}

	text, err := b.Tree().Text()
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	if *pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(text), "", "  "); err != nil {
			c.Ui.Error(err.Error())
			return 1
		}
		text = buf.String()
	}
	c.Ui.Output(text)
	return 0
}

func (c *DecodeCommand) Help() string {
	helpText := `
Usage: saveinspect decode [options] <identity>

  Load the save for identity and print its payload as JSON with sorted keys.

Options:

  -pretty    Indent the output.
`
	return strings.TrimSpace(helpText)
}

func (c *DecodeCommand) Synopsis() string {
	return "Print the payload of a save"
}
