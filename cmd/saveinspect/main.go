// Command saveinspect inspects, verifies, decodes and writes save files.
//
// Configuration is read from SAVEBLOB_* environment variables.
package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/meigma/saveblob/internal/config"
)

const binName = "saveinspect"

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	cfg, err := config.Load()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	logger := cfg.Logger(os.Stderr)

	store, closePrefs, err := cfg.OpenPrefs(logger)
	if err != nil {
		ui.Error(fmt.Sprintf("Could not open preference store: %s", err))
		return 1
	}
	defer func() {
		if err := closePrefs(); err != nil {
			ui.Error(fmt.Sprintf("Could not close preference store: %s", err))
		}
	}()

	meta := Meta{
		Ui:     ui,
		Config: cfg,
		Logger: logger,
		Prefs:  store,
	}

	runner := &cli.CLI{
		Name:       binName,
		Args:       args,
		Commands:   commands(meta),
		HelpFunc:   cli.BasicHelpFunc(binName),
		HelpWriter: os.Stdout,
	}
	code, err := runner.Run()
	if err != nil {
		ui.Error(fmt.Sprintf("Error executing CLI: %s", err))
		return 1
	}
	return code
}

func commands(meta Meta) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"inspect": func() (cli.Command, error) {
			return &InspectCommand{Meta: meta}, nil
		},
		"verify": func() (cli.Command, error) {
			return &VerifyCommand{Meta: meta}, nil
		},
		"decode": func() (cli.Command, error) {
			return &DecodeCommand{Meta: meta}, nil
		},
		"encode": func() (cli.Command, error) {
			return &EncodeCommand{Meta: meta}, nil
		},
	}
}
