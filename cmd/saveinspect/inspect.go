package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/saveblob"
	"github.com/meigma/saveblob/internal/frame"
)

// InspectCommand prints the layout of a save file and the result of
// loading it.
type InspectCommand struct {
	Meta
}

// fileReport describes the raw layout of one save file.
type fileReport struct {
	Path          string
	Size          int64
	Digest        digest.Digest
	FrameLength   int
	Version       int32
	Header        frame.Header
	ContentRead   int
	ComputedHash  string
	HeaderDecoded bool
}

func (r fileReport) HashMatches() bool {
	return r.HeaderDecoded && r.ComputedHash == r.Header.Hash
}

func inspectFile(path string) (fileReport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileReport{}, err
	}
	rep := fileReport{
		Path:   path,
		Size:   int64(len(raw)),
		Digest: digest.FromBytes(raw),
	}

	fr, err := frame.StripPadding(bytes.NewReader(raw))
	if err != nil {
		return rep, fmt.Errorf("reading frame: %w", err)
	}
	rep.FrameLength = len(fr)

	r := bytes.NewReader(fr)
	rep.Version = frame.DecodeVersion(r)
	if rep.Version == frame.VersionUnreadable {
		return rep, nil
	}
	h, err := frame.DecodeHeader(r)
	if err != nil {
		return rep, nil
	}
	rep.Header = h
	rep.HeaderDecoded = true

	n := max(min(int64(h.ContentLength), int64(r.Len())), 0)
	content := make([]byte, n)
	if _, err := io.ReadFull(r, content); err != nil {
		return rep, fmt.Errorf("reading content: %w", err)
	}
	rep.ContentRead = len(content)
	rep.ComputedHash = frame.HexDigest(content)
	return rep, nil
}

func (c *InspectCommand) Run(args []string) int {
	fs := c.flagSet("inspect")
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(err.Error())
		return cli.RunResultHelp
	}
	if fs.NArg() != 1 {
		c.Ui.Error("The inspect command expects exactly one identity.")
		return cli.RunResultHelp
	}
	identity := fs.Arg(0)

	b, err := c.openBlob(identity)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	rep, err := inspectFile(b.Path())
	switch {
	case os.IsNotExist(err):
		c.Ui.Output(fmt.Sprintf("Path:     %s (missing)", b.Path()))
	case err != nil:
		c.Ui.Error(fmt.Sprintf("Could not read %s: %s", b.Path(), err))
	default:
		c.Ui.Output(formatReport(rep))
	}

	state, err := b.Load()
	c.Ui.Output(fmt.Sprintf("Load:     %s", state))
	if state != saveblob.LoadOK {
		if err != nil {
			c.Ui.Error(err.Error())
		}
		return 1
	}
	c.Ui.Output(fmt.Sprintf("Saved by: %s", b.DeviceName()))
	c.Ui.Output(fmt.Sprintf("Modified: %d", b.Timestamp()))
	return 0
}

func formatReport(rep fileReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Path:     %s\n", rep.Path)
	fmt.Fprintf(&sb, "Size:     %d\n", rep.Size)
	fmt.Fprintf(&sb, "Digest:   %s\n", rep.Digest)
	fmt.Fprintf(&sb, "Frame:    %d bytes\n", rep.FrameLength)
	if rep.Version == frame.VersionUnreadable {
		sb.WriteString("Version:  unreadable")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Version:  %d\n", rep.Version)
	if !rep.HeaderDecoded {
		sb.WriteString("Header:   truncated")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Header:   %d bytes\n", rep.Header.Length)
	fmt.Fprintf(&sb, "Content:  %d of %d bytes\n", rep.ContentRead, rep.Header.ContentLength)
	fmt.Fprintf(&sb, "Hash:     %s\n", rep.Header.Hash)
	if rep.HashMatches() {
		sb.WriteString("Check:    ok")
	} else {
		fmt.Fprintf(&sb, "Check:    mismatch (computed %s)", rep.ComputedHash)
	}
	return sb.String()
}

func (c *InspectCommand) Help() string {
	helpText := `
Usage: saveinspect inspect <identity>

  Print the layout of the save file for identity, check its digest, and
  report the result of loading it.
`
	return strings.TrimSpace(helpText)
}

func (c *InspectCommand) Synopsis() string {
	return "Show the layout and integrity of a save file"
}
