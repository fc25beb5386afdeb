package saveblob

import (
	"os"
	"runtime"
)

// unknownDeviceName is reported by some platforms instead of a real name.
const unknownDeviceName = "<unknown>"

// Device describes the machine a save is written on.
type Device interface {
	// Name is the user-visible device name.
	Name() string
	// Model is the hardware model, used when Name is unavailable.
	Model() string
	// Platform names the operating system family.
	Platform() string
}

// HostDevice describes the machine the process runs on.
type HostDevice struct{}

// Name returns the host name.
func (HostDevice) Name() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	return name
}

// Model returns "<GOOS>/<GOARCH>".
func (HostDevice) Model() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Platform returns runtime.GOOS.
func (HostDevice) Platform() string {
	return runtime.GOOS
}

func deviceName(d Device) string {
	name := d.Name()
	if name == "" || name == unknownDeviceName {
		return d.Model()
	}
	return name
}
