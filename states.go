package saveblob

// SaveState is the outcome of Save.
type SaveState int

const (
	SaveOK SaveState = iota
	SavePermissionError
	SaveDiskSpace
	SaveDisabled
	SaveWriteError
)

func (s SaveState) String() string {
	switch s {
	case SaveOK:
		return "OK"
	case SavePermissionError:
		return "PermissionError"
	case SaveDiskSpace:
		return "DiskSpace"
	case SaveDisabled:
		return "Disabled"
	case SaveWriteError:
		return "WriteError"
	default:
		return "Unknown"
	}
}

// LoadState is the outcome of Load and its variants.
type LoadState int

const (
	LoadOK LoadState = iota
	LoadNotFound
	LoadPermissionError
	LoadCorrupted
	LoadVersionMismatch
)

func (s LoadState) String() string {
	switch s {
	case LoadOK:
		return "OK"
	case LoadNotFound:
		return "NotFound"
	case LoadPermissionError:
		return "PermissionError"
	case LoadCorrupted:
		return "Corrupted"
	case LoadVersionMismatch:
		return "VersionMismatch"
	default:
		return "Unknown"
	}
}
