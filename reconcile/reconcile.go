// Package reconcile decides between a local and a cloud save of the same
// player and merges data that must survive whichever one wins.
package reconcile

import "github.com/meigma/saveblob"

// ConflictState is the outcome of comparing two saves.
type ConflictState int

const (
	// RecommendLocal suggests keeping the local save but asks the player.
	RecommendLocal ConflictState = iota
	// RecommendCloud suggests taking the cloud save but asks the player.
	RecommendCloud
	// UseLocal keeps the local save without asking.
	UseLocal
	// UseCloud takes the cloud save without asking.
	UseCloud
	// UserDecision leaves the choice to the player.
	UserDecision
	// Equal means both saves hold the same progress.
	Equal
	// LocalSaveCorrupt means the local save could not be read.
	LocalSaveCorrupt
	// CloudSaveCorrupt means the cloud save could not be read.
	CloudSaveCorrupt
	// LocalCorruptUpgradeNeeded means the local save needs a newer build.
	LocalCorruptUpgradeNeeded
)

func (s ConflictState) String() string {
	switch s {
	case RecommendLocal:
		return "RecommendLocal"
	case RecommendCloud:
		return "RecommendCloud"
	case UseLocal:
		return "UseLocal"
	case UseCloud:
		return "UseCloud"
	case UserDecision:
		return "UserDecision"
	case Equal:
		return "Equal"
	case LocalSaveCorrupt:
		return "LocalSaveCorrupt"
	case CloudSaveCorrupt:
		return "CloudSaveCorrupt"
	case LocalCorruptUpgradeNeeded:
		return "LocalCorruptUpgradeNeeded"
	default:
		return "Unknown"
	}
}

// Comparator compares a local and a cloud save. Either save may be nil when
// it is unavailable.
type Comparator interface {
	// CompareSaves decides which save should win.
	CompareSaves(local, cloud *saveblob.Blob) ConflictState
	// ReconcileData copies data that must never be lost between both saves.
	ReconcileData(local, cloud *saveblob.Blob) error
	// LocalProgress returns the summary read from the last local save.
	LocalProgress() any
	// CloudProgress returns the summary read from the last cloud save.
	CloudProgress() any
}
