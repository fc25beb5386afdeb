package saveblob

import (
	"slices"

	"github.com/meigma/saveblob/tree"
)

// Store is the keyed access a Blob gives to systems.
type Store interface {
	Get(key string) tree.Value
	Set(key string, v tree.Value) error
	Platform() string
}

// System is a subsystem that keeps its state in a Blob.
type System interface {
	// Name is the top-level key segment the system writes under.
	Name() string
	// Bind attaches the system to a store, or detaches it when s is nil.
	Bind(s Store)
	// Reset returns the system to its defaults.
	Reset()
	// Load reads the system state from its store.
	Load() error
	// Save writes the system state to its store.
	Save() error
}

// Register binds sys to b. Registered systems are saved before every Save
// and reloaded after every successful load. Registering twice is a no-op.
func (b *Blob) Register(sys System) {
	if slices.Contains(b.systems, sys) {
		return
	}
	b.systems = append(b.systems, sys)
	sys.Bind(b)
}

// Unregister detaches sys from b.
func (b *Blob) Unregister(sys System) {
	i := slices.Index(b.systems, sys)
	if i < 0 {
		return
	}
	b.systems = slices.Delete(b.systems, i, i+1)
	sys.Bind(nil)
}

// Systems returns the registered systems in registration order.
func (b *Blob) Systems() []System {
	return slices.Clone(b.systems)
}

var _ Store = (*Blob)(nil)
