package system_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/saveblob"
	"github.com/meigma/saveblob/internal/testutil"
	"github.com/meigma/saveblob/system"
)

// inventory is a subsystem the way games write them: Base embedded, fields
// mirrored in Load and Save.
type inventory struct {
	*system.Base
	owned []bool
	coins int
}

func newInventory() *inventory {
	inv := &inventory{Base: system.NewBase("Inventory")}
	inv.Reset()
	return inv
}

func (i *inventory) Reset() {
	i.owned = []bool{true, false, false}
	i.coins = 0
}

func (i *inventory) Load() error {
	i.owned = i.GetBoolArray("owned")
	i.coins = i.GetInt("coins", 0, system.PlatformSpecific())
	return nil
}

func (i *inventory) Save() error {
	if err := i.SetBoolArray("owned", i.owned); err != nil {
		return err
	}
	return i.SetInt("coins", i.coins, system.PlatformSpecific())
}

var _ saveblob.System = (*inventory)(nil)

func TestSystemRoundTripThroughBlob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dev := testutil.Device{DeviceName: "ada-phone", DeviceModel: "Pixel 8", DevicePlatform: "android"}
	clock := testutil.Clock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	b, err := saveblob.New("user42", saveblob.WithDir(dir), saveblob.WithDevice(dev), saveblob.WithClock(clock))
	require.NoError(t, err)
	inv := newInventory()
	b.Register(inv)
	assert.True(t, inv.Bound())

	inv.owned[2] = true
	inv.coins = 1500
	state, err := b.Save()
	require.NoError(t, err)
	require.Equal(t, saveblob.SaveOK, state)
	assert.Equal(t, int64(1500), b.Get("Inventory.android.coins").AsInt64(0))

	b2, err := saveblob.New("user42", saveblob.WithDir(dir), saveblob.WithDevice(dev))
	require.NoError(t, err)
	inv2 := newInventory()
	b2.Register(inv2)
	lstate, err := b2.Load()
	require.NoError(t, err)
	require.Equal(t, saveblob.LoadOK, lstate)
	assert.Equal(t, []bool{true, false, true}, inv2.owned)
	assert.Equal(t, 1500, inv2.coins)

	b2.Unregister(inv2)
	assert.False(t, inv2.Bound())
}
