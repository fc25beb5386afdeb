package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/meigma/saveblob"
	"github.com/meigma/saveblob/system"
	"github.com/meigma/saveblob/tree"
)

// Keys of the progress summary, all under ProgressSystem.
const (
	ProgressSystem       = "Progress"
	KeyOwnedItems        = "ownedItems"
	KeyMissionsCompleted = "missionsCompleted"
	KeyTimePlayed        = "timePlayed"
	KeyPurchaseMade      = "purchaseMade"
)

// Keys of the purchased currency balances, under BankSystem and the platform.
const (
	BankSystem         = "Bank"
	KeyPurchasedCoins  = "PurchasedCoins"
	KeyPurchasedGems   = "PurchasedGems"
	receiptPlatformKey = "platform"
	receiptCoinsKey    = "coins"
	receiptGemsKey     = "gems"
)

// ErrMissingSave is returned by ReconcileData when either save is nil.
var ErrMissingSave = errors.New("reconcile: both saves are required")

// Progress summarises how far a player got in one save.
type Progress struct {
	OwnedItems        int
	MissionsCompleted int
	TimePlayed        int64
	PurchaseMade      bool
	LastModified      int64
	LastDevice        string
}

// ReadProgress reads the progress summary from b. It returns nil for a nil
// save.
func ReadProgress(b *saveblob.Blob) *Progress {
	if b == nil {
		return nil
	}
	base := system.NewBase(ProgressSystem)
	base.Bind(b)
	return &Progress{
		OwnedItems:        base.GetInt(KeyOwnedItems, 0),
		MissionsCompleted: base.GetInt(KeyMissionsCompleted, 0),
		TimePlayed:        base.GetInt64(KeyTimePlayed, 0),
		PurchaseMade:      base.GetBool(KeyPurchaseMade, false),
		LastModified:      b.Timestamp(),
		LastDevice:        b.DeviceName(),
	}
}

// WriteProgress stores p in b. LastModified and LastDevice are stamped by
// Save and are not written.
func WriteProgress(b *saveblob.Blob, p Progress) error {
	base := system.NewBase(ProgressSystem)
	base.Bind(b)
	var result *multierror.Error
	result = multierror.Append(result,
		base.SetInt(KeyOwnedItems, p.OwnedItems),
		base.SetInt(KeyMissionsCompleted, p.MissionsCompleted),
		base.SetInt64(KeyTimePlayed, p.TimePlayed),
		base.SetBool(KeyPurchaseMade, p.PurchaseMade),
	)
	return result.ErrorOrNil()
}

// ProgressComparator compares saves by their progress summary and unions
// purchase receipts between them.
type ProgressComparator struct {
	logger     *slog.Logger
	platform   string
	freshState ConflictState

	local *Progress
	cloud *Progress
}

// Option configures a ProgressComparator.
type Option func(*ProgressComparator)

// WithLogger sets the logger. Defaults to a logger that discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ProgressComparator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPlatform sets the platform whose receipts are credited. Defaults to the
// platform of the local save.
func WithPlatform(platform string) Option {
	return func(c *ProgressComparator) {
		c.platform = platform
	}
}

// WithFreshSaveState sets the outcome when the local save is brand new and
// the cloud save has no play time. Defaults to UseLocal.
func WithFreshSaveState(state ConflictState) Option {
	return func(c *ProgressComparator) {
		c.freshState = state
	}
}

// NewProgressComparator returns a ProgressComparator.
func NewProgressComparator(opts ...Option) *ProgressComparator {
	c := &ProgressComparator{
		logger:     slog.New(slog.DiscardHandler),
		freshState: UseLocal,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Comparator = (*ProgressComparator)(nil)

// CompareSaves implements Comparator.
func (c *ProgressComparator) CompareSaves(local, cloud *saveblob.Blob) ConflictState {
	c.local = ReadProgress(local)
	c.cloud = ReadProgress(cloud)

	switch {
	case c.local == nil && c.cloud == nil:
		return Equal
	case c.cloud == nil:
		c.logger.Debug("cloud save unavailable")
		return UseLocal
	case c.local == nil:
		c.logger.Debug("local save unavailable")
		return UseCloud
	}

	state := Compare(c.local, c.cloud, c.freshState)
	c.logger.Debug("compared saves",
		slog.Any("local", c.local),
		slog.Any("cloud", c.cloud),
		slog.String("state", state.String()))
	return state
}

// LocalProgress implements Comparator. It returns a *Progress, or nil.
func (c *ProgressComparator) LocalProgress() any { return c.local }

// CloudProgress implements Comparator. It returns a *Progress, or nil.
func (c *ProgressComparator) CloudProgress() any { return c.cloud }

// Compare applies the decision table to two progress summaries. fresh is
// returned when the local save is brand new and the cloud save was never
// played.
func Compare(local, cloud *Progress, fresh ConflictState) ConflictState {
	localNewer := local.LastModified >= cloud.LastModified
	cloudNewer := local.LastModified <= cloud.LastModified
	localAhead := local.TimePlayed >= cloud.TimePlayed && localNewer
	cloudAhead := local.TimePlayed <= cloud.TimePlayed && cloudNewer

	pick := func(ahead bool, use, recommend ConflictState) ConflictState {
		if ahead {
			return use
		}
		return recommend
	}

	switch {
	case local.OwnedItems <= 1 && local.MissionsCompleted == 0 && cloud.TimePlayed == 0 && !local.PurchaseMade:
		return fresh

	case local.OwnedItems == cloud.OwnedItems && local.MissionsCompleted == cloud.MissionsCompleted:
		switch {
		case local.TimePlayed == cloud.TimePlayed:
			return pick(localNewer, UseLocal, RecommendCloud)
		case local.TimePlayed > cloud.TimePlayed:
			return pick(localNewer, UseLocal, RecommendLocal)
		default:
			return pick(cloudNewer, UseCloud, RecommendCloud)
		}

	case local.OwnedItems == cloud.OwnedItems:
		if local.MissionsCompleted > cloud.MissionsCompleted {
			return pick(localAhead, UseLocal, RecommendLocal)
		}
		return pick(cloudAhead, UseCloud, RecommendCloud)

	case local.MissionsCompleted == cloud.MissionsCompleted:
		if local.OwnedItems > cloud.OwnedItems {
			return pick(localAhead, UseLocal, RecommendLocal)
		}
		return pick(cloudAhead, UseCloud, RecommendCloud)

	case local.OwnedItems > cloud.OwnedItems:
		if local.MissionsCompleted > cloud.MissionsCompleted {
			return pick(localAhead, UseLocal, RecommendLocal)
		}
		return UserDecision

	default:
		if local.MissionsCompleted < cloud.MissionsCompleted {
			return pick(cloudAhead, UseCloud, RecommendCloud)
		}
		return UserDecision
	}
}

// Receipt is one purchase recorded in a save's purchases map.
type Receipt struct {
	Platform string
	Coins    int
	Gems     int

	raw tree.Value
}

// ParseReceipts reads the purchases map of a save, keyed by receipt id.
// Entries that are not maps keep an empty platform and are never credited.
func ParseReceipts(purchases tree.Value) map[string]Receipt {
	out := make(map[string]Receipt)
	m, ok := purchases.AsMap()
	if !ok {
		return out
	}
	for id, v := range m {
		r := Receipt{raw: v}
		if fields, ok := v.AsMap(); ok {
			r.Platform = fields[receiptPlatformKey].AsString("")
			r.Coins = fields[receiptCoinsKey].AsInt(0)
			r.Gems = fields[receiptGemsKey].AsInt(0)
		}
		out[id] = r
	}
	return out
}

// Value returns the receipt in its stored form.
func (r Receipt) Value() tree.Value {
	if r.raw.Kind() != tree.KindNull {
		return r.raw
	}
	return tree.Map(map[string]tree.Value{
		receiptPlatformKey: tree.String(r.Platform),
		receiptCoinsKey:    tree.Int(int64(r.Coins)),
		receiptGemsKey:     tree.Int(int64(r.Gems)),
	})
}

// ReconcileData implements Comparator. Receipts missing from one save are
// copied into it. Receipts from the current platform also credit their coins
// and gems to the purchased balances of the receiving save.
func (c *ProgressComparator) ReconcileData(local, cloud *saveblob.Blob) error {
	if local == nil || cloud == nil {
		return ErrMissingSave
	}
	platform := c.platform
	if platform == "" {
		platform = local.Platform()
	}

	localReceipts := ParseReceipts(local.Purchases())
	cloudReceipts := ParseReceipts(cloud.Purchases())

	var result *multierror.Error
	if err := c.copyReceipts(localReceipts, cloudReceipts, cloud, platform); err != nil {
		result = multierror.Append(result, fmt.Errorf("cloud save: %w", err))
	}
	if err := c.copyReceipts(cloudReceipts, localReceipts, local, platform); err != nil {
		result = multierror.Append(result, fmt.Errorf("local save: %w", err))
	}
	return result.ErrorOrNil()
}

func (c *ProgressComparator) copyReceipts(src, dst map[string]Receipt, save *saveblob.Blob, platform string) error {
	bank := system.NewBase(BankSystem, system.WithLogger(c.logger))
	bank.Bind(save)
	bank.PushKey(platform)

	var result *multierror.Error
	for _, id := range slices.Sorted(maps.Keys(src)) {
		r := src[id]
		if _, ok := dst[id]; ok || r.Platform != platform {
			continue
		}
		result = multierror.Append(result,
			bank.SetInt(KeyPurchasedCoins, bank.GetInt(KeyPurchasedCoins, 0)+r.Coins),
			bank.SetInt(KeyPurchasedGems, bank.GetInt(KeyPurchasedGems, 0)+r.Gems),
		)
		dst[id] = r
		c.logger.Debug("copied receipt",
			slog.String("receipt", id),
			slog.Int("coins", r.Coins),
			slog.Int("gems", r.Gems))
	}

	purchases := make(map[string]tree.Value, len(dst))
	for id, r := range dst {
		purchases[id] = r.Value()
	}
	save.SetPurchases(tree.Map(purchases))
	return result.ErrorOrNil()
}
