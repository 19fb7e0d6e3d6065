package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vespeyr/go-gamesave/internal/api"
	"github.com/vespeyr/go-gamesave/internal/bridge"
	"github.com/vespeyr/go-gamesave/internal/prefs"
)

const (
	// DefaultInitialDelay is how long after startup the first load attempt
	// waits, giving login and world selection time to settle.
	DefaultInitialDelay = 2 * time.Second
	// DefaultMaxRetries bounds how many ticks the initial load waits for a
	// character to be selected before giving up.
	DefaultMaxRetries = 5
	// DefaultSaveThrottle is the minimum gap between scene-change saves.
	// Quit saves ignore it.
	DefaultSaveThrottle = 30 * time.Second
)

// StatSource is the game-side stat system. Snapshot produces the state to
// persist; Restore reads staged state back out of the local store.
type StatSource interface {
	SnapshotStats() (string, error)
	RestoreStats() error
}

// QuestSource is the game-side quest system.
type QuestSource interface {
	SnapshotQuests() (active, completed, failed string, err error)
	RestoreQuests() error
}

// InventorySource is the game-side inventory system. Scenes lists every
// scene with inventory state, including the UI-only reserved scenes.
type InventorySource interface {
	Scenes() []string
	SnapshotInventory(scene string) (uiData, sceneData string, err error)
	RestoreInventory() error
}

// ContextSource supplies the session state the coordinator keys on.
type ContextSource interface {
	WorldKey() string
	CharacterID() string
}

// Coordinator drives full save and load cycles across all three subsystems
// in a fixed order, with single-flight guards so overlapping requests
// collapse into one cycle. It implements driver.Manager: ticks run the
// delayed initial load.
type Coordinator struct {
	bridge    *bridge.Bridge
	store     *prefs.Store
	session   ContextSource
	stats     StatSource
	quests    QuestSource
	inventory InventorySource

	initialDelay time.Duration
	maxRetries   int
	throttle     time.Duration
	now          func() time.Time
	recoverAuth  func(context.Context) bool

	mu       sync.Mutex
	saving   bool
	loading  bool
	loaded   bool
	gaveUp   bool
	started  time.Time
	retries  int
	lastSave time.Time
}

func New(b *bridge.Bridge, store *prefs.Store, session ContextSource, stats StatSource, quests QuestSource, inventory InventorySource, opts ...Opt) *Coordinator {
	c := &Coordinator{
		bridge:       b,
		store:        store,
		session:      session,
		stats:        stats,
		quests:       quests,
		inventory:    inventory,
		initialDelay: DefaultInitialDelay,
		maxRetries:   DefaultMaxRetries,
		throttle:     DefaultSaveThrottle,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Tick runs the initial-load state machine: wait out the startup delay,
// then retry until a character is selected or the retry budget is spent.
func (c *Coordinator) Tick(ctx context.Context) error {
	c.mu.Lock()
	if c.loaded || c.gaveUp {
		c.mu.Unlock()
		return nil
	}
	if c.started.IsZero() {
		c.started = c.now()
	}
	if c.now().Sub(c.started) < c.initialDelay {
		c.mu.Unlock()
		return nil
	}

	if c.session.CharacterID() == "" {
		c.retries++
		if c.retries >= c.maxRetries {
			c.gaveUp = true
			c.mu.Unlock()
			slog.Error("initial load abandoned: no character selected", "retries", c.retries)
			return nil
		}
		c.mu.Unlock()
		slog.Debug("initial load waiting for character selection", "attempt", c.retries)
		return nil
	}
	c.mu.Unlock()

	if err := c.LoadAll(ctx); err != nil {
		slog.Error("initial load failed", "error", err)
	}
	return nil
}

// SaveAll runs one full save cycle: stats, then quests, then inventory
// scene by scene. A cycle already in flight makes this call a no-op.
func (c *Coordinator) SaveAll(ctx context.Context) error {
	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		slog.Info("save already in progress, request dropped")
		return nil
	}
	c.saving = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.saving = false
		c.lastSave = c.now()
		c.mu.Unlock()
	}()

	err := c.saveCycle(ctx)
	if c.recovered(ctx, err) {
		err = c.saveCycle(ctx)
	}
	return err
}

func (c *Coordinator) saveCycle(ctx context.Context) error {
	slog.Info("starting save cycle", "world", c.session.WorldKey(), "character", c.session.CharacterID())

	stats, err := c.stats.SnapshotStats()
	if err != nil {
		return fmt.Errorf("snapshotting stats: %w", err)
	}
	if err := c.bridge.SaveStats(ctx, stats); err != nil {
		return fmt.Errorf("saving stats: %w", err)
	}

	active, completed, failed, err := c.quests.SnapshotQuests()
	if err != nil {
		return fmt.Errorf("snapshotting quests: %w", err)
	}
	if err := c.bridge.SaveQuests(ctx, active, completed, failed); err != nil {
		return fmt.Errorf("saving quests: %w", err)
	}

	for _, scene := range c.inventory.Scenes() {
		uiData, sceneData, err := c.inventory.SnapshotInventory(scene)
		if err != nil {
			return fmt.Errorf("snapshotting inventory scene %q: %w", scene, err)
		}
		if err := c.bridge.SaveInventory(ctx, scene, uiData, sceneData); err != nil {
			return fmt.Errorf("saving inventory scene %q: %w", scene, err)
		}
	}

	return nil
}

// NotifySceneChanged requests a save after a scene transition. Requests
// inside the throttle window are skipped, not queued.
func (c *Coordinator) NotifySceneChanged(ctx context.Context) error {
	c.mu.Lock()
	if !c.lastSave.IsZero() && c.now().Sub(c.lastSave) < c.throttle {
		c.mu.Unlock()
		slog.Debug("scene-change save skipped by throttle")
		return nil
	}
	c.mu.Unlock()

	return c.SaveAll(ctx)
}

// NotifyQuit requests the final save on shutdown. It bypasses the throttle.
func (c *Coordinator) NotifyQuit(ctx context.Context) error {
	return c.SaveAll(ctx)
}

// LoadAll runs one full load cycle: remote state is staged into the local
// store, then each subsystem restores from it, stats first, inventory last.
// A cycle already in flight makes this call a no-op.
func (c *Coordinator) LoadAll(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		slog.Info("load already in progress, request dropped")
		return nil
	}
	c.loading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	err := c.loadCycle(ctx)
	if c.recovered(ctx, err) {
		err = c.loadCycle(ctx)
	}
	return err
}

// recovered reports whether an auth-kind failure was repaired by a token
// refresh, in which case the cycle is worth one retry.
func (c *Coordinator) recovered(ctx context.Context, err error) bool {
	if err == nil || c.recoverAuth == nil || !api.IsKind(err, api.KindAuth) {
		return false
	}
	slog.Warn("cycle hit an authentication failure, attempting token refresh")
	return c.recoverAuth(ctx)
}

func (c *Coordinator) loadCycle(ctx context.Context) error {
	character := c.session.CharacterID()
	if c.session.WorldKey() == "" || character == "" {
		return fmt.Errorf("incomplete session context for load")
	}

	slog.Info("starting load cycle", "world", c.session.WorldKey(), "character", character)

	if err := c.stage(ctx, character); err != nil {
		return err
	}

	if err := c.stats.RestoreStats(); err != nil {
		return fmt.Errorf("restoring stats: %w", err)
	}
	if err := c.quests.RestoreQuests(); err != nil {
		return fmt.Errorf("restoring quests: %w", err)
	}
	if err := c.inventory.RestoreInventory(); err != nil {
		return fmt.Errorf("restoring inventory: %w", err)
	}

	c.mu.Lock()
	c.loaded = true
	c.mu.Unlock()

	return nil
}

// stage pulls the provider-preferred copy of every resource through the
// bridge and writes it into the local store under the canonical keys, so
// the subsystems' native restore paths find it there.
func (c *Coordinator) stage(ctx context.Context, character string) error {
	stats, err := c.bridge.LoadStats(ctx)
	if err != nil {
		return fmt.Errorf("loading stats: %w", err)
	}
	statKey := bridge.Key{Resource: bridge.ResourceStat, CharacterKey: character}
	c.store.Set(statKey.StorageKey(), stats)

	active, completed, failed, err := c.bridge.LoadQuests(ctx)
	if err != nil {
		return fmt.Errorf("loading quests: %w", err)
	}
	questKey := bridge.Key{Resource: bridge.ResourceQuest, CharacterKey: character}
	c.store.Set(questKey.ActiveQuestsKey(), active)
	c.store.Set(questKey.CompletedQuestsKey(), completed)
	c.store.Set(questKey.FailedQuestsKey(), failed)

	for _, scene := range c.inventory.Scenes() {
		uiData, sceneData, err := c.bridge.LoadInventory(ctx, scene)
		if err != nil {
			return fmt.Errorf("loading inventory scene %q: %w", scene, err)
		}
		key := bridge.Key{Resource: bridge.ResourceInventory, CharacterKey: character, Scene: scene}
		c.store.Set(key.StorageKey(), uiData)
		if sceneKey := key.SceneDataKey(); sceneKey != "" {
			c.store.Set(sceneKey, sceneData)
		}
	}

	return c.store.Flush()
}
