package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vespeyr/go-gamesave/internal/api"
	"github.com/vespeyr/go-gamesave/internal/prefs"
)

// Remote is the slice of the backend API the bridge drives. *api.Client
// satisfies it.
type Remote interface {
	SaveInventory(ctx context.Context, worldKey, key, scene, uiData, sceneData string) error
	LoadInventory(ctx context.Context, worldKey, key, scene string) (string, string, error)
	DeleteInventory(ctx context.Context, worldKey, key, scene string) error
	SaveQuests(ctx context.Context, worldKey, key, active, completed, failed string) error
	LoadQuests(ctx context.Context, worldKey, key string) (string, string, string, error)
	DeleteQuests(ctx context.Context, worldKey, key string) error
	SaveStats(ctx context.Context, worldKey, key, statsJSON string) error
	LoadStats(ctx context.Context, worldKey, key string) (string, error)
	DeleteStats(ctx context.Context, worldKey, key string) error
	SaveString(ctx context.Context, key, value string) error
	LoadString(ctx context.Context, key, def string) (string, error)
	DeleteCharacter(ctx context.Context, worldKey, characterID string) error
}

// ContextSource supplies the addressing slice of the session context. Every
// operation reads it fresh, so the composite key always reflects the current
// world and character selection.
type ContextSource interface {
	WorldKey() string
	CharacterID() string
	Account() string
}

// Bridge fans persistence operations out to the local store and/or the
// backend API according to the provider selection, deriving both addressings
// from one composite Key per operation.
type Bridge struct {
	local    *prefs.Store
	remote   Remote
	session  ContextSource
	provider ProviderFunc
}

func New(local *prefs.Store, remote Remote, session ContextSource, provider ProviderFunc) *Bridge {
	return &Bridge{
		local:    local,
		remote:   remote,
		session:  session,
		provider: provider,
	}
}

// address builds the composite key for a character-scoped resource,
// failing before any I/O when the session context is incomplete. Writing
// under a garbage key would strand the data.
func (b *Bridge) address(resource Resource, scene string) (Key, error) {
	world := b.session.WorldKey()
	character := b.session.CharacterID()

	if world == "" || character == "" {
		err := fmt.Errorf("incomplete session context: world=%q character=%q", world, character)
		slog.Error("persistence operation aborted", "resource", resource.String(), "error", err)
		return Key{}, err
	}

	return Key{
		Resource:     resource,
		WorldKey:     world,
		CharacterKey: character,
		Scene:        scene,
	}, nil
}

// registerSavedKey records the character key in the resource's registry the
// first time it is saved, so deletion cascades can find it later.
func (b *Bridge) registerSavedKey(key Key) {
	regKey := key.Resource.RegistryKey()
	if regKey == "" {
		return
	}

	keys := parseRegistry(b.local.Get(regKey))
	if registryContains(keys, key.CharacterKey) {
		return
	}
	keys = append(keys, key.CharacterKey)
	b.local.Set(regKey, joinRegistry(keys))
}

func (b *Bridge) flushLocal(op string) {
	if err := b.local.Flush(); err != nil {
		slog.Error("failed to flush local store", "op", op, "error", err)
	}
}

// SaveStats persists the serialized stat state for the current character.
func (b *Bridge) SaveStats(ctx context.Context, statsJSON string) error {
	key, err := b.address(ResourceStat, "")
	if err != nil {
		return err
	}

	provider := b.provider()
	slog.Info("saving stats", "world", key.WorldKey, "character", key.CharacterKey, "provider", provider.String())

	if provider.UsesLocal() {
		b.local.Set(key.StorageKey(), statsJSON)
		b.registerSavedKey(key)
		b.flushLocal("save-stats")
	}

	if provider.UsesRemote() {
		if err := b.remote.SaveStats(ctx, key.WorldKey, key.CharacterKey, statsJSON); err != nil {
			if provider == ProviderBoth {
				// The local write already landed; the remote leg is
				// best-effort and is not reconciled on failure.
				slog.Error("remote stats save failed", "error", err)
				return nil
			}
			return err
		}
	}

	return nil
}

// LoadStats returns the serialized stat state for the current character, or
// "" when nothing is stored.
func (b *Bridge) LoadStats(ctx context.Context) (string, error) {
	key, err := b.address(ResourceStat, "")
	if err != nil {
		return "", err
	}

	provider := b.provider()
	if provider.UsesRemote() {
		stats, err := b.remote.LoadStats(ctx, key.WorldKey, key.CharacterKey)
		if err == nil && stats != "" {
			return stats, nil
		}
		if err != nil {
			if provider == ProviderRemote {
				return "", err
			}
			slog.Warn("remote stats load failed, falling back to local", "error", err)
		}
		if provider == ProviderRemote {
			return stats, nil
		}
	}

	return b.local.Get(key.StorageKey()), nil
}

// SaveQuests persists the three quest lists for the current character.
func (b *Bridge) SaveQuests(ctx context.Context, active, completed, failed string) error {
	key, err := b.address(ResourceQuest, "")
	if err != nil {
		return err
	}

	provider := b.provider()
	slog.Info("saving quests", "world", key.WorldKey, "character", key.CharacterKey, "provider", provider.String())

	if provider.UsesLocal() {
		b.local.Set(key.ActiveQuestsKey(), active)
		b.local.Set(key.CompletedQuestsKey(), completed)
		b.local.Set(key.FailedQuestsKey(), failed)
		b.registerSavedKey(key)
		b.flushLocal("save-quests")
	}

	if provider.UsesRemote() {
		if err := b.remote.SaveQuests(ctx, key.WorldKey, key.CharacterKey, active, completed, failed); err != nil {
			if provider == ProviderBoth {
				slog.Error("remote quest save failed", "error", err)
				return nil
			}
			return err
		}
	}

	return nil
}

// LoadQuests returns the three quest lists for the current character.
func (b *Bridge) LoadQuests(ctx context.Context) (active, completed, failed string, err error) {
	key, err := b.address(ResourceQuest, "")
	if err != nil {
		return "", "", "", err
	}

	provider := b.provider()
	if provider.UsesRemote() {
		a, c, f, err := b.remote.LoadQuests(ctx, key.WorldKey, key.CharacterKey)
		if err == nil && (a != "" || c != "" || f != "") {
			return a, c, f, nil
		}
		if err != nil {
			if provider == ProviderRemote {
				return "", "", "", err
			}
			slog.Warn("remote quest load failed, falling back to local", "error", err)
		}
		if provider == ProviderRemote {
			return a, c, f, nil
		}
	}

	return b.local.Get(key.ActiveQuestsKey()),
		b.local.Get(key.CompletedQuestsKey()),
		b.local.Get(key.FailedQuestsKey()),
		nil
}

// SaveInventory persists a scene's inventory state for the current
// character. The reserved scenes carry UI data only.
func (b *Bridge) SaveInventory(ctx context.Context, scene, uiData, sceneData string) error {
	key, err := b.address(ResourceInventory, scene)
	if err != nil {
		return err
	}

	provider := b.provider()
	slog.Info("saving inventory",
		"world", key.WorldKey, "character", key.CharacterKey, "scene", scene, "provider", provider.String())

	if provider.UsesLocal() {
		b.local.Set(key.StorageKey(), uiData)
		if sceneKey := key.SceneDataKey(); sceneKey != "" {
			b.local.Set(sceneKey, sceneData)
		}
		b.registerSavedKey(key)
		b.flushLocal("save-inventory")
	}

	if provider.UsesRemote() {
		if err := b.remote.SaveInventory(ctx, key.WorldKey, key.CharacterKey, scene, uiData, sceneData); err != nil {
			if provider == ProviderBoth {
				slog.Error("remote inventory save failed", "error", err)
				return nil
			}
			return err
		}
	}

	return nil
}

// LoadInventory returns a scene's inventory state for the current character.
func (b *Bridge) LoadInventory(ctx context.Context, scene string) (uiData, sceneData string, err error) {
	key, err := b.address(ResourceInventory, scene)
	if err != nil {
		return "", "", err
	}

	provider := b.provider()
	if provider.UsesRemote() {
		ui, sd, err := b.remote.LoadInventory(ctx, key.WorldKey, key.CharacterKey, scene)
		if err == nil && (ui != "" || sd != "") {
			return ui, sd, nil
		}
		if err != nil {
			if provider == ProviderRemote {
				return "", "", err
			}
			slog.Warn("remote inventory load failed, falling back to local", "error", err)
		}
		if provider == ProviderRemote {
			return ui, sd, nil
		}
	}

	uiData = b.local.Get(key.StorageKey())
	if sceneKey := key.SceneDataKey(); sceneKey != "" {
		sceneData = b.local.Get(sceneKey)
	}
	return uiData, sceneData, nil
}

// SaveCharacterList persists the local character-list blob under the account
// profile key. The remote side of character persistence goes through the
// typed /characters endpoints, not this blob.
func (b *Bridge) SaveCharacterList(blob string) {
	if !b.provider().UsesLocal() {
		return
	}

	account := b.session.Account()
	b.local.Set(account, blob)
	b.flushLocal("save-characters")
}

// LoadCharacterList returns the local character-list blob, or "" when the
// provider has no local side.
func (b *Bridge) LoadCharacterList() string {
	if !b.provider().UsesLocal() {
		return ""
	}
	return b.local.Get(b.session.Account())
}

// SaveString persists a free-form string, used for registry lists and other
// account-level values. These are not character-scoped, so no context
// precondition applies.
func (b *Bridge) SaveString(ctx context.Context, key, value string) error {
	provider := b.provider()

	if provider.UsesLocal() {
		b.local.Set(key, value)
		b.flushLocal("save-string")
	}

	if provider.UsesRemote() {
		if err := b.remote.SaveString(ctx, key, value); err != nil {
			if provider == ProviderBoth {
				slog.Error("remote string save failed", "key", key, "error", err)
				return nil
			}
			return err
		}
	}

	return nil
}

// LoadString returns a free-form string value, or def when absent.
func (b *Bridge) LoadString(ctx context.Context, key, def string) (string, error) {
	provider := b.provider()

	if provider.UsesRemote() {
		val, err := b.remote.LoadString(ctx, key, def)
		if err == nil && val != def && val != "" {
			return val, nil
		}
		if err != nil {
			if provider == ProviderRemote {
				return def, err
			}
			slog.Warn("remote string load failed, falling back to local", "key", key, "error", err)
		}
		if provider == ProviderRemote {
			return val, nil
		}
	}

	return b.local.GetDefault(key, def), nil
}

// DeleteCharacter removes every trace of a character across both stores:
// all per-character flat keys, its entry in every saved-key registry, and
// the remote records. The world key must be selected; the character key is
// passed explicitly since the deleted character is usually not the selected
// one.
func (b *Bridge) DeleteCharacter(ctx context.Context, characterKey string) error {
	world := b.session.WorldKey()
	if world == "" || characterKey == "" {
		err := fmt.Errorf("incomplete context for deletion: world=%q character=%q", world, characterKey)
		slog.Error("character deletion aborted", "error", err)
		return err
	}

	provider := b.provider()
	slog.Info("deleting character", "world", world, "character", characterKey, "provider", provider.String())

	// Scenes are recoverable only from the local key space; collect them
	// before anything is removed so the remote cascade can mirror it.
	scenes := b.localInventoryScenes(characterKey)

	if provider.UsesRemote() {
		for _, scene := range scenes {
			if err := b.remote.DeleteInventory(ctx, world, characterKey, scene); err != nil {
				slog.Error("remote inventory delete failed", "scene", scene, "error", err)
			}
		}
		if err := b.remote.DeleteQuests(ctx, world, characterKey); err != nil {
			slog.Error("remote quest delete failed", "error", err)
		}
		if err := b.remote.DeleteStats(ctx, world, characterKey); err != nil {
			slog.Error("remote stats delete failed", "error", err)
		}
		if err := b.remote.DeleteCharacter(ctx, world, characterKey); err != nil {
			slog.Error("remote character delete failed", "error", err)
			if provider == ProviderRemote {
				return err
			}
		}
	}

	if provider.UsesLocal() {
		for _, k := range b.local.KeysWithPrefix(characterKey + ".") {
			b.local.Delete(k)
		}
	}

	// The registry entries go regardless of provider so a later provider
	// switch cannot resurrect a deleted character's keys.
	for _, resource := range []Resource{ResourceInventory, ResourceQuest, ResourceStat} {
		b.removeFromRegistry(ctx, resource, characterKey)
	}

	if provider.UsesLocal() {
		b.flushLocal("delete-character")
	}

	return nil
}

func (b *Bridge) localInventoryScenes(characterKey string) []string {
	var scenes []string
	prefix := characterKey + "."
	for _, k := range b.local.KeysWithPrefix(prefix) {
		rest := k[len(prefix):]
		switch rest {
		case "Stats", "ActiveQuests", "CompletedQuests", "FailedQuests":
			continue
		}
		if len(rest) > len("_scene") && rest[len(rest)-len("_scene"):] == "_scene" {
			continue
		}
		scenes = append(scenes, rest)
	}
	return scenes
}

func (b *Bridge) removeFromRegistry(ctx context.Context, resource Resource, characterKey string) {
	regKey := resource.RegistryKey()
	if regKey == "" {
		return
	}

	current, err := b.LoadString(ctx, regKey, "")
	if err != nil {
		slog.Error("failed to load registry for deletion", "registry", regKey, "error", err)
		return
	}

	keys := parseRegistry(current)
	if !registryContains(keys, characterKey) {
		return
	}

	updated := joinRegistry(registryRemove(keys, characterKey))
	if err := b.SaveString(ctx, regKey, updated); err != nil {
		slog.Error("failed to update registry after deletion", "registry", regKey, "error", err)
	}
}

// compile-time check that the real client satisfies Remote
var _ Remote = (*api.Client)(nil)
