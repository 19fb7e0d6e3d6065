package coordinator

import (
	"strings"

	"github.com/vespeyr/go-gamesave/internal/bridge"
	"github.com/vespeyr/go-gamesave/internal/prefs"
)

// StoreSystems adapts the local store itself as the subsystem source. The
// game process writes its state into the store under the canonical keys;
// snapshots read those keys back so save cycles mirror them remotely.
// Restores are no-ops: staging already placed remote data under the same
// keys, which is where the game reads from.
type StoreSystems struct {
	store   *prefs.Store
	session ContextSource
}

func NewStoreSystems(store *prefs.Store, session ContextSource) *StoreSystems {
	return &StoreSystems{store: store, session: session}
}

func (s *StoreSystems) key(resource bridge.Resource, scene string) bridge.Key {
	return bridge.Key{
		Resource:     resource,
		WorldKey:     s.session.WorldKey(),
		CharacterKey: s.session.CharacterID(),
		Scene:        scene,
	}
}

func (s *StoreSystems) SnapshotStats() (string, error) {
	return s.store.Get(s.key(bridge.ResourceStat, "").StorageKey()), nil
}

func (s *StoreSystems) RestoreStats() error { return nil }

func (s *StoreSystems) SnapshotQuests() (string, string, string, error) {
	key := s.key(bridge.ResourceQuest, "")
	return s.store.Get(key.ActiveQuestsKey()),
		s.store.Get(key.CompletedQuestsKey()),
		s.store.Get(key.FailedQuestsKey()),
		nil
}

func (s *StoreSystems) RestoreQuests() error { return nil }

// Scenes enumerates every inventory scene with local state for the current
// character, derived from the flat key space.
func (s *StoreSystems) Scenes() []string {
	character := s.session.CharacterID()
	if character == "" {
		return nil
	}

	prefix := character + "."
	var scenes []string
	for _, k := range s.store.KeysWithPrefix(prefix) {
		rest := k[len(prefix):]
		switch rest {
		case "Stats", "ActiveQuests", "CompletedQuests", "FailedQuests":
			continue
		}
		if strings.HasSuffix(rest, "_scene") {
			continue
		}
		scenes = append(scenes, rest)
	}
	return scenes
}

func (s *StoreSystems) SnapshotInventory(scene string) (string, string, error) {
	key := s.key(bridge.ResourceInventory, scene)
	uiData := s.store.Get(key.StorageKey())
	var sceneData string
	if sceneKey := key.SceneDataKey(); sceneKey != "" {
		sceneData = s.store.Get(sceneKey)
	}
	return uiData, sceneData, nil
}

func (s *StoreSystems) RestoreInventory() error { return nil }
