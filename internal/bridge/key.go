package bridge

// Resource is one of the categories of data the persistence layer handles.
type Resource int

const (
	ResourceCharacter Resource = iota
	ResourceInventory
	ResourceQuest
	ResourceStat
	ResourceString
)

func (r Resource) String() string {
	switch r {
	case ResourceCharacter:
		return "character"
	case ResourceInventory:
		return "inventory"
	case ResourceQuest:
		return "quest"
	case ResourceStat:
		return "stat"
	case ResourceString:
		return "string"
	default:
		return "unknown"
	}
}

// RegistryKey is the well-known key holding the semicolon-joined list of
// character keys ever saved for this resource, or "" for resources that keep
// no registry. The names are part of the save-file contract.
func (r Resource) RegistryKey() string {
	switch r {
	case ResourceInventory:
		return "InventorySystemSavedKeys"
	case ResourceQuest:
		return "QuestSystemSavedKeys"
	case ResourceStat:
		return "StatSystemSavedKeys"
	default:
		return ""
	}
}

// Reserved inventory scene names: these carry UI-wide data with no
// per-scene world state alongside.
const (
	SceneUI     = "UI"
	SceneScenes = "Scenes"
)

// Key is the composite logical address of a persisted value. The local
// store's flat key and the remote API's path segments are both derived from
// the same Key, which is what keeps the two views of one value consistent.
type Key struct {
	Resource     Resource
	WorldKey     string
	CharacterKey string
	Scene        string
}

// StorageKey returns the canonical flat key for the local store. For
// inventory the result addresses the UI half; SceneDataKey addresses the
// world half.
func (k Key) StorageKey() string {
	switch k.Resource {
	case ResourceCharacter:
		// The whole character list is one blob under the account profile
		// key, not per-character.
		return k.CharacterKey
	case ResourceInventory:
		return k.CharacterKey + "." + k.Scene
	case ResourceStat:
		return k.CharacterKey + ".Stats"
	case ResourceString:
		return k.CharacterKey
	default:
		return k.CharacterKey
	}
}

// SceneDataKey returns the flat key for an inventory scene's world data, or
// "" for the reserved UI-only scenes.
func (k Key) SceneDataKey() string {
	if k.Resource != ResourceInventory {
		return ""
	}
	if k.Scene == SceneUI || k.Scene == SceneScenes {
		return ""
	}
	return k.CharacterKey + "." + k.Scene + "_scene"
}

// Quest data spans three flat keys per character.

func (k Key) ActiveQuestsKey() string    { return k.CharacterKey + ".ActiveQuests" }
func (k Key) CompletedQuestsKey() string { return k.CharacterKey + ".CompletedQuests" }
func (k Key) FailedQuestsKey() string    { return k.CharacterKey + ".FailedQuests" }
