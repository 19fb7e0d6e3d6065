package roster

import (
	"fmt"
	"sort"

	"github.com/pixil98/go-errors"
	"github.com/vespeyr/go-gamesave/internal/api"
	"github.com/vespeyr/go-gamesave/internal/storage"
)

// Template is the stored class template asset new characters are stamped
// from. It is the disk-side shape; Record converts it to the server-facing
// record the catalog matches on.
type Template struct {
	Class      string            `json:"class"`
	PrefabName string            `json:"prefab_name,omitempty"`
	Gender     string            `json:"gender"`
	Level      int               `json:"level,omitempty"`
	Experience int               `json:"experience,omitempty"`
	Faction    string            `json:"faction,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

func (t *Template) Validate() error {
	el := errors.NewErrorList()

	if t.Class == "" && t.PrefabName == "" {
		el.Add(fmt.Errorf("a class or prefab name is required"))
	}
	if t.Level < 0 {
		el.Add(fmt.Errorf("level cannot be negative"))
	}

	return el.Err()
}

func (t *Template) Record() *api.Character {
	return &api.Character{
		Name:       t.Class,
		PrefabName: t.PrefabName,
		Gender:     t.Gender,
		Level:      t.Level,
		Experience: t.Experience,
		Faction:    t.Faction,
		Properties: t.Properties,
	}
}

// CatalogFromStore builds a catalog from a template asset store. Templates
// are ordered by asset id so matching stays deterministic across runs.
func CatalogFromStore(store storage.Storer[*Template]) *Catalog {
	all := store.GetAll()

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]*api.Character, 0, len(ids))
	for _, id := range ids {
		records = append(records, all[id].Record())
	}
	return NewCatalog(records)
}
