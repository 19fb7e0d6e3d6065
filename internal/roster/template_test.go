package roster

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/vespeyr/go-gamesave/internal/storage"
)

func TestTemplate_Validate(t *testing.T) {
	tests := map[string]struct {
		template *Template
		expErr   bool
	}{
		"valid":            {&Template{Class: "Warrior", Gender: "Male"}, false},
		"prefab only":      {&Template{PrefabName: "WarriorPrefab"}, false},
		"no class":         {&Template{Gender: "Male"}, true},
		"negative level":   {&Template{Class: "Warrior", Level: -1}, true},
		"level defaulting": {&Template{Class: "Warrior", Level: 0}, false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.template.Validate()
			if tt.expErr && err == nil {
				t.Error("expected error")
			}
			if !tt.expErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCatalogFromStore_OrderedByAssetId(t *testing.T) {
	dir := t.TempDir()

	assets := map[string]*Template{
		"warrior-male":     {Class: "Warrior", Gender: "Male", Level: 1},
		"sorceress-female": {Class: "Sorceress", Gender: "Female", Level: 1},
		"hunter-male":      {Class: "Hunter", Gender: "Male", Level: 1},
	}
	for id, tpl := range assets {
		asset := storage.Asset[*Template]{
			Version:    1,
			Identifier: storage.Identifier(id),
			Spec:       tpl,
		}
		data, err := json.Marshal(asset)
		if err != nil {
			t.Fatalf("failed to marshal asset: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0644); err != nil {
			t.Fatalf("failed to write asset file: %v", err)
		}
	}

	store, err := storage.NewFileStore[*Template](dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	catalog := CatalogFromStore(store)
	templates := catalog.Templates()

	testutil.AssertEqual(t, "count", len(templates), 3)
	testutil.AssertEqual(t, "first", templates[0].ClassKey(), "Hunter")
	testutil.AssertEqual(t, "second", templates[1].ClassKey(), "Sorceress")
	testutil.AssertEqual(t, "third", templates[2].ClassKey(), "Warrior")
}

func TestTemplate_Record(t *testing.T) {
	tpl := &Template{
		Class:      "Warrior",
		PrefabName: "WarriorPrefab",
		Gender:     "Male",
		Level:      3,
		Experience: 250,
		Properties: map[string]string{"Weapon": "Sword"},
	}

	rec := tpl.Record()

	testutil.AssertEqual(t, "class key", rec.ClassKey(), "Warrior")
	testutil.AssertEqual(t, "prefab", rec.PrefabName, "WarriorPrefab")
	testutil.AssertEqual(t, "gender", rec.Gender, "Male")
	testutil.AssertEqual(t, "level", rec.Level, 3)
	testutil.AssertEqual(t, "experience", rec.Experience, 250)
	testutil.AssertEqual(t, "id empty", rec.CharacterID, "")
	testutil.AssertEqual(t, "name empty", rec.CharacterName, "")
}
