package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vespeyr/go-gamesave/internal/api"
	"github.com/vespeyr/go-gamesave/internal/bridge"
	"github.com/vespeyr/go-gamesave/internal/session"
)

// CreationListener is notified of the outcome of a character creation
// attempt. Exactly one of the two methods fires per attempt.
type CreationListener interface {
	CharacterCreated(ch *api.Character)
	CharacterCreationFailed(reason string)
}

// CharacterAPI is the slice of the backend client the roster drives.
// *api.Client satisfies it.
type CharacterAPI interface {
	Characters(ctx context.Context, worldKey string) ([]*api.Character, error)
	SaveCharacter(ctx context.Context, worldKey string, ch *api.Character) (string, error)
}

// Roster manages the account's character list for the selected world:
// listing, creation from catalog templates, selection, and deletion.
type Roster struct {
	remote    CharacterAPI
	bridge    *bridge.Bridge
	session   *session.Context
	catalog   *Catalog
	provider  bridge.ProviderFunc
	listeners []CreationListener
}

func New(remote CharacterAPI, b *bridge.Bridge, sess *session.Context, catalog *Catalog, provider bridge.ProviderFunc) *Roster {
	return &Roster{
		remote:   remote,
		bridge:   b,
		session:  sess,
		catalog:  catalog,
		provider: provider,
	}
}

func (r *Roster) AddCreationListener(l CreationListener) {
	r.listeners = append(r.listeners, l)
}

// Characters returns the character list for the selected world. When the
// provider has a remote side the backend is asked first; the local blob is
// the fallback.
func (r *Roster) Characters(ctx context.Context) ([]*api.Character, error) {
	world := r.session.WorldKey()
	if world == "" {
		return nil, fmt.Errorf("no world selected")
	}

	provider := r.provider()
	if provider.UsesRemote() {
		chars, err := r.remote.Characters(ctx, world)
		if err == nil {
			return chars, nil
		}
		if provider == bridge.ProviderRemote {
			return nil, err
		}
		slog.Warn("remote character list failed, falling back to local", "error", err)
	}

	return r.localList()
}

func (r *Roster) localList() ([]*api.Character, error) {
	blob := r.bridge.LoadCharacterList()
	if blob == "" {
		return nil, nil
	}

	var chars []*api.Character
	if err := json.Unmarshal([]byte(blob), &chars); err != nil {
		return nil, fmt.Errorf("decoding local character list: %w", err)
	}
	return chars, nil
}

// NewCharacter stamps a character from the best-matching catalog template.
// The template is copied, never mutated.
func (r *Roster) NewCharacter(classKey, name, gender string) *api.Character {
	template := r.catalog.Match(classKey, gender)

	ch := *template
	ch.CharacterID = ""
	ch.CharacterName = name
	ch.Gender = gender
	if ch.Level <= 0 {
		ch.Level = 1
	}
	if template.Properties != nil {
		ch.Properties = make(map[string]string, len(template.Properties))
		for k, v := range template.Properties {
			ch.Properties[k] = v
		}
	}
	return &ch
}

// Create commits a new character. The remote save must succeed and return an
// identifier before the character is added to the local list; a failed
// remote save leaves no local trace. Every attempt notifies creation
// listeners exactly once, and a successful creation selects the character.
func (r *Roster) Create(ctx context.Context, ch *api.Character) error {
	if ch.CharacterName == "" {
		return r.fail("character name is empty")
	}

	existing, err := r.Characters(ctx)
	if err != nil {
		slog.Warn("could not list characters before creation", "error", err)
	}
	for _, e := range existing {
		if e.CharacterName == ch.CharacterName {
			return r.fail(fmt.Sprintf("character %q already exists", ch.CharacterName))
		}
	}

	provider := r.provider()
	if provider.UsesRemote() {
		id, err := r.remote.SaveCharacter(ctx, r.session.WorldKey(), ch)
		if err != nil {
			if api.IsKind(err, api.KindDuplicate) {
				return r.fail(fmt.Sprintf("character %q already exists", ch.CharacterName))
			}
			return r.fail(err.Error())
		}
		if id == "" {
			return r.fail("server accepted the character but returned no identifier")
		}
		ch.CharacterID = id
	} else {
		ch.CharacterID = uuid.NewString()
	}

	if provider.UsesLocal() {
		if err := r.appendLocal(ch); err != nil {
			return r.fail(err.Error())
		}
	}

	slog.Info("character created", "name", ch.CharacterName, "id", ch.CharacterID, "class", ch.ClassKey())
	for _, l := range r.listeners {
		l.CharacterCreated(ch)
	}

	r.Select(ch)
	return nil
}

func (r *Roster) fail(reason string) error {
	slog.Error("character creation failed", "reason", reason)
	for _, l := range r.listeners {
		l.CharacterCreationFailed(reason)
	}
	return fmt.Errorf("character creation failed: %s", reason)
}

func (r *Roster) appendLocal(ch *api.Character) error {
	chars, err := r.localList()
	if err != nil {
		return err
	}
	chars = append(chars, ch)

	blob, err := json.Marshal(chars)
	if err != nil {
		return fmt.Errorf("encoding local character list: %w", err)
	}
	r.bridge.SaveCharacterList(string(blob))
	return nil
}

// Select makes ch the active character in the session context.
func (r *Roster) Select(ch *api.Character) {
	r.session.SelectCharacter(ch.CharacterID, ch.CharacterName)
}

// Delete removes ch from the local list and cascades the deletion through
// the persistence bridge. Per-character data is keyed by the character's
// identifier, with the name standing in when no server id was ever
// assigned, the same rule selection uses.
func (r *Roster) Delete(ctx context.Context, ch *api.Character) error {
	if r.provider().UsesLocal() {
		chars, err := r.localList()
		if err != nil {
			return err
		}

		kept := chars[:0]
		for _, e := range chars {
			if e.CharacterID == ch.CharacterID || (ch.CharacterID == "" && e.CharacterName == ch.CharacterName) {
				continue
			}
			kept = append(kept, e)
		}

		blob, err := json.Marshal(kept)
		if err != nil {
			return fmt.Errorf("encoding local character list: %w", err)
		}
		r.bridge.SaveCharacterList(string(blob))
	}

	key := ch.CharacterID
	if key == "" {
		key = ch.CharacterName
	}
	return r.bridge.DeleteCharacter(ctx, key)
}
