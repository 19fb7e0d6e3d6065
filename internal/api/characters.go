package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Character is the server-facing character record: a flat set of fields
// created per request and owned by the caller.
type Character struct {
	CharacterID   string `json:"CharacterId,omitempty"`
	CharacterName string `json:"CharacterName"`
	// Name carries the class/profession name; historical field naming kept
	// for wire compatibility.
	Name       string            `json:"Name"`
	Class      string            `json:"Class,omitempty"`
	PrefabName string            `json:"PrefabName,omitempty"`
	Gender     string            `json:"Gender"`
	Faction    string            `json:"Faction,omitempty"`
	Level      int               `json:"Level"`
	Experience int               `json:"Experience"`
	Properties map[string]string `json:"CustomProperties,omitempty"`
}

// ClassKey returns the key used for template lookup: the class name with the
// same precedence the server writes it under.
func (c *Character) ClassKey() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Class != "":
		return c.Class
	case c.PrefabName != "":
		return c.PrefabName
	default:
		return "Unknown"
	}
}

type saveCharacterResponse struct {
	CharacterID string `json:"characterId"`
	Message     string `json:"message"`
}

// Characters lists the account's characters in the given world.
func (c *Client) Characters(ctx context.Context, worldKey string) ([]*Character, error) {
	if worldKey == "" {
		return nil, &Error{Kind: KindConfig, Op: "characters", Err: fmt.Errorf("world key is empty")}
	}

	raw, err := c.do(ctx, "characters", http.MethodGet, "/characters/"+url.PathEscape(worldKey), nil, true)
	if err != nil {
		return nil, err
	}

	body := normalize(raw)
	if body == "" || body == "[]" {
		return nil, nil
	}

	var chars []*Character
	if err := json.Unmarshal([]byte(body), &chars); err != nil {
		return nil, &Error{Kind: KindParse, Op: "characters", Err: fmt.Errorf("decoding character list: %w", err)}
	}
	return chars, nil
}

// SaveCharacter creates or updates a character and returns the
// server-generated identifier. The record travels as a JSON-encoded string
// inside the envelope, which is what the backend expects.
func (c *Client) SaveCharacter(ctx context.Context, worldKey string, ch *Character) (string, error) {
	if worldKey == "" {
		return "", &Error{Kind: KindConfig, Op: "save-character", Err: fmt.Errorf("world key is empty")}
	}
	if ch == nil {
		return "", &Error{Kind: KindConfig, Op: "save-character", Err: fmt.Errorf("character is nil")}
	}

	data, err := json.Marshal(ch)
	if err != nil {
		return "", &Error{Kind: KindParse, Op: "save-character", Err: fmt.Errorf("encoding character: %w", err)}
	}

	payload := map[string]string{
		"world_key":      worldKey,
		"character_data": string(data),
	}

	raw, err := c.do(ctx, "save-character", http.MethodPost, "/characters", payload, true)
	if err != nil {
		return "", err
	}

	var resp saveCharacterResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &Error{Kind: KindParse, Op: "save-character", Err: fmt.Errorf("decoding save response: %w", err)}
	}
	return resp.CharacterID, nil
}

// DeleteCharacter removes a character from the world.
func (c *Client) DeleteCharacter(ctx context.Context, worldKey, characterID string) error {
	if worldKey == "" || characterID == "" {
		return &Error{Kind: KindConfig, Op: "delete-character", Err: fmt.Errorf("world key and character id are required")}
	}

	path := "/characters/" + url.PathEscape(worldKey) + "/" + url.PathEscape(characterID)
	_, err := c.do(ctx, "delete-character", http.MethodDelete, path, nil, true)
	return err
}
