package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Inventory, quest and stat payloads are opaque serialized strings; the
// client moves them between the backend and the local store without
// interpreting them.

type inventoryResponse struct {
	UIData    string `json:"ui_data"`
	SceneData string `json:"scene_data"`
}

type questsResponse struct {
	ActiveQuests    string `json:"active_quests"`
	CompletedQuests string `json:"completed_quests"`
	FailedQuests    string `json:"failed_quests"`
}

type statsResponse struct {
	StatsJSON string `json:"stats_json"`
}

func (c *Client) SaveInventory(ctx context.Context, worldKey, key, scene, uiData, sceneData string) error {
	if err := requireKeys("save-inventory", worldKey, key); err != nil {
		return err
	}

	payload := map[string]string{
		"world_key":  worldKey,
		"key":        key,
		"scene":      scene,
		"ui_data":    uiData,
		"scene_data": sceneData,
	}
	_, err := c.do(ctx, "save-inventory", http.MethodPost, "/inventory", payload, true)
	return err
}

func (c *Client) LoadInventory(ctx context.Context, worldKey, key, scene string) (uiData, sceneData string, err error) {
	if err := requireKeys("load-inventory", worldKey, key); err != nil {
		return "", "", err
	}

	path := "/inventory/" + url.PathEscape(worldKey) + "/" + url.PathEscape(key) + "/" + url.PathEscape(scene)
	raw, err := c.do(ctx, "load-inventory", http.MethodGet, path, nil, true)
	if err != nil {
		return "", "", err
	}

	body := normalize(raw)
	if body == "" {
		return "", "", nil
	}

	var resp inventoryResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return "", "", &Error{Kind: KindParse, Op: "load-inventory", Err: fmt.Errorf("decoding inventory: %w", err)}
	}
	return resp.UIData, resp.SceneData, nil
}

func (c *Client) DeleteInventory(ctx context.Context, worldKey, key, scene string) error {
	if err := requireKeys("delete-inventory", worldKey, key); err != nil {
		return err
	}

	path := "/inventory/" + url.PathEscape(worldKey) + "/" + url.PathEscape(key) + "/" + url.PathEscape(scene)
	_, err := c.do(ctx, "delete-inventory", http.MethodDelete, path, nil, true)
	return err
}

func (c *Client) SaveQuests(ctx context.Context, worldKey, key, active, completed, failed string) error {
	if err := requireKeys("save-quests", worldKey, key); err != nil {
		return err
	}

	payload := map[string]string{
		"world_key":        worldKey,
		"key":              key,
		"active_quests":    active,
		"completed_quests": completed,
		"failed_quests":    failed,
	}
	_, err := c.do(ctx, "save-quests", http.MethodPost, "/quests", payload, true)
	return err
}

func (c *Client) LoadQuests(ctx context.Context, worldKey, key string) (active, completed, failed string, err error) {
	if err := requireKeys("load-quests", worldKey, key); err != nil {
		return "", "", "", err
	}

	path := "/quests/" + url.PathEscape(worldKey) + "/" + url.PathEscape(key)
	raw, err := c.do(ctx, "load-quests", http.MethodGet, path, nil, true)
	if err != nil {
		return "", "", "", err
	}

	body := normalize(raw)
	if body == "" {
		return "", "", "", nil
	}

	var resp questsResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return "", "", "", &Error{Kind: KindParse, Op: "load-quests", Err: fmt.Errorf("decoding quests: %w", err)}
	}
	return resp.ActiveQuests, resp.CompletedQuests, resp.FailedQuests, nil
}

func (c *Client) DeleteQuests(ctx context.Context, worldKey, key string) error {
	if err := requireKeys("delete-quests", worldKey, key); err != nil {
		return err
	}

	path := "/quests/" + url.PathEscape(worldKey) + "/" + url.PathEscape(key)
	_, err := c.do(ctx, "delete-quests", http.MethodDelete, path, nil, true)
	return err
}

func (c *Client) SaveStats(ctx context.Context, worldKey, key, statsJSON string) error {
	if err := requireKeys("save-stats", worldKey, key); err != nil {
		return err
	}

	payload := map[string]string{
		"world_key":  worldKey,
		"key":        key,
		"stats_json": statsJSON,
	}
	_, err := c.do(ctx, "save-stats", http.MethodPost, "/stats", payload, true)
	return err
}

func (c *Client) LoadStats(ctx context.Context, worldKey, key string) (string, error) {
	if err := requireKeys("load-stats", worldKey, key); err != nil {
		return "", err
	}

	path := "/stats/" + url.PathEscape(worldKey) + "/" + url.PathEscape(key)
	raw, err := c.do(ctx, "load-stats", http.MethodGet, path, nil, true)
	if err != nil {
		return "", err
	}

	body := normalize(raw)
	if body == "" {
		return "", nil
	}

	var resp statsResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return "", &Error{Kind: KindParse, Op: "load-stats", Err: fmt.Errorf("decoding stats: %w", err)}
	}
	return resp.StatsJSON, nil
}

func (c *Client) DeleteStats(ctx context.Context, worldKey, key string) error {
	if err := requireKeys("delete-stats", worldKey, key); err != nil {
		return err
	}

	path := "/stats/" + url.PathEscape(worldKey) + "/" + url.PathEscape(key)
	_, err := c.do(ctx, "delete-stats", http.MethodDelete, path, nil, true)
	return err
}

// SaveString stores a free-form string value, used for the saved-key
// registry lists.
func (c *Client) SaveString(ctx context.Context, key, value string) error {
	if key == "" {
		return &Error{Kind: KindConfig, Op: "save-string", Err: fmt.Errorf("key is empty")}
	}

	payload := map[string]string{"key": key, "value": value}
	_, err := c.do(ctx, "save-string", http.MethodPost, "/sync/string", payload, true)
	return err
}

// LoadString fetches a free-form string value, returning def when the server
// has nothing stored.
func (c *Client) LoadString(ctx context.Context, key, def string) (string, error) {
	if key == "" {
		return def, &Error{Kind: KindConfig, Op: "load-string", Err: fmt.Errorf("key is empty")}
	}

	raw, err := c.do(ctx, "load-string", http.MethodGet, "/sync/string/"+url.PathEscape(key), nil, true)
	if err != nil {
		return def, err
	}

	body := normalize(raw)
	if body == "" {
		return def, nil
	}
	return body, nil
}

func requireKeys(op, worldKey, key string) error {
	if worldKey == "" {
		return &Error{Kind: KindConfig, Op: op, Err: fmt.Errorf("world key is empty")}
	}
	if key == "" {
		return &Error{Kind: KindConfig, Op: op, Err: fmt.Errorf("character key is empty")}
	}
	return nil
}
