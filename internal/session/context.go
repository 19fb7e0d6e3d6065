package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/vespeyr/go-gamesave/internal/api"
	"github.com/vespeyr/go-gamesave/internal/prefs"
)

// State is the session lifecycle position. Transitions only move forward
// through explicit selection calls and back to LoggedOut through logout or
// expiry.
type State int

const (
	LoggedOut State = iota
	Authenticated
	WorldSelected
	CharacterSelected
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged-out"
	case Authenticated:
		return "authenticated"
	case WorldSelected:
		return "world-selected"
	case CharacterSelected:
		return "character-selected"
	default:
		return "unknown"
	}
}

// Prefs keys for the persisted slice of session state. These names are the
// save-file contract; changing them orphans existing installs.
const (
	keyToken         = "jwt_token"
	keyRefresh       = "jwt_refresh"
	keyWorldKey      = "CurrentWorldKey"
	keyWorldName     = "CurrentWorldName"
	keyWorldID       = "CurrentWorldId"
	keyCharacterID   = "CurrentCharacterID"
	keyCharacterName = "CurrentCharacterName"
	keyAccount       = "Account"
)

// DefaultRefreshWait bounds how long an auth-failure recovery waits for the
// token refresh round-trip before declaring the session expired.
const DefaultRefreshWait = 5 * time.Second

// Context tracks the current authentication, world and character selection.
// It is mutated only through the explicit transition methods below, never by
// persistence operations. Construct one and hand it to whoever needs it;
// there is no package-level instance.
type Context struct {
	store *prefs.Store

	authenticated bool
	worldKey      string
	worldName     string
	worldID       string
	characterID   string
	characterName string

	authListeners      []AuthListener
	worldListeners     []WorldListener
	characterListeners []CharacterListener
}

// NewContext builds a session context, resuming any state persisted from a
// previous run: a stored token counts as authenticated, and world/character
// selection carries over ("remember me").
func NewContext(store *prefs.Store) *Context {
	c := &Context{
		store:         store,
		authenticated: store.Get(keyToken) != "",
		worldKey:      store.Get(keyWorldKey),
		worldName:     store.Get(keyWorldName),
		worldID:       store.Get(keyWorldID),
		characterID:   store.Get(keyCharacterID),
		characterName: store.Get(keyCharacterName),
	}

	slog.Info("session context initialized",
		"authenticated", c.authenticated,
		"worldKey", c.worldKey,
		"characterId", c.characterID)

	return c
}

func (c *Context) AddAuthListener(l AuthListener)          { c.authListeners = append(c.authListeners, l) }
func (c *Context) AddWorldListener(l WorldListener)        { c.worldListeners = append(c.worldListeners, l) }
func (c *Context) AddCharacterListener(l CharacterListener) {
	c.characterListeners = append(c.characterListeners, l)
}

// Read-only accessors.

func (c *Context) IsAuthenticated() bool { return c.authenticated }
func (c *Context) WorldKey() string      { return c.worldKey }
func (c *Context) WorldName() string     { return c.worldName }
func (c *Context) WorldID() string       { return c.worldID }
func (c *Context) CharacterID() string   { return c.characterID }
func (c *Context) CharacterName() string { return c.characterName }

// Account returns the local account profile name the character-list blob is
// stored under.
func (c *Context) Account() string {
	return c.store.GetDefault(keyAccount, "Player")
}

// AccessToken implements api.TokenSource.
func (c *Context) AccessToken() string { return c.store.Get(keyToken) }

func (c *Context) RefreshTokenValue() string { return c.store.Get(keyRefresh) }

func (c *Context) State() State {
	switch {
	case !c.authenticated:
		return LoggedOut
	case c.characterID != "":
		return CharacterSelected
	case c.worldKey != "":
		return WorldSelected
	default:
		return Authenticated
	}
}

// LoginSucceeded records a successful authentication. World and character
// selection are deliberately not cleared so a returning player resumes where
// they left off.
func (c *Context) LoginSucceeded(accessToken, refreshToken string) {
	c.store.Set(keyToken, accessToken)
	if refreshToken != "" {
		c.store.Set(keyRefresh, refreshToken)
	}
	if err := c.store.Flush(); err != nil {
		slog.Error("failed to persist credential", "error", err)
	}

	c.authenticated = true
	slog.Info("session authenticated")

	for _, l := range c.authListeners {
		l.LoggedIn()
	}
}

// SessionExpired clears authentication only. A distinct notification fires
// so the UI can prompt for re-login rather than silently dropping out.
func (c *Context) SessionExpired() {
	c.authenticated = false
	slog.Warn("session expired, authentication lost")

	for _, l := range c.authListeners {
		l.SessionExpired()
	}
}

// Logout clears authentication and whatever context the scope names.
func (c *Context) Logout(scope LogoutScope) {
	c.authenticated = false

	switch scope {
	case LogoutToWorldSelect:
		c.ClearCharacterContext()
	case LogoutToLogin:
		c.ClearCharacterContext()
		c.ClearWorldContext()
		c.store.Delete(keyToken)
		c.store.Delete(keyRefresh)
	}

	if err := c.store.Flush(); err != nil {
		slog.Error("failed to persist logout", "error", err)
	}

	slog.Info("session logged out", "scope", scope)

	for _, l := range c.authListeners {
		l.LoggedOut(scope)
	}
}

// ClearCharacterContext drops the selected character without touching world
// or authentication state.
func (c *Context) ClearCharacterContext() {
	c.characterID = ""
	c.characterName = ""
	c.store.Delete(keyCharacterID)
	c.store.Delete(keyCharacterName)
}

// ClearWorldContext drops the selected world without touching authentication
// state.
func (c *Context) ClearWorldContext() {
	c.worldKey = ""
	c.worldName = ""
	c.worldID = ""
	c.store.Delete(keyWorldKey)
	c.store.Delete(keyWorldName)
	c.store.Delete(keyWorldID)
}

// SelectWorld records a world selection. Selecting the already-current world
// id is a no-op: no fields change and no notification fires, so rapid
// repeated UI clicks do not ripple downstream.
func (c *Context) SelectWorld(id, name string) {
	if id == "" {
		slog.Error("world selection with empty id ignored")
		return
	}
	if c.worldID == id {
		slog.Debug("world selection unchanged", "worldId", id)
		return
	}

	slog.Info("world selected", "worldId", id, "name", name)

	c.worldID = id
	c.worldName = name
	// The server id doubles as the save-addressing key.
	c.worldKey = id

	c.store.Set(keyWorldKey, c.worldKey)
	c.store.Set(keyWorldName, c.worldName)
	c.store.Set(keyWorldID, c.worldID)
	if err := c.store.Flush(); err != nil {
		slog.Error("failed to persist world selection", "error", err)
	}

	for _, l := range c.worldListeners {
		l.WorldChanged(c.worldKey, c.worldName)
	}
}

// JoinWorld handles joining a world by display name. Without a current world
// the name serves as both id and name; with one, only a changed display name
// is updated, re-announcing the selection under the same key.
func (c *Context) JoinWorld(name string) {
	if c.worldID == "" {
		c.SelectWorld(name, name)
		return
	}
	if c.worldName == name {
		return
	}

	slog.Info("updating world name", "from", c.worldName, "to", name)
	c.worldName = name
	c.store.Set(keyWorldName, name)
	if err := c.store.Flush(); err != nil {
		slog.Error("failed to persist world name", "error", err)
	}

	for _, l := range c.worldListeners {
		l.WorldChanged(c.worldKey, c.worldName)
	}
}

// SelectCharacter records a character selection. The id falls back to the
// name when the server record carries no id, and the display name falls back
// to the id when empty. Selection requires a selected world first.
func (c *Context) SelectCharacter(id, name string) {
	if id == "" {
		if name == "" {
			slog.Error("character selection with no id or name ignored")
			return
		}
		slog.Warn("character has no id, using name", "name", name)
		id = name
	}
	if name == "" {
		slog.Warn("character name empty, using id as display name", "characterId", id)
		name = id
	}
	if c.worldKey == "" {
		slog.Error("character selected before world, ignoring", "characterId", id)
		return
	}

	c.characterID = id
	c.characterName = name

	c.store.Set(keyCharacterID, id)
	c.store.Set(keyCharacterName, name)
	if err := c.store.Flush(); err != nil {
		slog.Error("failed to persist character selection", "error", err)
	}

	slog.Info("character selected", "characterId", id, "name", name)

	for _, l := range c.characterListeners {
		l.CharacterChanged(id, name)
	}
}

// TokenRefresher exchanges a refresh token for new credentials.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*api.AuthResponse, error)
}

// RecoverAuth attempts a bounded-time token refresh after an auth failure.
// On success the new credential is stored and the session stays live; on
// timeout or failure the session transitions to expired. Returns whether
// recovery succeeded.
func (c *Context) RecoverAuth(ctx context.Context, r TokenRefresher, wait time.Duration) bool {
	refresh := c.RefreshTokenValue()
	if refresh == "" {
		slog.Warn("no refresh token available, session expired")
		c.SessionExpired()
		return false
	}

	if wait <= 0 {
		wait = DefaultRefreshWait
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	resp, err := r.Refresh(ctx, refresh)
	if err != nil {
		slog.Warn("token refresh failed", "error", err)
		c.SessionExpired()
		return false
	}

	access, newRefresh := resp.Tokens()
	if access == "" {
		slog.Warn("token refresh returned no access token")
		c.SessionExpired()
		return false
	}

	c.store.Set(keyToken, access)
	if newRefresh != "" {
		c.store.Set(keyRefresh, newRefresh)
	}
	if err := c.store.Flush(); err != nil {
		slog.Error("failed to persist refreshed credential", "error", err)
	}

	c.authenticated = true
	slog.Info("session credential refreshed")
	return true
}
