package session

// LogoutScope selects how much context an explicit logout clears.
type LogoutScope int

const (
	// LogoutToWorldSelect drops authentication and the selected character,
	// keeping the world so the player can pick a character again after
	// logging back in.
	LogoutToWorldSelect LogoutScope = iota
	// LogoutToLogin drops authentication, character, world and the stored
	// credential.
	LogoutToLogin
)

func (s LogoutScope) String() string {
	switch s {
	case LogoutToWorldSelect:
		return "world-select"
	case LogoutToLogin:
		return "login"
	default:
		return "unknown"
	}
}

// AuthListener receives authentication transitions. SessionExpired is
// distinct from LoggedOut so the UI can show a "please log in again"
// message instead of a silent logout.
type AuthListener interface {
	LoggedIn()
	LoggedOut(scope LogoutScope)
	SessionExpired()
}

// WorldListener receives world-selection changes. It is not called when the
// same world is selected twice in a row.
type WorldListener interface {
	WorldChanged(worldKey, worldName string)
}

// CharacterListener receives character-selection changes.
type CharacterListener interface {
	CharacterChanged(characterID, characterName string)
}
