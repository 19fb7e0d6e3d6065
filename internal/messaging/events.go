package messaging

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/vespeyr/go-gamesave/internal/api"
	"github.com/vespeyr/go-gamesave/internal/session"
)

// Session event subjects. Other processes (tooling, a companion launcher)
// subscribe to these to follow the client's session state.
const (
	SubjectAuth      = "session.auth"
	SubjectWorld     = "session.world"
	SubjectCharacter = "session.character"
)

type sessionEvent struct {
	Event     string    `json:"event"`
	WorldKey  string    `json:"world_key,omitempty"`
	WorldName string    `json:"world_name,omitempty"`
	Character string    `json:"character_id,omitempty"`
	Name      string    `json:"character_name,omitempty"`
	Scope     string    `json:"scope,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// EventPublisher forwards session transitions onto the embedded NATS server.
// It implements all three session listener interfaces; publish failures are
// logged and never fed back into the session state machine.
type EventPublisher struct {
	server *NatsServer
}

func NewEventPublisher(server *NatsServer) *EventPublisher {
	return &EventPublisher{server: server}
}

func (p *EventPublisher) LoggedIn() {
	p.publish(SubjectAuth, sessionEvent{Event: "logged-in"})
}

func (p *EventPublisher) LoggedOut(scope session.LogoutScope) {
	p.publish(SubjectAuth, sessionEvent{Event: "logged-out", Scope: scope.String()})
}

func (p *EventPublisher) SessionExpired() {
	p.publish(SubjectAuth, sessionEvent{Event: "session-expired"})
}

func (p *EventPublisher) WorldChanged(worldKey, worldName string) {
	p.publish(SubjectWorld, sessionEvent{Event: "world-changed", WorldKey: worldKey, WorldName: worldName})
}

func (p *EventPublisher) CharacterChanged(characterID, characterName string) {
	p.publish(SubjectCharacter, sessionEvent{Event: "character-changed", Character: characterID, Name: characterName})
}

func (p *EventPublisher) CharacterCreated(ch *api.Character) {
	p.publish(SubjectCharacter, sessionEvent{Event: "character-created", Character: ch.CharacterID, Name: ch.CharacterName})
}

func (p *EventPublisher) CharacterCreationFailed(reason string) {
	p.publish(SubjectCharacter, sessionEvent{Event: "character-creation-failed", Reason: reason})
}

func (p *EventPublisher) publish(subject string, ev sessionEvent) {
	ev.At = time.Now().UTC()

	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("failed to encode session event", "subject", subject, "error", err)
		return
	}

	if err := p.server.Publish(subject, data); err != nil {
		slog.Warn("failed to publish session event", "subject", subject, "event", ev.Event, "error", err)
	}
}
