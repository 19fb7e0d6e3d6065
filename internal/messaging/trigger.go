package messaging

import (
	"context"
	"log/slog"
)

// Save request subjects. The game process publishes an empty message to ask
// the agent for a save cycle.
const (
	SubjectSaveScene = "sync.save.scene"
	SubjectSaveQuit  = "sync.save.quit"
)

// Saver is the coordinator surface the trigger drives.
type Saver interface {
	NotifySceneChanged(ctx context.Context) error
	NotifyQuit(ctx context.Context) error
}

// SaveTrigger subscribes to the save request subjects and forwards them to
// the coordinator. It runs as a worker so subscriptions are only created
// after the NATS server is up.
type SaveTrigger struct {
	server *NatsServer
	saver  Saver
}

func NewSaveTrigger(server *NatsServer, saver Saver) *SaveTrigger {
	return &SaveTrigger{server: server, saver: saver}
}

func (t *SaveTrigger) Start(ctx context.Context) error {
	// The server worker starts concurrently; wait for its connection.
	if !t.server.WaitReady(ctx) {
		return nil
	}

	unsubScene, err := t.server.Subscribe(SubjectSaveScene, func([]byte) {
		if err := t.saver.NotifySceneChanged(ctx); err != nil {
			slog.Error("scene-change save failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	defer unsubScene()

	unsubQuit, err := t.server.Subscribe(SubjectSaveQuit, func([]byte) {
		if err := t.saver.NotifyQuit(ctx); err != nil {
			slog.Error("quit save failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	defer unsubQuit()

	<-ctx.Done()
	return nil
}
