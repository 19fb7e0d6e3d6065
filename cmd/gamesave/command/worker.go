package command

import (
	"context"
	"fmt"
	"time"

	"github.com/pixil98/go-service"
	"github.com/vespeyr/go-gamesave/internal/bridge"
	"github.com/vespeyr/go-gamesave/internal/coordinator"
	"github.com/vespeyr/go-gamesave/internal/driver"
	"github.com/vespeyr/go-gamesave/internal/messaging"
	"github.com/vespeyr/go-gamesave/internal/roster"
	"github.com/vespeyr/go-gamesave/internal/session"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	store, err := cfg.Prefs.buildStore()
	if err != nil {
		return nil, fmt.Errorf("opening preference store: %w", err)
	}

	sess := session.NewContext(store)

	client, err := cfg.Api.buildClient(sess)
	if err != nil {
		return nil, fmt.Errorf("creating api client: %w", err)
	}

	provider := bridge.Fixed(cfg.provider())
	b := bridge.New(store, client, sess, provider)

	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Session transitions fan out to NATS for other client-side processes.
	publisher := messaging.NewEventPublisher(natsServer)
	sess.AddAuthListener(publisher)
	sess.AddWorldListener(publisher)
	sess.AddCharacterListener(publisher)

	catalog, err := cfg.Templates.buildCatalog()
	if err != nil {
		return nil, fmt.Errorf("loading character templates: %w", err)
	}
	characters := roster.New(client, b, sess, catalog, provider)
	characters.AddCreationListener(publisher)

	systems := coordinator.NewStoreSystems(store, sess)
	syncOpts, err := cfg.Sync.buildOpts()
	if err != nil {
		return nil, fmt.Errorf("configuring coordinator: %w", err)
	}
	syncOpts = append(syncOpts, coordinator.WithAuthRecovery(func(ctx context.Context) bool {
		return sess.RecoverAuth(ctx, client, session.DefaultRefreshWait)
	}))
	coord := coordinator.New(b, store, sess, systems, systems, systems, syncOpts...)

	var driverOpts []driver.SyncDriverOpt
	if cfg.TickInterval != "" {
		d, err := time.ParseDuration(cfg.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing tick_interval: %w", err)
		}
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	syncDriver := driver.NewSyncDriver([]driver.Manager{coord}, driverOpts...)

	trigger := messaging.NewSaveTrigger(natsServer, coord)

	return service.WorkerList{
		"nats":    natsServer,
		"driver":  syncDriver,
		"trigger": trigger,
	}, nil
}
