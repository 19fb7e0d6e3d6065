package driver

import (
	"context"
	"time"
)

const (
	DefaultTickLength = time.Second
)

type Manager interface {
	Tick(context.Context) error
}

// SyncDriver ticks a set of managers on a fixed cadence. The persistence
// coordinator runs its deferred work (initial load retries, throttled saves)
// from these ticks.
type SyncDriver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewSyncDriver(managers []Manager, opts ...SyncDriverOpt) *SyncDriver {
	d := &SyncDriver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *SyncDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *SyncDriver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
