package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/vespeyr/go-gamesave/internal/coordinator"
)

type SyncConfig struct {
	InitialDelay string `json:"initial_delay"`
	MaxRetries   int    `json:"max_retries"`
	SaveThrottle string `json:"save_throttle"`
}

func (c *SyncConfig) validate() error {
	el := errors.NewErrorList()

	if c.InitialDelay != "" {
		if _, err := time.ParseDuration(c.InitialDelay); err != nil {
			el.Add(fmt.Errorf("sync: parsing initial_delay: %w", err))
		}
	}
	if c.SaveThrottle != "" {
		if _, err := time.ParseDuration(c.SaveThrottle); err != nil {
			el.Add(fmt.Errorf("sync: parsing save_throttle: %w", err))
		}
	}
	if c.MaxRetries < 0 {
		el.Add(fmt.Errorf("sync: max_retries cannot be negative"))
	}

	return el.Err()
}

func (c *SyncConfig) buildOpts() ([]coordinator.Opt, error) {
	var opts []coordinator.Opt

	if c.InitialDelay != "" {
		d, err := time.ParseDuration(c.InitialDelay)
		if err != nil {
			return nil, fmt.Errorf("parsing initial_delay: %w", err)
		}
		opts = append(opts, coordinator.WithInitialDelay(d))
	}
	if c.SaveThrottle != "" {
		d, err := time.ParseDuration(c.SaveThrottle)
		if err != nil {
			return nil, fmt.Errorf("parsing save_throttle: %w", err)
		}
		opts = append(opts, coordinator.WithSaveThrottle(d))
	}
	if c.MaxRetries > 0 {
		opts = append(opts, coordinator.WithMaxRetries(c.MaxRetries))
	}

	return opts, nil
}
