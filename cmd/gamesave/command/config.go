package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/vespeyr/go-gamesave/internal/bridge"
)

type Config struct {
	Provider     string          `json:"provider"`
	TickInterval string          `json:"tick_interval"`
	Prefs        PrefsConfig     `json:"prefs"`
	Api          ApiConfig       `json:"api"`
	Nats         NatsConfig      `json:"nats"`
	Sync         SyncConfig      `json:"sync"`
	Templates    TemplatesConfig `json:"templates"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.Provider != "" {
		var p bridge.Provider
		if err := p.UnmarshalText([]byte(c.Provider)); err != nil {
			el.Add(err)
		}
	}

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < 100*time.Millisecond {
			el.Add(fmt.Errorf("tick_interval must be at least 100ms"))
		}
	}

	el.Add(c.Prefs.validate())
	el.Add(c.Api.validate(c.provider().UsesRemote()))
	el.Add(c.Nats.validate())
	el.Add(c.Sync.validate())
	el.Add(c.Templates.validate())

	return el.Err()
}

// provider returns the configured provider selection. An empty or invalid
// value falls back to both stores, mirroring the save path the game ships
// with.
func (c *Config) provider() bridge.Provider {
	p := bridge.ProviderBoth
	if c.Provider != "" {
		var parsed bridge.Provider
		if err := parsed.UnmarshalText([]byte(c.Provider)); err == nil {
			p = parsed
		}
	}
	return p
}
