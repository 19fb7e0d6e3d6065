package command

import (
	"fmt"
	"net/url"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/vespeyr/go-gamesave/internal/api"
)

type ApiConfig struct {
	BaseUrl string `json:"base_url"`
	Timeout string `json:"timeout"`
}

func (c *ApiConfig) validate(remoteInUse bool) error {
	el := errors.NewErrorList()

	if c.BaseUrl == "" {
		if remoteInUse {
			el.Add(fmt.Errorf("api: base_url is required when the provider uses the backend"))
		}
	} else if _, err := url.Parse(c.BaseUrl); err != nil {
		el.Add(fmt.Errorf("api: invalid base_url: %w", err))
	}

	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			el.Add(fmt.Errorf("api: parsing timeout: %w", err))
		}
	}

	return el.Err()
}

func (c *ApiConfig) buildClient(tokens api.TokenSource) (*api.Client, error) {
	var opts []api.ClientOpt
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parsing timeout: %w", err)
		}
		opts = append(opts, api.WithTimeout(d))
	}

	return api.NewClient(c.BaseUrl, tokens, opts...), nil
}
