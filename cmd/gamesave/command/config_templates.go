package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/vespeyr/go-gamesave/internal/roster"
	"github.com/vespeyr/go-gamesave/internal/storage"
)

// TemplatesConfig points at the directory of class template assets new
// characters are created from. No path means an empty catalog; creation
// then falls back to blank templates.
type TemplatesConfig struct {
	Path string `json:"path"`
}

func (c *TemplatesConfig) validate() error {
	el := errors.NewErrorList()

	if c.Path != "" {
		if _, err := os.Stat(c.Path); err != nil {
			el.Add(fmt.Errorf("templates: invalid path %q: %w", c.Path, err))
		}
	}

	return el.Err()
}

func (c *TemplatesConfig) buildCatalog() (*roster.Catalog, error) {
	if c.Path == "" {
		return roster.NewCatalog(nil), nil
	}

	store, err := storage.NewFileStore[*roster.Template](c.Path)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return roster.CatalogFromStore(store), nil
}
