package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixil98/go-errors"
	"github.com/vespeyr/go-gamesave/internal/prefs"
)

type PrefsConfig struct {
	Path string `json:"path"`
}

func (c *PrefsConfig) validate() error {
	el := errors.NewErrorList()

	if c.Path == "" {
		el.Add(fmt.Errorf("prefs: path is required"))
		return el.Err()
	}

	dir := filepath.Dir(c.Path)
	if _, err := os.Stat(dir); err != nil {
		el.Add(fmt.Errorf("prefs: invalid directory %q: %w", dir, err))
	}

	return el.Err()
}

func (c *PrefsConfig) buildStore() (*prefs.Store, error) {
	return prefs.NewStore(c.Path)
}
