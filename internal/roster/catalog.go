package roster

import (
	"log/slog"
	"strings"

	"github.com/vespeyr/go-gamesave/internal/api"
)

// Catalog holds the class templates new characters are stamped from.
// Templates are matched by class key and gender; slice order breaks ties, so
// lookup is deterministic for a given template set.
type Catalog struct {
	templates []*api.Character
}

func NewCatalog(templates []*api.Character) *Catalog {
	return &Catalog{templates: templates}
}

// Templates returns the catalog contents in lookup order.
func (c *Catalog) Templates() []*api.Character {
	return c.templates
}

// Match finds the template for a class key and gender. The chain relaxes one
// constraint at a time: exact class match, case-insensitive, substring in
// either direction, then gender alone. A miss on every rung returns a blank
// template so creation can proceed with defaults.
func (c *Catalog) Match(classKey, gender string) *api.Character {
	if t := c.find(func(t *api.Character) bool {
		return t.ClassKey() == classKey && t.Gender == gender
	}); t != nil {
		return t
	}

	if t := c.find(func(t *api.Character) bool {
		return strings.EqualFold(t.ClassKey(), classKey) && t.Gender == gender
	}); t != nil {
		return t
	}

	lower := strings.ToLower(classKey)
	if lower != "" {
		if t := c.find(func(t *api.Character) bool {
			key := strings.ToLower(t.ClassKey())
			return (strings.Contains(key, lower) || strings.Contains(lower, key)) && t.Gender == gender
		}); t != nil {
			return t
		}
	}

	if t := c.find(func(t *api.Character) bool {
		return t.Gender == gender
	}); t != nil {
		return t
	}

	slog.Error("no character template matched", "class", classKey, "gender", gender)
	return &api.Character{Gender: gender}
}

func (c *Catalog) find(pred func(*api.Character) bool) *api.Character {
	for _, t := range c.templates {
		if pred(t) {
			return t
		}
	}
	return nil
}
