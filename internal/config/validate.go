package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateCategories()
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendJSON, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendJSON, BackendSQLite, c.Store.Backend)
	}
}

func (c *Config) validateOrganize() error {
	switch c.Organize.OnConflict {
	case ConflictOverwrite, ConflictFail:
		return nil
	default:
		return fmt.Errorf("organize.on_conflict must be %q or %q, got %q", ConflictOverwrite, ConflictFail, c.Organize.OnConflict)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func (c *Config) validateCategories() error {
	seen := make(map[string]struct{}, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("categories[%d].name must be set", i)
		}
		if cat.Name == "." || cat.Name == ".." || strings.ContainsAny(cat.Name, `/\`) {
			return fmt.Errorf("categories[%d].name %q is not a valid folder name", i, cat.Name)
		}
		key := strings.ToLower(cat.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("categories[%d].name %q is duplicated", i, cat.Name)
		}
		seen[key] = struct{}{}
		if len(cat.Extensions) == 0 {
			return fmt.Errorf("categories[%d] (%s) must list at least one extension", i, cat.Name)
		}
	}
	if len(c.Categories) > 0 {
		if _, reserved := seen[strings.ToLower(fallbackCategory)]; reserved {
			return errors.New("categories: \"Others\" is reserved for unmatched files")
		}
	}
	return nil
}

// fallbackCategory mirrors category.Fallback without importing it.
const fallbackCategory = "Others"
