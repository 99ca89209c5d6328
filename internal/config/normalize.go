package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStore()
	c.normalizeOrganize()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizeCategories()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(logsDirEnvOverride); ok && strings.TrimSpace(value) != "" {
		c.Paths.LogsDir = value
	}
	c.Paths.LogsDir = strings.TrimSpace(c.Paths.LogsDir)
	if c.Paths.LogsDir == "" {
		c.Paths.LogsDir = defaultLogsDir
	}
	var err error
	if c.Paths.LogsDir, err = expandPath(c.Paths.LogsDir); err != nil {
		return fmt.Errorf("paths.logs_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultBackend
	}
}

func (c *Config) normalizeOrganize() {
	c.Organize.OnConflict = strings.ToLower(strings.TrimSpace(c.Organize.OnConflict))
	if c.Organize.OnConflict == "" {
		c.Organize.OnConflict = defaultOnConflict
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeCategories() {
	for i := range c.Categories {
		c.Categories[i].Name = strings.TrimSpace(c.Categories[i].Name)
		exts := c.Categories[i].Extensions[:0]
		for _, ext := range c.Categories[i].Extensions {
			if ext = strings.TrimSpace(ext); ext != "" {
				exts = append(exts, ext)
			}
		}
		c.Categories[i].Extensions = exts
	}
}
