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
	c.normalizeStremio()
	c.normalizePlayback()
	c.normalizeMetadata()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStremio() {
	c.Stremio.APIURL = strings.TrimRight(strings.TrimSpace(c.Stremio.APIURL), "/")
	if c.Stremio.APIURL == "" {
		c.Stremio.APIURL = defaultAPIURL
	}
	if c.Stremio.AuthKey == "" {
		if value, ok := os.LookupEnv("STREMIO_AUTHKEY"); ok {
			c.Stremio.AuthKey = strings.TrimSpace(value)
		}
	}
	if c.Stremio.RequestTimeout <= 0 {
		c.Stremio.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizePlayback() {
	if c.Playback.WatchedThreshold <= 0 {
		c.Playback.WatchedThreshold = defaultWatchedThreshold
	}
	if c.Playback.CreditsThreshold <= 0 {
		c.Playback.CreditsThreshold = defaultCreditsThreshold
	}
}

func (c *Config) normalizeMetadata() {
	if c.Metadata.CacheTTLHours <= 0 {
		c.Metadata.CacheTTLHours = defaultCacheTTLHours
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
