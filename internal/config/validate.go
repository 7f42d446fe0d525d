package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStremio(); err != nil {
		return err
	}
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStremio() error {
	parsed, err := url.Parse(c.Stremio.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("stremio.api_url %q is not an absolute URL", c.Stremio.APIURL)
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.WatchedThreshold > 1 {
		return errors.New("playback.watched_threshold must be between 0 and 1")
	}
	if c.Playback.CreditsThreshold > 1 {
		return errors.New("playback.credits_threshold must be between 0 and 1")
	}
	if c.Playback.WatchedThreshold > c.Playback.CreditsThreshold {
		return errors.New("playback.watched_threshold must not exceed playback.credits_threshold")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
