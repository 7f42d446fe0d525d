package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stremsync/internal/bitfield"
	"stremsync/internal/config"
	"stremsync/internal/datastore"
	"stremsync/internal/library"
	"stremsync/internal/logging"
	"stremsync/internal/meta"
	"stremsync/internal/metacache"
	"stremsync/internal/stremio"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// session bundles the services a command needs once configuration is
// resolved: the datastore cache in front of the API client, and the
// metadata fetcher with its sqlite cache.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	cache   *datastore.Cache
	fetcher *meta.Fetcher
}

// withSession wires the services against the resolved configuration
// and hands them to fn. The metadata cache is optional: when it cannot
// open, the fetcher simply runs uncached.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(context.Context, *session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}

	client := stremio.New(cfg.Stremio.APIURL, cfg.Stremio.AuthKey,
		stremio.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		stremio.WithLogger(logger),
	)

	store, err := metacache.Open(cfg.MetacachePath(), logger)
	if err != nil {
		logger.Warn("metadata cache unavailable", logging.Error(err))
		store = nil
	}
	defer store.Close()

	fetcherOpts := []meta.Option{meta.WithLogger(logger)}
	if store != nil {
		fetcherOpts = append(fetcherOpts, meta.WithCache(store, cfg.MetadataTTL()))
	}

	s := &session{
		cfg:     cfg,
		logger:  logger,
		cache:   datastore.New(cfg.DatastorePath(), client, logger),
		fetcher: meta.NewFetcher(client, fetcherOpts...),
	}
	return fn(cmd.Context(), s)
}

// load primes the datastore cache from disk and the remote before a
// command reads or mutates it.
func (s *session) load(ctx context.Context) error {
	if err := s.cache.Load(ctx); err != nil {
		return s.authHint(err)
	}
	return nil
}

// push persists the item locally and uploads it. A failed upload after
// a durable local write still surfaces, phrased so the user knows the
// change is not lost.
func (s *session) push(ctx context.Context, item *library.Item) error {
	err := s.cache.Push(ctx, item)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, stremio.ErrTransport):
		return s.authHint(fmt.Errorf("change saved locally, upload failed: %w", err))
	default:
		return err
	}
}

// authHint upgrades a transport failure into actionable advice when no
// credentials are configured, which is the usual cause.
func (s *session) authHint(err error) error {
	if errors.Is(err, stremio.ErrTransport) && s.cfg.Stremio.AuthKey == "" {
		return fmt.Errorf("%w (no authkey configured; set stremio.authkey or export STREMIO_AUTHKEY)", err)
	}
	return err
}

func (s *session) thresholds() library.Thresholds {
	return library.Thresholds{
		Watched: s.cfg.Playback.WatchedThreshold,
		Credits: s.cfg.Playback.CreditsThreshold,
	}
}

// attachVideos materializes the item's watched bitfield from fetched
// metadata. Serialized history that no longer parses is dropped and
// rebuilt empty rather than blocking the edit.
func attachVideos(item *library.Item, m *meta.Meta, logger *slog.Logger) error {
	if m == nil {
		return fmt.Errorf("no metadata for %s: video-level state needs the episode list", item.ID)
	}
	ids := m.VideoIDs()
	err := item.State.AttachVideoIDs(ids)
	if errors.Is(err, bitfield.ErrFormat) {
		logger.Warn("dropping malformed watched history",
			logging.String("item", item.ID), logging.Error(err))
		item.State.Watched = ""
		err = item.State.AttachVideoIDs(ids)
	}
	return err
}
