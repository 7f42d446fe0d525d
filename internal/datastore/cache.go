package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"stremsync/internal/library"
	"stremsync/internal/logging"
	"stremsync/internal/stremio"
)

// ErrPersistence marks failures writing the local mirror file.
var ErrPersistence = errors.New("datastore persistence failure")

const lockRetryDelay = 50 * time.Millisecond

// Remote is the slice of the Stremio client the cache reconciles
// against.
type Remote interface {
	DatastoreMeta(ctx context.Context, collection string) ([]stremio.MetaRef, error)
	DatastoreGet(ctx context.Context, collection string, ids []string) ([]*library.Item, error)
	DatastorePut(ctx context.Context, collection string, changes []*library.Item) error
}

// Cache mirrors the libraryItem collection. All exported methods are
// safe for concurrent use.
type Cache struct {
	path   string
	remote Remote
	logger *slog.Logger
	lock   *flock.Flock

	mu    sync.RWMutex
	items map[string]*library.Item
}

// New builds a cache persisting to path. The write lock lives next to
// the file so concurrent stremsync processes serialize their writes.
func New(path string, remote Remote, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{
		path:   path,
		remote: remote,
		logger: logging.NewComponentLogger(logger, "datastore"),
		lock:   flock.New(path + ".lock"),
		items:  make(map[string]*library.Item),
	}
}

// Load primes the cache: from the local file when one is readable,
// followed by a delta sync; otherwise from a full remote snapshot. A
// snapshot failure leaves an empty but usable cache and returns the
// transport error.
func (c *Cache) Load(ctx context.Context) error {
	items, err := c.readFile()
	switch {
	case err == nil:
		c.replaceAll(items)
		c.logger.Debug("loaded local datastore", logging.Int("items", len(items)), logging.String("path", c.path))
		if _, err := c.Sync(ctx); err != nil {
			return err
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		c.logger.Debug("no local datastore, fetching snapshot", logging.String("path", c.path))
	default:
		c.logger.Warn("unreadable local datastore, fetching snapshot", logging.String("path", c.path), logging.Error(err))
	}

	snapshot, err := c.remote.DatastoreGet(ctx, stremio.CollectionLibraryItem, nil)
	if err != nil {
		return err
	}
	c.replaceAll(snapshot)
	return c.persist(ctx)
}

// Sync reconciles the mirror against the remote (id, mtime) listing
// and returns how many items were refreshed. Only items that are
// missing locally or carry an older mtime are fetched; when nothing is
// stale, neither the network nor the file is touched again. Transport
// failures are logged and swallowed so callers keep serving the last
// known good state.
func (c *Cache) Sync(ctx context.Context) (int, error) {
	refs, err := c.remote.DatastoreMeta(ctx, stremio.CollectionLibraryItem)
	if err != nil {
		c.logger.Warn("datastore listing failed, serving local state", logging.Error(err))
		return 0, nil
	}

	c.mu.RLock()
	var stale []string
	for _, ref := range refs {
		local, ok := c.items[ref.ID]
		if !ok || local.MTime.Before(ref.Time()) {
			stale = append(stale, ref.ID)
		}
	}
	c.mu.RUnlock()
	if len(stale) == 0 {
		return 0, nil
	}

	fetched, err := c.remote.DatastoreGet(ctx, stremio.CollectionLibraryItem, stale)
	if err != nil {
		c.logger.Warn("stale item fetch failed, serving local state",
			logging.Int("stale", len(stale)), logging.Error(err))
		return 0, nil
	}

	c.mu.Lock()
	for _, item := range fetched {
		c.items[item.ID] = item
	}
	c.mu.Unlock()

	c.logger.Info("datastore synchronized", logging.Int("refreshed", len(fetched)))
	return len(fetched), c.persist(ctx)
}

// Push writes item through: mtime stamp, memory, file, then the
// one-item remote changeset. An upload failure surfaces to the caller
// after the local write, so the state is durable either way.
func (c *Cache) Push(ctx context.Context, item *library.Item) error {
	item.Touch(false)

	c.mu.Lock()
	c.items[item.ID] = item
	c.mu.Unlock()

	if err := c.persist(ctx); err != nil {
		return err
	}
	return c.remote.DatastorePut(ctx, stremio.CollectionLibraryItem, []*library.Item{item})
}

// Get returns the cached item for id.
func (c *Cache) Get(id string) (*library.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	return item, ok
}

// GetOrCreate returns the cached item for id or synthesizes a fresh
// one outside the library. The synthesized item is not stored until it
// is pushed.
func (c *Cache) GetOrCreate(id, name, mediaType, poster, posterShape string) *library.Item {
	if item, ok := c.Get(id); ok {
		return item
	}
	return library.NewItem(id, name, mediaType, poster, posterShape)
}

// List returns the items of the given type that are still in the
// library, most recently watched first. An empty filter or "all"
// selects every type. Temporary items are listed; removed ones are
// not.
func (c *Cache) List(typeFilter string) []*library.Item {
	c.mu.RLock()
	items := make([]*library.Item, 0, len(c.items))
	for _, item := range c.items {
		if item.Removed {
			continue
		}
		if typeFilter != "" && typeFilter != "all" && item.Type != typeFilter {
			continue
		}
		items = append(items, item)
	}
	c.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].State.LastWatched, items[j].State.LastWatched
		if !a.Equal(b.Time) {
			return a.After(b.Time)
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// Removed returns the items the user has taken out of the library,
// most recently watched first. Their watch history is still tracked,
// which is what makes listing them worthwhile.
func (c *Cache) Removed() []*library.Item {
	c.mu.RLock()
	items := make([]*library.Item, 0, len(c.items))
	for _, item := range c.items {
		if item.Removed {
			items = append(items, item)
		}
	}
	c.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].State.LastWatched, items[j].State.LastWatched
		if !a.Equal(b.Time) {
			return a.After(b.Time)
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// Types returns the media types present in the library, "all" first,
// then movie, series, and the rest alphabetically. Removed and
// temporary items do not contribute a type.
func (c *Cache) Types() []string {
	c.mu.RLock()
	seen := make(map[string]bool)
	for _, item := range c.items {
		if item.Removed || item.Temp {
			continue
		}
		seen[item.Type] = true
	}
	c.mu.RUnlock()

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if ri, rj := typeRank(types[i]), typeRank(types[j]); ri != rj {
			return ri < rj
		}
		return types[i] < types[j]
	})
	return append([]string{"all"}, types...)
}

func typeRank(mediaType string) int {
	switch mediaType {
	case "movie":
		return 0
	case "series":
		return 1
	default:
		return 2
	}
}

func (c *Cache) replaceAll(items []*library.Item) {
	next := make(map[string]*library.Item, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		next[item.ID] = item
	}
	c.mu.Lock()
	c.items = next
	c.mu.Unlock()
}

func (c *Cache) readFile() ([]*library.Item, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, err
	}
	var items []*library.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode datastore file: %w", err)
	}
	return items, nil
}

// persist writes the full mirror atomically: marshal, temp file,
// rename. The flock keeps two processes from interleaving on the same
// temp path.
func (c *Cache) persist(ctx context.Context) error {
	c.mu.RLock()
	items := make([]*library.Item, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	c.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal datastore: %w", ErrPersistence, err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("%w: create datastore directory: %w", ErrPersistence, err)
	}

	locked, err := c.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("%w: acquire datastore lock: %w", ErrPersistence, err)
	}
	if !locked {
		return fmt.Errorf("%w: datastore lock busy", ErrPersistence)
	}
	defer func() { _ = c.lock.Unlock() }()

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: write temp file: %w", ErrPersistence, err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: rename temp file: %w", ErrPersistence, err)
	}
	return nil
}
