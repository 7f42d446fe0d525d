package stremio

import (
	"context"
	"sync"
	"time"

	"stremsync/internal/addon"
)

// addonRefreshWindow caps how long a cached addon collection is served
// before the next call triggers a refresh.
const addonRefreshWindow = 5 * time.Minute

type addonCache struct {
	mu      sync.Mutex
	addons  []*addon.Addon
	fetched time.Time
}

// AddonCollection returns the user's installed addons, served from a
// short-lived client-side cache unless refresh forces a round trip. A
// failed refresh keeps the previous collection out of reach on
// purpose: the caller sees the error and decides.
func (c *Client) AddonCollection(ctx context.Context, refresh bool) ([]*addon.Addon, error) {
	c.addons.mu.Lock()
	cached := c.addons.addons
	fresh := time.Since(c.addons.fetched) <= addonRefreshWindow
	c.addons.mu.Unlock()
	if !refresh && fresh && len(cached) > 0 {
		return cached, nil
	}

	var result struct {
		Addons []*addon.Addon `json:"addons"`
	}
	if err := c.Post(ctx, "addonCollectionGet", map[string]any{"update": true}, &result); err != nil {
		return nil, err
	}

	c.addons.mu.Lock()
	c.addons.addons = result.Addons
	c.addons.fetched = time.Now()
	c.addons.mu.Unlock()
	return result.Addons, nil
}
