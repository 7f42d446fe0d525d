package stremio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stremsync/internal/library"
)

// CollectionLibraryItem is the datastore collection holding library
// records.
const CollectionLibraryItem = "libraryItem"

// MetaRef is one row of a datastoreMeta listing: a record id and its
// remote modification time in Unix milliseconds. The wire shape is a
// two-element array, not an object.
type MetaRef struct {
	ID    string
	MTime int64
}

func (r *MetaRef) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("meta ref: %w", err)
	}
	if len(pair) < 2 {
		return fmt.Errorf("meta ref holds %d elements, want [id, mtime]", len(pair))
	}
	if err := json.Unmarshal(pair[0], &r.ID); err != nil {
		return fmt.Errorf("meta ref id: %w", err)
	}
	var millis float64
	if err := json.Unmarshal(pair[1], &millis); err != nil {
		return fmt.Errorf("meta ref mtime: %w", err)
	}
	r.MTime = int64(millis)
	return nil
}

// Time returns the modification instant the ref names.
func (r MetaRef) Time() time.Time {
	return time.UnixMilli(r.MTime).UTC()
}

// DatastoreMeta lists every record id in a collection together with
// its remote modification time, the cheap half of a delta sync.
func (c *Client) DatastoreMeta(ctx context.Context, collection string) ([]MetaRef, error) {
	var refs []MetaRef
	if err := c.Post(ctx, "datastoreMeta", map[string]any{"collection": collection}, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// DatastoreGet hydrates records. A nil ids slice requests the full
// collection snapshot; anything else fetches exactly those ids.
func (c *Client) DatastoreGet(ctx context.Context, collection string, ids []string) ([]*library.Item, error) {
	payload := map[string]any{"collection": collection}
	if ids == nil {
		payload["all"] = true
	} else {
		payload["ids"] = ids
	}
	var items []*library.Item
	if err := c.Post(ctx, "datastoreGet", payload, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DatastorePut uploads changed records.
func (c *Client) DatastorePut(ctx context.Context, collection string, changes []*library.Item) error {
	if len(changes) == 0 {
		return nil
	}
	payload := map[string]any{"collection": collection, "changes": changes}
	return c.Post(ctx, "datastorePut", payload, nil)
}
