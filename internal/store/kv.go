// Package store persists the four entity collections as whole-collection JSON
// blobs behind a string-keyed primitive, and materializes the denormalized
// project view from them.
package store

import "context"

// KV is the persistence primitive: an asynchronous string-keyed store.
// Get returns ok=false when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
