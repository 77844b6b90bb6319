// Package store is the durable key-value layer shared by every view.
//
// Values are whole-collection JSON blobs. Writers that must not lose
// concurrent updates read the current bytes and publish with
// CompareAndSwap, retrying on conflict.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/khrees2412/levelup/internal/common"
	"github.com/openbindings/openbindings-go/canonicaljson"
)

// Keys shared with the web UI.
const (
	KeyOffers       = "offers"
	KeyApplications = "applications"
)

// Store is a key to JSON-bytes mapping. Set is last-write-wins.
// CompareAndSwap replaces the value only if the current value equals old;
// a nil old means the key must be absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	CompareAndSwap(ctx context.Context, key string, old, next []byte) (bool, error)
}

// Encode returns the canonical (RFC 8785) JSON encoding of v, so that equal
// collections always produce equal bytes.
func Encode(v any) ([]byte, error) {
	b, err := canonicaljson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return b, nil
}

// Decode unmarshals a stored value. Malformed data yields a store_read error
// which callers treat as an absent entry.
func Decode(key string, raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return common.NewError(common.CodeStoreRead, fmt.Sprintf("stored %q is corrupt", key), err)
	}
	return nil
}

// Close releases the store's resources if it holds any.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
