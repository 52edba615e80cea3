// ABOUTME: Key-value store interface backing the offline session store and sync queue.
// ABOUTME: Small string-keyed byte-valued contract so engines run against Badger or an in-memory fake.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is the durable key-value contract the sync engine persists through.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Subscriber is implemented by stores that can notify about external writes
// to a key. Used only to refresh displayed counters, never to trigger work.
type Subscriber interface {
	Subscribe(ctx context.Context, key string, fn func())
}
