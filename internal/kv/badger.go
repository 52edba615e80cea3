// ABOUTME: Badger-backed implementation of the kv.Store interface.
// ABOUTME: Handles directory creation, XDG paths, and key change subscriptions.
package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/pb"
)

// Badger is a durable Store backed by a Badger database. Badger holds an
// exclusive directory lock, so two processes cannot open the same data
// directory read-write at once.
type Badger struct {
	db *badger.DB
}

// Open opens or creates a Badger database under dir.
func Open(dir string) (*Badger, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Badger{db: db}, nil
}

// OpenDefault opens the database at the default XDG data path.
func OpenDefault() (*Badger, error) {
	return Open(DefaultDataDir())
}

// DefaultDataDir returns the default data directory following XDG spec.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "swole")
}

// Get returns the value for key, or ErrNotFound.
func (b *Badger) Get(key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key.
func (b *Badger) Set(key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (b *Badger) Delete(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Subscribe invokes fn whenever key is written, until ctx is cancelled.
func (b *Badger) Subscribe(ctx context.Context, key string, fn func()) {
	go func() {
		match := pb.Match{Prefix: []byte(key)}
		_ = b.db.Subscribe(ctx, func(_ *badger.KVList) error {
			fn()
			return nil
		}, []pb.Match{match})
	}()
}

// Close closes the underlying database.
func (b *Badger) Close() error {
	return b.db.Close()
}
