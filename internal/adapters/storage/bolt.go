package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	boltBucket      = "kv"
	boltOpenTimeout = 1 * time.Second
)

// Bolt is a key-value store backed by a bbolt file.
type Bolt struct {
	db *bbolt.DB
}

// NewBolt opens or creates the database at path.
func NewBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, errors.New("bolt: path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))

		return err
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Bolt{db: db}, nil
}

// Get implements ports.KeyValueStore.
func (b *Bolt) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var (
		value string
		found bool
	)

	err := b.db.View(func(tx *bbolt.Tx) error {
		// Bytes are only valid inside the transaction.
		if v := tx.Bucket([]byte(boltBucket)).Get([]byte(key)); v != nil {
			value, found = string(v), true
		}

		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("bolt get %q: %w", key, err)
	}

	return value, found, nil
}

// Set implements ports.KeyValueStore.
func (b *Bolt) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("bolt set %q: %w", key, err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (b *Bolt) Name() string {
	return "storage-bolt"
}

// Check implements ports.HealthChecker.
func (b *Bolt) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(boltBucket)) == nil {
			return errors.New("bucket missing")
		}

		return nil
	})
}

// Close closes the database.
func (b *Bolt) Close() error {
	return b.db.Close()
}
