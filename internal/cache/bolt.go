package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketName = "verdicts"

// BoltStore is a file-backed Store
type BoltStore struct {
	db     *bolt.DB
	logger *slog.Logger
}

// OpenBolt opens (or creates) a bbolt cache file
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	logger := slog.Default().With("component", "bolt_cache")
	logger.Debug("cache opened", "path", path)
	return &BoltStore{db: db, logger: logger}, nil
}

// Get retrieves a cached value
func (s *BoltStore) Get(_ context.Context, key string, target interface{}) (bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return nil
		}
		if v := bucket.Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("bolt get failed for key %s: %w", key, err)
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value for key %s: %w", key, err)
	}
	return true, nil
}

// Set stores a value
func (s *BoltStore) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), data)
	})
}

// Close closes the underlying file
func (s *BoltStore) Close() error {
	return s.db.Close()
}
