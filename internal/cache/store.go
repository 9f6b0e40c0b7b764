// Package cache stores classifier verdicts keyed by message hash so repeated
// runs over the same history skip remote calls.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Store is a JSON value cache
type Store interface {
	// Get unmarshals the value for key into target. Returns false on a miss.
	Get(ctx context.Context, key string, target interface{}) (bool, error)
	// Set marshals and stores value under key
	Set(ctx context.Context, key string, value interface{}) error
	Close() error
}

// Key builds a cache key of the form "prefix:sha256(text)"
func Key(prefix, text string) string {
	sum := sha256.Sum256([]byte(text))
	return prefix + ":" + hex.EncodeToString(sum[:])
}
