// Package auth defines the admin API key model used to guard the canteen's
// administrative surface (catalog writes, credits, order transitions).
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrKeyNotFound is returned when no API key matches the given hash.
var ErrKeyNotFound = errors.New("api key not found")

// APIKeyInfo holds the identity data for a validated admin API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
}

// Repository provides lookup of API keys by their HMAC-SHA256 hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
