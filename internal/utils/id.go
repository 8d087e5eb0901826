package utils

import "github.com/google/uuid"

// NewID returns an opaque identifier for a connection's lifetime.
// Identities are generated fresh on every connect and never reused.
func NewID() string {
	return uuid.NewString()
}
