package util

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewULID returns a new monotonic ULID string. Safe for concurrent use.
func NewULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// IsULID reports whether s parses as a ULID.
func IsULID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
