package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// SessionIDPrefix marks session identifiers in overlay URLs.
	SessionIDPrefix = "KIRA-"

	// DemoSessionID is used by viewers that could not find an identifier.
	DemoSessionID = "demo"
)

// NewSessionID returns a fresh identifier of the form KIRA-XXXX-XXXX-XXXX.
func NewSessionID() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return SessionIDPrefix + hex[0:4] + "-" + hex[4:8] + "-" + hex[8:12]
}

// DurableStore is the opaque get/put/expire key-value service behind the
// in-memory tier. Get returns ErrNotFound for absent or expired keys.
type DurableStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}
