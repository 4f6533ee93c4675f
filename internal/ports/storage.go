package ports

import (
	"context"
)

// Persisted storage keys.
const (
	SessionTokenKey = "token"
	SessionUserKey  = "user"
)

// SessionStorage is the client-local key/value store that outlives the
// process. Get reports a missing key with ok=false and a nil error.
type SessionStorage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
}
