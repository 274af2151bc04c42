package core

import "context"

// Preference keys of the session cache.
const (
	PrefToken        = "token"
	PrefRefreshToken = "refreshToken"
	PrefUserData     = "userData"
)

// SessionKeys lists every key written by a login.
var SessionKeys = []string{PrefToken, PrefRefreshToken, PrefUserData}

// Preferences is the key/value store caching the session.
// Retrieve returns ErrPrefNotFound for a missing key.
type Preferences interface {
	Store(ctx context.Context, key, value string) error
	Retrieve(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
