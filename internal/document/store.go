package document

import (
	"context"
	"errors"
)

// ErrStoreClosed is returned by every Store method after Close.
var ErrStoreClosed = errors.New("cookie store is closed")

// Store persists the cookies a Document accepts. Cookies are keyed by
// domain, path and name; Set on an existing key replaces it.
type Store interface {
	Set(ctx context.Context, cookie *StoredCookie) error

	// List returns the matching cookies ordered by domain, path and name.
	List(ctx context.Context, opts QueryOptions) ([]*StoredCookie, error)

	Delete(ctx context.Context, domain, path, name string) error

	// DeleteByDomain removes every cookie stored under domain and returns
	// how many there were.
	DeleteByDomain(ctx context.Context, domain string) (int64, error)

	// DeleteExpired removes cookies whose expiry has passed.
	DeleteExpired(ctx context.Context) (int64, error)

	// DeleteSession removes cookies stored without an expiry.
	DeleteSession(ctx context.Context) (int64, error)

	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	Close() error
}
