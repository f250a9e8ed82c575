package document

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a Store that lives as long as the process. It is what a
// Document uses when no other Store is given.
type MemoryStore struct {
	mu      sync.RWMutex
	cookies map[string]*StoredCookie // key: domain|path|name
	closed  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cookies: make(map[string]*StoredCookie)}
}

func storeKey(domain, path, name string) string {
	return domain + "|" + path + "|" + name
}

// Set stores or updates a cookie.
func (m *MemoryStore) Set(ctx context.Context, cookie *StoredCookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}

	key := storeKey(cookie.Domain, cookie.Path, cookie.Name)
	cookie.UpdatedAt = time.Now()
	if prev, ok := m.cookies[key]; ok {
		cookie.ID = prev.ID
		cookie.CreatedAt = prev.CreatedAt
	}
	if cookie.ID == "" {
		cookie.ID = uuid.New().String()
	}
	if cookie.CreatedAt.IsZero() {
		cookie.CreatedAt = cookie.UpdatedAt
	}

	stored := *cookie
	m.cookies[key] = &stored
	return nil
}

// List returns cookies matching opts ordered by domain, path and name.
func (m *MemoryStore) List(ctx context.Context, opts QueryOptions) ([]*StoredCookie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	var result []*StoredCookie
	for _, c := range m.cookies {
		if opts.Domain != "" && c.Domain != opts.Domain {
			continue
		}
		if !opts.IncludeExpired && c.IsExpired() {
			continue
		}
		cp := *c
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Domain != b.Domain {
			return a.Domain < b.Domain
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Name < b.Name
	})
	return result, nil
}

// Delete removes a specific cookie.
func (m *MemoryStore) Delete(ctx context.Context, domain, path, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	delete(m.cookies, storeKey(domain, path, name))
	return nil
}

// DeleteByDomain removes all cookies stored under domain.
func (m *MemoryStore) DeleteByDomain(ctx context.Context, domain string) (int64, error) {
	return m.deleteWhere(func(c *StoredCookie) bool { return c.Domain == domain })
}

// DeleteExpired removes all expired cookies and returns count.
func (m *MemoryStore) DeleteExpired(ctx context.Context) (int64, error) {
	return m.deleteWhere(func(c *StoredCookie) bool { return c.IsExpired() })
}

// DeleteSession removes all session cookies and returns count.
func (m *MemoryStore) DeleteSession(ctx context.Context) (int64, error) {
	return m.deleteWhere(func(c *StoredCookie) bool { return c.IsSession() })
}

func (m *MemoryStore) deleteWhere(match func(*StoredCookie) bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrStoreClosed
	}
	var n int64
	for k, c := range m.cookies {
		if match(c) {
			delete(m.cookies, k)
			n++
		}
	}
	return n, nil
}

// Clear removes all cookies.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.cookies = make(map[string]*StoredCookie)
	return nil
}

// Count returns total number of cookies.
func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrStoreClosed
	}
	return int64(len(m.cookies)), nil
}

// Close closes the store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
