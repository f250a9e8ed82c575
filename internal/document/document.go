// Package document emulates the host side of an ambient cookie string: a
// page's cookie jar that accepts "name=value; attr" writes and answers
// reads with the name=value pairs visible to the page.
package document

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

// ErrInvalidURL is returned by Open for a page URL a jar cannot serve.
var ErrInvalidURL = errors.New("page URL must be absolute http or https")

// Document is the cookie string of one page. Writes follow RFC 6265 through
// a net/http/cookiejar and are mirrored into a Store, so a Document opened
// on a persistent Store sees the cookies of earlier runs.
type Document struct {
	mu    sync.RWMutex
	url   *url.URL
	jar   *cookiejar.Jar // In-memory jar for standard behavior
	store Store          // Persistence layer
	log   zerolog.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithStore sets the persistence layer. Without it a Document keeps its
// cookies in a MemoryStore.
func WithStore(store Store) Option {
	return func(d *Document) {
		d.store = store
	}
}

// WithLogger sets the logger for rejected and failed writes.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Document) {
		d.log = log
	}
}

// Open creates the Document of pageURL and replays the stored cookies that
// have not expired.
func Open(pageURL string, opts ...Option) (*Document, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	d := &Document{
		url: u,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.store == nil {
		d.store = NewMemoryStore()
	}

	if err := d.reload(context.Background()); err != nil {
		return nil, err
	}
	return d, nil
}

func newJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
}

// reload rebuilds the jar from the non-expired cookies in the store.
// Callers hold d.mu or own d exclusively.
func (d *Document) reload(ctx context.Context) error {
	jar, err := newJar()
	if err != nil {
		return err
	}

	cookies, err := d.store.List(ctx, QueryOptions{IncludeExpired: false})
	if err != nil {
		return fmt.Errorf("failed to load cookies: %w", err)
	}

	for _, c := range cookies {
		u := &url.URL{
			Scheme: "https",
			Host:   c.Domain,
			Path:   c.Path,
		}
		jar.SetCookies(u, []*http.Cookie{c.ToHTTPCookie()})
	}

	d.jar = jar
	return nil
}

// URL returns the page URL.
func (d *Document) URL() *url.URL {
	u := *d.url
	return &u
}

// Read returns the cookies visible to the page as "n1=v1; n2=v2". Longer
// paths come first, as browsers list them.
func (d *Document) Read() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cookies := d.jar.Cookies(d.url)
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// Write applies one "name=value; attr=val; flag" entry. Entries the page
// may not set are dropped and logged; Write never reports an error.
func (d *Document) Write(entry string) {
	hc, err := http.ParseSetCookie(entry)
	if err != nil {
		d.log.Warn().Err(err).Str("entry", entry).Msg("cookie write ignored")
		return
	}

	hostOnly, ok := domainScope(d.url.Hostname(), hc.Domain)
	if !ok {
		d.log.Warn().
			Str("cookie", hc.Name).
			Str("domain", hc.Domain).
			Str("host", d.url.Hostname()).
			Msg("cookie domain rejected")
		return
	}
	if hostOnly {
		hc.Domain = ""
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.jar.SetCookies(d.url, []*http.Cookie{hc})

	ctx := context.Background()
	c := FromHTTPCookie(d.url, hc)

	// MaxAge < 0 or a past Expires means delete
	if hc.MaxAge < 0 || c.IsExpired() {
		err = d.store.Delete(ctx, c.Domain, c.Path, c.Name)
	} else {
		err = d.store.Set(ctx, c)
	}
	if err != nil {
		d.log.Error().Err(err).Str("cookie", c.Name).Msg("failed to persist cookie")
	}
}

// EndSession drops every cookie without an expiry, as a browser does when
// it closes, and returns how many were dropped.
func (d *Document) EndSession(ctx context.Context) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.store.DeleteSession(ctx)
	if err != nil {
		return 0, err
	}
	return n, d.reload(ctx)
}

// Cleanup removes expired cookies from the store.
func (d *Document) Cleanup(ctx context.Context) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.store.DeleteExpired(ctx)
}

// Clear removes all cookies from jar and store.
func (d *Document) Clear(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.store.Clear(ctx); err != nil {
		return err
	}
	return d.reload(ctx)
}

// ClearDomain removes the cookies stored under domain, host-only or not,
// and returns how many there were. A leading dot is ignored.
func (d *Document) ClearDomain(ctx context.Context, domain string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.store.DeleteByDomain(ctx, normalizeDomain(domain))
	if err != nil {
		return 0, err
	}
	return n, d.reload(ctx)
}

// Stored returns the live cookies in the store with their attributes,
// whether the page can see them or not. A non-empty domain keeps only the
// cookies stored under it.
func (d *Document) Stored(ctx context.Context, domain string) ([]*StoredCookie, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.store.List(ctx, QueryOptions{Domain: normalizeDomain(domain)})
}

// Count returns the number of stored cookies, visible to the page or not.
func (d *Document) Count(ctx context.Context) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.store.Count(ctx)
}

// Store returns the underlying store.
func (d *Document) Store() Store {
	return d.store
}

// Close closes the underlying store.
func (d *Document) Close() error {
	return d.store.Close()
}

// domainScope applies the domain-attribute rules of net/http/cookiejar so
// the store only keeps cookies the jar accepted. hostOnly is true when the
// cookie binds to the exact host.
func domainScope(host, domain string) (hostOnly, ok bool) {
	host = strings.ToLower(host)
	if domain == "" {
		return true, true
	}
	domain = strings.ToLower(strings.TrimPrefix(domain, "."))
	if domain == "" || domain[0] == '.' || domain[len(domain)-1] == '.' {
		return false, false
	}

	if net.ParseIP(host) != nil {
		return true, host == domain
	}

	// A public suffix is only accepted from the suffix host itself
	if ps, _ := publicsuffix.PublicSuffix(domain); ps != "" && !hasDotSuffix(domain, ps) {
		return true, host == domain
	}

	if host != domain && !hasDotSuffix(host, domain) {
		return false, false
	}
	return false, true
}

func hasDotSuffix(s, suffix string) bool {
	return len(s) > len(suffix) && s[len(s)-len(suffix)-1] == '.' && s[len(s)-len(suffix):] == suffix
}
