package document

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/artpar/crumb/internal/cookie"
)

// StoredCookie is a cookie as the host keeps it, attributes included.
type StoredCookie struct {
	ID       string `json:"id"`
	Domain   string `json:"domain"`
	HostOnly bool   `json:"host_only"`
	Path     string `json:"path"`
	Name     string `json:"name"`
	// Value is kept exactly as written, still percent-encoded.
	Value     string    `json:"value"`
	Secure    bool      `json:"secure"`
	SameSite  string    `json:"same_site"`
	Expires   time.Time `json:"expires"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired returns true if the cookie has expired.
func (c *StoredCookie) IsExpired() bool {
	if c.Expires.IsZero() {
		return false // Session cookie, never expires
	}
	return !time.Now().Before(c.Expires)
}

// IsSession returns true if this is a session cookie (no expiration).
func (c *StoredCookie) IsSession() bool {
	return c.Expires.IsZero()
}

// ToHTTPCookie converts to standard http.Cookie. Host-only cookies get no
// Domain so a jar keeps them host-only.
func (c *StoredCookie) ToHTTPCookie() *http.Cookie {
	// Unknown values fall back to the default mode
	sameSite, _ := cookie.ParseSameSite(c.SameSite)

	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		SameSite: sameSite.HTTP(),
		Expires:  c.Expires,
	}
	if !c.HostOnly {
		hc.Domain = c.Domain
	}
	return hc
}

// FromHTTPCookie creates a StoredCookie from a cookie written on page u.
func FromHTTPCookie(u *url.URL, hc *http.Cookie) *StoredCookie {
	domain := hc.Domain
	hostOnly := domain == ""
	if hostOnly {
		domain = u.Hostname()
	}
	domain = normalizeDomain(domain)

	path := hc.Path
	if path == "" || path[0] != '/' {
		path = defaultPath(u.Path)
	}

	sameSite := ""
	switch hc.SameSite {
	case http.SameSiteLaxMode:
		sameSite = "lax"
	case http.SameSiteStrictMode:
		sameSite = "strict"
	case http.SameSiteNoneMode:
		sameSite = "none"
	}

	now := time.Now()

	// Max-Age wins over Expires
	expires := hc.Expires
	if hc.MaxAge > 0 {
		expires = now.Add(time.Duration(hc.MaxAge) * time.Second)
	} else if hc.MaxAge < 0 {
		expires = time.Unix(0, 0)
	}

	return &StoredCookie{
		Domain:    domain,
		HostOnly:  hostOnly,
		Path:      path,
		Name:      hc.Name,
		Value:     hc.Value,
		Secure:    hc.Secure,
		SameSite:  sameSite,
		Expires:   expires,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// normalizeDomain lowercases domain and drops one leading dot, the form
// cookies are stored under.
func normalizeDomain(domain string) string {
	return strings.TrimPrefix(strings.ToLower(domain), ".")
}

// defaultPath is the RFC 6265 default-path of a request path.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

// QueryOptions narrows Store.List.
type QueryOptions struct {
	// Domain keeps cookies stored under exactly this domain; empty keeps all.
	Domain string
	// IncludeExpired keeps cookies whose expiry has passed.
	IncludeExpired bool
}
