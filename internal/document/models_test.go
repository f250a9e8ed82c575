package document

import (
	"net/http"
	"net/url"
	"testing"
	"time"
)

func TestStoredCookie_IsExpired(t *testing.T) {
	t.Run("returns false for session cookie (zero expiry)", func(t *testing.T) {
		c := &StoredCookie{Name: "session", Value: "abc123"}
		if c.IsExpired() {
			t.Error("expected session cookie to not be expired")
		}
	})

	t.Run("returns false for future expiry", func(t *testing.T) {
		c := &StoredCookie{Name: "token", Expires: time.Now().Add(24 * time.Hour)}
		if c.IsExpired() {
			t.Error("expected future cookie to not be expired")
		}
	})

	t.Run("returns true for past expiry", func(t *testing.T) {
		c := &StoredCookie{Name: "old", Expires: time.Now().Add(-24 * time.Hour)}
		if !c.IsExpired() {
			t.Error("expected past cookie to be expired")
		}
	})
}

func TestStoredCookie_IsSession(t *testing.T) {
	if !(&StoredCookie{Name: "s"}).IsSession() {
		t.Error("expected cookie with zero expiry to be session cookie")
	}
	if (&StoredCookie{Name: "p", Expires: time.Now().Add(time.Hour)}).IsSession() {
		t.Error("expected cookie with expiry to not be session cookie")
	}
}

func TestStoredCookie_ToHTTPCookie(t *testing.T) {
	t.Run("converts domain cookie", func(t *testing.T) {
		expires := time.Now().Add(time.Hour)
		c := &StoredCookie{
			Name:    "test",
			Value:   "value123",
			Domain:  "example.com",
			Path:    "/api",
			Secure:  true,
			Expires: expires,
		}

		hc := c.ToHTTPCookie()

		if hc.Name != "test" || hc.Value != "value123" {
			t.Errorf("unexpected name/value %s=%s", hc.Name, hc.Value)
		}
		if hc.Domain != "example.com" {
			t.Errorf("expected domain 'example.com', got %s", hc.Domain)
		}
		if hc.Path != "/api" {
			t.Errorf("expected path '/api', got %s", hc.Path)
		}
		if !hc.Secure {
			t.Error("expected Secure to be true")
		}
		if !hc.Expires.Equal(expires) {
			t.Errorf("expected expires %v, got %v", expires, hc.Expires)
		}
	})

	t.Run("host-only cookie has no domain", func(t *testing.T) {
		c := &StoredCookie{Name: "test", Domain: "app.example.com", HostOnly: true}
		if hc := c.ToHTTPCookie(); hc.Domain != "" {
			t.Errorf("expected empty domain, got %s", hc.Domain)
		}
	})

	t.Run("converts SameSite", func(t *testing.T) {
		for in, want := range map[string]http.SameSite{
			"lax":    http.SameSiteLaxMode,
			"strict": http.SameSiteStrictMode,
			"none":   http.SameSiteNoneMode,
			"":       http.SameSiteDefaultMode,
			"Strict": http.SameSiteStrictMode,
			"bogus":  http.SameSiteDefaultMode,
		} {
			c := &StoredCookie{Name: "test", SameSite: in}
			if got := c.ToHTTPCookie().SameSite; got != want {
				t.Errorf("SameSite %q: expected %v, got %v", in, want, got)
			}
		}
	})
}

func TestFromHTTPCookie(t *testing.T) {
	t.Run("creates cookie from http.Cookie", func(t *testing.T) {
		u, _ := url.Parse("https://example.com/api")
		hc := &http.Cookie{
			Name:     "session",
			Value:    "abc123",
			Path:     "/api",
			Secure:   true,
			Expires:  time.Now().Add(time.Hour),
			SameSite: http.SameSiteLaxMode,
		}

		c := FromHTTPCookie(u, hc)

		if c.Name != "session" || c.Value != "abc123" {
			t.Errorf("unexpected name/value %s=%s", c.Name, c.Value)
		}
		if c.Domain != "example.com" || !c.HostOnly {
			t.Errorf("expected host-only example.com, got %s (host-only %v)", c.Domain, c.HostOnly)
		}
		if c.Path != "/api" {
			t.Errorf("expected path '/api', got %s", c.Path)
		}
		if !c.Secure {
			t.Error("expected Secure to be true")
		}
		if c.SameSite != "lax" {
			t.Errorf("expected SameSite 'lax', got %s", c.SameSite)
		}
	})

	t.Run("removes leading dot from domain", func(t *testing.T) {
		u, _ := url.Parse("https://www.example.com/")
		c := FromHTTPCookie(u, &http.Cookie{Name: "token", Domain: ".Example.com"})

		if c.Domain != "example.com" {
			t.Errorf("expected domain 'example.com', got %s", c.Domain)
		}
		if c.HostOnly {
			t.Error("expected domain cookie")
		}
	})

	t.Run("defaults path to the page directory", func(t *testing.T) {
		u, _ := url.Parse("https://example.com/api/v1")
		c := FromHTTPCookie(u, &http.Cookie{Name: "token"})

		if c.Path != "/api" {
			t.Errorf("expected path '/api', got %s", c.Path)
		}
	})

	t.Run("converts MaxAge to expiry time", func(t *testing.T) {
		u, _ := url.Parse("https://example.com/")
		hc := &http.Cookie{Name: "token", MaxAge: 3600, Expires: time.Now().Add(-time.Hour)}

		before := time.Now()
		c := FromHTTPCookie(u, hc)
		after := time.Now()

		if c.Expires.Before(before.Add(time.Hour)) || c.Expires.After(after.Add(time.Hour)) {
			t.Errorf("expected expires around 1 hour from now, got %v", c.Expires)
		}
	})

	t.Run("handles negative MaxAge (delete cookie)", func(t *testing.T) {
		u, _ := url.Parse("https://example.com/")
		c := FromHTTPCookie(u, &http.Cookie{Name: "token", MaxAge: -1})

		if !c.Expires.Equal(time.Unix(0, 0)) {
			t.Errorf("expected Unix epoch for deleted cookie, got %v", c.Expires)
		}
		if !c.IsExpired() {
			t.Error("expected deleted cookie to be expired")
		}
	})
}

func TestNormalizeDomain(t *testing.T) {
	for in, want := range map[string]string{
		"Example.COM":  "example.com",
		".example.com": "example.com",
		"":             "",
	} {
		if got := normalizeDomain(in); got != want {
			t.Errorf("normalizeDomain(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestDefaultPath(t *testing.T) {
	for in, want := range map[string]string{
		"":         "/",
		"/":        "/",
		"/a":       "/",
		"/a/b":     "/a",
		"/a/b/":    "/a/b",
		"relative": "/",
	} {
		if got := defaultPath(in); got != want {
			t.Errorf("defaultPath(%q): expected %q, got %q", in, want, got)
		}
	}
}
