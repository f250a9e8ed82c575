package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// SameSite is the value of the samesite attribute.
type SameSite string

const (
	SameSiteDefault SameSite = ""
	SameSiteNone    SameSite = "none"
	SameSiteLax     SameSite = "lax"
	SameSiteStrict  SameSite = "strict"
)

// ErrInvalidSameSite is returned by ParseSameSite for unknown values.
var ErrInvalidSameSite = errors.New("invalid SameSite value")

// ParseSameSite converts s to a SameSite, ignoring case. An empty string
// is SameSiteDefault, which leaves the attribute out.
func ParseSameSite(s string) (SameSite, error) {
	switch v := SameSite(strings.ToLower(strings.TrimSpace(s))); v {
	case SameSiteDefault, SameSiteNone, SameSiteLax, SameSiteStrict:
		return v, nil
	default:
		return SameSiteDefault, fmt.Errorf("%w: %q", ErrInvalidSameSite, s)
	}
}

// HTTP converts s to the net/http representation.
func (s SameSite) HTTP() http.SameSite {
	switch s {
	case SameSiteNone:
		return http.SameSiteNoneMode
	case SameSiteLax:
		return http.SameSiteLaxMode
	case SameSiteStrict:
		return http.SameSiteStrictMode
	default:
		return http.SameSiteDefaultMode
	}
}
