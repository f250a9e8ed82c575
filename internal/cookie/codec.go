package cookie

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/artpar/crumb/internal/duration"
)

// Encode percent-encodes every byte of s outside A-Z a-z 0-9 - _ . ~.
// Spaces become %20.
func Encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Decode reverses Encode. A malformed escape, or escapes that do not
// decode to valid UTF-8, leave s as it is.
func Decode(s string) string {
	v, err := url.PathUnescape(s)
	if err != nil || !utf8.ValidString(v) {
		return s
	}
	return v
}

// pair is one name=value segment of the ambient string, value still encoded.
type pair struct {
	name  string
	value string
}

// parse splits the ambient string into pairs. Both "; " and ";" separate
// pairs, empty segments are skipped and a segment without '=' has an empty
// value. It never fails.
func parse(raw string) []pair {
	var pairs []pair
	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		name, value, _ := strings.Cut(segment, "=")
		pairs = append(pairs, pair{
			name:  strings.TrimSpace(name),
			value: strings.TrimSpace(value),
		})
	}
	return pairs
}

// serialize renders r as a single write to the ambient string.
func serialize(r *Record, now time.Time) string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteByte('=')
	b.WriteString(Encode(r.Value))

	if r.Duration != nil {
		expires := duration.ExpiryDateAt(now, *r.Duration)
		b.WriteString("; expires=")
		b.WriteString(expires.UTC().Format(http.TimeFormat))
		b.WriteString("; max-age=")
		b.WriteString(strconv.FormatInt(maxAge(*r.Duration), 10))
	}
	if r.Path != "" {
		b.WriteString("; path=")
		b.WriteString(r.Path)
	}
	if r.Domain != "" {
		b.WriteString("; domain=")
		b.WriteString(r.Domain)
	}
	if r.SameSite != SameSiteDefault {
		b.WriteString("; samesite=")
		b.WriteString(string(r.SameSite))
	}
	if r.Secure {
		b.WriteString("; secure")
	}
	return b.String()
}

// maxAge is the whole number of seconds in spec, rounded away from zero:
// a positive lifetime under a second must not read as max-age=0 (delete),
// and a fractional negative one must still expire.
func maxAge(spec duration.Spec) int64 {
	secs := duration.ExpirySeconds(spec)
	if secs > 0 {
		secs = math.Ceil(secs)
	} else {
		secs = math.Floor(secs)
	}
	switch {
	case math.IsNaN(secs):
		return 0
	case secs >= math.MaxInt64:
		return math.MaxInt64
	case secs <= math.MinInt64:
		return math.MinInt64
	}
	return int64(secs)
}
