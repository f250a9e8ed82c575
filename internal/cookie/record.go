package cookie

import (
	"github.com/artpar/crumb/internal/duration"
)

// DefaultPath is the path a Record is scoped to unless told otherwise.
const DefaultPath = "/"

// expired is the lifetime Delete stores with: one second in the past, so
// both expires and max-age are unambiguously spent.
var expired = duration.Spec{Seconds: -1}

// Options describes a cookie to create. Only Name is required.
type Options struct {
	Name  string
	Value string
	// Path defaults to DefaultPath.
	Path string
	// Duration is the cookie lifetime. Nil means a session cookie with no
	// expires or max-age attribute.
	Duration *duration.Spec
	Secure   bool
	Domain   string
	SameSite SameSite
}

// Lifetime returns a Duration value for Options from spec.
func Lifetime(spec duration.Spec) *duration.Spec {
	return &spec
}

// Record is one cookie bound to the Jar it reads from and writes to.
// A Record is cheap and meant to be built for a single operation.
type Record struct {
	Name     string
	Value    string
	Path     string
	Duration *duration.Spec
	Secure   bool
	Domain   string
	SameSite SameSite

	loaded bool
	jar    *Jar
}

// Loaded reports whether Value came from the ambient string. It is false
// for a fresh Record, after a Load that found nothing and after Delete.
func (r *Record) Loaded() bool {
	return r.loaded
}

// IsSession reports whether the Record is stored without an expiry.
func (r *Record) IsSession() bool {
	return r.Duration == nil
}

// Store writes the Record to the ambient string, replacing any cookie with
// the same name, path and domain.
func (r *Record) Store() {
	entry := serialize(r, r.jar.now())
	r.jar.ambient.Write(entry)
	r.jar.log.Debug().
		Str("cookie", r.Name).
		Bool("session", r.IsSession()).
		Str("path", r.Path).
		Str("domain", r.Domain).
		Msg("cookie stored")
}

// Load reads the Record's value from the ambient string. The first cookie
// with a matching name wins. When none matches, Value is cleared and Load
// returns false.
func (r *Record) Load() (string, bool) {
	for _, p := range parse(r.jar.ambient.Read()) {
		if p.name == r.Name {
			r.Value = Decode(p.value)
			r.loaded = true
			return r.Value, true
		}
	}
	r.Value = ""
	r.loaded = false
	return "", false
}

// Exists reports whether the ambient string holds a cookie with the
// Record's name.
func (r *Record) Exists() bool {
	for _, p := range parse(r.jar.ambient.Read()) {
		if p.name == r.Name {
			return true
		}
	}
	return false
}

// Delete clears the value and stores the Record already expired under its
// own path and domain. The host drops the cookie when it applies the write;
// a path or domain that differs from the original store leaves it in place.
func (r *Record) Delete() {
	r.Value = ""
	r.loaded = false
	spec := expired
	r.Duration = &spec
	r.Store()
	r.jar.log.Debug().Str("cookie", r.Name).Msg("cookie deleted")
}

// String renders the write Store would perform right now.
func (r *Record) String() string {
	return serialize(r, r.jar.now())
}
