package cookie

import (
	"time"

	"github.com/rs/zerolog"
)

// Ambient is the flat cookie string a Jar works through.
type Ambient interface {
	// Read returns every visible cookie as "name1=value1; name2=value2".
	Read() string
	// Write merges one "name=value; attr=val; flag" entry into the store.
	Write(entry string)
}

// Jar builds Records over one Ambient and offers name-based shortcuts for
// the Record operations. It holds no cookie state of its own.
type Jar struct {
	ambient Ambient
	log     zerolog.Logger
	now     func() time.Time
}

// JarOption configures a Jar.
type JarOption func(*Jar)

// WithLogger sets the logger used for store and delete events.
func WithLogger(log zerolog.Logger) JarOption {
	return func(j *Jar) {
		j.log = log
	}
}

// WithClock sets the clock expiry dates are computed against.
func WithClock(now func() time.Time) JarOption {
	return func(j *Jar) {
		j.now = now
	}
}

// NewJar creates a Jar over ambient.
func NewJar(ambient Ambient, opts ...JarOption) *Jar {
	j := &Jar{
		ambient: ambient,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Ambient returns the string the Jar reads and writes.
func (j *Jar) Ambient() Ambient {
	return j.ambient
}

// Create builds a Record from opts, filling in the default path.
func (j *Jar) Create(opts Options) *Record {
	path := opts.Path
	if path == "" {
		path = DefaultPath
	}
	return &Record{
		Name:     opts.Name,
		Value:    opts.Value,
		Path:     path,
		Duration: opts.Duration,
		Secure:   opts.Secure,
		Domain:   opts.Domain,
		SameSite: opts.SameSite,
		jar:      j,
	}
}

// WithName builds a Record with only its name set.
func (j *Jar) WithName(name string) *Record {
	return j.Create(Options{Name: name})
}

// Store writes the cookie described by opts.
func (j *Jar) Store(opts Options) {
	j.Create(opts).Store()
}

// Load returns the decoded value of the first cookie called name.
func (j *Jar) Load(name string) (string, bool) {
	return j.WithName(name).Load()
}

// Exists reports whether a cookie called name is visible.
func (j *Jar) Exists(name string) bool {
	return j.WithName(name).Exists()
}

// Delete expires the cookie called name at the default path and with no
// domain. Use DeleteScoped for cookies stored elsewhere.
func (j *Jar) Delete(name string) {
	j.WithName(name).Delete()
}

// DeleteScoped expires the cookie matching the name, path and domain of
// opts. Value and Duration are ignored.
func (j *Jar) DeleteScoped(opts Options) {
	j.Create(opts).Delete()
}

// All parses the ambient string into Records in the order the host lists
// them. Only Name and Value are populated.
func (j *Jar) All() []*Record {
	pairs := parse(j.ambient.Read())
	records := make([]*Record, 0, len(pairs))
	for _, p := range pairs {
		r := j.WithName(p.name)
		r.Value = Decode(p.value)
		r.loaded = true
		records = append(records, r)
	}
	return records
}
