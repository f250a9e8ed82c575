package cookie

import (
	"net/http"
	"strings"
)

// memAmbient is a minimal host: writes replace by name, expired writes
// remove, reads list name=value pairs in insertion order.
type memAmbient struct {
	names  []string
	values map[string]string
	writes []string
}

func newMemAmbient() *memAmbient {
	return &memAmbient{values: make(map[string]string)}
}

func (m *memAmbient) Read() string {
	parts := make([]string, 0, len(m.names))
	for _, n := range m.names {
		parts = append(parts, n+"="+m.values[n])
	}
	return strings.Join(parts, "; ")
}

func (m *memAmbient) Write(entry string) {
	m.writes = append(m.writes, entry)
	c, err := http.ParseSetCookie(entry)
	if err != nil {
		return
	}
	if c.MaxAge < 0 {
		m.remove(c.Name)
		return
	}
	if _, ok := m.values[c.Name]; !ok {
		m.names = append(m.names, c.Name)
	}
	m.values[c.Name] = c.Value
}

func (m *memAmbient) remove(name string) {
	if _, ok := m.values[name]; !ok {
		return
	}
	delete(m.values, name)
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			return
		}
	}
}

func (m *memAmbient) lastWrite() string {
	if len(m.writes) == 0 {
		return ""
	}
	return m.writes[len(m.writes)-1]
}

// rawAmbient returns a fixed string and drops writes.
type rawAmbient string

func (r rawAmbient) Read() string { return string(r) }

func (rawAmbient) Write(string) {}
