// SPDX-License-Identifier: EPL-2.0

package encoding

import (
	"sort"
	"strings"
)

type registration struct {
	backend  Backend
	priority int
}

// Registry is a priority-ordered table of backends. Registration is
// expected only at startup; resolution is read-only afterwards and safe
// to call concurrently with itself.
type Registry struct {
	entries []registration
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds b with the given priority. Backends are scanned in
// descending priority order, ties broken by registration order.
// Registering a backend whose name is already present does nothing.
func (r *Registry) Register(b Backend, priority int) {
	for _, e := range r.entries {
		if e.backend.Name() == b.Name() {
			return
		}
	}
	r.entries = append(r.entries, registration{backend: b, priority: priority})
	sort.SliceStable(r.entries, func(i, j int) bool {
		return r.entries[i].priority > r.entries[j].priority
	})
}

// ResolveByExtension returns the highest-priority backend claiming ext.
// The query is lowercased and a leading dot is ignored. Not finding a
// backend is not an error by itself; callers synthesize one naming the
// query (see Encoder).
func (r *Registry) ResolveByExtension(ext string) (Backend, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return r.resolve(func(b Backend) []string { return b.Extensions() }, ext)
}

// ResolveByMIMEType returns the highest-priority backend claiming mime.
func (r *Registry) ResolveByMIMEType(mime string) (Backend, bool) {
	return r.resolve(func(b Backend) []string { return b.MIMETypes() }, strings.ToLower(mime))
}

// ResolveByName returns the backend with the given logical name.
func (r *Registry) ResolveByName(name string) (Backend, bool) {
	name = strings.ToLower(name)
	for _, e := range r.entries {
		if e.backend.Name() == name {
			return e.backend, true
		}
	}
	return nil, false
}

// HandlesExtension reports whether any backend claims ext.
func (r *Registry) HandlesExtension(ext string) bool {
	_, ok := r.ResolveByExtension(ext)
	return ok
}

// HandlesMIMEType reports whether any backend claims mime.
func (r *Registry) HandlesMIMEType(mime string) bool {
	_, ok := r.ResolveByMIMEType(mime)
	return ok
}

// Backends returns the registered backends in resolution order.
func (r *Registry) Backends() []Backend {
	out := make([]Backend, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.backend
	}
	return out
}

func (r *Registry) resolve(claims func(Backend) []string, query string) (Backend, bool) {
	for _, e := range r.entries {
		for _, c := range claims(e.backend) {
			if c == query {
				return e.backend, true
			}
		}
	}
	return nil, false
}
