// Package favorites keeps the set of bookmarked country names.
package favorites

import (
	"encoding/json"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/countrysearch/internal/store"
)

// Key is the storage key of the persisted list
const Key = "favorite"

// Registry is a set of country common names in insertion order.
// Every mutation rewrites the whole list.
type Registry struct {
	store  store.Store
	logger *log.Logger
}

// New creates a Registry over s
func New(s store.Store, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Registry{store: s, logger: logger}
}

// List returns the favorites in the order they were added
func (r *Registry) List() []string {
	raw, ok, err := r.store.Get(Key)
	if err != nil {
		r.logger.Warn("Failed to read favorites", "error", err)
		return []string{}
	}
	if !ok {
		return []string{}
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		r.logger.Warn("Ignoring corrupted favorites", "error", err)
		return []string{}
	}
	if names == nil {
		return []string{}
	}
	return names
}

// IsFavorite reports whether name is bookmarked
func (r *Registry) IsFavorite(name string) bool {
	return slices.Contains(r.List(), name)
}

// Add appends name unless it is already present
func (r *Registry) Add(name string) {
	names := r.List()
	if slices.Contains(names, name) {
		return
	}
	r.save(append(names, name))
}

// Remove drops name if present
func (r *Registry) Remove(name string) {
	names := r.List()
	if !slices.Contains(names, name) {
		return
	}
	r.save(slices.DeleteFunc(names, func(n string) bool { return n == name }))
}

// Toggle flips the membership of name and returns the stored state afterwards
func (r *Registry) Toggle(name string) bool {
	if r.IsFavorite(name) {
		r.Remove(name)
	} else {
		r.Add(name)
	}
	return r.IsFavorite(name)
}

func (r *Registry) save(names []string) {
	data, err := json.Marshal(names)
	if err != nil {
		r.logger.Warn("Failed to encode favorites", "error", err)
		return
	}
	if err := r.store.Set(Key, string(data)); err != nil {
		r.logger.Warn("Favorites not saved", "error", err)
	}
}
