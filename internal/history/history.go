// Package history keeps the most recent distinct search queries.
package history

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/countrysearch/internal/store"
)

const (
	// Key is the storage key of the persisted list
	Key = "searchHistory"
	// DefaultLimit is the number of queries kept
	DefaultLimit = 10
)

// History is an ordered list of queries, most recent first
type History struct {
	store  store.Store
	limit  int
	logger *log.Logger
}

// New creates a History over s. A limit <= 0 selects DefaultLimit.
func New(s store.Store, limit int, logger *log.Logger) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &History{store: s, limit: limit, logger: logger}
}

// List returns the persisted queries, or an empty list if none
func (h *History) List() []string {
	raw, ok, err := h.store.Get(Key)
	if err != nil {
		h.logger.Warn("Failed to read search history", "error", err)
		return []string{}
	}
	if !ok {
		return []string{}
	}

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		h.logger.Warn("Ignoring corrupted search history", "error", err)
		return []string{}
	}
	if entries == nil {
		return []string{}
	}
	return entries
}

// Record moves query to the front of the history and returns the new list.
// Blank queries are ignored and return the current list unchanged.
// A failed write is logged; the returned list is still the updated one.
func (h *History) Record(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return h.List()
	}

	entries := []string{query}
	for _, item := range h.List() {
		if item != query {
			entries = append(entries, item)
		}
	}
	if len(entries) > h.limit {
		entries = entries[:h.limit]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		h.logger.Warn("Failed to encode search history", "error", err)
		return entries
	}
	if err := h.store.Set(Key, string(data)); err != nil {
		h.logger.Warn("Search history not saved", "query", query, "error", err)
	}
	return entries
}
