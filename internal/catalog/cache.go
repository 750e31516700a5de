package catalog

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/countrysearch/internal/models"
	"github.com/thesavant42/countrysearch/internal/store"
)

// Storage keys shared with the rest of the app
const (
	KeyCountries       = "countries_cache"
	KeyCountriesExpiry = "countries_cache_expiry"
	KeySearchResults   = "search_results_cache"
)

// DefaultTTL is how long a fetched dataset stays valid
const DefaultTTL = 24 * time.Hour

// CachedDataset is the persisted copy of the last successful fetch
type CachedDataset struct {
	Records   []models.Country
	FetchedAt time.Time
	ExpiresAt time.Time
}

// datasetCache reads and writes the dataset and search-result entries.
// Every failure is logged and degrades to a cache miss.
type datasetCache struct {
	store  store.Store
	ttl    time.Duration
	logger *log.Logger
}

// load returns the cached dataset if it exists, parses, and has not expired
func (d *datasetCache) load(now time.Time) (*CachedDataset, bool) {
	rawExpiry, ok, err := d.store.Get(KeyCountriesExpiry)
	if err != nil {
		d.logger.Warn("Failed to read dataset expiry", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	expiryMs, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		d.logger.Warn("Ignoring invalid dataset expiry", "value", rawExpiry)
		return nil, false
	}
	expiresAt := time.UnixMilli(expiryMs)
	if !now.Before(expiresAt) {
		d.logger.Debug("Cached dataset expired", "expired_at", expiresAt)
		return nil, false
	}

	raw, ok, err := d.store.Get(KeyCountries)
	if err != nil {
		d.logger.Warn("Failed to read cached dataset", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var records []models.Country
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		d.logger.Warn("Ignoring corrupted dataset cache", "error", err)
		return nil, false
	}
	if len(records) == 0 {
		return nil, false
	}

	d.logger.Info("Loaded countries from cache", "count", len(records))
	return &CachedDataset{
		Records:   records,
		FetchedAt: expiresAt.Add(-d.ttl),
		ExpiresAt: expiresAt,
	}, true
}

// save persists records with expiresAt = now + ttl.
// The expiry is only written after the records, so a failed write never
// leaves a fresh expiry pointing at stale data.
func (d *datasetCache) save(records []models.Country, now time.Time) *CachedDataset {
	ds := &CachedDataset{
		Records:   records,
		FetchedAt: now,
		ExpiresAt: now.Add(d.ttl),
	}

	data, err := json.Marshal(records)
	if err != nil {
		d.logger.Warn("Failed to encode dataset", "error", err)
		return ds
	}
	if err := d.store.Set(KeyCountries, string(data)); err != nil {
		d.logger.Warn("Countries not saved to cache", "error", err)
		return ds
	}
	expiry := strconv.FormatInt(ds.ExpiresAt.UnixMilli(), 10)
	if err := d.store.Set(KeyCountriesExpiry, expiry); err != nil {
		d.logger.Warn("Dataset expiry not saved", "error", err)
		return ds
	}

	d.logger.Info("Countries saved to cache", "count", len(records), "expires_at", ds.ExpiresAt)
	return ds
}

// results loads the whole query -> results object
func (d *datasetCache) results() map[string][]models.Country {
	entries := make(map[string][]models.Country)

	raw, ok, err := d.store.Get(KeySearchResults)
	if err != nil {
		d.logger.Warn("Failed to read search cache", "error", err)
		return entries
	}
	if !ok {
		return entries
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		d.logger.Warn("Ignoring corrupted search cache", "error", err)
		return make(map[string][]models.Country)
	}
	return entries
}

func (d *datasetCache) getResults(key string) ([]models.Country, bool) {
	hit, ok := d.results()[key]
	return hit, ok
}

func (d *datasetCache) putResults(key string, results []models.Country) {
	entries := d.results()
	entries[key] = results

	data, err := json.Marshal(entries)
	if err != nil {
		d.logger.Warn("Failed to encode search cache", "error", err)
		return
	}
	if err := d.store.Set(KeySearchResults, string(data)); err != nil {
		d.logger.Warn("Search results not cached", "query", key, "error", err)
	}
}
