// Package catalog owns the country dataset: it loads it once (from the
// persistent cache or the network), and answers name searches with a
// persisted per-query result cache.
package catalog

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/countrysearch/internal/models"
	"github.com/thesavant42/countrysearch/internal/store"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Fetcher downloads the full country list
type Fetcher interface {
	FetchAll(ctx context.Context) ([]models.Country, error)
}

// State is the catalog lifecycle state
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "empty"
	}
}

// Source tells where a Load call got its records from
type Source int

const (
	SourceNone    Source = iota // no-op: already loading or loaded
	SourceCache                 // unexpired persisted dataset
	SourceNetwork               // fresh fetch
)

// KeyPolicy selects how search queries map to result-cache keys
type KeyPolicy int

const (
	// KeyRaw keys on the query exactly as given, so "France" and "france"
	// are separate entries with identical content.
	KeyRaw KeyPolicy = iota
	// KeyNormalized keys on the trimmed, lowercased query.
	KeyNormalized
)

// Stats counts search cache activity
type Stats struct {
	Hits    int // searches answered from the result cache
	Misses  int // searches that had to filter
	Filters int // filter passes over the dataset
	Fetches int // successful network fetches
}

// Options configures a Catalog. Zero values select the defaults.
type Options struct {
	TTL       time.Duration // dataset lifetime, default 24h
	Locale    string        // BCP 47 tag for name collation, default "en"
	KeyPolicy KeyPolicy
	OnFetch   func() // called when a network fetch starts
	Now       func() time.Time
	Logger    *log.Logger
}

// Catalog holds the country dataset
type Catalog struct {
	fetcher  Fetcher
	cache    datasetCache
	keys     KeyPolicy
	onFetch  func()
	now      func() time.Time
	logger   *log.Logger
	collator *collate.Collator

	mu      sync.Mutex
	state   State
	records []models.Country
	loaded  *CachedDataset
	stats   Stats
}

// New creates an Empty catalog backed by fetcher and s
func New(fetcher Fetcher, s store.Store, opts Options) *Catalog {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	tag, err := language.Parse(opts.Locale)
	if err != nil {
		if opts.Locale != "" {
			opts.Logger.Warn("Unknown locale, using English collation", "locale", opts.Locale)
		}
		tag = language.English
	}

	return &Catalog{
		fetcher: fetcher,
		cache: datasetCache{
			store:  s,
			ttl:    opts.TTL,
			logger: opts.Logger,
		},
		keys:     opts.KeyPolicy,
		onFetch:  opts.OnFetch,
		now:      opts.Now,
		logger:   opts.Logger,
		collator: collate.New(tag),
	}
}

// Load brings the catalog to Loaded. It is a no-op while a load is in
// flight or after it succeeded, so at most one fetch runs at a time.
func (c *Catalog) Load(ctx context.Context) (Source, error) {
	c.mu.Lock()
	if c.state != StateEmpty {
		c.mu.Unlock()
		return SourceNone, nil
	}

	if ds, ok := c.cache.load(c.now()); ok {
		c.records = ds.Records
		c.loaded = ds
		c.state = StateLoaded
		c.mu.Unlock()
		return SourceCache, nil
	}

	c.state = StateLoading
	c.mu.Unlock()

	if c.onFetch != nil {
		c.onFetch()
	}
	records, err := c.fetcher.FetchAll(ctx)
	if err == nil && len(records) == 0 {
		err = errEmptyDataset
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = StateEmpty
		c.logger.Error("Failed to load countries", "error", err)
		return SourceNone, newFetchError(err)
	}

	c.records = records
	c.loaded = c.cache.save(records, c.now())
	c.state = StateLoaded
	c.stats.Fetches++
	return SourceNetwork, nil
}

// Search returns the countries whose common name contains query,
// ignoring case and surrounding whitespace, sorted by name.
// It returns nothing until the catalog is Loaded.
func (c *Catalog) Search(query string) []models.Country {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLoaded {
		return nil
	}
	q := normalize(query)
	if q == "" {
		return nil
	}

	key := c.cacheKey(query)
	if hit, ok := c.cache.getResults(key); ok {
		c.stats.Hits++
		c.logger.Debug("Loaded search results from cache", "query", key)
		return hit
	}

	c.stats.Misses++
	results := c.filter(q)
	c.cache.putResults(key, results)
	return results
}

// filter must be called with c.mu held; the collator is not safe for concurrent use
func (c *Catalog) filter(q string) []models.Country {
	c.stats.Filters++

	results := make([]models.Country, 0)
	for _, country := range c.records {
		if strings.Contains(strings.ToLower(country.Name.Common), q) {
			results = append(results, country)
		}
	}
	slices.SortStableFunc(results, func(a, b models.Country) int {
		return c.collator.CompareString(a.Name.Common, b.Name.Common)
	})
	return results
}

func (c *Catalog) cacheKey(query string) string {
	if c.keys == KeyNormalized {
		return normalize(query)
	}
	return query
}

// All returns a copy of every held record in dataset order
func (c *Catalog) All() []models.Country {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.records)
}

// State returns the current lifecycle state
func (c *Catalog) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dataset describes the loaded dataset, nil until Loaded
func (c *Catalog) Dataset() *CachedDataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded == nil {
		return nil
	}
	ds := *c.loaded
	ds.Records = slices.Clone(ds.Records)
	return &ds
}

// Stats returns a snapshot of the cache counters
func (c *Catalog) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
