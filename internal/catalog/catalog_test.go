package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesavant42/countrysearch/internal/api"
	"github.com/thesavant42/countrysearch/internal/models"
	"github.com/thesavant42/countrysearch/internal/store"
)

// fakeFetcher counts calls and can block until released
type fakeFetcher struct {
	records []models.Country
	err     error
	calls   atomic.Int32
	release chan struct{}
}

func (f *fakeFetcher) FetchAll(ctx context.Context) ([]models.Country, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func country(name string) models.Country {
	return models.Country{Name: models.CountryName{Common: name}}
}

func sampleCountries() []models.Country {
	return []models.Country{
		country("Germany"),
		country("Åland Islands"),
		country("France"),
		country("Albania"),
		country("French Guiana"),
		country("French Polynesia"),
		country("Algeria"),
		country("Niger"),
		country("Nigeria"),
		country("Iceland"),
		country("Finland"),
	}
}

// fixedClock returns a controllable time source
type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func names(cs []models.Country) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name.Common
	}
	return out
}

func newLoaded(t *testing.T, opts Options) (*Catalog, *store.Memory) {
	t.Helper()
	s := store.NewMemory(0)
	c := New(&fakeFetcher{records: sampleCountries()}, s, opts)
	src, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, SourceNetwork, src)
	return c, s
}

func TestLoadFetchesAndCaches(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := store.NewMemory(0)
	f := &fakeFetcher{records: sampleCountries()}

	var fetchStarted int
	c := New(f, s, Options{Now: clock.Now, OnFetch: func() { fetchStarted++ }})
	assert.Equal(t, StateEmpty, c.State())

	src, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, src)
	assert.Equal(t, StateLoaded, c.State())
	assert.Equal(t, 1, fetchStarted)
	assert.Len(t, c.All(), len(sampleCountries()))

	expiry, ok, err := s.Get(KeyCountriesExpiry)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(clock.t.Add(24*time.Hour).UnixMilli(), 10), expiry)

	ds := c.Dataset()
	require.NotNil(t, ds)
	assert.Equal(t, ds.FetchedAt.Add(24*time.Hour), ds.ExpiresAt)

	// Loaded is terminal
	src, err = c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceNone, src)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestLoadWithinTTLMakesNoNetworkCall(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := store.NewMemory(0)

	first := &fakeFetcher{records: sampleCountries()}
	_, err := New(first, s, Options{Now: clock.Now}).Load(context.Background())
	require.NoError(t, err)

	// A new process 23h59m later reads the persisted dataset
	clock.t = clock.t.Add(24*time.Hour - time.Minute)
	second := &fakeFetcher{records: sampleCountries()}
	c := New(second, s, Options{Now: clock.Now})

	src, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceCache, src)
	assert.Equal(t, int32(0), second.calls.Load())
	assert.Equal(t, names(sampleCountries()), names(c.All()))
}

func TestLoadAfterExpiryFetchesAgain(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := store.NewMemory(0)

	_, err := New(&fakeFetcher{records: sampleCountries()}, s, Options{Now: clock.Now}).Load(context.Background())
	require.NoError(t, err)

	clock.t = clock.t.Add(24 * time.Hour)
	f := &fakeFetcher{records: []models.Country{country("Peru")}}
	c := New(f, s, Options{Now: clock.Now})

	src, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, src)
	assert.Equal(t, int32(1), f.calls.Load())

	// The new fetch supersedes the old dataset, it is never merged
	assert.Equal(t, []string{"Peru"}, names(c.All()))
}

func TestLoadIgnoresCorruptedCache(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	tests := []struct {
		name      string
		countries string
		expiry    string
	}{
		{"bad json", `{not json`, strconv.FormatInt(clock.t.Add(time.Hour).UnixMilli(), 10)},
		{"bad expiry", `[{"name":{"common":"Peru"}}]`, "tomorrow"},
		{"empty list", `[]`, strconv.FormatInt(clock.t.Add(time.Hour).UnixMilli(), 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemory(0)
			require.NoError(t, s.Set(KeyCountries, tt.countries))
			require.NoError(t, s.Set(KeyCountriesExpiry, tt.expiry))

			f := &fakeFetcher{records: sampleCountries()}
			src, err := New(f, s, Options{Now: clock.Now}).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, SourceNetwork, src)
			assert.Equal(t, int32(1), f.calls.Load())
		})
	}
}

func TestLoadFailureIsRetryable(t *testing.T) {
	s := store.NewMemory(0)
	f := &fakeFetcher{err: &api.StatusError{StatusCode: 503}}
	c := New(f, s, Options{})

	src, err := c.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, SourceNone, src)
	assert.Equal(t, StateEmpty, c.State())
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "Network error 503")

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 503, fe.StatusCode)

	assert.Empty(t, c.Search("fra"), "search before load yields nothing")

	f.err = nil
	f.records = sampleCountries()
	src, err = c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, src)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestLoadEmptyPayloadIsFailure(t *testing.T) {
	c := New(&fakeFetcher{records: []models.Country{}}, store.NewMemory(0), Options{})
	_, err := c.Load(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Equal(t, StateEmpty, c.State())
}

func TestLoadConcurrentCallersShareOneFetch(t *testing.T) {
	f := &fakeFetcher{records: sampleCountries(), release: make(chan struct{})}
	fetching := make(chan struct{})
	c := New(f, store.NewMemory(0), Options{OnFetch: func() { close(fetching) }})

	done := make(chan Source, 1)
	go func() {
		src, _ := c.Load(context.Background())
		done <- src
	}()
	<-fetching
	assert.Equal(t, StateLoading, c.State())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src, err := c.Load(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, SourceNone, src)
		}()
	}
	wg.Wait()

	close(f.release)
	assert.Equal(t, SourceNetwork, <-done)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestLoadSurvivesCacheWriteFailure(t *testing.T) {
	s := store.NewMemory(10)
	c := New(&fakeFetcher{records: sampleCountries()}, s, Options{})

	src, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, src)
	assert.Equal(t, StateLoaded, c.State())

	_, ok, _ := s.Get(KeyCountriesExpiry)
	assert.False(t, ok, "no expiry written without the records")

	assert.NotEmpty(t, c.Search("fra"))
}

func TestSearchFiltersAndSorts(t *testing.T) {
	c, _ := newLoaded(t, Options{})

	tests := []struct {
		query string
		want  []string
	}{
		{"fr", []string{"France", "French Guiana", "French Polynesia"}},
		{"  FRENCH ", []string{"French Guiana", "French Polynesia"}},
		{"al", []string{"Albania", "Algeria"}},
		{"land", []string{"Åland Islands", "Finland", "Iceland"}},
		{"niger", []string{"Niger", "Nigeria"}},
		{"xyz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := c.Search(tt.query)
			assert.Equal(t, tt.want, names(got))

			q := strings.ToLower(strings.TrimSpace(tt.query))
			for _, country := range got {
				assert.Contains(t, strings.ToLower(country.Name.Common), q)
			}
		})
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	c, s := newLoaded(t, Options{})

	assert.Empty(t, c.Search(""))
	assert.Empty(t, c.Search("   "))

	_, ok, err := s.Get(KeySearchResults)
	require.NoError(t, err)
	assert.False(t, ok, "empty queries are never cached")
	assert.Equal(t, 0, c.Stats().Filters)
}

func TestSearchCacheHit(t *testing.T) {
	c, s := newLoaded(t, Options{})

	first := c.Search("fra")
	assert.Equal(t, Stats{Misses: 1, Filters: 1, Fetches: 1}, c.Stats())

	second := c.Search("fra")
	assert.Equal(t, first, second)
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Filters: 1, Fetches: 1}, c.Stats())

	raw, ok, err := s.Get(KeySearchResults)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"fra":[`)
}

func TestSearchCacheHitReturnsStoredListUnchanged(t *testing.T) {
	c, s := newLoaded(t, Options{})

	// A persisted entry wins over the live dataset
	require.NoError(t, s.Set(KeySearchResults, `{"zzz":[{"name":{"common":"Atlantis"}}]}`))
	assert.Equal(t, []string{"Atlantis"}, names(c.Search("zzz")))
	assert.Equal(t, 0, c.Stats().Filters)
}

func TestSearchCacheKeyPolicy(t *testing.T) {
	t.Run("raw", func(t *testing.T) {
		c, _ := newLoaded(t, Options{KeyPolicy: KeyRaw})
		c.Search("France")
		c.Search("france")
		assert.Equal(t, 2, c.Stats().Filters, "different casing misses the raw key")
	})

	t.Run("normalized", func(t *testing.T) {
		c, _ := newLoaded(t, Options{KeyPolicy: KeyNormalized})
		c.Search("France")
		c.Search(" france ")
		assert.Equal(t, 1, c.Stats().Filters)
		assert.Equal(t, 1, c.Stats().Hits)
	})
}

func TestSearchCacheWriteFailureIsNonFatal(t *testing.T) {
	s := store.NewMemory(0)
	c := New(&fakeFetcher{records: sampleCountries()}, s, Options{})
	_, err := c.Load(context.Background())
	require.NoError(t, err)

	// Corrupt the search cache; the next search overwrites it
	require.NoError(t, s.Set(KeySearchResults, `[broken`))
	assert.Equal(t, []string{"Niger", "Nigeria"}, names(c.Search("nig")))

	raw, _, _ := s.Get(KeySearchResults)
	assert.True(t, strings.HasPrefix(raw, `{"nig":`))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "loaded", StateLoaded.String())
}
