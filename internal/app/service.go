// Package app wires the catalog, history, favorites and pager into the single
// service object the presenters talk to.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/countrysearch/internal/catalog"
	"github.com/thesavant42/countrysearch/internal/favorites"
	"github.com/thesavant42/countrysearch/internal/history"
	"github.com/thesavant42/countrysearch/internal/models"
	"github.com/thesavant42/countrysearch/internal/pager"
	"github.com/thesavant42/countrysearch/internal/store"
)

// DefaultMinQueryLength is the shortest query Search accepts
const DefaultMinQueryLength = 3

// Options configures a Service. Zero values select the defaults.
type Options struct {
	PageSize       int
	MinQueryLength int
	HistoryLimit   int

	CacheTTL  time.Duration
	Locale    string
	KeyPolicy catalog.KeyPolicy
	Now       func() time.Time

	OnStatus StatusFunc
	Logger   *log.Logger
}

// View is what the presenter renders for the current dataset
type View struct {
	Items   []models.Country
	Paging  pager.Descriptor
	Buttons []pager.Button
	Query   string // empty when showing all countries
}

// Service is constructed once at startup and shared by every presenter
type Service struct {
	store     store.Store
	catalog   *catalog.Catalog
	history   *history.History
	favorites *favorites.Registry
	logger    *log.Logger

	pageSize int
	minQuery int

	statusMu sync.Mutex
	onStatus StatusFunc

	mu      sync.Mutex
	dataset []models.Country
	page    int
	query   string
}

// New builds the service and its components over fetcher and s
func New(fetcher catalog.Fetcher, s store.Store, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = pager.DefaultPageSize
	}
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = DefaultMinQueryLength
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	svc := &Service{
		store:     s,
		history:   history.New(s, opts.HistoryLimit, opts.Logger),
		favorites: favorites.New(s, opts.Logger),
		logger:    opts.Logger,
		pageSize:  opts.PageSize,
		minQuery:  opts.MinQueryLength,
		onStatus:  opts.OnStatus,
		page:      1,
	}
	svc.catalog = catalog.New(fetcher, s, catalog.Options{
		TTL:       opts.CacheTTL,
		Locale:    opts.Locale,
		KeyPolicy: opts.KeyPolicy,
		Now:       opts.Now,
		Logger:    opts.Logger,
		OnFetch: func() {
			svc.emit(Status{Kind: StatusInfo, Message: MsgLoading})
		},
	})
	return svc
}

// SetStatusFunc replaces the status callback
func (s *Service) SetStatusFunc(fn StatusFunc) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.onStatus = fn
}

func (s *Service) emit(st Status) {
	s.statusMu.Lock()
	fn := s.onStatus
	s.statusMu.Unlock()

	if st.IsError() {
		s.logger.Warn(st.Message)
	} else {
		s.logger.Debug(st.Message)
	}
	if fn != nil {
		fn(st)
	}
}

// LoadCatalog loads the dataset from cache or network
func (s *Service) LoadCatalog(ctx context.Context) error {
	src, err := s.catalog.Load(ctx)
	if err != nil {
		s.emit(Status{Kind: StatusError, Message: "Error: " + fetchCause(err)})
		return err
	}
	if src != catalog.SourceNone {
		s.emit(Status{Kind: StatusInfo, Message: MsgReady})
	}
	return nil
}

// fetchCause strips the sentinel prefix so the user sees the original cause
func fetchCause(err error) string {
	var fe *catalog.FetchError
	if errors.As(err, &fe) {
		return fe.Err.Error()
	}
	return err.Error()
}

// ValidateQuery reports a *ValidationError and emits the matching status
// when the trimmed query is shorter than the minimum length
func (s *Service) ValidateQuery(query string) error {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < s.minQuery {
		s.emit(Status{Kind: StatusError, Message: fmt.Sprintf(msgTooShortFmt, s.minQuery)})
		return &ValidationError{Query: q, MinLength: s.minQuery}
	}
	return nil
}

// Search runs a name search, shows page 1 of the results and records the
// query in the history. Queries shorter than the minimum length return an
// empty View and leave the current dataset and page alone.
func (s *Service) Search(query string) (View, error) {
	if err := s.ValidateQuery(query); err != nil {
		return View{}, err
	}
	q := strings.TrimSpace(query)

	results := s.catalog.Search(q)

	s.mu.Lock()
	s.dataset = results
	s.query = q
	s.page = 1
	view, status := s.renderLocked()
	s.mu.Unlock()

	s.history.Record(q)
	s.emit(status)
	return view, nil
}

// SearchFromHistory replays a history entry
func (s *Service) SearchFromHistory(query string) (View, error) {
	return s.Search(query)
}

// ShowAll switches the dataset to every country, page 1
func (s *Service) ShowAll() View {
	all := s.catalog.All()

	s.mu.Lock()
	s.dataset = all
	s.query = ""
	s.page = 1
	view, status := s.renderLocked()
	s.mu.Unlock()

	s.emit(status)
	return view
}

// GoToPage shows page n of the current dataset, clamped to the valid range
func (s *Service) GoToPage(n int) View {
	s.mu.Lock()
	s.page = n
	view, status := s.renderLocked()
	s.mu.Unlock()

	s.emit(status)
	return view
}

// NextPage moves one page forward
func (s *Service) NextPage() View {
	return s.movePage(1)
}

// PrevPage moves one page back
func (s *Service) PrevPage() View {
	return s.movePage(-1)
}

func (s *Service) movePage(delta int) View {
	s.mu.Lock()
	s.page += delta
	view, status := s.renderLocked()
	s.mu.Unlock()

	s.emit(status)
	return view
}

// CurrentView renders the current page without emitting a status
func (s *Service) CurrentView() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, _ := s.renderLocked()
	return view
}

// renderLocked paginates the dataset and stores the clamped page. Caller holds s.mu.
func (s *Service) renderLocked() (View, Status) {
	p := pager.Paginate(s.dataset, s.page, s.pageSize)
	s.page = p.CurrentPage

	view := View{
		Items:   p.Items,
		Paging:  p.Descriptor(),
		Buttons: pager.BuildPageButtons(p.TotalPages, p.CurrentPage),
		Query:   s.query,
	}
	if p.Total == 0 {
		return view, Status{Kind: StatusInfo, Message: MsgNothing}
	}
	return view, Status{
		Kind:    StatusInfo,
		Message: fmt.Sprintf(msgResultsFmt, p.Total, p.CurrentPage, p.TotalPages),
	}
}

// ToggleFavorite flips name in the favorites and returns the stored state
// and list. ErrFavoriteNotSaved means the write failed and nothing changed.
func (s *Service) ToggleFavorite(name string) (bool, []string, error) {
	before := s.favorites.IsFavorite(name)
	fav := s.favorites.Toggle(name)
	if fav == before {
		s.emit(Status{Kind: StatusError, Message: MsgFavoriteNotSaved})
		return fav, s.favorites.List(), fmt.Errorf("%w: %s", ErrFavoriteNotSaved, name)
	}
	s.logger.Debug("Toggled favorite", "name", name, "favorite", fav)
	return fav, s.favorites.List(), nil
}

// IsFavorite reports whether name is bookmarked
func (s *Service) IsFavorite(name string) bool {
	return s.favorites.IsFavorite(name)
}

// Favorites returns the bookmarked names in insertion order
func (s *Service) Favorites() []string {
	return s.favorites.List()
}

// History returns recent queries, most recent first
func (s *Service) History() []string {
	return s.history.List()
}

// CatalogState returns the catalog lifecycle state
func (s *Service) CatalogState() catalog.State {
	return s.catalog.State()
}

// CacheStats returns the catalog search cache counters
func (s *Service) CacheStats() catalog.Stats {
	return s.catalog.Stats()
}

// Country looks up a held record by exact common name
func (s *Service) Country(name string) (models.Country, bool) {
	for _, c := range s.catalog.All() {
		if c.Name.Common == name {
			return c, true
		}
	}
	return models.Country{}, false
}

// ClearStorage drops every persisted key. The in-memory dataset is kept.
func (s *Service) ClearStorage() error {
	c, ok := s.store.(store.Clearer)
	if !ok {
		return fmt.Errorf("store %T cannot be cleared", s.store)
	}
	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	s.logger.Info("Storage cleared")
	return nil
}
