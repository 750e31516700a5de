package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesavant42/countrysearch/internal/api"
	"github.com/thesavant42/countrysearch/internal/app"
	"github.com/thesavant42/countrysearch/internal/models"
	"github.com/thesavant42/countrysearch/internal/pager"
	"github.com/thesavant42/countrysearch/internal/store"
)

func TestMapHost(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://goo.gl/maps/g7QxxSFsWyTPKuzd7", "goo.gl"},
		{"https://www.openstreetmap.org/relation/1403916", "openstreetmap.org"},
		{"https://maps.google.co.uk/?q=london", "google.co.uk"},
		{"", ""},
		{"not a url", ""},
		{"http://localhost:8080/map", "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.want, MapHost(tt.link))
		})
	}
}

func TestFormatPopulation(t *testing.T) {
	assert.Equal(t, "0", FormatPopulation(0))
	assert.Equal(t, "999", FormatPopulation(999))
	assert.Equal(t, "67,391,582", FormatPopulation(67391582))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "France", truncate("France", 10))
	assert.Equal(t, "Unit...", truncate("United Kingdom", 7))
	assert.Equal(t, "Un", truncate("United Kingdom", 2))
	assert.Equal(t, "", truncate("France", 0))
	assert.Equal(t, "Åla...", truncate("Åland Islands", 6))
}

func TestCalculateColumns(t *testing.T) {
	columns := CalculateColumns(CountryColumns(), 106)
	require.Len(t, columns, 6)
	assert.Equal(t, 2, columns[0].Width)
	assert.Equal(t, 14, columns[3].Width)

	total := 0
	for _, c := range columns {
		total += c.Width + 2
	}
	assert.LessOrEqual(t, total, 106)

	// Minimums win on narrow terminals
	narrow := CalculateColumns(CountryColumns(), 10)
	assert.GreaterOrEqual(t, narrow[1].Width, 16)
}

func TestCountryRows(t *testing.T) {
	countries := []models.Country{
		{
			Name:       models.CountryName{Common: "Switzerland"},
			Capital:    models.Capitals{"Bern"},
			Population: 8654622,
			Languages:  map[string]string{"fra": "French", "deu": "German"},
			Currencies: map[string]models.Currency{"CHF": {Name: "Swiss franc", Symbol: "Fr."}},
		},
		{Name: models.CountryName{Common: "Antarctica"}},
	}
	columns := CalculateColumns(CountryColumns(), 200)

	rows := CountryRows(countries, columns, func(name string) bool { return name == "Antarctica" })
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"", "Switzerland", "Bern", "8,654,622", "French, German", "Swiss franc (Fr.)"}, []string(rows[0]))
	assert.Equal(t, []string{"★", "Antarctica", "-", "0", "-", "-"}, []string(rows[1]))

	assert.NotPanics(t, func() { CountryRows(countries, columns, nil) })
}

func TestNameRows(t *testing.T) {
	columns := CalculateColumns(NameListColumns("Recent searches"), 80)
	rows := NameRows([]string{"fra", "ger"}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "fra"}, []string(rows[0]))
	assert.Equal(t, []string{"2", "ger"}, []string(rows[1]))
}

func TestRenderPageButtons(t *testing.T) {
	assert.Equal(t, "", RenderPageButtons(pager.Descriptor{Total: 3, TotalPages: 1, CurrentPage: 1}))

	out := RenderPageButtons(pager.Descriptor{Total: 300, TotalPages: 10, CurrentPage: 5})
	for _, want := range []string{"«", "»", "…", "1", "5", "10"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "7")

	first := RenderPageButtons(pager.Descriptor{Total: 61, TotalPages: 3, CurrentPage: 1})
	assert.NotContains(t, first, "«")
	assert.Contains(t, first, "»")
}

func TestRenderCountryDetail(t *testing.T) {
	c := models.Country{
		Name:       models.CountryName{Common: "France", Official: "French Republic"},
		Capital:    models.Capitals{"Paris"},
		Population: 67391582,
		Flags:      models.Flags{SVG: "https://flagcdn.com/fr.svg", Alt: "Three vertical bands"},
		Maps:       models.Maps{GoogleMaps: "https://goo.gl/maps/g7QxxSFsWyTPKuzd7"},
	}

	out := RenderCountryDetail(c, true, 100)
	for _, want := range []string{"France ★", "French Republic", "Paris", "67,391,582", "fr.svg", "Map (goo.gl)"} {
		assert.Contains(t, out, want)
	}
}

func TestNewLayout(t *testing.T) {
	l := NewLayout(50, 10)
	assert.Equal(t, MinViewportWidth, l.ViewportWidth)
	assert.Equal(t, MinViewportHeight, l.ViewportHeight)
	assert.Equal(t, MinTableHeight, l.TableHeight)

	l = NewLayout(500, 60)
	assert.Equal(t, MaxViewportWidth, l.ViewportWidth)
	assert.Equal(t, MaxViewportWidth-2, l.InnerWidth)
}

type stubFetcher struct {
	records []models.Country
	err     error
}

func (f stubFetcher) FetchAll(ctx context.Context) ([]models.Country, error) {
	return f.records, f.err
}

func sampleCountries() []models.Country {
	names := []string{"Finland", "France", "Iceland", "Ireland", "Åland Islands"}
	out := make([]models.Country, len(names))
	for i, n := range names {
		out[i] = models.Country{Name: models.CountryName{Common: n}}
	}
	return out
}

func newTestModel(t *testing.T, f stubFetcher) SearchModel {
	t.Helper()
	svc := app.New(f, store.NewMemory(0), app.Options{})
	m := NewSearchModel(context.Background(), svc, nil)
	return update(t, m, m.loadCatalog()())
}

func update(t *testing.T, m SearchModel, msg tea.Msg) SearchModel {
	t.Helper()
	next, _ := m.Update(msg)
	sm, ok := next.(SearchModel)
	require.True(t, ok)
	return sm
}

func typeText(t *testing.T, m SearchModel, s string) SearchModel {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func key(t *testing.T, m SearchModel, k tea.KeyType) SearchModel {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: k})
}

func drainStatus(m SearchModel) app.Status {
	var last app.Status
	for {
		select {
		case st := <-m.statusCh:
			last = st
		default:
			return last
		}
	}
}

func TestSearchModelLoadAndSearch(t *testing.T) {
	m := newTestModel(t, stubFetcher{records: sampleCountries()})
	assert.False(t, m.loading)
	assert.NoError(t, m.loadErr)
	assert.Equal(t, app.MsgReady, drainStatus(m).Message)

	m = typeText(t, m, "land")
	m = key(t, m, tea.KeyEnter)
	assert.False(t, m.inputMode)
	require.Len(t, m.view.Items, 4)
	assert.Equal(t, "Åland Islands", m.view.Items[0].Name.Common)
	assert.Len(t, m.table.Rows(), 4)
	assert.Equal(t, "4 results • Page 1/1", drainStatus(m).Message)

	view := m.View()
	assert.Contains(t, view, "Query: land")
	assert.Contains(t, view, "Finland")
}

func TestSearchModelShortQuery(t *testing.T) {
	m := newTestModel(t, stubFetcher{records: sampleCountries()})
	drainStatus(m)

	m = typeText(t, m, "fr")
	m = key(t, m, tea.KeyEnter)
	assert.True(t, m.inputMode)
	st := drainStatus(m)
	assert.True(t, st.IsError())
	assert.Equal(t, "Type at least 3 characters.", st.Message)
	assert.Empty(t, m.svc.History())
}

func TestSearchModelFavoritesAndTabs(t *testing.T) {
	m := newTestModel(t, stubFetcher{records: sampleCountries()})

	m = typeText(t, m, "fra")
	m = key(t, m, tea.KeyEnter)
	require.Len(t, m.view.Items, 1)

	m = typeText(t, m, "f")
	assert.True(t, m.svc.IsFavorite("France"))
	assert.Equal(t, "★", m.table.Rows()[0][0])

	m = key(t, m, tea.KeyTab)
	assert.Equal(t, tabHistory, m.tab)
	assert.Equal(t, "fra", m.table.Rows()[0][1])

	m = key(t, m, tea.KeyTab)
	assert.Equal(t, tabFavorites, m.tab)
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "France", m.table.Rows()[0][1])

	m = key(t, m, tea.KeyEnter)
	require.NotNil(t, m.detail)
	assert.Equal(t, "France", m.detail.Name.Common)

	m = typeText(t, m, "f")
	assert.False(t, m.svc.IsFavorite("France"))
	assert.Empty(t, m.table.Rows())
}

func TestSearchModelFavoriteNotSaved(t *testing.T) {
	svc := app.New(stubFetcher{records: sampleCountries()}, store.NewMemory(10), app.Options{})
	m := NewSearchModel(context.Background(), svc, nil)
	m = update(t, m, m.loadCatalog()())

	m = typeText(t, m, "fra")
	m = key(t, m, tea.KeyEnter)
	require.Len(t, m.view.Items, 1)

	m = typeText(t, m, "f")
	assert.False(t, m.svc.IsFavorite("France"))
	assert.True(t, m.status.IsError())
	assert.Equal(t, app.MsgFavoriteNotSaved, m.status.Message)
	assert.NotContains(t, m.status.Message, "Removed")
}

func TestSearchModelHistoryReplay(t *testing.T) {
	m := newTestModel(t, stubFetcher{records: sampleCountries()})

	m = typeText(t, m, "ice")
	m = key(t, m, tea.KeyEnter)
	m = typeText(t, m, "/")
	assert.True(t, m.inputMode)
	m = typeText(t, m, "fin")
	m = key(t, m, tea.KeyEnter)
	assert.Equal(t, []string{"fin", "ice"}, m.svc.History())

	m = key(t, m, tea.KeyTab)
	m = key(t, m, tea.KeyDown)
	m = key(t, m, tea.KeyEnter)
	assert.Equal(t, tabResults, m.tab)
	assert.Equal(t, "ice", m.view.Query)
	require.Len(t, m.view.Items, 1)
	assert.Equal(t, "Iceland", m.view.Items[0].Name.Common)
}

func TestSearchModelEscQuitsWhenEmpty(t *testing.T) {
	m := newTestModel(t, stubFetcher{records: sampleCountries()})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(SearchModel)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.Equal(t, "", m.View())
}

func TestSearchModelPaging(t *testing.T) {
	records := make([]models.Country, 65)
	for i := range records {
		records[i] = models.Country{Name: models.CountryName{Common: "Land " + strings.Repeat("x", i+1)}}
	}
	m := newTestModel(t, stubFetcher{records: records})

	m = typeText(t, m, "land")
	m = key(t, m, tea.KeyEnter)
	assert.Equal(t, pager.Descriptor{Total: 65, TotalPages: 3, CurrentPage: 1}, m.view.Paging)

	m = typeText(t, m, "n")
	assert.Equal(t, 2, m.view.Paging.CurrentPage)
	m = key(t, m, tea.KeyRight)
	assert.Equal(t, 3, m.view.Paging.CurrentPage)
	assert.Len(t, m.table.Rows(), 5)
	m = typeText(t, m, "n")
	assert.Equal(t, 3, m.view.Paging.CurrentPage)
	m = typeText(t, m, "p")
	assert.Equal(t, 2, m.view.Paging.CurrentPage)
	m = key(t, m, tea.KeyHome)
	assert.Equal(t, 1, m.view.Paging.CurrentPage)

	m = key(t, m, tea.KeyEnd)
	assert.Equal(t, 3, m.view.Paging.CurrentPage)
	m = typeText(t, m, "a")
	assert.Equal(t, pager.Descriptor{Total: 65, TotalPages: 3, CurrentPage: 1}, m.view.Paging)
	assert.Equal(t, "", m.view.Query)
}

func TestSearchModelLoadFailureAndRetry(t *testing.T) {
	svc := app.New(stubFetcher{err: &api.StatusError{StatusCode: 503}}, store.NewMemory(0), app.Options{})
	m := NewSearchModel(context.Background(), svc, nil)
	m = update(t, m, m.loadCatalog()())

	require.Error(t, m.loadErr)
	st := drainStatus(m)
	assert.True(t, st.IsError())
	assert.Equal(t, "Error: Network error 503", st.Message)

	m = update(t, m, statusMsg(st))
	assert.Contains(t, m.View(), "ctrl+r: retry")

	// Enter does nothing useful until the catalog loads, but does not panic
	m = typeText(t, m, "fra")
	m = key(t, m, tea.KeyEnter)
	assert.Empty(t, m.view.Items)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(SearchModel)
	assert.True(t, m.loading)
	assert.NotNil(t, cmd)
}
