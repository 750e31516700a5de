package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/thesavant42/countrysearch/internal/app"
	"github.com/thesavant42/countrysearch/internal/models"
)

type tab int

const (
	tabResults tab = iota
	tabHistory
	tabFavorites
)

var tabNames = []string{"Results", "History", "Favorites"}

// statusBuffer is how many undelivered status messages are kept
const statusBuffer = 32

// catalogLoadedMsg is sent when LoadCatalog returns
type catalogLoadedMsg struct {
	err error
}

// statusMsg carries a status emitted by the service
type statusMsg app.Status

// SearchModel is the TUI model for country search
type SearchModel struct {
	ctx       context.Context
	svc       *app.Service
	logger    *log.Logger
	layout    Layout
	table     table.Model
	textInput textinput.Model
	spinner   spinner.Model
	statusCh  chan app.Status

	tab       tab
	view      app.View
	status    app.Status
	detail    *models.Country
	loading   bool
	loadErr   error
	inputMode bool
	quitting  bool
}

// NewSearchModel creates the search TUI and routes the service status
// callback into it
func NewSearchModel(ctx context.Context, svc *app.Service, logger *log.Logger) SearchModel {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ti := textinput.New()
	ti.Placeholder = "Enter country name..."
	ti.Focus()
	ti.CharLimit = 64

	layout := DefaultLayout()
	t := table.New(
		table.WithColumns(CalculateColumns(CountryColumns(), layout.TableWidth)),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(layout.TableHeight),
	)
	ApplyTableStyles(&t)

	ch := make(chan app.Status, statusBuffer)
	svc.SetStatusFunc(func(st app.Status) {
		select {
		case ch <- st:
		default:
			logger.Debug("Status dropped", "message", st.Message)
		}
	})

	return SearchModel{
		ctx:       ctx,
		svc:       svc,
		logger:    logger,
		layout:    layout,
		table:     t,
		textInput: ti,
		spinner:   NewAppSpinner(),
		statusCh:  ch,
		view:      svc.CurrentView(),
		status:    app.Status{Message: app.MsgLoading},
		loading:   true,
		inputMode: true,
	}
}

// Init implements tea.Model
func (m SearchModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.loadCatalog(), waitForStatus(m.statusCh))
}

func (m SearchModel) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{err: m.svc.LoadCatalog(m.ctx)}
	}
}

func waitForStatus(ch <-chan app.Status) tea.Cmd {
	return func() tea.Msg {
		return statusMsg(<-ch)
	}
}

// Update implements tea.Model
func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = NewLayout(msg.Width, msg.Height)
		m.table.SetHeight(m.layout.TableHeight)
		m.textInput.Width = m.layout.InnerWidth - 12
		m.refreshTable()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		m.status = app.Status(msg)
		return m, waitForStatus(m.statusCh)

	case catalogLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		if msg.err != nil {
			m.logger.Error("Catalog load failed", "error", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "ctrl+r":
			return m.retryLoad()
		}
		if m.inputMode {
			return m.updateInput(msg)
		}
		return m.updateTable(msg)
	}

	return m, nil
}

func (m SearchModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.loading {
			return m, nil
		}
		view, err := m.svc.Search(m.textInput.Value())
		if err != nil {
			if !errors.Is(err, app.ErrValidationFailed) {
				m.logger.Error("Search failed", "error", err)
			}
			return m, nil
		}
		m.showResults(view)
		m.inputMode = false
		m.textInput.Blur()
		return m, nil

	case "esc":
		if m.view.Paging.Total == 0 && m.view.Query == "" {
			m.quitting = true
			return m, tea.Quit
		}
		m.inputMode = false
		m.textInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m SearchModel) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.detail != nil {
			m.detail = nil
			return m, nil
		}
		return m.enterInput()

	case "/":
		return m.enterInput()

	case "a":
		if !m.loading {
			m.showResults(m.svc.ShowAll())
		}

	case "n", "right":
		if m.tab == tabResults {
			m.showPage(m.svc.NextPage())
		}

	case "p", "left":
		if m.tab == tabResults {
			m.showPage(m.svc.PrevPage())
		}

	case "home":
		if m.tab == tabResults {
			m.showPage(m.svc.GoToPage(1))
		}

	case "end":
		if m.tab == tabResults {
			m.showPage(m.svc.GoToPage(m.view.Paging.TotalPages))
		}

	case "tab":
		m.switchTab((m.tab + 1) % tab(len(tabNames)))

	case "shift+tab":
		m.switchTab((m.tab + tab(len(tabNames)) - 1) % tab(len(tabNames)))

	case "f":
		if name, ok := m.selectedName(); ok {
			fav, _, err := m.svc.ToggleFavorite(name)
			if err != nil {
				m.logger.Warn("Favorite not saved", "name", name, "error", err)
				m.status = app.Status{Kind: app.StatusError, Message: app.MsgFavoriteNotSaved}
			} else if fav {
				m.status = app.Status{Message: fmt.Sprintf("Added %s to favorites.", name)}
			} else {
				m.status = app.Status{Message: fmt.Sprintf("Removed %s from favorites.", name)}
			}
			cursor := m.table.Cursor()
			m.refreshTable()
			m.table.SetCursor(cursor)
		}

	case "enter":
		return m.selectRow()

	case "up", "k":
		m.table.MoveUp(1)

	case "down", "j":
		m.table.MoveDown(1)
	}

	return m, nil
}

func (m SearchModel) retryLoad() (tea.Model, tea.Cmd) {
	if m.loadErr == nil || m.loading {
		return m, nil
	}
	m.loading = true
	m.loadErr = nil
	return m, tea.Batch(m.spinner.Tick, m.loadCatalog())
}

func (m SearchModel) enterInput() (tea.Model, tea.Cmd) {
	m.inputMode = true
	m.detail = nil
	m.textInput.SetValue("")
	m.textInput.Focus()
	return m, textinput.Blink
}

func (m SearchModel) selectRow() (tea.Model, tea.Cmd) {
	name, ok := m.selectedName()
	if !ok {
		return m, nil
	}

	switch m.tab {
	case tabResults, tabFavorites:
		if m.detail != nil && m.detail.Name.Common == name {
			m.detail = nil
			return m, nil
		}
		if c, ok := m.svc.Country(name); ok {
			m.detail = &c
		}
	case tabHistory:
		view, err := m.svc.SearchFromHistory(name)
		if err != nil {
			return m, nil
		}
		m.showResults(view)
	}
	return m, nil
}

// showResults switches to the results tab with the cursor on the first row
func (m *SearchModel) showResults(view app.View) {
	m.detail = nil
	m.tab = tabResults
	m.showPage(view)
}

func (m *SearchModel) showPage(view app.View) {
	m.view = view
	m.refreshTable()
	m.table.GotoTop()
}

func (m *SearchModel) switchTab(t tab) {
	m.tab = t
	m.detail = nil
	m.refreshTable()
	m.table.GotoTop()
}

// refreshTable rebuilds columns and rows for the current tab
func (m *SearchModel) refreshTable() {
	var specs []ColumnSpec
	switch m.tab {
	case tabHistory:
		specs = NameListColumns("Recent searches")
	case tabFavorites:
		specs = NameListColumns("Favorite countries")
	default:
		specs = CountryColumns()
	}
	columns := CalculateColumns(specs, m.layout.TableWidth)

	var rows []table.Row
	switch m.tab {
	case tabHistory:
		rows = NameRows(m.svc.History(), columns)
	case tabFavorites:
		rows = NameRows(m.svc.Favorites(), columns)
	default:
		rows = CountryRows(m.view.Items, columns, m.svc.IsFavorite)
	}

	// Rows must never have fewer cells than the columns being rendered
	m.table.SetRows([]table.Row{})
	m.table.SetColumns(columns)
	m.table.SetRows(rows)
}

// selectedName returns the country name or query under the cursor
func (m SearchModel) selectedName() (string, bool) {
	cursor := m.table.Cursor()
	var names []string
	switch m.tab {
	case tabHistory:
		names = m.svc.History()
	case tabFavorites:
		names = m.svc.Favorites()
	default:
		if cursor >= 0 && cursor < len(m.view.Items) {
			return m.view.Items[cursor].Name.Common, true
		}
		return "", false
	}
	if cursor >= 0 && cursor < len(names) {
		return names[cursor], true
	}
	return "", false
}

// View implements tea.Model
func (m SearchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(ViewHeader("Country Search", m.layout.InnerWidth))
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.inputMode {
		b.WriteString(" Search: ")
		b.WriteString(m.textInput.View())
	} else if m.view.Query != "" {
		b.WriteString(AccentStyle.Render(" Query: " + m.view.Query))
	} else if m.view.Paging.Total > 0 {
		b.WriteString(AccentStyle.Render(" All countries"))
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.tab == tabResults {
		if buttons := RenderPageButtons(m.view.Paging); buttons != "" {
			b.WriteString(CenterText(buttons, m.layout.InnerWidth))
			b.WriteString("\n")
		}
	}
	if m.detail != nil {
		b.WriteString("\n")
		b.WriteString(RenderCountryDetail(*m.detail, m.svc.IsFavorite(m.detail.Name.Common), m.layout.InnerWidth))
	}

	return BuildTwoBoxView(b.String(), m.helpText(), m.layout)
}

func (m SearchModel) renderTabs() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == m.tab {
			parts[i] = RenderTabActive(name)
		} else {
			parts[i] = RenderTabInactive(name)
		}
	}
	return strings.Join(parts, " ") + "  " + RenderDim("(Tab)")
}

func (m SearchModel) renderStatus() string {
	switch {
	case m.loading:
		return " " + m.spinner.View() + " " + HintStyle.Render(app.MsgLoading)
	case m.status.IsError():
		msg := m.status.Message
		if m.loadErr != nil {
			msg += "  (ctrl+r: retry)"
		}
		return " " + ErrorStyle.Render(msg)
	default:
		return " " + HintStyle.Render(m.status.Message)
	}
}

func (m SearchModel) helpText() string {
	if m.inputMode {
		return "Enter: search | Esc: back | Ctrl+C: quit"
	}
	switch m.tab {
	case tabHistory:
		return "Enter: search again | Tab: switch | /: search | q: quit"
	case tabFavorites:
		return "Enter: details | f: unfavorite | Tab: switch | /: search | q: quit"
	default:
		return "Enter: details | f: favorite | n/p: page | a: all | /: search | Tab: switch | q: quit"
	}
}

// RunSearchTUI starts the search TUI and blocks until the user quits
func RunSearchTUI(ctx context.Context, svc *app.Service, logger *log.Logger) error {
	model := NewSearchModel(ctx, svc, logger)
	defer svc.SetStatusFunc(nil)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("search TUI error: %w", err)
	}
	return nil
}
