package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Layout constants - single source of truth for viewport dimensions
const (
	MinViewportWidth  = 90
	MaxViewportWidth  = 140
	DefaultWidth      = 110 // Used when terminal size is unknown
	DefaultHeight     = 40
	MinViewportHeight = 24
	MinTableHeight    = 5
)

// Layout holds computed dimensions for the current terminal size
type Layout struct {
	ViewportWidth  int // clamped terminal width
	ViewportHeight int // terminal height
	InnerWidth     int // ViewportWidth - 2, exact width inside borders
	TableWidth     int // InnerWidth minus bubbles cell padding
	TableHeight    int // visible data rows
}

// NewLayout creates a Layout from the terminal size, clamping to min/max
func NewLayout(terminalWidth, terminalHeight int) Layout {
	width := clamp(terminalWidth, MinViewportWidth, MaxViewportWidth)
	height := max(terminalHeight, MinViewportHeight)

	// title, tabs, query line, status, page row, detail spacing, footer box
	tableHeight := max(height-22, MinTableHeight)

	return Layout{
		ViewportWidth:  width,
		ViewportHeight: height,
		InnerWidth:     width - 2,
		TableWidth:     width - 4,
		TableHeight:    tableHeight,
	}
}

// DefaultLayout returns a layout using the default size
func DefaultLayout() Layout {
	return NewLayout(DefaultWidth, DefaultHeight)
}

func clamp(value, lo, hi int) int {
	return min(max(value, lo), hi)
}

// Color palette
var (
	ColorBorder    = lipgloss.Color("196") // red
	ColorHighlight = lipgloss.Color("88")  // dark red background
	ColorText      = lipgloss.Color("15")  // bright white
	ColorAccent    = lipgloss.Color("226") // bright yellow
	ColorTextDim   = lipgloss.Color("241") // gray
	ColorSuccess   = lipgloss.Color("82")  // green
	ColorLink      = lipgloss.Color("86")  // cyan
)

// Common styles
var (
	// BorderStyle is the main viewport border. Content inside uses InnerWidth.
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	FooterBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorText)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorHighlight).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	HintStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Italic(true)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorBorder).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	LinkStyle = lipgloss.NewStyle().
			Foreground(ColorLink).
			Underline(true)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorHighlight).
			Bold(true).
			Padding(0, 2)

	TabInactiveStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Padding(0, 2)

	// Page buttons
	PageActiveStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorBorder).
			Bold(true).
			Padding(0, 1)

	PageStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	ArrowStyle = lipgloss.NewStyle().
			Foreground(ColorBorder).
			Bold(true)

	DetailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)
)

// RenderTitle renders a section title
func RenderTitle(s string) string { return TitleStyle.Render(s) }

// RenderDim renders secondary text
func RenderDim(s string) string { return DimStyle.Render(s) }

// RenderNormal renders regular text
func RenderNormal(s string) string { return NormalStyle.Render(s) }

func RenderTabActive(s string) string   { return TabActiveStyle.Render(s) }
func RenderTabInactive(s string) string { return TabInactiveStyle.Render(s) }

// StringWidth returns the display width of s, ignoring ANSI sequences
func StringWidth(s string) int {
	return lipgloss.Width(s)
}

// ApplyTableStyles sets the header and selection styles used by every table
func ApplyTableStyles(t *table.Model) {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorText).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorText)
	s.Selected = s.Selected.
		Foreground(ColorText).
		Background(ColorHighlight).
		Bold(true)
	s.Cell = s.Cell.Foreground(ColorText)
	t.SetStyles(s)
}

// NewAppSpinner returns the spinner used while the catalog loads
func NewAppSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorBorder)
	return s
}

// NewAppTheme creates a huh theme matching the app's style guide:
// white text, red highlights and selection.
func NewAppTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().
		Foreground(ColorText).
		Bold(true)
	t.Blurred.Title = t.Focused.Title

	t.Focused.Description = lipgloss.NewStyle().
		Foreground(ColorTextDim)
	t.Blurred.Description = t.Focused.Description

	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBorder).
		Bold(true).
		Padding(0, 1)
	t.Focused.UnselectedOption = lipgloss.NewStyle().
		Foreground(ColorText).
		Padding(0, 1)
	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(ColorBorder)

	return t
}

// BuildTwoBoxView renders content in the red main box and helpText centered
// in a one-row white box below it.
func BuildTwoBoxView(content, helpText string, layout Layout) string {
	mainHeight := max(layout.ViewportHeight-6, 10)
	content = PadContentToHeight(content, mainHeight)

	main := BorderStyle.
		Width(layout.InnerWidth).
		Height(mainHeight).
		Render(content)

	footer := FooterBorderStyle.
		Width(layout.InnerWidth).
		Height(1).
		Render(CenterText(HintStyle.Render(helpText), layout.InnerWidth))

	return main + "\n" + footer
}

// PadContentToHeight appends newlines until content has targetHeight lines
func PadContentToHeight(content string, targetHeight int) string {
	lines := strings.Count(content, "\n")
	if lines < targetHeight {
		content += strings.Repeat("\n", targetHeight-lines)
	}
	return content
}

// truncate shortens s to w display columns, ending in "..." when cut
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if StringWidth(s) <= w {
		return s
	}
	runes := []rune(s)
	if w <= 3 {
		return string(runes[:min(w, len(runes))])
	}
	for len(runes) > 0 && StringWidth(string(runes))+3 > w {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
