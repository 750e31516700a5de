package ui

// columns.go builds table columns and rows for country lists.

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/thesavant42/countrysearch/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ColumnSpec defines a table column with flexible or fixed width.
// FixedWidth wins over FlexRatio.
type ColumnSpec struct {
	Title      string
	MinWidth   int
	FixedWidth int
	FlexRatio  int
}

// CalculateColumns computes column widths from specs. Flexible columns
// split the space left after fixed columns by ratio.
func CalculateColumns(specs []ColumnSpec, totalWidth int) []table.Column {
	if totalWidth < 50 {
		totalWidth = 50
	}

	fixedTotal := 0
	flexTotal := 0
	for _, s := range specs {
		if s.FixedWidth > 0 {
			fixedTotal += s.FixedWidth
		} else {
			flexTotal += s.FlexRatio
		}
	}

	// bubbles adds one column of padding on each side of a cell
	remaining := max(totalWidth-fixedTotal-2*len(specs), 0)

	columns := make([]table.Column, len(specs))
	for i, s := range specs {
		var width int
		if s.FixedWidth > 0 {
			width = s.FixedWidth
		} else if flexTotal > 0 {
			width = remaining * s.FlexRatio / flexTotal
		}
		if s.MinWidth > 0 && width < s.MinWidth {
			width = s.MinWidth
		}
		columns[i] = table.Column{Title: s.Title, Width: width}
	}
	return columns
}

// CountryColumns returns column specs for the results table
func CountryColumns() []ColumnSpec {
	return []ColumnSpec{
		{Title: "★", FixedWidth: 2},
		{Title: "Country", FlexRatio: 25, MinWidth: 16},
		{Title: "Capital", FlexRatio: 18, MinWidth: 10},
		{Title: "Population", FixedWidth: 14},
		{Title: "Languages", FlexRatio: 30, MinWidth: 12},
		{Title: "Currencies", FlexRatio: 27, MinWidth: 12},
	}
}

// NameListColumns returns a single column for the history and favorites tabs
func NameListColumns(title string) []ColumnSpec {
	return []ColumnSpec{
		{Title: "#", FixedWidth: 3},
		{Title: title, FlexRatio: 100},
	}
}

var numberPrinter = message.NewPrinter(language.English)

// FormatPopulation renders n with thousands separators
func FormatPopulation(n int64) string {
	return numberPrinter.Sprintf("%d", n)
}

// CountryRows builds one row per country, truncated to the column widths.
// isFavorite may be nil.
func CountryRows(items []models.Country, columns []table.Column, isFavorite func(string) bool) []table.Row {
	rows := make([]table.Row, len(items))
	for i, c := range items {
		star := ""
		if isFavorite != nil && isFavorite(c.Name.Common) {
			star = "★"
		}
		cells := []string{
			star,
			c.Name.Common,
			c.Capital.String(),
			FormatPopulation(c.Population),
			joinOrDash(c.LanguageNames()),
			joinOrDash(c.CurrencyNames()),
		}
		for j := range cells {
			if j < len(columns) {
				cells[j] = truncate(cells[j], columns[j].Width)
			}
		}
		rows[i] = table.Row(cells)
	}
	return rows
}

// NameRows builds numbered rows for a plain list of names
func NameRows(names []string, columns []table.Column) []table.Row {
	width := 0
	if len(columns) > 1 {
		width = columns[1].Width
	}
	rows := make([]table.Row, len(names))
	for i, n := range names {
		rows[i] = table.Row{numberPrinter.Sprintf("%d", i+1), truncate(n, width)}
	}
	return rows
}

func joinOrDash(parts []string) string {
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
